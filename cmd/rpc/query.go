package rpc

import (
	"net/http"

	"github.com/canopy-network/ballot/lib"
	"github.com/julienschmidt/httprouter"
)

// Version responds with the software version
func (s *Server) Version(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	write(w, SoftwareVersion, http.StatusOK)
}

// Transaction applies a transaction in the current block and responds with its result
// contract rejections are part of a successful response
func (s *Server) Transaction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tx := new(lib.Transaction)
	if ok := unmarshal(w, r, tx); !ok {
		return
	}
	result, err := s.controller.SubmitTx(tx)
	if err != nil {
		write(w, lib.AsError(err), http.StatusInternalServerError)
		return
	}
	write(w, result, http.StatusOK)
}

// Height responds with the height of the block being built
func (s *Server) Height(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	write(w, &lib.HeightResult{Height: s.controller.Height()}, http.StatusOK)
}

// Results responds with the tallies of the round
func (s *Server) Results(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.query(w, func() (any, lib.ErrorI) { return s.controller.GetResults() })
}

// Status responds with the state of the voting window
func (s *Server) Status(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.query(w, func() (any, lib.ErrorI) { return s.controller.GetVotingStatus() })
}

// Winner responds with the leading choice and the differential
func (s *Server) Winner(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.query(w, func() (any, lib.ErrorI) { return s.controller.GetWinner() })
}

// Turnout responds with the share of the electorate that voted; eligible 0 uses the configured electorate
func (s *Server) Turnout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(turnoutRequest)
	if ok := unmarshal(w, r, req); !ok {
		return
	}
	s.query(w, func() (any, lib.ErrorI) { return s.controller.GetTurnout(req.Eligible) })
}

// Voter responds with the vote of a principal, null if they haven't voted this round
func (s *Server) Voter(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(principalRequest)
	if ok := unmarshal(w, r, req); !ok {
		return
	}
	if err := req.Principal.Check(); err != nil {
		write(w, lib.AsError(err), http.StatusBadRequest)
		return
	}
	s.query(w, func() (any, lib.ErrorI) { return s.controller.GetVoter(req.Principal) })
}

// Voters responds with every voter of the round
func (s *Server) Voters(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.query(w, func() (any, lib.ErrorI) { return s.controller.GetVoters() })
}

// EventsByHeight responds with the events emitted at a height
func (s *Server) EventsByHeight(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := new(heightRequest)
	if ok := unmarshal(w, r, req); !ok {
		return
	}
	s.query(w, func() (any, lib.ErrorI) { return s.controller.GetEventsByHeight(req.Height) })
}
