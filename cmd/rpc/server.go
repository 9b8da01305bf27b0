package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/alecthomas/units"
	"github.com/canopy-network/ballot/controller"
	"github.com/canopy-network/ballot/lib"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

const (
	colon = ":"

	SoftwareVersion = "0.1.0"
	ContentType     = "Content-Type"
	ApplicationJSON = "application/json; charset=utf-8"
	localhost       = "localhost"

	shutdownTimeout = 5 * time.Second
)

// Server represents the Ballot RPC server
type Server struct {
	// the local ledger host
	controller *controller.Controller

	// node configuration
	config lib.Config

	logger lib.LoggerI
}

// NewServer constructs and returns a new Ballot RPC server
func NewServer(controller *controller.Controller, config lib.Config, logger lib.LoggerI) *Server {
	return &Server{
		controller: controller,
		config:     config,
		logger:     logger,
	}
}

// Handler returns the public router wrapped in the CORS policy and the request timeout
func (s *Server) Handler() http.Handler {
	// Create CORS policy
	cor := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS", "POST"},
	})
	return cor.Handler(s.withTimeout(createRouter(s)))
}

// AdminHandler returns the admin router; it carries no CORS policy so browsers can't reach it cross-origin
func (s *Server) AdminHandler() http.Handler { return s.withTimeout(createAdminRouter(s)) }

// withTimeout applies the default timeout for HTTP requests
func (s *Server) withTimeout(h http.Handler) http.Handler {
	timeout := time.Duration(s.config.TimeoutS) * time.Second
	return http.TimeoutHandler(h, timeout, lib.ErrServerTimeout().Error())
}

// Start serves the public RPC on every interface and the admin RPC on localhost until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.serve(ctx, colon+s.config.RPCPort, s.Handler()) })
	g.Go(func() error { return s.serve(ctx, localhost+colon+s.config.AdminPort, s.AdminHandler()) })
	return g.Wait()
}

// serve runs a single http server and shuts it down gracefully once the context is done
func (s *Server) serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{Addr: addr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorf("RPC server %s shutdown failed with err: %s", addr, err.Error())
		}
	}()
	s.logger.Infof("Starting RPC server at %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// query executes a read-only callback against the controller and writes the outcome
func (s *Server) query(w http.ResponseWriter, callback func() (any, lib.ErrorI)) {
	p, err := callback()
	if err != nil {
		write(w, lib.AsError(err), http.StatusBadRequest)
		return
	}
	write(w, p, http.StatusOK)
}

// logHandler serves as a middleware that logs incoming RPC calls for debugging purposes.
type logHandler struct {
	logger lib.LoggerI
	path   string
	h      httprouter.Handle
}

// Handle
func (h logHandler) Handle(resp http.ResponseWriter, req *http.Request, p httprouter.Params) {
	h.logger.Debugf("RPC %s %s", req.Method, h.path)
	h.h(resp, req, p)
}

// unmarshal reads a size limited json body into ptr; an empty body leaves ptr untouched
func unmarshal(w http.ResponseWriter, r *http.Request, ptr interface{}) bool {
	bz, err := io.ReadAll(io.LimitReader(r.Body, int64(units.MB)))
	if err != nil {
		write(w, lib.AsError(ErrReadBody(err)), http.StatusBadRequest)
		return false
	}
	defer func() { _ = r.Body.Close() }()
	if len(bz) == 0 {
		return true
	}
	if err = json.Unmarshal(bz, ptr); err != nil {
		write(w, lib.AsError(ErrInvalidParams(err)), http.StatusBadRequest)
		return false
	}
	return true
}

// write marshaled payload to w
func write(w http.ResponseWriter, payload interface{}, code int) {
	w.Header().Set(ContentType, ApplicationJSON)
	w.WriteHeader(code)

	// Marshal and indent the payload
	bz, _ := json.MarshalIndent(payload, "", "  ")
	_, _ = w.Write(bz)
}
