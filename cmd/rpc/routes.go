package rpc

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Ballot RPC Paths
const (
	VersionRoutePath        = "/v1/"
	TxRoutePath             = "/v1/tx"
	HeightRoutePath         = "/v1/query/height"
	ResultsRoutePath        = "/v1/query/results"
	StatusRoutePath         = "/v1/query/status"
	WinnerRoutePath         = "/v1/query/winner"
	TurnoutRoutePath        = "/v1/query/turnout"
	VoterRoutePath          = "/v1/query/voter"
	VotersRoutePath         = "/v1/query/voters"
	EventsByHeightRoutePath = "/v1/query/events-by-height"
	// admin
	AdvanceHeightRoutePath = "/v1/admin/advance-height"
	ResourceUsageRoutePath = "/v1/admin/resource-usage"
	ConfigRoutePath        = "/v1/admin/config"
)

const (
	VersionRouteName        = "version"
	TxRouteName             = "tx"
	HeightRouteName         = "height"
	ResultsRouteName        = "results"
	StatusRouteName         = "status"
	WinnerRouteName         = "winner"
	TurnoutRouteName        = "turnout"
	VoterRouteName          = "voter"
	VotersRouteName         = "voters"
	EventsByHeightRouteName = "events-by-height"
	// admin
	AdvanceHeightRouteName = "advance-height"
	ResourceUsageRouteName = "resource-usage"
	ConfigRouteName        = "config"
)

// routes contains the method and path of each rpc route; admin routes are only served on the admin port
type routes map[string]struct {
	Method string
	Path   string
	Admin  bool
}

// routePaths is a mapping from route names to their corresponding HTTP methods and paths.
var routePaths = routes{
	VersionRouteName:        {Method: http.MethodGet, Path: VersionRoutePath},
	TxRouteName:             {Method: http.MethodPost, Path: TxRoutePath},
	HeightRouteName:         {Method: http.MethodPost, Path: HeightRoutePath},
	ResultsRouteName:        {Method: http.MethodPost, Path: ResultsRoutePath},
	StatusRouteName:         {Method: http.MethodPost, Path: StatusRoutePath},
	WinnerRouteName:         {Method: http.MethodPost, Path: WinnerRoutePath},
	TurnoutRouteName:        {Method: http.MethodPost, Path: TurnoutRoutePath},
	VoterRouteName:          {Method: http.MethodPost, Path: VoterRoutePath},
	VotersRouteName:         {Method: http.MethodPost, Path: VotersRoutePath},
	EventsByHeightRouteName: {Method: http.MethodPost, Path: EventsByHeightRoutePath},
	AdvanceHeightRouteName:  {Method: http.MethodPost, Path: AdvanceHeightRoutePath, Admin: true},
	ResourceUsageRouteName:  {Method: http.MethodGet, Path: ResourceUsageRoutePath, Admin: true},
	ConfigRouteName:         {Method: http.MethodGet, Path: ConfigRoutePath, Admin: true},
}

// httpRouteHandlers is a custom type that maps strings to httprouter handle functions
type httpRouteHandlers map[string]httprouter.Handle

// createRouter initializes and returns a new HTTP router with predefined route handlers.
func createRouter(s *Server) *httprouter.Router {
	var r = httpRouteHandlers{
		VersionRouteName:        s.Version,
		TxRouteName:             s.Transaction,
		HeightRouteName:         s.Height,
		ResultsRouteName:        s.Results,
		StatusRouteName:         s.Status,
		WinnerRouteName:         s.Winner,
		TurnoutRouteName:        s.Turnout,
		VoterRouteName:          s.Voter,
		VotersRouteName:         s.Voters,
		EventsByHeightRouteName: s.EventsByHeight,
	}
	return s.newRouter(r)
}

// createAdminRouter initializes the router of the node operator routes
func createAdminRouter(s *Server) *httprouter.Router {
	var r = httpRouteHandlers{
		AdvanceHeightRouteName: s.AdvanceHeight,
		ResourceUsageRouteName: s.ResourceUsage,
		ConfigRouteName:        s.Config,
	}
	return s.newRouter(r)
}

// newRouter registers the handlers behind the logging middleware
func (s *Server) newRouter(r httpRouteHandlers) *httprouter.Router {
	router := httprouter.New()
	for name, handler := range r {
		path := routePaths[name]
		router.Handle(path.Method, path.Path, logHandler{s.logger, path.Path, handler}.Handle)
	}
	return router
}
