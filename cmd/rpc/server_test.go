package rpc

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/canopy-network/ballot/controller"
	"github.com/canopy-network/ballot/fsm"
	"github.com/canopy-network/ballot/lib"
	"github.com/canopy-network/ballot/store"
	"github.com/stretchr/testify/require"
)

const (
	testAdmin  = lib.Principal("admin")
	testVoter1 = lib.Principal("voter1")
	testVoter2 = lib.Principal("voter2")
)

func TestRPCVotingRound(t *testing.T) {
	client, cleanup := newTestServer(t)
	defer cleanup()
	version, err := client.Version()
	require.NoError(t, err)
	require.Equal(t, SoftwareVersion, *version)
	// only the administrator may start a round
	result, err := client.InitializeVoting(testVoter1, 10)
	require.NoError(t, err)
	require.False(t, result.Success())
	require.Equal(t, lib.CodeNotAuthorized, result.Error.Code())
	result, err = client.InitializeVoting(testAdmin, 10)
	require.NoError(t, err)
	require.True(t, result.Success())
	require.Equal(t, lib.EventTypeVotingInitialized, result.Event.EventType)
	// votes
	result, err = client.Vote(testVoter1, lib.ChoiceA)
	require.NoError(t, err)
	require.True(t, result.Success())
	result, err = client.Vote(testVoter2, lib.ChoiceB)
	require.NoError(t, err)
	require.True(t, result.Success())
	result, err = client.Vote(testVoter2, lib.ChoiceA)
	require.NoError(t, err)
	require.Equal(t, lib.CodeAlreadyVoted, result.Error.Code())
	// queries
	results, err := client.Results()
	require.NoError(t, err)
	require.Equal(t, &lib.Results{A: 1, B: 1, Total: 2, Start: 1, End: 11, IsActive: true}, results)
	winner, err := client.Winner()
	require.NoError(t, err)
	require.Equal(t, lib.WinnerTie, winner.Winner)
	require.False(t, winner.IsFinal)
	turnout, err := client.Turnout(8)
	require.NoError(t, err)
	require.EqualValues(t, 25, turnout.Turnout)
	voter, err := client.Voter(testVoter2)
	require.NoError(t, err)
	require.Equal(t, lib.ChoiceB, voter.Choice)
	voter, err = client.Voter(testAdmin)
	require.NoError(t, err)
	require.Nil(t, voter)
	voters, err := client.Voters()
	require.NoError(t, err)
	require.Len(t, voters, 2)
	events, err := client.EventsByHeight(1)
	require.NoError(t, err)
	require.Len(t, events, 3)
	// close and advance
	result, err = client.CloseVotingEarly(testAdmin)
	require.NoError(t, err)
	require.True(t, result.Success())
	height, err := client.AdvanceHeight(0)
	require.NoError(t, err)
	require.EqualValues(t, 2, height.Height)
	height, err = client.AdvanceHeight(50)
	require.NoError(t, err)
	require.EqualValues(t, 50, height.Height)
	height, err = client.Height()
	require.NoError(t, err)
	require.EqualValues(t, 50, height.Height)
	status, err := client.Status()
	require.NoError(t, err)
	require.Equal(t, &lib.VotingStatus{HasStarted: true, HasEnded: true}, status)
}

func TestRPCErrors(t *testing.T) {
	client, cleanup := newTestServer(t)
	defer cleanup()
	// heights never decrease
	_, err := client.AdvanceHeight(1)
	require.True(t, lib.IsCode(err, lib.VotingModule, lib.CodeHeightNotIncreasing), err)
	// malformed principal
	_, err = client.Voter(" ")
	require.True(t, lib.IsCode(err, lib.MainModule, lib.CodeInvalidPrincipal), err)
	// invalid choices are rejected in the result
	result, err := client.Vote(testVoter1, "C")
	require.NoError(t, err)
	require.Equal(t, lib.CodeInvalidChoice, result.Error.Code())
}

func TestRPCInvalidBody(t *testing.T) {
	server, _, cleanup := newTestHTTPServers(t)
	defer cleanup()
	resp, err := http.Post(server.URL+TxRoutePath, ApplicationJSON, strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminRoutesNotPublic(t *testing.T) {
	server, admin, cleanup := newTestHTTPServers(t)
	defer cleanup()
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "advance height", method: http.MethodPost, path: AdvanceHeightRoutePath, body: `{"height":18446744073709551614}`},
		{name: "config", method: http.MethodGet, path: ConfigRoutePath},
		{name: "resource usage", method: http.MethodGet, path: ResourceUsageRoutePath},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req, err := http.NewRequest(test.method, server.URL+test.path, strings.NewReader(test.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	}
	// a client pointed at the public port can't move the block clock
	public := NewClient(server.URL, server.URL, time.Second, 0)
	_, err := public.AdvanceHeight(math.MaxUint64 - 1)
	require.True(t, lib.IsCode(err, lib.RPCModule, lib.CodeHTTPStatus), err)
	client := NewClient(server.URL, admin.URL, time.Second, 0)
	height, err := client.Height()
	require.NoError(t, err)
	require.EqualValues(t, 1, height.Height)
	// voting still works after the attempt
	result, err := client.InitializeVoting(testAdmin, 100)
	require.NoError(t, err)
	require.True(t, result.Success())
	height, err = client.AdvanceHeight(0)
	require.NoError(t, err)
	require.EqualValues(t, 2, height.Height)
}

func TestClientUnreachable(t *testing.T) {
	server, _, cleanup := newTestHTTPServers(t)
	url := server.URL
	cleanup()
	client := NewClient(url, url, time.Second, 50*time.Millisecond)
	_, err := client.Results()
	require.True(t, lib.IsCode(err, lib.RPCModule, lib.CodeHTTPPost), err)
}

func newTestServer(t *testing.T) (*Client, func()) {
	server, admin, cleanup := newTestHTTPServers(t)
	return NewClient(server.URL, admin.URL, time.Second, 0), cleanup
}

// newTestHTTPServers() serves the public and the admin routers of one node
func newTestHTTPServers(t *testing.T) (server, admin *httptest.Server, cleanup func()) {
	log := lib.NewNullLogger()
	config := lib.Config{
		RPCConfig:   lib.RPCConfig{TimeoutS: 5},
		StoreConfig: lib.StoreConfig{DataDirPath: t.TempDir()},
	}
	db, err := store.NewStoreInMemory(log)
	require.NoError(t, err)
	require.NoError(t, fsm.WriteGenesisFile(config.DataDirPath, &fsm.GenesisState{Administrator: testAdmin}))
	metrics := lib.NewMetricsServer(config.MetricsConfig, log)
	sm, err := fsm.New(config, db, metrics, log)
	require.NoError(t, err)
	c, err := controller.New(sm, config, metrics, log)
	require.NoError(t, err)
	rpcServer := NewServer(c, config, log)
	server, admin = httptest.NewServer(rpcServer.Handler()), httptest.NewServer(rpcServer.AdminHandler())
	return server, admin, func() {
		server.Close()
		admin.Close()
		c.Stop()
	}
}
