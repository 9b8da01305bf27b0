package rpc

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/canopy-network/ballot/lib"
	"github.com/cenkalti/backoff/v4"
)

// Client calls the Ballot RPC; admin routes go to the admin url
// unreachable servers are retried with exponential backoff for up to retryMax; responses are never retried
type Client struct {
	rpcURL      string
	adminRPCURL string
	retryMax    time.Duration
	client      http.Client
}

func NewClient(rpcURL, adminRPCURL string, timeout, retryMax time.Duration) *Client {
	return &Client{rpcURL: rpcURL, adminRPCURL: adminRPCURL, retryMax: retryMax, client: http.Client{Timeout: timeout}}
}

func (c *Client) Version() (version *string, err lib.ErrorI) {
	version = new(string)
	err = c.get(VersionRouteName, version)
	return
}

// Transaction submits a transaction; a contract rejection is reported in the result, not the error
func (c *Client) Transaction(tx *lib.Transaction) (p *lib.TxResult, err lib.ErrorI) {
	bz, err := lib.MarshalJSON(tx)
	if err != nil {
		return nil, err
	}
	p = new(lib.TxResult)
	err = c.post(TxRouteName, bz, p)
	return
}

// InitializeVoting submits an initialize-voting transaction
func (c *Client) InitializeVoting(caller lib.Principal, duration uint64) (*lib.TxResult, lib.ErrorI) {
	return c.transaction(lib.MessageTypeInitializeVoting, caller, &lib.MessageInitializeVoting{Duration: duration})
}

// Vote submits a vote transaction
func (c *Client) Vote(caller lib.Principal, choice lib.Choice) (*lib.TxResult, lib.ErrorI) {
	return c.transaction(lib.MessageTypeVote, caller, &lib.MessageVote{Choice: choice})
}

// CloseVotingEarly submits a close-voting-early transaction
func (c *Client) CloseVotingEarly(caller lib.Principal) (*lib.TxResult, lib.ErrorI) {
	return c.transaction(lib.MessageTypeCloseVotingEarly, caller, &lib.MessageCloseVotingEarly{})
}

func (c *Client) Height() (p *lib.HeightResult, err lib.ErrorI) {
	p = new(lib.HeightResult)
	err = c.post(HeightRouteName, nil, p)
	return
}

func (c *Client) Results() (p *lib.Results, err lib.ErrorI) {
	p = new(lib.Results)
	err = c.post(ResultsRouteName, nil, p)
	return
}

func (c *Client) Status() (p *lib.VotingStatus, err lib.ErrorI) {
	p = new(lib.VotingStatus)
	err = c.post(StatusRouteName, nil, p)
	return
}

func (c *Client) Winner() (p *lib.WinnerResult, err lib.ErrorI) {
	p = new(lib.WinnerResult)
	err = c.post(WinnerRouteName, nil, p)
	return
}

func (c *Client) Turnout(eligible uint64) (p *lib.TurnoutResult, err lib.ErrorI) {
	bz, err := lib.MarshalJSON(turnoutRequest{Eligible: eligible})
	if err != nil {
		return nil, err
	}
	p = new(lib.TurnoutResult)
	err = c.post(TurnoutRouteName, bz, p)
	return
}

// Voter returns the vote of a principal; nil if they haven't voted this round
func (c *Client) Voter(principal lib.Principal) (p *lib.Voter, err lib.ErrorI) {
	bz, err := lib.MarshalJSON(principalRequest{Principal: principal})
	if err != nil {
		return nil, err
	}
	err = c.post(VoterRouteName, bz, &p)
	return
}

func (c *Client) Voters() (p []*lib.Voter, err lib.ErrorI) {
	err = c.post(VotersRouteName, nil, &p)
	return
}

func (c *Client) EventsByHeight(height uint64) (p lib.Events, err lib.ErrorI) {
	err = c.heightRequest(EventsByHeightRouteName, height, &p)
	return
}

// AdvanceHeight commits the current block on the node and moves to height, or the next height if 0
func (c *Client) AdvanceHeight(height uint64) (p *lib.HeightResult, err lib.ErrorI) {
	p = new(lib.HeightResult)
	err = c.heightRequest(AdvanceHeightRouteName, height, p)
	return
}

func (c *Client) ResourceUsage() (p *resourceUsageResponse, err lib.ErrorI) {
	p = new(resourceUsageResponse)
	err = c.get(ResourceUsageRouteName, p)
	return
}

func (c *Client) Config() (p *lib.Config, err lib.ErrorI) {
	p = new(lib.Config)
	err = c.get(ConfigRouteName, p)
	return
}

func (c *Client) transaction(msgType lib.MessageType, caller lib.Principal, msg any) (*lib.TxResult, lib.ErrorI) {
	tx, err := lib.NewTransaction(msgType, caller, msg)
	if err != nil {
		return nil, err
	}
	// distinguishes repeated submissions of the same message
	tx.Nonce = uint64(time.Now().UnixNano())
	return c.Transaction(tx)
}

func (c *Client) heightRequest(routeName string, height uint64, ptr any) (err lib.ErrorI) {
	bz, err := lib.MarshalJSON(heightRequest{Height: height})
	if err != nil {
		return
	}
	err = c.post(routeName, bz, ptr)
	return
}

func (c *Client) url(routeName string) string {
	route := routePaths[routeName]
	if route.Admin {
		return c.adminRPCURL + route.Path
	}
	return c.rpcURL + route.Path
}

func (c *Client) post(routeName string, json []byte, ptr any) lib.ErrorI {
	resp, err := c.do(http.MethodPost, routeName, json)
	if err != nil {
		return ErrPostRequest(err)
	}
	return c.unmarshal(resp, ptr)
}

func (c *Client) get(routeName string, ptr any) lib.ErrorI {
	resp, err := c.do(http.MethodGet, routeName, nil)
	if err != nil {
		return ErrGetRequest(err)
	}
	return c.unmarshal(resp, ptr)
}

// do sends the request, retrying transport failures until the retry budget is spent
func (c *Client) do(method, routeName string, body []byte) (resp *http.Response, err error) {
	err = backoff.Retry(func() error {
		req, e := http.NewRequest(method, c.url(routeName), bytes.NewReader(body))
		if e != nil {
			return backoff.Permanent(ErrNewHTTPRequest(e))
		}
		req.Header.Set(ContentType, ApplicationJSON)
		resp, e = c.client.Do(req)
		return e
	}, c.backOff())
	return
}

func (c *Client) backOff() backoff.BackOff {
	if c.retryMax <= 0 {
		return &backoff.StopBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.retryMax
	return b
}

// unmarshal decodes a successful response into ptr; error responses are decoded into their lib.Error when possible
func (c *Client) unmarshal(resp *http.Response, ptr any) lib.ErrorI {
	defer func() { _ = resp.Body.Close() }()
	bz, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrReadBody(err)
	}
	if resp.StatusCode != http.StatusOK {
		e := new(lib.Error)
		if lib.UnmarshalJSON(bz, e) == nil && e.ECode != 0 {
			return e
		}
		return ErrHttpStatus(resp.Status, resp.StatusCode, bz)
	}
	return lib.UnmarshalJSON(bz, ptr)
}
