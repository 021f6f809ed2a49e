package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bigtwo/internal/app"
	"bigtwo/internal/domain"
	"bigtwo/internal/logging"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	svc     *app.Service
	hub     *Hub
	tickets *app.TicketIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logging.Discard()
	svc := app.NewService(app.Options{Logger: logger, AutoPass: -1})
	hub := NewHub(logger)
	tickets, err := app.NewTicketIssuer("test-secret", "bigtwo", time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(svc, hub, tickets, logger).Routes())
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, svc: svc, hub: hub, tickets: tickets}
}

func (ts *testServer) do(t *testing.T, method, path, ticket string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	if ticket != "" {
		req.Header.Set("Authorization", "Bearer "+ticket)
	}
	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(res.Body)
	require.NoError(t, err)
	return res, buf.Bytes()
}

func (ts *testServer) createGame(t *testing.T, req createGameRequest) createGameResponse {
	t.Helper()
	res, body := ts.do(t, http.MethodPost, "/games", "", req)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	var created createGameResponse
	require.NoError(t, json.Unmarshal(body, &created))
	return created
}

func TestCreateGameAndReadState(t *testing.T) {
	ts := newTestServer(t)
	created := ts.createGame(t, createGameRequest{ID: "g1", Seed: 7})
	assert.Equal(t, "g1", created.GameID)
	assert.Equal(t, int64(7), created.Seed)
	require.Len(t, created.Tickets, domain.NumSeats)

	res, body := ts.do(t, http.MethodGet, "/games/g1", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotContains(t, string(body), `"hand"`, "public state never carries hands")

	var state app.PublicState
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, created.Turn.Current, state.Turn.Current)
	assert.Equal(t, [domain.NumSeats]int{13, 13, 13, 13}, state.CardCounts)

	res, _ = ts.do(t, http.MethodPost, "/games", "", createGameRequest{ID: "g1"})
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res, _ = ts.do(t, http.MethodGet, "/games/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestSeatViewNeedsMatchingTicket(t *testing.T) {
	ts := newTestServer(t)
	g1 := ts.createGame(t, createGameRequest{ID: "g1", Seed: 1})
	g2 := ts.createGame(t, createGameRequest{ID: "g2", Seed: 2})

	res, _ := ts.do(t, http.MethodGet, "/games/g1/hand", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.do(t, http.MethodGet, "/games/g1/hand", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.do(t, http.MethodGet, "/games/g1/hand", g2.Tickets[0], nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, body := ts.do(t, http.MethodGet, "/games/g1/hand", g1.Tickets[2], nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var view app.SeatView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, 2, view.Seat)
	assert.Len(t, view.Hand, domain.HandSize)
}

func TestSubmitActions(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(t, createGameRequest{ID: "g1", Seed: 3})
	lead := g.Turn.Current
	other := (lead + 1) % domain.NumSeats

	res, body := ts.do(t, http.MethodPost, "/games/g1/actions", g.Tickets[other], actionRequest{Kind: app.ActionPass})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Contains(t, string(body), string(domain.ReasonNotYourTurn))

	res, body = ts.do(t, http.MethodPost, "/games/g1/actions", g.Tickets[lead], actionRequest{Kind: app.ActionPlay, Cards: []string{"ZZ"}})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, string(body), string(domain.ReasonInvalidCombo))

	res, body = ts.do(t, http.MethodPost, "/games/g1/actions", g.Tickets[lead], actionRequest{Kind: app.ActionPass})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, string(body), string(domain.ReasonMustLead))

	v := uint64(0)
	res, body = ts.do(t, http.MethodPost, "/games/g1/actions", g.Tickets[lead], actionRequest{Kind: app.ActionPlay, Cards: []string{"3S"}, Version: &v})
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	var result app.Result
	require.NoError(t, json.Unmarshal(body, &result))
	assert.True(t, result.Accepted)
	require.NotNil(t, result.Delta)
	assert.Equal(t, uint64(1), result.Delta.Version)

	next := result.Delta.Turn.Current
	res, body = ts.do(t, http.MethodPost, "/games/g1/actions", g.Tickets[next], actionRequest{Kind: app.ActionPass, Version: &v})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Contains(t, string(body), string(domain.ReasonStaleAction))
}

func TestStreamDeliversStateThenDeltas(t *testing.T) {
	ts := newTestServer(t)
	g := ts.createGame(t, createGameRequest{ID: "g1", Seed: 11})
	lead := g.Turn.Current

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/games/g1/stream?ticket=" + g.Tickets[lead]
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	read := func() map[string]json.RawMessage {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var msg map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	first := read()
	assert.JSONEq(t, `"state"`, string(first["type"]))
	var view app.SeatView
	require.NoError(t, json.Unmarshal(first["payload"], &view))
	assert.Equal(t, lead, view.Seat)
	assert.Len(t, view.Hand, domain.HandSize)

	require.Eventually(t, func() bool { return ts.hub.Subscribers("g1") == 1 }, time.Second, 5*time.Millisecond)
	res, body := ts.do(t, http.MethodPost, "/games/g1/actions", g.Tickets[lead], actionRequest{Kind: app.ActionPlay, Cards: []string{"3S"}})
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))

	msg := read()
	assert.JSONEq(t, `"delta"`, string(msg["type"]))
	var delta app.Delta
	require.NoError(t, json.Unmarshal(msg["payload"], &delta))
	assert.Equal(t, uint64(1), delta.Version)
	assert.Equal(t, lead, delta.Seat)
}

func TestStreamRejectsForeignTicket(t *testing.T) {
	ts := newTestServer(t)
	ts.createGame(t, createGameRequest{ID: "g1", Seed: 1})
	g2 := ts.createGame(t, createGameRequest{ID: "g2", Seed: 2})

	res, _ := ts.do(t, http.MethodGet, "/games/g1/stream?ticket="+g2.Tickets[0], "", nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		res  app.Result
		want int
	}{
		{app.Result{Accepted: true}, http.StatusOK},
		{app.Result{Reason: domain.ReasonNotYourTurn}, http.StatusConflict},
		{app.Result{Reason: domain.ReasonStaleAction}, http.StatusConflict},
		{app.Result{Reason: domain.ReasonDoesNotBeat}, http.StatusUnprocessableEntity},
		{app.Result{Reason: domain.ReasonLastCardRule}, http.StatusUnprocessableEntity},
		{app.Result{Reason: domain.ReasonGameAlreadyOver}, http.StatusGone},
		{app.Result{Reason: domain.ReasonGameQuarantined}, http.StatusGone},
		{app.Result{Reason: domain.ReasonUnknownAction}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.res), string(tt.res.Reason))
	}
}
