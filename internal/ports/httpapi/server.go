// Package httpapi hosts games over REST with WebSocket delta streams.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"bigtwo/internal/app"
	"bigtwo/internal/domain"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/heroiclabs/nakama-common/runtime"
)

const writeTimeout = 5 * time.Second

// Server exposes an app.Service. Seat-bound routes require a seat ticket as a bearer token.
type Server struct {
	svc     *app.Service
	hub     *Hub
	tickets *app.TicketIssuer
	logger  runtime.Logger
}

func NewServer(svc *app.Service, hub *Hub, tickets *app.TicketIssuer, logger runtime.Logger) *Server {
	return &Server{svc: svc, hub: hub, tickets: tickets, logger: logger}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Route("/games", func(r chi.Router) {
		r.Post("/", s.createGame)
		r.Route("/{gameID}", func(r chi.Router) {
			r.Get("/", s.getState)
			r.Post("/resume", s.resumeGame)
			r.Get("/hand", s.getSeatView)
			r.Post("/actions", s.submitAction)
			r.Get("/stream", s.stream)
		})
	})
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type createGameRequest struct {
	ID        string `json:"id"`
	Seed      int64  `json:"seed"`
	SeatOrder []int  `json:"seat_order"`
}

type createGameResponse struct {
	GameID  string       `json:"game_id"`
	Seed    int64        `json:"seed"`
	Turn    app.TurnView `json:"turn"`
	Tickets []string     `json:"tickets"` // one per seat, to be handed out privately
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "", "invalid request body: "+err.Error())
			return
		}
	}

	tbl, deal, err := s.svc.NewGame(r.Context(), app.GameSpec{
		ID:          req.ID,
		Seed:        req.Seed,
		SeatOrder:   req.SeatOrder,
		Broadcaster: s.hub,
	})
	if errors.Is(err, app.ErrGameExists) {
		writeError(w, http.StatusConflict, "", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}

	tickets, err := s.tickets.IssueAll(tbl.ID())
	if err != nil {
		s.logger.WithField("game_id", tbl.ID()).Error("failed to issue seat tickets: %v", err)
		writeError(w, http.StatusInternalServerError, "", "failed to issue seat tickets")
		return
	}
	writeJSON(w, http.StatusCreated, createGameResponse{
		GameID:  deal.GameID,
		Seed:    deal.Seed,
		Turn:    deal.Turn,
		Tickets: tickets,
	})
}

func (s *Server) resumeGame(w http.ResponseWriter, r *http.Request) {
	tbl, err := s.svc.Resume(r.Context(), chi.URLParam(r, "gameID"), s.hub)
	if errors.Is(err, app.ErrGameNotFound) {
		writeError(w, http.StatusNotFound, "", err.Error())
		return
	}
	if err != nil {
		s.logger.Error("failed to resume game: %v", err)
		writeError(w, http.StatusInternalServerError, "", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tbl.PublicState())
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	state, err := s.svc.PublicState(chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) getSeatView(w http.ResponseWriter, r *http.Request) {
	ticket, ok := s.seatTicket(w, r, bearerToken(r))
	if !ok {
		return
	}
	tbl, err := s.svc.Table(ticket.GameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "", err.Error())
		return
	}
	view, err := tbl.SeatView(ticket.Seat)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type actionRequest struct {
	Kind    app.ActionKind `json:"kind"`
	Cards   []string       `json:"cards"`
	Version *uint64        `json:"version"`
}

func (s *Server) submitAction(w http.ResponseWriter, r *http.Request) {
	ticket, ok := s.seatTicket(w, r, bearerToken(r))
	if !ok {
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid request body: "+err.Error())
		return
	}
	res, err := s.svc.Submit(r.Context(), ticket.GameID, ticket.Seat, app.Action{
		Kind:    req.Kind,
		Names:   req.Cards,
		Version: req.Version,
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "", err.Error())
		return
	}
	writeJSON(w, statusFor(res), res)
}

// stream upgrades to a WebSocket that first sends the current state and then every event of the game.
// A ticket query parameter makes it a seat stream that also receives that seat's private deals.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	seat := Observer
	if tok := r.URL.Query().Get("ticket"); tok != "" {
		ticket, ok := s.seatTicket(w, r, tok)
		if !ok {
			return
		}
		seat = ticket.Seat
	}
	tbl, err := s.svc.Table(gameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "", err.Error())
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.WithField("game_id", gameID).Warn("failed to accept websocket: %v", err)
		return
	}
	defer conn.Close(websocket.StatusGoingAway, "server closing stream")

	// Subscribe before reading the state so no event falls between the two; clients skip versions they have.
	sub := s.hub.Subscribe(gameID, seat)
	defer s.hub.Unsubscribe(gameID, sub)

	ctx := conn.CloseRead(r.Context())

	var initial any = tbl.PublicState()
	if seat != Observer {
		if initial, err = tbl.SeatView(seat); err != nil {
			return
		}
	}
	first, err := json.Marshal(Message{Type: "state", GameID: gameID, Payload: initial})
	if err != nil {
		return
	}
	if err := write(ctx, conn, first); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.C:
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "stream fell behind")
				return
			}
			if err := write(ctx, conn, msg); err != nil {
				s.logger.WithField("game_id", gameID).Debug("stream write failed: %v", err)
				return
			}
		}
	}
}

// seatTicket verifies tok and checks it belongs to the game in the path. It writes the error response itself.
func (s *Server) seatTicket(w http.ResponseWriter, r *http.Request, tok string) (app.SeatTicket, bool) {
	if tok == "" {
		writeError(w, http.StatusUnauthorized, "", "seat ticket required")
		return app.SeatTicket{}, false
	}
	ticket, err := s.tickets.Verify(tok)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "", err.Error())
		return app.SeatTicket{}, false
	}
	if ticket.GameID != chi.URLParam(r, "gameID") {
		writeError(w, http.StatusForbidden, "", "ticket is for another game")
		return app.SeatTicket{}, false
	}
	return ticket, true
}

func write(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// statusFor maps a gateway result onto an HTTP status.
func statusFor(res app.Result) int {
	if res.Accepted {
		return http.StatusOK
	}
	switch res.Reason {
	case domain.ReasonNotYourTurn, domain.ReasonStaleAction:
		return http.StatusConflict
	case domain.ReasonGameAlreadyOver, domain.ReasonGameQuarantined:
		return http.StatusGone
	case domain.ReasonUnknownSeat, domain.ReasonUnknownAction:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

type errorResponse struct {
	Reason domain.Reason `json:"reason,omitempty"`
	Error  string        `json:"error"`
}

func writeError(w http.ResponseWriter, status int, reason domain.Reason, msg string) {
	writeJSON(w, status, errorResponse{Reason: reason, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
