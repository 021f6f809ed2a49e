package nakama

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"bigtwo/internal/app"
	"bigtwo/internal/bot"
	"bigtwo/internal/config"
	"bigtwo/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	phaseLobby   = "lobby"
	phasePlaying = "playing"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	MatchID              string                      `json:"match_id"`
	Seats                [domain.NumSeats]string     `json:"seats"`            // user IDs, empty string means the seat is empty
	OwnerSeat            int                         `json:"owner_seat"`       // seat index of the match owner
	LastWinnerSeat       int                         `json:"last_winner_seat"` // seat index of the winner of the last game
	Tick                 int64                       `json:"tick"`
	Presences            map[string]runtime.Presence `json:"-"` // user ID -> presence for targeted messaging
	Service              *app.Service                `json:"-"`
	Table                *app.Table                  `json:"-"` // nil while in the lobby
	Games                int                         `json:"games"`
	Config               config.GameConfig           `json:"config"`
	Roster               *bot.Roster                 `json:"-"`
	Bots                 map[string]*bot.Agent       `json:"-"` // active bot agents by user ID
	Vacated              map[string]int              `json:"vacated"`        // humans who left mid-game -> the seat a bot took over
	BotWaitUntil         int64                       `json:"bot_wait_until"` // tick when the bot to act should act
	LastSinglePlayerTick int64                       `json:"last_single_player_tick"`

	events *eventQueue
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return domain.NumSeats - ms.GetOpenSeatsCount()
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !ms.isBot(seat) {
			count++
		}
	}
	return count
}

func (ms *MatchState) isBot(userID string) bool {
	return ms.Roster.IsBot(userID)
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seatUserID := range ms.Seats {
		if seatUserID == userID {
			return i
		}
	}
	return -1
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func (ms *MatchState) findFirstHumanSeat() int {
	for i, userID := range ms.Seats {
		if userID != "" && !ms.isBot(userID) {
			return i
		}
	}
	return -1
}

// eventQueue collects table events, which may be published from the auto-pass timer goroutine,
// until MatchLoop dispatches them.
type eventQueue struct {
	mu     sync.Mutex
	events []app.Event
}

func (q *eventQueue) Publish(ev app.Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

func (q *eventQueue) drain() []app.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}

type matchHandler struct {
	config config.GameConfig
	roster *bot.Roster
}

func newMatchHandler(cfg config.GameConfig, roster *bot.Roster) *matchHandler {
	return &matchHandler{config: cfg, roster: roster}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	logger = logger.WithField("match_id", matchID)

	cfg := mh.config
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if err := cfg.ApplyEnv(env); err != nil {
			logger.Warn("MatchInit: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn("MatchInit: falling back to default game config: %v", err)
		cfg = config.DefaultGameConfig()
	}

	rules := cfg.ScoreRules()
	state := &MatchState{
		MatchID:        matchID,
		OwnerSeat:      -1,
		LastWinnerSeat: -1,
		Presences:      make(map[string]runtime.Presence),
		Service: app.NewService(app.Options{
			Logger:   logger,
			Rules:    &rules,
			AutoPass: cfg.AutoPass(),
		}),
		Config:  cfg,
		Roster:  mh.roster,
		Bots:    make(map[string]*bot.Agent),
		Vacated: make(map[string]int),
		events:  &eventQueue{},
	}

	label, err := matchLabel(state.GetOpenSeatsCount(), phaseLobby)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	userID := presence.GetUserId()
	if matchState.seatOf(userID) >= 0 {
		return state, true, ""
	}
	if _, ok := matchState.Vacated[userID]; ok {
		return state, true, ""
	}
	if matchState.GetOpenSeatsCount() > 0 {
		return state, true, ""
	}
	// Bots give way to humans in the lobby.
	if matchState.Table == nil {
		for _, seat := range matchState.Seats {
			if matchState.isBot(seat) {
				return state, true, ""
			}
		}
	}
	return state, false, "Match full"
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if seat := matchState.seatOf(userID); seat >= 0 {
			logger.Debug("MatchJoin: User %s reconnected to seat %d.", userID, seat)
			mh.sendStateSync(matchState, dispatcher, logger, userID)
			continue
		}
		if seat, ok := matchState.Vacated[userID]; ok {
			botID := matchState.Seats[seat]
			delete(matchState.Vacated, userID)
			delete(matchState.Bots, botID)
			matchState.Seats[seat] = userID
			logger.Info("MatchJoin: User %s took seat %d back from bot %s.", userID, seat, botID)
			mh.sendStateSync(matchState, dispatcher, logger, userID)
			continue
		}

		if !mh.assignSeat(matchState, logger, userID) {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
		}
	}

	mh.ensureOwner(matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)
	return matchState
}

// assignSeat puts userID in the lowest empty seat, or in a lobby bot's seat.
func (mh *matchHandler) assignSeat(state *MatchState, logger runtime.Logger, userID string) bool {
	if seat := domain.LowestAvailableSeat(&state.Seats); seat >= 0 {
		state.Seats[seat] = userID
		return true
	}
	if state.Table != nil {
		return false
	}
	for i, seatUserID := range state.Seats {
		if state.isBot(seatUserID) {
			logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserID, userID, i)
			delete(state.Bots, seatUserID)
			state.Seats[i] = userID
			return true
		}
	}
	return false
}

// ensureOwner keeps the owner seat on a human player.
func (mh *matchHandler) ensureOwner(state *MatchState, logger runtime.Logger) {
	owner := state.OwnerSeat
	if owner >= 0 && owner < domain.NumSeats && state.Seats[owner] != "" && !state.isBot(state.Seats[owner]) {
		return
	}
	state.OwnerSeat = state.findFirstHumanSeat()
	if state.OwnerSeat >= 0 {
		logger.Debug("Owner set to human seat %d.", state.OwnerSeat)
	}
}

// MatchLeave is called when one or more players leave the match. A seat left mid-game is handed to a
// bot when bots are enabled and otherwise kept for the player to reconnect; the auto-pass timer still
// runs for it.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		seat := matchState.seatOf(userID)
		if seat < 0 {
			continue
		}
		switch {
		case matchState.Table == nil:
			matchState.Seats[seat] = ""
			logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)
		case matchState.Config.BotsEnabled:
			identity := mh.seatBot(matchState, logger, seat)
			matchState.Vacated[userID] = seat
			logger.Info("MatchLeave: Bot %s plays seat %d for %s.", identity.UserID, seat, userID)
		default:
			logger.Debug("MatchLeave: User %s left mid-game, seat %d kept.", userID, seat)
		}
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		if matchState.Table != nil {
			matchState.Service.Close(matchState.Table.ID())
		}
		return nil
	}

	mh.ensureOwner(matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCards:
			mh.handleAction(ctx, matchState, dispatcher, logger, msg, app.ActionPlay)
		case OpPassTurn:
			mh.handleAction(ctx, matchState, dispatcher, logger, msg, app.ActionPass)
		case OpRequestState:
			mh.sendStateSync(matchState, dispatcher, logger, msg.GetUserId())
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.Config.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	for _, ev := range matchState.events.drain() {
		mh.broadcastEvent(matchState, dispatcher, logger, ev)
	}
	mh.checkGameFinished(matchState, dispatcher, logger)

	return matchState
}

// secondsToTicks converts a configured delay to match ticks.
func secondsToTicks(seconds int) int64 {
	return int64(seconds) * tickRate
}

// seatBot puts a bot from the roster in seat and creates its agent.
func (mh *matchHandler) seatBot(state *MatchState, logger runtime.Logger, seat int) bot.BotIdentity {
	identity := mh.nextBotIdentity(state, seat)
	state.Seats[seat] = identity.UserID
	agent, err := bot.NewAgent(identity.UserID, identity.DisplayName, identity.Level())
	if err != nil {
		logger.Error("Failed to create bot agent for %s: %v", identity.UserID, err)
	} else {
		state.Bots[identity.UserID] = agent
	}
	return identity
}

// nextBotIdentity picks a roster identity that is not seated yet, starting from seat.
func (mh *matchHandler) nextBotIdentity(state *MatchState, seat int) bot.BotIdentity {
	for k := 0; k <= state.Roster.Len(); k++ {
		identity := state.Roster.Identity(seat + k)
		if state.seatOf(identity.UserID) < 0 {
			return identity
		}
	}
	for n := seat; ; n += domain.NumSeats {
		userID := fmt.Sprintf("bot-%d", n)
		if state.seatOf(userID) < 0 {
			return bot.BotIdentity{UserID: userID, DisplayName: fmt.Sprintf("AI Player %d", n), Difficulty: "medium"}
		}
	}
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// Auto-fill the lobby when a single human has waited long enough.
	if state.Table == nil {
		if state.GetHumanPlayerCount() != 1 {
			state.LastSinglePlayerTick = 0
			return
		}
		if state.LastSinglePlayerTick == 0 {
			state.LastSinglePlayerTick = state.Tick
			logger.Debug("processBots: Single player detected, starting auto-fill timer.")
		}
		if state.Tick-state.LastSinglePlayerTick < secondsToTicks(state.Config.BotAutoFillDelaySeconds) {
			return
		}
		added := false
		for i, seat := range state.Seats {
			if seat == "" {
				identity := mh.seatBot(state, logger, i)
				logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, identity.UserID, i)
				added = true
			}
		}
		if added {
			mh.updateLabel(state, dispatcher, logger)
			mh.broadcastMatchState(state, dispatcher, logger)
		}
		state.LastSinglePlayerTick = 0
		return
	}

	view := state.Table.PublicState()
	if view.GameOver || view.Quarantined {
		return
	}
	seat := view.Turn.Current
	userID := state.Seats[seat]
	if !state.isBot(userID) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		minDelay := secondsToTicks(state.Config.BotMinDelaySeconds)
		maxDelay := secondsToTicks(state.Config.BotMaxDelaySeconds)
		state.BotWaitUntil = state.Tick + minDelay + rand.Int63n(maxDelay-minDelay+1)
		logger.Debug("processBots: Bot %s (seat %d) will act at tick %d (current %d)", userID, seat, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[userID]
	if !exists {
		identity, _ := state.Roster.Lookup(userID)
		var err error
		agent, err = bot.NewAgent(userID, identity.DisplayName, identity.Level())
		if err != nil {
			logger.Error("processBots: Failed to create fallback agent: %v", err)
			return
		}
		state.Bots[userID] = agent
	}

	res, err := agent.Act(ctx, state.Table, seat)
	switch {
	case errors.Is(err, bot.ErrNotToAct):
		logger.Debug("processBots: Bot %s has nothing to do.", userID)
	case err != nil:
		logger.Error("processBots: Bot %s failed to act: %v", userID, err)
	case !res.Accepted:
		logger.Debug("processBots: Bot %s action not applied: %s", userID, res.Reason)
	}
}

type playerState struct {
	UserID         string `json:"user_id"`
	Seat           int    `json:"seat"`
	IsOwner        bool   `json:"is_owner"`
	IsBot          bool   `json:"is_bot"`
	Connected      bool   `json:"connected"`
	CardsRemaining int    `json:"cards_remaining"`
	DisplayName    string `json:"display_name"`
	AvatarIndex    int    `json:"avatar_index"`
}

type matchSnapshot struct {
	Seats     []string      `json:"seats"`
	OwnerSeat int           `json:"owner_seat"`
	Tick      int64         `json:"tick"`
	Phase     string        `json:"phase"`
	GameID    string        `json:"game_id,omitempty"`
	Players   []playerState `json:"players"`
}

func (mh *matchHandler) snapshot(state *MatchState) matchSnapshot {
	snap := matchSnapshot{
		Seats:     append([]string(nil), state.Seats[:]...),
		OwnerSeat: state.OwnerSeat,
		Tick:      state.Tick,
		Phase:     phaseLobby,
	}
	var counts [domain.NumSeats]int
	if state.Table != nil {
		snap.Phase = phasePlaying
		snap.GameID = state.Table.ID()
		counts = state.Table.PublicState().CardCounts
	}

	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		player := playerState{
			UserID:         userID,
			Seat:           i,
			IsOwner:        i == state.OwnerSeat,
			IsBot:          state.isBot(userID),
			CardsRemaining: counts[i],
			DisplayName:    userID,
		}
		if p, ok := state.Presences[userID]; ok {
			player.Connected = true
			player.DisplayName = p.GetUsername()
		} else if identity, ok := state.Roster.Lookup(userID); ok {
			player.DisplayName = identity.DisplayName
			player.AvatarIndex = identity.AvatarIndex
		} else if agent, ok := state.Bots[userID]; ok && agent.Name != "" {
			player.DisplayName = agent.Name
		}
		snap.Players = append(snap.Players, player)
	}
	return snap
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	data, err := encodePayload(mh.snapshot(state))
	if err != nil {
		logger.Error("Failed to marshal match state: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpMatchState, data, nil, nil, true); err != nil {
		logger.Warn("Failed to broadcast match state: %v", err)
	}
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if state.Table != nil {
		mh.sendError(state, dispatcher, logger, senderID, "", "game already running")
		return
	}
	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, "", "only the owner can start the game")
		return
	}
	if state.GetOpenSeatsCount() > 0 {
		if !state.Config.BotsEnabled {
			mh.sendError(state, dispatcher, logger, senderID, "", fmt.Sprintf("need %d players", domain.NumSeats))
			return
		}
		for i, seat := range state.Seats {
			if seat == "" {
				mh.seatBot(state, logger, i)
			}
		}
	}

	state.Games++
	tbl, deal, err := state.Service.NewGame(ctx, app.GameSpec{
		ID:          fmt.Sprintf("%s.%d", state.MatchID, state.Games),
		SeatOrder:   state.Config.SeatOrder,
		Broadcaster: state.events,
	})
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, "", "failed to start game")
		return
	}
	state.Table = tbl
	state.BotWaitUntil = 0

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(state, dispatcher, logger)
	logger.Info("StartGame: Game %s started, seat %d leads.", deal.GameID, deal.Turn.Current)
}

func (mh *matchHandler) handleAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, kind app.ActionKind) {
	senderID := msg.GetUserId()
	if state.Table == nil {
		mh.sendError(state, dispatcher, logger, senderID, "", "game not started")
		return
	}
	seat := state.seatOf(senderID)
	if seat < 0 {
		mh.sendError(state, dispatcher, logger, senderID, domain.ReasonUnknownSeat, "not seated at this table")
		return
	}

	action, err := decodeAction(kind, msg.GetData())
	if err != nil {
		logger.Warn("handleAction: Bad payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, domain.ReasonInvalidCombo, err.Error())
		return
	}

	res := state.Table.Submit(ctx, seat, action)
	if !res.Accepted {
		mh.sendError(state, dispatcher, logger, senderID, res.Reason, res.Message)
	}
}

// checkGameFinished returns the match to the lobby once the hosted game is over or quarantined.
func (mh *matchHandler) checkGameFinished(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Table == nil {
		return
	}
	view := state.Table.PublicState()
	if !view.GameOver && !view.Quarantined {
		return
	}
	if view.GameOver {
		state.LastWinnerSeat = view.Winner
		logger.Info("Game %s over, seat %d wins with %d points.", view.GameID, view.Winner, view.Scores.Totals[view.Winner])
	} else {
		logger.Error("Game %s quarantined, returning to lobby.", view.GameID)
	}

	state.Service.Close(view.GameID)
	state.Table = nil
	state.BotWaitUntil = 0
	// Seats held for absent players are released with the game.
	for userID, seat := range state.Vacated {
		delete(state.Bots, state.Seats[seat])
		state.Seats[seat] = ""
		delete(state.Vacated, userID)
	}
	for i, userID := range state.Seats {
		if userID != "" && !state.isBot(userID) {
			if _, ok := state.Presences[userID]; !ok {
				state.Seats[i] = ""
			}
		}
	}
	mh.ensureOwner(state, logger)
	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(state, dispatcher, logger)
}

var eventOpCodes = map[app.EventKind]int64{
	app.EventHandDealt:   OpHandDealt,
	app.EventDelta:       OpDelta,
	app.EventQuarantined: OpQuarantined,
}

// broadcastEvent dispatches a table event. Seat recipients are mapped to connected presences.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, seat := range ev.Recipients {
			if seat < 0 || seat >= domain.NumSeats {
				continue
			}
			if p, ok := state.Presences[state.Seats[seat]]; ok {
				recipients = append(recipients, p)
			}
		}
		// Intended recipients that are not connected (e.g. bots) must not turn into a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	data, err := encodePayload(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}
	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Warn("Failed to dispatch event %v: %v", ev.Kind, err)
	}
}

// sendStateSync sends a seated user their seat view, or an observer the public state.
func (mh *matchHandler) sendStateSync(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	presence, ok := state.Presences[userID]
	if !ok || state.Table == nil {
		return
	}
	var payload any = state.Table.PublicState()
	if seat := state.seatOf(userID); seat >= 0 {
		view, err := state.Table.SeatView(seat)
		if err != nil {
			logger.Error("Failed to build seat view: %v", err)
			return
		}
		payload = view
	}
	data, err := encodePayload(payload)
	if err != nil {
		logger.Error("Failed to marshal state sync: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpStateSync, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Warn("Failed to send state sync to %s: %v", userID, err)
	}
}

// sendError sends an error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, reason domain.Reason, message string) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	data, err := encodePayload(errorPayload{Reason: reason, Message: message})
	if err != nil {
		logger.Error("Failed to marshal error event: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Warn("Failed to send error to %s: %v", userID, err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := phaseLobby
	if state.Table != nil {
		phase = phasePlaying
	}
	label, err := matchLabel(state.GetOpenSeatsCount(), phase)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d seconds grace", graceSeconds)
	if matchState, ok := state.(*MatchState); ok && matchState.Table != nil {
		matchState.Service.Close(matchState.Table.ID())
	}
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

var _ runtime.Match = (*matchHandler)(nil)

// botDelayWindow renders the bot thinking window for logs.
func botDelayWindow(cfg config.GameConfig) string {
	minDelay, maxDelay := cfg.BotDelay()
	return fmt.Sprintf("%s-%s", minDelay.Round(time.Second), maxDelay.Round(time.Second))
}
