package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"bigtwo/internal/app"
	"bigtwo/internal/bot"
	"bigtwo/internal/config"
	"bigtwo/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type stubPresence struct{ id string }

func (p stubPresence) GetHidden() bool                   { return false }
func (p stubPresence) GetPersistence() bool              { return true }
func (p stubPresence) GetUsername() string               { return p.id }
func (p stubPresence) GetStatus() string                 { return "" }
func (p stubPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonJoin }
func (p stubPresence) GetUserId() string                 { return p.id }
func (p stubPresence) GetSessionId() string              { return p.id + "-sid" }
func (p stubPresence) GetNodeId() string                 { return "node1" }

type stubMatchData struct {
	stubPresence
	op   int64
	data []byte
}

func (m stubMatchData) GetOpCode() int64      { return m.op }
func (m stubMatchData) GetData() []byte       { return m.data }
func (m stubMatchData) GetReliable() bool     { return true }
func (m stubMatchData) GetReceiveTime() int64 { return 0 }

type sentMessage struct {
	op        int64
	data      []byte
	presences []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	messages     []sentMessage
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.messages = append(md.messages, sentMessage{op: opCode, data: append([]byte(nil), data...), presences: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) withOp(op int64) []sentMessage {
	var out []sentMessage
	for _, m := range md.messages {
		if m.op == op {
			out = append(out, m)
		}
	}
	return out
}

func (md *mockDispatcher) reset() {
	md.messages = nil
}

func decodeMessage(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	return s.AsMap()
}

func encodeMessage(t *testing.T, m map[string]interface{}) []byte {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("failed to build payload: %v", err)
	}
	data, err := proto.Marshal(s)
	if err != nil {
		t.Fatalf("failed to encode payload: %v", err)
	}
	return data
}

type testMatch struct {
	handler    *matchHandler
	state      *MatchState
	dispatcher *mockDispatcher
	tick       int64
}

func testConfig() config.GameConfig {
	cfg := config.DefaultGameConfig()
	cfg.AutoPassMillis = -1
	return cfg
}

func newTestMatch(t *testing.T, cfg config.GameConfig) *testMatch {
	t.Helper()
	handler := newMatchHandler(cfg, bot.NewRoster(nil))
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_MATCH_ID, "match-1")
	state, rate, label := handler.MatchInit(ctx, noopLogger{}, nil, nil, nil)
	if state == nil || rate != tickRate || label == "" {
		t.Fatalf("MatchInit returned state=%v rate=%d label=%q", state, rate, label)
	}
	return &testMatch{handler: handler, state: state.(*MatchState), dispatcher: &mockDispatcher{}}
}

func (tm *testMatch) join(t *testing.T, userIDs ...string) {
	t.Helper()
	presences := make([]runtime.Presence, 0, len(userIDs))
	for _, id := range userIDs {
		_, ok, reason := tm.handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, tm.dispatcher, tm.tick, tm.state, stubPresence{id}, nil)
		if !ok {
			t.Fatalf("join attempt by %s refused: %s", id, reason)
		}
		presences = append(presences, stubPresence{id})
	}
	tm.handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, tm.dispatcher, tm.tick, tm.state, presences)
}

func (tm *testMatch) leave(userIDs ...string) interface{} {
	presences := make([]runtime.Presence, 0, len(userIDs))
	for _, id := range userIDs {
		presences = append(presences, stubPresence{id})
	}
	return tm.handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, tm.dispatcher, tm.tick, tm.state, presences)
}

func (tm *testMatch) loop(messages ...runtime.MatchData) {
	tm.tick++
	tm.handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, tm.dispatcher, tm.tick, tm.state, messages)
}

func send(userID string, op int64, data []byte) runtime.MatchData {
	return stubMatchData{stubPresence: stubPresence{userID}, op: op, data: data}
}

func TestMatchInitLabelAndEnv(t *testing.T) {
	tm := newTestMatch(t, testConfig())
	if tm.state.Config.BotsEnabled {
		t.Fatal("bots are off by default")
	}

	handler := newMatchHandler(testConfig(), nil)
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_ENV, map[string]string{
		config.EnvBotsEnabled: "true",
		config.EnvScoreLimit:  "50",
	})
	state, _, label := handler.MatchInit(ctx, noopLogger{}, nil, nil, nil)
	ms := state.(*MatchState)
	if !ms.Config.BotsEnabled || ms.Config.ScoreLimit != 50 {
		t.Fatalf("env overrides not applied: %+v", ms.Config)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(label), &parsed); err != nil {
		t.Fatalf("label is not JSON: %v", err)
	}
	if parsed["game"] != gameLabel || parsed["phase"] != phaseLobby || parsed["open"] != float64(4) {
		t.Fatalf("unexpected label %s", label)
	}
}

func TestJoinAssignsSeatsAndOwner(t *testing.T) {
	tm := newTestMatch(t, testConfig())
	tm.join(t, "u0", "u1")

	if tm.state.Seats != [4]string{"u0", "u1", "", ""} {
		t.Fatalf("seats = %v", tm.state.Seats)
	}
	if tm.state.OwnerSeat != 0 {
		t.Fatalf("owner seat = %d, want 0", tm.state.OwnerSeat)
	}
	if len(tm.dispatcher.withOp(OpMatchState)) != 1 || tm.dispatcher.labelUpdates != 1 {
		t.Fatal("expected one match state broadcast and one label update")
	}

	tm.leave("u0")
	if tm.state.Seats[0] != "" || tm.state.OwnerSeat != 1 {
		t.Fatalf("after owner left: seats=%v owner=%d", tm.state.Seats, tm.state.OwnerSeat)
	}
	if tm.leave("u1") != nil {
		t.Fatal("match should terminate when the last human leaves")
	}
}

func TestMatchFullRejectsJoin(t *testing.T) {
	tm := newTestMatch(t, testConfig())
	tm.join(t, "u0", "u1", "u2", "u3")

	_, ok, _ := tm.handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, tm.dispatcher, 0, tm.state, stubPresence{"u4"}, nil)
	if ok {
		t.Fatal("fifth player admitted")
	}
	_, ok, _ = tm.handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, tm.dispatcher, 0, tm.state, stubPresence{"u2"}, nil)
	if !ok {
		t.Fatal("seated player could not reconnect")
	}
}

func TestStartGameAndSubmitActions(t *testing.T) {
	tm := newTestMatch(t, testConfig())
	tm.join(t, "u0", "u1", "u2")

	tm.loop(send("u0", OpStartGame, nil))
	if tm.state.Table != nil {
		t.Fatal("game started with an empty seat and bots disabled")
	}
	if len(tm.dispatcher.withOp(OpGameError)) != 1 {
		t.Fatal("expected an error for the owner")
	}

	tm.join(t, "u3")
	tm.dispatcher.reset()
	tm.loop(send("u1", OpStartGame, nil))
	if tm.state.Table != nil {
		t.Fatal("non-owner started the game")
	}

	tm.dispatcher.reset()
	tm.loop(send("u0", OpStartGame, nil))
	if tm.state.Table == nil {
		t.Fatal("owner could not start the game")
	}
	dealt := tm.dispatcher.withOp(OpHandDealt)
	if len(dealt) != domain.NumSeats {
		t.Fatalf("hand_dealt messages = %d, want %d", len(dealt), domain.NumSeats)
	}
	for _, m := range dealt {
		if len(m.presences) != 1 {
			t.Fatalf("hand delivered to %d presences", len(m.presences))
		}
		payload := decodeMessage(t, m.data)
		seat := int(payload["seat"].(float64))
		if tm.state.Seats[seat] != m.presences[0].GetUserId() {
			t.Fatalf("hand for seat %d sent to %s", seat, m.presences[0].GetUserId())
		}
		if hand := payload["hand"].([]interface{}); len(hand) != domain.HandSize {
			t.Fatalf("hand has %d cards", len(hand))
		}
	}

	lead := tm.state.Table.PublicState().Turn.Current
	leadUser := tm.state.Seats[lead]
	otherUser := tm.state.Seats[(lead+1)%domain.NumSeats]

	tm.dispatcher.reset()
	tm.loop(send(otherUser, OpPassTurn, nil))
	errs := tm.dispatcher.withOp(OpGameError)
	if len(errs) != 1 || errs[0].presences[0].GetUserId() != otherUser {
		t.Fatalf("expected one private error, got %d", len(errs))
	}
	if reason := decodeMessage(t, errs[0].data)["reason"]; reason != string(domain.ReasonNotYourTurn) {
		t.Fatalf("reason = %v", reason)
	}

	tm.dispatcher.reset()
	tm.loop(send(leadUser, OpPlayCards, encodeMessage(t, map[string]interface{}{"cards": []interface{}{float64(5)}})))
	errs = tm.dispatcher.withOp(OpGameError)
	if len(errs) != 1 || decodeMessage(t, errs[0].data)["reason"] != string(domain.ReasonInvalidCombo) {
		t.Fatal("malformed cards should be refused as invalid_combo")
	}

	tm.dispatcher.reset()
	tm.loop(send(leadUser, OpPlayCards, encodeMessage(t, map[string]interface{}{"cards": []interface{}{"3S", "1X"}})))
	errs = tm.dispatcher.withOp(OpGameError)
	if len(errs) != 1 || decodeMessage(t, errs[0].data)["reason"] != string(domain.ReasonInvalidCombo) {
		t.Fatal("unknown card text should be refused as invalid_combo")
	}
	if v := tm.state.Table.Version(); v != 0 {
		t.Fatalf("rejected play changed the version to %d", v)
	}

	tm.dispatcher.reset()
	tm.loop(send(leadUser, OpPlayCards, encodeMessage(t, map[string]interface{}{
		"cards":   []interface{}{"3S"},
		"version": float64(0),
	})))
	deltas := tm.dispatcher.withOp(OpDelta)
	if len(deltas) != 1 || deltas[0].presences != nil {
		t.Fatalf("expected one broadcast delta, got %d", len(deltas))
	}
	delta := decodeMessage(t, deltas[0].data)
	if delta["version"] != float64(1) || delta["seat"] != float64(lead) {
		t.Fatalf("unexpected delta %v", delta)
	}
	if len(tm.dispatcher.withOp(OpGameError)) != 0 {
		t.Fatal("accepted play produced an error")
	}

	var label map[string]interface{}
	if err := json.Unmarshal([]byte(tm.dispatcher.lastLabel), &label); err != nil || label["phase"] != phasePlaying {
		t.Fatalf("label = %s", tm.dispatcher.lastLabel)
	}
}

func TestProcessBotsFillsLobbyForSoloHuman(t *testing.T) {
	cfg := testConfig()
	cfg.BotsEnabled = true
	cfg.BotAutoFillDelaySeconds = 2
	tm := newTestMatch(t, cfg)
	tm.join(t, "u0")

	tm.loop()
	if tm.state.LastSinglePlayerTick == 0 {
		t.Fatal("auto-fill timer not started")
	}
	for i := int64(0); i < secondsToTicks(2); i++ {
		tm.loop()
	}

	bots := 0
	for _, seat := range tm.state.Seats {
		if tm.state.isBot(seat) {
			bots++
		}
	}
	if bots != 3 {
		t.Fatalf("bots = %d, want 3 (seats %v)", bots, tm.state.Seats)
	}
	if len(tm.state.Bots) != 3 {
		t.Fatalf("agents = %d, want 3", len(tm.state.Bots))
	}
	if tm.state.LastSinglePlayerTick != 0 {
		t.Fatalf("expected auto-fill timer reset, got %d", tm.state.LastSinglePlayerTick)
	}

	// A human arriving in the lobby takes a bot's seat.
	tm.join(t, "u1")
	if tm.state.seatOf("u1") < 0 || len(tm.state.Bots) != 2 {
		t.Fatalf("human did not replace a bot: seats %v", tm.state.Seats)
	}
}

func TestFullGameAgainstBots(t *testing.T) {
	cfg := testConfig()
	cfg.BotsEnabled = true
	cfg.BotMinDelaySeconds = 0
	cfg.BotMaxDelaySeconds = 0
	cfg.ScoreLimit = 20
	tm := newTestMatch(t, cfg)
	tm.join(t, "u0")
	tm.loop(send("u0", OpStartGame, nil))
	if tm.state.Table == nil {
		t.Fatal("game did not start with bot fill")
	}

	human := &bot.GoodBot{}
	for i := 0; i < 200000 && tm.state.Table != nil; i++ {
		view, err := tm.state.Table.SeatView(0)
		if err != nil {
			t.Fatal(err)
		}
		if view.Turn.Current != 0 || view.GameOver {
			tm.loop()
			continue
		}
		move, err := human.CalculateMove(view)
		if err != nil {
			t.Fatal(err)
		}
		payload := map[string]interface{}{"version": float64(view.Version)}
		op := OpPassTurn
		if !move.Pass {
			cards := make([]interface{}, 0, len(move.Cards))
			for _, c := range move.Cards {
				cards = append(cards, c.String())
			}
			payload["cards"] = cards
			op = OpPlayCards
		}
		tm.loop(send("u0", op, encodeMessage(t, payload)))
	}

	if tm.state.Table != nil {
		t.Fatal("game did not finish")
	}
	if n := len(tm.dispatcher.withOp(OpGameError)); n != 0 {
		t.Fatalf("human got %d errors", n)
	}
	if len(tm.dispatcher.withOp(OpQuarantined)) != 0 {
		t.Fatal("game was quarantined")
	}
	if tm.state.LastWinnerSeat < 0 || tm.state.LastWinnerSeat >= domain.NumSeats {
		t.Fatalf("winner seat = %d", tm.state.LastWinnerSeat)
	}
	if tm.state.Games != 1 {
		t.Fatalf("games = %d", tm.state.Games)
	}
}

func TestLeaveMidGameHandsSeatToBotAndBack(t *testing.T) {
	cfg := testConfig()
	cfg.BotsEnabled = true
	tm := newTestMatch(t, cfg)
	tm.join(t, "u0", "u1", "u2", "u3")
	tm.loop(send("u0", OpStartGame, nil))
	if tm.state.Table == nil {
		t.Fatal("game not started")
	}

	tm.leave("u2")
	if seat, ok := tm.state.Vacated["u2"]; !ok || seat != 2 {
		t.Fatalf("vacated = %v", tm.state.Vacated)
	}
	if !tm.state.isBot(tm.state.Seats[2]) {
		t.Fatalf("seat 2 = %q, want a bot", tm.state.Seats[2])
	}

	tm.dispatcher.reset()
	tm.join(t, "u2")
	if tm.state.Seats[2] != "u2" || len(tm.state.Vacated) != 0 {
		t.Fatalf("u2 did not get seat 2 back: %v", tm.state.Seats)
	}
	syncs := tm.dispatcher.withOp(OpStateSync)
	if len(syncs) != 1 {
		t.Fatalf("state syncs = %d, want 1", len(syncs))
	}
	if hand := decodeMessage(t, syncs[0].data)["hand"].([]interface{}); len(hand) != domain.HandSize {
		t.Fatalf("seat view has %d cards", len(hand))
	}
}

func TestLeaveMidGameWithoutBotsKeepsSeat(t *testing.T) {
	tm := newTestMatch(t, testConfig())
	tm.join(t, "u0", "u1", "u2", "u3")
	tm.loop(send("u0", OpStartGame, nil))

	tm.leave("u3")
	if tm.state.Seats[3] != "u3" {
		t.Fatalf("seat 3 = %q, want it kept for u3", tm.state.Seats[3])
	}
	_, ok, _ := tm.handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, tm.dispatcher, 0, tm.state, stubPresence{"u3"}, nil)
	if !ok {
		t.Fatal("u3 could not reconnect")
	}
}

func TestBroadcastEventSkipsAbsentRecipients(t *testing.T) {
	tm := newTestMatch(t, testConfig())
	tm.join(t, "u0")
	tm.state.Seats[1] = "bot-1"
	tm.dispatcher.reset()

	tm.handler.broadcastEvent(tm.state, tm.dispatcher, noopLogger{}, app.Event{
		Kind:       app.EventHandDealt,
		Payload:    app.HandDealtPayload{Seat: 1},
		Recipients: []int{1},
	})
	if len(tm.dispatcher.messages) != 0 {
		t.Fatal("private event for a bot must not be broadcast")
	}

	tm.handler.broadcastEvent(tm.state, tm.dispatcher, noopLogger{}, app.Event{
		Kind:       app.EventHandDealt,
		Payload:    app.HandDealtPayload{Seat: 0},
		Recipients: []int{0},
	})
	if len(tm.dispatcher.messages) != 1 || tm.dispatcher.messages[0].presences[0].GetUserId() != "u0" {
		t.Fatal("private event not delivered to its seat")
	}
}
