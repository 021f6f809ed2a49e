package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bigtwo/internal/domain"
	"bigtwo/internal/logging"
	"bigtwo/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// Options wires a Service. Zero values fall back to the wall clock, a discarding logger, the default
// score rules, and DefaultAutoPassDelay. A negative AutoPass disables the auto-pass timer.
type Options struct {
	Logger   runtime.Logger
	Clock    Clock
	Store    ports.SnapshotStore
	History  ports.ActionLog
	Rules    *domain.ScoreRules
	AutoPass time.Duration
}

// Service owns the tables of every active game. There is no other game state in the process.
type Service struct {
	mu     sync.RWMutex
	tables map[string]*Table

	logger   runtime.Logger
	clock    Clock
	store    ports.SnapshotStore
	history  ports.ActionLog
	rules    domain.ScoreRules
	autoPass time.Duration
}

// NewService constructs a Service.
func NewService(opts Options) *Service {
	s := &Service{
		tables:   make(map[string]*Table),
		logger:   opts.Logger,
		clock:    opts.Clock,
		store:    opts.Store,
		history:  opts.History,
		rules:    domain.DefaultScoreRules(),
		autoPass: opts.AutoPass,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if opts.Rules != nil {
		s.rules = *opts.Rules
	}
	if s.autoPass == 0 {
		s.autoPass = DefaultAutoPassDelay
	}
	return s
}

// GameSpec describes a new game. An empty ID gets a fresh UUID, a zero Seed a time-based one,
// and an empty SeatOrder the default anticlockwise order.
type GameSpec struct {
	ID          string
	Seed        int64
	SeatOrder   []int
	Broadcaster Broadcaster
}

// Deal is the initial state of a new game. Hands must only be forwarded to their own seat.
type Deal struct {
	GameID string
	Seed   int64
	Turn   TurnView
	Hands  [domain.NumSeats][]domain.Card
}

// NewGame deals the first match of a new game and registers its table. Each hand is also published
// privately to its seat through the broadcaster.
func (s *Service) NewGame(ctx context.Context, spec GameSpec) (*Table, Deal, error) {
	if spec.ID == "" {
		spec.ID = uuid.NewString()
	}
	if spec.Seed == 0 {
		spec.Seed = time.Now().UnixNano()
	}
	order := spec.SeatOrder
	if len(order) == 0 {
		order = domain.DefaultSeatOrder
	}
	rotation, err := domain.NewRotation(order)
	if err != nil {
		return nil, Deal{}, fmt.Errorf("invalid seat order: %w", err)
	}
	game, err := domain.NewGame(spec.Seed, rotation, s.rules)
	if err != nil {
		return nil, Deal{}, fmt.Errorf("failed to start game: %w", err)
	}

	t := newTable(spec.ID, game, s.deps(spec.Broadcaster))
	if err := s.register(t); err != nil {
		return nil, Deal{}, err
	}

	t.mu.Lock()
	deal := Deal{GameID: t.id, Seed: spec.Seed, Turn: turnView(game)}
	for seat := range deal.Hands {
		deal.Hands[seat] = game.Hand(seat)
	}
	t.dealLocked()
	step := t.commitLocked()
	t.mu.Unlock()
	t.persist(ctx, step)

	t.logger.WithFields(map[string]interface{}{
		"seed": spec.Seed,
		"lead": deal.Turn.Current,
	}).Info("game started")
	return t, deal, nil
}

// Resume rebuilds a game from its latest snapshot, e.g. after a restart. A game that is already
// registered is returned as is.
func (s *Service) Resume(ctx context.Context, gameID string, b Broadcaster) (*Table, error) {
	if t, err := s.Table(gameID); err == nil {
		return t, nil
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: no snapshot store configured", ErrGameNotFound)
	}
	data, _, err := s.store.LoadSnapshot(ctx, gameID)
	if errors.Is(err, ports.ErrSnapshotNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}

	deps := s.deps(b)
	deps.AutoPass = snap.AutoPass
	t := restoreTable(snap, deps)
	if err := s.register(t); err != nil {
		t.Close()
		return s.Table(gameID)
	}
	t.logger.WithField("version", snap.Version).Info("game resumed")
	return t, nil
}

// Submit routes an action to the game's table.
func (s *Service) Submit(ctx context.Context, gameID string, seat int, action Action) (Result, error) {
	t, err := s.Table(gameID)
	if err != nil {
		return Result{}, err
	}
	return t.Submit(ctx, seat, action), nil
}

// PublicState returns what any observer of the game may see.
func (s *Service) PublicState(gameID string) (PublicState, error) {
	t, err := s.Table(gameID)
	if err != nil {
		return PublicState{}, err
	}
	return t.PublicState(), nil
}

// Hand returns one seat's hand.
func (s *Service) Hand(gameID string, seat int) ([]domain.Card, error) {
	t, err := s.Table(gameID)
	if err != nil {
		return nil, err
	}
	return t.Hand(seat)
}

// Table looks up a registered game.
func (s *Service) Table(gameID string) (*Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return t, nil
}

// Games returns the ids of every registered game.
func (s *Service) Games() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.tables))
	for id := range s.tables {
		ids = append(ids, id)
	}
	return ids
}

// Close stops a game's timer and forgets it. The last snapshot stays in the store.
func (s *Service) Close(gameID string) {
	s.mu.Lock()
	t, ok := s.tables[gameID]
	delete(s.tables, gameID)
	s.mu.Unlock()
	if ok {
		t.Close()
	}
}

func (s *Service) register(t *Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[t.id]; ok {
		return fmt.Errorf("%w: %s", ErrGameExists, t.id)
	}
	s.tables[t.id] = t
	return nil
}

func (s *Service) deps(b Broadcaster) tableDeps {
	autoPass := s.autoPass
	if autoPass < 0 {
		autoPass = 0
	}
	return tableDeps{
		AutoPass:    autoPass,
		Clock:       s.clock,
		Logger:      s.logger,
		Broadcaster: b,
		Store:       s.store,
		History:     s.history,
	}
}
