package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy", "medium", "hard"
	AvatarIndex int    `json:"avatar_index"`
}

// Level returns the strategy this identity plays with.
func (b BotIdentity) Level() BotLevel {
	return LevelForDifficulty(b.Difficulty)
}

// Roster is the pool of bot profiles a host can seat.
type Roster struct {
	mu         sync.RWMutex
	identities []BotIdentity
	byID       map[string]BotIdentity
}

// NewRoster indexes the given identities. Identities without a user ID are indexed once provisioned.
func NewRoster(identities []BotIdentity) *Roster {
	r := &Roster{
		identities: append([]BotIdentity(nil), identities...),
		byID:       make(map[string]BotIdentity),
	}
	for _, identity := range r.identities {
		if identity.UserID != "" {
			r.byID[identity.UserID] = identity
		}
	}
	return r
}

// LoadRoster reads bot profiles from a JSON array at path.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot identities: %w", err)
	}
	var identities []BotIdentity
	if err := json.Unmarshal(data, &identities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot identities: %w", err)
	}
	return NewRoster(identities), nil
}

// Provision ensures that bot accounts exist in the Nakama database and carry the is_bot metadata.
// Failures are logged per bot; the rest of the roster is still provisioned.
func (r *Roster) Provision(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.identities {
		identity := &r.identities[i]
		if identity.DeviceID == "" {
			continue
		}

		userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
		if err != nil {
			logger.Error("failed to authenticate bot %s: %v", identity.Username, err)
			continue
		}
		identity.UserID = userID
		identity.Username = username

		metadata := map[string]interface{}{
			"is_bot":       true,
			"difficulty":   identity.Difficulty,
			"avatar_index": identity.AvatarIndex,
		}
		if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
			logger.Warn("failed to update bot account %s: %v", userID, err)
		}

		r.byID[userID] = *identity
		logger.Info("bot %s (%s) is ready, difficulty %s", identity.DisplayName, userID, identity.Difficulty)
	}
}

// Identity returns an identity by index (mod pool size). An empty roster yields synthetic bots.
func (r *Roster) Identity(index int) BotIdentity {
	if r == nil {
		return syntheticIdentity(index)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.identities) == 0 {
		return syntheticIdentity(index)
	}
	identity := r.identities[index%len(r.identities)]
	if identity.UserID == "" {
		identity.UserID = fmt.Sprintf("bot-%d", index)
	}
	return identity
}

func syntheticIdentity(index int) BotIdentity {
	return BotIdentity{
		UserID:      fmt.Sprintf("bot-%d", index),
		Username:    fmt.Sprintf("bot%d", index),
		DisplayName: fmt.Sprintf("AI Player %d", index),
		Difficulty:  "medium",
	}
}

// Lookup returns the identity for a provisioned bot user ID.
func (r *Roster) Lookup(userID string) (BotIdentity, bool) {
	if r == nil {
		return BotIdentity{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.byID[userID]
	return identity, ok
}

// IsBot reports whether the given user ID belongs to the roster or is a synthetic bot ID.
func (r *Roster) IsBot(userID string) bool {
	if _, ok := r.Lookup(userID); ok {
		return true
	}
	var n int
	_, err := fmt.Sscanf(userID, "bot-%d", &n)
	return err == nil
}

// Len returns the number of profiles.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.identities)
}
