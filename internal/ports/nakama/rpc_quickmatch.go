package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// quickMatchQuery finds our lobbies that still have a free seat.
var quickMatchQuery = fmt.Sprintf("+label.game:%s +label.phase:%s +label.open:>=1", gameLabel, phaseLobby)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	limit := 10
	authoritative := true
	minSize := 1
	maxSize := 3 // a match with four presences is full

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery)
	if err != nil {
		logger.Error("QuickMatch [User:%s]: MatchList error: %v", userID, err)
		return "", err
	}

	resp := QuickMatchResponse{}
	if len(matches) > 0 {
		resp.MatchID = matches[0].MatchId
	} else {
		// Seat and owner assignment happens in MatchJoin.
		resp.MatchID, err = nk.MatchCreate(ctx, MatchNameBigTwo, map[string]interface{}{})
		if err != nil {
			logger.Error("QuickMatch [User:%s]: MatchCreate error: %v", userID, err)
			return "", err
		}
		resp.IsNew = true
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	logger.Info("QuickMatch [User:%s]: match %s (new=%t)", userID, resp.MatchID, resp.IsNew)
	return string(b), nil
}
