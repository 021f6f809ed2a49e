package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameBigTwo is the authoritative match handler name registered with Nakama.
	MatchNameBigTwo = "bigtwo_match"

	// gameLabel tags our matches in the label so quick match ignores other modules' matches.
	gameLabel = "bigtwo"

	// tickRate is the number of MatchLoop calls per second.
	tickRate = 5
)

// Op codes for client messages and server events. Payloads are protobuf-encoded google.protobuf.Struct.
const (
	// Client -> Server
	OpStartGame    int64 = 1
	OpPlayCards    int64 = 2 // {"cards": ["3S", ...], "version": n}
	OpPassTurn     int64 = 3 // {"version": n}
	OpRequestState int64 = 4

	// Server -> Client events
	OpMatchState  int64 = 101 // seats and owners, broadcast on every lobby change
	OpHandDealt   int64 = 104 // send privately
	OpDelta       int64 = 105
	OpGameError   int64 = 108 // send privately
	OpQuarantined int64 = 109
	OpStateSync   int64 = 110 // seat view, send privately
)
