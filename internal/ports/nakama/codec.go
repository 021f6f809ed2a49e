package nakama

import (
	"encoding/json"
	"fmt"

	"bigtwo/internal/app"
	"bigtwo/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStruct converts any JSON-encodable value to a protobuf Struct, keeping the JSON field names.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// encodePayload produces the wire form of a server event.
func encodePayload(v any) ([]byte, error) {
	s, err := toStruct(v)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// decodePayload reads a client message. An empty payload is an empty object.
func decodePayload(data []byte) (map[string]interface{}, error) {
	if len(data) == 0 {
		return map[string]interface{}{}, nil
	}
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return s.AsMap(), nil
}

// decodeAction builds an app.Action of kind from a client payload.
func decodeAction(kind app.ActionKind, data []byte) (app.Action, error) {
	m, err := decodePayload(data)
	if err != nil {
		return app.Action{}, err
	}
	action := app.Action{Kind: kind}

	if raw, ok := m["cards"]; ok {
		list, ok := raw.([]interface{})
		if !ok {
			return app.Action{}, fmt.Errorf("cards must be a list, got %T", raw)
		}
		names := make([]string, 0, len(list))
		for _, v := range list {
			name, ok := v.(string)
			if !ok {
				return app.Action{}, fmt.Errorf("card must be a string, got %T", v)
			}
			names = append(names, name)
		}
		// Card text is parsed by the gateway so a bad card is rejected and recorded there.
		action.Names = names
	}

	if raw, ok := m["version"]; ok {
		f, ok := raw.(float64)
		if !ok || f < 0 || f != float64(uint64(f)) {
			return app.Action{}, fmt.Errorf("version must be a non-negative integer, got %v", raw)
		}
		action = action.AtVersion(uint64(f))
	}
	return action, nil
}

// matchLabel is what MatchList queries see.
func matchLabel(open int, phase string) (string, error) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"game":  gameLabel,
		"open":  open,
		"phase": phase,
	})
	if err != nil {
		return "", err
	}
	data, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// errorPayload is sent privately when a client message is refused.
type errorPayload struct {
	Reason  domain.Reason `json:"reason,omitempty"`
	Message string        `json:"message"`
}
