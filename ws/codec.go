package ws

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"chat-relay/domain/event"
	"chat-relay/errors"
)

var validate = validator.New()

// Envelope is the wire framing: one JSON object per websocket text
// message, in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Decode turns a raw client frame into exactly one variant of the inbound
// event union. Unknown names and payloads that fail validation are rejected
// here, before any handler runs.
func Decode(raw []byte) (event.Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
	}

	switch env.Event {
	case event.UserJoinName:
		return decodeAs[event.UserJoin](env.Data)
	case event.CallInitiateName:
		return decodeAs[event.CallInitiate](env.Data)
	case event.CallAcceptName:
		return decodeAs[event.CallAccept](env.Data)
	case event.CallRejectName:
		return decodeAs[event.CallReject](env.Data)
	case event.CallOfferName:
		return decodeAs[event.CallOffer](env.Data)
	case event.CallAnswerName:
		return decodeAs[event.CallAnswer](env.Data)
	case event.IceCandidateName:
		return decodeAs[event.IceCandidate](env.Data)
	case event.CallEndName:
		return decodeAs[event.CallEnd](env.Data)
	case event.UserStatusName:
		return decodeAs[event.UserStatus](env.Data)
	case event.NewMessageName:
		return decodeAs[event.NewMessage](env.Data)
	case event.StartTypingName:
		return decodeAs[event.StartTyping](env.Data)
	case event.StopTypingName:
		return decodeAs[event.StopTyping](env.Data)
	case event.ChatJoinedName:
		return decodeAs[event.ChatJoined](env.Data)
	case event.ChatLeavedName:
		return decodeAs[event.ChatLeaved](env.Data)
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, env.Event)
	}
}

func decodeAs[T event.Inbound](data json.RawMessage) (event.Inbound, error) {
	var payload T
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
		}
	}
	if err := validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
	}
	return payload, nil
}
