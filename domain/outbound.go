package domain

// OutboundEvent is a transient value addressed to one or more connections.
// Data must marshal to the wire payload shape of Event.
type OutboundEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ErrorPayload is the uniform error envelope, delivered only to the
// originating connection, never broadcast.
type ErrorPayload struct {
	Message string `json:"message"`
}

func ErrorEvent(message string) OutboundEvent {
	return OutboundEvent{Event: "error", Data: ErrorPayload{Message: message}}
}
