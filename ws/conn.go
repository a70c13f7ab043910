package ws

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // SDP offers can be large
)

// connection couples one authenticated websocket to its sink. The read
// pump handles the client's events strictly in arrival order; the write
// pump is the single writer on the socket.
type connection struct {
	log       *slog.Logger
	user      domain.User
	sink      *Sink
	ws        *websocket.Conn
	messaging *services.MessagingService
	signaling *services.SignalingService
}

// readPump decodes and dispatches frames until the socket dies. It returns
// on any read error; the caller runs the disconnect cascade.
func (c *connection) readPump() {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("read failed", "user_id", c.user.ID, "error", err)
			}
			return
		}

		inbound, err := Decode(raw)
		if err != nil {
			c.deliverError(err)
			continue
		}
		c.dispatch(inbound)
	}
}

// writePump serializes outbound events onto the socket and keeps the
// connection alive with pings. A force-closed sink turns into a close
// frame carrying the reason.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case e := <-c.sink.Events():
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.sink.Closed():
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, c.sink.CloseReason()))
			return
		}
	}
}

// dispatch routes one decoded event to its coordinator. Handler failures
// are converted to a scoped error emission here and must never escape: one
// user's bad event cannot take down the shared process.
func (c *connection) dispatch(inbound event.Inbound) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("handler panic", "event", inbound.EventName(), "user_id", c.user.ID, "panic", r)
			c.deliverError(errInternal)
		}
	}()

	var err error
	switch ev := inbound.(type) {
	case event.UserJoin:
		err = c.signaling.Join(c.user, c.sink, ev)
	case event.CallInitiate:
		err = c.signaling.Initiate(c.user, ev)
	case event.CallAccept:
		err = c.signaling.Accept(c.user, ev)
	case event.CallReject:
		err = c.signaling.Reject(c.user, ev)
	case event.CallOffer:
		err = c.signaling.Offer(c.user, ev)
	case event.CallAnswer:
		err = c.signaling.Answer(c.user, ev)
	case event.IceCandidate:
		err = c.signaling.Ice(c.user, ev)
	case event.CallEnd:
		err = c.signaling.End(c.user, ev)
	case event.UserStatus:
		c.signaling.Status(c.user, ev)
	case event.NewMessage:
		c.messaging.PostMessage(c.user, ev)
	case event.StartTyping:
		c.messaging.Typing(c.user, event.StartTypingName, ev.ChatID, ev.Members)
	case event.StopTyping:
		c.messaging.Typing(c.user, event.StopTypingName, ev.ChatID, ev.Members)
	case event.ChatJoined:
		err = c.messaging.ChatJoined(c.user, ev)
	case event.ChatLeaved:
		err = c.messaging.ChatLeaved(c.user, ev)
	}
	if err != nil {
		c.deliverError(err)
	}
}

func (c *connection) deliverError(err error) {
	if deliverErr := c.sink.Deliver(domain.ErrorEvent(err.Error())); deliverErr != nil {
		c.log.Debug("error event dropped", "user_id", c.user.ID, "error", deliverErr)
	}
}
