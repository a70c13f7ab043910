// Package ws is the transport boundary of the realtime core: it
// authenticates websocket handshakes, frames events, and runs one
// read/write pump pair per connection.
package ws

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"chat-relay/contract"
	"chat-relay/services"
)

var errInternal = fmt.Errorf("internal error")

const authFailedMessage = "Please login to access this route"

// Server upgrades authenticated HTTP requests to websocket connections and
// wires each one into the registry and the coordinators.
type Server struct {
	log        *slog.Logger
	identity   contract.IIdentity
	registry   contract.IRegistry
	messaging  *services.MessagingService
	signaling  *services.SignalingService
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewServer(log *slog.Logger, identity contract.IIdentity, registry contract.IRegistry,
	messaging *services.MessagingService, signaling *services.SignalingService,
	bufferSize int) *Server {
	return &Server{
		log:       log,
		identity:  identity,
		registry:  registry,
		messaging: messaging,
		signaling: signaling,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients connect from a separate origin; access
			// control happens via the credential, not the Origin header.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		bufferSize: bufferSize,
	}
}

// ServeHTTP authenticates, upgrades and then blocks until the connection
// dies. Authentication failures reject the handshake before any registry
// state exists, so there is never partial state to clean up.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := s.identity.Authenticate(credentialFrom(r))
	if err != nil {
		s.log.Debug("handshake rejected", "error", err)
		http.Error(w, authFailedMessage, http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "user_id", user.ID, "error", err)
		return
	}

	sink := NewSink(s.bufferSize)
	s.registry.Register(user.ID, sink)
	s.log.Info("user connected", "user_id", user.ID, "socket_id", sink.ID())

	c := &connection{
		log:       s.log,
		user:      user,
		sink:      sink,
		ws:        conn,
		messaging: s.messaging,
		signaling: s.signaling,
	}

	go c.writePump()
	c.readPump()

	// Disconnect cascade, synchronous and ordered: terminate any call the
	// user was party to, then clear presence and the registry mapping,
	// then tell everyone. An evicted connection skips the cascade — its
	// successor owns the user's state now.
	if current, ok := s.registry.HandleForUser(user.ID); !ok || current.ID() == sink.ID() {
		s.signaling.Disconnected(user)
		s.messaging.Disconnected(user, sink)
	}
	sink.ForceClose("")
	s.log.Info("user disconnected", "user_id", user.ID, "socket_id", sink.ID())
}

// credentialFrom extracts the raw token: query parameter first (browser
// websocket clients cannot set headers), then cookie, then bearer header.
func credentialFrom(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
		return auth[7:]
	}
	return ""
}
