package services

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/mocks"
)

func TestMessaging_PostMessage_Excludes_Sender_From_Fanout(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registryMock := mocks.NewMockIRegistry(ctrl)
	presenceMock := mocks.NewMockIPresence(ctrl)
	routerMock := mocks.NewMockIRouter(ctrl)
	messaging := NewMessagingService(slog.Default(), registryMock, presenceMock, routerMock, 4)

	alice := domain.User{ID: "alice", Name: "Alice"}
	others := []string{"bob", "clara"}

	// Then bob and clara receive the message and the alert, alice neither
	routerMock.EXPECT().
		Emit(others, gomock.Any()).
		Do(func(_ []string, e domain.OutboundEvent) {
			req.Equal(event.NewMessageName, e.Event)
			payload := e.Data.(newMessagePayload)
			req.Equal("chat-1", payload.ChatID)
			req.Equal("hello", payload.Message.Content)
			req.Equal("alice", payload.Message.Sender.ID)
			req.Equal("Alice", payload.Message.Sender.Name)
			req.NotEmpty(payload.Message.CreatedAt)
		}).
		Times(1)
	routerMock.EXPECT().
		Emit(others, gomock.Any()).
		Do(func(_ []string, e domain.OutboundEvent) {
			req.Equal(event.NewMessageAlertName, e.Event)
			req.Equal(chatRef{ChatID: "chat-1"}, e.Data)
		}).
		Times(1)

	// When alice posts a message in a chat she is member of
	messaging.PostMessage(alice, event.NewMessage{
		ChatID:  "chat-1",
		Members: []string{"alice", "bob", "clara"},
		Message: "hello",
	})

	// And the durable write is queued after the fan-out
	select {
	case stored := <-messaging.PersistQueue():
		req.Equal("chat-1", stored.Chat)
		req.Equal("alice", stored.SenderID)
		req.Equal("hello", stored.Content)
		req.NotEmpty(stored.ID)
	default:
		req.Fail("message was not queued for persistence")
	}
}

func TestMessaging_PostMessage_Full_Queue_Drops_Durable_Write(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	routerMock := mocks.NewMockIRouter(ctrl)
	messaging := NewMessagingService(slog.Default(),
		mocks.NewMockIRegistry(ctrl), mocks.NewMockIPresence(ctrl), routerMock, 1)
	routerMock.EXPECT().Emit(gomock.Any(), gomock.Any()).AnyTimes()

	alice := domain.User{ID: "alice"}
	ev := event.NewMessage{ChatID: "chat-1", Members: []string{"alice", "bob"}, Message: "hi"}

	// When the persist queue saturates, realtime posting still succeeds
	messaging.PostMessage(alice, ev)
	messaging.PostMessage(alice, ev)
	messaging.PostMessage(alice, ev)
}

func TestMessaging_Typing_Relays_To_Other_Members_Only(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	routerMock := mocks.NewMockIRouter(ctrl)
	messaging := NewMessagingService(slog.Default(),
		mocks.NewMockIRegistry(ctrl), mocks.NewMockIPresence(ctrl), routerMock, 4)

	routerMock.EXPECT().
		Emit([]string{"bob"}, gomock.Any()).
		Do(func(_ []string, e domain.OutboundEvent) {
			req.Equal(event.StartTypingName, e.Event)
			req.Equal(chatRef{ChatID: "chat-1"}, e.Data)
		}).
		Times(1)

	messaging.Typing(domain.User{ID: "alice"}, event.StartTypingName,
		"chat-1", []string{"alice", "bob"})
}

func TestMessaging_ChatJoined_Broadcasts_Snapshot_To_Members(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	presenceMock := mocks.NewMockIPresence(ctrl)
	routerMock := mocks.NewMockIRouter(ctrl)
	messaging := NewMessagingService(slog.Default(),
		mocks.NewMockIRegistry(ctrl), presenceMock, routerMock, 4)

	members := []string{"alice", "bob"}

	// Given the presence mutation happens before the snapshot is taken
	gomock.InOrder(
		presenceMock.EXPECT().MarkJoined("alice").Times(1),
		presenceMock.EXPECT().Snapshot().Return([]string{"alice"}).Times(1),
	)
	routerMock.EXPECT().
		Emit(members, gomock.Any()).
		Do(func(_ []string, e domain.OutboundEvent) {
			req.Equal(event.OnlineUsersName, e.Event)
			req.Equal([]string{"alice"}, e.Data)
		}).
		Times(1)

	err := messaging.ChatJoined(domain.User{ID: "alice"},
		event.ChatJoined{UserID: "alice", Members: members})
	req.NoError(err)
}

func TestMessaging_ChatJoined_Rejects_Foreign_Identity(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No presence mutation and no emission may happen
	messaging := NewMessagingService(slog.Default(),
		mocks.NewMockIRegistry(ctrl), mocks.NewMockIPresence(ctrl),
		mocks.NewMockIRouter(ctrl), 4)

	// When a connection authenticated as alice claims someone else joined
	err := messaging.ChatJoined(domain.User{ID: "alice"},
		event.ChatJoined{UserID: "ghost", Members: []string{"alice", "ghost"}})

	req.ErrorIs(err, errors.ErrUnauthorized)
}

func TestMessaging_ChatLeaved_Rejects_Foreign_Identity(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	messaging := NewMessagingService(slog.Default(),
		mocks.NewMockIRegistry(ctrl), mocks.NewMockIPresence(ctrl),
		mocks.NewMockIRouter(ctrl), 4)

	// When alice tries to knock bob out of the presence set
	err := messaging.ChatLeaved(domain.User{ID: "alice"},
		event.ChatLeaved{UserID: "bob", Members: []string{"alice", "bob"}})

	req.ErrorIs(err, errors.ErrUnauthorized)
}

func TestMessaging_ChatLeaved_Broadcasts_Snapshot_To_Members(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	presenceMock := mocks.NewMockIPresence(ctrl)
	routerMock := mocks.NewMockIRouter(ctrl)
	messaging := NewMessagingService(slog.Default(),
		mocks.NewMockIRegistry(ctrl), presenceMock, routerMock, 4)

	gomock.InOrder(
		presenceMock.EXPECT().MarkLeft("alice").Times(1),
		presenceMock.EXPECT().Snapshot().Return([]string{"bob"}).Times(1),
	)
	routerMock.EXPECT().
		Emit([]string{"alice", "bob"}, gomock.Any()).
		Do(func(_ []string, e domain.OutboundEvent) {
			req.Equal(event.OnlineUsersName, e.Event)
			req.Equal([]string{"bob"}, e.Data)
		}).
		Times(1)

	err := messaging.ChatLeaved(domain.User{ID: "alice"},
		event.ChatLeaved{UserID: "alice", Members: []string{"alice", "bob"}})
	req.NoError(err)
}

func TestMessaging_Disconnected_Clears_State_And_Broadcasts(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registryMock := mocks.NewMockIRegistry(ctrl)
	presenceMock := mocks.NewMockIPresence(ctrl)
	routerMock := mocks.NewMockIRouter(ctrl)
	messaging := NewMessagingService(slog.Default(), registryMock, presenceMock, routerMock, 4)

	sinkMock := mocks.NewMockEventSink(ctrl)

	presenceMock.EXPECT().MarkDisconnected("alice").Times(1)
	registryMock.EXPECT().Unregister("alice", sinkMock).Times(1)
	presenceMock.EXPECT().Snapshot().Return([]string{"bob"}).Times(1)
	routerMock.EXPECT().
		Broadcast(gomock.Any()).
		Do(func(e domain.OutboundEvent) {
			req.Equal(event.OnlineUsersName, e.Event)
			req.Equal([]string{"bob"}, e.Data)
		}).
		Times(1)

	messaging.Disconnected(domain.User{ID: "alice"}, sinkMock)
}
