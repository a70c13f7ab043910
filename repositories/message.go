//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chat-relay/domain"
)

type IMessageRepository interface {
	StoreMessage(m domain.StoredMessage) error
	GetMessages(chatID string, limit int) ([]domain.StoredMessage, error)
}

// MessageRepository persists chat messages in BadgerDB.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

type diskMessage struct {
	ID      uuid.UUID `json:"id"`
	Chat    string    `json:"chat"`
	Sender  string    `json:"sender"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// messageKey formats "msg:{chat_id}:{timestamp_padded}:{uuid}" so that:
//  1. A prefix scan per chat returns messages in chronological order
//     (19-digit zero padding keeps the lexicographical order correct).
//  2. The UUID suffix prevents data loss if two messages land on the
//     same nanosecond.
func messageKey(m domain.StoredMessage) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", m.Chat, m.At.UnixNano(), m.ID))
}

func (r MessageRepository) StoreMessage(m domain.StoredMessage) error {
	bytes, err := json.Marshal(diskMessage{
		ID:      m.ID,
		Chat:    m.Chat,
		Sender:  m.SenderID,
		Content: m.Content,
		At:      m.At,
	})
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(m), bytes)
	})
}

// GetMessages returns up to limit messages of a chat, oldest first.
// A limit of zero or less means no limit.
func (r MessageRepository) GetMessages(chatID string, limit int) ([]domain.StoredMessage, error) {
	var messages []domain.StoredMessage
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", chatID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) == limit {
				r.log.Debug(fmt.Sprintf("Maximum of %d messages reached", limit))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				var dm diskMessage
				if err := json.Unmarshal(value, &dm); err != nil {
					return err
				}
				messages = append(messages, domain.StoredMessage{
					ID:       dm.ID,
					Chat:     dm.Chat,
					SenderID: dm.Sender,
					Content:  dm.Content,
					At:       dm.At,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}
