package store

import (
	"context"
	"database/sql"

	"chatdesk/api/apperrors"
	"chatdesk/api/models"
)

type MessageStore struct {
	db *sql.DB
}

func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

// AppendExchange stores the visitor's message and the assistant reply, in
// that order, with a single statement.
func (s *MessageStore) AppendExchange(ctx context.Context, conversationID, userContent, assistantContent string) error {
	if !validID(conversationID) {
		return conversationNotFound()
	}
	query := `
		INSERT INTO messages (conversation_id, role, content)
		VALUES ($1, $2, $3), ($1, $4, $5)`
	_, err := s.db.ExecContext(ctx, query,
		conversationID, models.RoleUser, userContent, models.RoleAssistant, assistantContent)
	if err != nil {
		return apperrors.Persistence(err, "Failed to save messages")
	}
	return nil
}

// ListMessages returns a conversation's messages in creation order. seq
// breaks ties between rows written by the same statement.
func (s *MessageStore) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, seq ASC`, conversationID)
	if err != nil {
		return nil, apperrors.Persistence(err, "Failed to load messages")
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, apperrors.Persistence(err, "Failed to load messages")
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(err, "Failed to load messages")
	}
	return messages, nil
}
