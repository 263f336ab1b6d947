package store

import (
	"context"
	"database/sql"
	"errors"

	"chatdesk/api/apperrors"
	"chatdesk/api/models"
)

const conversationColumns = `id, business_id, visitor_id, status, created_at, updated_at`

type ConversationStore struct {
	db *sql.DB
}

func NewConversationStore(db *sql.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

func scanConversation(row rowScanner) (*models.Conversation, error) {
	c := &models.Conversation{}
	err := row.Scan(&c.ID, &c.BusinessID, &c.VisitorID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func conversationNotFound() error {
	return apperrors.NotFound("Conversation not found")
}

// CreateConversation opens a conversation with status "new".
func (s *ConversationStore) CreateConversation(ctx context.Context, businessID, visitorID string) (*models.Conversation, error) {
	query := `
		INSERT INTO conversations (business_id, visitor_id, status)
		VALUES ($1, $2, $3)
		RETURNING ` + conversationColumns
	c, err := scanConversation(s.db.QueryRowContext(ctx, query, businessID, visitorID, models.ConversationNew))
	if err != nil {
		return nil, apperrors.Persistence(err, "Failed to create conversation")
	}
	return c, nil
}

// GetConversation loads a conversation by id. It does not check which
// business the conversation belongs to.
func (s *ConversationStore) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	if !validID(id) {
		return nil, conversationNotFound()
	}
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	c, err := scanConversation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, conversationNotFound()
		}
		return nil, apperrors.Persistence(err, "Failed to load conversation")
	}
	return c, nil
}

// GetOwnedConversation loads a conversation only if its business belongs to userID.
func (s *ConversationStore) GetOwnedConversation(ctx context.Context, id, userID string) (*models.Conversation, error) {
	if !validID(id) {
		return nil, conversationNotFound()
	}
	query := `
		SELECT c.id, c.business_id, c.visitor_id, c.status, c.created_at, c.updated_at
		FROM conversations c
		INNER JOIN businesses b ON b.id = c.business_id
		WHERE c.id = $1 AND b.user_id = $2`
	c, err := scanConversation(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, conversationNotFound()
		}
		return nil, apperrors.Persistence(err, "Failed to load conversation")
	}
	return c, nil
}

func (s *ConversationStore) UpdateConversationStatus(ctx context.Context, id, userID, status string) (*models.Conversation, error) {
	if !validID(id) {
		return nil, conversationNotFound()
	}
	query := `
		UPDATE conversations c
		SET status = $3, updated_at = now()
		FROM businesses b
		WHERE c.id = $1 AND b.id = c.business_id AND b.user_id = $2
		RETURNING c.id, c.business_id, c.visitor_id, c.status, c.created_at, c.updated_at`
	c, err := scanConversation(s.db.QueryRowContext(ctx, query, id, userID, status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, conversationNotFound()
		}
		return nil, apperrors.Persistence(err, "Failed to update conversation")
	}
	return c, nil
}

// ListConversationSummaries returns the business's conversations newest
// first, each with its captured lead contacts and message count.
func (s *ConversationStore) ListConversationSummaries(ctx context.Context, businessID string) ([]models.ConversationSummary, error) {
	query := `
		SELECT c.id, c.business_id, c.visitor_id, c.status, c.created_at, c.updated_at,
			(SELECT count(*) FROM messages m WHERE m.conversation_id = c.id) AS message_count
		FROM conversations c
		WHERE c.business_id = $1
		ORDER BY c.created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, apperrors.Persistence(err, "Failed to load conversations")
	}
	defer rows.Close()

	summaries := []models.ConversationSummary{}
	index := map[string]int{}
	for rows.Next() {
		var sum models.ConversationSummary
		c := &sum.Conversation
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.VisitorID, &c.Status, &c.CreatedAt, &c.UpdatedAt, &sum.MessageCount); err != nil {
			return nil, apperrors.Persistence(err, "Failed to load conversations")
		}
		sum.Leads = []models.LeadContact{}
		index[c.ID] = len(summaries)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(err, "Failed to load conversations")
	}
	if len(summaries) == 0 {
		return summaries, nil
	}

	leadRows, err := s.db.QueryContext(ctx,
		`SELECT conversation_id, email, name, phone FROM leads WHERE business_id = $1 ORDER BY captured_at ASC`,
		businessID)
	if err != nil {
		return nil, apperrors.Persistence(err, "Failed to load leads")
	}
	defer leadRows.Close()

	for leadRows.Next() {
		var conversationID string
		var contact models.LeadContact
		if err := leadRows.Scan(&conversationID, &contact.Email, &contact.Name, &contact.Phone); err != nil {
			return nil, apperrors.Persistence(err, "Failed to load leads")
		}
		if i, ok := index[conversationID]; ok {
			summaries[i].Leads = append(summaries[i].Leads, contact)
		}
	}
	if err := leadRows.Err(); err != nil {
		return nil, apperrors.Persistence(err, "Failed to load leads")
	}
	return summaries, nil
}

func (s *ConversationStore) CountConversations(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*)
		FROM conversations c
		INNER JOIN businesses b ON b.id = c.business_id
		WHERE b.user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, apperrors.Persistence(err, "Failed to count conversations")
	}
	return n, nil
}
