package store

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"chatdesk/api/apperrors"
	"chatdesk/api/models"
)

type LeadStore struct {
	db *sql.DB
}

func NewLeadStore(db *sql.DB) *LeadStore {
	return &LeadStore{db: db}
}

// CreateLead inserts a lead. Leads are not deduplicated by email.
func (s *LeadStore) CreateLead(ctx context.Context, businessID, conversationID string, contact models.LeadContact) (*models.Lead, error) {
	query := `
		INSERT INTO leads (business_id, conversation_id, email, name, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, business_id, conversation_id, email, name, phone, captured_at, created_at`
	l := &models.Lead{}
	err := s.db.QueryRowContext(ctx, query, businessID, conversationID, contact.Email, contact.Name, contact.Phone).Scan(
		&l.ID,
		&l.BusinessID,
		&l.ConversationID,
		&l.Email,
		&l.Name,
		&l.Phone,
		&l.CapturedAt,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.Persistence(err, "Failed to save lead")
	}

	log.Info().Str("lead_id", l.ID).Str("business_id", businessID).Str("conversation_id", conversationID).Msg("Lead created")
	return l, nil
}

func (s *LeadStore) CountLeads(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*)
		FROM leads l
		INNER JOIN businesses b ON b.id = l.business_id
		WHERE b.user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, apperrors.Persistence(err, "Failed to count leads")
	}
	return n, nil
}
