package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"chatdesk/api/apperrors"
	"chatdesk/api/models"
)

const businessColumns = `id, user_id, name, industry, website, tone, primary_color, logo_url, widget_active, created_at, updated_at`

type BusinessStore struct {
	db *sql.DB
}

func NewBusinessStore(db *sql.DB) *BusinessStore {
	return &BusinessStore{db: db}
}

func scanBusiness(row rowScanner) (*models.Business, error) {
	b := &models.Business{}
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.Name,
		&b.Industry,
		&b.Website,
		&b.Tone,
		&b.PrimaryColor,
		&b.LogoURL,
		&b.WidgetActive,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

func businessNotFound() error {
	return apperrors.NotFound("Business not found")
}

// CreateBusiness inserts the business and its starter questions in one
// transaction. Starter questions get a placeholder answer for the owner to fill in.
func (s *BusinessStore) CreateBusiness(ctx context.Context, userID string, req models.CreateBusinessRequest) (*models.Business, error) {
	tone := req.Tone
	if tone == nil || *tone == "" {
		defaultTone := models.DefaultTone
		tone = &defaultTone
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Persistence(err, "Failed to create business")
	}
	defer tx.Rollback()

	query := `
		INSERT INTO businesses (user_id, name, website, industry, tone, primary_color, logo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + businessColumns
	b, err := scanBusiness(tx.QueryRowContext(ctx, query,
		userID, req.Name, req.Website, req.Industry, tone, req.PrimaryColor, req.LogoURL))
	if err != nil {
		return nil, apperrors.Persistence(err, "Failed to create business")
	}

	for _, q := range req.StarterQuestions {
		if q == "" {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO knowledge_base (business_id, question, answer) VALUES ($1, $2, $3)`,
			b.ID, q, models.PlaceholderAnswer)
		if err != nil {
			return nil, apperrors.Persistence(err, "Failed to create starter questions")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Persistence(err, "Failed to create business")
	}

	log.Info().Str("business_id", b.ID).Str("user_id", userID).Msg("Business created")
	return b, nil
}

// GetBusiness loads a business by id without any ownership check. Used by the
// public widget endpoints.
func (s *BusinessStore) GetBusiness(ctx context.Context, id string) (*models.Business, error) {
	if !validID(id) {
		return nil, businessNotFound()
	}
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`
	b, err := scanBusiness(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, businessNotFound()
		}
		return nil, apperrors.Persistence(err, "Failed to load business")
	}
	return b, nil
}

// GetOwnedBusiness loads a business only if userID owns it.
func (s *BusinessStore) GetOwnedBusiness(ctx context.Context, id, userID string) (*models.Business, error) {
	if !validID(id) {
		return nil, businessNotFound()
	}
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1 AND user_id = $2`
	b, err := scanBusiness(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, businessNotFound()
		}
		return nil, apperrors.Persistence(err, "Failed to load business")
	}
	return b, nil
}

func (s *BusinessStore) ListBusinesses(ctx context.Context, userID string) ([]models.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE user_id = $1 ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Persistence(err, "Failed to list businesses")
	}
	defer rows.Close()

	businesses := []models.Business{}
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, apperrors.Persistence(err, "Failed to list businesses")
		}
		businesses = append(businesses, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(err, "Failed to list businesses")
	}
	return businesses, nil
}

// UpdateBusiness applies the non-nil fields of req.
func (s *BusinessStore) UpdateBusiness(ctx context.Context, id, userID string, req models.UpdateBusinessRequest) (*models.Business, error) {
	if !validID(id) {
		return nil, businessNotFound()
	}
	query := `
		UPDATE businesses SET
			name = COALESCE($3, name),
			tone = COALESCE($4, tone),
			primary_color = COALESCE($5, primary_color),
			logo_url = COALESCE($6, logo_url),
			widget_active = COALESCE($7, widget_active),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + businessColumns
	b, err := scanBusiness(s.db.QueryRowContext(ctx, query,
		id, userID, req.Name, req.Tone, req.PrimaryColor, req.LogoURL, req.WidgetActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, businessNotFound()
		}
		return nil, apperrors.Persistence(err, "Failed to update business")
	}
	return b, nil
}

// GetOwnerContact joins the business to its owner's profile for lead
// notifications.
func (s *BusinessStore) GetOwnerContact(ctx context.Context, businessID string) (*models.OwnerContact, error) {
	if !validID(businessID) {
		return nil, businessNotFound()
	}
	query := `
		SELECT b.name, p.email
		FROM businesses b
		INNER JOIN profiles p ON p.id = b.user_id
		WHERE b.id = $1`
	contact := &models.OwnerContact{}
	err := s.db.QueryRowContext(ctx, query, businessID).Scan(&contact.BusinessName, &contact.OwnerEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, businessNotFound()
		}
		return nil, fmt.Errorf("failed to load owner contact: %w", err)
	}
	return contact, nil
}
