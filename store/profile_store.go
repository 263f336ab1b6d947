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

const profileColumns = `id, email, full_name, hashed_password, plan, setup_paid, trial_ends_at, created_at, updated_at`

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.HashedPassword,
		&p.Plan,
		&p.SetupPaid,
		&p.TrialEndsAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// CreateProfile inserts a new owner account.
func (s *ProfileStore) CreateProfile(ctx context.Context, email string, fullName *string, hashedPassword []byte) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (email, full_name, hashed_password)
		VALUES ($1, $2, $3)
		RETURNING ` + profileColumns
	p, err := scanProfile(s.db.QueryRowContext(ctx, query, email, fullName, hashedPassword))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.New(apperrors.KindConflict, "User with this email already exists")
		}
		return nil, apperrors.Persistence(err, "Failed to register user")
	}

	log.Info().Str("profile_id", p.ID).Msg("Profile created")
	return p, nil
}

func (s *ProfileStore) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE lower(email) = lower($1)`
	p, err := scanProfile(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(fmt.Sprintf("user with email '%s' not found", email))
		}
		return nil, apperrors.Persistence(err, "Failed to load user")
	}
	return p, nil
}

func (s *ProfileStore) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	if !validID(id) {
		return nil, apperrors.NotFound("User not found")
	}
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Persistence(err, "Failed to load user")
	}
	return p, nil
}
