package store

import (
	"context"
	"database/sql"
	"time"

	"chatdesk/api/apperrors"
	"chatdesk/api/models"
)

const dateLayout = "2006-01-02"

// AnalyticsStore maintains the per-business per-day counter rows in Postgres.
type AnalyticsStore struct {
	db *sql.DB
}

func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

// IncrementLeadsCaptured bumps leads_captured for (businessID, day) in one
// statement. The first event of a day inserts the row with leads_captured = 1
// and conversations = 1; concurrent captures never lose an increment.
func (s *AnalyticsStore) IncrementLeadsCaptured(ctx context.Context, businessID string, day time.Time) error {
	query := `
		INSERT INTO analytics (business_id, date, leads_captured, conversations)
		VALUES ($1, $2, 1, 1)
		ON CONFLICT (business_id, date) DO UPDATE
		SET leads_captured = analytics.leads_captured + 1,
			updated_at = now()`
	if _, err := s.db.ExecContext(ctx, query, businessID, day.UTC().Format(dateLayout)); err != nil {
		return apperrors.Persistence(err, "Failed to update analytics")
	}
	return nil
}

// RecentDays returns the owner's analytics rows since the given day, newest first.
func (s *AnalyticsStore) RecentDays(ctx context.Context, userID string, since time.Time) ([]models.AnalyticsDay, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.business_id, a.date, a.conversations, a.leads_captured, a.visitors,
			a.avg_response_time_seconds, a.top_questions, a.created_at, a.updated_at
		FROM analytics a
		INNER JOIN businesses b ON b.id = a.business_id
		WHERE b.user_id = $1 AND a.date >= $2
		ORDER BY a.date DESC`, userID, since.UTC().Format(dateLayout))
	if err != nil {
		return nil, apperrors.Persistence(err, "Failed to load analytics")
	}
	defer rows.Close()

	days := []models.AnalyticsDay{}
	for rows.Next() {
		var d models.AnalyticsDay
		var topQuestions []byte
		if err := rows.Scan(&d.ID, &d.BusinessID, &d.Date, &d.Conversations, &d.LeadsCaptured, &d.Visitors,
			&d.AvgResponseTimeSeconds, &topQuestions, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, apperrors.Persistence(err, "Failed to load analytics")
		}
		if len(topQuestions) > 0 {
			d.TopQuestions = topQuestions
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(err, "Failed to load analytics")
	}
	return days, nil
}
