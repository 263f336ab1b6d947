// Package notify tells business owners about new leads.
package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"chatdesk/api/models"
)

type LeadNotifier interface {
	NotifyLead(ctx context.Context, ownerEmail string, businessName string, lead *models.Lead) error
}

// LogNotifier records the notification in the log instead of sending mail.
// TODO: replace with a transactional email provider once one is chosen.
type LogNotifier struct{}

func (LogNotifier) NotifyLead(_ context.Context, ownerEmail, businessName string, lead *models.Lead) error {
	log.Info().
		Str("business", businessName).
		Str("owner_email", ownerEmail).
		Str("lead_id", lead.ID).
		Str("email", valueOr(lead.Email, "Not provided")).
		Str("name", valueOr(lead.Name, "Not provided")).
		Str("phone", valueOr(lead.Phone, "Not provided")).
		Msg("New lead captured")
	return nil
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
