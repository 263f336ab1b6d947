package models

import (
	"encoding/json"
	"time"
)

// AnalyticsDay is the aggregated daily counter row for a business.
type AnalyticsDay struct {
	ID                     string          `json:"id"`
	BusinessID             string          `json:"businessId"`
	Date                   time.Time       `json:"date"`
	Conversations          int             `json:"conversations"`
	LeadsCaptured          int             `json:"leadsCaptured"`
	Visitors               int             `json:"visitors"`
	AvgResponseTimeSeconds *float64        `json:"avgResponseTimeSeconds,omitempty"`
	TopQuestions           json.RawMessage `json:"topQuestions,omitempty"`
	CreatedAt              time.Time       `json:"createdAt"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}

type Overview struct {
	Businesses    int            `json:"businesses"`
	Conversations int            `json:"conversations"`
	Leads         int            `json:"leads"`
	RecentDays    []AnalyticsDay `json:"recentDays"`
}
