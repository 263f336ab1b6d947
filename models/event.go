package models

import "time"

const (
	EventChatMessage  = "chat_message"
	EventLeadCaptured = "lead_captured"
	EventWidgetOpen   = "widget_open"
	EventPageView     = "page_view"
)

// IsClientEventType reports whether the embedded widget may post eventType
// to the track endpoint.
func IsClientEventType(eventType string) bool {
	return eventType == EventWidgetOpen || eventType == EventPageView
}

// WidgetEvent is one row of the widget event stream kept in ClickHouse.
type WidgetEvent struct {
	EventID        string    `json:"eventId"`
	EventType      string    `json:"eventType" binding:"required,max=64"`
	BusinessID     string    `json:"businessId" binding:"required,uuid"`
	VisitorID      string    `json:"visitorId" binding:"max=128"`
	ConversationID string    `json:"conversationId,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Question       string    `json:"question,omitempty"`
	ResponseMs     int64     `json:"responseMs,omitempty"`
	PageURL        string    `json:"pageUrl,omitempty"`
	UserAgent      string    `json:"userAgent,omitempty"`
	IPAddress      string    `json:"ipAddress,omitempty"`
}

type TimeBucketCount struct {
	Time      time.Time `json:"time"`
	EventType *string   `json:"eventType,omitempty"`
	Count     uint64    `json:"count"`
}

type TopQuestion struct {
	Question string `json:"question"`
	Count    uint64 `json:"count"`
}
