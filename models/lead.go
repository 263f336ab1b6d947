package models

import "time"

// Lead is contact information captured during a conversation.
type Lead struct {
	ID             string    `json:"id"`
	BusinessID     string    `json:"businessId"`
	ConversationID string    `json:"conversationId"`
	Email          *string   `json:"email,omitempty"`
	Name           *string   `json:"name,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	CapturedAt     time.Time `json:"capturedAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

type LeadContact struct {
	Email *string `json:"email,omitempty"`
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type CaptureLeadRequest struct {
	BusinessID     string  `json:"businessId" binding:"required"`
	ConversationID string  `json:"conversationId"`
	VisitorID      string  `json:"visitorId"`
	Email          *string `json:"email" binding:"omitempty,max=320"`
	Name           *string `json:"name" binding:"omitempty,max=200"`
	Phone          *string `json:"phone" binding:"omitempty,max=50"`
}

type CaptureLeadResponse struct {
	Success        bool   `json:"success"`
	ConversationID string `json:"conversationId"`
	LeadID         string `json:"leadId"`
}

// OwnerContact is used to notify a business owner about a new lead.
type OwnerContact struct {
	BusinessName string
	OwnerEmail   *string
}
