package models

import "time"

const (
	ConversationNew      = "new"
	ConversationActive   = "active"
	ConversationResolved = "resolved"

	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation is one visitor's chat session. VisitorID is generated by the
// widget and is not authenticated.
type Conversation struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"businessId"`
	VisitorID  string    `json:"visitorId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ConversationSummary is a dashboard row: a conversation with its leads and
// message count.
type ConversationSummary struct {
	Conversation
	Leads        []LeadContact `json:"leads"`
	MessageCount int           `json:"messageCount"`
}

type UpdateConversationRequest struct {
	Status string `json:"status" binding:"required,oneof=new active resolved"`
}

// ChatMessage is one entry of the history the widget sends.
type ChatMessage struct {
	Role    string `json:"role" binding:"required,chatrole"`
	Content string `json:"content" binding:"required"`
}

type ChatRequest struct {
	Messages       []ChatMessage `json:"messages" binding:"required,min=1,dive"`
	BusinessID     string        `json:"businessId" binding:"required"`
	VisitorID      string        `json:"visitorId"`
	ConversationID string        `json:"conversationId"`
}

type ChatResponse struct {
	Message string `json:"message"`
}
