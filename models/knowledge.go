package models

import "time"

const PlaceholderAnswer = "Please add your answer in the Knowledge Base"

// KnowledgeItem is one FAQ entry used to ground the chat assistant.
type KnowledgeItem struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"businessId"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Category   *string   `json:"category,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type KnowledgeItemRequest struct {
	Question string  `json:"question" binding:"required,max=1000"`
	Answer   string  `json:"answer" binding:"required,max=5000"`
	Category *string `json:"category" binding:"omitempty,max=100"`
}

type KnowledgeList struct {
	Items      []KnowledgeItem `json:"items"`
	Categories []string        `json:"categories"`
}
