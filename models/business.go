package models

import "time"

const DefaultTone = "professional"

// Business is a tenant of the platform.
type Business struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Industry     *string   `json:"industry,omitempty"`
	Website      *string   `json:"website,omitempty"`
	Tone         *string   `json:"tone,omitempty"`
	PrimaryColor *string   `json:"primaryColor,omitempty"`
	LogoURL      *string   `json:"logoUrl,omitempty"`
	WidgetActive bool      `json:"widgetActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateBusinessRequest is submitted at the end of onboarding. StarterQuestions
// become knowledge items with a placeholder answer.
type CreateBusinessRequest struct {
	Name             string   `json:"name" binding:"required,max=200"`
	Website          *string  `json:"website" binding:"omitempty,max=500"`
	Industry         *string  `json:"industry" binding:"omitempty,max=100"`
	Tone             *string  `json:"tone" binding:"omitempty,max=50"`
	PrimaryColor     *string  `json:"primaryColor" binding:"omitempty,hexcolor"`
	LogoURL          *string  `json:"logoUrl" binding:"omitempty,url"`
	StarterQuestions []string `json:"starterQuestions" binding:"max=10,dive,max=500"`
}

type UpdateBusinessRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=200"`
	Tone         *string `json:"tone" binding:"omitempty,max=50"`
	PrimaryColor *string `json:"primaryColor" binding:"omitempty,hexcolor"`
	LogoURL      *string `json:"logoUrl" binding:"omitempty,url"`
	WidgetActive *bool   `json:"widgetActive"`
}

// WidgetConfig is the public subset of a business the embedded widget reads.
type WidgetConfig struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Tone         *string `json:"tone,omitempty"`
	PrimaryColor *string `json:"primaryColor,omitempty"`
	LogoURL      *string `json:"logoUrl,omitempty"`
	WidgetActive bool    `json:"widgetActive"`
	Greeting     string  `json:"greeting"`
}

type ShareInfo struct {
	ChatURL   string `json:"chatUrl"`
	EmbedCode string `json:"embedCode"`
}
