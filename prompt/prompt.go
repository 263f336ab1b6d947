// Package prompt assembles the system instruction sent to the model gateway
// from a business's configuration and knowledge base.
package prompt

import (
	"fmt"
	"strings"

	"chatdesk/api/models"
)

// EmptyKnowledge stands in for the knowledge section when a business has no items.
const EmptyKnowledge = "No specific information provided yet."

const directives = `Your role is to:
1. Answer visitor questions professionally and helpfully in their language
2. Provide accurate information about the business
3. Be concise but friendly
4. If you don't know something, be honest and offer to have someone contact them
5. Encourage visitors to leave their contact info for follow-up
6. Detect the language used and respond in the same language`

// KnowledgeContext renders items as "Q: ...\nA: ..." blocks separated by a
// blank line, preserving order. It returns "" for no items.
func KnowledgeContext(items []models.KnowledgeItem) string {
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		blocks = append(blocks, fmt.Sprintf("Q: %s\nA: %s", item.Question, item.Answer))
	}
	return strings.Join(blocks, "\n\n")
}

// SystemPrompt builds the system instruction for a business.
func SystemPrompt(b *models.Business, items []models.KnowledgeItem) string {
	knowledge := KnowledgeContext(items)
	if knowledge == "" {
		knowledge = EmptyKnowledge
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an AI assistant for %s. ", b.Name)
	if tone := deref(b.Tone); tone != "" {
		fmt.Fprintf(&sb, "Use a %s tone.", tone)
	}
	sb.WriteString("\nYou can communicate in multiple languages - respond in the same language the user writes in.\n")
	fmt.Fprintf(&sb, "Business website: %s\n", orDefault(b.Website, "Not provided"))
	fmt.Fprintf(&sb, "Industry: %s\n", orDefault(b.Industry, "Not specified"))
	sb.WriteString("\nKnowledge Base:\n")
	sb.WriteString(knowledge)
	sb.WriteString("\n\n")
	sb.WriteString(directives)
	return sb.String()
}

// Greeting is the first assistant message the widget shows.
func Greeting(b *models.Business) string {
	return fmt.Sprintf("Hi! 👋 Welcome to %s. How can I help you today?", b.Name)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDefault(s *string, fallback string) string {
	if v := deref(s); v != "" {
		return v
	}
	return fallback
}
