package store

import "database/sql"

// Stores groups the Postgres-backed stores that share one connection pool.
type Stores struct {
	Profiles      *ProfileStore
	Businesses    *BusinessStore
	Knowledge     *KnowledgeStore
	Conversations *ConversationStore
	Messages      *MessageStore
	Leads         *LeadStore
	Analytics     *AnalyticsStore
}

func NewStores(db *sql.DB) *Stores {
	return &Stores{
		Profiles:      NewProfileStore(db),
		Businesses:    NewBusinessStore(db),
		Knowledge:     NewKnowledgeStore(db),
		Conversations: NewConversationStore(db),
		Messages:      NewMessageStore(db),
		Leads:         NewLeadStore(db),
		Analytics:     NewAnalyticsStore(db),
	}
}
