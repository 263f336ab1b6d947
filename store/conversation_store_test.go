package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatdesk/api/apperrors"
	"chatdesk/api/models"
)

func conversationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "business_id", "visitor_id", "status", "created_at", "updated_at"})
}

func TestCreateConversationStartsNew(t *testing.T) {
	db, mock := newMock(t)
	s := NewConversationStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO conversations (business_id, visitor_id, status)")).
		WithArgs(testBusinessID, "visitor-1", "new").
		WillReturnRows(conversationRows().AddRow(testConversationID, testBusinessID, "visitor-1", "new", testNow, testNow))

	c, err := s.CreateConversation(context.Background(), testBusinessID, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, testConversationID, c.ID)
	assert.Equal(t, models.ConversationNew, c.Status)
}

func TestGetConversationNotFound(t *testing.T) {
	db, mock := newMock(t)
	s := NewConversationStore(db)

	mock.ExpectQuery("FROM conversations WHERE id").
		WithArgs(testConversationID).
		WillReturnRows(conversationRows())

	_, err := s.GetConversation(context.Background(), testConversationID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestListConversationSummariesMergesLeads(t *testing.T) {
	db, mock := newMock(t)
	s := NewConversationStore(db)

	other := "1b2c3d4e-5f6a-4b7c-8d9e-0f1a2b3c4d5e"
	mock.ExpectQuery(regexp.QuoteMeta("AS message_count")).
		WithArgs(testBusinessID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "business_id", "visitor_id", "status", "created_at", "updated_at", "message_count"}).
			AddRow(testConversationID, testBusinessID, "v1", "active", testNow, testNow, 4).
			AddRow(other, testBusinessID, "v2", "new", testNow, testNow, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT conversation_id, email, name, phone FROM leads")).
		WithArgs(testBusinessID).
		WillReturnRows(sqlmock.NewRows([]string{"conversation_id", "email", "name", "phone"}).
			AddRow(testConversationID, "jane@example.com", "Jane", nil).
			AddRow(testConversationID, nil, nil, "555-0100"))

	summaries, err := s.ListConversationSummaries(context.Background(), testBusinessID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, 4, summaries[0].MessageCount)
	require.Len(t, summaries[0].Leads, 2)
	assert.Equal(t, "jane@example.com", *summaries[0].Leads[0].Email)
	assert.Equal(t, "555-0100", *summaries[0].Leads[1].Phone)
	assert.Empty(t, summaries[1].Leads)
	assert.NotNil(t, summaries[1].Leads)
}

func TestUpdateConversationStatus(t *testing.T) {
	db, mock := newMock(t)
	s := NewConversationStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE conversations c")).
		WithArgs(testConversationID, testUserID, "resolved").
		WillReturnRows(conversationRows().AddRow(testConversationID, testBusinessID, "v1", "resolved", testNow, testNow))

	c, err := s.UpdateConversationStatus(context.Background(), testConversationID, testUserID, models.ConversationResolved)
	require.NoError(t, err)
	assert.Equal(t, "resolved", c.Status)
}
