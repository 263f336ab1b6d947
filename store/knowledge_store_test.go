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

func knowledgeRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "business_id", "question", "answer", "category", "created_at", "updated_at"})
}

func TestListKnowledgeInInsertionOrder(t *testing.T) {
	db, mock := newMock(t)
	s := NewKnowledgeStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE business_id = $1 ORDER BY seq ASC")).
		WithArgs(testBusinessID).
		WillReturnRows(knowledgeRows().
			AddRow(testItemID, testBusinessID, "Hours?", "9-5", "General", testNow, testNow).
			AddRow("e5f6a7b8-c9d0-4e1f-8a2b-3c4d5e6f7a81", testBusinessID, "Parking?", "Yes", nil, testNow, testNow))

	items, err := s.ListKnowledge(context.Background(), testBusinessID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Hours?", items[0].Question)
	require.NotNil(t, items[0].Category)
	assert.Equal(t, "General", *items[0].Category)
	assert.Nil(t, items[1].Category)
}

func TestDeleteKnowledgeMissing(t *testing.T) {
	db, mock := newMock(t)
	s := NewKnowledgeStore(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM knowledge_base WHERE id = $1 AND business_id = $2")).
		WithArgs(testItemID, testBusinessID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteKnowledge(context.Background(), testItemID, testBusinessID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestImportKnowledgeSingleTransaction(t *testing.T) {
	db, mock := newMock(t)
	s := NewKnowledgeStore(db)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO knowledge_base (business_id, question, answer, category)"))
	prep.ExpectExec().WithArgs(testBusinessID, "Hours?", "9-5", "General").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(testBusinessID, "Parking?", "Yes", nil).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := s.ImportKnowledge(context.Background(), testBusinessID, []models.KnowledgeItemRequest{
		{Question: "Hours?", Answer: "9-5", Category: strPtr("General")},
		{Question: "Parking?", Answer: "Yes"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
