package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const (
	testUserID         = "6f1c3f0e-3c1a-4a55-9c37-3a1d0b3f2c11"
	testBusinessID     = "0b6f7d0c-8f8a-4a3b-9d8a-5a6b7c8d9e01"
	testConversationID = "9a2e4c6b-1d3f-4e5a-8b7c-6d5e4f3a2b10"
	testItemID         = "c3d4e5f6-a7b8-4c9d-8e0f-1a2b3c4d5e6f"
	testLeadID         = "d4e5f6a7-b8c9-4d0e-8f1a-2b3c4d5e6f70"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func businessRow(id, name string, tone any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "name", "industry", "website", "tone", "primary_color", "logo_url", "widget_active", "created_at", "updated_at",
	}).AddRow(id, testUserID, name, nil, "https://acme.test", tone, "#10b981", nil, true, testNow, testNow)
}

func strPtr(s string) *string {
	return &s
}
