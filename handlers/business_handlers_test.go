package handlers

import (
	"bytes"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatdesk/api/models"
)

func newBusinessRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	stores, mock := newMockStores(t)
	h := NewBusinessHandlers(stores, "https://chat.acme.test", "https://cdn.acme.test/widget.js")
	h.now = func() time.Time { return testNow }

	r := gin.New()
	r.Use(asOwner)
	r.POST("/api/businesses", h.Create)
	r.GET("/api/businesses/:id", h.Get)
	r.PUT("/api/businesses/:id", h.Update)
	r.GET("/api/businesses/:id/share", h.Share)
	r.GET("/api/businesses/:id/qr.png", h.QRCode)
	r.GET("/api/overview", h.Overview)
	return r, mock
}

func expectOwnedBusiness(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM businesses WHERE id = $1 AND user_id = $2")).
		WithArgs(testBusinessID, testUserID).
		WillReturnRows(businessRows())
}

func TestCreateBusinessWithStarterQuestions(t *testing.T) {
	r, mock := newBusinessRouter(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO businesses").
		WithArgs(testUserID, "Acme Plumbing", "https://acme.test", "Home services", models.DefaultTone, nil, nil).
		WillReturnRows(businessRows())
	mock.ExpectExec("INSERT INTO knowledge_base").
		WithArgs(testBusinessID, "Do you do emergency calls?", models.PlaceholderAnswer).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := doJSON(t, r, http.MethodPost, "/api/businesses", map[string]any{
		"name":             "Acme Plumbing",
		"website":          "https://acme.test",
		"industry":         "Home services",
		"starterQuestions": []string{"Do you do emergency calls?"},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, testBusinessID, decodeMap(t, w)["id"])
}

func TestCreateBusinessValidation(t *testing.T) {
	r, _ := newBusinessRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/businesses", map[string]any{"primaryColor": "green"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBusinessOfAnotherOwner(t *testing.T) {
	r, mock := newBusinessRouter(t)
	mock.ExpectQuery("FROM businesses WHERE id").
		WithArgs(testBusinessID, testUserID).
		WillReturnRows(sqlmock.NewRows(businessColumns()))

	w := doJSON(t, r, http.MethodGet, "/api/businesses/"+testBusinessID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateBusiness(t *testing.T) {
	r, mock := newBusinessRouter(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE businesses SET")).
		WithArgs(testBusinessID, testUserID, nil, "casual", nil, nil, false).
		WillReturnRows(businessRows())

	w := doJSON(t, r, http.MethodPut, "/api/businesses/"+testBusinessID, map[string]any{
		"tone":         "casual",
		"widgetActive": false,
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestShare(t *testing.T) {
	r, mock := newBusinessRouter(t)
	expectOwnedBusiness(mock)

	w := doJSON(t, r, http.MethodGet, "/api/businesses/"+testBusinessID+"/share", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeMap(t, w)
	assert.Equal(t, "https://chat.acme.test/chat/"+testBusinessID, body["chatUrl"])
	assert.Equal(t, `<script src="https://cdn.acme.test/widget.js" data-site="`+testBusinessID+`"></script>`, body["embedCode"])
}

func TestQRCode(t *testing.T) {
	r, mock := newBusinessRouter(t)
	expectOwnedBusiness(mock)

	w := doJSON(t, r, http.MethodGet, "/api/businesses/"+testBusinessID+"/qr.png", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}

func TestOverview(t *testing.T) {
	r, mock := newBusinessRouter(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(regexp.QuoteMeta("FROM businesses WHERE user_id = $1")).
		WithArgs(testUserID).
		WillReturnRows(businessRows())
	mock.ExpectQuery(regexp.QuoteMeta("FROM conversations c")).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("FROM leads l")).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta("FROM analytics a")).
		WithArgs(testUserID, "2026-02-12").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "business_id", "date", "conversations", "leads_captured", "visitors",
			"avg_response_time_seconds", "top_questions", "created_at", "updated_at",
		}).AddRow("a1", testBusinessID, testNow, 3, 2, 0, nil, nil, testNow, testNow))

	w := doJSON(t, r, http.MethodGet, "/api/overview", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeMap(t, w)
	assert.EqualValues(t, 1, body["businesses"])
	assert.EqualValues(t, 12, body["conversations"])
	assert.EqualValues(t, 5, body["leads"])
	assert.Len(t, body["recentDays"], 1)
}
