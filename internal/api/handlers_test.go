package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// updateRequest runs UpdateScheduledReportHandler against a raw JSON body.
// The handler validates the request shape before touching storage, so the
// rejection paths need no database.
func updateRequest(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handlers := NewHandlers(nil, nil, nil, nil, "", 5)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "64f000000000000000000001"}}
	c.Request = httptest.NewRequest(http.MethodPut, "/api/scheduled-reports/64f000000000000000000001", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handlers.UpdateScheduledReportHandler(c)
	return rec
}

func TestUpdateScheduledReportRejectsEmptyRecipients(t *testing.T) {
	rec := updateRequest(t, `{"recipients": []}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "recipients must not be empty")
}

func TestUpdateScheduledReportRejectsRecipientWithoutEmail(t *testing.T) {
	rec := updateRequest(t, `{"recipients": [{"deliveryMethod": "EMAIL"}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "recipient email is required")
}
