package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	HandleServiceError(c, err)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleServiceError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", services.NewValidationError("name is required"), http.StatusBadRequest, "validation_error"},
		{"not found", services.NewNotFoundError("agent"), http.StatusNotFound, "not_found"},
		{"conflict", services.NewConflictError("agent already exists"), http.StatusConflict, "conflict"},
		{"database", services.NewDatabaseError(errors.New("connection refused")), http.StatusInternalServerError, "internal_error"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := performError(t, tc.err)
			assert.Equal(t, tc.wantStatus, w.Code)

			body := decodeEnvelope(t, w)
			assert.Nil(t, body["data"])
			errBody, ok := body["error"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, tc.wantCode, errBody["code"])
		})
	}

	t.Run("internal errors never leak their cause", func(t *testing.T) {
		w := performError(t, services.NewDatabaseError(errors.New("pq: password authentication failed")))

		body := decodeEnvelope(t, w)
		errBody := body["error"].(map[string]interface{})
		assert.Equal(t, "internal server error", errBody["message"])
		assert.NotContains(t, w.Body.String(), "password")
	})
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 1, 20, 0},
		{"explicit", "page=3&limit=10", 3, 10, 20},
		{"limit capped", "limit=5000", 1, 100, 0},
		{"garbage falls back", "page=abc&limit=-4", 1, 20, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/test?"+tc.query, nil)

			page, limit, offset := parsePagination(c)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantLimit, limit)
			assert.Equal(t, tc.wantOffset, offset)
		})
	}
}

func TestParseUintParam(t *testing.T) {
	t.Run("numeric", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: "42"}}

		id, ok := parseUintParam(c, "id")
		assert.True(t, ok)
		assert.EqualValues(t, 42, id)
	})

	t.Run("non-numeric responds 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: "abc"}}

		_, ok := parseUintParam(c, "id")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
