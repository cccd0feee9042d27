package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"psicanalise/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockRepository)
	handler := NewHandler(NewService(mockRepo, "test-secret"))

	r := gin.New()
	r.POST("/auth/register", handler.Register)

	tests := []struct {
		name string
		body RegisterRequest
	}{
		{"missing email", RegisterRequest{Name: "Alice", Password: "password123"}},
		{"short password", RegisterRequest{Name: "Alice", Email: "a@example.com", Password: "short"}},
		{"invalid email", RegisterRequest{Name: "Alice", Email: "not-an-email", Password: "password123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(t, r, http.MethodPost, "/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp api.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, api.CodeInvalidArgument, resp.Code)
		})
	}

	mockRepo.AssertExpectations(t)
}
