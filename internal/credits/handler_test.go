package credits

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"psicanalise/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCreditsWebhookAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewHandler(nil, "shared-token")
	r := gin.New()
	r.POST("/payments/credits", handler.AddCredits)

	body, err := json.Marshal(AddCreditsRequest{
		OrderID: "pix-1", ClientID: 2, ProviderID: 1, SessionType: provider.SessionVideo, Quantity: 4,
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong token", "nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/payments/credits", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("X-Webhook-Token", tt.token)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

// An empty configured token must reject everything, including an empty
// header; otherwise a blank config would open the webhook to the world.
func TestAddCreditsEmptyConfiguredTokenRejectsAll(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewHandler(nil, "")
	r := gin.New()
	r.POST("/payments/credits", handler.AddCredits)

	req := httptest.NewRequest(http.MethodPost, "/payments/credits", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
