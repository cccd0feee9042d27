package credits

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"psicanalise/internal/api"
	"psicanalise/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service      Service
	webhookToken string
}

func NewHandler(service Service, webhookToken string) *Handler {
	return &Handler{service: service, webhookToken: webhookToken}
}

// AddCredits godoc
// @Summary      Grant session credits
// @Description  Called by the payment collaborator after a completed payment. Idempotent on order_id.
// @Tags         credits
// @Accept       json
// @Produce      json
// @Param        X-Webhook-Token header string            true "Shared webhook token"
// @Param        request         body   AddCreditsRequest true "Completed order"
// @Success      200 {object} Credit "replayed order, nothing granted"
// @Success      201 {object} Credit
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Router       /payments/credits [post]
func (h *Handler) AddCredits(c *gin.Context) {
	token := c.GetHeader("X-Webhook-Token")
	if h.webhookToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.webhookToken)) != 1 {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid webhook token", Code: api.CodeNotAuthenticated})
		return
	}

	var req AddCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:   "Invalid order payload",
			Code:    api.CodeInvalidArgument,
			Details: api.ValidationDetails(err),
		})
		return
	}

	credit, granted, err := h.service.AddCredits(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidGrant) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidArgument})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to grant credits", Code: api.CodeInternal})
		return
	}

	if granted {
		c.JSON(http.StatusCreated, credit)
		return
	}
	c.JSON(http.StatusOK, credit)
}

// ListBalances godoc
// @Summary      List my credit balances
// @Tags         credits
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array}  BalanceResponse
// @Failure      401 {object} api.ErrorResponse
// @Router       /credits [get]
func (h *Handler) ListBalances(c *gin.Context) {
	clientID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated", Code: api.CodeNotAuthenticated})
		return
	}

	balances, err := h.service.ListBalances(c.Request.Context(), clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load balances", Code: api.CodeInternal})
		return
	}

	c.JSON(http.StatusOK, balances)
}
