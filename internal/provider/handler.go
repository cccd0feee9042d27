package provider

import (
	"net/http"
	"time"

	"psicanalise/internal/api"
	"psicanalise/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// GetSettings godoc
// @Summary      Get provider settings
// @Tags         provider
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} Settings
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /provider/settings [get]
func (h *Handler) GetSettings(c *gin.Context) {
	providerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated", Code: api.CodeNotAuthenticated})
		return
	}

	s, err := h.repo.GetSettings(c.Request.Context(), providerID)
	if err != nil {
		if err == ErrSettingsNotFound {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Settings not configured", Code: api.CodeNotFound})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load settings", Code: api.CodeInternal})
		return
	}

	c.JSON(http.StatusOK, s)
}

// UpdateSettings godoc
// @Summary      Update provider settings
// @Description  Creates or replaces the provider's scheduling configuration.
// @Tags         provider
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body UpdateSettingsRequest true "Settings payload"
// @Success      200 {object} Settings
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Router       /provider/settings [put]
func (h *Handler) UpdateSettings(c *gin.Context) {
	providerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated", Code: api.CodeNotAuthenticated})
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidArgument})
		return
	}

	if _, err := time.LoadLocation(req.Timezone); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown timezone", Code: api.CodeInvalidArgument})
		return
	}

	s, err := h.repo.UpsertSettings(c.Request.Context(), &Settings{
		ProviderID:       providerID,
		Timezone:         req.Timezone,
		VideoDurationMin: req.VideoDurationMin,
		ChatDurationMin:  req.ChatDurationMin,
		MinCancelHours:   req.MinCancelHours,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to save settings", Code: api.CodeInternal})
		return
	}

	c.JSON(http.StatusOK, s)
}
