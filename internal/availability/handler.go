package availability

import (
	"errors"
	"net/http"
	"strconv"

	"psicanalise/internal/api"
	"psicanalise/internal/auth"
	"psicanalise/internal/provider"
	"psicanalise/internal/timeutil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetSlots godoc
// @Summary      List bookable slots
// @Description  Computes the open slots for a provider, day and session type.
// @Tags         availability
// @Produce      json
// @Param        providerID    path   int     true  "Provider ID"
// @Param        day           query  string  true  "Calendar day (YYYY-MM-DD)"
// @Param        session_type  query  string  true  "video or chat"
// @Success      200 {array}  Slot
// @Failure      400 {object} api.ErrorResponse
// @Router       /providers/{providerID}/slots [get]
func (h *Handler) GetSlots(c *gin.Context) {
	providerID, err := strconv.Atoi(c.Param("providerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid provider id", Code: api.CodeInvalidArgument})
		return
	}

	day := c.Query("day")
	sessionType := provider.SessionType(c.Query("session_type"))

	slots, err := h.service.GetSlots(c.Request.Context(), providerID, day, sessionType)
	if err != nil {
		switch {
		case errors.Is(err, timeutil.ErrInvalidDay), errors.Is(err, ErrInvalidSessionType):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidArgument})
		case errors.Is(err, provider.ErrSettingsNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Provider not found", Code: api.CodeNotFound})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to compute slots", Code: api.CodeInternal})
		}
		return
	}

	c.JSON(http.StatusOK, slots)
}

// ReplaceRules godoc
// @Summary      Replace weekly availability rules
// @Description  Full replace: the submitted set becomes the provider's entire rule set.
// @Tags         availability
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body ReplaceRulesRequest true "New rule set"
// @Success      200 {array}  Rule
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Router       /provider/rules [put]
func (h *Handler) ReplaceRules(c *gin.Context) {
	providerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated", Code: api.CodeNotAuthenticated})
		return
	}

	var req ReplaceRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:   "Invalid rule set",
			Code:    api.CodeInvalidArgument,
			Details: api.ValidationDetails(err),
		})
		return
	}

	rules, err := h.service.ReplaceRules(c.Request.Context(), providerID, req.Rules)
	if err != nil {
		if errors.Is(err, ErrInvalidRule) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidArgument})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to save rules", Code: api.CodeInternal})
		return
	}

	c.JSON(http.StatusOK, rules)
}

// ListRules godoc
// @Summary      List availability rules
// @Tags         availability
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array}  Rule
// @Failure      401 {object} api.ErrorResponse
// @Router       /provider/rules [get]
func (h *Handler) ListRules(c *gin.Context) {
	providerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated", Code: api.CodeNotAuthenticated})
		return
	}

	rules, err := h.service.ListRules(c.Request.Context(), providerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load rules", Code: api.CodeInternal})
		return
	}

	c.JSON(http.StatusOK, rules)
}

// CreateBlock godoc
// @Summary      Create an availability block
// @Description  Blocks an absolute time range; overlapping slot candidates disappear.
// @Tags         availability
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body CreateBlockRequest true "Block window"
// @Success      201 {object} Block
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Router       /provider/blocks [post]
func (h *Handler) CreateBlock(c *gin.Context) {
	providerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated", Code: api.CodeNotAuthenticated})
		return
	}

	var req CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidArgument})
		return
	}

	block, err := h.service.CreateBlock(c.Request.Context(), providerID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidBlock) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeInvalidArgument})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create block", Code: api.CodeInternal})
		return
	}

	c.JSON(http.StatusCreated, block)
}

// DeleteBlock godoc
// @Summary      Delete an availability block
// @Tags         availability
// @Security     BearerAuth
// @Produce      json
// @Param        blockID path int true "Block ID"
// @Success      200 {object} api.MessageResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /provider/blocks/{blockID} [delete]
func (h *Handler) DeleteBlock(c *gin.Context) {
	providerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated", Code: api.CodeNotAuthenticated})
		return
	}

	blockID, err := strconv.Atoi(c.Param("blockID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid block id", Code: api.CodeInvalidArgument})
		return
	}

	if err := h.service.DeleteBlock(c.Request.Context(), providerID, blockID); err != nil {
		if errors.Is(err, ErrBlockNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Block not found", Code: api.CodeNotFound})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete block", Code: api.CodeInternal})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Block deleted"})
}

// ListBlocks godoc
// @Summary      List availability blocks
// @Tags         availability
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array}  Block
// @Failure      401 {object} api.ErrorResponse
// @Router       /provider/blocks [get]
func (h *Handler) ListBlocks(c *gin.Context) {
	providerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated", Code: api.CodeNotAuthenticated})
		return
	}

	blocks, err := h.service.ListBlocks(c.Request.Context(), providerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load blocks", Code: api.CodeInternal})
		return
	}

	c.JSON(http.StatusOK, blocks)
}
