package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"personalization-service/internal/generator"
	"personalization-service/internal/service"
)

type SessionHandler struct {
	Service *service.SessionService
}

func NewSessionHandler(s *service.SessionService) *SessionHandler {
	return &SessionHandler{Service: s}
}

// CreateSession generates a new play session from the current
// preference snapshot.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	sess, err := h.Service.CreateSession(req.Category, req.Count)
	if err != nil {
		if errors.Is(err, generator.ErrInvalidRequest) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// GetSession returns session state and progress.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, err := h.Service.GetSession(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// SubmitAnswer records one answer outcome for a session item.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	var req struct {
		ItemIndex     int `json:"item_index"`
		SelectedIndex int `json:"selected_index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	result, err := h.Service.SubmitAnswer(c.Param("id"), req.ItemIndex, req.SelectedIndex)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, service.ErrItemOutOfRange), errors.Is(err, service.ErrBadOptionIndex):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyAnswered):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
