package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"personalization-service/internal/prefs"
	"personalization-service/internal/service"
)

type PreferenceHandler struct {
	Service *service.PreferenceService
}

func NewPreferenceHandler(s *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{Service: s}
}

// GetPreferences returns the current snapshot.
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	snap := h.Service.Current()
	c.JSON(http.StatusOK, gin.H{
		"version": snap.Version(),
		"fields":  snap.Fields(),
	})
}

// UpdatePreferences applies a partial patch. Unknown fields and
// out-of-domain values reject the whole patch.
func (h *PreferenceHandler) UpdatePreferences(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	snap, err := h.Service.Apply(prefs.Patch(patch))
	if err != nil {
		var verr *prefs.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "Validation failed",
				"field":  verr.Field,
				"domain": verr.Domain,
				"reason": verr.Reason,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"version": snap.Version(),
		"fields":  snap.Fields(),
	})
}

// GetAIContext returns the read-only projection of AI-related fields.
func (h *PreferenceHandler) GetAIContext(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.AIContext())
}

// GetSchema lists the registered fields and their domains.
func (h *PreferenceHandler) GetSchema(c *gin.Context) {
	names := prefs.FieldNames()
	fields := make([]gin.H, 0, len(names))
	for _, name := range names {
		def, _ := prefs.Lookup(name)
		fields = append(fields, gin.H{
			"name":     def.Name,
			"category": def.Category,
			"kind":     def.Kind.String(),
			"domain":   def.Domain(),
			"default":  def.Default,
		})
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields})
}
