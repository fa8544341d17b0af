package review

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tourneyhub/internal/games"
	"tourneyhub/pkg/models"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// RegisterRoutes wires the review workflow onto the root group. The
// game-scoped routes share the /games/:id wildcard with the games
// handler; the queue and draft preview live under /review because gin
// rejects a static segment as a sibling of a wildcard.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/review/pending", h.pending)
	rg.POST("/review/preview", h.previewDraft)

	rg.GET("/games/:id/preview", h.preview)
	rg.POST("/games/:id/approve", h.approve)
	rg.POST("/games/:id/dismiss", h.dismiss)
	rg.GET("/games/:id/consolidations", h.consolidations)
	rg.GET("/games/:id/recurring-preview", h.recurringPreview)
	rg.POST("/games/:id/assign-recurring", h.assignRecurring)
}

func (h *Handler) pending(c *gin.Context) {
	q := games.ListQuery{
		Q:       c.Query("q"),
		VenueID: c.Query("venue_id"),
		From:    c.Query("from"),
		To:      c.Query("to"),
		Limit:   parseInt(c.Query("limit"), 20),
		Offset:  parseInt(c.Query("offset"), 0),
	}

	items, total, err := h.Service.Pending(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) preview(c *gin.Context) {
	id := c.Param("id")
	includeSiblings := c.Query("include_siblings") == "true"

	p, err := h.Service.PreviewGame(c.Request.Context(), id, includeSiblings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "preview failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// previewDraft runs the detector and resolver against an unsaved record,
// so the editor can show the outcome while the reviewer types.
func (h *Handler) previewDraft(c *gin.Context) {
	var body struct {
		models.Game
		IncludeSiblings bool `json:"include_siblings"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	p, err := h.Service.PreviewDraft(c.Request.Context(), body.Game, body.IncludeSiblings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "preview failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) approve(c *gin.Context) {
	var req ApproveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
	}

	switch req.DecidedBy {
	case "", models.DecidedByReviewer, models.DecidedByAuto:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "decided_by must be auto or reviewer"})
		return
	}

	res, err := h.Service.Approve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, ErrInvalidRecord) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "approve failed"})
		return
	}
	if res == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) dismiss(c *gin.Context) {
	id := c.Param("id")

	ok, err := h.Service.Dismiss(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dismiss failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "review_status": models.ReviewDismissed})
}

func (h *Handler) consolidations(c *gin.Context) {
	items, err := h.Service.Consolidations.ListByGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) recurringPreview(c *gin.Context) {
	p, err := h.Service.ProposeRecurring(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "proposal failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) assignRecurring(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Action = strings.ToLower(strings.TrimSpace(req.Action))
	switch req.Action {
	case "confirm":
		if req.RecurringGameID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recurring_game_id is required"})
			return
		}
	case "reject":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be confirm or reject"})
		return
	}

	g, err := h.Service.AssignRecurring(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, ErrInvalidRecord) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assign failed"})
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, g)
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
