package recurring

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tourneyhub/internal/games"
	"tourneyhub/pkg/models"
)

type Handler struct {
	Repo  *Repo
	Games *games.Repo // instances live in the games table
}

func NewHandler(repo *Repo, gamesRepo *games.Repo) *Handler {
	return &Handler{Repo: repo, Games: gamesRepo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:id", h.getByID)
	rg.POST("", h.create)
	rg.PUT("/:id", h.update)
	rg.GET("/:id/instances", h.instances)
}

func (h *Handler) list(c *gin.Context) {
	limit := parseInt(c.Query("limit"), 50)
	offset := parseInt(c.Query("offset"), 0)
	activeOnly := c.Query("active") == "true" || c.Query("active") == "1"

	items, total, err := h.Repo.List(c.Request.Context(), c.Query("venue_id"), activeOnly, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	rec, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) create(c *gin.Context) {
	var rec models.RecurringGame
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if msg := validate(&rec); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if err := h.Repo.Create(c.Request.Context(), &rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) update(c *gin.Context) {
	var rec models.RecurringGame
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	rec.ID = c.Param("id")

	if msg := validate(&rec); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	ok, err := h.Repo.Update(c.Request.Context(), rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) instances(c *gin.Context) {
	id := c.Param("id")

	rec, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	q := games.ListQuery{
		RecurringID: id,
		Limit:       parseInt(c.Query("limit"), 50),
		Offset:      parseInt(c.Query("offset"), 0),
	}
	items, err := h.Games.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	total, err := h.Games.Count(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recurring_game": rec,
		"total":          total,
		"items":          items,
	})
}

func validate(rec *models.RecurringGame) string {
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return "name required"
	}
	if rec.VenueID == "" {
		return "venue_id required"
	}
	if rec.Weekday < 0 || rec.Weekday > 6 {
		return "weekday must be 0 (Sunday) to 6 (Saturday)"
	}
	return ""
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
