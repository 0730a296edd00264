package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kseslo/deadliner/internal/domain/countdown"
	"github.com/kseslo/deadliner/internal/domain/deadline"
	"github.com/kseslo/deadliner/internal/domain/tz"
	pg "github.com/kseslo/deadliner/internal/repository/postgres"
)

type Handlers struct {
	uc  *Usecase
	log *zap.Logger
}

func NewHandlers(uc *Usecase, log *zap.Logger) *Handlers {
	return &Handlers{uc: uc, log: log}
}

type deadlineResponse struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Title    string `json:"title"`
	Kind     string `json:"kind"`
	DueAt    string `json:"due_at"`
	DueLocal string `json:"due_at_local"`
	Zone     string `json:"timezone"`
	RemindAt string `json:"remind_at"`
	Active   bool   `json:"active"`
}

const localLayout = "2006-01-02 15:04 MST"

func toDeadlineResponse(d *deadline.Deadline) deadlineResponse {
	return deadlineResponse{
		ID:       d.ID,
		UserID:   d.UserID,
		Title:    d.Title,
		Kind:     d.Kind,
		DueAt:    d.DueAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		DueLocal: tz.Format(d.DueAt, d.Zone, localLayout),
		Zone:     d.Zone,
		RemindAt: d.RemindAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Active:   d.Active,
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	var fe FieldError
	switch {
	case errors.As(err, &fe):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "field": fe.Field, "message": fe.Msg})
	case errors.Is(err, ErrValidation), errors.Is(err, countdown.ErrInvalidTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pg.ErrNotFound), errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, pg.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	default:
		h.log.Error("internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func (h *Handlers) createDeadline(c *gin.Context) {
	var in CreateDeadlineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
		return
	}
	d, err := h.uc.CreateDeadline(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDeadlineResponse(d))
}

func (h *Handlers) getDeadline(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.uc.GetDeadline(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toDeadlineResponse(d))
}

func (h *Handlers) listDeadlines(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id query param required"})
		return
	}
	ds, err := h.uc.ListDeadlines(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]deadlineResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDeadlineResponse(d))
	}
	c.JSON(http.StatusOK, gin.H{"deadlines": out})
}

type updateDeadlineInput struct {
	CreateDeadlineInput
	Active *bool `json:"active"`
}

func (h *Handlers) updateDeadline(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in updateDeadlineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
		return
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	d, err := h.uc.UpdateDeadline(c.Request.Context(), id, in.CreateDeadlineInput, active)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toDeadlineResponse(d))
}

func (h *Handlers) deleteDeadline(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.uc.DeleteDeadline(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) countdown(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, d, err := h.uc.Countdown(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"deadline_id": d.ID,
		"title":       d.Title,
		"due_at":      d.DueAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		"due_local":   tz.Format(d.DueAt, d.Zone, localLayout),
		"countdown":   r,
	})
}

func (h *Handlers) listNotifications(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	ns, err := h.uc.ListNotifications(c.Request.Context(), userID, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": ns})
}

func (h *Handlers) getPreference(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.uc.GetPreference(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) putPreference(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in PreferenceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
		return
	}
	p, err := h.uc.PutPreference(c.Request.Context(), userID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
