package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"taskorganizer/internal/models"
	"taskorganizer/internal/services"
)

type TaskHandler struct {
	service services.TaskService
}

func NewTaskHandler(service services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req struct {
		Title       string              `json:"title" binding:"required"`
		Description string              `json:"description"`
		Priority    models.TaskPriority `json:"priority"` // low|medium|high
		DueAt       string              `json:"due_at"`    // RFC3339
		RemindAt    string              `json:"remind_at"` // RFC3339
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	due, err := parseOptionalTime(req.DueAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_at (RFC3339)"})
		return
	}
	remind, err := parseOptionalTime(req.RemindAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid remind_at (RFC3339)"})
		return
	}
	if req.Priority != "" && !models.IsValidTaskPriority(req.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
		return
	}

	task := &models.Task{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueAt:       due,
		RemindAt:    remind,
	}

	created, err := h.service.Create(c.Request.Context(), task)
	if err != nil {
		if errors.Is(err, services.ErrRemindAfterDue) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Int64("user_id", userID).Msg("create task failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GET /tasks
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	filter := models.TaskFilter{UserID: userID}

	if v, okQ := c.GetQuery("status"); okQ {
		st := models.TaskStatus(v)
		if !models.IsValidTaskStatus(st) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		filter.Status = &st
	}
	if v, okQ := c.GetQuery("priority"); okQ {
		p := models.TaskPriority(v)
		if !models.IsValidTaskPriority(p) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
			return
		}
		filter.Priority = &p
	}
	if v, okQ := c.GetQuery("due_from"); okQ {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_from (RFC3339)"})
			return
		}
		filter.DueFrom = &t
	}
	if v, okQ := c.GetQuery("due_to"); okQ {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_to (RFC3339)"})
			return
		}
		filter.DueTo = &t
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	filter.Limit = size
	filter.Offset = (page - 1) * size

	tasks, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("list tasks failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tasks"})
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// GET /tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	task, err := h.service.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		log.Error().Err(err).Int64("task_id", id).Msg("get task failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// PATCH /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	current, err := h.service.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		log.Error().Err(err).Int64("task_id", id).Msg("update: get current failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get task"})
		return
	}
	if current == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	var req struct {
		Title       *string              `json:"title"`
		Description *string              `json:"description"`
		Priority    *models.TaskPriority `json:"priority"`
		Status      *models.TaskStatus   `json:"status"`
		DueAt       *string              `json:"due_at"`    // RFC3339, "" clears
		RemindAt    *string              `json:"remind_at"` // RFC3339, "" clears
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := *current

	if req.Title != nil {
		update.Title = *req.Title
	}
	if req.Description != nil {
		update.Description = *req.Description
	}
	if req.Priority != nil {
		if !models.IsValidTaskPriority(*req.Priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
			return
		}
		update.Priority = *req.Priority
	}
	if req.Status != nil {
		if !models.IsValidTaskStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		update.Status = *req.Status
	}
	if req.DueAt != nil {
		if *req.DueAt == "" {
			update.DueAt = nil
		} else {
			t, err := time.Parse(time.RFC3339, *req.DueAt)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_at"})
				return
			}
			update.DueAt = &t
		}
	}
	if req.RemindAt != nil {
		if *req.RemindAt == "" {
			update.RemindAt = nil
		} else {
			t, err := time.Parse(time.RFC3339, *req.RemindAt)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid remind_at"})
				return
			}
			update.RemindAt = &t
		}
	}

	updated, err := h.service.Update(c.Request.Context(), userID, id, &update)
	if err != nil {
		if errors.Is(err, services.ErrRemindAfterDue) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Int64("task_id", id).Msg("update task failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	current, err := h.service.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		log.Error().Err(err).Int64("task_id", id).Msg("delete: get current failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get task"})
		return
	}
	if current == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		log.Error().Err(err).Int64("task_id", id).Msg("delete task failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task"})
		return
	}
	c.Status(http.StatusNoContent)
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
