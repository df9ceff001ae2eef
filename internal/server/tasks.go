package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"donezo/internal/models"
	"donezo/internal/storage"
)

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type moveTaskRequest struct {
	Category string    `json:"category" binding:"required"`
	Modified time.Time `json:"modified"`
}

// handleCreateTask inserts the task document as the client provided it.
// Records are deliberately not validated beyond being JSON.
func (s *Server) handleCreateTask(c *gin.Context) {
	var task models.Document
	if err := c.ShouldBindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	id, err := s.store.CreateTask(c.Request.Context(), task)
	if err != nil {
		s.respondStorageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "insertedId": id})
}

// handleListTasks returns the user's board grouped into the three columns,
// optionally narrowed by a category query parameter.
func (s *Server) handleListTasks(c *gin.Context) {
	groups, err := s.store.ListTasksGrouped(c.Request.Context(), c.Param("email"), c.Query("category"))
	if err != nil {
		s.logError(c, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   true,
			"message": "Failed to retrieve tasks",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"error":   false,
		"message": "Tasks retrieved successfully",
		"data":    groups,
	})
}

// handleUpdateTask applies a partial title/description update.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	err := s.store.UpdateTaskFields(c.Request.Context(), c.Param("id"), deref(req.Title), deref(req.Description))
	switch {
	case errors.Is(err, storage.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case err != nil:
		s.logError(c, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully"})
	}
}

// handleMoveTask reassigns the board column for drag-and-drop. A missing
// category in the body is reported the way the board client expects: 404.
func (s *Server) handleMoveTask(c *gin.Context) {
	var req moveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   true,
			"message": "task not found",
		})
		return
	}
	if req.Modified.IsZero() {
		req.Modified = time.Now().UTC()
	}

	doc, err := s.store.MoveTask(c.Request.Context(), c.Param("id"), req.Category, req.Modified, !s.dndStrict)
	switch {
	case errors.Is(err, storage.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   true,
			"message": "Invalid ID format",
		})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   true,
			"message": "task not found",
		})
	case err != nil:
		s.logError(c, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   true,
			"message": "Failed to update task",
		})
	default:
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"error":   false,
			"message": "Successfully updated the task",
			"data":    doc,
		})
	}
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	err := s.store.DeleteTask(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, storage.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case err != nil:
		s.logError(c, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
	}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
