package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"donezo/internal/models"
	"donezo/internal/storage"
)

// handleRegisterUser stores a new user unless the email is already taken.
// The body is kept verbatim; only the presence of an email is enforced.
func (s *Server) handleRegisterUser(c *gin.Context) {
	var user models.Document
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if email, _ := user["email"].(string); email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	id, err := s.store.RegisterUser(c.Request.Context(), user)
	switch {
	case errors.Is(err, storage.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": "user already registered"})
	case err != nil:
		s.respondStorageError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"acknowledged": true, "insertedId": id})
	}
}

// handleGetUser looks a user up by email. Absence is a valid result and
// yields a null body rather than an error.
func (s *Server) handleGetUser(c *gin.Context) {
	user, err := s.store.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		s.respondStorageError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
