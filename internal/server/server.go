package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"donezo/internal/models"
)

// Storage is the set of persistence operations the handlers depend on.
type Storage interface {
	RegisterUser(ctx context.Context, user models.Document) (string, error)
	GetUserByEmail(ctx context.Context, email string) (models.Document, error)
	CreateTask(ctx context.Context, task models.Document) (string, error)
	ListTasksGrouped(ctx context.Context, email, category string) ([]models.TaskGroup, error)
	UpdateTaskFields(ctx context.Context, id, title, description string) error
	MoveTask(ctx context.Context, id, category string, modified time.Time, upsert bool) (models.Document, error)
	DeleteTask(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Server provides HTTP handlers for the task board backend.
type Server struct {
	engine    *gin.Engine
	store     Storage
	logger    *slog.Logger
	dndStrict bool
}

// New constructs the HTTP server with routes and middleware configured.
// allowedOrigins is the CORS allow-list of client origins.
func New(store Storage, logger *slog.Logger, allowedOrigins []string, dndStrict bool) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = allowedOrigins
	corsCfg.AllowCredentials = true
	router.Use(cors.New(corsCfg))

	srv := &Server{
		engine:    router,
		store:     store,
		logger:    logger,
		dndStrict: dndStrict,
	}
	router.Use(srv.requestLogger())

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handleWelcome)
	s.engine.GET("/healthz", s.handleHealth)

	s.engine.POST("/add-users", s.handleRegisterUser)
	s.engine.GET("/user/:email", s.handleGetUser)

	s.engine.POST("/add-tasks", s.handleCreateTask)
	s.engine.GET("/tasks/:email", s.handleListTasks)
	s.engine.PUT("/task-update/:id", s.handleUpdateTask)
	s.engine.PUT("/tasks/dnd/:id", s.handleMoveTask)
	s.engine.DELETE("/task-del/:id", s.handleDeleteTask)
}

// handleWelcome greets clients hitting the root path.
func (s *Server) handleWelcome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to the DoneZo TODO app backend")
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.logError(c, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger tags every request with an id and logs its outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Writer.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		s.logger.Info("request completed",
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// logError records a server-side failure with request context.
func (s *Server) logError(c *gin.Context, err error) {
	s.logger.Error("request failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.String("error", err.Error()),
	)
}

// respondStorageError hides storage detail behind a generic server error.
func (s *Server) respondStorageError(c *gin.Context, err error) {
	s.logError(c, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
