// ABOUTME: HTTP server implementing the remote dealer and activity resources
// ABOUTME: Echo routes over the dealer JSON file and the SQLite activity log
package web

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/harperreed/dealerdesk/db"
	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/remote"
	"github.com/harperreed/dealerdesk/store"
)

// maxBodySize caps request bodies; the dealer collection is posted whole.
const maxBodySize = "5M"

type Server struct {
	db      *sql.DB
	dealers *db.DealerFile
	logger  *zap.Logger
	echo    *echo.Echo
	now     func() time.Time
}

func NewServer(database *sql.DB, dealers *db.DealerFile, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		db:      database,
		dealers: dealers,
		logger:  logger,
		echo:    e,
		now:     time.Now,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(requestLogger(logger))

	e.GET("/healthz", s.handleHealth)
	e.GET(remote.DefaultDealersPath, s.handleGetDealers)
	e.POST(remote.DefaultDealersPath, s.handleSaveDealers)
	e.GET(remote.DefaultActivitiesPath, s.handleListActivities)
	e.POST(remote.DefaultActivitiesPath, s.handleCreateActivity)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on port until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.logger.Info("starting dealer resource server", zap.String("addr", "http://localhost"+addr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		<-errCh
		return nil
	}
}

func noCache(c echo.Context) {
	h := c.Response().Header()
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
}

func (s *Server) handleHealth(c echo.Context) error {
	count, err := db.CountActivities(s.db)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "activities": count})
}

func (s *Server) handleGetDealers(c echo.Context) error {
	dealers, err := s.dealers.Load()
	if err != nil {
		s.logger.Error("failed to load dealers", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load dealers")
	}
	noCache(c)
	return c.JSON(http.StatusOK, map[string]any{"dealers": dealers})
}

func (s *Server) handleSaveDealers(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read body")
	}

	dealers, err := db.DecodeDealers(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.dealers.Save(dealers); err != nil {
		s.logger.Error("failed to save dealers", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save dealers")
	}

	s.logger.Info("dealers saved", zap.Int("count", len(dealers)))
	return c.JSON(http.StatusOK, map[string]int{"saved": len(dealers)})
}

func (s *Server) handleListActivities(c echo.Context) error {
	activities, err := db.ListActivities(s.db, 0)
	if err != nil {
		s.logger.Error("failed to list activities", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list activities")
	}
	noCache(c)
	return c.JSON(http.StatusOK, map[string]any{"activities": activities})
}

func (s *Server) handleCreateActivity(c echo.Context) error {
	var in store.ActivityInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid activity payload")
	}
	if err := in.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry := models.ActivityEntry{
		ID:           models.ID(uuid.New().String()),
		DealerID:     in.DealerID,
		Date:         in.Date,
		Type:         in.Type,
		Notes:        in.Notes,
		FollowUpDate: in.FollowUpDate,
		StatusUpdate: in.StatusUpdate,
		CreatedAt:    s.now().UTC(),
	}
	if entry.FollowUpDate != nil && entry.FollowUpDate.IsZero() {
		entry.FollowUpDate = nil
	}

	if err := db.CreateActivity(s.db, &entry); err != nil {
		s.logger.Error("failed to store activity", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store activity")
	}

	return c.JSON(http.StatusCreated, map[string]any{"activity": entry})
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.New().String()
			}

			logger.Info("request",
				zap.String("request_id", id),
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", res.Status),
				zap.String("remote_ip", c.RealIP()),
				zap.Duration("latency", time.Since(start)),
				zap.Int64("response_size", res.Size),
			)
			return nil
		}
	}
}
