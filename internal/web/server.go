// Package web serves the browser UI for submitting fact-checks.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/factlens/internal/app"
	"github.com/ppiankov/factlens/internal/logger"
	"github.com/ppiankov/factlens/internal/metrics"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/render"
	"github.com/ppiankov/factlens/internal/theme"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Server
type Options struct {
	// NewController builds the controller for one browser session
	NewController func() *app.Controller
	Themes        *theme.Manager
	Metrics       *metrics.Metrics
	Logger        logger.Logger
	MaxImageBytes int64
	Debug         bool
}

// Server is the web UI
type Server struct {
	router        *gin.Engine
	sessions      *sessions
	themes        *theme.Manager
	log           logger.Logger
	maxImageBytes int64
}

// checkRequest is the JSON body of POST /api/check
type checkRequest struct {
	Input        string `json:"input"`
	ImageDataURL string `json:"image_data_url"`
}

// NewServer creates the server and registers its routes
func NewServer(opts Options) *Server {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	maxImageBytes := opts.MaxImageBytes
	if maxImageBytes <= 0 {
		maxImageBytes = model.MaxImageBytes
	}

	router := gin.New()
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))
	router.Use(ClientHintsMiddleware())
	// Multipart bodies beyond this spill to disk
	router.MaxMultipartMemory = maxImageBytes + 1<<20

	s := &Server{
		router:        router,
		sessions:      newSessions(opts.NewController),
		themes:        opts.Themes,
		log:           log,
		maxImageBytes: maxImageBytes,
	}

	router.GET("/", s.index)
	router.POST("/check", s.check)
	router.POST("/theme/toggle", s.toggleTheme)
	router.POST("/api/check", s.apiCheck)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	return s
}

// Router returns the underlying Gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting web UI", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("Shutting down web UI")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) currentTheme(c *gin.Context) theme.Theme {
	system := theme.FromClientHint(c.GetHeader(clientHintHeader))
	if s.themes == nil {
		return system
	}
	return s.themes.Current(system)
}

func (s *Server) index(c *gin.Context) {
	s.page(c, http.StatusOK, "", nil)
}

// check handles the form: an uploaded image takes precedence over text
func (s *Server) check(c *gin.Context) {
	sub := app.Submission{Input: c.PostForm("input")}

	if file, err := c.FormFile("image"); err == nil {
		f, err := file.Open()
		if err != nil {
			_ = c.Error(err)
			s.page(c, http.StatusBadRequest, sub.Input, render.ErrorNodes(err))
			return
		}
		defer func() { _ = f.Close() }()

		data, err := io.ReadAll(io.LimitReader(f, s.maxImageBytes+1))
		if err != nil {
			_ = c.Error(err)
			s.page(c, http.StatusBadRequest, sub.Input, render.ErrorNodes(err))
			return
		}
		sub.ImageData = data
	}

	var buf captureSink
	_, err := s.sessions.controller(c).Submit(c.Request.Context(), sub, &buf)
	if err != nil {
		_ = c.Error(err)
		nodes := buf.nodes
		if nodes == nil {
			nodes = render.ErrorNodes(err)
		}
		s.page(c, statusFor(err), sub.Input, nodes)
		return
	}

	s.page(c, http.StatusOK, sub.Input, buf.nodes)
}

func (s *Server) apiCheck(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	sub := app.Submission{Input: req.Input}
	if req.ImageDataURL != "" {
		data, err := decodeDataURL(req.ImageDataURL)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sub.ImageData = data
	}

	var buf bytes.Buffer
	_, err := s.sessions.controller(c).Submit(c.Request.Context(), sub, render.NewJSONSink(&buf, false))
	if err != nil && buf.Len() == 0 {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if err != nil {
		_ = c.Error(err)
		status = statusFor(err)
	}
	c.Data(status, "application/json; charset=utf-8", buf.Bytes())
}

func (s *Server) toggleTheme(c *gin.Context) {
	if s.themes == nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	next, err := s.themes.Toggle(theme.FromClientHint(c.GetHeader(clientHintHeader)))
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "failed to save theme")
		return
	}

	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.JSON(http.StatusOK, gin.H{"theme": next})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) page(c *gin.Context, status int, input string, nodes []render.Node) {
	var buf bytes.Buffer
	err := writePage(&buf, pageData{
		Theme:   s.currentTheme(c),
		Input:   input,
		Results: fragment(nodes),
	})
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "failed to render page")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// statusFor maps submission errors to HTTP statuses
func statusFor(err error) int {
	var validation *app.ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrSubmissionInFlight):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

// captureSink keeps the rendered nodes for the page template
type captureSink struct {
	nodes []render.Node
}

func (s *captureSink) Render(nodes []render.Node) error {
	s.nodes = nodes
	return nil
}
