package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	log "github.com/echocat/slf4g"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/blaubaer/voice-recorder/pkg/artifact"
	"github.com/blaubaer/voice-recorder/pkg/assess"
	"github.com/blaubaer/voice-recorder/pkg/common"
	"github.com/blaubaer/voice-recorder/pkg/session"
	"github.com/blaubaer/voice-recorder/pkg/transcribe"
)

// Transcription is the part of transcribe.Facade the server needs.
type Transcription interface {
	transcribe.Transcriber
	Enabled() bool
}

// Assessment is the part of assess.Assessor the server needs.
type Assessment interface {
	Enabled() bool
	Assess(ctx context.Context, a *session.Artifact) (assess.Result, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server is the HTTP control surface of a Controller.
type Server struct {
	Controller    *session.Controller
	Store         artifact.Store
	Transcription Transcription
	Assessment    Assessment
	Logs          *common.RingLineBuffer

	conf   Configuration
	hub    Hub
	engine *gin.Engine
}

func New(conf Configuration, controller *session.Controller, store artifact.Store) *Server {
	result := &Server{
		Controller: controller,
		Store:      store,
		conf:       conf,
	}
	result.engine = result.newEngine()
	controller.OnEvent(result.hub.OnEvent)
	return result
}

func (this *Server) newEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), logRequests)

	sessions := engine.Group("/session")
	{
		sessions.GET("", this.getSession)
		sessions.POST("/start", this.startSession)
		sessions.POST("/pause", this.pauseSession)
		sessions.POST("/resume", this.resumeSession)
		sessions.POST("/toggle", this.toggleSession)
		sessions.POST("/stop", this.stopSession)
	}
	artifacts := engine.Group("/artifacts")
	{
		artifacts.GET("", this.listArtifacts)
		artifacts.GET("/:id", this.getArtifact)
		artifacts.DELETE("/:id", this.revokeArtifact)
		artifacts.POST("/:id/transcription", this.transcribeArtifact)
		artifacts.POST("/:id/assessment", this.assessArtifact)
	}
	engine.GET("/live", this.live)
	engine.GET("/logs", this.logs)

	return engine
}

func (this *Server) Handler() http.Handler {
	return this.engine
}

// Run serves until ctx is done.
func (this *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              this.conf.Listen,
		Handler:           this.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	frameCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	interval := this.conf.FrameInterval
	if interval <= 0 {
		interval = NewConfiguration().FrameInterval
	}
	go this.hub.PushFrames(frameCtx, this.Controller.Tap, interval)

	failed := make(chan error, 1)
	go func() {
		log.With("listen", this.conf.Listen).
			Info("HTTP control surface started.")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
		close(failed)
	}()

	select {
	case err, ok := <-failed:
		if ok {
			return fmt.Errorf("cannot serve on %q: %w", this.conf.Listen, err)
		}
		return nil
	case <-ctx.Done():
	}

	this.hub.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("cannot shutdown HTTP control surface: %w", err)
	}
	log.Info("HTTP control surface stopped.")
	return nil
}

// OnAssessment pushes a finished assessment to all live clients.
func (this *Server) OnAssessment(result assess.Result, err error) {
	m := message{Kind: kindAssessment}
	if err != nil {
		m.Error = err.Error()
	} else {
		m.Assessment = &result
	}
	this.hub.broadcast(m)
}

// OnTranscription pushes a finished transcription to all live clients.
func (this *Server) OnTranscription(result transcribe.Result, err error) {
	m := message{Kind: kindTranscription}
	if err != nil {
		m.Error = err.Error()
	} else {
		m.Transcription = &result
	}
	this.hub.broadcast(m)
}

func logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	log.With("method", c.Request.Method).
		With("path", c.Request.URL.Path).
		With("status", c.Writer.Status()).
		With("duration", time.Since(start)).
		Debug("Request handled.")
}

func (this *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, newSnapshot(this.Controller.Snapshot()))
}

type startRequest struct {
	Duration string `json:"duration" form:"duration"`
}

func (this *Server) startSession(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Duration == "" {
		req.Duration = c.Query("duration")
	}
	duration, err := session.ParseDuration(req.Duration)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := this.Controller.Start(c.Request.Context(), duration); err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newSnapshot(this.Controller.Snapshot()))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionActive), errors.Is(err, session.ErrStartAbandoned):
		return http.StatusConflict
	case errors.Is(err, session.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, session.ErrDeviceUnavailable), errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrInvalidDuration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (this *Server) pauseSession(c *gin.Context) {
	this.Controller.Pause()
	c.JSON(http.StatusOK, newSnapshot(this.Controller.Snapshot()))
}

func (this *Server) resumeSession(c *gin.Context) {
	this.Controller.Resume()
	c.JSON(http.StatusOK, newSnapshot(this.Controller.Snapshot()))
}

func (this *Server) toggleSession(c *gin.Context) {
	this.Controller.TogglePauseResume()
	c.JSON(http.StatusOK, newSnapshot(this.Controller.Snapshot()))
}

func (this *Server) stopSession(c *gin.Context) {
	result, err := this.Controller.Stop()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if result == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (this *Server) listArtifacts(c *gin.Context) {
	if this.Store == nil {
		c.JSON(http.StatusOK, []*session.Artifact{})
		return
	}
	c.JSON(http.StatusOK, this.Store.List())
}

func (this *Server) artifactOf(c *gin.Context) (*session.Artifact, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "illegal artifact id: " + c.Param("id")})
		return nil, false
	}
	if this.Store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found: " + id.String()})
		return nil, false
	}
	result, ok := this.Store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found: " + id.String()})
		return nil, false
	}
	return result, true
}

func (this *Server) getArtifact(c *gin.Context) {
	a, ok := this.artifactOf(c)
	if !ok {
		return
	}
	data, contentType, err := a.Playable()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+a.ID.String()+a.Extension()+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func (this *Server) revokeArtifact(c *gin.Context) {
	a, ok := this.artifactOf(c)
	if !ok {
		return
	}
	this.Store.Revoke(a.ID)
	c.Status(http.StatusNoContent)
}

func (this *Server) transcribeArtifact(c *gin.Context) {
	if this.Transcription == nil || !this.Transcription.Enabled() {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "transcription is disabled"})
		return
	}
	a, ok := this.artifactOf(c)
	if !ok {
		return
	}
	result, err := this.Transcription.Transcribe(c.Request.Context(), a)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, transcribe.ErrEmptyRecording) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (this *Server) assessArtifact(c *gin.Context) {
	if this.Assessment == nil || !this.Assessment.Enabled() {
		c.JSON(http.StatusNotImplemented, gin.H{"error": assess.ErrDisabled.Error()})
		return
	}
	a, ok := this.artifactOf(c)
	if !ok {
		return
	}
	result, err := this.Assessment.Assess(c.Request.Context(), a)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, assess.ErrEmptyRecording) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (this *Server) live(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).
			Debug("Cannot upgrade live connection.")
		return
	}
	snapshot := this.Controller.Snapshot()
	this.hub.serve(conn, message{
		Kind:     session.EventStateChanged.String(),
		Snapshot: newSnapshot(snapshot),
	})
}

func (this *Server) logs(c *gin.Context) {
	if this.Logs == nil {
		c.Status(http.StatusNoContent)
		return
	}
	var tail uint64
	if v := c.Query("tail"); v != "" {
		var err error
		if tail, err = strconv.ParseUint(v, 10, 32); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "illegal tail: " + v})
			return
		}
	}
	lines := this.Logs.NumberOfLines()
	c.Header("X-Log-Lines", strconv.FormatUint(uint64(lines), 10))
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	_, _ = this.Logs.WriteTailTo(c.Writer, uint32(tail))
}
