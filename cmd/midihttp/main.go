// midihttp is a REST service around the MIDI codec: stateless encode
// and decode endpoints, plus decode sessions that keep parser state
// (running status, open SysEx) alive across requests.
package main

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kevmo314/go-midi/pkg/messages"
	"github.com/kevmo314/go-midi/pkg/wire"
)

// @title go-midi codec API
// @version 1.0
// @description REST access to the serial MIDI parser and encoder
// @BasePath /api/v1

var (
	port       int
	bufferSize int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "midihttp",
		Short: "Serve the MIDI codec over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return newServer().router().Run(fmt.Sprintf(":%d", port))
		},
	}
	rootCmd.Flags().IntVar(&port, "port", 8080, "listen port")
	rootCmd.Flags().IntVar(&bufferSize, "sysex-buffer", 4096, "per-session SysEx buffer capacity")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type session struct {
	mu     sync.Mutex
	parser *wire.Parser
	events []string
}

func (s *session) StreamEvent(event error, offset int64) {
	s.events = append(s.events, fmt.Sprintf("byte %d: %v", offset, event))
}

type server struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newServer() *server {
	return &server{sessions: make(map[string]*session)}
}

func (srv *server) router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "midihttp"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/sessions", srv.createSession)
		v1.POST("/sessions/:id/feed", srv.feedSession)
		v1.DELETE("/sessions/:id", srv.deleteSession)
		v1.POST("/decode", srv.decode)
		v1.POST("/encode", srv.encode)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return r
}

type feedRequest struct {
	Hex string `json:"hex" binding:"required"`
}

type feedResponse struct {
	Messages []apiMessage `json:"messages"`
	Events   []string     `json:"events"`
}

// createSession godoc
// @Summary Create a decode session
// @Description Allocates a parser whose state persists across feed calls
// @Produce json
// @Success 201 {object} map[string]string
// @Router /sessions [post]
func (srv *server) createSession(c *gin.Context) {
	s := &session{}
	s.parser = wire.NewParser(
		messages.NewSysExBuffer(make([]byte, bufferSize)),
		wire.WithDiagnostics(s),
	)
	id := uuid.NewString()

	srv.mu.Lock()
	srv.sessions[id] = s
	srv.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// feedSession godoc
// @Summary Feed bytes to a decode session
// @Description Parses hex bytes, returning completed messages and stream events
// @Accept json
// @Produce json
// @Param id path string true "session id"
// @Success 200 {object} feedResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/feed [post]
func (srv *server) feedSession(c *gin.Context) {
	srv.mu.Lock()
	s, ok := srv.sessions[c.Param("id")]
	srv.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, err := parseHex(req.Hex)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	resp := feedResponse{Messages: []apiMessage{}, Events: []string{}}
	for _, b := range data {
		m, _ := s.parser.Feed(b)
		if m.Kind() != messages.KindInvalid {
			resp.Messages = append(resp.Messages, toAPI(m))
		}
	}
	resp.Events = append(resp.Events, s.events...)
	c.JSON(http.StatusOK, resp)
}

// deleteSession godoc
// @Summary Delete a decode session
// @Param id path string true "session id"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /sessions/{id} [delete]
func (srv *server) deleteSession(c *gin.Context) {
	srv.mu.Lock()
	_, ok := srv.sessions[c.Param("id")]
	delete(srv.sessions, c.Param("id"))
	srv.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	c.Status(http.StatusNoContent)
}

// decode godoc
// @Summary Decode a self-contained byte stream
// @Description Like a session feed, but parser state is discarded after
// @Accept json
// @Produce json
// @Success 200 {object} feedResponse
// @Failure 400 {object} map[string]string
// @Router /decode [post]
func (srv *server) decode(c *gin.Context) {
	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, err := parseHex(req.Hex)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := &session{}
	p := wire.NewParser(
		messages.NewSysExBuffer(make([]byte, bufferSize)),
		wire.WithDiagnostics(s),
	)
	resp := feedResponse{Messages: []apiMessage{}, Events: []string{}}
	for _, b := range data {
		m, _ := p.Feed(b)
		if m.Kind() != messages.KindInvalid {
			resp.Messages = append(resp.Messages, toAPI(m))
		}
	}
	resp.Events = append(resp.Events, s.events...)
	c.JSON(http.StatusOK, resp)
}

type encodeRequest struct {
	Messages      []apiMessage `json:"messages" binding:"required"`
	RunningStatus bool         `json:"runningStatus"`
}

// encode godoc
// @Summary Encode messages into serial bytes
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /encode [post]
func (srv *server) encode(c *gin.Context) {
	var req encodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var opts []wire.EncoderOption
	if req.RunningStatus {
		opts = append(opts, wire.WithRunningStatus())
	}
	e := wire.NewEncoder(opts...)

	var out []byte
	for i, am := range req.Messages {
		m, err := fromAPI(am)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("message %d: %v", i, err)})
			return
		}
		if out, err = e.Append(out, m); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("message %d: %v", i, err)})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"hex": strings.ToUpper(hex.EncodeToString(out))})
}

func parseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ',' {
			return -1
		}
		return r
	}, s)
	return hex.DecodeString(s)
}
