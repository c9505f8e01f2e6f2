// Package stream serves the composed output as an MJPEG stream plus a
// small JSON status API, for running the detector headless.
package stream

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hybridgroup/mjpeg"
	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Status is the live state reported by the API.
type Status struct {
	Frames         int       `json:"frames"`
	People         int       `json:"people"`
	CountAlarms    int       `json:"count_alarms"`
	DistanceAlarms int       `json:"distance_alarms"`
	StartedAt      time.Time `json:"started_at"`
	UptimeSeconds  float64   `json:"uptime_seconds"`
}

// Server owns the MJPEG stream and the HTTP listener.
type Server struct {
	stream *mjpeg.Stream
	srv    *http.Server

	mu     sync.Mutex
	status Status
}

// NewServer builds the server on the given listen address.
func NewServer(addr string) *Server {
	s := &Server{
		stream: mjpeg.NewStream(),
	}
	s.status.StartedAt = time.Now()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/stream", gin.WrapH(s.stream))

	api := r.Group("/api")
	api.GET("/status", func(ctx *gin.Context) {
		s.mu.Lock()
		st := s.status
		s.mu.Unlock()
		st.UptimeSeconds = time.Since(st.StartedAt).Seconds()
		ctx.JSON(http.StatusOK, st)
	})

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Start serves in the background until Close.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("stream: http server: %v", err)
		}
	}()
	log.Infof("stream: serving MJPEG on %s/stream", s.srv.Addr)
}

// Publish pushes the composed frame to connected stream clients and
// refreshes the reported status.
func (s *Server) Publish(frame gocv.Mat, frames, people, countAlarms, distanceAlarms int) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		log.Warnf("stream: could not encode frame: %v", err)
		return
	}
	s.stream.UpdateJPEG(buf.GetBytes())
	buf.Close()

	s.mu.Lock()
	s.status.Frames = frames
	s.status.People = people
	s.status.CountAlarms = countAlarms
	s.status.DistanceAlarms = distanceAlarms
	s.mu.Unlock()
}

// Close shuts the HTTP listener down.
func (s *Server) Close() error {
	return s.srv.Close()
}
