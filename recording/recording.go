package recording

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/fortym2/HumanCount/types"
)

// Recorder writes the composed output surface to a video file.
type Recorder struct {
	writer   *gocv.VideoWriter
	filename string
	started  time.Time
}

// Start opens a timestamped output file sized to the given frame,
// trying each configured codec until one works.
func Start(frame gocv.Mat, config types.VideoConfig) (*Recorder, error) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("humancount_%s.mp4", timestamp)

	var vw *gocv.VideoWriter
	var err error
	var usedCodec string

	for _, fourcc := range config.Codecs {
		vw, err = gocv.VideoWriterFile(filename, fourcc, config.FPS, frame.Cols(), frame.Rows(), true)
		if err == nil {
			usedCodec = fourcc
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("recording: could not create video writer with any codec: %w", err)
	}

	log.Infof("recording: started %s (codec: %s)", filename, usedCodec)
	return &Recorder{writer: vw, filename: filename, started: time.Now()}, nil
}

// Write appends one frame to the output file.
func (r *Recorder) Write(frame gocv.Mat) error {
	return r.writer.Write(frame)
}

// Duration returns how long the recording has been running.
func (r *Recorder) Duration() time.Duration {
	return time.Since(r.started)
}

// Close finishes the output file.
func (r *Recorder) Close() error {
	if err := r.writer.Close(); err != nil {
		return fmt.Errorf("recording: error closing video writer: %w", err)
	}
	log.Infof("recording: stopped %s after %s", r.filename, r.Duration().Round(time.Second))
	return nil
}
