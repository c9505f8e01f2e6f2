package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/fortym2/HumanCount/alarm"
	"github.com/fortym2/HumanCount/config"
	"github.com/fortym2/HumanCount/detect"
	"github.com/fortym2/HumanCount/geometry"
	"github.com/fortym2/HumanCount/heatmap"
	"github.com/fortym2/HumanCount/pipeline"
	"github.com/fortym2/HumanCount/recording"
	"github.com/fortym2/HumanCount/stream"
	"github.com/fortym2/HumanCount/types"
	"github.com/fortym2/HumanCount/ui"
)

func main() {
	inputPath := flag.String("input", "", "input JSON configuration (required)")
	showHOG := flag.Bool("show-hog-boxes", false, "show the bounding boxes produced by HOG-SVM")
	noFilter := flag.Bool("no-filter-optimized-boxes", false, "show the raw motion boxes instead of the filtered ones")
	useMOG2 := flag.Bool("use-mog2", false, "use MOG2 to perform background subtraction")
	noAlarmCount := flag.Bool("no-alarm-count", false, "disable the alarm when the number of people exceeds the limit")
	noAlarmDistance := flag.Bool("no-alarm-distance", false, "disable the alarm when a distance falls below the minimum allowed")
	show := flag.Bool("show", false, "show intermediate preprocessing windows")
	headless := flag.Bool("headless", false, "run without display windows")
	streamOut := flag.Bool("stream", false, "serve the composed output as MJPEG with a status API")
	record := flag.Bool("record", false, "record the composed output to a video file")
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*inputPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	flags := types.RunFlags{
		ShowHOGBoxes:     *showHOG,
		NoFilterBoxes:    *noFilter,
		UseMOG2:          *useMOG2,
		NoAlarmCount:     *noAlarmCount,
		NoAlarmDistance:  *noAlarmDistance,
		ShowIntermediate: *show && !*headless,
		Headless:         *headless,
		Stream:           *streamOut,
		Record:           *record,
	}

	app, err := newApp(cfg, flags)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		log.Fatalf("%v", err)
	}
}

// app owns every long-lived resource of a run: capture, detectors,
// heatmap, display windows and the optional stream/record sinks.
type app struct {
	cfg   *config.Config
	flags types.RunFlags

	capture *gocv.VideoCapture
	people  *detect.HOGPeopleDetector
	motion  *detect.DiffMotionDetector
	pipe    *pipeline.Pipeline

	heat    *heatmap.Accumulator
	display types.DisplayConfig
	alarms  *alarm.Evaluator

	window        *gocv.Window
	diffWindow    *gocv.Window
	contourWindow *gocv.Window

	notifier *alarm.MQTTNotifier
	server   *stream.Server
	recorder *recording.Recorder
}

func newApp(cfg *config.Config, flags types.RunFlags) (*app, error) {
	a := &app{cfg: cfg, flags: flags, display: types.DefaultDisplayConfig()}
	detCfg := types.DefaultDetectorConfig()

	background, baseline, err := loadBackground(cfg.Background, detCfg)
	if err != nil {
		return nil, err
	}
	defer background.Close()

	a.people, err = detect.NewHOGPeopleDetector(detCfg)
	if err != nil {
		return nil, err
	}
	a.motion = detect.NewDiffMotionDetector(background, baseline, flags.UseMOG2, flags.ShowIntermediate, detCfg)
	a.pipe = pipeline.New(a.people, a.motion, cfg.Camera, detCfg)
	a.heat = heatmap.New(types.FrameWidth, types.FrameHeight, a.display)

	if cfg.MQTT != nil {
		a.notifier, err = alarm.NewMQTTNotifier(*cfg.MQTT)
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	var notifier alarm.Notifier
	if a.notifier != nil {
		notifier = a.notifier
	}
	a.alarms = alarm.NewEvaluator(cfg.Alarms, flags.NoAlarmCount, flags.NoAlarmDistance, notifier)

	a.capture, err = openCapture(cfg.Video)
	if err != nil {
		a.Close()
		return nil, err
	}

	if !flags.Headless {
		a.window = gocv.NewWindow("Frame and heatmap")
		if flags.ShowIntermediate {
			a.diffWindow = gocv.NewWindow("segmented")
			a.contourWindow = gocv.NewWindow("contours")
		}
	}

	if flags.Stream {
		addr := ":8089"
		if cfg.HTTP != nil {
			addr = cfg.HTTP.Addr
		}
		a.server = stream.NewServer(addr)
		a.server.Start()
	}

	return a, nil
}

// loadBackground reads the still reference image, converts it to the
// working grayscale canvas and extracts its baseline contour boxes.
func loadBackground(path string, cfg types.DetectorConfig) (gocv.Mat, []image.Rectangle, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return gocv.Mat{}, nil, fmt.Errorf("could not read background image %q", path)
	}
	defer img.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	gocv.Resize(gray, &gray, image.Pt(types.FrameWidth, types.FrameHeight), 0, 0, gocv.InterpolationLinear)

	extractor := detect.NewContourExtractor(cfg.DiffThreshold, cfg.MaxValue, cfg.ShadowValue)
	baseline, err := extractor.Extract(gray, detect.ContourOptions{Mode: gocv.RetrievalExternal}, nil)
	if err != nil {
		gray.Close()
		return gocv.Mat{}, nil, fmt.Errorf("could not extract baseline contours: %w", err)
	}

	return gray, baseline, nil
}

// openCapture opens a video file when the source exists on disk,
// otherwise treats the source as a camera device ID.
func openCapture(source string) (*gocv.VideoCapture, error) {
	var capture *gocv.VideoCapture
	var err error
	if _, statErr := os.Stat(source); statErr == nil {
		capture, err = gocv.VideoCaptureFile(source)
	} else {
		capture, err = gocv.OpenVideoCapture(source)
	}
	if err != nil {
		return nil, fmt.Errorf("could not open video source %q: %w", source, err)
	}
	return capture, nil
}

// Run drives the frame loop until end of stream, the quit key, or an
// unrecoverable failure.
func (a *app) Run() error {
	raw := gocv.NewMat()
	defer raw.Close()
	frame := gocv.NewMat()
	defer frame.Close()
	gray := gocv.NewMat()
	defer gray.Close()
	heatRender := gocv.NewMat()
	defer heatRender.Close()
	composed := gocv.NewMat()
	defer composed.Close()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	frameCounter := 0
	for {
		if ok := a.capture.Read(&raw); !ok || raw.Empty() {
			// end of stream is a clean exit
			break
		}

		gocv.Resize(raw, &frame, image.Pt(types.FrameWidth, types.FrameHeight), 0, 0, gocv.InterpolationLinear)
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

		f := pipeline.Frame{Index: frameCounter, Color: frame, Gray: gray}
		if err := a.pipe.Process(&f); err != nil {
			return err
		}

		a.draw(&frame, &f)

		res := a.alarms.Evaluate(f.Index, len(f.PeopleBoxes), f.Distances)
		if res.Count {
			ui.DrawCountMarker(&frame, a.display)
		}
		if res.Distance {
			ui.DrawDistanceMarker(&frame, a.display)
		}

		a.heat.Update(f.MotionBoxes)
		a.heat.Render(&heatRender)
		ui.Compose(frame, heatRender, &composed)

		if err := a.sink(composed, &f, frameCounter); err != nil {
			return err
		}

		if a.window != nil {
			a.window.IMShow(composed)
			if a.flags.ShowIntermediate {
				a.diffWindow.IMShow(a.motion.Diff())
				a.contourWindow.IMShow(a.motion.Canvas())
			}
			key := a.window.WaitKey(1)
			if key == 'q' || key == 27 {
				break
			}
		} else {
			select {
			case <-quit:
				log.Info("interrupted, shutting down")
				return nil
			default:
			}
		}

		frameCounter++
	}

	return nil
}

// draw stamps the per-frame overlays onto the frame scratch copy.
func (a *app) draw(frame *gocv.Mat, f *pipeline.Frame) {
	if a.flags.ShowHOGBoxes {
		ui.DrawBoxes(frame, f.PeopleBoxes, ui.Blue)
	}
	if a.flags.NoFilterBoxes {
		ui.DrawBoxes(frame, f.MotionBoxes, ui.Green)
	} else {
		ui.DrawBoxes(frame, f.FilteredBoxes, ui.Green)
	}

	ui.DrawDistanceLabels(frame, f.DistanceBoxes, a.display)
	ui.DrawPeopleCount(frame, len(f.PeopleBoxes), a.display)
	ui.DrawAverageDistance(frame, geometry.Average(f.Distances), a.display)
}

// sink feeds the composed surface to the optional recorder and stream.
func (a *app) sink(composed gocv.Mat, f *pipeline.Frame, frameCounter int) error {
	if a.flags.Record && a.recorder == nil {
		rec, err := recording.Start(composed, types.DefaultVideoConfig())
		if err != nil {
			return err
		}
		a.recorder = rec
	}
	if a.recorder != nil {
		if err := a.recorder.Write(composed); err != nil {
			log.Warnf("recording: could not write frame %d: %v", frameCounter, err)
		}
	}

	if a.server != nil {
		countAlarms, distanceAlarms := a.alarms.Totals()
		a.server.Publish(composed, frameCounter+1, len(f.PeopleBoxes), countAlarms, distanceAlarms)
	}
	return nil
}

// Close releases every resource the app holds, on any exit path.
func (a *app) Close() {
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			log.Warnf("%v", err)
		}
	}
	if a.server != nil {
		_ = a.server.Close()
	}
	if a.notifier != nil {
		a.notifier.Close()
	}
	for _, w := range []*gocv.Window{a.window, a.diffWindow, a.contourWindow} {
		if w != nil {
			_ = w.Close()
		}
	}
	if a.capture != nil {
		_ = a.capture.Close()
	}
	if a.heat != nil {
		_ = a.heat.Close()
	}
	if a.motion != nil {
		_ = a.motion.Close()
	}
	if a.people != nil {
		_ = a.people.Close()
	}
}
