// Package app wires the capture, detection, and classification pieces of
// Mudra into a running pipeline and owns the current displayed gesture.
package app

import (
	"log"
	"sync"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active detection.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	CameraID     int
	MotionThresh float64
	Classifier   classify.Config
}

// App runs the detection pipeline: camera frames are gated by motion
// detection, handed to the pose detector, and classified into the single
// displayed gesture that listeners observe.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	classifier *classify.Classifier

	enabled   bool
	current   string
	listeners []func(gesture string)
	mu        sync.RWMutex
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		motion:     capture.NewMotionDetector(motionThreshold),
		classifier: classify.New(config.Classifier),
		current:    classify.LabelNoHand,
		enabled:    true,
	}

	// Try MediaPipe first, fall back to mock detector.
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables gesture detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Classifier returns the gesture classifier.
func (a *App) Classifier() *classify.Classifier {
	return a.classifier
}

// LoadRules loads user-defined classification rules from the database into
// the classifier. Rules with malformed patterns are skipped with a warning.
func (a *App) LoadRules() error {
	if a.config.Store == nil {
		return nil
	}

	stored, err := a.config.Store.Rules().ListEnabled()
	if err != nil {
		return err
	}

	rules := make([]classify.Rule, 0, len(stored))
	for _, r := range stored {
		if err := classify.ValidatePattern(r.Pattern); err != nil {
			log.Printf("Skipping rule %s: %v", r.ID, err)
			continue
		}
		rules = append(rules, classify.Rule{Pattern: r.Pattern, Label: r.Label})
	}

	a.classifier.SetUserRules(rules)
	log.Printf("Loaded %d user rules from database", len(rules))
	return nil
}

// CurrentGesture returns the most recently displayed gesture.
func (a *App) CurrentGesture() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Subscribe registers a listener invoked whenever the displayed gesture
// changes. Listeners are called from the pipeline goroutine and must not
// block.
func (a *App) Subscribe(fn func(gesture string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// setCurrent records the frame's displayed gesture and notifies listeners
// when it changed.
func (a *App) setCurrent(gesture string) {
	a.mu.Lock()
	changed := gesture != a.current
	a.current = gesture
	listeners := a.listeners
	a.mu.Unlock()

	if !changed {
		return
	}

	log.Printf("Gesture: %s", gesture)
	for _, fn := range listeners {
		fn(gesture)
	}
}

// Start begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running.
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	a.wg.Add(1)
	go func(stopCh <-chan struct{}) {
		defer a.wg.Done()
		a.runPipeline(stopCh)
	}(a.stopCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline and releases resources. It waits for
// the pipeline goroutine to exit before closing the camera and motion
// detector, so no in-flight iteration can touch released gocv state. The
// wait happens outside the mutex because the pipeline takes it on every
// iteration.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh := a.stopCh
	a.stopCh = nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		a.wg.Wait()
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}
