package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/store"
	"gocv.io/x/gocv"
)

func newTestApp(t *testing.T) (*App, *detector.MockDetector) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	a := New(Config{
		Store:        s,
		CameraID:     0,
		MotionThresh: 0.05,
		Classifier:   classify.DefaultConfig(),
	})

	mock := detector.NewMockDetector()
	a.SetDetector(mock)

	return a, mock
}

func TestApp_New_Defaults(t *testing.T) {
	a, _ := newTestApp(t)

	if !a.IsEnabled() {
		t.Error("detection should start enabled")
	}
	if got := a.CurrentGesture(); got != classify.LabelNoHand {
		t.Errorf("initial gesture = %q, want %q", got, classify.LabelNoHand)
	}
	if a.Classifier() == nil {
		t.Fatal("classifier should be initialized")
	}
}

func TestApp_SetEnabled(t *testing.T) {
	a, _ := newTestApp(t)

	a.SetEnabled(true)
	if !a.IsEnabled() {
		t.Error("expected enabled after SetEnabled(true)")
	}

	a.SetEnabled(false)
	if a.IsEnabled() {
		t.Error("expected disabled after SetEnabled(false)")
	}
}

func TestApp_LoadRules(t *testing.T) {
	a, _ := newTestApp(t)

	rules := a.config.Store.Rules()
	rules.Create(&store.Rule{ID: "r1", Label: "Call Me", Pattern: "10001", Position: 1, Enabled: true})
	rules.Create(&store.Rule{ID: "r2", Label: "Broken", Pattern: "zz", Position: 2, Enabled: true})
	rules.Create(&store.Rule{ID: "r3", Label: "Disabled", Pattern: "01010", Position: 3, Enabled: false})

	if err := a.LoadRules(); err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}

	// The valid enabled rule classifies; the malformed and disabled ones
	// were dropped.
	hand := detector.SynthHand(true, false, false, false, true)
	got := a.Classifier().ClassifyFrame(
		[][]detector.Point3D{hand.Points},
		detector.MockFrameWidth, detector.MockFrameHeight,
	)
	if got != "Call Me" {
		t.Errorf("classification with loaded rules = %q, want %q", got, "Call Me")
	}
}

func TestApp_GestureListeners(t *testing.T) {
	a, _ := newTestApp(t)

	var seen []string
	a.Subscribe(func(g string) {
		seen = append(seen, g)
	})

	a.setCurrent(classify.LabelOpenHand)
	a.setCurrent(classify.LabelOpenHand) // unchanged, no notification
	a.setCurrent(classify.LabelFist)

	if a.CurrentGesture() != classify.LabelFist {
		t.Errorf("CurrentGesture() = %q, want %q", a.CurrentGesture(), classify.LabelFist)
	}

	want := []string{classify.LabelOpenHand, classify.LabelFist}
	if len(seen) != len(want) {
		t.Fatalf("got %d notifications %v, want %d", len(seen), seen, len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("notification %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestApp_DetectAndClassifyFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	a, mock := newTestApp(t)
	mock.SetHands([]detector.HandLandmarks{detector.OpenHandLandmarks()})

	frame := gocv.NewMatWithSize(detector.MockFrameHeight, detector.MockFrameWidth, gocv.MatTypeCV8UC3)
	defer frame.Close()

	hands, err := a.Detector().Detect(&frame)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	gesture := a.Classifier().ClassifyFrame(handsToPoints(hands), frame.Cols(), frame.Rows())
	if gesture != classify.LabelOpenHand {
		t.Errorf("gesture = %q, want %q", gesture, classify.LabelOpenHand)
	}
}

func TestHandsToPoints(t *testing.T) {
	if got := handsToPoints(nil); got != nil {
		t.Errorf("handsToPoints(nil) = %v, want nil", got)
	}

	hands := []detector.HandLandmarks{
		detector.OpenHandLandmarks(),
		detector.MalformedLandmarks(3),
	}

	points := handsToPoints(hands)
	if len(points) != 2 {
		t.Fatalf("got %d hands, want 2", len(points))
	}
	if len(points[0]) != detector.NumLandmarks {
		t.Errorf("hand 0 has %d points, want %d", len(points[0]), detector.NumLandmarks)
	}
	if len(points[1]) != 3 {
		t.Errorf("hand 1 has %d points, want 3", len(points[1]))
	}
}

func TestApp_StartStop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	a, mock := newTestApp(t)
	mock.SetHands([]detector.HandLandmarks{detector.OpenHandLandmarks()})

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()
	a.camera = capture.NewMockCamera([]*gocv.Mat{&frame}, true)

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !a.camera.IsOpen() {
		t.Fatal("camera should be open after Start()")
	}

	// Let the pipeline take a few iterations so Stop has an in-flight
	// loop to wait out.
	time.Sleep(50 * time.Millisecond)

	// Stop must wait for the pipeline goroutine before it releases the
	// camera and motion detector, and must not deadlock doing so.
	done := make(chan struct{})
	go func() {
		a.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() did not return; pipeline wait deadlocked")
	}

	if a.camera.IsOpen() {
		t.Error("camera should be closed after Stop()")
	}

	// A second Stop on an already-stopped app is a no-op.
	a.Stop()
}
