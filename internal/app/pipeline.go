package app

import (
	"log"
	"time"

	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
)

// runPipeline is the main detection loop that processes frames from the
// camera. Frames are handled strictly one at a time on this goroutine, so a
// new frame is never classified while the previous one is in flight and the
// smoothing history has a single writer.
//
// Pipeline logic:
// 1. Start in idle mode (idleFPS=5)
// 2. On motion detected, switch to active mode (activeFPS=15)
// 3. Run hand detection and classification
// 4. Publish the displayed gesture to listeners
// 5. After 2s without motion, reset the classifier and drop back to idle
func (a *App) runPipeline(stopCh <-chan struct{}) {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// Skip processing if detection is disabled.
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Motion detection.
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				if !activeMode {
					activeMode = true
					a.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)

					// A stale gesture must not survive into the next
					// detection session.
					a.classifier.Reset()
					a.setCurrent(classify.LabelNoHand)
					log.Println("Switched to idle mode")
				}
			}

			if !activeMode || a.Detector() == nil {
				frame.Close()
				continue
			}

			// Step 2: Hand detection. Frame dimensions are captured before
			// the Mat is released; the classifier needs them to normalize.
			width := frame.Cols()
			height := frame.Rows()

			hands, err := a.Detector().Detect(frame)
			frame.Close()

			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				continue
			}

			// Step 3: Classification and smoothing.
			gesture := a.classifier.ClassifyFrame(handsToPoints(hands), width, height)

			// Step 4: Publish.
			a.setCurrent(gesture)
		}
	}
}

// handsToPoints strips detector metadata down to the landmark sequences the
// classifier consumes. Malformed hands pass through; the classifier labels
// them Unknown.
func handsToPoints(hands []detector.HandLandmarks) [][]detector.Point3D {
	if len(hands) == 0 {
		return nil
	}

	points := make([][]detector.Point3D, len(hands))
	for i := range hands {
		points[i] = hands[i].Points
	}
	return points
}
