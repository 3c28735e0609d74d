package classify

// DefaultSmoothingWindow is the number of recent frames the smoother votes
// over. Five frames trades roughly a third of a second of latency at 15 FPS
// for stability against single-frame landmark jitter.
const DefaultSmoothingWindow = 5

// Smoother stabilizes noisy per-frame labels by keeping a bounded FIFO of
// recent labels and emitting the most frequent one. It is the only state
// carried across frames; one Smoother belongs to one detection session and
// must not be shared between concurrent writers.
type Smoother struct {
	capacity int
	history  []string
}

// NewSmoother creates a Smoother with the given window size. Sizes below 1
// fall back to DefaultSmoothingWindow.
func NewSmoother(capacity int) *Smoother {
	if capacity < 1 {
		capacity = DefaultSmoothingWindow
	}
	return &Smoother{
		capacity: capacity,
		history:  make([]string, 0, capacity),
	}
}

// Observe appends a frame's label, evicts the oldest entry once the window
// is full, and returns the current majority-vote label.
func (s *Smoother) Observe(label string) string {
	if len(s.history) >= s.capacity {
		copy(s.history, s.history[1:])
		s.history = s.history[:len(s.history)-1]
	}
	s.history = append(s.history, label)

	return s.vote()
}

// Reset clears the history. Called when a frame reports zero hands so a
// stale gesture cannot leak into the next detection session.
func (s *Smoother) Reset() {
	s.history = s.history[:0]
}

// Len returns the number of labels currently held.
func (s *Smoother) Len() int {
	return len(s.history)
}

// vote returns the label with the highest occurrence count in the history.
// Ties go to the label that entered the history earliest.
func (s *Smoother) vote() string {
	if len(s.history) == 0 {
		return LabelNoHand
	}

	counts := make(map[string]int, len(s.history))
	var order []string
	for _, label := range s.history {
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}

	best := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[best] {
			best = label
		}
	}

	return best
}
