package keyboard

import "go.uber.org/atomic"

// ChangeSignal carries "the system layout changed" from listeners to the
// frame loop. Raises between two frames collapse into one.
type ChangeSignal struct {
	pending atomic.Bool
}

func (s *ChangeSignal) Raise() {
	s.pending.Store(true)
}

// Take reports whether a change was raised since the last call and clears it.
func (s *ChangeSignal) Take() bool {
	return s.pending.Swap(false)
}
