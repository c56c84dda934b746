package loss

import "sync"

// Session is the append-only record of every optimizer-visible loss
// evaluation: the scalar losses in order, the parameter vector behind each,
// and the most recently evaluated point. It is owned by the training loop;
// the loss function appends exactly once per completed evaluation.
type Session struct {
	mu     sync.Mutex
	losses []float64
	params [][]float64
}

func NewSession() *Session {
	return &Session{}
}

// Append records one completed evaluation. The parameter vector is copied so
// the optimizer may reuse its buffers.
func (s *Session) Append(value float64, x []float64) {
	cp := make([]float64, len(x))
	copy(cp, x)

	s.mu.Lock()
	s.losses = append(s.losses, value)
	s.params = append(s.params, cp)
	s.mu.Unlock()
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.losses)
}

// Losses returns a copy of the loss trajectory.
func (s *Session) Losses() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.losses))
	copy(out, s.losses)
	return out
}

// Last returns the most recently evaluated point and its loss. This is the
// last point the optimizer visited, not necessarily the lowest.
func (s *Session) Last() ([]float64, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.losses) == 0 {
		return nil, 0, false
	}
	n := len(s.losses) - 1
	x := make([]float64, len(s.params[n]))
	copy(x, s.params[n])
	return x, s.losses[n], true
}

// Best returns the lowest-loss point recorded so far.
func (s *Session) Best() ([]float64, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.losses) == 0 {
		return nil, 0, false
	}
	best := 0
	for i, v := range s.losses {
		if v < s.losses[best] {
			best = i
		}
	}
	x := make([]float64, len(s.params[best]))
	copy(x, s.params[best])
	return x, s.losses[best], true
}
