package presence

import (
	"math/rand"
	"sync"
	"time"
)

const (
	minTypingDelay = 3000 * time.Millisecond
	maxTypingDelay = 15000 * time.Millisecond

	// 300 characters per minute.
	typingCharsPerSecond = 300.0 / 60.0

	defaultResponseDelay = time.Second

	transitionLead = 2 * time.Second
	respondingLead = 1500 * time.Millisecond
)

type delayRange struct {
	min, max time.Duration
}

var responseDelays = map[State]delayRange{
	Online:  {1500 * time.Millisecond, 2500 * time.Millisecond},
	Away:    {4 * time.Second, 7 * time.Second},
	Offline: {8 * time.Second, 13 * time.Second},
}

// Step is one timed presence change: wait Wait, then switch to State.
type Step struct {
	Wait  time.Duration
	State State
}

// Simulator produces the delays that make a coach feel human. The random
// source is injectable so tests can pin the output.
type Simulator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSimulator(src rand.Source) *Simulator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Simulator{rnd: rand.New(src)}
}

// float64 is guarded because lifecycle goroutines share one Simulator.
func (s *Simulator) float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// ResponseDelay is the pause before asking the backend, drawn uniformly from
// the range for the prior state. Unknown states wait exactly one second.
func (s *Simulator) ResponseDelay(prior State) time.Duration {
	r, ok := responseDelays[prior]
	if !ok {
		return defaultResponseDelay
	}
	span := float64(r.max - r.min)
	return r.min + time.Duration(s.float64()*span)
}

// RandomState picks one of the concrete states uniformly.
func (s *Simulator) RandomState() State {
	states := []State{Online, Away, Offline}
	idx := int(s.float64() * float64(len(states)))
	if idx >= len(states) {
		idx = len(states) - 1
	}
	return states[idx]
}

// TypingDelay simulates reading and typing the reply at 300 characters per
// minute, clamped to [3s, 15s].
func TypingDelay(reply string) time.Duration {
	ms := float64(len(reply)) / typingCharsPerSecond * 1000
	d := time.Duration(ms) * time.Millisecond
	if d < minTypingDelay {
		return minTypingDelay
	}
	if d > maxTypingDelay {
		return maxTypingDelay
	}
	return d
}

// TransitionPlan is the sequence of presence changes between the user's
// message and the request. An online coach starts responding after 2s; any
// other coach first comes online, then starts responding.
func TransitionPlan(prior State) []Step {
	if prior == Online {
		return []Step{{Wait: transitionLead, State: Responding}}
	}
	return []Step{
		{Wait: transitionLead, State: Online},
		{Wait: respondingLead, State: Responding},
	}
}
