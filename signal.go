package walkroute

import "math"

const (
	averageCarInterval = 15.0
	safeCrossingGap    = 5.0
	// DefaultCrosswalkWait is expected wait (seconds) at unsignalized crosswalk for a gap in traffic
	DefaultCrosswalkWait = (averageCarInterval - safeCrossingGap) / 2.0
)

// WaitStrategy estimates wait time (seconds) at signalized edge for given arrival time (seconds)
type WaitStrategy interface {
	Wait(edge *Edge, arrival float64) float64
}

// timingOf returns signal timing and red duration when edge is a usable signal
func timingOf(edge *Edge) (*SignalTiming, float64, bool) {
	if !edge.hasTiming() {
		return nil, 0, false
	}
	red := edge.Signal.Red()
	if red <= 0 {
		return nil, 0, false
	}
	return edge.Signal, red, true
}

// timeIntoCycle returns (t - phase) mod cycle normalized to [0, cycle)
func timeIntoCycle(t, phase, cycle float64) float64 {
	tic := math.Mod(t-phase, cycle)
	if tic < 0 {
		tic += cycle
	}
	return tic
}

// DeterministicWait simulates fixed cycle with the edge's phase offset
type DeterministicWait struct{}

func (DeterministicWait) Wait(edge *Edge, arrival float64) float64 {
	timing, _, ok := timingOf(edge)
	if !ok {
		return 0
	}
	tic := timeIntoCycle(arrival, timing.Phase, timing.Cycle)
	if tic > timing.Green {
		return timing.Cycle - tic
	}
	return 0
}

// ExpectedWait is average wait for uniformly random arrival: red^2 / (2 * cycle).
// Precomputed expected wait of the edge takes precedence
type ExpectedWait struct{}

func (ExpectedWait) Wait(edge *Edge, arrival float64) float64 {
	timing, red, ok := timingOf(edge)
	if !ok {
		return 0
	}
	if timing.HasExpectedWait {
		return timing.ExpectedWaitMinutes * 60.0
	}
	return (red * red) / (2 * timing.Cycle)
}

// WorstCaseWait waits for the rest of red when arriving on red and for the whole red otherwise
type WorstCaseWait struct{}

func (WorstCaseWait) Wait(edge *Edge, arrival float64) float64 {
	timing, red, ok := timingOf(edge)
	if !ok {
		return 0
	}
	tic := timeIntoCycle(arrival, timing.Phase, timing.Cycle)
	if tic > timing.Green {
		return timing.Cycle - tic
	}
	return red
}

// ReferencePhaseWait is deterministic wait where phase is measured relative to the phase of reference signal
type ReferencePhaseWait struct {
	ReferencePhase float64
}

func (strategy ReferencePhaseWait) Wait(edge *Edge, arrival float64) float64 {
	timing, _, ok := timingOf(edge)
	if !ok {
		return 0
	}
	phaseDiff := math.Abs(timing.Phase - strategy.ReferencePhase)
	tic := timeIntoCycle(arrival, phaseDiff, timing.Cycle)
	if tic > timing.Green {
		return timing.Cycle - tic
	}
	return 0
}

// NoWait ignores signals
type NoWait struct{}

func (NoWait) Wait(edge *Edge, arrival float64) float64 {
	return 0
}

// WaitPolicy selects wait strategy per edge
type WaitPolicy struct {
	// Default is used for every signalized edge without override. Nil means no wait
	Default   WaitStrategy
	Overrides map[EdgeID]WaitStrategy
	// CrosswalkSeconds is constant wait at unsignalized crosswalks
	CrosswalkSeconds float64
}

// NewWaitPolicy returns policy with given default strategy and default crosswalk wait
func NewWaitPolicy(strategy WaitStrategy) *WaitPolicy {
	return &WaitPolicy{
		Default:          strategy,
		Overrides:        make(map[EdgeID]WaitStrategy),
		CrosswalkSeconds: DefaultCrosswalkWait,
	}
}

// WithOverride returns copy of policy where given edge uses its own strategy
func (policy *WaitPolicy) WithOverride(id EdgeID, strategy WaitStrategy) *WaitPolicy {
	cp := &WaitPolicy{
		Default:          policy.Default,
		Overrides:        make(map[EdgeID]WaitStrategy, len(policy.Overrides)+1),
		CrosswalkSeconds: policy.CrosswalkSeconds,
	}
	for k, v := range policy.Overrides {
		cp.Overrides[k] = v
	}
	cp.Overrides[id] = strategy
	return cp
}

// Wait returns wait (seconds) at the edge for arrival time. Nil policy never waits
func (policy *WaitPolicy) Wait(edge *Edge, arrival float64) float64 {
	if policy == nil {
		return 0
	}
	if edge.IsSignal {
		strategy, ok := policy.Overrides[edge.ID]
		if !ok {
			strategy = policy.Default
		}
		if strategy == nil {
			return 0
		}
		return strategy.Wait(edge, arrival)
	}
	if edge.IsCrosswalk && policy.CrosswalkSeconds > 0 {
		return policy.CrosswalkSeconds
	}
	return 0
}
