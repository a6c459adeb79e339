package walkroute

import "github.com/pkg/errors"

var (
	// ErrNoGraph is returned when no edges were loaded at all
	ErrNoGraph = errors.New("no graph: zero edges loaded")
	// ErrUnknownEdge is returned for records referencing edge which is not in the graph
	ErrUnknownEdge = errors.New("edge is not present in the graph")
	// ErrUnknownNode is returned when start or goal node is not in the graph
	ErrUnknownNode = errors.New("node is not present in the graph")
	// ErrSameEndpoints is returned when start and goal are the same node
	ErrSameEndpoints = errors.New("start and goal are the same node")
	// ErrBrokenWalk is returned when consecutive edges of a route do not share an endpoint
	ErrBrokenWalk = errors.New("edges do not form a contiguous walk")
	// ErrUntraversable is returned when route contains edge with infinite travel time
	ErrUntraversable = errors.New("edge is untraversable")
	// ErrTooManySignals is returned when designated signals exceed configured maximum
	ErrTooManySignals = errors.New("too many designated signals")
	// ErrBadWalkingSpeed is returned for non-positive walking speed
	ErrBadWalkingSpeed = errors.New("walking speed must be positive")
)
