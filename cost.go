package walkroute

import (
	"math"

	"github.com/pkg/errors"
)

const (
	// DefaultWalkingSpeed is base pedestrian speed (meters per minute)
	DefaultWalkingSpeed = 80.0
	// DefaultGradientCoefficient scales how much incline slows walking
	DefaultGradientCoefficient = 0.5
)

// CostModel converts physical attributes of edge into travel time
type CostModel struct {
	// WalkingSpeed is meters per minute
	WalkingSpeed        float64
	GradientCoefficient float64
}

// NewCostModel returns cost model with default gradient coefficient
func NewCostModel(walkingSpeed float64) CostModel {
	return CostModel{
		WalkingSpeed:        walkingSpeed,
		GradientCoefficient: DefaultGradientCoefficient,
	}
}

// Validate checks if model is usable
func (model CostModel) Validate() error {
	if !(model.WalkingSpeed > 0) || math.IsInf(model.WalkingSpeed, 0) {
		return errors.Wrapf(ErrBadWalkingSpeed, "Got %f", model.WalkingSpeed)
	}
	return nil
}

// EffectiveSpeed returns walking speed on the edge (meters per minute)
func (model CostModel) EffectiveSpeed(edge *Edge) float64 {
	return model.WalkingSpeed * (1 - model.GradientCoefficient*edge.Gradient)
}

// TravelSeconds returns time to walk the edge. Returns +Inf when incline makes the edge impassable
func (model CostModel) TravelSeconds(edge *Edge) float64 {
	speed := model.EffectiveSpeed(edge)
	if speed <= 0 || math.IsNaN(speed) {
		return math.Inf(1)
	}
	return (edge.DistanceMeters / speed) * 60.0
}
