package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PhaseName identifies one of the five macro-stages of the training journey.
type PhaseName string

const (
	PhaseFoundation       PhaseName = "foundation"
	PhaseEnduranceBuild   PhaseName = "endurance_building"
	PhaseSpeedStrength    PhaseName = "speed_strength"
	PhaseAdvancedTraining PhaseName = "advanced_training"
	PhaseElitePerformance PhaseName = "elite_performance"
)

// TrainingPhase is read-only reference data: an ordered stage with its own
// level ceiling and advancement gate. Seeded once, never mutated by the engine.
type TrainingPhase struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         PhaseName          `bson:"name" json:"name"`
	Title        string             `bson:"title" json:"title"`
	PhaseOrder   int                `bson:"phaseOrder" json:"phaseOrder"` // total order, no skipping
	MaxLevel     int                `bson:"maxLevel" json:"maxLevel"`
	ExitCriteria map[string]float64 `bson:"exitCriteria" json:"exitCriteria"`
	Active       bool               `bson:"active" json:"active"`
}
