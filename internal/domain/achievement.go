package domain

// Achievement is one static catalog entry. The catalog is immutable, injected
// configuration loaded once at startup; only the ids end up in UserProgress.
type Achievement struct {
	ID           string             `json:"id"`
	Names        map[string]string  `json:"names"`        // per locale
	Descriptions map[string]string  `json:"descriptions"` // per locale
	Icon         string             `json:"icon"`
	XPReward     int                `json:"xpReward"`
	Criteria     map[string]float64 `json:"criteria"` // AND semantics
}
