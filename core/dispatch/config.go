package dispatch

// Config holds the tunable scoring weights. The ordering and signs are part
// of the contract (closer is better, experience saturates, conflicts cost);
// the magnitudes are policy.
type Config struct {
	DistanceWeight     float64 `json:"distance_weight"`
	CertificationBonus float64 `json:"certification_bonus"`
	ExperienceWeight   float64 `json:"experience_weight"`
	ExperienceCapYears float64 `json:"experience_cap_years"`
	ConflictPenalty    float64 `json:"conflict_penalty"`
}

// SetDefaults fills zero-valued weights with the defaults.
func (c *Config) SetDefaults() {
	if c.DistanceWeight == 0 {
		c.DistanceWeight = 50
	}
	if c.CertificationBonus == 0 {
		c.CertificationBonus = 10
	}
	if c.ExperienceWeight == 0 {
		c.ExperienceWeight = 2
	}
	if c.ExperienceCapYears == 0 {
		c.ExperienceCapYears = 10
	}
	if c.ConflictPenalty == 0 {
		c.ConflictPenalty = 100
	}
}
