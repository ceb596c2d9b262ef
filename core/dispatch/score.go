package dispatch

import (
	"context"
	"sort"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/geo"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/logger"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
)

// Candidate is one ranked driver with its score and annotations.
type Candidate struct {
	Driver   model.Driver `json:"driver"`
	Score    float64      `json:"score"`
	Reasons  []Reason     `json:"reasons,omitempty"`
	Conflict bool         `json:"conflict"`
}

// Scorer ranks eligible drivers by a weighted additive score. Scoring is a
// soft ranking among drivers that already passed the eligibility gates.
type Scorer struct {
	cfg       Config
	distance  geo.DistanceProvider
	conflicts *ConflictDetector
	log       logger.Logger
}

// NewScorer builds a scorer with the given weights. A nil provider degrades
// the distance signal to neutral for every driver.
func NewScorer(cfg Config, distance geo.DistanceProvider, conflicts *ConflictDetector, log logger.Logger) *Scorer {
	cfg.SetDefaults()
	if log == nil {
		log = logger.Nop{}
	}
	return &Scorer{cfg: cfg, distance: distance, conflicts: conflicts, log: log}
}

// Score computes the weighted score for one driver against one load.
func (s *Scorer) Score(ctx context.Context, load model.Load, driver model.Driver) Candidate {
	c := Candidate{Driver: driver}

	// Distance signal: inverse in miles. A driver without a known position
	// gets a neutral zero bonus, never a failure.
	if driver.Location != nil && s.distance != nil {
		leg, err := s.distance.Distance(ctx, *driver.Location, load.PickupAddress)
		if err != nil {
			s.log.Warnf("distance lookup for driver %s failed: %v", driver.ID, err)
			c.Reasons = append(c.Reasons, reasonf(ReasonDistance, "distance to pickup unknown, treated as neutral"))
			distanceLookupFailures.Inc()
		} else {
			bonus := s.cfg.DistanceWeight / (1 + leg.Miles)
			c.Score += bonus
			c.Reasons = append(c.Reasons, reasonf(ReasonDistance, "%.1f miles from pickup (+%.1f)", leg.Miles, bonus))
		}
	}

	if load.Hazard != model.HazardNone && driver.HazmatCertified {
		c.Score += s.cfg.CertificationBonus
		c.Reasons = append(c.Reasons, reasonf(ReasonCertification, "holds %s certification (+%.1f)", load.Hazard, s.cfg.CertificationBonus))
	}

	// Experience saturates at the cap so a 20-year driver does not dominate a
	// 6-year driver by an unbounded margin.
	years := driver.YearsExperience
	if years > s.cfg.ExperienceCapYears {
		years = s.cfg.ExperienceCapYears
	}
	if years > 0 {
		bonus := years * s.cfg.ExperienceWeight
		c.Score += bonus
		c.Reasons = append(c.Reasons, reasonf(ReasonExperience, "%.0f years of experience (+%.1f)", driver.YearsExperience, bonus))
	}

	if s.conflicts != nil {
		verdict, err := s.conflicts.HasConflict(ctx, driver, load)
		if err != nil {
			s.log.Warnf("conflict check for driver %s failed: %v", driver.ID, err)
		} else if verdict.Conflict {
			c.Conflict = true
			c.Score -= s.cfg.ConflictPenalty
			for _, d := range verdict.Details {
				c.Reasons = append(c.Reasons, reasonf(ReasonConflict, "%s (-%.0f)", d, s.cfg.ConflictPenalty))
			}
		}
	}

	return c
}

// Rank scores every driver and sorts descending. Ties are broken by the
// earlier CreatedAt, then by ID, so equal scores rank deterministically.
func (s *Scorer) Rank(ctx context.Context, load model.Load, drivers []model.Driver) []Candidate {
	ranked := make([]Candidate, 0, len(drivers))
	for _, d := range drivers {
		ranked = append(ranked, s.Score(ctx, load, d))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].Driver.CreatedAt.Equal(ranked[j].Driver.CreatedAt) {
			return ranked[i].Driver.CreatedAt.Before(ranked[j].Driver.CreatedAt)
		}
		return ranked[i].Driver.ID < ranked[j].Driver.ID
	})
	return ranked
}
