// Package summary renders user-day accumulators into natural-language text.
package summary

import (
	"fmt"
	"strconv"
	"strings"

	"example.com/healthingest/internal/aggregate"
	"example.com/healthingest/internal/domain"
	"example.com/healthingest/internal/profile"
)

// Builder turns accumulators into summary text. Building is pure: given the
// same accumulator contents in the same append order the output is
// byte-identical across runs.
type Builder struct {
	profiles *profile.Store
}

// NewBuilder constructs a Builder over the loaded profile store.
func NewBuilder(profiles *profile.Store) *Builder {
	return &Builder{profiles: profiles}
}

// Build renders one summary. A key without a matching profile degrades to an
// unknown-user summary instead of failing.
func (b *Builder) Build(key domain.DayKey, acc *aggregate.Accumulator) domain.Summary {
	p, ok := b.profiles.Get(key.UserID)
	if !ok {
		return domain.Summary{
			UserID: key.UserID,
			Date:   key.Date,
			Text:   fmt.Sprintf("Unknown user %s on %s", key.UserID, key.Date),
		}
	}

	// Fixed category order: preamble, activities, workouts, nutrition,
	// sleep, then the heart-rate range sentence.
	parts := make([]string, 0, 1+len(acc.Activities)+len(acc.Workouts)+len(acc.Nutrition)+len(acc.Sleep)+1)
	parts = append(parts, fmt.Sprintf("%s (%s years old %s, %s cm, %s kg, %s fitness level)",
		p.Name, p.Age, p.Gender, p.Height, p.Weight, p.FitnessLevel))
	parts = append(parts, acc.Activities...)
	parts = append(parts, acc.Workouts...)
	parts = append(parts, acc.Nutrition...)
	parts = append(parts, acc.Sleep...)

	if len(acc.HeartRates) > 0 {
		lo, hi := acc.HeartRates[0], acc.HeartRates[0]
		for _, v := range acc.HeartRates[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		parts = append(parts, fmt.Sprintf("Heart rate ranged %s–%s bpm during the day.",
			formatSample(lo), formatSample(hi)))
	}

	return domain.Summary{
		UserID: key.UserID,
		Date:   key.Date,
		Text:   strings.Join(parts, " "),
	}
}

func formatSample(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
