// Package source reads per-category record files and decodes them into typed records.
package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"example.com/healthingest/internal/domain"
)

// Category names one kind of health record. The category name doubles as the
// source file stem inside the data directory.
type Category string

const (
	CategoryMeasurements Category = "measurements"
	CategoryActivities   Category = "activities"
	CategoryWorkouts     Category = "workouts"
	CategorySleep        Category = "sleep"
	CategoryNutrition    Category = "nutrition"
	CategoryHeartRate    Category = "heart_rate"
)

// ProcessingOrder lists categories in the fixed order they are consumed,
// smaller files first. The users category is excluded; it is handled by the
// profile store before processing begins.
var ProcessingOrder = []Category{
	CategoryMeasurements,
	CategoryActivities,
	CategoryWorkouts,
	CategorySleep,
	CategoryNutrition,
	CategoryHeartRate,
}

// FileName returns the source file name for the category.
func (c Category) FileName() string {
	return string(c) + ".json"
}

// Record is one decoded source record of any category.
type Record interface {
	Category() Category
	// DayKey derives the (user, date) aggregation key. It reports false when
	// the record carries no user ID and no usable date; such records must be
	// dropped by the caller.
	DayKey() (domain.DayKey, bool)
	// Validate checks that the category-specific fields rendered into
	// fragments are present. It does not re-check the key fields.
	Validate() error
}

// Meta carries the key fields common to every record category.
type Meta struct {
	UserID   string `json:"user_id"`
	Date     string `json:"date"`
	DateTime string `json:"date_time"`
}

// DayKey implements the key extraction rules: an explicit date field wins,
// otherwise the combined date-time field is truncated at its first space.
// It never fails with an error; malformed input degrades to "no key".
func (m Meta) DayKey() (domain.DayKey, bool) {
	if m.UserID == "" {
		return domain.DayKey{}, false
	}
	date := m.Date
	if date == "" {
		date = m.DateTime
		if i := strings.IndexByte(date, ' '); i >= 0 {
			date = date[:i]
		}
	}
	if date == "" {
		return domain.DayKey{}, false
	}
	return domain.DayKey{UserID: m.UserID, Date: date}, true
}

// MeasurementRecord carries no rendered fields; measurements are counted
// toward the flush threshold but produce no summary fragment.
type MeasurementRecord struct {
	Meta
}

func (r *MeasurementRecord) Category() Category { return CategoryMeasurements }
func (r *MeasurementRecord) Validate() error    { return nil }

// ActivityRecord is one logged outdoor or free-form activity.
type ActivityRecord struct {
	Meta
	ActivityType   string      `json:"activity_type"`
	Duration       json.Number `json:"duration"`
	CaloriesBurned json.Number `json:"calories_burned"`
	Distance       json.Number `json:"distance"`
	Steps          json.Number `json:"steps"`
	HeartRateAvg   json.Number `json:"heart_rate_avg"`
	HeartRateMax   json.Number `json:"heart_rate_max"`
	Weather        string      `json:"weather"`
}

func (r *ActivityRecord) Category() Category { return CategoryActivities }

func (r *ActivityRecord) Validate() error {
	return checkRequired(
		[2]string{"activity_type", r.ActivityType},
		[2]string{"duration", string(r.Duration)},
		[2]string{"calories_burned", string(r.CaloriesBurned)},
		[2]string{"distance", string(r.Distance)},
		[2]string{"steps", string(r.Steps)},
		[2]string{"heart_rate_avg", string(r.HeartRateAvg)},
		[2]string{"heart_rate_max", string(r.HeartRateMax)},
		[2]string{"weather", r.Weather},
	)
}

// WorkoutRecord is one structured gym workout.
type WorkoutRecord struct {
	Meta
	WorkoutType    string      `json:"workout_type"`
	Duration       json.Number `json:"duration"`
	Sets           json.Number `json:"sets"`
	Reps           json.Number `json:"reps"`
	CaloriesBurned json.Number `json:"calories_burned"`
}

func (r *WorkoutRecord) Category() Category { return CategoryWorkouts }

func (r *WorkoutRecord) Validate() error {
	return checkRequired(
		[2]string{"workout_type", r.WorkoutType},
		[2]string{"duration", string(r.Duration)},
		[2]string{"sets", string(r.Sets)},
		[2]string{"reps", string(r.Reps)},
		[2]string{"calories_burned", string(r.CaloriesBurned)},
	)
}

// NutritionRecord is one logged meal.
type NutritionRecord struct {
	Meta
	Calories json.Number `json:"calories"`
	MealType string      `json:"meal_type"`
	Protein  json.Number `json:"protein"`
	Carbs    json.Number `json:"carbs"`
	Fat      json.Number `json:"fat"`
}

func (r *NutritionRecord) Category() Category { return CategoryNutrition }

func (r *NutritionRecord) Validate() error {
	return checkRequired(
		[2]string{"calories", string(r.Calories)},
		[2]string{"meal_type", r.MealType},
		[2]string{"protein", string(r.Protein)},
		[2]string{"carbs", string(r.Carbs)},
		[2]string{"fat", string(r.Fat)},
	)
}

// SleepRecord is one night of sleep tracking.
type SleepRecord struct {
	Meta
	TotalSleep       json.Number `json:"total_sleep"`
	DeepSleep        json.Number `json:"deep_sleep"`
	RemSleep         json.Number `json:"rem_sleep"`
	SleepQuality     json.Number `json:"sleep_quality"`
	RestingHeartRate json.Number `json:"resting_heart_rate"`
}

func (r *SleepRecord) Category() Category { return CategorySleep }

func (r *SleepRecord) Validate() error {
	return checkRequired(
		[2]string{"total_sleep", string(r.TotalSleep)},
		[2]string{"deep_sleep", string(r.DeepSleep)},
		[2]string{"rem_sleep", string(r.RemSleep)},
		[2]string{"sleep_quality", string(r.SleepQuality)},
		[2]string{"resting_heart_rate", string(r.RestingHeartRate)},
	)
}

// HeartRateRecord is a single heart-rate sample.
type HeartRateRecord struct {
	Meta
	Value json.Number `json:"value"`
}

func (r *HeartRateRecord) Category() Category { return CategoryHeartRate }

func (r *HeartRateRecord) Validate() error {
	if r.Value == "" {
		return fmt.Errorf("missing field %q", "value")
	}
	if _, err := r.Value.Float64(); err != nil {
		return fmt.Errorf("field %q is not numeric: %w", "value", err)
	}
	return nil
}

// Sample returns the numeric heart-rate value. Validate guarantees it parses.
func (r *HeartRateRecord) Sample() float64 {
	v, _ := r.Value.Float64()
	return v
}

// newRecord allocates the typed record for a category.
func newRecord(c Category) Record {
	switch c {
	case CategoryMeasurements:
		return &MeasurementRecord{}
	case CategoryActivities:
		return &ActivityRecord{}
	case CategoryWorkouts:
		return &WorkoutRecord{}
	case CategorySleep:
		return &SleepRecord{}
	case CategoryNutrition:
		return &NutritionRecord{}
	case CategoryHeartRate:
		return &HeartRateRecord{}
	}
	return nil
}

func checkRequired(fields ...[2]string) error {
	for _, f := range fields {
		if f[1] == "" {
			return fmt.Errorf("missing field %q", f[0])
		}
	}
	return nil
}
