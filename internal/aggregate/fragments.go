package aggregate

import (
	"fmt"

	"example.com/healthingest/internal/source"
)

// Fragment rendering inserts field values verbatim as they appeared in the
// source JSON; nothing is converted or recomputed.

func activityFragment(r *source.ActivityRecord) string {
	return fmt.Sprintf("did %s for %s minutes in %s weather, burning %s calories, covering %s km with %s steps, avg HR %s bpm (max %s).",
		r.ActivityType, r.Duration, r.Weather, r.CaloriesBurned, r.Distance, r.Steps, r.HeartRateAvg, r.HeartRateMax)
}

func workoutFragment(r *source.WorkoutRecord) string {
	return fmt.Sprintf("Completed a %s workout for %s minutes, %s sets of %s reps, burned %s calories.",
		r.WorkoutType, r.Duration, r.Sets, r.Reps, r.CaloriesBurned)
}

func nutritionFragment(r *source.NutritionRecord) string {
	return fmt.Sprintf("Ate %s calories at %s (%sg protein, %sg carbs, %sg fat).",
		r.Calories, r.MealType, r.Protein, r.Carbs, r.Fat)
}

func sleepFragment(r *source.SleepRecord) string {
	return fmt.Sprintf("Slept %s hours (deep %sh, REM %sh), quality %s, resting HR %s bpm.",
		r.TotalSleep, r.DeepSleep, r.RemSleep, r.SleepQuality, r.RestingHeartRate)
}
