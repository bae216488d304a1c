package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCategoryFile(t *testing.T, dir string, category Category, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, category.FileName()), []byte(content), 0o644))
}

func drain(t *testing.T, s *Stream) []Record {
	t.Helper()
	var records []Record
	for {
		rec, ok := s.Next()
		if !ok {
			break
		}
		records = append(records, rec)
	}
	return records
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(t.TempDir(), CategoryActivities)
	require.Error(t, err)
	require.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestStreamReadsRecordsInOrder(t *testing.T) {
	dir := t.TempDir()
	writeCategoryFile(t, dir, CategoryHeartRate, `[
		{"user_id":"u1","date_time":"2024-01-15 08:00:00","value":65},
		{"user_id":"u1","date_time":"2024-01-15 18:30:00","value":140}
	]`)

	stream, err := Open(dir, CategoryHeartRate)
	require.NoError(t, err)
	defer stream.Close()

	records := drain(t, stream)
	require.NoError(t, stream.Err())
	require.Len(t, records, 2)
	require.Zero(t, stream.Skipped())

	first, ok := records[0].(*HeartRateRecord)
	require.True(t, ok)
	require.Equal(t, 65.0, first.Sample())
	second, ok := records[1].(*HeartRateRecord)
	require.True(t, ok)
	require.Equal(t, 140.0, second.Sample())
}

func TestStreamSkipsMalformedRecords(t *testing.T) {
	dir := t.TempDir()
	writeCategoryFile(t, dir, CategoryWorkouts, `[
		{"user_id":"u1","date":"2024-01-15","workout_type":"strength","duration":45,"sets":3,"reps":12,"calories_burned":300},
		42,
		{"user_id":"u1","date":"2024-01-15","workout_type":"strength","duration":"lots","sets":3,"reps":12,"calories_burned":300},
		{"user_id":"u2","date":"2024-01-16","duration":45,"sets":3,"reps":12,"calories_burned":300},
		{"user_id":"u2","date":"2024-01-16","workout_type":"hiit","duration":20,"sets":5,"reps":10,"calories_burned":180}
	]`)

	stream, err := Open(dir, CategoryWorkouts)
	require.NoError(t, err)
	defer stream.Close()

	records := drain(t, stream)
	require.NoError(t, stream.Err())
	require.Len(t, records, 2)
	require.Equal(t, 3, stream.Skipped())

	last, ok := records[1].(*WorkoutRecord)
	require.True(t, ok)
	require.Equal(t, "hiit", last.WorkoutType)
}

func TestStreamRejectsNonArrayTopLevel(t *testing.T) {
	dir := t.TempDir()
	writeCategoryFile(t, dir, CategorySleep, `{"user_id":"u1"}`)

	stream, err := Open(dir, CategorySleep)
	require.NoError(t, err)
	defer stream.Close()

	_, ok := stream.Next()
	require.False(t, ok)
	require.ErrorContains(t, stream.Err(), "not an array")
}

func TestStreamReportsTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	writeCategoryFile(t, dir, CategoryNutrition, `[
		{"user_id":"u1","date":"2024-01-15","calories":600,"meal_type":"lunch","protein":30,"carbs":70,"fat":20},`)

	stream, err := Open(dir, CategoryNutrition)
	require.NoError(t, err)
	defer stream.Close()

	records := drain(t, stream)
	require.Len(t, records, 1)
	require.Error(t, stream.Err())
}
