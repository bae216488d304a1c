package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeProfiles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeProfiles(t, `[
		{"user_id":"u1","name":"Alice","age":30,"gender":"female","height":165,"weight":60,"fitness_level":"intermediate"},
		{"user_id":"u2","name":"Bob","age":45,"gender":"male","height":180.5,"weight":82,"fitness_level":"beginner"}
	]`)

	store, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	alice, ok := store.Get("u1")
	require.True(t, ok)
	require.Equal(t, "Alice", alice.Name)
	require.Equal(t, "30", alice.Age.String())
	require.Equal(t, "165", alice.Height.String())

	_, ok = store.Get("nobody")
	require.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	require.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeProfiles(t, `{"user_id":"u1"}`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingField(t *testing.T) {
	path := writeProfiles(t, `[{"user_id":"u1","name":"Alice","age":30,"gender":"female","height":165,"weight":60}]`)

	_, err := Load(path)
	require.ErrorContains(t, err, "fitness_level")
}

func TestLoadMissingAge(t *testing.T) {
	path := writeProfiles(t, `[{"user_id":"u1","name":"Alice","gender":"female","height":165,"weight":60,"fitness_level":"intermediate"}]`)

	_, err := Load(path)
	require.ErrorContains(t, err, "age")
}

func TestLoadAcceptsOutOfRangeValues(t *testing.T) {
	path := writeProfiles(t, `[{"user_id":"u1","name":"Alice","age":-3,"gender":"female","height":165,"weight":60,"fitness_level":"intermediate"}]`)

	store, err := Load(path)
	require.NoError(t, err)

	alice, ok := store.Get("u1")
	require.True(t, ok)
	require.Equal(t, "-3", alice.Age.String())
}
