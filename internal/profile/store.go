// Package profile loads and serves immutable user reference data.
package profile

import (
	"encoding/json"
	"fmt"
	"os"

	"example.com/healthingest/internal/domain"
)

// FileName is the reference file expected inside the data directory.
const FileName = "users.json"

// Store holds user profiles keyed by user ID. It is populated once by Load
// and never mutated afterwards, so lookups need no locking.
type Store struct {
	users map[string]domain.UserProfile
}

// Load reads the profile reference file. Any failure here is fatal for the
// run: without profiles no summary can be attributed.
func Load(path string) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profile file: %w", err)
	}
	defer file.Close()

	var profiles []domain.UserProfile
	if err := json.NewDecoder(file).Decode(&profiles); err != nil {
		return nil, fmt.Errorf("parse profile file %s: %w", path, err)
	}

	users := make(map[string]domain.UserProfile, len(profiles))
	for i, p := range profiles {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("profile entry %d: %w", i, err)
		}
		users[p.UserID] = p
	}

	return &Store{users: users}, nil
}

// Get looks up a profile by user ID.
func (s *Store) Get(userID string) (domain.UserProfile, bool) {
	p, ok := s.users[userID]
	return p, ok
}

// Len reports the number of loaded profiles.
func (s *Store) Len() int {
	return len(s.users)
}

// validate checks field presence only. Field ranges are deliberately not
// checked; a negative age is accepted as-is.
func validate(p domain.UserProfile) error {
	switch {
	case p.UserID == "":
		return fmt.Errorf("missing user_id")
	case p.Name == "":
		return fmt.Errorf("missing name for user %s", p.UserID)
	case p.Age == "":
		return fmt.Errorf("missing age for user %s", p.UserID)
	case p.Gender == "":
		return fmt.Errorf("missing gender for user %s", p.UserID)
	case p.Height == "":
		return fmt.Errorf("missing height for user %s", p.UserID)
	case p.Weight == "":
		return fmt.Errorf("missing weight for user %s", p.UserID)
	case p.FitnessLevel == "":
		return fmt.Errorf("missing fitness_level for user %s", p.UserID)
	}
	return nil
}
