// Package profile owns the user's profile: name, position and skill tags.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"jobmate/listings-service/internal/storage"
	"jobmate/listings-service/internal/validation"
)

// Profile is the persisted user profile. Skills are unique under
// case-insensitive comparison and keep the casing they were added with.
type Profile struct {
	Name     string   `json:"name"`
	Position string   `json:"position"`
	Skills   []string `json:"skills"`
}

func (p Profile) clone() Profile {
	p.Skills = append([]string{}, p.Skills...)
	return p
}

// Store holds the profile in memory and writes it through on every change.
type Store struct {
	kv  storage.Store
	log logrus.FieldLogger

	mu      sync.RWMutex
	profile Profile
}

// NewStore returns a Store with the empty default profile.
func NewStore(kv storage.Store, log logrus.FieldLogger) *Store {
	return &Store{
		kv:      kv,
		log:     log.WithField("component", "profile-store"),
		profile: Profile{Skills: []string{}},
	}
}

// Load reads the persisted profile, falling back to the empty default when
// nothing (or nothing readable) is stored.
func (s *Store) Load(ctx context.Context) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p Profile
	hit, err := storage.GetJSON(ctx, s.kv, storage.KeyProfile, &p)
	if err != nil {
		var ce *storage.CorruptError
		if !errors.As(err, &ce) {
			return Profile{}, fmt.Errorf("load profile: %w", err)
		}
		s.log.WithError(err).Warn("discarding unreadable profile")
		hit = false
	}
	if !hit {
		p = Profile{}
	}
	p.Skills = dedupe(p.Skills)
	s.profile = p
	return p.clone(), nil
}

// Profile returns a snapshot of the current profile.
func (s *Store) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.clone()
}

// Skills returns the current skill tags.
func (s *Store) Skills() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.profile.Skills...)
}

// Save overwrites name and position. Skills are untouched.
func (s *Store) Save(ctx context.Context, name, position string) error {
	errs := validation.Required(map[string]string{"name": name, "position": position})
	if err := validation.New(errs); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.profile.clone()
	next.Name = strings.TrimSpace(name)
	next.Position = strings.TrimSpace(position)
	return s.commit(ctx, next)
}

// AddSkill appends text unless it is blank or already present ignoring case.
// It reports whether the skill was added.
func (s *Store) AddSkill(ctx context.Context, text string) (bool, error) {
	skill := strings.TrimSpace(text)
	if skill == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.profile.Skills, skill) >= 0 {
		return false, nil
	}
	next := s.profile.clone()
	next.Skills = append(next.Skills, skill)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveSkill drops text, compared ignoring case. Removing an absent skill
// is a no-op.
func (s *Store) RemoveSkill(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.profile.Skills, strings.TrimSpace(text))
	if idx < 0 {
		return nil
	}
	next := s.profile.clone()
	next.Skills = append(next.Skills[:idx], next.Skills[idx+1:]...)
	return s.commit(ctx, next)
}

// commit persists next and then makes it current. Callers hold mu.
func (s *Store) commit(ctx context.Context, next Profile) error {
	if err := storage.SetJSON(ctx, s.kv, storage.KeyProfile, next); err != nil {
		return fmt.Errorf("persist profile: %w", err)
	}
	s.profile = next
	return nil
}

func indexOf(skills []string, skill string) int {
	for i, s := range skills {
		if strings.EqualFold(s, skill) {
			return i
		}
	}
	return -1
}

// dedupe trims skills and keeps the first spelling of each.
func dedupe(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s != "" && indexOf(out, s) < 0 {
			out = append(out, s)
		}
	}
	return out
}
