package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"jobmate/listings-service/internal/storage"
)

// SeedFunc supplies the baseline catalog on first run.
type SeedFunc func(ctx context.Context) ([]Job, error)

// JobStore owns the job list and the favorite set. Every mutation
// validates, persists, and only then updates the in-memory state, so a
// failed call leaves both memory and storage as they were.
type JobStore struct {
	kv  storage.Store
	log logrus.FieldLogger

	mu        sync.RWMutex
	jobs      []Job
	favorites []int
}

// NewJobStore returns an empty store backed by kv. Call Load before use.
func NewJobStore(kv storage.Store, log logrus.FieldLogger) *JobStore {
	return &JobStore{
		kv:  kv,
		log: log.WithField("component", "job-store"),
	}
}

// Load hydrates jobs and favorites from storage. A persisted list goes
// through the same normalization as a seed and is rewritten when that
// changed it. seed is only called when no valid job list has been
// persisted; its normalized result is persisted immediately. A seed error
// is returned wrapped and leaves the store with no jobs.
func (s *JobStore) Load(ctx context.Context, seed SeedFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var favorites []int
	if _, err := storage.GetJSON(ctx, s.kv, storage.KeyFavorites, &favorites); err != nil {
		if !isCorrupt(err) {
			return fmt.Errorf("load favorites: %w", err)
		}
		s.log.WithError(err).Warn("discarding unreadable favorites")
		favorites = nil
	}
	s.favorites = favorites

	var jobs []Job
	hit, err := storage.GetJSON(ctx, s.kv, storage.KeyJobs, &jobs)
	if err != nil {
		if !isCorrupt(err) {
			return fmt.Errorf("load jobs: %w", err)
		}
		s.log.WithError(err).Warn("discarding unreadable job list, reseeding")
		hit = false
	}
	if hit && len(jobs) > 0 {
		normalized, changed := s.normalize(jobs)
		if len(normalized) > 0 {
			if changed {
				if err := s.save(ctx, map[string]any{storage.KeyJobs: normalized}); err != nil {
					return err
				}
				s.log.WithField("jobs", len(normalized)).Warn("repaired persisted job list")
			}
			s.jobs = normalized
			s.log.WithFields(logrus.Fields{"jobs": len(normalized), "favorites": len(favorites)}).Info("hydrated from storage")
			return nil
		}
		s.log.Warn("persisted job list has no valid jobs, reseeding")
	}

	if seed == nil {
		s.jobs = nil
		return nil
	}
	seeded, err := seed(ctx)
	if err != nil {
		s.jobs = nil
		return fmt.Errorf("seed catalog: %w", err)
	}

	normalized, _ := s.normalize(seeded)
	if err := s.save(ctx, map[string]any{storage.KeyJobs: normalized}); err != nil {
		return err
	}
	s.jobs = normalized
	s.log.WithField("jobs", len(normalized)).Info("seeded catalog")
	return nil
}

// Create validates f, assigns the next id and appends the job.
func (s *JobStore) Create(ctx context.Context, f JobFields) (Job, error) {
	if err := f.Validate(); err != nil {
		return Job{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job := f.toJob(s.nextID())
	next := append(s.jobs[:len(s.jobs):len(s.jobs)], job)
	if err := s.save(ctx, map[string]any{storage.KeyJobs: next}); err != nil {
		return Job{}, err
	}
	s.jobs = next

	s.log.WithField("jobId", job.ID).Debug("job created")
	return job.clone(), nil
}

// Update replaces the fields of job id in place. The id never changes.
func (s *JobStore) Update(ctx context.Context, id int, f JobFields) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Job{}, &NotFoundError{ID: id}
	}
	if err := f.Validate(); err != nil {
		return Job{}, err
	}

	job := f.toJob(id)
	next := append([]Job(nil), s.jobs...)
	next[idx] = job
	if err := s.save(ctx, map[string]any{storage.KeyJobs: next}); err != nil {
		return Job{}, err
	}
	s.jobs = next

	s.log.WithField("jobId", id).Debug("job updated")
	return job.clone(), nil
}

// Delete removes job id and drops it from the favorite set. Both keys are
// written in one SetMulti.
func (s *JobStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return &NotFoundError{ID: id}
	}

	nextJobs := make([]Job, 0, len(s.jobs)-1)
	nextJobs = append(nextJobs, s.jobs[:idx]...)
	nextJobs = append(nextJobs, s.jobs[idx+1:]...)
	nextFavs := without(s.favorites, id)

	err := s.save(ctx, map[string]any{
		storage.KeyJobs:      nextJobs,
		storage.KeyFavorites: nextFavs,
	})
	if err != nil {
		return err
	}
	s.jobs = nextJobs
	s.favorites = nextFavs

	s.log.WithField("jobId", id).Debug("job deleted")
	return nil
}

// ToggleFavorite flips membership of id in the favorite set and returns the
// new state. Unknown ids are toggled too; they are skipped by FavoriteJobs.
func (s *JobStore) ToggleFavorite(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggle(ctx, id)
}

// ToggleJobFavorite is ToggleFavorite restricted to ids that name a job.
// The existence check and the toggle happen under one lock, so a concurrent
// Delete cannot leave the id dangling.
func (s *JobStore) ToggleJobFavorite(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return false, &NotFoundError{ID: id}
	}
	return s.toggle(ctx, id)
}

// toggle flips id in the favorite set. Callers hold mu.
func (s *JobStore) toggle(ctx context.Context, id int) (bool, error) {
	var next []int
	favorite := !contains(s.favorites, id)
	if favorite {
		next = append(s.favorites[:len(s.favorites):len(s.favorites)], id)
	} else {
		next = without(s.favorites, id)
	}

	if err := s.save(ctx, map[string]any{storage.KeyFavorites: next}); err != nil {
		return !favorite, err
	}
	s.favorites = next
	return favorite, nil
}

// PruneFavorites drops favorite ids that no longer name a job and reports
// how many were removed.
func (s *JobStore) PruneFavorites(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]int, 0, len(s.favorites))
	for _, id := range s.favorites {
		if s.indexOf(id) >= 0 {
			next = append(next, id)
		}
	}
	removed := len(s.favorites) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := s.save(ctx, map[string]any{storage.KeyFavorites: next}); err != nil {
		return 0, err
	}
	s.favorites = next
	return removed, nil
}

// List returns a snapshot of every job in insertion order.
func (s *JobStore) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Job, len(s.jobs))
	for i, j := range s.jobs {
		out[i] = j.clone()
	}
	return out
}

// Get returns job id.
func (s *JobStore) Get(id int) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Job{}, &NotFoundError{ID: id}
	}
	return s.jobs[idx].clone(), nil
}

// Favorites returns the favorite ids in the order they were added.
func (s *JobStore) Favorites() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int{}, s.favorites...)
}

// IsFavorite reports whether id is in the favorite set.
func (s *JobStore) IsFavorite(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return contains(s.favorites, id)
}

// FavoriteJobs resolves the favorite set against the job list, in favorite
// order. Ids without a job are skipped.
func (s *JobStore) FavoriteJobs() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Job, 0, len(s.favorites))
	for _, id := range s.favorites {
		if idx := s.indexOf(id); idx >= 0 {
			out = append(out, s.jobs[idx].clone())
		}
	}
	return out
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// save encodes every entry and writes them in a single call.
func (s *JobStore) save(ctx context.Context, entries map[string]any) error {
	raw := make(map[string]string, len(entries))
	for key, v := range entries {
		switch typed := v.(type) {
		case []Job:
			if typed == nil {
				v = []Job{}
			}
		case []int:
			if typed == nil {
				v = []int{}
			}
		}
		enc, err := storage.Encode(key, v)
		if err != nil {
			return err
		}
		raw[key] = enc
	}

	var err error
	if len(raw) == 1 {
		for k, v := range raw {
			err = s.kv.Set(ctx, k, v)
		}
	} else {
		err = s.kv.SetMulti(ctx, raw)
	}
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}

// normalize drops records that violate the record invariants and
// reassigns missing or duplicate ids after the highest valid one. changed
// reports whether anything was dropped or renumbered.
func (s *JobStore) normalize(in []Job) (out []Job, changed bool) {
	out = make([]Job, 0, len(in))
	seen := make(map[int]bool, len(in))
	var pending []int
	maxID := 0

	for _, j := range in {
		if strings.TrimSpace(j.Company) == "" || strings.TrimSpace(j.Position) == "" {
			s.log.WithField("jobId", j.ID).Warn("dropping job without company or position")
			continue
		}
		if j.ID <= 0 || seen[j.ID] {
			pending = append(pending, len(out))
		} else {
			seen[j.ID] = true
			if j.ID > maxID {
				maxID = j.ID
			}
		}
		out = append(out, j.clone())
	}
	for _, idx := range pending {
		maxID++
		s.log.WithFields(logrus.Fields{"from": out[idx].ID, "to": maxID}).Warn("reassigning job id")
		out[idx].ID = maxID
	}
	return out, len(out) != len(in) || len(pending) > 0
}

func (s *JobStore) nextID() int {
	maxID := 0
	for _, j := range s.jobs {
		if j.ID > maxID {
			maxID = j.ID
		}
	}
	return maxID + 1
}

func (s *JobStore) indexOf(id int) int {
	for i, j := range s.jobs {
		if j.ID == id {
			return i
		}
	}
	return -1
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []int, id int) []int {
	out := make([]int, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func isCorrupt(err error) bool {
	var ce *storage.CorruptError
	return errors.As(err, &ce)
}
