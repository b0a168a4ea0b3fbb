// Package board is the adapter between user intents (search, tag clicks,
// form submits, favorite toggles) and the stores. It keeps the transient
// filter state, and after every change it hands a read-only View to the
// registered renderers and publishes a change event.
//
// Board never renders anything itself; HTTP, gRPC or any other front end
// reads Views and calls Board methods.
package board

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"jobmate/listings-service/internal/catalog"
	"jobmate/listings-service/internal/events"
	"jobmate/listings-service/internal/filter"
	"jobmate/listings-service/internal/listing"
	"jobmate/listings-service/internal/profile"
)

// View is everything a renderer needs after a change.
type View struct {
	Listing        filter.Result   `json:"listing"`
	Filters        filter.State    `json:"filters"`
	FavoriteIDs    []int           `json:"favoriteIds"`
	Favorites      []listing.Job   `json:"favorites"`
	FavoritesCount int             `json:"favoritesCount"`
	Profile        profile.Profile `json:"profile"`
	BootstrapError string          `json:"bootstrapError,omitempty"`
}

// Renderer receives a View after every mutation or filter change.
type Renderer interface {
	Render(View)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(View)

func (f RendererFunc) Render(v View) { f(v) }

// Board ties the job store, the profile store and the filter state together.
type Board struct {
	jobs     *listing.JobStore
	profiles *profile.Store
	pub      events.Publisher
	log      logrus.FieldLogger

	mu           sync.RWMutex
	state        filter.State
	bootstrapErr string
	renderers    []Renderer
}

// New wires a Board. pub may be nil, in which case nothing is published.
func New(jobs *listing.JobStore, profiles *profile.Store, pub events.Publisher, log logrus.FieldLogger) *Board {
	return &Board{
		jobs:     jobs,
		profiles: profiles,
		pub:      pub,
		log:      log.WithField("component", "board"),
	}
}

// Subscribe registers r for every subsequent View.
func (b *Board) Subscribe(r Renderer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.renderers = append(b.renderers, r)
}

// Start loads the profile and the job store. A catalog transport failure is
// recorded in the View and returned; the board stays usable with an empty
// listing. Storage failures are returned as-is.
func (b *Board) Start(ctx context.Context, seed listing.SeedFunc) error {
	if _, err := b.profiles.Load(ctx); err != nil {
		return err
	}
	err := b.jobs.Load(ctx, seed)

	var te *catalog.TransportError
	if errors.As(err, &te) {
		b.mu.Lock()
		b.bootstrapErr = "Error loading job data."
		b.mu.Unlock()
		b.log.WithError(err).Error("initial catalog fetch failed")
	}
	b.render()
	return err
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// View returns the current snapshot.
func (b *Board) View() View {
	b.mu.RLock()
	st := b.state.Clone()
	bootstrapErr := b.bootstrapErr
	b.mu.RUnlock()

	favs := b.jobs.FavoriteJobs()
	return View{
		Listing:        filter.Apply(b.jobs.List(), st, b.profiles.Skills()),
		Filters:        st,
		FavoriteIDs:    b.jobs.Favorites(),
		Favorites:      favs,
		FavoritesCount: len(favs),
		Profile:        b.profiles.Profile(),
		BootstrapError: bootstrapErr,
	}
}

// Query filters the catalog with st instead of the board's own state.
func (b *Board) Query(st filter.State) filter.Result {
	return filter.Apply(b.jobs.List(), st, b.profiles.Skills())
}

// Job returns one job.
func (b *Board) Job(id int) (listing.Job, error) {
	return b.jobs.Get(id)
}

// FavoriteJobs returns the favorited jobs in favorite order.
func (b *Board) FavoriteJobs() []listing.Job {
	return b.jobs.FavoriteJobs()
}

// Profile returns the current profile.
func (b *Board) Profile() profile.Profile {
	return b.profiles.Profile()
}

// ─── Filter state ────────────────────────────────────────────────────────────

// Search sets the free-text search.
func (b *Board) Search(text string) View {
	return b.updateState(func(st *filter.State) { st.SearchText = text })
}

// AddTag selects a tag clicked on a job card.
func (b *Board) AddTag(tag string) View {
	return b.updateState(func(st *filter.State) { st.AddTag(tag) })
}

// RemoveTag deselects a tag.
func (b *Board) RemoveTag(tag string) View {
	return b.updateState(func(st *filter.State) { st.RemoveTag(tag) })
}

// UseProfileSkills toggles whether profile skills narrow the listing.
func (b *Board) UseProfileSkills(on bool) View {
	return b.updateState(func(st *filter.State) { st.UseProfileSkills = on })
}

// ClearFilters resets search text and selected tags.
func (b *Board) ClearFilters() View {
	return b.updateState(func(st *filter.State) { st.Clear() })
}

func (b *Board) updateState(fn func(*filter.State)) View {
	b.mu.Lock()
	fn(&b.state)
	b.mu.Unlock()
	return b.render()
}

// ─── Mutations ───────────────────────────────────────────────────────────────

// CreateJob adds a job.
func (b *Board) CreateJob(ctx context.Context, f listing.JobFields) (listing.Job, error) {
	job, err := b.jobs.Create(ctx, f)
	if err != nil {
		return listing.Job{}, err
	}
	b.changed(ctx, events.New(events.JobCreated, job.ID))
	return job, nil
}

// UpdateJob replaces the fields of job id.
func (b *Board) UpdateJob(ctx context.Context, id int, f listing.JobFields) (listing.Job, error) {
	job, err := b.jobs.Update(ctx, id, f)
	if err != nil {
		return listing.Job{}, err
	}
	b.changed(ctx, events.New(events.JobUpdated, id))
	return job, nil
}

// DeleteJob removes job id and its favorite mark.
func (b *Board) DeleteJob(ctx context.Context, id int) error {
	if err := b.jobs.Delete(ctx, id); err != nil {
		return err
	}
	b.changed(ctx, events.New(events.JobDeleted, id))
	return nil
}

// ToggleFavorite flips the favorite mark of job id. Unlike the store, the
// board refuses ids that name no job.
func (b *Board) ToggleFavorite(ctx context.Context, id int) (bool, error) {
	fav, err := b.jobs.ToggleJobFavorite(ctx, id)
	if err != nil {
		return false, err
	}
	e := events.New(events.FavoriteToggled, id)
	e.Favorite = &fav
	b.changed(ctx, e)
	return fav, nil
}

// SaveProfile sets name and position.
func (b *Board) SaveProfile(ctx context.Context, name, position string) error {
	if err := b.profiles.Save(ctx, name, position); err != nil {
		return err
	}
	b.changed(ctx, events.New(events.ProfileUpdated, 0))
	return nil
}

// AddSkill adds a profile skill and reports whether it was new.
func (b *Board) AddSkill(ctx context.Context, skill string) (bool, error) {
	added, err := b.profiles.AddSkill(ctx, skill)
	if err != nil || !added {
		return added, err
	}
	b.changed(ctx, events.New(events.ProfileUpdated, 0))
	return true, nil
}

// RemoveSkill drops a profile skill.
func (b *Board) RemoveSkill(ctx context.Context, skill string) error {
	if err := b.profiles.RemoveSkill(ctx, skill); err != nil {
		return err
	}
	b.changed(ctx, events.New(events.ProfileUpdated, 0))
	return nil
}

// PruneFavorites drops favorite ids that no longer name a job.
func (b *Board) PruneFavorites(ctx context.Context) (int, error) {
	removed, err := b.jobs.PruneFavorites(ctx)
	if err != nil || removed == 0 {
		return removed, err
	}
	b.render()
	return removed, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// changed re-renders and publishes e. Publish failures are logged only.
func (b *Board) changed(ctx context.Context, e events.Event) {
	b.render()
	if b.pub == nil {
		return
	}
	if err := b.pub.Publish(ctx, e); err != nil {
		b.log.WithError(err).WithField("type", e.Type).Warn("publish event failed")
	}
}

func (b *Board) render() View {
	v := b.View()

	b.mu.RLock()
	renderers := append([]Renderer(nil), b.renderers...)
	b.mu.RUnlock()

	for _, r := range renderers {
		r.Render(v)
	}
	return v
}
