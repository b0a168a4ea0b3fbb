package board_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"jobmate/listings-service/internal/board"
	"jobmate/listings-service/internal/catalog"
	"jobmate/listings-service/internal/events"
	"jobmate/listings-service/internal/filter"
	"jobmate/listings-service/internal/listing"
	"jobmate/listings-service/internal/profile"
	"jobmate/listings-service/internal/storage"
	"jobmate/listings-service/internal/validation"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func catalogJobs() []listing.Job {
	return []listing.Job{
		{ID: 1, Company: "Photosnap", Position: "Senior Frontend Developer", Role: "Frontend", Level: "Senior",
			Contract: "Full Time", Location: "USA Only", Description: "d", Skills: []string{"HTML", "CSS", "JavaScript"}},
		{ID: 2, Company: "Manage", Position: "Fullstack Developer", Role: "Fullstack", Level: "Midweight",
			Contract: "Part Time", Location: "Remote", Description: "d", Skills: []string{"Python", "React"}},
		{ID: 3, Company: "Account", Position: "Junior Frontend Developer", Role: "Frontend", Level: "Junior",
			Contract: "Part Time", Location: "USA Only", Description: "d", Skills: []string{"JavaScript", "React", "Sass"}},
	}
}

func newBoard(t *testing.T, pub events.Publisher) *board.Board {
	t.Helper()
	kv := storage.NewMemory()
	log := quietLogger()
	b := board.New(listing.NewJobStore(kv, log), profile.NewStore(kv, log), pub, log)
	seed := func(context.Context) ([]listing.Job, error) { return catalogJobs(), nil }
	if err := b.Start(context.Background(), seed); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return b
}

func ids(jobs []listing.Job) []int {
	out := make([]int, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBoard_FilterStateDrivesView(t *testing.T) {
	b := newBoard(t, nil)

	v := b.View()
	if v.Listing.MatchCount != 3 || v.Listing.TotalCount != 3 {
		t.Fatalf("initial counts = %d/%d", v.Listing.MatchCount, v.Listing.TotalCount)
	}

	v = b.AddTag("Frontend")
	if got := ids(v.Listing.Jobs); !sameInts(got, []int{1, 3}) {
		t.Errorf("tag Frontend = %v, want [1 3]", got)
	}

	v = b.AddTag("react")
	if got := ids(v.Listing.Jobs); !sameInts(got, []int{3}) {
		t.Errorf("tags Frontend+react = %v, want [3]", got)
	}

	v = b.RemoveTag("Frontend")
	if got := ids(v.Listing.Jobs); !sameInts(got, []int{2, 3}) {
		t.Errorf("tag react = %v, want [2 3]", got)
	}

	v = b.Search("manage")
	if got := ids(v.Listing.Jobs); !sameInts(got, []int{2}) {
		t.Errorf("search manage + react = %v, want [2]", got)
	}
	if v.Filters.SearchText != "manage" {
		t.Errorf("Filters.SearchText = %q", v.Filters.SearchText)
	}

	v = b.ClearFilters()
	if v.Listing.MatchCount != 3 || len(v.Filters.Tags) != 0 || v.Filters.SearchText != "" {
		t.Errorf("after clear: %+v", v.Filters)
	}
}

func TestBoard_ProfileSkillsNarrowListing(t *testing.T) {
	b := newBoard(t, nil)
	ctx := context.Background()

	if _, err := b.AddSkill(ctx, "Sass"); err != nil {
		t.Fatal(err)
	}
	if got := b.View().Listing.MatchCount; got != 3 {
		t.Errorf("profile skills off: %d matches, want 3", got)
	}

	v := b.UseProfileSkills(true)
	if got := ids(v.Listing.Jobs); !sameInts(got, []int{3}) {
		t.Errorf("profile skills on = %v, want [3]", got)
	}
	if !v.Filters.UseProfileSkills {
		t.Error("Filters.UseProfileSkills not reported")
	}
}

func TestBoard_RendersAfterEveryChange(t *testing.T) {
	b := newBoard(t, nil)
	ctx := context.Background()

	var views []board.View
	b.Subscribe(board.RendererFunc(func(v board.View) { views = append(views, v) }))

	b.Search("x")
	if _, err := b.ToggleFavorite(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if err := b.SaveProfile(ctx, "Ada", "Engineer"); err != nil {
		t.Fatal(err)
	}

	if len(views) != 3 {
		t.Fatalf("rendered %d views, want 3", len(views))
	}
	last := views[2]
	if !sameInts(last.FavoriteIDs, []int{2}) || last.FavoritesCount != 1 {
		t.Errorf("favorites in view = %v (%d)", last.FavoriteIDs, last.FavoritesCount)
	}
	if last.Profile.Name != "Ada" {
		t.Errorf("profile in view = %+v", last.Profile)
	}
}

func TestBoard_RejectedMutationDoesNotRender(t *testing.T) {
	pub := &recordingPublisher{}
	b := newBoard(t, pub)

	rendered := 0
	b.Subscribe(board.RendererFunc(func(board.View) { rendered++ }))

	_, err := b.CreateJob(context.Background(), listing.JobFields{Company: "Only company"})
	var ve *validation.Error
	if !errors.As(err, &ve) {
		t.Fatalf("expected *validation.Error, got %v", err)
	}
	if rendered != 0 || len(pub.types()) != 0 {
		t.Errorf("rendered=%d published=%v after rejected create", rendered, pub.types())
	}
}

func TestBoard_PublishesEvents(t *testing.T) {
	pub := &recordingPublisher{}
	b := newBoard(t, pub)
	ctx := context.Background()

	job, err := b.CreateJob(ctx, listing.JobFields{
		Company: "Initech", Position: "SRE", Contract: "Full Time", Location: "Austin", Description: "Ops",
	})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if _, err := b.UpdateJob(ctx, job.ID, listing.JobFields{
		Company: "Initech", Position: "Senior SRE", Contract: "Full Time", Location: "Austin", Description: "Ops",
	}); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	if _, err := b.ToggleFavorite(ctx, job.ID); err != nil {
		t.Fatal(err)
	}
	if err := b.DeleteJob(ctx, job.ID); err != nil {
		t.Fatal(err)
	}
	if added, _ := b.AddSkill(ctx, "Go"); !added {
		t.Fatal("AddSkill should report added")
	}
	if added, _ := b.AddSkill(ctx, "go"); added {
		t.Error("duplicate AddSkill should report not added")
	}

	want := []string{
		events.JobCreated, events.JobUpdated, events.FavoriteToggled,
		events.JobDeleted, events.ProfileUpdated,
	}
	got := pub.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}

	pub.mu.Lock()
	fav := pub.events[2].Favorite
	pub.mu.Unlock()
	if fav == nil || !*fav {
		t.Errorf("FavoriteToggled payload = %v, want true", fav)
	}
}

func TestBoard_PublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("redis down")}
	b := newBoard(t, pub)

	fav, err := b.ToggleFavorite(context.Background(), 1)
	if err != nil || !fav {
		t.Errorf("ToggleFavorite = (%v, %v), want (true, nil)", fav, err)
	}
}

func TestBoard_ToggleUnknownJob(t *testing.T) {
	pub := &recordingPublisher{}
	b := newBoard(t, pub)

	if _, err := b.ToggleFavorite(context.Background(), 99); !errors.Is(err, listing.ErrNotFound) {
		t.Errorf("ToggleFavorite(99) err = %v, want ErrNotFound", err)
	}
	if len(b.View().FavoriteIDs) != 0 || len(pub.types()) != 0 {
		t.Error("unknown id must not reach the favorite set or publish")
	}
}

func TestBoard_DeleteClearsFavorite(t *testing.T) {
	b := newBoard(t, nil)
	ctx := context.Background()

	if _, err := b.ToggleFavorite(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if err := b.DeleteJob(ctx, 1); err != nil {
		t.Fatal(err)
	}
	v := b.View()
	if len(v.FavoriteIDs) != 0 || v.FavoritesCount != 0 {
		t.Errorf("favorites after delete = %v", v.FavoriteIDs)
	}
	if _, err := b.Job(1); !errors.Is(err, listing.ErrNotFound) {
		t.Errorf("Job(1) after delete: %v", err)
	}
}

func TestBoard_StartRecordsTransportError(t *testing.T) {
	kv := storage.NewMemory()
	log := quietLogger()
	b := board.New(listing.NewJobStore(kv, log), profile.NewStore(kv, log), nil, log)

	seed := func(context.Context) ([]listing.Job, error) {
		return nil, &catalog.TransportError{Source: "http://catalog", Err: errors.New("connection refused")}
	}
	err := b.Start(context.Background(), seed)
	var te *catalog.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Start error = %v, want *TransportError", err)
	}

	v := b.View()
	if v.BootstrapError == "" {
		t.Error("BootstrapError should be set")
	}
	if v.Listing.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0", v.Listing.TotalCount)
	}

	// The board stays usable.
	if _, err := b.CreateJob(context.Background(), listing.JobFields{
		Company: "A", Position: "B", Contract: "C", Location: "D", Description: "E",
	}); err != nil {
		t.Errorf("CreateJob after failed bootstrap: %v", err)
	}
}

func TestBoard_QueryIgnoresBoardState(t *testing.T) {
	b := newBoard(t, nil)
	b.Search("photosnap")

	res := b.Query(filter.State{SearchText: "react"})
	if got := ids(res.Jobs); !sameInts(got, []int{2, 3}) {
		t.Errorf("Query = %v, want [2 3]", got)
	}
	if got := b.View().Listing.MatchCount; got != 1 {
		t.Errorf("board state changed by Query: %d matches", got)
	}
}
