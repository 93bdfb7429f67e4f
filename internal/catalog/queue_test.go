package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moviematch/matchroom/internal/model"
	"github.com/moviematch/matchroom/internal/repository"
)

type fakeRooms struct {
	rooms map[string]*model.Room
}

func (f *fakeRooms) GetByCode(_ context.Context, code string) (*model.Room, error) {
	r, ok := f.rooms[code]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

type fakeSwipes struct {
	swiped map[model.UserSlot]map[int64]struct{}
}

func (f *fakeSwipes) SwipedTitleIDs(_ context.Context, _ uint64, slot model.UserSlot) (map[int64]struct{}, error) {
	out := map[int64]struct{}{}
	for id := range f.swiped[slot] {
		out[id] = struct{}{}
	}
	return out, nil
}

type fakeSettings struct {
	settings map[string]model.DeckSettings
	watched  map[string]map[int64]struct{}
}

func (f *fakeSettings) Get(_ context.Context, userID string) (model.DeckSettings, error) {
	if s, ok := f.settings[userID]; ok {
		return s, nil
	}
	return model.DefaultDeckSettings(userID), nil
}

func (f *fakeSettings) WatchedTitleIDs(_ context.Context, userID string) (map[int64]struct{}, error) {
	out := map[int64]struct{}{}
	for id := range f.watched[userID] {
		out[id] = struct{}{}
	}
	return out, nil
}

func liveRoom(code string, seed int64) *model.Room {
	return &model.Room{
		ID:        1,
		Code:      code,
		Status:    model.RoomActive,
		PoolSeed:  seed,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
}

func newTestBuilder(room *model.Room, swipes *fakeSwipes, settings *fakeSettings) *QueueBuilder {
	if swipes == nil {
		swipes = &fakeSwipes{swiped: map[model.UserSlot]map[int64]struct{}{}}
	}
	if settings == nil {
		settings = &fakeSettings{}
	}
	rooms := &fakeRooms{rooms: map[string]*model.Room{room.Code: room}}
	return NewQueueBuilder(&fakeProvider{maxPages: 100}, rooms, swipes, settings, nil)
}

func TestQueueBuild_PagesConcatenate(t *testing.T) {
	ctx := context.Background()
	q := newTestBuilder(liveRoom("AAAAAA", 17), nil, nil)

	page1, err := q.Build(ctx, "AAAAAA", model.SlotA, "", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	page2, err := q.Build(ctx, "AAAAAA", model.SlotA, "", 20, 20)
	if err != nil {
		t.Fatal(err)
	}
	whole, err := q.Build(ctx, "AAAAAA", model.SlotA, "", 40, 0)
	if err != nil {
		t.Fatal(err)
	}

	if len(page1) != 20 || len(page2) != 20 || len(whole) != 40 {
		t.Fatalf("unexpected lengths: %d, %d, %d", len(page1), len(page2), len(whole))
	}
	joined := append(ids(page1), ids(page2)...)
	if !sameOrder(joined, ids(whole)) {
		t.Error("consecutive pages do not concatenate into the full slice")
	}
}

func TestQueueBuild_StableAcrossReads(t *testing.T) {
	ctx := context.Background()
	q := newTestBuilder(liveRoom("AAAAAA", 23), nil, nil)

	first, err := q.Build(ctx, "AAAAAA", model.SlotB, "", 20, 10)
	if err != nil {
		t.Fatal(err)
	}
	second, err := q.Build(ctx, "AAAAAA", model.SlotB, "", 20, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !sameOrder(ids(first), ids(second)) {
		t.Error("same offset returned different titles with no intervening swipes")
	}
}

func TestQueueBuild_ExcludesSwiped(t *testing.T) {
	ctx := context.Background()
	room := liveRoom("AAAAAA", 31)
	q := newTestBuilder(room, nil, nil)

	base, err := q.Build(ctx, "AAAAAA", model.SlotA, "", 20, 0)
	if err != nil {
		t.Fatal(err)
	}

	// The second builder has the first three titles already swiped.
	swiped := map[int64]struct{}{
		base[0].ID: {}, base[1].ID: {}, base[2].ID: {},
	}
	q2 := newTestBuilder(room, &fakeSwipes{swiped: map[model.UserSlot]map[int64]struct{}{model.SlotA: swiped}}, nil)

	got, err := q2.Build(ctx, "AAAAAA", model.SlotA, "", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, title := range got {
		if _, ok := swiped[title.ID]; ok {
			t.Fatalf("swiped title %d reappeared in the queue", title.ID)
		}
	}
	// The remaining titles shift forward rather than leaving holes.
	if got[0].ID != base[3].ID {
		t.Errorf("queue head = %d, want %d", got[0].ID, base[3].ID)
	}
}

func TestQueueBuild_MinRatingFilter(t *testing.T) {
	ctx := context.Background()
	room := liveRoom("AAAAAA", 47)
	three := 3
	settings := &fakeSettings{settings: map[string]model.DeckSettings{
		"user-1": {UserID: "user-1", ShowWatched: true, MinRating: &three, MediaType: model.MediaAll},
	}}
	q := newTestBuilder(room, nil, settings)

	got, err := q.Build(ctx, "AAAAAA", model.SlotA, "user-1", 30, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Fatal("rating filter returned an empty queue")
	}
	for _, title := range got {
		if title.RatingTier < 3 {
			t.Fatalf("title %d has tier %d, filter requires 3", title.ID, title.RatingTier)
		}
	}
}

func TestQueueBuild_WatchedFilter(t *testing.T) {
	ctx := context.Background()
	room := liveRoom("AAAAAA", 53)

	base, err := newTestBuilder(room, nil, nil).Build(ctx, "AAAAAA", model.SlotA, "", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	watchedID := base[0].ID

	hidden := &fakeSettings{
		settings: map[string]model.DeckSettings{
			"user-1": {UserID: "user-1", ShowWatched: false, MediaType: model.MediaAll},
		},
		watched: map[string]map[int64]struct{}{"user-1": {watchedID: {}}},
	}
	got, err := newTestBuilder(room, nil, hidden).Build(ctx, "AAAAAA", model.SlotA, "user-1", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, title := range got {
		if title.ID == watchedID {
			t.Fatal("watched title shown despite show_watched=false")
		}
	}

	// With show_watched=true the watched set is ignored entirely.
	shown := &fakeSettings{
		settings: map[string]model.DeckSettings{
			"user-1": {UserID: "user-1", ShowWatched: true, MediaType: model.MediaAll},
		},
		watched: map[string]map[int64]struct{}{"user-1": {watchedID: {}}},
	}
	got, err = newTestBuilder(room, nil, shown).Build(ctx, "AAAAAA", model.SlotA, "user-1", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].ID != watchedID {
		t.Error("show_watched=true should leave the queue unfiltered")
	}
}

func TestQueueBuild_SlotsDivergeOnSettings(t *testing.T) {
	ctx := context.Background()
	room := liveRoom("AAAAAA", 61)
	settings := &fakeSettings{settings: map[string]model.DeckSettings{
		"user-b": {UserID: "user-b", ShowWatched: true, MediaType: model.MediaTV},
	}}
	q := newTestBuilder(room, nil, settings)

	a, err := q.Build(ctx, "AAAAAA", model.SlotA, "", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := q.Build(ctx, "AAAAAA", model.SlotB, "user-b", 20, 0)
	if err != nil {
		t.Fatal(err)
	}

	// Slot A sees the mixed pool, slot B only tv titles, from the same seed.
	if a[0].MediaType != model.MediaMovie {
		t.Errorf("default view should start on a movie block, got %s", a[0].MediaType)
	}
	for _, title := range b {
		if title.MediaType != model.MediaTV {
			t.Fatalf("tv-only view returned a %s title", title.MediaType)
		}
	}
}

// unevenProvider exhausts one media long before the other, like a real
// catalog where the tv corpus is far smaller than the movie corpus.
type unevenProvider struct {
	movies *fakeProvider
	tvMax  int
}

func (u *unevenProvider) FetchPage(ctx context.Context, media model.MediaType, page int) ([]model.Title, error) {
	if media == model.MediaTV && page > u.tvMax {
		return nil, nil
	}
	return u.movies.FetchPage(ctx, media, page)
}

func TestQueueBuild_AllMediaSurvivesOneSidedExhaustion(t *testing.T) {
	ctx := context.Background()
	room := liveRoom("AAAAAA", 71)
	provider := &unevenProvider{movies: &fakeProvider{maxPages: 100}, tvMax: 1}
	q := NewQueueBuilder(provider, &fakeRooms{rooms: map[string]*model.Room{"AAAAAA": room}},
		&fakeSwipes{swiped: map[model.UserSlot]map[int64]struct{}{}}, &fakeSettings{}, nil)

	// Blocks beyond the single tv page are empty, but the movie side keeps
	// going, so a deep read must still fill entirely.
	got, err := q.Build(ctx, "AAAAAA", model.SlotA, "", 50, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 50 {
		t.Fatalf("got %d titles, want 50 despite the tv catalog ending", len(got))
	}
	sawMovie := false
	for _, title := range got {
		if title.MediaType == model.MediaMovie {
			sawMovie = true
		}
	}
	if !sawMovie {
		t.Error("deep pages should be served from the surviving movie catalog")
	}
}

func TestQueueBuild_OffsetPastEnd(t *testing.T) {
	ctx := context.Background()
	room := liveRoom("AAAAAA", 67)
	q := NewQueueBuilder(&fakeProvider{maxPages: 1}, &fakeRooms{rooms: map[string]*model.Room{"AAAAAA": room}},
		&fakeSwipes{swiped: map[model.UserSlot]map[int64]struct{}{}}, &fakeSettings{}, nil)

	got, err := q.Build(ctx, "AAAAAA", model.SlotA, "", 20, 500)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("offset past the catalog should return an empty slice, got %d", len(got))
	}
}

func TestQueueBuild_RoomNotFound(t *testing.T) {
	ctx := context.Background()
	q := newTestBuilder(liveRoom("AAAAAA", 5), nil, nil)

	_, err := q.Build(ctx, "ZZZZZZ", model.SlotA, "", 20, 0)
	if !errors.Is(err, repository.ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestQueueBuild_ExpiredRoom(t *testing.T) {
	ctx := context.Background()
	room := liveRoom("AAAAAA", 5)
	room.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	q := newTestBuilder(room, nil, nil)

	_, err := q.Build(ctx, "AAAAAA", model.SlotA, "", 20, 0)
	var gone *RoomGoneError
	if !errors.As(err, &gone) {
		t.Fatalf("expected RoomGoneError, got %v", err)
	}
	if gone.Code != "AAAAAA" {
		t.Errorf("RoomGoneError.Code = %q", gone.Code)
	}
}
