package janitor

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRoomStore struct {
	expired     int64
	oldRoomIDs  []uint64
	listCutoff  time.Time
	deletedIDs  []uint64
	expireErr   error
	deleteCount int64
}

func (f *fakeRoomStore) ExpireOverdue(_ context.Context, _ time.Time) (int64, error) {
	if f.expireErr != nil {
		return 0, f.expireErr
	}
	return f.expired, nil
}

func (f *fakeRoomStore) ExpiredRoomIDsBefore(_ context.Context, cutoff time.Time) ([]uint64, error) {
	f.listCutoff = cutoff
	return f.oldRoomIDs, nil
}

func (f *fakeRoomStore) DeleteByIDs(_ context.Context, ids []uint64) (int64, error) {
	f.deletedIDs = ids
	return f.deleteCount, nil
}

type fakeSwipeStore struct {
	deleted int64
	err     error
	gotIDs  []uint64
}

func (f *fakeSwipeStore) DeleteByRoomIDs(_ context.Context, ids []uint64) (int64, error) {
	f.gotIDs = ids
	return f.deleted, f.err
}

type fakePromptStore struct {
	byRoom       int64
	answered     int64
	answeredBefore time.Time
}

func (f *fakePromptStore) DeleteAnsweredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.answeredBefore = cutoff
	return f.answered, nil
}

func (f *fakePromptStore) DeleteByRoomIDs(_ context.Context, _ []uint64) (int64, error) {
	return f.byRoom, nil
}

type fakeCache struct {
	invalidated []uint64
}

func (f *fakeCache) InvalidateMany(_ context.Context, roomIDs []uint64) {
	f.invalidated = roomIDs
}

type fakePurger struct {
	purged int64
	err    error
}

func (f *fakePurger) PurgeExpired(context.Context) (int64, error) { return f.purged, f.err }

func TestSweep_CascadesOldRooms(t *testing.T) {
	rooms := &fakeRoomStore{expired: 2, oldRoomIDs: []uint64{11, 12}, deleteCount: 2}
	swipes := &fakeSwipeStore{deleted: 40}
	prompts := &fakePromptStore{byRoom: 3, answered: 5}
	cache := &fakeCache{}
	purger := &fakePurger{purged: 7}

	j := New(rooms, swipes, prompts, cache, purger, 7*24*time.Hour, 30*24*time.Hour)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rep := j.Sweep(context.Background(), now)

	if rep.RoomsExpired != 2 || rep.RoomsDeleted != 2 {
		t.Errorf("room counts: expired=%d deleted=%d", rep.RoomsExpired, rep.RoomsDeleted)
	}
	if rep.SwipesDeleted != 40 {
		t.Errorf("SwipesDeleted = %d", rep.SwipesDeleted)
	}
	if rep.PromptsDeleted != 8 {
		t.Errorf("PromptsDeleted = %d, want room prompts plus answered", rep.PromptsDeleted)
	}
	if rep.SessionsPurged != 7 {
		t.Errorf("SessionsPurged = %d", rep.SessionsPurged)
	}

	wantRoomCutoff := now.Add(-7 * 24 * time.Hour)
	if !rooms.listCutoff.Equal(wantRoomCutoff) {
		t.Errorf("room cutoff = %v, want %v", rooms.listCutoff, wantRoomCutoff)
	}
	wantPromptCutoff := now.Add(-30 * 24 * time.Hour)
	if !prompts.answeredBefore.Equal(wantPromptCutoff) {
		t.Errorf("prompt cutoff = %v, want %v", prompts.answeredBefore, wantPromptCutoff)
	}

	if len(swipes.gotIDs) != 2 || len(cache.invalidated) != 2 || len(rooms.deletedIDs) != 2 {
		t.Error("cascade did not reach every collaborator")
	}
}

func TestSweep_NoOldRoomsSkipsCascade(t *testing.T) {
	rooms := &fakeRoomStore{expired: 1}
	swipes := &fakeSwipeStore{}
	prompts := &fakePromptStore{answered: 2}

	j := New(rooms, swipes, prompts, nil, nil, 7*24*time.Hour, 30*24*time.Hour)
	rep := j.Sweep(context.Background(), time.Now().UTC())

	if swipes.gotIDs != nil {
		t.Error("swipe deletion ran without any old rooms")
	}
	if rep.RoomsDeleted != 0 || rep.PromptsDeleted != 2 {
		t.Errorf("unexpected report: %+v", rep)
	}
}

func TestSweep_CategoryErrorsAreIsolated(t *testing.T) {
	rooms := &fakeRoomStore{expireErr: errors.New("db down"), oldRoomIDs: []uint64{5}, deleteCount: 1}
	swipes := &fakeSwipeStore{err: errors.New("db down")}
	prompts := &fakePromptStore{byRoom: 1, answered: 4}
	purger := &fakePurger{err: errors.New("redis down")}

	j := New(rooms, swipes, prompts, &fakeCache{}, purger, 7*24*time.Hour, 30*24*time.Hour)
	rep := j.Sweep(context.Background(), time.Now().UTC())

	// Failing categories report zero, the rest still run.
	if rep.RoomsExpired != 0 || rep.SwipesDeleted != 0 || rep.SessionsPurged != 0 {
		t.Errorf("failed categories should report zero: %+v", rep)
	}
	if rep.RoomsDeleted != 1 {
		t.Error("room deletion should proceed despite the swipe error")
	}
	if rep.PromptsDeleted != 5 {
		t.Errorf("PromptsDeleted = %d, want 5", rep.PromptsDeleted)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	j := New(&fakeRoomStore{}, &fakeSwipeStore{}, &fakePromptStore{}, nil, nil, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx, time.Minute)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
