package nakama

import (
	"context"
	"errors"
	"testing"
	"time"

	"klondike/internal/domain"
	"klondike/internal/ports"
)

func storedGame(t *testing.T, id, owner string) *domain.Game {
	t.Helper()
	state, err := domain.Deal(domain.SeededDeck(7), 1)
	if err != nil {
		t.Fatalf("deal error: %v", err)
	}
	game := &domain.Game{
		ID:        id,
		Owner:     owner,
		GameType:  "klondike",
		Color:     "red",
		DrawCount: 1,
		Start:     time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		State:     state,
		Moves:     []domain.MoveRecord{},
	}
	game.Refresh(nil)
	return game
}

func TestStorageCreateLoadAndList(t *testing.T) {
	ctx := context.Background()
	nk := newFakeNakama()
	store := NewNakamaStorageAdapter(nk)

	for _, id := range []string{"g1", "g2"} {
		if err := store.CreateGame(ctx, storedGame(t, id, "u1")); err != nil {
			t.Fatalf("create %s error: %v", id, err)
		}
	}

	game, version, err := store.LoadGame(ctx, "g1")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if game.ID != "g1" || game.Owner != "u1" || version != "1" {
		t.Errorf("loaded %s/%s at version %s", game.ID, game.Owner, version)
	}
	if err := domain.CheckInvariants(game.State); err != nil {
		t.Errorf("stored state broken: %v", err)
	}

	games, err := store.ListGames(ctx, "u1")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(games) != 2 || games[0].ID != "g1" || games[1].ID != "g2" {
		t.Fatalf("list = %+v", games)
	}

	other, err := store.ListGames(ctx, "u2")
	if err != nil || len(other) != 0 {
		t.Errorf("expected empty list for u2, got %v (%v)", other, err)
	}

	if err := store.CreateGame(ctx, storedGame(t, "g1", "u1")); err == nil {
		t.Error("expected duplicate create to fail")
	}
}

func TestStorageLoadMissingGame(t *testing.T) {
	store := NewNakamaStorageAdapter(newFakeNakama())
	for _, id := range []string{"", "nope"} {
		if _, _, err := store.LoadGame(context.Background(), id); !errors.Is(err, ports.ErrGameNotFound) {
			t.Errorf("LoadGame(%q) = %v, want ErrGameNotFound", id, err)
		}
	}
}

func TestStorageSaveGameChecksVersion(t *testing.T) {
	ctx := context.Background()
	store := NewNakamaStorageAdapter(newFakeNakama())
	if err := store.CreateGame(ctx, storedGame(t, "g1", "u1")); err != nil {
		t.Fatalf("create error: %v", err)
	}

	game, version, err := store.LoadGame(ctx, "g1")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	game.Score = 40

	next, err := store.SaveGame(ctx, game, version)
	if err != nil {
		t.Fatalf("save error: %v", err)
	}
	if next == version {
		t.Errorf("version did not advance: %s", next)
	}

	if _, err := store.SaveGame(ctx, game, version); !errors.Is(err, ports.ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict for stale version, got %v", err)
	}
	if _, err := store.SaveGame(ctx, game, ""); err == nil {
		t.Error("expected save without version to fail")
	}

	reloaded, _, err := store.LoadGame(ctx, "g1")
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	if reloaded.Score != 40 {
		t.Errorf("score = %d, want 40", reloaded.Score)
	}
}

func TestStorageCreateGameRetriesRecordConflict(t *testing.T) {
	ctx := context.Background()
	nk := newFakeNakama()
	store := NewNakamaStorageAdapter(nk)

	nk.rejectWrites = 1
	if err := store.CreateGame(ctx, storedGame(t, "g1", "u1")); err != nil {
		t.Fatalf("create error after one conflict: %v", err)
	}

	nk.rejectWrites = recordRetries
	if err := store.CreateGame(ctx, storedGame(t, "g2", "u1")); err == nil {
		t.Fatal("expected create to give up")
	}

	games, err := store.ListGames(ctx, "u1")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(games) != 1 || games[0].ID != "g1" {
		t.Errorf("list = %+v", games)
	}
}

func TestStoragePlayerRecord(t *testing.T) {
	ctx := context.Background()
	store := NewNakamaStorageAdapter(newFakeNakama())

	created, err := store.InitPlayer(ctx, "u1")
	if err != nil || !created {
		t.Fatalf("first InitPlayer = %t, %v", created, err)
	}
	created, err = store.InitPlayer(ctx, "u1")
	if err != nil || created {
		t.Fatalf("second InitPlayer = %t, %v", created, err)
	}

	if err := store.RecordWin(ctx, "u1", 520); err != nil {
		t.Fatalf("record win error: %v", err)
	}
	if err := store.RecordWin(ctx, "u1", 300); err != nil {
		t.Fatalf("record win error: %v", err)
	}

	record, err := store.LoadPlayer(ctx, "u1")
	if err != nil {
		t.Fatalf("load player error: %v", err)
	}
	if record.Won != 2 || record.BestScore != 520 {
		t.Errorf("record = %+v", record)
	}

	empty, err := store.LoadPlayer(ctx, "u2")
	if err != nil || empty.Won != 0 || empty.Games == nil {
		t.Errorf("empty record = %+v, %v", empty, err)
	}
}
