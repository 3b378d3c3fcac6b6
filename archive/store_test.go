package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/fuzzship/genome"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewStore("sqlite", filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewStore(sqlite): %v", err)
	}
	memory, err := NewStore("memory", "")
	if err != nil {
		t.Fatalf("NewStore(memory): %v", err)
	}
	return map[string]Store{"memory": memory, "sqlite": sqlite}
}

func initStore(t *testing.T, store Store) context.Context {
	t.Helper()
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return ctx
}

func record(id, run string, version int, score float64, genes ...float64) Record {
	return Record{
		ID:            id,
		RunID:         run,
		SchemaVersion: version,
		Score:         score,
		Genes:         genome.Genome(genes),
		CreatedAt:     time.Unix(1700000000, 0).UTC(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := initStore(t, store)

			rec := record("g1", "run-a", 1, 12.5, 0.1, 0.5, 0.9)
			if err := store.SaveGenome(ctx, rec); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, ok, err := store.GetGenome(ctx, "g1")
			if err != nil || !ok {
				t.Fatalf("get: %v, found %v", err, ok)
			}
			if got.RunID != "run-a" || got.SchemaVersion != 1 || got.Score != 12.5 || !got.CreatedAt.Equal(rec.CreatedAt) {
				t.Errorf("got %+v", got)
			}
			if len(got.Genes) != 3 || got.Genes[0] != 0.1 || got.Genes[2] != 0.9 {
				t.Errorf("genes = %v", got.Genes)
			}

			if _, ok, err := store.GetGenome(ctx, "missing"); err != nil || ok {
				t.Errorf("missing genome: found %v, err %v", ok, err)
			}
		})
	}
}

func TestStoreUpsert(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := initStore(t, store)

			if err := store.SaveGenome(ctx, record("g1", "run", 1, 1, 0.2)); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := store.SaveGenome(ctx, record("g1", "run", 1, 4, 0.7)); err != nil {
				t.Fatalf("resave: %v", err)
			}
			got, _, err := store.GetGenome(ctx, "g1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Score != 4 || got.Genes[0] != 0.7 {
				t.Errorf("got %+v, want the second save", got)
			}
			list, err := store.ListRun(ctx, "run")
			if err != nil || len(list) != 1 {
				t.Errorf("ListRun = %d records, err %v; want 1", len(list), err)
			}
		})
	}
}

func TestStoreBestAndListRun(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := initStore(t, store)

			if _, ok, err := store.Best(ctx, 1); err != nil || ok {
				t.Fatalf("Best on empty store: found %v, err %v", ok, err)
			}

			for _, rec := range []Record{
				record("a", "r1", 1, 3, 0.1),
				record("b", "r1", 1, 9, 0.2),
				record("c", "r2", 1, 5, 0.3),
				record("d", "r2", 2, 50, 0.4, 0.4),
			} {
				if err := store.SaveGenome(ctx, rec); err != nil {
					t.Fatalf("save %s: %v", rec.ID, err)
				}
			}

			best, ok, err := store.Best(ctx, 1)
			if err != nil || !ok || best.ID != "b" {
				t.Errorf("Best(1) = %+v, %v, %v; want b", best, ok, err)
			}
			best, ok, err = store.Best(ctx, 2)
			if err != nil || !ok || best.ID != "d" {
				t.Errorf("Best(2) = %+v, %v, %v; want d", best, ok, err)
			}

			list, err := store.ListRun(ctx, "r1")
			if err != nil {
				t.Fatalf("ListRun: %v", err)
			}
			if len(list) != 2 || list[0].ID != "b" || list[1].ID != "a" {
				t.Errorf("ListRun(r1) = %+v, want b then a", list)
			}
			if list, _ := store.ListRun(ctx, "nope"); len(list) != 0 {
				t.Errorf("ListRun(nope) = %+v", list)
			}
		})
	}
}

func TestStoreRejectsInvalidRecords(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := initStore(t, store)
			if err := store.SaveGenome(ctx, record("", "run", 1, 0, 0.5)); err == nil {
				t.Error("expected error for empty id")
			}
			if err := store.SaveGenome(ctx, record("x", "run", 1, 0)); err == nil {
				t.Error("expected error for empty genes")
			}
		})
	}
}

func TestStoreBeforeInit(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := store.SaveGenome(context.Background(), record("g", "r", 1, 0, 0.5))
			if !errors.Is(err, ErrNotInitialized) {
				t.Errorf("err = %v, want ErrNotInitialized", err)
			}
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "archive.db")

	first := NewSQLiteStore(path)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := first.SaveGenome(ctx, record("keep", "run", 1, 7, 0.25, 0.75)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := NewSQLiteStore(path)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	got, ok, err := second.GetGenome(ctx, "keep")
	if err != nil || !ok || got.Genes[1] != 0.75 {
		t.Errorf("after reopen: %+v, %v, %v", got, ok, err)
	}
}

func TestSQLiteAppliesPragmas(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "archive.db"))
	ctx := initStore(t, store)
	db, err := store.getDB()
	if err != nil {
		t.Fatalf("getDB: %v", err)
	}

	var mode string
	if err := db.GetContext(ctx, &mode, "PRAGMA journal_mode"); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
	var timeout int
	if err := db.GetContext(ctx, &timeout, "PRAGMA busy_timeout"); err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestNewStoreKinds(t *testing.T) {
	if _, err := NewStore("postgres", ""); err == nil {
		t.Error("expected error for unknown backend")
	}
	if err := NewSQLiteStore("").Init(context.Background()); err == nil {
		t.Error("expected error for empty sqlite path")
	}
}

func TestNewRecord(t *testing.T) {
	genes := genome.Genome{0.1, 0.2}
	rec := NewRecord("run", 1, 3, genes)
	genes[0] = 0.9

	if rec.ID == "" || rec.Genes[0] != 0.1 {
		t.Errorf("rec = %+v", rec)
	}
	if other := NewRecord("run", 1, 3, genes); other.ID == rec.ID {
		t.Error("record ids must be unique")
	}
	f := rec.File()
	if f.SchemaVersion != 1 || f.Fitness != 3 || f.RunID != "run" || len(f.Genes) != 2 {
		t.Errorf("file = %+v", f)
	}
}
