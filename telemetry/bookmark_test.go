package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_FirstHitOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if got := bd.Check(WindowStats{WindowEndTick: 30, Shots: 4}); hasBookmark(got, BookmarkFirstHit) {
		t.Error("first_hit before any hit")
	}
	if got := bd.Check(WindowStats{WindowEndTick: 60, Shots: 4, Hits: 1}); !hasBookmark(got, BookmarkFirstHit) {
		t.Error("expected first_hit bookmark")
	}
	if got := bd.Check(WindowStats{WindowEndTick: 90, Shots: 4, Hits: 2}); hasBookmark(got, BookmarkFirstHit) {
		t.Error("first_hit must trigger only once")
	}
}

func TestBookmarkDetector_ShipLost(t *testing.T) {
	bd := NewBookmarkDetector(10)
	got := bd.Check(WindowStats{Episode: 3, WindowEndTick: 120, Deaths: 1, Lives: 2})
	if !hasBookmark(got, BookmarkShipLost) {
		t.Fatal("expected ship_lost bookmark")
	}
	for _, bm := range got {
		if bm.Type == BookmarkShipLost && (bm.Episode != 3 || bm.Tick != 120) {
			t.Errorf("bookmark = %+v, want episode 3 tick 120", bm)
		}
	}
}

func TestBookmarkDetector_AccuracyBreakthrough(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// 20% accuracy history
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: (i + 1) * 30, Shots: 10, Hits: 2, Accuracy: 0.2})
	}

	got := bd.Check(WindowStats{WindowEndTick: 180, Shots: 10, Hits: 8, Accuracy: 0.8})
	if !hasBookmark(got, BookmarkAccuracyBreakthrough) {
		t.Error("expected accuracy_breakthrough bookmark")
	}
}

func TestBookmarkDetector_NoBreakthroughWithoutHistory(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{Shots: 10, Hits: 1, Accuracy: 0.1})
	got := bd.Check(WindowStats{Shots: 10, Hits: 9, Accuracy: 0.9})
	if hasBookmark(got, BookmarkAccuracyBreakthrough) {
		t.Error("breakthrough needs at least three windows of history")
	}
}

func TestBookmarkDetector_CleanStreak(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var triggered int
	for i := 0; i < cleanStreakWindows+3; i++ {
		got := bd.Check(WindowStats{WindowEndTick: (i + 1) * 30, Shots: 3, Hits: 1, Accuracy: 1.0 / 3})
		if hasBookmark(got, BookmarkCleanStreak) {
			triggered++
			if i != cleanStreakWindows-1 {
				t.Errorf("clean_streak at window %d, want %d", i, cleanStreakWindows-1)
			}
		}
	}
	if triggered != 1 {
		t.Errorf("clean_streak triggered %d times, want 1", triggered)
	}
}

func TestBookmarkDetector_HoldingFire(t *testing.T) {
	bd := NewBookmarkDetector(10)
	holding := WindowStats{Asteroids: 4, TargetRate: 1}

	if got := bd.Check(holding); !hasBookmark(got, BookmarkHoldingFire) {
		t.Error("expected holding_fire bookmark")
	}
	if got := bd.Check(holding); hasBookmark(got, BookmarkHoldingFire) {
		t.Error("holding_fire must not repeat while it lasts")
	}
	bd.Check(WindowStats{Asteroids: 4, TargetRate: 1, Shots: 2})
	if got := bd.Check(holding); !hasBookmark(got, BookmarkHoldingFire) {
		t.Error("expected holding_fire again after shots resumed")
	}
}
