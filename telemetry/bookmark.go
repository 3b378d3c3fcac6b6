package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstHit             BookmarkType = "first_hit"
	BookmarkShipLost             BookmarkType = "ship_lost"
	BookmarkAccuracyBreakthrough BookmarkType = "accuracy_breakthrough"
	BookmarkCleanStreak          BookmarkType = "clean_streak"
	BookmarkHoldingFire          BookmarkType = "holding_fire"
)

// Bookmark marks a notable window of an episode.
type Bookmark struct {
	Episode     int          `csv:"episode" json:"episode"`
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int          `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"episode", b.Episode,
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// cleanStreakWindows is how many consecutive scoring windows without a
// death make a clean streak.
const cleanStreakWindows = 5

// BookmarkDetector watches consecutive windows of one episode.
type BookmarkDetector struct {
	history     []WindowStats
	historyIdx  int
	historyFull bool

	anyHit      bool
	cleanStreak int
	holding     bool
}

// NewBookmarkDetector returns a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{history: make([]WindowStats, historySize)}
}

// Check analyses the latest window and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	mark := func(t BookmarkType, format string, args ...any) {
		bookmarks = append(bookmarks, Bookmark{
			Episode:     stats.Episode,
			Type:        t,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf(format, args...),
		})
	}

	if !bd.anyHit && stats.Hits > 0 {
		bd.anyHit = true
		mark(BookmarkFirstHit, "First hit after %.1fs", stats.SimTimeSec)
	}

	if stats.Deaths > 0 {
		mark(BookmarkShipLost, "%d death(s), %d lives left", stats.Deaths, stats.Lives)
	}

	if avg, ok := bd.averageAccuracy(); ok && stats.Hits >= 3 && stats.Accuracy > 2*avg {
		mark(BookmarkAccuracyBreakthrough, "Accuracy %.2f is %.1fx average (%.2f)", stats.Accuracy, stats.Accuracy/avg, avg)
	}

	switch {
	case stats.Deaths > 0 || stats.Hits == 0:
		bd.cleanStreak = 0
	default:
		bd.cleanStreak++
		if bd.cleanStreak == cleanStreakWindows {
			mark(BookmarkCleanStreak, "%d scoring windows without a death", cleanStreakWindows)
		}
	}

	// Targets were available the whole window but nothing was fired.
	holding := stats.Shots == 0 && stats.Asteroids > 0 && stats.TargetRate == 1
	if holding && !bd.holding {
		mark(BookmarkHoldingFire, "No shots with %d asteroids in range", stats.Asteroids)
	}
	bd.holding = holding

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % len(bd.history)
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// averageAccuracy is hits over shots across the history. It needs at
// least three windows and some hits.
func (bd *BookmarkDetector) averageAccuracy() (float64, bool) {
	history := bd.getHistory()
	if len(history) < 3 {
		return 0, false
	}
	var shots, hits int
	for _, h := range history {
		shots += h.Shots
		hits += h.Hits
	}
	if shots == 0 || hits == 0 {
		return 0, false
	}
	return float64(hits) / float64(shots), true
}
