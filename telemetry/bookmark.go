package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHawkExtinct     BookmarkType = "hawk_extinct"
	BookmarkDoveExtinct     BookmarkType = "dove_extinct"
	BookmarkHawkRecovery    BookmarkType = "hawk_recovery"
	BookmarkPopulationCrash BookmarkType = "population_crash"
	BookmarkStableMix       BookmarkType = "stable_mix"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Round       int          `csv:"round" json:"round"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark.
func (b Bookmark) LogBookmark(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("bookmark",
		"type", string(b.Type),
		"round", b.Round,
		"description", b.Description,
	)
}

// stableRounds is how many consecutive low-variance rounds make a stable mix.
const stableRounds = 5

// BookmarkDetector detects notable moments in a run.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []RoundStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentHawkMin int  // minimum hawk count since the last recovery, -1 before the first round
	recentPeak    int  // peak population since the last crash
	stableCount   int  // consecutive rounds with a stable hawk share
	hawksGone     bool // extinction already reported
	dovesGone     bool
	seenAny       bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableRounds {
		historySize = stableRounds
	}
	return &BookmarkDetector{
		history:       make([]RoundStats, historySize),
		historySize:   historySize,
		recentHawkMin: -1,
	}
}

// Check analyzes the latest round and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats RoundStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkExtinction(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if bd.seenAny {
		if b := bd.checkHawkRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPopulationCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStableMix(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	bd.seenAny = true

	if bd.recentHawkMin < 0 || stats.Hawks < bd.recentHawkMin {
		bd.recentHawkMin = stats.Hawks
	}
	if p := stats.Population(); p > bd.recentPeak {
		bd.recentPeak = p
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats RoundStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// lastRounds returns up to n most recent rounds, oldest first.
func (bd *BookmarkDetector) lastRounds(n int) []RoundStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	if n > count {
		n = count
	}
	out := make([]RoundStats, 0, n)
	for i := n; i > 0; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		out = append(out, bd.history[idx])
	}
	return out
}

func (bd *BookmarkDetector) checkExtinction(stats RoundStats) *Bookmark {
	if stats.Hawks == 0 && !bd.hawksGone {
		bd.hawksGone = true
		return &Bookmark{
			Type:        BookmarkHawkExtinct,
			Round:       stats.Round,
			Description: fmt.Sprintf("Hawks extinct with %d doves remaining", stats.Doves),
		}
	}
	if stats.Doves == 0 && !bd.dovesGone {
		bd.dovesGone = true
		return &Bookmark{
			Type:        BookmarkDoveExtinct,
			Round:       stats.Round,
			Description: fmt.Sprintf("Doves extinct with %d hawks remaining", stats.Hawks),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkHawkRecovery(stats RoundStats) *Bookmark {
	if bd.recentHawkMin <= 0 || bd.recentHawkMin > 3 {
		return nil
	}

	threshold := bd.recentHawkMin * 3
	if stats.Hawks >= threshold && stats.Hawks >= 6 {
		oldMin := bd.recentHawkMin
		bd.recentHawkMin = stats.Hawks

		return &Bookmark{
			Type:        BookmarkHawkRecovery,
			Round:       stats.Round,
			Description: fmt.Sprintf("Hawk population recovered from %d to %d", oldMin, stats.Hawks),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPopulationCrash(stats RoundStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	pop := stats.Population()
	drop := 1.0 - float64(pop)/float64(bd.recentPeak)
	if drop > 0.30 && pop < bd.recentPeak-10 {
		oldPeak := bd.recentPeak
		bd.recentPeak = pop

		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Round:       stats.Round,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, oldPeak, pop),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStableMix(stats RoundStats) *Bookmark {
	share, ok := stats.Composition().HawkFraction()
	if !ok || stats.Hawks < 3 || stats.Doves < 3 {
		bd.stableCount = 0
		return nil
	}

	recent := bd.lastRounds(stableRounds - 1)
	if len(recent) < stableRounds-1 {
		return nil
	}

	// Every recent hawk share within 0.05 of the current one
	stable := true
	for _, h := range recent {
		f, ok := h.Composition().HawkFraction()
		if !ok || f-share > 0.05 || share-f > 0.05 {
			stable = false
			break
		}
	}

	if stable {
		bd.stableCount++
	} else {
		bd.stableCount = 0
	}

	if bd.stableCount == stableRounds { // trigger exactly once per stable stretch
		return &Bookmark{
			Type:        BookmarkStableMix,
			Round:       stats.Round,
			Description: fmt.Sprintf("Hawk share held near %.2f for %d rounds", share, stableRounds),
		}
	}
	return nil
}
