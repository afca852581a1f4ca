package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, b := range bookmarks {
		if b.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(RoundStats{Round: 1, Hawks: 5, Doves: 20})
	bookmarks := bd.Check(RoundStats{Round: 2, Hawks: 0, Doves: 22})
	if !hasBookmark(bookmarks, BookmarkHawkExtinct) {
		t.Fatal("expected hawk_extinct bookmark")
	}
	if bookmarks[0].Round != 2 {
		t.Errorf("round = %d, want 2", bookmarks[0].Round)
	}

	// Reported once only
	if again := bd.Check(RoundStats{Round: 3, Hawks: 0, Doves: 22}); hasBookmark(again, BookmarkHawkExtinct) {
		t.Error("hawk_extinct reported twice")
	}
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 1; i <= 5; i++ {
		bd.Check(RoundStats{Round: i, Hawks: 50, Doves: 50})
	}

	bookmarks := bd.Check(RoundStats{Round: 6, Hawks: 20, Doves: 30})
	if !hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("expected population_crash bookmark")
	}

	// Peak resets after a crash
	if again := bd.Check(RoundStats{Round: 7, Hawks: 20, Doves: 30}); hasBookmark(again, BookmarkPopulationCrash) {
		t.Error("crash should not re-trigger at the new level")
	}
}

func TestBookmarkDetector_NoCrashOnSmallDrop(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 1; i <= 5; i++ {
		bd.Check(RoundStats{Round: i, Hawks: 50, Doves: 50})
	}
	if b := bd.Check(RoundStats{Round: 6, Hawks: 45, Doves: 45}); hasBookmark(b, BookmarkPopulationCrash) {
		t.Error("a 10% drop is not a crash")
	}
}

func TestBookmarkDetector_HawkRecovery(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(RoundStats{Round: 1, Hawks: 40, Doves: 40})
	bd.Check(RoundStats{Round: 2, Hawks: 2, Doves: 40})
	bookmarks := bd.Check(RoundStats{Round: 3, Hawks: 8, Doves: 40})
	if !hasBookmark(bookmarks, BookmarkHawkRecovery) {
		t.Error("expected hawk_recovery bookmark")
	}
}

func TestBookmarkDetector_StableMix(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var triggered int
	for i := 1; i <= 12; i++ {
		if hasBookmark(bd.Check(RoundStats{Round: i, Hawks: 33, Doves: 67}), BookmarkStableMix) {
			triggered++
		}
	}
	if triggered != 1 {
		t.Errorf("stable_mix triggered %d times, want exactly once", triggered)
	}
}

func TestBookmarkDetector_UnstableMix(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 1; i <= 12; i++ {
		hawks := 20
		if i%2 == 0 {
			hawks = 60
		}
		if hasBookmark(bd.Check(RoundStats{Round: i, Hawks: hawks, Doves: 40}), BookmarkStableMix) {
			t.Fatalf("unexpected stable_mix at round %d", i)
		}
	}
}
