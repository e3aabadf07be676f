package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"optionscout/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun() models.RankedIdeas {
	expiry := time.Date(2025, 3, 13, 15, 30, 0, 0, time.UTC)
	tier1 := models.ScoredIdea{
		Contract: models.OptionContract{
			Symbol: "RELIANCE25MAR100CE", Expiry: expiry, Type: models.OptionCall,
			Strike: 100, Mid: 2.1, SpreadPct: 9.5, OpenInterest: 500, ImpliedVol: 0.3,
		},
		ExpChange: 0.4, ExpROI: 19.0, Tier: models.TierOne,
	}
	degen := models.ScoredIdea{
		Contract: models.OptionContract{
			Symbol: "RELIANCE25MAR104PE", Expiry: expiry, Type: models.OptionPut,
			Strike: 104, Mid: 1.0, SpreadPct: 12, OpenInterest: 80, ImpliedVol: 0.35,
		},
		ExpChange: 0, ExpROI: math.Inf(-1), Tier: models.TierReject,
	}
	return models.RankedIdeas{
		Tier1: []models.ScoredIdea{tier1},
		All:   []models.ScoredIdea{tier1, degen},
		Meta: models.RunMeta{
			Timestamp:    time.Date(2025, 3, 6, 10, 0, 0, 0, time.UTC),
			HorizonHours: 2,
			Universe:     []string{"RELIANCE"},
		},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	runID, err := s.SaveRun(ctx, sampleRun())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	runs, err := s.GetRuns(ctx, 10)
	if err != nil {
		t.Fatalf("GetRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != runID || r.HorizonHours != 2 || r.Tier1Count != 1 || r.TotalScored != 2 {
		t.Errorf("run summary = %+v", r)
	}
	if len(r.Universe) != 1 || r.Universe[0] != "RELIANCE" {
		t.Errorf("universe = %v", r.Universe)
	}

	ideas, err := s.GetRunIdeas(ctx, runID)
	if err != nil {
		t.Fatalf("GetRunIdeas: %v", err)
	}
	if len(ideas) != 2 {
		t.Fatalf("ideas = %d, want 2", len(ideas))
	}
	if ideas[0].Contract.Symbol != "RELIANCE25MAR100CE" || ideas[0].Tier != models.TierOne {
		t.Errorf("best idea = %+v", ideas[0])
	}
	// The degenerate contract comes back last with a very negative ROI.
	if ideas[1].ExpROI > -1e307 {
		t.Errorf("degenerate ROI stored as %v", ideas[1].ExpROI)
	}
}

func TestGetRunsOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		run := sampleRun()
		run.Meta.Timestamp = run.Meta.Timestamp.Add(time.Duration(i) * time.Hour)
		if _, err := s.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun %d: %v", i, err)
		}
	}

	runs, err := s.GetRuns(ctx, 2)
	if err != nil {
		t.Fatalf("GetRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if !runs[0].Timestamp.After(runs[1].Timestamp) {
		t.Errorf("runs not newest-first: %v then %v", runs[0].Timestamp, runs[1].Timestamp)
	}
}

func TestFilterPresetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	preset := FilterPreset{
		Name: "weeklies", MinOpenInterest: 100, MaxSpreadPct: 25,
		DTEMin: 0, DTEMax: 7, MinPrice: 0.5, MaxPrice: 200,
	}
	if err := s.SaveFilterPreset(ctx, preset); err != nil {
		t.Fatalf("SaveFilterPreset: %v", err)
	}

	got, err := s.GetFilterPreset(ctx, "weeklies")
	if err != nil {
		t.Fatalf("GetFilterPreset: %v", err)
	}
	if got == nil || *got != preset {
		t.Fatalf("preset = %+v, want %+v", got, preset)
	}

	// Saving under the same name replaces.
	preset.MaxSpreadPct = 30
	if err := s.SaveFilterPreset(ctx, preset); err != nil {
		t.Fatalf("SaveFilterPreset update: %v", err)
	}
	got, _ = s.GetFilterPreset(ctx, "weeklies")
	if got.MaxSpreadPct != 30 {
		t.Errorf("MaxSpreadPct = %v after update", got.MaxSpreadPct)
	}

	names, err := s.ListFilterPresets(ctx)
	if err != nil {
		t.Fatalf("ListFilterPresets: %v", err)
	}
	if len(names) != 1 || names[0] != "weeklies" {
		t.Errorf("names = %v", names)
	}

	if err := s.DeleteFilterPreset(ctx, "weeklies"); err != nil {
		t.Fatalf("DeleteFilterPreset: %v", err)
	}
	got, err = s.GetFilterPreset(ctx, "weeklies")
	if err != nil || got != nil {
		t.Errorf("after delete: preset=%v err=%v", got, err)
	}
}

func TestFilterPresetRejectsEmptyName(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveFilterPreset(context.Background(), FilterPreset{}); err == nil {
		t.Fatal("expected validation error for empty name")
	}
}

func TestWatchlist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, sym := range []string{"RELIANCE", "TCS", "INFY"} {
		if err := s.AddToWatchlist(ctx, "default", sym); err != nil {
			t.Fatalf("AddToWatchlist(%s): %v", sym, err)
		}
	}
	// Duplicate add is a no-op.
	if err := s.AddToWatchlist(ctx, "default", "TCS"); err != nil {
		t.Fatalf("duplicate add: %v", err)
	}

	symbols, err := s.GetWatchlist(ctx, "default")
	if err != nil {
		t.Fatalf("GetWatchlist: %v", err)
	}
	if len(symbols) != 3 || symbols[0] != "RELIANCE" {
		t.Fatalf("symbols = %v", symbols)
	}

	if err := s.RemoveFromWatchlist(ctx, "default", "TCS"); err != nil {
		t.Fatalf("RemoveFromWatchlist: %v", err)
	}
	symbols, _ = s.GetWatchlist(ctx, "default")
	if len(symbols) != 2 {
		t.Errorf("symbols after removal = %v", symbols)
	}

	// Lists are independent.
	other, _ := s.GetWatchlist(ctx, "fno")
	if len(other) != 0 {
		t.Errorf("unexpected symbols in other list: %v", other)
	}
}
