package sheet_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fencerfight/tourney/src/domain/fighter"
	"github.com/fencerfight/tourney/src/infra/sheet"
)

func TestExportImportRoundTrip(t *testing.T) {
	ledger := [][]fighter.Pair{
		{
			{
				Left:  fighter.Participant{ID: "a", Name: "Anna", Scores: 5, Wins: 1, Warnings: 1, DoubleHits: 2},
				Right: fighter.Participant{ID: "b", Name: "Boris", Scores: 3, Protests: 1, DoubleHits: 2},
			},
			{
				Left:  fighter.Participant{ID: "c", Name: "Clara", Scores: 4, Wins: 1},
				Right: fighter.Participant{ID: "d", Name: "Dmitri", Scores: 2},
			},
		},
	}

	var buf bytes.Buffer
	if err := sheet.ExportLedger(&buf, ledger); err != nil {
		t.Fatalf("ExportLedger() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "stage 1") {
		t.Errorf("Expected a stage title, got:\n%s", out)
	}

	pairs, err := sheet.ImportRound(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ImportRound() error = %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(pairs))
	}

	left := pairs[0].Left
	if left.Name != "Anna" || left.Scores != 5 || left.Wins != 1 || left.Warnings != 1 || left.DoubleHits != 2 {
		t.Errorf("Left side mismatch: %+v", left)
	}
	right := pairs[0].Right
	if right.Name != "Boris" || right.Scores != 3 || right.Protests != 1 {
		t.Errorf("Right side mismatch: %+v", right)
	}
	// Double hits are shared across the row.
	if right.DoubleHits != 2 {
		t.Errorf("Expected shared double hits, got %d", right.DoubleHits)
	}
}

func TestImportRound_DeterministicIDsWithinRun(t *testing.T) {
	input := strings.Join([]string{
		"Anna,0,0,5,1,0,0,3,0,0,Boris",
		"Anna,0,0,2,1,0,0,1,0,0,Clara",
	}, "\n")

	pairs, err := sheet.ImportRound(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportRound() error = %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].Left.ID != pairs[1].Left.ID {
		t.Errorf("Expected the same name to reuse one id, got %q and %q",
			pairs[0].Left.ID, pairs[1].Left.ID)
	}
	if pairs[0].Right.ID == pairs[1].Right.ID {
		t.Error("Expected distinct names to get distinct ids")
	}
}

func TestImportRound_ByeAndSkippedRows(t *testing.T) {
	input := strings.Join([]string{
		"stage 1",
		"name,warnings,protests,scores,wins,doubleHits,wins,scores,protests,warnings,name",
		"Anna,0,0,5,1,0,0,3,0,0,Boris",
		"Clara,0,0,0,1,0,0,0,0,0,",
		",,,,,,,,,,",
		"short,row",
	}, "\n")

	pairs, err := sheet.ImportRound(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportRound() error = %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(pairs))
	}
	if !pairs[1].HasBye() {
		t.Error("Expected a missing right name to become a bye")
	}
	if pairs[1].Left.Name != "Clara" {
		t.Errorf("Expected Clara against the bye, got %q", pairs[1].Left.Name)
	}
}

func TestRoster(t *testing.T) {
	input := strings.Join([]string{
		"Anna,0,0,5,1,0,0,3,0,0,Boris",
		"Anna,0,0,2,1,0,0,1,0,0,Clara",
		"Dmitri,0,0,0,0,0,0,0,0,0,",
	}, "\n")

	pairs, err := sheet.ImportRound(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportRound() error = %v", err)
	}
	roster := sheet.Roster(pairs)
	if len(roster) != 4 {
		t.Fatalf("Expected 4 unique fighters, got %d", len(roster))
	}
	names := make([]string, 0, len(roster))
	for _, f := range roster {
		if f.IsBye() {
			t.Error("Expected no bye sentinel in the roster")
		}
		names = append(names, f.Name)
	}
	want := []string{"Anna", "Boris", "Clara", "Dmitri"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Roster[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestStageTitle(t *testing.T) {
	tests := []struct {
		name  string
		index int
		total int
		want  string
	}{
		{name: "final round", index: 2, total: 3, want: "final and 3rd place"},
		{name: "semifinal", index: 1, total: 3, want: "semifinal"},
		{name: "quarterfinal of three rounds", index: 0, total: 3, want: "1/8 final"},
		{name: "first of four rounds", index: 0, total: 4, want: "1/16 final"},
		{name: "single round", index: 0, total: 1, want: "final and 3rd place"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sheet.StageTitle(tt.index, tt.total); got != tt.want {
				t.Errorf("StageTitle(%d, %d) = %q, want %q", tt.index, tt.total, got, tt.want)
			}
		})
	}
}
