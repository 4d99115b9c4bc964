package fighter_test

import (
	"strings"
	"testing"

	"github.com/fencerfight/tourney/src/domain/fighter"
)

func TestNewParticipant(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "Anna Kovacs",
			wantErr: false,
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := fighter.NewParticipant(tt.input, fighter.Female)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewParticipant() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if p.ID == "" {
				t.Error("Expected a generated id")
			}
			if p.Name != strings.TrimSpace(tt.input) {
				t.Errorf("Expected trimmed name, got %q", p.Name)
			}
			if p.Gender != fighter.Female {
				t.Errorf("Expected gender to be kept, got %v", p.Gender)
			}
		})
	}
}

func TestNewID_DistinctPerCall(t *testing.T) {
	first := fighter.NewID("Jo Hn")
	second := fighter.NewID("Jo Hn")
	if first == second {
		t.Errorf("Expected distinct ids for repeated names, got %q twice", first)
	}
	if !strings.HasPrefix(first, "jo-hn-") {
		t.Errorf("Expected slug prefix jo-hn-, got %q", first)
	}
}

func TestBye(t *testing.T) {
	bye := fighter.Bye(fighter.Female)
	if !bye.IsBye() {
		t.Error("Expected bye sentinel to report IsBye")
	}
	if bye.Gender != fighter.Female {
		t.Errorf("Expected bye to inherit gender, got %v", bye.Gender)
	}

	real, _ := fighter.NewParticipant("Mark", fighter.Male)
	if real.IsBye() {
		t.Error("Expected a real fighter not to be a bye")
	}
	pair := fighter.Pair{Left: real, Right: bye}
	if !pair.HasBye() {
		t.Error("Expected pair with a bye side to report HasBye")
	}
}

func TestRecordDraw(t *testing.T) {
	p, _ := fighter.NewParticipant("Anna", fighter.Female)
	p.RecordDraw(3, "opp-1", 1, 0, 2)

	if p.Wins != 1 {
		t.Errorf("Expected a draw to count as a win for round completion, got %d", p.Wins)
	}
	if p.Draws != 1 {
		t.Errorf("Expected draws 1, got %d", p.Draws)
	}
	if p.Scores != 3 || p.Warnings != 1 || p.DoubleHits != 2 {
		t.Errorf("Expected bout counters to be overwritten, got %+v", p)
	}
	if !p.HasFaced("opp-1") {
		t.Error("Expected opponent to be recorded")
	}
}

func TestRecordWin_OverwritesBoutCounters(t *testing.T) {
	p, _ := fighter.NewParticipant("Anna", fighter.Female)
	p.RecordWin(5, "opp-1", 2, 1, 0)
	p.RecordWin(2, "opp-2", 0, 0, 1)

	if p.Wins != 2 {
		t.Errorf("Expected wins 2, got %d", p.Wins)
	}
	if p.Scores != 2 {
		t.Errorf("Expected the score total to be overwritten, got %d", p.Scores)
	}
	if p.Warnings != 0 || p.Protests != 0 || p.DoubleHits != 1 {
		t.Errorf("Expected conduct counters from the last bout, got %+v", p)
	}
	if len(p.Opponents) != 2 {
		t.Errorf("Expected opponent history to append, got %v", p.Opponents)
	}
}

func TestSwissScore(t *testing.T) {
	p, _ := fighter.NewParticipant("Anna", fighter.Female)
	p.Buchholz = 2
	p.Draws = 3
	if got := p.SwissScore(); got != 3.5 {
		t.Errorf("SwissScore() = %v, want 3.5", got)
	}
}

func TestPairResolved(t *testing.T) {
	left, _ := fighter.NewParticipant("Anna", fighter.Female)
	right, _ := fighter.NewParticipant("Mark", fighter.Male)

	pair := fighter.Pair{Left: left, Right: right}
	if pair.Resolved() {
		t.Error("Expected a fresh pair to be unresolved")
	}

	pair.Right.RecordWin(5, pair.Left.ID, 0, 0, 0)
	if !pair.Resolved() {
		t.Error("Expected pair with a recorded win to be resolved")
	}

	byePair := fighter.Pair{Left: left, Right: fighter.Bye(left.Gender)}
	if !byePair.Resolved() {
		t.Error("Expected bye pair to count as resolved")
	}
}
