package pairing_test

import (
	"math/rand"
	"testing"

	"github.com/fencerfight/tourney/src/domain/fighter"
	"github.com/fencerfight/tourney/src/domain/pairing"
)

func mustFighter(t *testing.T, name string, gender fighter.Gender) fighter.Participant {
	t.Helper()
	p, err := fighter.NewParticipant(name, gender)
	if err != nil {
		t.Fatalf("NewParticipant(%q) error = %v", name, err)
	}
	return p
}

func roster(t *testing.T, n int) []fighter.Participant {
	t.Helper()
	names := []string{"Anna", "Boris", "Clara", "Dmitri", "Elena", "Felix", "Greta"}
	out := make([]fighter.Participant, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, mustFighter(t, names[i], fighter.Male))
	}
	return out
}

func TestGenerate_EliminationSizes(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		wantPairs int
		wantByes  int
	}{
		{name: "two fighters", count: 2, wantPairs: 1, wantByes: 0},
		{name: "three fighters", count: 3, wantPairs: 2, wantByes: 1},
		{name: "four fighters", count: 4, wantPairs: 2, wantByes: 0},
		{name: "five fighters", count: 5, wantPairs: 3, wantByes: 1},
		{name: "seven fighters", count: 7, wantPairs: 4, wantByes: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(1))
			pairs := pairing.Generate(roster(t, tt.count), false, false, rng)
			if len(pairs) != tt.wantPairs {
				t.Errorf("Expected %d pairs, got %d", tt.wantPairs, len(pairs))
			}
			byes := 0
			seen := make(map[string]bool)
			for _, pair := range pairs {
				if pair.HasBye() {
					byes++
				}
				for _, f := range []fighter.Participant{pair.Left, pair.Right} {
					if f.IsBye() {
						continue
					}
					if seen[f.ID] {
						t.Errorf("Fighter %s paired twice", f.Name)
					}
					seen[f.ID] = true
				}
			}
			if byes != tt.wantByes {
				t.Errorf("Expected %d bye pairs, got %d", tt.wantByes, byes)
			}
			if len(seen) != tt.count {
				t.Errorf("Expected every fighter paired exactly once, got %d of %d", len(seen), tt.count)
			}
		})
	}
}

func TestGenerate_SameGenderOnly(t *testing.T) {
	participants := []fighter.Participant{
		mustFighter(t, "Anna", fighter.Male),
		mustFighter(t, "Boris", fighter.Male),
		mustFighter(t, "Clara", fighter.Female),
	}
	rng := rand.New(rand.NewSource(1))
	pairs := pairing.Generate(participants, true, false, rng)

	if len(pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(pairs))
	}
	for _, pair := range pairs {
		if pair.HasBye() {
			continue
		}
		if pair.Left.Gender != pair.Right.Gender {
			t.Errorf("Mixed-gender pair %s vs %s", pair.Left.Name, pair.Right.Name)
		}
	}
	// The lone female fighter gets the bye, sorted to the end.
	last := pairs[len(pairs)-1]
	if !last.HasBye() {
		t.Fatal("Expected the bye pair at the end of the round")
	}
	if last.Left.Name != "Clara" {
		t.Errorf("Expected Clara against the bye, got %s", last.Left.Name)
	}
	if last.Right.Gender != fighter.Female {
		t.Errorf("Expected the bye to inherit the partner's gender")
	}
}

func TestGenerate_SwissAvoidsRematch(t *testing.T) {
	a := mustFighter(t, "Anna", fighter.Male)
	b := mustFighter(t, "Boris", fighter.Male)
	c := mustFighter(t, "Clara", fighter.Male)
	d := mustFighter(t, "Dmitri", fighter.Male)

	// Anna and Boris already met; ranking keeps input order on equal scores.
	a.Opponents = []string{b.ID}

	pairs := pairing.Generate([]fighter.Participant{a, b, c, d}, false, true, nil)
	if len(pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].Left.ID != a.ID || pairs[0].Right.ID != c.ID {
		t.Errorf("Expected Anna to skip Boris and meet Clara, got %s vs %s",
			pairs[0].Left.Name, pairs[0].Right.Name)
	}
	if pairs[1].Left.ID != b.ID || pairs[1].Right.ID != d.ID {
		t.Errorf("Expected Boris vs Dmitri, got %s vs %s",
			pairs[1].Left.Name, pairs[1].Right.Name)
	}
}

func TestGenerate_SwissRanksByScore(t *testing.T) {
	a := mustFighter(t, "Anna", fighter.Male)
	b := mustFighter(t, "Boris", fighter.Male)
	c := mustFighter(t, "Clara", fighter.Male)
	d := mustFighter(t, "Dmitri", fighter.Male)

	a.Buchholz = 1
	d.Buchholz = 2

	pairs := pairing.Generate([]fighter.Participant{a, b, c, d}, false, true, nil)
	if len(pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(pairs))
	}
	// Ranking is d(2), a(1), b(0), c(0): the leader meets the runner-up.
	if pairs[0].Left.ID != d.ID || pairs[0].Right.ID != a.ID {
		t.Errorf("Expected Dmitri vs Anna first, got %s vs %s",
			pairs[0].Left.Name, pairs[0].Right.Name)
	}
}

func TestGenerate_SwissForcedBye(t *testing.T) {
	a := mustFighter(t, "Anna", fighter.Male)
	b := mustFighter(t, "Boris", fighter.Male)
	a.Opponents = []string{b.ID}

	pairs := pairing.Generate([]fighter.Participant{a, b}, false, true, nil)
	if len(pairs) != 2 {
		t.Fatalf("Expected 2 bye pairs, got %d", len(pairs))
	}
	for _, pair := range pairs {
		if !pair.HasBye() {
			t.Errorf("Expected only bye pairs once everyone has met, got %s vs %s",
				pair.Left.Name, pair.Right.Name)
		}
	}
}
