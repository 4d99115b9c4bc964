package playoff

import (
	"sort"

	"github.com/fencerfight/tourney/src/domain/fighter"
)

// Entrant is the ranking-focused projection of a fighter aggregated across a
// pool's duel ledger.
type Entrant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Scores int    `json:"scores"`
	Wins   int    `json:"wins"`
	// DifferenceWinsLosses accumulates own minus opponent scores over every
	// recorded encounter.
	DifferenceWinsLosses float64 `json:"differenceWinsLosses"`
	// RatioWinsLosses accumulates a sum of per-encounter score ratios. The
	// accumulator is additive and never normalized; downstream sorting
	// depends on this exact semantic.
	RatioWinsLosses float64 `json:"ratioWinsLosses"`
	Warnings        int     `json:"warnings"`
	Protests        int     `json:"protests"`
	DoubleHits      int     `json:"doubleHits"`
}

// stronger orders entrants by difference, then wins, then ratio, descending.
func stronger(a, b Entrant) bool {
	if a.DifferenceWinsLosses != b.DifferenceWinsLosses {
		return a.DifferenceWinsLosses > b.DifferenceWinsLosses
	}
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	return a.RatioWinsLosses > b.RatioWinsLosses
}

// Qualify folds every pool's duel ledger into one entrant per unique fighter
// and applies the weakest-elimination policy.
//
// With perPool=true the eliminateCount weakest of each pool are dropped and
// the survivors concatenated; otherwise all pools are merged first and the
// weakest eliminateCount dropped once globally. The returned order is not
// sorted; bracket seeding re-sorts.
func Qualify(ledgers [][][]fighter.Pair, eliminateCount int, perPool bool) []Entrant {
	perPoolEntrants := make([][]Entrant, len(ledgers))
	for poolIdx, ledger := range ledgers {
		perPoolEntrants[poolIdx] = foldLedger(ledger)
	}

	var out []Entrant
	if perPool {
		for _, entrants := range perPoolEntrants {
			out = append(out, dropWeakest(entrants, eliminateCount)...)
		}
		return out
	}
	for _, entrants := range perPoolEntrants {
		out = append(out, entrants...)
	}
	return dropWeakest(out, eliminateCount)
}

// foldLedger aggregates every non-bye pair of every recorded round,
// deduplicated by fighter id.
func foldLedger(ledger [][]fighter.Pair) []Entrant {
	var entrants []Entrant
	index := make(map[string]int)
	for _, round := range ledger {
		for _, pair := range round {
			if pair.HasBye() {
				continue
			}
			sides := [2]fighter.Participant{pair.Left, pair.Right}
			for s, own := range sides {
				opp := sides[1-s]
				diff := float64(own.Scores - opp.Scores)
				// A shut-out opponent yields +Inf, a 0-0 bout NaN. Both are
				// kept as-is; ratio is the last tie-break and NaN compares
				// false either way.
				ratio := float64(own.Scores) / float64(opp.Scores)
				if i, ok := index[own.ID]; ok {
					entrants[i].Wins += own.Wins
					entrants[i].DifferenceWinsLosses += diff
					entrants[i].RatioWinsLosses += ratio
					continue
				}
				index[own.ID] = len(entrants)
				entrants = append(entrants, Entrant{
					ID:                   own.ID,
					Name:                 own.Name,
					Wins:                 own.Wins,
					DifferenceWinsLosses: diff,
					RatioWinsLosses:      ratio,
					Warnings:             own.Warnings,
					Protests:             own.Protests,
					DoubleHits:           own.DoubleHits,
				})
			}
		}
	}
	return entrants
}

// dropWeakest removes count entrants from the weak end of the strength order.
func dropWeakest(entrants []Entrant, count int) []Entrant {
	sorted := make([]Entrant, len(entrants))
	copy(sorted, entrants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return stronger(sorted[i], sorted[j])
	})
	keep := len(sorted) - count
	if keep < 0 {
		keep = 0
	}
	return sorted[:keep]
}
