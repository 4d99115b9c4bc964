// Package pairing produces one round of duels from a participant list.
//
// Two strategies are supported: elimination pairing over a uniform random
// shuffle, and accumulating-score (Swiss) pairing that avoids rematches.
package pairing

import (
	"math/rand"
	"sort"

	"github.com/fencerfight/tourney/src/domain/fighter"
)

// Generate builds a round of pairs from the given participants.
//
// With accumulating=false the list is shuffled uniformly and adjacent entries
// are paired; an odd leftover fights a bye inheriting their gender. With
// accumulating=true participants are ranked by buchholz + 0.5*draws and each
// one is greedily matched to the first lower-ranked opponent they have not yet
// faced. The greedy matching is best-effort: it may force avoidable byes when
// the sort order is adversarial, which is a known limitation of the system
// rather than a bug.
//
// When sameGenderOnly is set both strategies run per gender group. Pairs
// containing a bye are moved to the end of the round without disturbing the
// relative order of the rest.
func Generate(participants []fighter.Participant, sameGenderOnly, accumulating bool, rng *rand.Rand) []fighter.Pair {
	var pairs []fighter.Pair
	if accumulating {
		pairs = generateSwiss(participants, sameGenderOnly)
	} else {
		pairs = generateElimination(participants, sameGenderOnly, rng)
	}

	// Bye pairs go last; stable so real pairs keep their order.
	sort.SliceStable(pairs, func(i, j int) bool {
		return !pairs[i].HasBye() && pairs[j].HasBye()
	})
	return pairs
}

func generateElimination(participants []fighter.Participant, sameGenderOnly bool, rng *rand.Rand) []fighter.Pair {
	shuffled := make([]fighter.Participant, len(participants))
	copy(shuffled, participants)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var pairs []fighter.Pair
	for _, group := range splitGroups(shuffled, sameGenderOnly) {
		pairs = append(pairs, pairAdjacent(group)...)
	}
	return pairs
}

// pairAdjacent pairs consecutive entries and gives an odd leftover a bye.
func pairAdjacent(group []fighter.Participant) []fighter.Pair {
	var pairs []fighter.Pair
	for i := 0; i+1 < len(group); i += 2 {
		pairs = append(pairs, fighter.Pair{Left: group[i], Right: group[i+1]})
	}
	if len(group)%2 != 0 {
		last := group[len(group)-1]
		pairs = append(pairs, fighter.Pair{Left: last, Right: fighter.Bye(last.Gender)})
	}
	return pairs
}

func generateSwiss(participants []fighter.Participant, sameGenderOnly bool) []fighter.Pair {
	sorted := make([]fighter.Participant, len(participants))
	copy(sorted, participants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SwissScore() > sorted[j].SwissScore()
	})

	var pairs []fighter.Pair
	for _, group := range splitGroups(sorted, sameGenderOnly) {
		pairs = append(pairs, pairSwissGroup(group)...)
	}
	return pairs
}

// pairSwissGroup matches each unused participant with the first unused one
// further down the ranking whom they have not already faced, in either
// direction. Participants with no unplayed opponent left get a bye.
func pairSwissGroup(group []fighter.Participant) []fighter.Pair {
	used := make(map[string]bool, len(group))
	var pairs []fighter.Pair
	for i, p1 := range group {
		if used[p1.ID] {
			continue
		}
		found := -1
		for j := i + 1; j < len(group); j++ {
			p2 := group[j]
			if used[p2.ID] {
				continue
			}
			if p1.HasFaced(p2.ID) || p2.HasFaced(p1.ID) {
				continue
			}
			found = j
			break
		}
		if found >= 0 {
			pairs = append(pairs, fighter.Pair{Left: p1, Right: group[found]})
			used[p1.ID] = true
			used[group[found].ID] = true
		} else {
			pairs = append(pairs, fighter.Pair{Left: p1, Right: fighter.Bye(p1.Gender)})
			used[p1.ID] = true
		}
	}
	return pairs
}

func splitGroups(participants []fighter.Participant, sameGenderOnly bool) [][]fighter.Participant {
	if !sameGenderOnly {
		return [][]fighter.Participant{participants}
	}
	var males, females []fighter.Participant
	for _, p := range participants {
		if p.Gender == fighter.Male {
			males = append(males, p)
		} else {
			females = append(females, p)
		}
	}
	return [][]fighter.Participant{males, females}
}
