// Package pool runs one pool's lifecycle: roster collection, round
// generation, result recording and the continue-or-end decision.
package pool

import (
	"math/rand"
	"sort"

	"github.com/fencerfight/tourney/src/domain/fighter"
	"github.com/fencerfight/tourney/src/domain/pairing"
)

// State is the pool lifecycle state.
type State string

const (
	StateCollecting State = "collecting"
	StateRound      State = "round"
	StateEnded      State = "ended"
)

// Pool is an independently progressing group of fighters, e.g. a weight
// class. Pools run in parallel and never interact until playoff seeding.
type Pool struct {
	Fighters []fighter.Participant `json:"participants"`
	Pairs    []fighter.Pair        `json:"fighterPairs"`
	Ledger   [][]fighter.Pair      `json:"duels"`
	State    State                 `json:"state"`
	Eligible bool                  `json:"playoffEligible"`
	// PairIndex selects the pair currently on the piste.
	PairIndex int `json:"currentPairIndex"`
	// Winners holds the top three fighter names once the pool has ended.
	Winners []string `json:"winners,omitempty"`
}

// New returns an empty pool collecting participants.
func New() *Pool {
	return &Pool{State: StateCollecting}
}

// AddFighter registers a fighter. Registration is only possible before the
// first round is generated.
func (p *Pool) AddFighter(f fighter.Participant) error {
	if p.State == StateEnded {
		return ErrPoolEnded
	}
	if p.State == StateRound {
		return ErrRoundInProgress
	}
	p.Fighters = append(p.Fighters, f)
	return nil
}

// RemoveFighter drops a fighter from the roster before pairing starts.
func (p *Pool) RemoveFighter(id string) error {
	if p.State == StateRound {
		return ErrRoundInProgress
	}
	for i, f := range p.Fighters {
		if f.ID == id {
			p.Fighters = append(p.Fighters[:i], p.Fighters[i+1:]...)
			return nil
		}
	}
	return fighter.ErrFighterNotFound
}

// StartRound generates the first round from the roster and clears any
// previous tournament history in this pool. An ended pool stays ended; its
// ledger and winners are final.
func (p *Pool) StartRound(sameGenderOnly, accumulating bool, rng *rand.Rand) error {
	if p.State == StateEnded {
		return ErrPoolEnded
	}
	if len(realFighters(p.Fighters)) < 2 {
		return ErrNotEnoughFighters
	}
	p.Ledger = nil
	p.Eligible = false
	p.Winners = nil
	p.Pairs = pairing.Generate(p.Fighters, sameGenderOnly, accumulating, rng)
	p.PairIndex = 0
	p.State = StateRound
	return nil
}

// EndStage finalizes the current round: it is appended to the ledger exactly
// once, survivors are computed and either a new round is generated or the
// pool ends.
//
// Elimination keeps each pair's winner (wins and scores zeroed) and the
// partner of every bye; the pool ends when fewer than two survivors remain.
// Round-robin keeps everyone, folds the round's wins into buchholz, and ends
// when the next generated round consists of bye pairs only, meaning every
// remaining fighter has already faced everyone.
func (p *Pool) EndStage(sameGenderOnly, accumulating bool, rng *rand.Rand) error {
	if p.State == StateEnded {
		return ErrPoolEnded
	}
	if p.State != StateRound {
		return ErrNoRound
	}
	for _, pair := range p.Pairs {
		if !pair.Resolved() {
			return ErrUnresolvedBouts
		}
	}

	round := make([]fighter.Pair, len(p.Pairs))
	copy(round, p.Pairs)
	p.Ledger = append(p.Ledger, round)

	var survivors []fighter.Participant
	if accumulating {
		survivors = robinSurvivors(p.Pairs)
	} else {
		survivors = eliminationSurvivors(p.Pairs)
	}

	if !accumulating && len(realFighters(survivors)) < 2 {
		p.end()
		return nil
	}

	next := pairing.Generate(survivors, sameGenderOnly, accumulating, rng)
	if accumulating && allByePairs(next) {
		p.end()
		return nil
	}

	p.Fighters = survivors
	p.Pairs = next
	p.PairIndex = 0
	return nil
}

// end transitions the pool into its terminal state exactly once.
func (p *Pool) end() {
	p.Winners = TopThree(p.Ledger)
	p.Pairs = nil
	p.Eligible = true
	p.State = StateEnded
}

// eliminationSurvivors keeps bye partners as-is and each real pair's winner
// with per-stage counters reset. A tie on wins favors the right fighter,
// matching the recorded-winner convention.
func eliminationSurvivors(pairs []fighter.Pair) []fighter.Participant {
	var out []fighter.Participant
	for _, pair := range pairs {
		switch {
		case pair.Left.IsBye():
			out = append(out, pair.Right)
		case pair.Right.IsBye():
			out = append(out, pair.Left)
		default:
			winner := pair.Right
			if pair.Left.Wins > pair.Right.Wins {
				winner = pair.Left
			}
			winner.Wins = 0
			winner.Scores = 0
			out = append(out, winner)
		}
	}
	return out
}

// robinSurvivors keeps both sides of every pair, folding the stage's wins
// into the buchholz accumulator.
func robinSurvivors(pairs []fighter.Pair) []fighter.Participant {
	var out []fighter.Participant
	for _, pair := range pairs {
		for _, f := range []fighter.Participant{pair.Left, pair.Right} {
			f.Buchholz += float64(f.Wins)
			f.Wins = 0
			f.Scores = 0
			out = append(out, f)
		}
	}
	return out
}

func allByePairs(pairs []fighter.Pair) bool {
	for _, pair := range pairs {
		if !pair.HasBye() {
			return false
		}
	}
	return len(pairs) > 0
}

func realFighters(participants []fighter.Participant) []fighter.Participant {
	var out []fighter.Participant
	for _, f := range participants {
		if !f.IsBye() {
			out = append(out, f)
		}
	}
	return out
}

// TopThree ranks fighters by total wins across the given rounds and returns
// the top three names, padded with empty strings below three fighters. Ties
// keep encounter order: the fighter who reached the shared win count first in
// ledger order places higher.
func TopThree(rounds [][]fighter.Pair) []string {
	type tally struct {
		name string
		wins int
	}
	var order []string
	wins := make(map[string]*tally)
	for _, round := range rounds {
		for _, pair := range round {
			for _, f := range []fighter.Participant{pair.Left, pair.Right} {
				if f.IsBye() {
					continue
				}
				t, ok := wins[f.Name]
				if !ok {
					t = &tally{name: f.Name}
					wins[f.Name] = t
					order = append(order, f.Name)
				}
				t.wins += f.Wins
			}
		}
	}

	ranked := make([]*tally, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, wins[name])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].wins > ranked[j].wins
	})

	top := make([]string, 3)
	for i := 0; i < 3 && i < len(ranked); i++ {
		top[i] = ranked[i].name
	}
	return top
}
