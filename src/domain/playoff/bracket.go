// Package playoff builds single-elimination brackets from cross-pool
// qualification and advances them round by round to a podium.
package playoff

import "sort"

// NoWinner marks a match whose winner has not been recorded.
const NoWinner = -1

// Match is one bracket duel. Winner is 0 for the left entrant, 1 for the
// right, NoWinner while undecided.
type Match struct {
	Left   Entrant `json:"left"`
	Right  Entrant `json:"right"`
	Winner int     `json:"winner"`
}

// Round is one bracket column.
type Round []Match

// Bracket is an ordered sequence of rounds. Round 0 is seeded; every later
// round derives from the recorded winners of the previous one. The terminal
// round is either a single final pair, or a final plus third-place pair that
// follows a semifinal of exactly two pairs.
type Bracket struct {
	Rounds []Round `json:"rounds"`
}

// Podium is the final placement of a completed bracket. Third and Fourth are
// nil for a simple two-entrant final.
type Podium struct {
	First  *Entrant `json:"first"`
	Second *Entrant `json:"second"`
	Third  *Entrant `json:"third,omitempty"`
	Fourth *Entrant `json:"fourth,omitempty"`
}

// NewBracket seeds the first round strongest-versus-weakest: entrants are
// sorted by strength and entry i meets entry len-1-i. Odd entrant counts are
// rejected; there is no bye path inside the bracket.
func NewBracket(entrants []Entrant) (*Bracket, error) {
	if len(entrants) < 2 {
		return nil, ErrTooFewEntrants
	}
	if len(entrants)%2 != 0 {
		return nil, ErrOddEntrants
	}

	sorted := make([]Entrant, len(entrants))
	copy(sorted, entrants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return stronger(sorted[i], sorted[j])
	})

	round := make(Round, 0, len(sorted)/2)
	for i := 0; i < len(sorted)/2; i++ {
		round = append(round, Match{
			Left:   sorted[i],
			Right:  sorted[len(sorted)-1-i],
			Winner: NoWinner,
		})
	}
	return &Bracket{Rounds: []Round{round}}, nil
}

// RecordResult stores a match outcome in the given round: scores overwrite
// both sides, wins and the per-match score difference follow from the
// comparison. Equal scores leave the winner undecided; playoff bouts are
// refought until someone wins.
func (b *Bracket) RecordResult(roundIdx, matchIdx, scoreLeft, scoreRight int) error {
	if roundIdx < 0 || roundIdx >= len(b.Rounds) {
		return ErrNoSuchMatch
	}
	round := b.Rounds[roundIdx]
	if matchIdx < 0 || matchIdx >= len(round) {
		return ErrNoSuchMatch
	}

	m := &round[matchIdx]
	m.Left.Scores = scoreLeft
	m.Left.Wins = btoi(scoreLeft > scoreRight)
	m.Left.DifferenceWinsLosses = float64(scoreLeft - scoreRight)
	m.Right.Scores = scoreRight
	m.Right.Wins = btoi(scoreRight > scoreLeft)
	m.Right.DifferenceWinsLosses = float64(scoreRight - scoreLeft)

	switch {
	case scoreLeft > scoreRight:
		m.Winner = 0
	case scoreRight > scoreLeft:
		m.Winner = 1
	default:
		m.Winner = NoWinner
	}
	return nil
}

// SetWinner records a winner directly, without scores.
func (b *Bracket) SetWinner(roundIdx, matchIdx, side int) error {
	if roundIdx < 0 || roundIdx >= len(b.Rounds) {
		return ErrNoSuchMatch
	}
	round := b.Rounds[roundIdx]
	if matchIdx < 0 || matchIdx >= len(round) {
		return ErrNoSuchMatch
	}
	if side != 0 && side != 1 {
		return ErrNoSuchMatch
	}
	round[matchIdx].Winner = side
	return nil
}

// Advance derives the next round from the last one. Every match of the last
// round must have a recorded winner.
//
// With more than two pairs the winners of adjacent matches meet, stats reset.
// The first time exactly two pairs appear the round is the semifinal: its
// winners form the final and its losers the third-place decider, appended
// together as one two-pair round. A two-pair round preceded by another
// two-pair round is the final round, and a single-pair round is a simple
// final; both are terminal.
func (b *Bracket) Advance() error {
	if len(b.Rounds) == 0 {
		return ErrRoundIncomplete
	}
	last := b.Rounds[len(b.Rounds)-1]
	for _, m := range last {
		if m.Winner == NoWinner {
			return ErrRoundIncomplete
		}
	}

	switch {
	case len(last) > 2:
		var next Round
		for i := 0; i+1 < len(last); i += 2 {
			next = append(next, Match{
				Left:   resetEntrant(winnerOf(last[i])),
				Right:  resetEntrant(winnerOf(last[i+1])),
				Winner: NoWinner,
			})
		}
		b.Rounds = append(b.Rounds, next)
		return nil
	case len(last) == 2 && !b.afterSemifinal():
		final := Match{
			Left:   resetEntrant(winnerOf(last[0])),
			Right:  resetEntrant(winnerOf(last[1])),
			Winner: NoWinner,
		}
		thirdPlace := Match{
			Left:   resetEntrant(loserOf(last[0])),
			Right:  resetEntrant(loserOf(last[1])),
			Winner: NoWinner,
		}
		b.Rounds = append(b.Rounds, Round{final, thirdPlace})
		return nil
	default:
		return ErrBracketComplete
	}
}

// afterSemifinal reports whether the last round is the two-pair final round,
// i.e. the round before it was also a two-pair round.
func (b *Bracket) afterSemifinal() bool {
	n := len(b.Rounds)
	return n >= 2 && len(b.Rounds[n-1]) == 2 && len(b.Rounds[n-2]) == 2
}

// Complete reports whether the bracket has reached a terminal round with all
// winners recorded.
func (b *Bracket) Complete() bool {
	if len(b.Rounds) == 0 {
		return false
	}
	last := b.Rounds[len(b.Rounds)-1]
	for _, m := range last {
		if m.Winner == NoWinner {
			return false
		}
	}
	return len(last) == 1 || b.afterSemifinal()
}

// FinalPodium derives the placement from the terminal round. Recomputation is
// idempotent; callers guard against duplicate completion side effects.
func (b *Bracket) FinalPodium() (Podium, error) {
	if !b.Complete() {
		return Podium{}, ErrBracketIncomplete
	}
	last := b.Rounds[len(b.Rounds)-1]

	if len(last) == 1 {
		first := winnerOf(last[0])
		second := loserOf(last[0])
		return Podium{First: &first, Second: &second}, nil
	}

	first := winnerOf(last[0])
	second := loserOf(last[0])
	third := winnerOf(last[1])
	fourth := loserOf(last[1])
	return Podium{First: &first, Second: &second, Third: &third, Fourth: &fourth}, nil
}

func winnerOf(m Match) Entrant {
	if m.Winner == 1 {
		return m.Right
	}
	return m.Left
}

func loserOf(m Match) Entrant {
	if m.Winner == 1 {
		return m.Left
	}
	return m.Right
}

func resetEntrant(e Entrant) Entrant {
	e.Scores = 0
	e.Wins = 0
	return e
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
