package tournament

import (
	"github.com/fencerfight/tourney/src/domain/fighter"
	"github.com/fencerfight/tourney/src/domain/playoff"
	"github.com/fencerfight/tourney/src/domain/pool"
)

// Snapshot is the full tournament state as pool-indexed collections. A nil
// collection means "not carried": applying the snapshot leaves the matching
// local collection untouched. Populated collections replace local state
// wholesale, last writer wins.
type Snapshot struct {
	Fighters [][]fighter.Participant `json:"participants,omitempty"`
	Pairs    [][]fighter.Pair        `json:"fighterPairs,omitempty"`
	Duels    [][][]fighter.Pair      `json:"duels,omitempty"`
	Playoff  []playoff.Round         `json:"playoff,omitempty"`
	Eligible []bool                  `json:"playoffEligible,omitempty"`
}

// PoolSlice is one pool's slice of every collection.
type PoolSlice struct {
	Fighters []fighter.Participant `json:"participants"`
	Pairs    []fighter.Pair        `json:"fighterPairs"`
	Duels    [][]fighter.Pair      `json:"duels"`
	Eligible bool                  `json:"playoffEligible"`
}

// Snapshot exports the complete state for a full-sync message.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Fighters: make([][]fighter.Participant, len(s.pools)),
		Pairs:    make([][]fighter.Pair, len(s.pools)),
		Duels:    make([][][]fighter.Pair, len(s.pools)),
		Eligible: make([]bool, len(s.pools)),
	}
	for i, p := range s.pools {
		snap.Fighters[i] = append([]fighter.Participant(nil), p.Fighters...)
		snap.Pairs[i] = append([]fighter.Pair(nil), p.Pairs...)
		snap.Duels[i] = copyLedger(p.Ledger)
		snap.Eligible[i] = p.Eligible
	}
	if s.bracket != nil {
		snap.Playoff = copyRounds(s.bracket.Rounds)
	}
	return snap
}

// ApplySnapshot overwrites every collection the snapshot carries. The fighter
// collection, when present, is authoritative for the pool count; other
// collections only grow the pool list as far as they reach.
func (s *Service) ApplySnapshot(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Fighters != nil {
		s.resizePools(len(snap.Fighters))
		for i, fighters := range snap.Fighters {
			s.pools[i].Fighters = fighters
		}
	}
	if snap.Pairs != nil {
		s.growPools(len(snap.Pairs))
		for i, pairs := range snap.Pairs {
			s.pools[i].Pairs = pairs
		}
	}
	if snap.Duels != nil {
		s.growPools(len(snap.Duels))
		for i, ledger := range snap.Duels {
			s.pools[i].Ledger = ledger
		}
	}
	if snap.Eligible != nil {
		s.growPools(len(snap.Eligible))
		for i, eligible := range snap.Eligible {
			s.pools[i].Eligible = eligible
		}
	}
	if snap.Playoff != nil {
		s.bracket = &playoff.Bracket{Rounds: snap.Playoff}
		s.completed = false
	}
	for _, p := range s.pools {
		deriveState(p)
	}
	if s.current >= len(s.pools) {
		s.current = len(s.pools) - 1
	}
}

// PoolSlice exports one pool's slice of every collection for a partial sync.
func (s *Service) PoolSlice(index int) (PoolSlice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.pools) {
		return PoolSlice{}, ErrNoSuchPool
	}
	p := s.pools[index]
	return PoolSlice{
		Fighters: append([]fighter.Participant(nil), p.Fighters...),
		Pairs:    append([]fighter.Pair(nil), p.Pairs...),
		Duels:    copyLedger(p.Ledger),
		Eligible: p.Eligible,
	}, nil
}

// ApplyPoolSlice replaces the addressed pool's slice in each collection,
// leaving every other pool untouched. The pool list grows as needed to
// contain the index.
func (s *Service) ApplyPoolSlice(index int, slice PoolSlice) error {
	if index < 0 {
		return ErrNoSuchPool
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.growPools(index + 1)
	p := s.pools[index]
	p.Fighters = slice.Fighters
	p.Pairs = slice.Pairs
	p.Ledger = slice.Duels
	p.Eligible = slice.Eligible
	deriveState(p)
	return nil
}

// deriveState reconstructs the lifecycle state from synced collections.
func deriveState(p *pool.Pool) {
	switch {
	case p.Eligible:
		p.State = pool.StateEnded
	case len(p.Pairs) > 0:
		p.State = pool.StateRound
	default:
		p.State = pool.StateCollecting
	}
	if p.PairIndex >= len(p.Pairs) {
		p.PairIndex = 0
	}
}

func (s *Service) growPools(n int) {
	for len(s.pools) < n {
		s.pools = append(s.pools, pool.New())
	}
}

func (s *Service) resizePools(n int) {
	if n < 1 {
		n = 1
	}
	s.growPools(n)
	s.pools = s.pools[:n]
}

func copyLedger(ledger [][]fighter.Pair) [][]fighter.Pair {
	out := make([][]fighter.Pair, len(ledger))
	for i, round := range ledger {
		out[i] = append([]fighter.Pair(nil), round...)
	}
	return out
}

func copyRounds(rounds []playoff.Round) []playoff.Round {
	out := make([]playoff.Round, len(rounds))
	for i, round := range rounds {
		out[i] = append(playoff.Round(nil), round...)
	}
	return out
}
