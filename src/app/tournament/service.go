// Package tournament hosts the controller that owns all tournament state.
//
// Every operator action and every sync merge funnels through one Service, so
// state mutation stays single-writer-at-a-time without hidden globals.
package tournament

import (
	"math/rand"
	"sync"
	"time"

	"github.com/fencerfight/tourney/src/domain/fighter"
	"github.com/fencerfight/tourney/src/domain/playoff"
	"github.com/fencerfight/tourney/src/domain/pool"
	"github.com/fencerfight/tourney/src/domain/shared"
)

// Settings are the pairing options applied to every pool.
type Settings struct {
	SameGenderOnly bool `json:"sameGenderOnly"`
	Accumulating   bool `json:"accumulating"`
}

// Service coordinates pools, the playoff bracket and their lifecycle. All
// methods serialize on an internal mutex; each call runs to completion before
// the next is dispatched.
type Service struct {
	Clock func() time.Time

	mu        sync.Mutex
	settings  Settings
	pools     []*pool.Pool
	bracket   *playoff.Bracket
	current   int
	rng       *rand.Rand
	completed bool
	// onComplete fires exactly once per terminal bracket.
	onComplete func(playoff.Podium)
}

// NewService creates a controller with one empty pool.
func NewService(settings Settings) *Service {
	return &Service{
		Clock:    func() time.Time { return time.Now().UTC() },
		settings: settings,
		pools:    []*pool.Pool{pool.New()},
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetSeed fixes the pairing shuffle seed. Used by tests.
func (s *Service) SetSeed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rand.New(rand.NewSource(seed))
}

// OnComplete registers the tournament-completion callback.
func (s *Service) OnComplete(fn func(playoff.Podium)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = fn
}

// Settings returns the active pairing options.
func (s *Service) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the pairing options for subsequent rounds.
func (s *Service) UpdateSettings(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// AddPool appends an empty pool and returns its index.
func (s *Service) AddPool() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools = append(s.pools, pool.New())
	return len(s.pools) - 1
}

// DeletePool removes a pool. Pool 0 is protected; the current-pool selector
// shifts down when a pool at or below it is removed.
func (s *Service) DeletePool(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index == 0 {
		return ErrPoolProtected
	}
	if index < 0 || index >= len(s.pools) {
		return ErrNoSuchPool
	}
	s.pools = append(s.pools[:index], s.pools[index+1:]...)
	if index <= s.current && s.current > 0 {
		s.current--
	}
	return nil
}

// PoolCount returns the number of pools.
func (s *Service) PoolCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pools)
}

// SelectPool switches the operator's current pool.
func (s *Service) SelectPool(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.pools) {
		return ErrNoSuchPool
	}
	s.current = index
	return nil
}

// CurrentPool returns the operator's current pool index.
func (s *Service) CurrentPool() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// AddFighter registers a new fighter in the given pool.
func (s *Service) AddFighter(poolIdx int, name string, gender fighter.Gender) (fighter.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.poolAt(poolIdx)
	if err != nil {
		return fighter.Participant{}, err
	}
	f, err := fighter.NewParticipant(name, gender)
	if err != nil {
		return fighter.Participant{}, err
	}
	if err := p.AddFighter(f); err != nil {
		return fighter.Participant{}, err
	}
	return f, nil
}

// RemoveFighter drops a fighter from a pool before pairing starts.
func (s *Service) RemoveFighter(poolIdx int, id string) error {
	if err := shared.FighterID(id).Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.poolAt(poolIdx)
	if err != nil {
		return err
	}
	return p.RemoveFighter(id)
}

// StartPool generates the first round for a pool.
func (s *Service) StartPool(poolIdx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.poolAt(poolIdx)
	if err != nil {
		return err
	}
	return p.StartRound(s.settings.SameGenderOnly, s.settings.Accumulating, s.rng)
}

// SelectPair moves the pool's current-pair selector.
func (s *Service) SelectPair(poolIdx, pairIdx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.poolAt(poolIdx)
	if err != nil {
		return err
	}
	if pairIdx < 0 || pairIdx >= len(p.Pairs) {
		return ErrNoSuchPair
	}
	p.PairIndex = pairIdx
	return nil
}

// BoutResult carries one finished bout of a pool round.
type BoutResult struct {
	PoolIndex     int `json:"poolIndex"`
	PairIndex     int `json:"pairIndex"`
	ScoreLeft     int `json:"scoreLeft"`
	ScoreRight    int `json:"scoreRight"`
	WarningsLeft  int `json:"warningsLeft"`
	WarningsRight int `json:"warningsRight"`
	ProtestsLeft  int `json:"protestsLeft"`
	ProtestsRight int `json:"protestsRight"`
	DoubleHits    int `json:"doubleHits"`
}

// RecordBout applies a bout result to the addressed pair. Equal scores are a
// draw; otherwise the higher score wins and the lower side takes a loss. Both
// sides record each other in their played-against history.
func (s *Service) RecordBout(res BoutResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.poolAt(res.PoolIndex)
	if err != nil {
		return err
	}
	if res.PairIndex < 0 || res.PairIndex >= len(p.Pairs) {
		return ErrNoSuchPair
	}
	pair := &p.Pairs[res.PairIndex]
	if pair.HasBye() {
		return ErrByeBout
	}

	left, right := &pair.Left, &pair.Right
	switch {
	case res.ScoreLeft == res.ScoreRight:
		left.RecordDraw(res.ScoreLeft, right.ID, res.WarningsLeft, res.ProtestsLeft, res.DoubleHits)
		right.RecordDraw(res.ScoreRight, left.ID, res.WarningsRight, res.ProtestsRight, res.DoubleHits)
	case res.ScoreLeft > res.ScoreRight:
		left.RecordWin(res.ScoreLeft, right.ID, res.WarningsLeft, res.ProtestsLeft, res.DoubleHits)
		right.RecordLoss(res.ScoreRight, left.ID, res.WarningsRight, res.ProtestsRight, res.DoubleHits)
	default:
		right.RecordWin(res.ScoreRight, left.ID, res.WarningsRight, res.ProtestsRight, res.DoubleHits)
		left.RecordLoss(res.ScoreLeft, right.ID, res.WarningsLeft, res.ProtestsLeft, res.DoubleHits)
	}
	return nil
}

// EndStage finalizes the current round of a pool and either generates the
// next round or ends the pool.
func (s *Service) EndStage(poolIdx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.poolAt(poolIdx)
	if err != nil {
		return err
	}
	return p.EndStage(s.settings.SameGenderOnly, s.settings.Accumulating, s.rng)
}

// PoolView returns a copy of the addressed pool for read-only use.
func (s *Service) PoolView(poolIdx int) (pool.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.poolAt(poolIdx)
	if err != nil {
		return pool.Pool{}, err
	}
	return *p, nil
}

// StartPlayoff seeds the bracket from every pool's duel ledger. All pools
// must have ended.
func (s *Service) StartPlayoff(eliminateCount int, perPool bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ledgers := make([][][]fighter.Pair, 0, len(s.pools))
	for _, p := range s.pools {
		if !p.Eligible {
			return ErrPoolsNotFinished
		}
		ledgers = append(ledgers, p.Ledger)
	}
	entrants := playoff.Qualify(ledgers, eliminateCount, perPool)
	bracket, err := playoff.NewBracket(entrants)
	if err != nil {
		return err
	}
	s.bracket = bracket
	s.completed = false
	return nil
}

// Bracket returns a copy of the playoff bracket.
func (s *Service) Bracket() (playoff.Bracket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bracket == nil {
		return playoff.Bracket{}, ErrNoPlayoff
	}
	return *s.bracket, nil
}

// RecordPlayoffBout stores a bracket match result and reports completion when
// the terminal round resolves.
func (s *Service) RecordPlayoffBout(roundIdx, matchIdx, scoreLeft, scoreRight int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bracket == nil {
		return ErrNoPlayoff
	}
	if err := s.bracket.RecordResult(roundIdx, matchIdx, scoreLeft, scoreRight); err != nil {
		return err
	}
	s.checkCompletion()
	return nil
}

// SetPlayoffWinner records a bracket winner without scores.
func (s *Service) SetPlayoffWinner(roundIdx, matchIdx, side int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bracket == nil {
		return ErrNoPlayoff
	}
	if err := s.bracket.SetWinner(roundIdx, matchIdx, side); err != nil {
		return err
	}
	s.checkCompletion()
	return nil
}

// AdvancePlayoff appends the next bracket round once every match of the
// current round has a winner.
func (s *Service) AdvancePlayoff() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bracket == nil {
		return ErrNoPlayoff
	}
	return s.bracket.Advance()
}

// PodiumResult derives the final placement from a completed bracket.
func (s *Service) PodiumResult() (playoff.Podium, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bracket == nil {
		return playoff.Podium{}, ErrNoPlayoff
	}
	return s.bracket.FinalPodium()
}

// checkCompletion fires the completion callback exactly once per terminal
// bracket; recomputing the podium afterwards stays allowed.
func (s *Service) checkCompletion() {
	if s.completed || s.bracket == nil || !s.bracket.Complete() {
		return
	}
	s.completed = true
	if s.onComplete == nil {
		return
	}
	podium, err := s.bracket.FinalPodium()
	if err != nil {
		return
	}
	s.onComplete(podium)
}

func (s *Service) poolAt(index int) (*pool.Pool, error) {
	if index < 0 || index >= len(s.pools) {
		return nil, ErrNoSuchPool
	}
	return s.pools[index], nil
}
