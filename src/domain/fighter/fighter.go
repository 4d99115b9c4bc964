package fighter

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Gender splits pools into independent pairing groups when same-gender
// pairing is enabled.
type Gender int

const (
	Male Gender = iota
	Female
)

// ByeName marks the placeholder opponent injected for odd participant counts.
// A bye never carries ranking information.
const ByeName = "—"

// byeID is shared by every bye sentinel; byes are interchangeable.
const byeID = "null"

// Participant is a fighter registered in one pool. Identity is ID, generated
// once at creation and stable for the participant's lifetime.
type Participant struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Gender     Gender   `json:"gender"`
	Wins       int      `json:"wins"`
	Scores     int      `json:"scores"`
	Losses     int      `json:"losses"`
	Draws      int      `json:"draws"`
	Warnings   int      `json:"warnings"`
	Protests   int      `json:"protests"`
	DoubleHits int      `json:"doubleHits"`
	Opponents  []string `json:"opponents"`
	Buchholz   float64  `json:"buchholz"`
}

// NewParticipant creates a fighter with a freshly generated identity.
func NewParticipant(name string, gender Gender) (Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Participant{}, ErrNameRequired
	}
	return Participant{
		ID:     NewID(name),
		Name:   name,
		Gender: gender,
	}, nil
}

// NewID derives a participant identity from the name, the creation instant
// and a random suffix. The same name imported twice still yields distinct ids.
func NewID(name string) string {
	suffix := uuid.Must(uuid.NewV4()).String()[:8]
	return fmt.Sprintf("%s-%d-%s", slug(name), time.Now().UnixMilli(), suffix)
}

func slug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

// Bye returns the sentinel opponent for a fighter left without a match this
// round. It inherits the gender of the fighter it is paired with.
func Bye(gender Gender) Participant {
	return Participant{ID: byeID, Name: ByeName, Gender: gender}
}

// IsBye reports whether the participant is the bye sentinel.
func (p Participant) IsBye() bool {
	return p.Name == ByeName
}

// HasFaced reports whether the fighter already met the given opponent in this
// pool. The pairing generator checks both directions.
func (p Participant) HasFaced(id string) bool {
	for _, opp := range p.Opponents {
		if opp == id {
			return true
		}
	}
	return false
}

// SwissScore is the accumulating-score pairing key.
func (p Participant) SwissScore() float64 {
	return p.Buchholz + 0.5*float64(p.Draws)
}

// RecordWin applies a won bout: the score total is overwritten, the opponent
// is appended to the played-against history and the bout conduct counters are
// overwritten from the bout.
func (p *Participant) RecordWin(score int, opponentID string, warnings, protests, doubleHits int) {
	p.Wins++
	p.applyBout(score, opponentID, warnings, protests, doubleHits)
}

// RecordLoss applies a lost bout.
func (p *Participant) RecordLoss(score int, opponentID string, warnings, protests, doubleHits int) {
	p.Losses++
	p.applyBout(score, opponentID, warnings, protests, doubleHits)
}

// RecordDraw applies a drawn bout. Draws count toward both the draw counter
// and the win counter so a drawn pair still satisfies the stage-end
// precondition; the Swiss key weighs the draw at half a point.
func (p *Participant) RecordDraw(score int, opponentID string, warnings, protests, doubleHits int) {
	p.Wins++
	p.Draws++
	p.applyBout(score, opponentID, warnings, protests, doubleHits)
}

func (p *Participant) applyBout(score int, opponentID string, warnings, protests, doubleHits int) {
	p.Scores = score
	p.Warnings = warnings
	p.Protests = protests
	p.DoubleHits = doubleHits
	p.Opponents = append(p.Opponents, opponentID)
}

// Pair is an ordered duel of two participants.
type Pair struct {
	Left  Participant `json:"left"`
	Right Participant `json:"right"`
}

// HasBye reports whether either side is the bye sentinel. Bye pairs carry no
// ranking information and are excluded from round-completion checks.
func (pr Pair) HasBye() bool {
	return pr.Left.IsBye() || pr.Right.IsBye()
}

// Resolved reports whether a winner can be read off the pair: some wins were
// recorded on either side. Bye pairs are considered resolved.
func (pr Pair) Resolved() bool {
	return pr.HasBye() || pr.Left.Wins > 0 || pr.Right.Wins > 0
}
