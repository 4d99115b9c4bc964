// Package sheet renders duel ledgers and bracket rounds as tabular data and
// reads participant rosters back in. Rows mirror left and right fighters
// around the shared double-hit column.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fencerfight/tourney/src/domain/fighter"
	"github.com/fencerfight/tourney/src/domain/playoff"
)

var header = []string{
	"name", "warnings", "protests", "scores", "wins", "doubleHits",
	"wins", "scores", "protests", "warnings", "name",
}

// ExportLedger writes every recorded stage of one pool.
func ExportLedger(w io.Writer, ledger [][]fighter.Pair) error {
	cw := csv.NewWriter(w)
	for i, round := range ledger {
		if err := writeSection(cw, fmt.Sprintf("stage %d", i+1), round); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportBracket writes every playoff round with its stage title.
func ExportBracket(w io.Writer, rounds []playoff.Round) error {
	cw := csv.NewWriter(w)
	for i, round := range rounds {
		pairs := make([]fighter.Pair, 0, len(round))
		for _, m := range round {
			pairs = append(pairs, fighter.Pair{
				Left:  entrantFighter(m.Left),
				Right: entrantFighter(m.Right),
			})
		}
		if err := writeSection(cw, StageTitle(i, len(rounds)), pairs); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// StageTitle names a bracket round: the last round is the final with the
// third-place decider, the one before it the semifinal, earlier rounds count
// down as 1/N finals.
func StageTitle(index, total int) string {
	switch index {
	case total - 1:
		return "final and 3rd place"
	case total - 2:
		return "semifinal"
	default:
		return fmt.Sprintf("1/%d final", 1<<(total-index))
	}
}

func writeSection(cw *csv.Writer, title string, pairs []fighter.Pair) error {
	if err := cw.Write([]string{title}); err != nil {
		return err
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, pair := range pairs {
		row := []string{
			pair.Left.Name,
			strconv.Itoa(pair.Left.Warnings),
			strconv.Itoa(pair.Left.Protests),
			strconv.Itoa(pair.Left.Scores),
			strconv.Itoa(pair.Left.Wins),
			strconv.Itoa(pair.Left.DoubleHits),
			strconv.Itoa(pair.Right.Wins),
			strconv.Itoa(pair.Right.Scores),
			strconv.Itoa(pair.Right.Protests),
			strconv.Itoa(pair.Right.Warnings),
			pair.Right.Name,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func entrantFighter(e playoff.Entrant) fighter.Participant {
	return fighter.Participant{
		ID:         e.ID,
		Name:       e.Name,
		Scores:     e.Scores,
		Wins:       e.Wins,
		Warnings:   e.Warnings,
		Protests:   e.Protests,
		DoubleHits: e.DoubleHits,
	}
}

// ImportRound reads mirrored rows back into pairs. Section titles and header
// rows are skipped; ids are assigned deterministically so the same name seen
// twice within one import reuses the same generated id.
func ImportRound(r io.Reader) ([]fighter.Pair, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	ids := make(map[string]string)
	idFor := func(name string) string {
		if id, ok := ids[name]; ok {
			return id
		}
		id := fighter.NewID(name)
		ids[name] = id
		return id
	}

	var pairs []fighter.Pair
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 11 || row[0] == header[0] {
			continue
		}
		left, lok := parseSide(row[0], row[1], row[2], row[3], row[4], row[5], idFor)
		right, rok := parseSide(row[10], row[9], row[8], row[7], row[6], row[5], idFor)
		if !lok && !rok {
			continue
		}
		if !rok {
			right = fighter.Bye(left.Gender)
		}
		if !lok {
			left = fighter.Bye(right.Gender)
		}
		pairs = append(pairs, fighter.Pair{Left: left, Right: right})
	}
	return pairs, nil
}

// Roster flattens imported pairs into a deduplicated participant list.
func Roster(pairs []fighter.Pair) []fighter.Participant {
	seen := make(map[string]bool)
	var out []fighter.Participant
	for _, pair := range pairs {
		for _, f := range []fighter.Participant{pair.Left, pair.Right} {
			if f.IsBye() || seen[f.ID] {
				continue
			}
			seen[f.ID] = true
			out = append(out, f)
		}
	}
	return out
}

// parseSide builds one fighter from its half of a mirrored row. Column order
// on the right side is reversed by the caller; double hits are shared.
func parseSide(name, warnings, protests, scores, wins, doubleHits string, idFor func(string) string) (fighter.Participant, bool) {
	if name == "" || name == fighter.ByeName {
		return fighter.Participant{}, false
	}
	return fighter.Participant{
		ID:         idFor(name),
		Name:       name,
		Warnings:   atoi(warnings),
		Protests:   atoi(protests),
		Scores:     atoi(scores),
		Wins:       atoi(wins),
		DoubleHits: atoi(doubleHits),
	}, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
