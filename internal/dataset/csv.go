package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pfrederiksen/skate-protocols/internal/protocol"
)

// Columns is the header of the CSV export and the column order of the scores table
var Columns = []string{
	"comp", "source", "category", "discipline", "program", "comp_type", "year", "season", "junior", "team",
	"rank", "name", "nation", "stn", "tss", "tes", "pcs", "deductions",
	"element_order", "element", "base_value", "goe", "factor", "panel_score", "marks", "second_half", "component",
	"judge", "judge_id", "judge_score", "judge_score_std",
}

// WriteCSV writes the score table with a header row. Missing values are empty cells.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range d.Scores {
		if err := cw.Write(r.record()); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func (r ScoreRow) record() []string {
	return []string{
		r.Comp, r.Source, r.Category, r.Discipline, r.Program, r.CompType, year(r.Year), year(r.Season),
		strconv.FormatBool(r.Junior), strconv.FormatBool(r.Team),
		r.Rank.String(), r.Name, r.Nation, r.Stn.String(), r.TSS.String(), r.TES.String(), r.PCS.String(), r.Deductions.String(),
		r.ElementOrder.String(), r.Element.String(), r.BaseValue.String(), r.GOE.String(), r.Factor.String(), r.PanelScore.String(),
		r.Marks, strconv.FormatBool(r.SecondHalf), r.Component,
		strconv.Itoa(r.Judge), r.JudgeID, float(r.Score), float(r.ScoreStd),
	}
}

func year(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

func float(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// value converts a token to what database/sql stores: a float, a string or NULL
func value(t protocol.Token) interface{} {
	switch t.Kind {
	case protocol.KindNumber:
		return t.Num
	case protocol.KindString:
		return t.Str
	default:
		return nil
	}
}
