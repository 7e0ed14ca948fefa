// Package judges reads the panel-of-judges pages of a competition and cleans the
// rosters into one judge table across all competitions.
package judges

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/skate-protocols/internal/competition"
)

var (
	ErrNoRosterTable = errors.New("no officials table found")
	ErrNoCategory    = errors.New("no category heading found")
)

var expectedColumns = []string{"Function", "Name", "Nation"}

var columnRenames = map[string]string{"Nat.": "Nation"}

// Judge is one official of one competition segment
type Judge struct {
	Competition    string `json:"comp"`
	Function       string `json:"function"`
	Name           string `json:"name"`
	Nation         string `json:"nation"`
	InferredNation string `json:"nation_inferred,omitempty"`
	NationApprox   bool   `json:"nation_approx"`
	Gender         string `json:"gender,omitempty"`
	JudgeID        string `json:"judge_id,omitempty"`
	Source         string `json:"source"`
	Category       string `json:"category"`

	CompType   string `json:"comp_type,omitempty"`
	Year       int    `json:"year,omitempty"`
	Season     int    `json:"season,omitempty"`
	Discipline string `json:"discipline,omitempty"`
	Program    string `json:"program,omitempty"`
	Junior     bool   `json:"junior"`
	Team       bool   `json:"team"`
}

// Roster is the officials table of one panel-of-judges page
type Roster struct {
	Source   string
	Category string
	Columns  []string
	Judges   []Judge
}

// UnexpectedColumns reports whether the table had columns other than
// Function, Name and Nation
func (r *Roster) UnexpectedColumns() bool {
	if len(r.Columns) != len(expectedColumns) {
		return true
	}
	for i, c := range r.Columns {
		if c != expectedColumns[i] {
			return true
		}
	}
	return false
}

// ParseRoster reads a panel-of-judges page. The officials table is the last table
// mentioning "function"; the category is the first element whose text names a
// discipline and a program.
func ParseRoster(r io.Reader, comp, source string) (*Roster, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	tables := doc.Find("table").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		text := strings.ToLower(sel.Text())
		return strings.Contains(text, "function") && text != "isu"
	})
	if tables.Length() == 0 {
		return nil, ErrNoRosterTable
	}

	var category string
	doc.Find("body *").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if text := sel.Text(); competition.IsCategoryHeading(text) {
			category = strings.ToLower(strings.TrimSpace(text))
			return false
		}
		return true
	})
	if category == "" {
		return nil, ErrNoCategory
	}

	roster := &Roster{Source: source, Category: category}
	tables.Last().Find("tr").Each(func(i int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})

		if roster.Columns == nil {
			for _, c := range cells {
				if renamed, ok := columnRenames[c]; ok {
					c = renamed
				}
				roster.Columns = append(roster.Columns, c)
			}
			return
		}
		if isBlank(cells) {
			return
		}

		j := Judge{Competition: comp, Source: source, Category: category}
		for k, c := range cells {
			if k >= len(roster.Columns) {
				break
			}
			switch roster.Columns[k] {
			case "Function":
				j.Function = c
			case "Name":
				j.Name = c
			case "Nation":
				j.Nation = c
			}
		}
		roster.Judges = append(roster.Judges, j)
	})

	return roster, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
