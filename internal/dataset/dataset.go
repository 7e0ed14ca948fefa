package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pfrederiksen/skate-protocols/internal/competition"
	"github.com/pfrederiksen/skate-protocols/internal/judges"
	"github.com/pfrederiksen/skate-protocols/internal/protocol"
	"github.com/pfrederiksen/skate-protocols/internal/storage"
)

// ScoreRow is the score of one judge for one element or component of one skater
type ScoreRow struct {
	Comp       string
	Source     string
	Category   string
	Discipline string
	Program    string
	CompType   string
	Year       int
	Season     int
	Junior     bool
	Team       bool

	Rank       protocol.Token
	Name       string
	Nation     string
	Stn        protocol.Token
	TSS        protocol.Token
	TES        protocol.Token
	PCS        protocol.Token
	Deductions protocol.Token

	ElementOrder protocol.Token
	Element      protocol.Token
	BaseValue    protocol.Token
	GOE          protocol.Token
	Factor       protocol.Token
	PanelScore   protocol.Token
	Marks        string
	SecondHalf   bool
	Component    string

	// Judge is the 1-based panel position, JudgeID its column name ("j1")
	Judge    int
	JudgeID  string
	Score    *float64
	ScoreStd *float64
}

// Dataset is the normalized score table plus the cleaned judge rosters it is
// exported with
type Dataset struct {
	Scores []ScoreRow
	Judges []judges.Judge
}

// Build melts the artifacts of all competitions into one sorted, standardized table
func Build(artifacts []*storage.ProtocolArtifact) (*Dataset, []protocol.Warning) {
	var (
		rows     []ScoreRow
		warnings []protocol.Warning
		infos    = make(map[string]competition.Info)
		unknown  = make(map[string]bool)
	)

	for _, a := range artifacts {
		info, ok := infos[a.Competition]
		if !ok && !unknown[a.Competition] {
			parsed, err := competition.Parse(a.Competition)
			if err != nil {
				unknown[a.Competition] = true
				warnings = append(warnings, protocol.Warning{
					Kind:        protocol.WarnUnknownCompetition,
					Competition: a.Competition,
					Detail:      err.Error(),
				})
			} else {
				infos[a.Competition] = parsed
				info = parsed
			}
		}

		for _, r := range a.Rows {
			rows = append(rows, melt(a, info, r)...)
		}
	}

	standardize(rows)
	sortRows(rows)
	warnings = append(warnings, ambiguousGroups(rows)...)

	return &Dataset{Scores: rows}, warnings
}

func melt(a *storage.ProtocolArtifact, info competition.Info, r protocol.Row) []ScoreRow {
	category := strings.ToLower(r.Category)
	if category == "" {
		category = strings.ToLower(a.Category)
	}

	base := ScoreRow{
		Comp:       a.Competition,
		Source:     r.Source,
		Category:   category,
		Discipline: competition.Discipline(category),
		Program:    competition.Program(category, r.Source),
		CompType:   info.Type,
		Year:       info.Year,
		Season:     info.Season,
		Junior:     competition.Junior(category, info.Type),
		Team:       competition.Team(r.Source),

		Rank:       r.Rank,
		Name:       r.Name,
		Nation:     skaterNation(r.Nation),
		Stn:        r.Stn,
		TSS:        r.TSS,
		TES:        r.TES,
		PCS:        r.PCS,
		Deductions: absolute(r.Deductions),

		ElementOrder: r.ElementOrder,
		Element:      r.Element,
		BaseValue:    r.BaseValue,
		GOE:          r.GOE,
		Factor:       r.Factor,
		PanelScore:   r.PanelScore,
		Marks:        r.Marks,
		SecondHalf:   r.SecondHalf,
		Component:    r.Component,
	}
	if base.Source == "" {
		base.Source = a.Source
	}

	out := make([]ScoreRow, len(r.Judges))
	for i, j := range r.Judges {
		row := base
		row.Judge = i + 1
		row.JudgeID = fmt.Sprintf("j%d", i+1)
		row.Score = judgeScore(j)
		out[i] = row
	}
	return out
}

// skaterNation folds the neutral Russian team codes into RUS
func skaterNation(nation string) string {
	if nation == "OAR" || nation == "ROC" {
		return "RUS"
	}
	return nation
}

func absolute(t protocol.Token) protocol.Token {
	if t.IsNumber() {
		return protocol.Number(math.Abs(t.Num))
	}
	return t
}

// judgeScore coerces a judge cell to a number, treating anything unparsable as missing
func judgeScore(t protocol.Token) *float64 {
	switch {
	case t.IsNumber():
		v := t.Num
		return &v
	case t.IsString():
		if v, ok := protocol.ParseNumber(t.Str); ok {
			return &v
		}
	}
	return nil
}

type groupKey struct {
	comp, source         string
	rank, element, order protocol.Token
}

// standardize sets ScoreStd to the z-score of each judge score within its element
func standardize(rows []ScoreRow) {
	groups := make(map[groupKey][]int)
	for i, r := range rows {
		k := groupKey{r.Comp, r.Source, r.Rank, r.Element, r.ElementOrder}
		groups[k] = append(groups[k], i)
	}

	for _, idx := range groups {
		var values []float64
		for _, i := range idx {
			if rows[i].Score != nil {
				values = append(values, *rows[i].Score)
			}
		}
		if len(values) == 0 {
			continue
		}

		mean, std := meanStd(values)
		for _, i := range idx {
			if rows[i].Score == nil {
				continue
			}
			z := 0.0
			if std > zeroStd {
				z = (*rows[i].Score - mean) / std
			}
			rows[i].ScoreStd = &z
		}
	}
}

// zeroStd absorbs rounding when every judge gave the same score
const zeroStd = 1e-9

// meanStd returns the mean and the population standard deviation
func meanStd(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

func sortRows(rows []ScoreRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Comp != b.Comp {
			return a.Comp < b.Comp
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if c := compareTokens(a.Rank, b.Rank); c != 0 {
			return c < 0
		}
		if c := compareTokens(a.ElementOrder, b.ElementOrder); c != 0 {
			return c < 0
		}
		if c := compareTokens(a.Element, b.Element); c != 0 {
			return c < 0
		}
		return a.Judge < b.Judge
	})
}

// compareTokens orders numbers before strings and missing cells last
func compareTokens(a, b protocol.Token) int {
	if a.Kind != b.Kind {
		return tokenRank(a) - tokenRank(b)
	}
	switch a.Kind {
	case protocol.KindNumber:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
	case protocol.KindString:
		return strings.Compare(a.Str, b.Str)
	}
	return 0
}

func tokenRank(t protocol.Token) int {
	switch t.Kind {
	case protocol.KindNumber:
		return 0
	case protocol.KindString:
		return 1
	default:
		return 2
	}
}

type eventKey struct {
	comp, discipline, program string
	junior, team              bool
}

// ambiguousGroups warns about events that cannot be told apart by their attributes
func ambiguousGroups(rows []ScoreRow) []protocol.Warning {
	sources := make(map[eventKey]map[string]bool)
	var order []eventKey
	for _, r := range rows {
		k := eventKey{r.Comp, r.Discipline, r.Program, r.Junior, r.Team}
		if sources[k] == nil {
			sources[k] = make(map[string]bool)
			order = append(order, k)
		}
		sources[k][r.Source] = true
	}

	var warnings []protocol.Warning
	for _, k := range order {
		if len(sources[k]) < 2 {
			continue
		}
		names := make([]string, 0, len(sources[k]))
		for s := range sources[k] {
			names = append(names, s)
		}
		sort.Strings(names)
		warnings = append(warnings, protocol.Warning{
			Kind:        protocol.WarnAmbiguousGroup,
			Competition: k.comp,
			Detail: fmt.Sprintf("discipline=%q program=%q junior=%t team=%t matches %d sources: %s",
				k.discipline, k.program, k.junior, k.team, len(names), strings.Join(names, ", ")),
		})
	}
	return warnings
}
