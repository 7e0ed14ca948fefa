package judges

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/pfrederiksen/skate-protocols/internal/competition"
	"github.com/pfrederiksen/skate-protocols/internal/protocol"
)

const (
	functionJudge = "Judge"
	nationISU     = "ISU"
)

var (
	malePrefix   = regexp.MustCompile(`Mr(\.|\s)`)
	femalePrefix = regexp.MustCompile(`(Ms|Mrs)(\.|\s)`)
	titlePrefix  = regexp.MustCompile(`^(Ms|Mrs|Mr)(\.\s|\s)`)
	whitespace   = regexp.MustCompile(`[\s\p{Z}]`)
	judgeNumber  = regexp.MustCompile(`Judge No.(\d+)`)
	functionNo   = regexp.MustCompile(` No.\d+`)
)

// nameOverrides are names whose family name is not printed in capitals
var nameOverrides = map[string]string{
	"van VEEN Wilhelmina": "Wilhelmina VAN VEEN",
	"de LACROIX Pierre":   "Pierre DE LACROIX",
}

// russianNations are the neutral team codes used for Russian officials and skaters
var russianNations = map[string]bool{"OAR": true, "ROC": true}

// NormalizeNation maps neutral Russian team codes to RUS
func NormalizeNation(nation string) string {
	if russianNations[nation] {
		return "RUS"
	}
	return nation
}

// Clean normalizes raw roster rows from all competitions and keeps the judges of
// singles, pairs and dance segments.
//
// Names become "First LAST", judge numbers become ids "j1".."jN", and a missing or ISU
// nation is filled from other competitions when the judge's name maps to exactly one
// nation there. The fill assumes names are unique; filled rows are flagged
// NationApprox and reported in one warning per competition.
func Clean(raw []Judge) ([]Judge, []protocol.Warning) {
	judges := make([]Judge, len(raw))
	for i, j := range raw {
		j.Gender = gender(j.Name)
		j.Name = cleanName(j.Name)

		if m := judgeNumber.FindStringSubmatch(j.Function); m != nil {
			j.JudgeID = "j" + m[1]
		}
		j.Function = functionNo.ReplaceAllString(j.Function, "")
		j.Nation = NormalizeNation(j.Nation)

		judges[i] = j
	}

	inferred := uniqueNations(judges)

	var warnings []protocol.Warning
	approx := make(map[string]int)
	unknown := make(map[string]bool)

	out := judges[:0]
	for _, j := range judges {
		if n, ok := inferred[j.Name]; ok {
			j.InferredNation = n
		} else if j.Nation != nationISU {
			j.InferredNation = j.Nation
		}
		j.NationApprox = j.InferredNation != "" && j.InferredNation != j.Nation

		if j.Function != functionJudge {
			continue
		}
		j.Category = strings.ToLower(j.Category)
		if competition.ExcludedJudgeCategory(j.Category) {
			continue
		}

		info, err := competition.Parse(j.Competition)
		if err != nil {
			unknown[j.Competition] = true
		} else {
			j.CompType, j.Year, j.Season = info.Type, info.Year, info.Season
		}
		j.Discipline = competition.Discipline(j.Category)
		j.Program = competition.Program(j.Category, j.Source)
		j.Junior = competition.Junior(j.Category, j.CompType)
		j.Team = competition.Team(j.Category)

		if j.NationApprox {
			approx[j.Competition]++
		}
		out = append(out, j)
	}

	for _, comp := range sortedKeys(approx) {
		warnings = append(warnings, protocol.Warning{
			Kind:        protocol.WarnNationApprox,
			Competition: comp,
			Detail:      fmt.Sprintf("%d judge nations filled from other competitions", approx[comp]),
		})
	}
	for _, comp := range sortedKeys(unknown) {
		warnings = append(warnings, protocol.Warning{
			Kind:        protocol.WarnUnknownCompetition,
			Competition: comp,
			Detail:      "competition type and season left empty",
		})
	}

	return out, warnings
}

// uniqueNations maps each name that appears with exactly one non-ISU nation to it
func uniqueNations(judges []Judge) map[string]string {
	nations := make(map[string]map[string]bool)
	for _, j := range judges {
		if j.Nation == nationISU || j.Nation == "" {
			continue
		}
		if nations[j.Name] == nil {
			nations[j.Name] = make(map[string]bool)
		}
		nations[j.Name][j.Nation] = true
	}

	out := make(map[string]string)
	for name, set := range nations {
		if len(set) != 1 {
			continue
		}
		for n := range set {
			out[name] = n
		}
	}
	return out
}

func gender(name string) string {
	switch {
	case malePrefix.MatchString(name):
		return "M"
	case femalePrefix.MatchString(name):
		return "F"
	}
	return ""
}

func cleanName(name string) string {
	name = norm.NFC.String(name)
	name = whitespace.ReplaceAllString(name, " ")
	name = titlePrefix.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, ".", "")
	return firstNameFirst(name)
}

// firstNameFirst moves the capitalized family name behind the given names,
// e.g. "SMITH Jane" becomes "Jane SMITH".
func firstNameFirst(name string) string {
	if fixed, ok := nameOverrides[name]; ok {
		return fixed
	}

	var first, last []string
	for _, part := range strings.Split(name, " ") {
		if isUpper(part) && len([]rune(part)) > 1 {
			last = append(last, part)
		} else {
			first = append(first, part)
		}
	}
	return strings.Join(append(first, last...), " ")
}

// isUpper reports whether s has at least one cased letter and no lower-case ones
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
