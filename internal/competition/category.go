package competition

import (
	"regexp"
	"strings"
)

// disciplineWords lists the words that open a category heading
const disciplineWords = `(?:men |women |ladies |pair |pairs |ice dance |ice dancing |synchronized skating )`

var (
	categoryHeading = regexp.MustCompile(`\b(.*` + disciplineWords + `.{0,20}?)(?:\n\n|\s\s)`)

	rosterDiscipline = regexp.MustCompile(`(?i)` + disciplineWords)
	rosterProgram    = regexp.MustCompile(`(?i)(?:short program|rhythm dance|short dance|compulsory dance|original dance|free skating|free dance|qualifying.{0,30})$`)

	excludedJudgeCategory = regexp.MustCompile(`qualifying|preliminary round|synchronized skating`)
	gpDir                 = regexp.MustCompile(`j?gp`)
)

// CategoryFromText finds the lower-cased category heading, e.g. "men short program",
// in the text of a protocol's first page.
func CategoryFromText(text string) (string, bool) {
	m := categoryHeading.FindStringSubmatch(strings.ToLower(strings.TrimSpace(text)))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsCategoryHeading reports whether a text names both a discipline and a program, the
// way the heading of a panel-of-judges page does.
func IsCategoryHeading(text string) bool {
	text = strings.TrimSpace(text)
	return rosterDiscipline.MatchString(text) && rosterProgram.MatchString(text)
}

// ExcludedJudgeCategory reports whether a panel belongs to a segment that is left
// out of the judge dataset.
func ExcludedJudgeCategory(category string) bool {
	return excludedJudgeCategory.MatchString(strings.ToLower(category))
}

// LinkLabelCategory reports whether the category of a competition's protocols must
// come from the link label because the first page carries no usable heading.
func LinkLabelCategory(dir string, season int) bool {
	return season == 2004 && gpDir.MatchString(dir)
}
