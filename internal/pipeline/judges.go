package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pfrederiksen/skate-protocols/internal/judges"
	"github.com/pfrederiksen/skate-protocols/internal/logger"
	"github.com/pfrederiksen/skate-protocols/internal/protocol"
)

// Judges scrapes the officials pages of every competition into raw rosters, then
// cleans the rosters of all competitions together into the judge table
func (r *Runner) Judges(ctx context.Context) (*JudgesSummary, error) {
	comps, err := r.competitions()
	if err != nil {
		return nil, err
	}

	sum := &JudgesSummary{}
	var raw []judges.Judge
	for _, comp := range comps {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		rows, err := r.rosters(comp, sum)
		if err != nil {
			r.log.Error("Failed to scrape judges", logger.Fields{"competition": comp}, err)
			continue
		}
		if len(rows) > 0 {
			sum.Competitions++
		}
		raw = append(raw, rows...)
	}

	cleaned, warnings := judges.Clean(raw)
	for _, w := range warnings {
		r.warn(w)
	}
	sum.Warnings += len(warnings)
	sum.Judges = len(cleaned)

	if err := r.store.SaveCleanJudges(cleaned); err != nil {
		return sum, err
	}
	r.log.Info("Judges cleaned", logger.Fields{"judges": len(cleaned), "competitions": sum.Competitions})
	return sum, nil
}

// rosters returns the raw rosters of a competition. Pages already in the roster
// cache are reused; pages that are new on disk or failed before are scraped.
func (r *Runner) rosters(comp string, sum *JudgesSummary) ([]judges.Judge, error) {
	cached := make(map[string][]judges.Judge)
	if r.store.HasRosters(comp) {
		rows, err := r.store.LoadRosters(comp)
		if err != nil {
			return nil, err
		}
		for _, j := range rows {
			cached[j.Source] = append(cached[j.Source], j)
		}
	}

	m, err := r.store.LoadLinkMapping(comp)
	if err != nil {
		return nil, err
	}

	log := r.log.With(logger.Fields{"competition": comp})
	var rows []judges.Judge
	scraped := 0
	for _, l := range m.JudgePages() {
		name := l.File()
		if js, ok := cached[name]; ok {
			rows = append(rows, js...)
			continue
		}
		if !r.store.HasFile(comp, name) {
			continue
		}

		page, err := r.store.ReadFile(comp, name)
		if err != nil {
			return nil, err
		}

		roster, err := judges.ParseRoster(bytes.NewReader(page), comp, name)
		if err != nil {
			sum.Failed++
			log.Error("Failed to parse roster", logger.Fields{"source": name}, err)
			continue
		}
		sum.Rosters++
		scraped++

		if roster.UnexpectedColumns() {
			sum.Warnings++
			r.warn(protocol.Warning{
				Kind:        protocol.WarnColumnNames,
				Competition: comp,
				Source:      name,
				Detail:      fmt.Sprintf("unexpected columns %s", strings.Join(roster.Columns, ", ")),
			})
		}
		rows = append(rows, roster.Judges...)
	}

	if scraped > 0 && len(rows) > 0 {
		if err := r.store.SaveRosters(comp, rows); err != nil {
			return nil, err
		}
	}
	return rows, nil
}
