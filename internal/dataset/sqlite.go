package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const scoresSchema = `CREATE TABLE scores (
	comp TEXT NOT NULL,
	source TEXT NOT NULL,
	category TEXT,
	discipline TEXT,
	program TEXT,
	comp_type TEXT,
	year INTEGER,
	season INTEGER,
	junior INTEGER NOT NULL,
	team INTEGER NOT NULL,
	rank NUMERIC,
	name TEXT,
	nation TEXT,
	stn NUMERIC,
	tss NUMERIC,
	tes NUMERIC,
	pcs NUMERIC,
	deductions NUMERIC,
	element_order NUMERIC,
	element TEXT,
	base_value NUMERIC,
	goe NUMERIC,
	factor NUMERIC,
	panel_score NUMERIC,
	marks TEXT,
	second_half INTEGER NOT NULL,
	component TEXT NOT NULL,
	judge INTEGER NOT NULL,
	judge_id TEXT NOT NULL,
	judge_score REAL,
	judge_score_std REAL
)`

const judgesSchema = `CREATE TABLE judges (
	comp TEXT NOT NULL,
	function TEXT,
	name TEXT,
	nation TEXT,
	nation_inferred TEXT,
	nation_approx INTEGER NOT NULL,
	gender TEXT,
	judge_id TEXT,
	source TEXT,
	category TEXT,
	comp_type TEXT,
	year INTEGER,
	season INTEGER,
	discipline TEXT,
	program TEXT,
	junior INTEGER NOT NULL,
	team INTEGER NOT NULL
)`

var judgeColumns = []string{
	"comp", "function", "name", "nation", "nation_inferred", "nation_approx", "gender", "judge_id",
	"source", "category", "comp_type", "year", "season", "discipline", "program", "junior", "team",
}

// WriteSQLite replaces the scores and judges tables of the database at path in a
// single transaction. Readers see either the previous tables or the new ones.
func (d *Dataset) WriteSQLite(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() // nolint:errcheck

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=10000"); err != nil {
		return fmt.Errorf("setting pragma: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	if err := d.writeScores(ctx, tx); err != nil {
		return err
	}
	if err := d.writeJudges(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (d *Dataset) writeScores(ctx context.Context, tx *sql.Tx) error {
	stmt, err := recreate(ctx, tx, "scores", scoresSchema, Columns)
	if err != nil {
		return err
	}
	defer stmt.Close() // nolint:errcheck

	for _, r := range d.Scores {
		_, err := stmt.ExecContext(ctx,
			r.Comp, r.Source, r.Category, r.Discipline, r.Program, r.CompType, nullInt(r.Year), nullInt(r.Season),
			r.Junior, r.Team,
			value(r.Rank), r.Name, r.Nation, value(r.Stn), value(r.TSS), value(r.TES), value(r.PCS), value(r.Deductions),
			value(r.ElementOrder), value(r.Element), value(r.BaseValue), value(r.GOE), value(r.Factor), value(r.PanelScore),
			r.Marks, r.SecondHalf, r.Component,
			r.Judge, r.JudgeID, nullFloat(r.Score), nullFloat(r.ScoreStd),
		)
		if err != nil {
			return fmt.Errorf("inserting score of %s %s: %w", r.Comp, r.Name, err)
		}
	}
	return nil
}

func (d *Dataset) writeJudges(ctx context.Context, tx *sql.Tx) error {
	stmt, err := recreate(ctx, tx, "judges", judgesSchema, judgeColumns)
	if err != nil {
		return err
	}
	defer stmt.Close() // nolint:errcheck

	for _, j := range d.Judges {
		_, err := stmt.ExecContext(ctx,
			j.Competition, j.Function, j.Name, j.Nation, j.InferredNation, j.NationApprox, j.Gender, j.JudgeID,
			j.Source, j.Category, j.CompType, nullInt(j.Year), nullInt(j.Season), j.Discipline, j.Program, j.Junior, j.Team,
		)
		if err != nil {
			return fmt.Errorf("inserting judge %s of %s: %w", j.Name, j.Competition, err)
		}
	}
	return nil
}

// recreate drops and creates a table and prepares its insert statement
func recreate(ctx context.Context, tx *sql.Tx, table, schema string, columns []string) (*sql.Stmt, error) {
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return nil, fmt.Errorf("dropping %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating %s: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("preparing %s insert: %w", table, err)
	}
	return stmt, nil
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
