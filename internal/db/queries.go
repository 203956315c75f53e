package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the generation history queries.
type Queries struct {
	db DBTX
}

// New creates Queries over db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Generation is one recorded post generation.
type Generation struct {
	ID           int64
	Tag          string
	Length       string
	Language     string
	Provider     string
	Prompt       string
	Output       string
	ExamplesUsed int64
	CreatedAt    time.Time
}

type CreateGenerationParams struct {
	Tag          string
	Length       string
	Language     string
	Provider     string
	Prompt       string
	Output       string
	ExamplesUsed int64
}

const createGeneration = `
INSERT INTO generations (tag, length, language, provider, prompt, output, examples_used)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateGeneration(ctx context.Context, arg CreateGenerationParams) (Generation, error) {
	res, err := q.db.ExecContext(ctx, createGeneration,
		arg.Tag,
		arg.Length,
		arg.Language,
		arg.Provider,
		arg.Prompt,
		arg.Output,
		arg.ExamplesUsed,
	)
	if err != nil {
		return Generation{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Generation{}, err
	}
	return q.GetGeneration(ctx, id)
}

const getGeneration = `
SELECT id, tag, length, language, provider, prompt, output, examples_used, created_at
FROM generations WHERE id = ?
`

func (q *Queries) GetGeneration(ctx context.Context, id int64) (Generation, error) {
	return scanGeneration(q.db.QueryRowContext(ctx, getGeneration, id))
}

const listGenerations = `
SELECT id, tag, length, language, provider, prompt, output, examples_used, created_at
FROM generations ORDER BY id DESC LIMIT ?
`

// ListGenerations returns the most recent generations, newest first.
func (q *Queries) ListGenerations(ctx context.Context, limit int64) ([]Generation, error) {
	rows, err := q.db.QueryContext(ctx, listGenerations, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countGenerations = `SELECT COUNT(*) FROM generations`

func (q *Queries) CountGenerations(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countGenerations).Scan(&count)
	return count, err
}

const countGenerationsByTag = `
SELECT tag, COUNT(*) AS count FROM generations GROUP BY tag ORDER BY count DESC, tag
`

type CountGenerationsByTagRow struct {
	Tag   string
	Count int64
}

func (q *Queries) CountGenerationsByTag(ctx context.Context) ([]CountGenerationsByTagRow, error) {
	rows, err := q.db.QueryContext(ctx, countGenerationsByTag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CountGenerationsByTagRow
	for rows.Next() {
		var i CountGenerationsByTagRow
		if err := rows.Scan(&i.Tag, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row scanner) (Generation, error) {
	var g Generation
	var createdAt any
	err := row.Scan(
		&g.ID,
		&g.Tag,
		&g.Length,
		&g.Language,
		&g.Provider,
		&g.Prompt,
		&g.Output,
		&g.ExamplesUsed,
		&createdAt,
	)
	if err != nil {
		return g, err
	}
	g.CreatedAt, err = parseTimestamp(createdAt)
	return g, err
}

// parseTimestamp accepts the forms the driver may hand back for a
// CURRENT_TIMESTAMP column.
func parseTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t, nil
	case string:
		return parseTimestampString(t)
	case []byte:
		return parseTimestampString(string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}

func parseTimestampString(s string) (time.Time, error) {
	for _, layout := range []string{time.DateTime, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", s)
}
