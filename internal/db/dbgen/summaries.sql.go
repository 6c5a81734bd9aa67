package dbgen

import "context"

const createSummary = `
INSERT INTO summaries (id, note_id, content)
VALUES ($1, $2, $3)
RETURNING id, note_id, content, created_at
`

type CreateSummaryParams struct {
	ID      string
	NoteID  string
	Content string
}

func (q *Queries) CreateSummary(ctx context.Context, arg CreateSummaryParams) (Summary, error) {
	row := q.db.QueryRow(ctx, createSummary, arg.ID, arg.NoteID, arg.Content)
	var s Summary
	err := row.Scan(&s.ID, &s.NoteID, &s.Content, &s.CreatedAt)
	return s, err
}

const getLatestSummaryForNote = `
SELECT id, note_id, content, created_at
FROM summaries WHERE note_id = $1
ORDER BY created_at DESC
LIMIT 1
`

func (q *Queries) GetLatestSummaryForNote(ctx context.Context, noteID string) (Summary, error) {
	row := q.db.QueryRow(ctx, getLatestSummaryForNote, noteID)
	var s Summary
	err := row.Scan(&s.ID, &s.NoteID, &s.Content, &s.CreatedAt)
	return s, err
}
