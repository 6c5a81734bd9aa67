package dbgen

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createNote = `
INSERT INTO notes (id, owner_id, canvas_id, title, content)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, owner_id, canvas_id, title, content, created_at, updated_at
`

type CreateNoteParams struct {
	ID       string
	OwnerID  string
	CanvasID pgtype.Text
	Title    string
	Content  string
}

func (q *Queries) CreateNote(ctx context.Context, arg CreateNoteParams) (Note, error) {
	row := q.db.QueryRow(ctx, createNote, arg.ID, arg.OwnerID, arg.CanvasID, arg.Title, arg.Content)
	var n Note
	err := row.Scan(&n.ID, &n.OwnerID, &n.CanvasID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

const getNote = `
SELECT id, owner_id, canvas_id, title, content, created_at, updated_at
FROM notes WHERE id = $1
`

func (q *Queries) GetNote(ctx context.Context, id string) (Note, error) {
	row := q.db.QueryRow(ctx, getNote, id)
	var n Note
	err := row.Scan(&n.ID, &n.OwnerID, &n.CanvasID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

const listNotesForUser = `
SELECT id, owner_id, canvas_id, title, content, created_at, updated_at
FROM notes WHERE owner_id = $1
ORDER BY updated_at DESC
`

func (q *Queries) ListNotesForUser(ctx context.Context, ownerID string) ([]Note, error) {
	rows, err := q.db.Query(ctx, listNotesForUser, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.CanvasID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

const updateNote = `
UPDATE notes SET title = $2, content = $3, updated_at = now() WHERE id = $1
RETURNING id, owner_id, canvas_id, title, content, created_at, updated_at
`

type UpdateNoteParams struct {
	ID      string
	Title   string
	Content string
}

func (q *Queries) UpdateNote(ctx context.Context, arg UpdateNoteParams) (Note, error) {
	row := q.db.QueryRow(ctx, updateNote, arg.ID, arg.Title, arg.Content)
	var n Note
	err := row.Scan(&n.ID, &n.OwnerID, &n.CanvasID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

const deleteNote = `
DELETE FROM notes WHERE id = $1
`

func (q *Queries) DeleteNote(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, deleteNote, id)
	return err
}
