package dbgen

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgtype"
)

const createCanvas = `
INSERT INTO canvases (id, name, owner_id, classroom_id)
VALUES ($1, $2, $3, $4)
RETURNING id, name, owner_id, classroom_id, elements, created_at, updated_at
`

type CreateCanvasParams struct {
	ID          string
	Name        string
	OwnerID     string
	ClassroomID pgtype.Text
}

func (q *Queries) CreateCanvas(ctx context.Context, arg CreateCanvasParams) (Canvas, error) {
	row := q.db.QueryRow(ctx, createCanvas, arg.ID, arg.Name, arg.OwnerID, arg.ClassroomID)
	var c Canvas
	err := row.Scan(&c.ID, &c.Name, &c.OwnerID, &c.ClassroomID, &c.Elements, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const getCanvas = `
SELECT id, name, owner_id, classroom_id, elements, created_at, updated_at
FROM canvases WHERE id = $1
`

func (q *Queries) GetCanvas(ctx context.Context, id string) (Canvas, error) {
	row := q.db.QueryRow(ctx, getCanvas, id)
	var c Canvas
	err := row.Scan(&c.ID, &c.Name, &c.OwnerID, &c.ClassroomID, &c.Elements, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const listCanvasesForUser = `
SELECT id, name, owner_id, classroom_id, elements, created_at, updated_at
FROM canvases WHERE owner_id = $1
ORDER BY updated_at DESC
`

func (q *Queries) ListCanvasesForUser(ctx context.Context, ownerID string) ([]Canvas, error) {
	rows, err := q.db.Query(ctx, listCanvasesForUser, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Canvas
	for rows.Next() {
		var c Canvas
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID, &c.ClassroomID, &c.Elements, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const listCanvasesForClassroom = `
SELECT id, name, owner_id, classroom_id, elements, created_at, updated_at
FROM canvases WHERE classroom_id = $1
ORDER BY updated_at DESC
`

func (q *Queries) ListCanvasesForClassroom(ctx context.Context, classroomID pgtype.Text) ([]Canvas, error) {
	rows, err := q.db.Query(ctx, listCanvasesForClassroom, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Canvas
	for rows.Next() {
		var c Canvas
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID, &c.ClassroomID, &c.Elements, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const renameCanvas = `
UPDATE canvases SET name = $2, updated_at = now() WHERE id = $1
`

type RenameCanvasParams struct {
	ID   string
	Name string
}

func (q *Queries) RenameCanvas(ctx context.Context, arg RenameCanvasParams) error {
	_, err := q.db.Exec(ctx, renameCanvas, arg.ID, arg.Name)
	return err
}

const deleteCanvas = `
DELETE FROM canvases WHERE id = $1
`

func (q *Queries) DeleteCanvas(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, deleteCanvas, id)
	return err
}

const getCanvasElements = `
SELECT elements FROM canvases WHERE id = $1
`

func (q *Queries) GetCanvasElements(ctx context.Context, id string) (json.RawMessage, error) {
	row := q.db.QueryRow(ctx, getCanvasElements, id)
	var elements json.RawMessage
	err := row.Scan(&elements)
	return elements, err
}

const updateCanvasElements = `
UPDATE canvases SET elements = $2, updated_at = now() WHERE id = $1
`

type UpdateCanvasElementsParams struct {
	ID       string
	Elements json.RawMessage
}

func (q *Queries) UpdateCanvasElements(ctx context.Context, arg UpdateCanvasElementsParams) error {
	_, err := q.db.Exec(ctx, updateCanvasElements, arg.ID, arg.Elements)
	return err
}
