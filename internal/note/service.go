// Package note manages study notes, optionally linked to a canvas.
package note

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aperture/aperture/backend-go/internal/db/dbgen"
	"github.com/aperture/aperture/backend-go/internal/typeid"
)

var (
	ErrNotFound  = errors.New("note not found")
	ErrForbidden = errors.New("forbidden")
)

type Service struct {
	queries *dbgen.Queries
}

func NewService(queries *dbgen.Queries) *Service {
	return &Service{queries: queries}
}

type Note struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId"`
	CanvasID  string `json:"canvasId,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (s *Service) Create(ctx context.Context, ownerID, canvasID, title, content string) (*Note, error) {
	var canvas pgtype.Text
	if canvasID != "" {
		canvas = pgtype.Text{String: canvasID, Valid: true}
	}

	dbNote, err := s.queries.CreateNote(ctx, dbgen.CreateNoteParams{
		ID:       typeid.NewNoteID(),
		OwnerID:  ownerID,
		CanvasID: canvas,
		Title:    title,
		Content:  content,
	})
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	return dbNoteToNote(dbNote), nil
}

func (s *Service) Get(ctx context.Context, noteID, userID string) (*Note, error) {
	dbNote, err := s.getOwned(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}
	return dbNoteToNote(dbNote), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Note, error) {
	dbNotes, err := s.queries.ListNotesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	notes := make([]Note, len(dbNotes))
	for i, n := range dbNotes {
		notes[i] = *dbNoteToNote(n)
	}
	return notes, nil
}

func (s *Service) Update(ctx context.Context, noteID, userID, title, content string) (*Note, error) {
	if _, err := s.getOwned(ctx, noteID, userID); err != nil {
		return nil, err
	}

	dbNote, err := s.queries.UpdateNote(ctx, dbgen.UpdateNoteParams{
		ID:      noteID,
		Title:   title,
		Content: content,
	})
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return dbNoteToNote(dbNote), nil
}

func (s *Service) Delete(ctx context.Context, noteID, userID string) error {
	if _, err := s.getOwned(ctx, noteID, userID); err != nil {
		return err
	}
	return s.queries.DeleteNote(ctx, noteID)
}

func (s *Service) getOwned(ctx context.Context, noteID, userID string) (dbgen.Note, error) {
	dbNote, err := s.queries.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dbgen.Note{}, ErrNotFound
		}
		return dbgen.Note{}, fmt.Errorf("get note: %w", err)
	}
	if dbNote.OwnerID != userID {
		return dbgen.Note{}, ErrForbidden
	}
	return dbNote, nil
}

func dbNoteToNote(n dbgen.Note) *Note {
	out := &Note{
		ID:        n.ID,
		OwnerID:   n.OwnerID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt.Time.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: n.UpdatedAt.Time.Format("2006-01-02T15:04:05Z"),
	}
	if n.CanvasID.Valid {
		out.CanvasID = n.CanvasID.String
	}
	return out
}
