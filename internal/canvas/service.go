// Package canvas manages drawing canvases: metadata CRUD plus the element
// scene stored as a JSON document alongside each canvas.
package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aperture/aperture/backend-go/internal/db/dbgen"
	"github.com/aperture/aperture/backend-go/internal/shape"
	"github.com/aperture/aperture/backend-go/internal/typeid"
)

var (
	ErrNotFound  = errors.New("canvas not found")
	ErrForbidden = errors.New("forbidden")
)

type Service struct {
	queries *dbgen.Queries
}

func NewService(queries *dbgen.Queries) *Service {
	return &Service{queries: queries}
}

type Canvas struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	OwnerID     string `json:"ownerId"`
	ClassroomID string `json:"classroomId,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func (s *Service) Create(ctx context.Context, name, ownerID, classroomID string) (*Canvas, error) {
	var classroom pgtype.Text
	if classroomID != "" {
		member, err := s.queries.GetClassroomMember(ctx, dbgen.GetClassroomMemberParams{
			ClassroomID: classroomID,
			UserID:      ownerID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrForbidden
			}
			return nil, fmt.Errorf("check classroom membership: %w", err)
		}
		classroom = pgtype.Text{String: member.ClassroomID, Valid: true}
	}

	dbCanvas, err := s.queries.CreateCanvas(ctx, dbgen.CreateCanvasParams{
		ID:          typeid.NewCanvasID(),
		Name:        name,
		OwnerID:     ownerID,
		ClassroomID: classroom,
	})
	if err != nil {
		return nil, fmt.Errorf("create canvas: %w", err)
	}

	return dbCanvasToCanvas(dbCanvas), nil
}

func (s *Service) Get(ctx context.Context, canvasID, userID string) (*Canvas, error) {
	dbCanvas, err := s.getAuthorized(ctx, canvasID, userID)
	if err != nil {
		return nil, err
	}
	return dbCanvasToCanvas(dbCanvas), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Canvas, error) {
	dbCanvases, err := s.queries.ListCanvasesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list canvases: %w", err)
	}

	canvases := make([]Canvas, len(dbCanvases))
	for i, c := range dbCanvases {
		canvases[i] = *dbCanvasToCanvas(c)
	}
	return canvases, nil
}

func (s *Service) Rename(ctx context.Context, canvasID, userID, name string) error {
	dbCanvas, err := s.getCanvas(ctx, canvasID)
	if err != nil {
		return err
	}
	if dbCanvas.OwnerID != userID {
		return ErrForbidden
	}

	return s.queries.RenameCanvas(ctx, dbgen.RenameCanvasParams{ID: canvasID, Name: name})
}

func (s *Service) Delete(ctx context.Context, canvasID, userID string) error {
	dbCanvas, err := s.getCanvas(ctx, canvasID)
	if err != nil {
		return err
	}
	if dbCanvas.OwnerID != userID {
		return ErrForbidden
	}

	return s.queries.DeleteCanvas(ctx, canvasID)
}

// GetElements returns the canvas scene as raw JSON, decoded once to validate
// it is a well-formed shape list.
func (s *Service) GetElements(ctx context.Context, canvasID, userID string) ([]shape.Shape, error) {
	dbCanvas, err := s.getAuthorized(ctx, canvasID, userID)
	if err != nil {
		return nil, err
	}

	var elements []shape.Shape
	if err := json.Unmarshal(dbCanvas.Elements, &elements); err != nil {
		return nil, fmt.Errorf("decode elements: %w", err)
	}
	return elements, nil
}

// SaveElements replaces the canvas scene wholesale. Only the owner may
// write; classroom members get read-only access.
func (s *Service) SaveElements(ctx context.Context, canvasID, userID string, elements []shape.Shape) error {
	dbCanvas, err := s.getCanvas(ctx, canvasID)
	if err != nil {
		return err
	}
	if dbCanvas.OwnerID != userID {
		return ErrForbidden
	}

	if elements == nil {
		elements = []shape.Shape{}
	}
	data, err := json.Marshal(elements)
	if err != nil {
		return fmt.Errorf("encode elements: %w", err)
	}

	return s.queries.UpdateCanvasElements(ctx, dbgen.UpdateCanvasElementsParams{
		ID:       canvasID,
		Elements: data,
	})
}

func (s *Service) getCanvas(ctx context.Context, canvasID string) (dbgen.Canvas, error) {
	dbCanvas, err := s.queries.GetCanvas(ctx, canvasID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dbgen.Canvas{}, ErrNotFound
		}
		return dbgen.Canvas{}, fmt.Errorf("get canvas: %w", err)
	}
	return dbCanvas, nil
}

// getAuthorized loads a canvas and checks read access: the owner always, and
// any member of the owning classroom.
func (s *Service) getAuthorized(ctx context.Context, canvasID, userID string) (dbgen.Canvas, error) {
	dbCanvas, err := s.getCanvas(ctx, canvasID)
	if err != nil {
		return dbgen.Canvas{}, err
	}
	if dbCanvas.OwnerID == userID {
		return dbCanvas, nil
	}

	if dbCanvas.ClassroomID.Valid {
		_, err := s.queries.GetClassroomMember(ctx, dbgen.GetClassroomMemberParams{
			ClassroomID: dbCanvas.ClassroomID.String,
			UserID:      userID,
		})
		if err == nil {
			return dbCanvas, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return dbgen.Canvas{}, fmt.Errorf("check classroom membership: %w", err)
		}
	}

	return dbgen.Canvas{}, ErrForbidden
}

func dbCanvasToCanvas(c dbgen.Canvas) *Canvas {
	out := &Canvas{
		ID:        c.ID,
		Name:      c.Name,
		OwnerID:   c.OwnerID,
		CreatedAt: c.CreatedAt.Time.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: c.UpdatedAt.Time.Format("2006-01-02T15:04:05Z"),
	}
	if c.ClassroomID.Valid {
		out.ClassroomID = c.ClassroomID.String
	}
	return out
}
