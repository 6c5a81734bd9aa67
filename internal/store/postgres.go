// Package store provides element-scene persistence backends: Postgres for
// the server, an HTTP API client for remote hosts, and a file-based local
// fallback.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aperture/aperture/backend-go/internal/db/dbgen"
	"github.com/aperture/aperture/backend-go/internal/shape"
)

var ErrNotFound = errors.New("canvas not found")

// Postgres persists canvas scenes in the canvases table.
type Postgres struct {
	pool    *pgxpool.Pool
	queries *dbgen.Queries
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, queries: dbgen.New(pool)}
}

func (p *Postgres) GetElements(ctx context.Context, canvasID string) ([]shape.Shape, error) {
	data, err := p.queries.GetCanvasElements(ctx, canvasID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get elements: %w", err)
	}

	var elements []shape.Shape
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("decode elements: %w", err)
	}
	return elements, nil
}

func (p *Postgres) SaveElements(ctx context.Context, canvasID string, elements []shape.Shape) error {
	data, err := encodeScene(elements)
	if err != nil {
		return err
	}
	err = p.queries.UpdateCanvasElements(ctx, dbgen.UpdateCanvasElementsParams{
		ID:       canvasID,
		Elements: data,
	})
	if err != nil {
		return fmt.Errorf("save elements: %w", err)
	}
	return nil
}

// SaveMany writes several canvas scenes in one batched round trip, used when
// flushing all live sessions at shutdown.
func (p *Postgres) SaveMany(ctx context.Context, scenes map[string][]shape.Shape) error {
	if len(scenes) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for canvasID, elements := range scenes {
		data, err := encodeScene(elements)
		if err != nil {
			return err
		}
		batch.Queue("UPDATE canvases SET elements = $2, updated_at = now() WHERE id = $1", canvasID, data)
	}

	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range scenes {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batched save: %w", err)
		}
	}
	return nil
}

func encodeScene(elements []shape.Shape) (json.RawMessage, error) {
	if elements == nil {
		elements = []shape.Shape{}
	}
	data, err := json.Marshal(elements)
	if err != nil {
		return nil, fmt.Errorf("encode elements: %w", err)
	}
	return data, nil
}
