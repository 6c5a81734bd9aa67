// Package summary generates short study summaries of notes through an
// external chat-completions endpoint and stores the results.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aperture/aperture/backend-go/internal/db/dbgen"
	"github.com/aperture/aperture/backend-go/internal/typeid"
)

var (
	ErrNotFound    = errors.New("note not found")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("summarizer unavailable")
)

const systemPrompt = "Summarize the following study note in at most five bullet points. Keep the student's own terminology."

type Service struct {
	queries *dbgen.Queries
	client  *http.Client

	url   string
	key   string
	model string
}

func NewService(queries *dbgen.Queries, url, key, model string) *Service {
	return &Service{
		queries: queries,
		client:  &http.Client{Timeout: 30 * time.Second},
		url:     url,
		key:     key,
		model:   model,
	}
}

type Summary struct {
	ID        string `json:"id"`
	NoteID    string `json:"noteId"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize generates and stores a fresh summary of the user's note.
func (s *Service) Summarize(ctx context.Context, noteID, userID string) (*Summary, error) {
	if s.url == "" {
		return nil, ErrUnavailable
	}

	dbNote, err := s.queries.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get note: %w", err)
	}
	if dbNote.OwnerID != userID {
		return nil, ErrForbidden
	}

	content, err := s.complete(ctx, dbNote.Title+"\n\n"+dbNote.Content)
	if err != nil {
		return nil, err
	}

	dbSummary, err := s.queries.CreateSummary(ctx, dbgen.CreateSummaryParams{
		ID:      typeid.NewSummaryID(),
		NoteID:  noteID,
		Content: content,
	})
	if err != nil {
		return nil, fmt.Errorf("store summary: %w", err)
	}

	return dbSummaryToSummary(dbSummary), nil
}

// Latest returns the most recent stored summary for the user's note.
func (s *Service) Latest(ctx context.Context, noteID, userID string) (*Summary, error) {
	dbNote, err := s.queries.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get note: %w", err)
	}
	if dbNote.OwnerID != userID {
		return nil, ErrForbidden
	}

	dbSummary, err := s.queries.GetLatestSummaryForNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get summary: %w", err)
	}

	return dbSummaryToSummary(dbSummary), nil
}

func (s *Service) complete(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.key != "" {
		req.Header.Set("Authorization", "Bearer "+s.key)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, data)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	return out.Choices[0].Message.Content, nil
}

func dbSummaryToSummary(s dbgen.Summary) *Summary {
	return &Summary{
		ID:        s.ID,
		NoteID:    s.NoteID,
		Content:   s.Content,
		CreatedAt: s.CreatedAt.Time.Format("2006-01-02T15:04:05Z"),
	}
}
