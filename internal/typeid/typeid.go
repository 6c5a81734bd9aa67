package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixUser         = "user"
	PrefixCanvas       = "canvas"
	PrefixElement      = "el"
	PrefixNote         = "note"
	PrefixClassroom    = "class"
	PrefixAnnouncement = "ann"
	PrefixSummary      = "sum"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewUserID() string         { return New(PrefixUser) }
func NewCanvasID() string       { return New(PrefixCanvas) }
func NewElementID() string      { return New(PrefixElement) }
func NewNoteID() string         { return New(PrefixNote) }
func NewClassroomID() string    { return New(PrefixClassroom) }
func NewAnnouncementID() string { return New(PrefixAnnouncement) }
func NewSummaryID() string      { return New(PrefixSummary) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
