package dbgen

import (
	"encoding/json"

	"github.com/jackc/pgx/v5/pgtype"
)

type ClassroomRole string

const (
	ClassroomRoleTeacher ClassroomRole = "teacher"
	ClassroomRoleStudent ClassroomRole = "student"
)

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   pgtype.Timestamptz
}

type Classroom struct {
	ID        string
	Name      string
	OwnerID   string
	JoinCode  string
	CreatedAt pgtype.Timestamptz
}

type ClassroomMember struct {
	ClassroomID string
	UserID      string
	Role        ClassroomRole
	JoinedAt    pgtype.Timestamptz
}

type Canvas struct {
	ID          string
	Name        string
	OwnerID     string
	ClassroomID pgtype.Text
	Elements    json.RawMessage
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type Note struct {
	ID        string
	OwnerID   string
	CanvasID  pgtype.Text
	Title     string
	Content   string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type Announcement struct {
	ID          string
	ClassroomID string
	AuthorID    string
	Body        string
	CreatedAt   pgtype.Timestamptz
}

type Summary struct {
	ID        string
	NoteID    string
	Content   string
	CreatedAt pgtype.Timestamptz
}
