// Package classroom implements classrooms joined by code, their membership
// roster, and teacher announcements.
package classroom

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aperture/aperture/backend-go/internal/db/dbgen"
	"github.com/aperture/aperture/backend-go/internal/typeid"
)

var (
	ErrNotFound  = errors.New("classroom not found")
	ErrForbidden = errors.New("forbidden")
	ErrNotMember = errors.New("not a classroom member")
	ErrBadCode   = errors.New("invalid join code")
)

// joinCodeAlphabet avoids ambiguous characters (0/O, 1/I/L).
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
const joinCodeLength = 6

type Service struct {
	queries *dbgen.Queries
}

func NewService(queries *dbgen.Queries) *Service {
	return &Service{queries: queries}
}

type Classroom struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	JoinCode  string `json:"joinCode,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

type Announcement struct {
	ID        string `json:"id"`
	AuthorID  string `json:"authorId"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

func (s *Service) Create(ctx context.Context, name, ownerID string) (*Classroom, error) {
	code, err := newJoinCode()
	if err != nil {
		return nil, err
	}

	dbClass, err := s.queries.CreateClassroom(ctx, dbgen.CreateClassroomParams{
		ID:       typeid.NewClassroomID(),
		Name:     name,
		OwnerID:  ownerID,
		JoinCode: code,
	})
	if err != nil {
		return nil, fmt.Errorf("create classroom: %w", err)
	}

	err = s.queries.AddClassroomMember(ctx, dbgen.AddClassroomMemberParams{
		ClassroomID: dbClass.ID,
		UserID:      ownerID,
		Role:        dbgen.ClassroomRoleTeacher,
	})
	if err != nil {
		return nil, fmt.Errorf("add owner as member: %w", err)
	}

	return dbClassroomToClassroom(dbClass, true), nil
}

// Join adds the user as a student via join code and returns the classroom.
func (s *Service) Join(ctx context.Context, joinCode, userID string) (*Classroom, error) {
	dbClass, err := s.queries.GetClassroomByJoinCode(ctx, joinCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBadCode
		}
		return nil, fmt.Errorf("lookup join code: %w", err)
	}

	err = s.queries.AddClassroomMember(ctx, dbgen.AddClassroomMemberParams{
		ClassroomID: dbClass.ID,
		UserID:      userID,
		Role:        dbgen.ClassroomRoleStudent,
	})
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	return dbClassroomToClassroom(dbClass, false), nil
}

func (s *Service) Get(ctx context.Context, classroomID, userID string) (*Classroom, error) {
	member, err := s.member(ctx, classroomID, userID)
	if err != nil {
		return nil, err
	}

	dbClass, err := s.queries.GetClassroom(ctx, classroomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get classroom: %w", err)
	}

	// The join code is only revealed to the teacher.
	return dbClassroomToClassroom(dbClass, member.Role == dbgen.ClassroomRoleTeacher), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Classroom, error) {
	dbClasses, err := s.queries.ListClassroomsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}

	classes := make([]Classroom, len(dbClasses))
	for i, c := range dbClasses {
		classes[i] = *dbClassroomToClassroom(c, c.OwnerID == userID)
	}
	return classes, nil
}

func (s *Service) ListMembers(ctx context.Context, classroomID, userID string) ([]Member, error) {
	if _, err := s.member(ctx, classroomID, userID); err != nil {
		return nil, err
	}

	dbMembers, err := s.queries.ListClassroomMembers(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]Member, len(dbMembers))
	for i, m := range dbMembers {
		members[i] = Member{
			UserID:      m.UserID,
			Role:        string(m.Role),
			DisplayName: m.DisplayName,
			Email:       m.Email,
		}
	}
	return members, nil
}

func (s *Service) RemoveMember(ctx context.Context, classroomID, ownerID, targetUserID string) error {
	dbClass, err := s.queries.GetClassroom(ctx, classroomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get classroom: %w", err)
	}

	if dbClass.OwnerID != ownerID {
		return ErrForbidden
	}
	if targetUserID == ownerID {
		return errors.New("cannot remove classroom owner")
	}

	return s.queries.RemoveClassroomMember(ctx, dbgen.RemoveClassroomMemberParams{
		ClassroomID: classroomID,
		UserID:      targetUserID,
	})
}

// Announce posts an announcement. Only the teacher may post.
func (s *Service) Announce(ctx context.Context, classroomID, authorID, body string) (*Announcement, error) {
	member, err := s.member(ctx, classroomID, authorID)
	if err != nil {
		return nil, err
	}
	if member.Role != dbgen.ClassroomRoleTeacher {
		return nil, ErrForbidden
	}

	dbAnn, err := s.queries.CreateAnnouncement(ctx, dbgen.CreateAnnouncementParams{
		ID:          typeid.NewAnnouncementID(),
		ClassroomID: classroomID,
		AuthorID:    authorID,
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}

	return dbAnnouncementToAnnouncement(dbAnn), nil
}

func (s *Service) ListAnnouncements(ctx context.Context, classroomID, userID string) ([]Announcement, error) {
	if _, err := s.member(ctx, classroomID, userID); err != nil {
		return nil, err
	}

	dbAnns, err := s.queries.ListAnnouncements(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}

	anns := make([]Announcement, len(dbAnns))
	for i, a := range dbAnns {
		anns[i] = *dbAnnouncementToAnnouncement(a)
	}
	return anns, nil
}

func (s *Service) member(ctx context.Context, classroomID, userID string) (dbgen.ClassroomMember, error) {
	member, err := s.queries.GetClassroomMember(ctx, dbgen.GetClassroomMemberParams{
		ClassroomID: classroomID,
		UserID:      userID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dbgen.ClassroomMember{}, ErrNotMember
		}
		return dbgen.ClassroomMember{}, fmt.Errorf("check membership: %w", err)
	}
	return member, nil
}

func newJoinCode() (string, error) {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate join code: %w", err)
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}

func dbClassroomToClassroom(c dbgen.Classroom, includeCode bool) *Classroom {
	out := &Classroom{
		ID:        c.ID,
		Name:      c.Name,
		OwnerID:   c.OwnerID,
		CreatedAt: c.CreatedAt.Time.Format("2006-01-02T15:04:05Z"),
	}
	if includeCode {
		out.JoinCode = c.JoinCode
	}
	return out
}

func dbAnnouncementToAnnouncement(a dbgen.Announcement) *Announcement {
	return &Announcement{
		ID:        a.ID,
		AuthorID:  a.AuthorID,
		Body:      a.Body,
		CreatedAt: a.CreatedAt.Time.Format("2006-01-02T15:04:05Z"),
	}
}
