package dbgen

import "context"

const createClassroom = `
INSERT INTO classrooms (id, name, owner_id, join_code)
VALUES ($1, $2, $3, $4)
RETURNING id, name, owner_id, join_code, created_at
`

type CreateClassroomParams struct {
	ID       string
	Name     string
	OwnerID  string
	JoinCode string
}

func (q *Queries) CreateClassroom(ctx context.Context, arg CreateClassroomParams) (Classroom, error) {
	row := q.db.QueryRow(ctx, createClassroom, arg.ID, arg.Name, arg.OwnerID, arg.JoinCode)
	var c Classroom
	err := row.Scan(&c.ID, &c.Name, &c.OwnerID, &c.JoinCode, &c.CreatedAt)
	return c, err
}

const getClassroom = `
SELECT id, name, owner_id, join_code, created_at
FROM classrooms WHERE id = $1
`

func (q *Queries) GetClassroom(ctx context.Context, id string) (Classroom, error) {
	row := q.db.QueryRow(ctx, getClassroom, id)
	var c Classroom
	err := row.Scan(&c.ID, &c.Name, &c.OwnerID, &c.JoinCode, &c.CreatedAt)
	return c, err
}

const getClassroomByJoinCode = `
SELECT id, name, owner_id, join_code, created_at
FROM classrooms WHERE join_code = $1
`

func (q *Queries) GetClassroomByJoinCode(ctx context.Context, joinCode string) (Classroom, error) {
	row := q.db.QueryRow(ctx, getClassroomByJoinCode, joinCode)
	var c Classroom
	err := row.Scan(&c.ID, &c.Name, &c.OwnerID, &c.JoinCode, &c.CreatedAt)
	return c, err
}

const listClassroomsForUser = `
SELECT c.id, c.name, c.owner_id, c.join_code, c.created_at
FROM classrooms c
JOIN classroom_members m ON m.classroom_id = c.id
WHERE m.user_id = $1
ORDER BY c.created_at DESC
`

func (q *Queries) ListClassroomsForUser(ctx context.Context, userID string) ([]Classroom, error) {
	rows, err := q.db.Query(ctx, listClassroomsForUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Classroom
	for rows.Next() {
		var c Classroom
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID, &c.JoinCode, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const addClassroomMember = `
INSERT INTO classroom_members (classroom_id, user_id, role)
VALUES ($1, $2, $3)
ON CONFLICT (classroom_id, user_id) DO NOTHING
`

type AddClassroomMemberParams struct {
	ClassroomID string
	UserID      string
	Role        ClassroomRole
}

func (q *Queries) AddClassroomMember(ctx context.Context, arg AddClassroomMemberParams) error {
	_, err := q.db.Exec(ctx, addClassroomMember, arg.ClassroomID, arg.UserID, arg.Role)
	return err
}

const getClassroomMember = `
SELECT classroom_id, user_id, role, joined_at
FROM classroom_members WHERE classroom_id = $1 AND user_id = $2
`

type GetClassroomMemberParams struct {
	ClassroomID string
	UserID      string
}

func (q *Queries) GetClassroomMember(ctx context.Context, arg GetClassroomMemberParams) (ClassroomMember, error) {
	row := q.db.QueryRow(ctx, getClassroomMember, arg.ClassroomID, arg.UserID)
	var m ClassroomMember
	err := row.Scan(&m.ClassroomID, &m.UserID, &m.Role, &m.JoinedAt)
	return m, err
}

const listClassroomMembers = `
SELECT m.classroom_id, m.user_id, m.role, m.joined_at, u.display_name, u.email
FROM classroom_members m
JOIN users u ON u.id = m.user_id
WHERE m.classroom_id = $1
ORDER BY m.joined_at
`

type ListClassroomMembersRow struct {
	ClassroomMember
	DisplayName string
	Email       string
}

func (q *Queries) ListClassroomMembers(ctx context.Context, classroomID string) ([]ListClassroomMembersRow, error) {
	rows, err := q.db.Query(ctx, listClassroomMembers, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListClassroomMembersRow
	for rows.Next() {
		var r ListClassroomMembersRow
		if err := rows.Scan(&r.ClassroomID, &r.UserID, &r.Role, &r.JoinedAt, &r.DisplayName, &r.Email); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const removeClassroomMember = `
DELETE FROM classroom_members WHERE classroom_id = $1 AND user_id = $2
`

type RemoveClassroomMemberParams struct {
	ClassroomID string
	UserID      string
}

func (q *Queries) RemoveClassroomMember(ctx context.Context, arg RemoveClassroomMemberParams) error {
	_, err := q.db.Exec(ctx, removeClassroomMember, arg.ClassroomID, arg.UserID)
	return err
}

const createAnnouncement = `
INSERT INTO announcements (id, classroom_id, author_id, body)
VALUES ($1, $2, $3, $4)
RETURNING id, classroom_id, author_id, body, created_at
`

type CreateAnnouncementParams struct {
	ID          string
	ClassroomID string
	AuthorID    string
	Body        string
}

func (q *Queries) CreateAnnouncement(ctx context.Context, arg CreateAnnouncementParams) (Announcement, error) {
	row := q.db.QueryRow(ctx, createAnnouncement, arg.ID, arg.ClassroomID, arg.AuthorID, arg.Body)
	var a Announcement
	err := row.Scan(&a.ID, &a.ClassroomID, &a.AuthorID, &a.Body, &a.CreatedAt)
	return a, err
}

const listAnnouncements = `
SELECT id, classroom_id, author_id, body, created_at
FROM announcements WHERE classroom_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListAnnouncements(ctx context.Context, classroomID string) ([]Announcement, error) {
	rows, err := q.db.Query(ctx, listAnnouncements, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Announcement
	for rows.Next() {
		var a Announcement
		if err := rows.Scan(&a.ID, &a.ClassroomID, &a.AuthorID, &a.Body, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
