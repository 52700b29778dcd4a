// Package grouprepo manages repository layer of groups and memberships.
package grouprepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/pkg/dbpkg"
	"github.com/splitpal/splitpal/pkg/errorspkg"
)

// RepoPGS facilitates group repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns group RepoPGS bound to an open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns group RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createGroupQuery = `
INSERT INTO groups (
	name,
	description,
	owner_id,
	status,
	default_currency
) VALUES (
	$1, $2, $3, $4, $5
) RETURNING id, name, description, owner_id, status, default_currency, archived_at, deleted_at, created_at
`

const addMemberQuery = `
INSERT INTO group_members (
	group_id,
	user_id
) VALUES (
	$1, $2
) RETURNING id, group_id, user_id, deleted_at, created_at
`

// Create creates the group with its owner as the first active member
// within a single db transaction.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateGroupParams) (domain.Group, error) {
	l := zerolog.Ctx(ctx)

	var g domain.Group

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return g, errorspkg.ErrInternal
	}

	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, createGroupQuery,
		arg.Name,
		arg.Description,
		arg.OwnerID,
		domain.GroupStatusActive,
		arg.DefaultCurrency,
	)

	err = scanGroup(row, &g)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "groups_owner_id_fkey" {
				return g, domain.ErrUserNotFound
			}
		}

		return g, errorspkg.ErrInternal
	}

	var m domain.GroupMember

	memberRow := tx.QueryRowContext(ctx, addMemberQuery, g.ID, arg.OwnerID)
	if err := scanMember(memberRow, &m); err != nil {
		l.Error().Err(err).Send()
		return g, errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return g, errorspkg.ErrInternal
	}

	return g, nil
}

const getGroupQuery = `
SELECT
	id, name, description, owner_id, status, default_currency, archived_at, deleted_at, created_at
FROM groups
WHERE id = $1 AND deleted_at IS NULL
`

// Get returns the group with the given id unless it is soft-deleted.
func (r *RepoPGS) Get(ctx context.Context, groupID int64) (domain.Group, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getGroupQuery, groupID)

	var g domain.Group

	err := scanGroup(row, &g)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return g, domain.ErrGroupNotFound
		}

		return g, errorspkg.ErrInternal
	}

	return g, nil
}

const listForUserQuery = `
SELECT
	g.id, g.name, g.description, g.owner_id, g.status, g.default_currency, g.archived_at, g.deleted_at, g.created_at
FROM groups g
JOIN group_members m ON m.group_id = g.id
WHERE m.user_id = $1 AND m.deleted_at IS NULL AND g.deleted_at IS NULL
ORDER BY g.id
`

// ListForUser returns the groups where the given user is an active member.
func (r *RepoPGS) ListForUser(ctx context.Context, userID int64) ([]domain.Group, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listForUserQuery, userID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Group{}

	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(
			&g.ID,
			&g.Name,
			&g.Description,
			&g.OwnerID,
			&g.Status,
			&g.DefaultCurrency,
			&g.ArchivedAt,
			&g.DeletedAt,
			&g.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, g)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const setStatusQuery = `
UPDATE groups
SET
	status = $2,
	archived_at = CASE WHEN $2 = 'archived' THEN now() ELSE NULL END
WHERE id = $1 AND deleted_at IS NULL
RETURNING id, name, description, owner_id, status, default_currency, archived_at, deleted_at, created_at
`

// SetStatus switches the group between active and archived states.
func (r *RepoPGS) SetStatus(ctx context.Context, groupID int64, status string) (domain.Group, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, setStatusQuery, groupID, status)

	var g domain.Group

	err := scanGroup(row, &g)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return g, domain.ErrGroupNotFound
		}

		return g, errorspkg.ErrInternal
	}

	return g, nil
}

const softDeleteQuery = `
UPDATE groups
SET deleted_at = now()
WHERE id = $1 AND deleted_at IS NULL
`

// SoftDelete marks the group as deleted keeping the row for audit.
func (r *RepoPGS) SoftDelete(ctx context.Context, groupID int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, softDeleteQuery, groupID)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	affected, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if affected == 0 {
		return domain.ErrGroupNotFound
	}

	return nil
}

const reactivateMemberQuery = `
UPDATE group_members
SET deleted_at = NULL
WHERE group_id = $1 AND user_id = $2 AND deleted_at IS NOT NULL
RETURNING id, group_id, user_id, deleted_at, created_at
`

// AddMember adds the user to the group. A soft-deleted membership row
// is reactivated instead of inserting a duplicate.
func (r *RepoPGS) AddMember(ctx context.Context, groupID, userID int64) (domain.GroupMember, error) {
	l := zerolog.Ctx(ctx)

	var m domain.GroupMember

	row := r.db.QueryRowContext(ctx, reactivateMemberQuery, groupID, userID)

	err := scanMember(row, &m)
	if err == nil {
		return m, nil
	}

	if err != sql.ErrNoRows {
		l.Error().Err(err).Send()
		return m, errorspkg.ErrInternal
	}

	row = r.db.QueryRowContext(ctx, addMemberQuery, groupID, userID)

	err = scanMember(row, &m)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "group_members_group_id_user_id_key":
				return m, domain.ErrMemberAlreadyExists
			case "group_members_group_id_fkey":
				return m, domain.ErrGroupNotFound
			case "group_members_user_id_fkey":
				return m, domain.ErrUserNotFound
			}
		}

		return m, errorspkg.ErrInternal
	}

	return m, nil
}

const removeMemberQuery = `
UPDATE group_members
SET deleted_at = now()
WHERE group_id = $1 AND user_id = $2 AND deleted_at IS NULL
`

// RemoveMember soft-deletes the membership row.
func (r *RepoPGS) RemoveMember(ctx context.Context, groupID, userID int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, removeMemberQuery, groupID, userID)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	affected, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if affected == 0 {
		return domain.ErrNotGroupMember
	}

	return nil
}

const activeMemberIDsQuery = `
SELECT user_id
FROM group_members
WHERE group_id = $1 AND deleted_at IS NULL
ORDER BY user_id
`

// ActiveMemberIDs returns the ids of all active members of the group.
func (r *RepoPGS) ActiveMemberIDs(ctx context.Context, groupID int64) ([]int64, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, activeMemberIDsQuery, groupID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	ids := []int64{}

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner, g *domain.Group) error {
	return row.Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.OwnerID,
		&g.Status,
		&g.DefaultCurrency,
		&g.ArchivedAt,
		&g.DeletedAt,
		&g.CreatedAt,
	)
}

func scanMember(row rowScanner, m *domain.GroupMember) error {
	return row.Scan(
		&m.ID,
		&m.GroupID,
		&m.UserID,
		&m.DeletedAt,
		&m.CreatedAt,
	)
}
