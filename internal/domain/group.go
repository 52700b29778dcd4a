package domain

import (
	"errors"
	"time"
)

var (
	// ErrGroupNotFound indicates that the group is not found or soft-deleted.
	ErrGroupNotFound = errors.New("group not found")
	// ErrGroupArchived indicates that the group is archived and rejects mutations.
	ErrGroupArchived = errors.New("group is archived")
	// ErrGroupHasDebts indicates that the group still has unsettled balances.
	ErrGroupHasDebts = errors.New("group has unsettled balances")
	// ErrMemberHasBalance indicates that the member still has a nonzero balance in some currency.
	ErrMemberHasBalance = errors.New("member has unsettled balance")
	// ErrMemberAlreadyExists indicates that the user is already an active group member.
	ErrMemberAlreadyExists = errors.New("user is already a group member")
	// ErrNotGroupMember indicates that the user is not an active member of the group.
	ErrNotGroupMember = errors.New("user is not a group member")
	// ErrNotGroupOwner indicates that only the group owner can perform the action.
	ErrNotGroupOwner = errors.New("only group owner can perform this action")
	// ErrOwnerCannotLeave indicates that the owner must delete or transfer the group instead of leaving.
	ErrOwnerCannotLeave = errors.New("group owner cannot leave the group")
)

// Group statuses.
const (
	GroupStatusActive   = "active"
	GroupStatusArchived = "archived"
)

// Group holds shared-expense group data.
type Group struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	OwnerID         int64      `json:"owner_id"`
	Status          string     `json:"status"`
	DefaultCurrency string     `json:"default_currency"`
	ArchivedAt      *time.Time `json:"archived_at,omitempty"`
	DeletedAt       *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CreateGroupParams is the input data to create a group.
type CreateGroupParams struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	OwnerID         int64  `json:"owner_id"`
	DefaultCurrency string `json:"default_currency"`
}

// GroupMember holds a group membership row. A non-nil DeletedAt marks a
// member who left; the row is kept for reactivation.
type GroupMember struct {
	ID        int64      `json:"id"`
	GroupID   int64      `json:"group_id"`
	UserID    int64      `json:"user_id"`
	DeletedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
}
