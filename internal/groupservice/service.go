// Package groupservice manages business logic layer of groups.
package groupservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/internal/eventbus"
	"github.com/splitpal/splitpal/internal/ledger"
	"github.com/splitpal/splitpal/pkg/currencypkg"
)

// Repo provides data access layer interface needed by group service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package groupservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateGroupParams) (domain.Group, error)
	Get(ctx context.Context, groupID int64) (domain.Group, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.Group, error)
	SetStatus(ctx context.Context, groupID int64, status string) (domain.Group, error)
	SoftDelete(ctx context.Context, groupID int64) error
	AddMember(ctx context.Context, groupID, userID int64) (domain.GroupMember, error)
	RemoveMember(ctx context.Context, groupID, userID int64) error
	ActiveMemberIDs(ctx context.Context, groupID int64) ([]int64, error)
}

// Balances provides the per-currency net positions needed to gate
// destructive group operations on outstanding debt.
//
//go:generate mockgen -source service.go -destination service_mock.go -package groupservice
type Balances interface {
	Nets(ctx context.Context, groupID int64) (domain.NetByCurrency, error)
	ScaleOf(ctx context.Context, code string) (int32, error)
}

// Service facilitates group service layer logic.
type Service struct {
	repo      Repo
	balances  Balances
	publisher eventbus.Publisher
}

// New returns group service struct to manage group business logic.
func New(gr Repo, b Balances, pub eventbus.Publisher) *Service {
	return &Service{
		repo:      gr,
		balances:  b,
		publisher: pub,
	}
}

// Create creates a group owned by the given user.
func (s *Service) Create(ctx context.Context, arg domain.CreateGroupParams) (domain.Group, error) {
	arg.DefaultCurrency = currencypkg.Normalize(arg.DefaultCurrency)

	return s.repo.Create(ctx, arg)
}

// Get returns the group if the user is one of its active members.
func (s *Service) Get(ctx context.Context, groupID, userID int64) (domain.Group, error) {
	g, err := s.repo.Get(ctx, groupID)
	if err != nil {
		return g, err
	}

	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return domain.Group{}, err
	}

	return g, nil
}

// ListForUser returns the groups where the user is an active member.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]domain.Group, error) {
	return s.repo.ListForUser(ctx, userID)
}

// AddMember adds the user to the group. Any active member can invite.
func (s *Service) AddMember(ctx context.Context, groupID, actorID, userID int64) (domain.GroupMember, error) {
	g, err := s.repo.Get(ctx, groupID)
	if err != nil {
		return domain.GroupMember{}, err
	}

	if g.Status == domain.GroupStatusArchived {
		return domain.GroupMember{}, domain.ErrGroupArchived
	}

	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return domain.GroupMember{}, err
	}

	m, err := s.repo.AddMember(ctx, groupID, userID)
	if err != nil {
		return domain.GroupMember{}, err
	}

	if err := s.publisher.Publish(ctx, eventbus.NewMemberChanged(groupID, userID)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("group_id", groupID).Msg("publish failed")
	}

	return m, nil
}

// RemoveMember removes the user from the group. Only the owner may
// remove other members; anyone may remove themselves. Removal is
// refused while the member carries a nonzero balance in any currency.
func (s *Service) RemoveMember(ctx context.Context, groupID, actorID, userID int64) error {
	g, err := s.repo.Get(ctx, groupID)
	if err != nil {
		return err
	}

	if actorID != userID && actorID != g.OwnerID {
		return domain.ErrNotGroupOwner
	}

	if userID == g.OwnerID {
		return domain.ErrOwnerCannotLeave
	}

	hasBalance, err := s.memberHasBalance(ctx, groupID, userID)
	if err != nil {
		return err
	}

	if hasBalance {
		return domain.ErrMemberHasBalance
	}

	if err := s.repo.RemoveMember(ctx, groupID, userID); err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, eventbus.NewMemberChanged(groupID, userID)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("group_id", groupID).Msg("publish failed")
	}

	return nil
}

// Leave removes the calling user from the group.
func (s *Service) Leave(ctx context.Context, groupID, userID int64) error {
	return s.RemoveMember(ctx, groupID, userID, userID)
}

// Members returns the active member ids of the group.
func (s *Service) Members(ctx context.Context, groupID, userID int64) ([]int64, error) {
	if _, err := s.repo.Get(ctx, groupID); err != nil {
		return nil, err
	}

	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	return s.repo.ActiveMemberIDs(ctx, groupID)
}

// Archive puts the group into the read-only archived state. Archiving
// is refused while any member still owes another.
func (s *Service) Archive(ctx context.Context, groupID, actorID int64) (domain.Group, error) {
	l := zerolog.Ctx(ctx)

	g, err := s.repo.Get(ctx, groupID)
	if err != nil {
		return g, err
	}

	if actorID != g.OwnerID {
		return domain.Group{}, domain.ErrNotGroupOwner
	}

	hasDebts, err := s.hasDebts(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}

	if hasDebts {
		l.Info().Int64("group_id", groupID).Msg("archive refused: unsettled balances")
		return domain.Group{}, domain.ErrGroupHasDebts
	}

	return s.repo.SetStatus(ctx, groupID, domain.GroupStatusArchived)
}

// Unarchive returns the group to the active state.
func (s *Service) Unarchive(ctx context.Context, groupID, actorID int64) (domain.Group, error) {
	g, err := s.repo.Get(ctx, groupID)
	if err != nil {
		return g, err
	}

	if actorID != g.OwnerID {
		return domain.Group{}, domain.ErrNotGroupOwner
	}

	return s.repo.SetStatus(ctx, groupID, domain.GroupStatusActive)
}

// Delete soft-deletes the group. Deletion is refused while any member
// still owes another.
func (s *Service) Delete(ctx context.Context, groupID, actorID int64) error {
	l := zerolog.Ctx(ctx)

	g, err := s.repo.Get(ctx, groupID)
	if err != nil {
		return err
	}

	if actorID != g.OwnerID {
		return domain.ErrNotGroupOwner
	}

	hasDebts, err := s.hasDebts(ctx, groupID)
	if err != nil {
		return err
	}

	if hasDebts {
		l.Info().Int64("group_id", groupID).Msg("delete refused: unsettled balances")
		return domain.ErrGroupHasDebts
	}

	return s.repo.SoftDelete(ctx, groupID)
}

func (s *Service) requireMember(ctx context.Context, groupID, userID int64) error {
	ids, err := s.repo.ActiveMemberIDs(ctx, groupID)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if id == userID {
			return nil
		}
	}

	return domain.ErrNotGroupMember
}

func (s *Service) hasDebts(ctx context.Context, groupID int64) (bool, error) {
	nets, err := s.balances.Nets(ctx, groupID)
	if err != nil {
		return false, err
	}

	return ledger.HasDebts(nets, func(code string) (int32, error) {
		return s.balances.ScaleOf(ctx, code)
	})
}

func (s *Service) memberHasBalance(ctx context.Context, groupID, userID int64) (bool, error) {
	nets, err := s.balances.Nets(ctx, groupID)
	if err != nil {
		return false, err
	}

	return ledger.MemberHasBalance(nets, userID, func(code string) (int32, error) {
		return s.balances.ScaleOf(ctx, code)
	})
}
