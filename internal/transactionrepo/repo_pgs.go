// Package transactionrepo manages repository layer of transactions.
package transactionrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/pkg/dbpkg"
	"github.com/splitpal/splitpal/pkg/errorspkg"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transaction RepoPGS bound to an open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transaction RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO transactions (
	group_id,
	created_by,
	kind,
	amount,
	currency,
	date,
	comment,
	category_id,
	paid_by,
	split_policy,
	transfer_from
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
) RETURNING id, created_at
`

const createShareQuery = `
INSERT INTO transaction_shares (
	transaction_id,
	user_id,
	amount,
	share_count
) VALUES (
	$1, $2, $3, $4
)
`

const createRecipientQuery = `
INSERT INTO transaction_recipients (
	transaction_id,
	user_id
) VALUES (
	$1, $2
)
`

// Create persists the transaction with its shares and transfer
// recipients within a single db transaction.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	t := domain.Transaction{
		GroupID:      arg.GroupID,
		CreatedBy:    arg.CreatedBy,
		Kind:         arg.Kind,
		Amount:       arg.Amount,
		Currency:     arg.Currency,
		Date:         arg.Date,
		Comment:      arg.Comment,
		CategoryID:   arg.CategoryID,
		PaidBy:       arg.PaidBy,
		SplitPolicy:  arg.SplitPolicy,
		Shares:       arg.Shares,
		TransferFrom: arg.TransferFrom,
		TransferTo:   arg.TransferTo,
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return t, errorspkg.ErrInternal
	}

	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, createQuery,
		arg.GroupID,
		arg.CreatedBy,
		arg.Kind,
		arg.Amount,
		arg.Currency,
		arg.Date,
		arg.Comment,
		arg.CategoryID,
		arg.PaidBy,
		arg.SplitPolicy,
		arg.TransferFrom,
	)

	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_group_id_fkey":
				return t, domain.ErrGroupNotFound
			case "transactions_amount_check":
				return t, domain.ErrNegativeAmount
			}
		}

		return t, errorspkg.ErrInternal
	}

	for _, share := range arg.Shares {
		if _, err := tx.ExecContext(ctx, createShareQuery, t.ID, share.UserID, share.Amount, share.ShareCount); err != nil {
			l.Error().Err(err).Send()
			return t, errorspkg.ErrInternal
		}
	}

	for _, userID := range arg.TransferTo {
		if _, err := tx.ExecContext(ctx, createRecipientQuery, t.ID, userID); err != nil {
			l.Error().Err(err).Send()
			return t, errorspkg.ErrInternal
		}
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, group_id, created_by, kind, amount, currency, date, comment,
	category_id, paid_by, split_policy, transfer_from, is_deleted, created_at
FROM transactions
WHERE id = $1 AND is_deleted = FALSE
`

// Get returns the transaction with the given id including its shares
// and transfer recipients.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var t domain.Transaction

	err := scanTransaction(row, &t)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		return t, errorspkg.ErrInternal
	}

	if err := r.loadDetails(ctx, []*domain.Transaction{&t}); err != nil {
		return t, err
	}

	return t, nil
}

const listByGroupQuery = `
SELECT
	id, group_id, created_by, kind, amount, currency, date, comment,
	category_id, paid_by, split_policy, transfer_from, is_deleted, created_at
FROM transactions
WHERE group_id = $1 AND is_deleted = FALSE
ORDER BY date, id
`

// ListByGroup returns all live transactions of the group in date order.
func (r *RepoPGS) ListByGroup(ctx context.Context, groupID int64) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByGroupQuery, groupID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var t domain.Transaction
		if err := scanTransaction(rows, &t); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	refs := make([]*domain.Transaction, len(items))
	for i := range items {
		refs[i] = &items[i]
	}

	if err := r.loadDetails(ctx, refs); err != nil {
		return nil, err
	}

	return items, nil
}

const softDeleteQuery = `
UPDATE transactions
SET is_deleted = TRUE
WHERE id = $1 AND is_deleted = FALSE
`

// SoftDelete marks the transaction as deleted, excluding it from
// balance math while keeping the row.
func (r *RepoPGS) SoftDelete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, softDeleteQuery, id)
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
		return domain.ErrTransactionNotFound
	}

	return nil
}

const sharesQuery = `
SELECT
	transaction_id, user_id, amount, share_count
FROM transaction_shares
WHERE transaction_id = ANY($1)
ORDER BY transaction_id, user_id
`

const recipientsQuery = `
SELECT
	transaction_id, user_id
FROM transaction_recipients
WHERE transaction_id = ANY($1)
ORDER BY transaction_id, user_id
`

// loadDetails attaches shares and transfer recipients to the given
// transactions with two batched queries.
func (r *RepoPGS) loadDetails(ctx context.Context, txs []*domain.Transaction) error {
	l := zerolog.Ctx(ctx)

	if len(txs) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Transaction, len(txs))
	ids := make([]int64, 0, len(txs))

	for _, t := range txs {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	rows, err := r.db.QueryContext(ctx, sharesQuery, pq.Array(ids))
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}
	defer rows.Close()

	for rows.Next() {
		var (
			txID  int64
			share domain.Share
		)

		if err := rows.Scan(&txID, &share.UserID, &share.Amount, &share.ShareCount); err != nil {
			l.Error().Err(err).Send()
			return errorspkg.ErrInternal
		}

		if t, ok := byID[txID]; ok {
			t.Shares = append(t.Shares, share)
		}
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	recipientRows, err := r.db.QueryContext(ctx, recipientsQuery, pq.Array(ids))
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}
	defer recipientRows.Close()

	for recipientRows.Next() {
		var txID, userID int64

		if err := recipientRows.Scan(&txID, &userID); err != nil {
			l.Error().Err(err).Send()
			return errorspkg.ErrInternal
		}

		if t, ok := byID[txID]; ok {
			t.TransferTo = append(t.TransferTo, userID)
		}
	}

	if err := recipientRows.Err(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner, t *domain.Transaction) error {
	return row.Scan(
		&t.ID,
		&t.GroupID,
		&t.CreatedBy,
		&t.Kind,
		&t.Amount,
		&t.Currency,
		&t.Date,
		&t.Comment,
		&t.CategoryID,
		&t.PaidBy,
		&t.SplitPolicy,
		&t.TransferFrom,
		&t.IsDeleted,
		&t.CreatedAt,
	)
}
