// Package currencyrepo manages repository layer of currency reference data.
package currencyrepo

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/pkg/currencypkg"
	"github.com/splitpal/splitpal/pkg/dbpkg"
	"github.com/splitpal/splitpal/pkg/errorspkg"
)

// RepoPGS facilitates currency repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns currency RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const listQuery = `
SELECT
	code, numeric_code, decimals, symbol, is_popular
FROM currencies
ORDER BY is_popular DESC, code
`

// List returns all known currencies, popular ones first.
func (r *RepoPGS) List(ctx context.Context) ([]domain.Currency, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Currency{}

	for rows.Next() {
		var c domain.Currency
		if err := rows.Scan(&c.Code, &c.NumericCode, &c.Decimals, &c.Symbol, &c.IsPopular); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, c)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const getQuery = `
SELECT
	code, numeric_code, decimals, symbol, is_popular
FROM currencies
WHERE code = $1
`

// Get returns the currency with the given code.
func (r *RepoPGS) Get(ctx context.Context, code string) (domain.Currency, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, currencypkg.Normalize(code))

	var c domain.Currency

	err := row.Scan(&c.Code, &c.NumericCode, &c.Decimals, &c.Symbol, &c.IsPopular)
	if err != nil {
		if err == sql.ErrNoRows {
			return c, domain.ErrUnknownCurrency
		}

		l.Error().Err(err).Send()

		return c, errorspkg.ErrInternal
	}

	return c, nil
}

// ScaleOf returns the rounding scale for the given currency code. The
// built-in table answers for seed currencies and the unknown-currency
// bucket, so balance math stays available before seeding.
func (r *RepoPGS) ScaleOf(ctx context.Context, code string) (int32, error) {
	code = currencypkg.Normalize(code)

	if scale, ok := currencypkg.Scale(code); ok {
		return scale, nil
	}

	c, err := r.Get(ctx, code)
	if err != nil {
		return 0, err
	}

	return c.Decimals, nil
}

const upsertQuery = `
INSERT INTO currencies (
	code, numeric_code, decimals, symbol, is_popular
) VALUES (
	$1, $2, $3, $4, $5
)
ON CONFLICT (code) DO UPDATE SET
	numeric_code = EXCLUDED.numeric_code,
	decimals = EXCLUDED.decimals,
	symbol = EXCLUDED.symbol,
	is_popular = EXCLUDED.is_popular
`

// Upsert inserts or refreshes one currency row. Used by the seeder.
func (r *RepoPGS) Upsert(ctx context.Context, c domain.Currency) error {
	l := zerolog.Ctx(ctx)

	_, err := r.db.ExecContext(ctx, upsertQuery,
		currencypkg.Normalize(c.Code),
		c.NumericCode,
		c.Decimals,
		c.Symbol,
		c.IsPopular,
	)

	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}
