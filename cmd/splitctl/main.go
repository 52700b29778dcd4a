// Package main provides splitctl, the operational CLI for the ledger.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	_ "github.com/lib/pq"

	"github.com/splitpal/splitpal/internal/currencyrepo"
	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/internal/middleware"
	"github.com/splitpal/splitpal/pkg/configpkg"
	"github.com/splitpal/splitpal/pkg/dbpkg"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "splitctl",
	Short: "Operational tooling for the shared-expense ledger",
}

var seedCurrenciesCmd = &cobra.Command{
	Use:   "seed-currencies <csv-file>",
	Short: "Load the ISO-4217 currency table from a CSV file into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  seedCurrencies,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./configs", "directory holding app.env")
	rootCmd.AddCommand(seedCurrenciesCmd)
}

// currencyRow is one line of the seed CSV.
type currencyRow struct {
	Code        string `csv:"code"`
	NumericCode int16  `csv:"numeric_code"`
	Decimals    int32  `csv:"decimals"`
	Symbol      string `csv:"symbol"`
	IsPopular   bool   `csv:"is_popular"`
}

func seedCurrencies(cmd *cobra.Command, args []string) error {
	config, err := configpkg.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := middleware.GetLogger(config)
	ctx := logger.WithContext(cmd.Context())

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer file.Close()

	var rows []currencyRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := currencyrepo.NewRepoPGS(db)

	for _, row := range rows {
		err := repo.Upsert(ctx, domain.Currency{
			Code:        row.Code,
			NumericCode: row.NumericCode,
			Decimals:    row.Decimals,
			Symbol:      row.Symbol,
			IsPopular:   row.IsPopular,
		})
		if err != nil {
			return fmt.Errorf("seed currency %s: %w", row.Code, err)
		}
	}

	logger.Info().Int("count", len(rows)).Msg("currencies seeded")

	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
