// Package main starts the shared-expense ledger API server.
package main

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog/log"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/splitpal/splitpal/cmd/httpserver"
	"github.com/splitpal/splitpal/internal/eventbus"
	"github.com/splitpal/splitpal/internal/middleware"
	"github.com/splitpal/splitpal/pkg/configpkg"
	"github.com/splitpal/splitpal/pkg/dbpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	if err := runMigrations(config.MigrationsURL, config.DBSource); err != nil {
		logger.Fatal().Err(err).Msg("cannot run migrations")
	}

	var publisher eventbus.Publisher = eventbus.Noop{}

	if config.AMQPSource != "" {
		client, err := eventbus.NewClient(config.AMQPSource, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to message broker")
		}

		defer client.Close()

		publisher = client
	}

	server, err := httpserver.New(db, logger, config, publisher)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("address", config.ServerAddress).Msg("ledger API server started")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}

func runMigrations(migrationsURL, dbSource string) error {
	m, err := migrate.New(migrationsURL, dbSource)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
