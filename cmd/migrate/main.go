package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pharmacare/pharmacare-backend/pkg/config"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

func main() {
	force := flag.Int("force", -1, "set the schema version without running migrations")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: migrate [-force N] up|down|version\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.LoadWithValidation("pharmacy-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("migrate", cfg.Server.Environment)

	m, err := database.NewMigrator(cfg.Database.DSN(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create migrator")
	}
	defer m.Close()

	if *force >= 0 {
		if err := m.Force(*force); err != nil {
			log.Fatal().Err(err).Msg("failed to force version")
		}
		return
	}

	cmd := "up"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		version, dirty, verr := m.Version()
		if verr == nil {
			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema version")
		}
		err = verr
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("migration command failed")
	}
}
