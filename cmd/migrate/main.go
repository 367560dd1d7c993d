package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pageza/grocerylist/backend/config"
	"github.com/pageza/grocerylist/backend/internal/database"
	"github.com/pageza/grocerylist/backend/internal/logging"
)

const usage = `Usage: migrate [flags] <command> [args]

Commands are passed to goose: up, up-by-one, up-to VERSION, down,
down-to VERSION, redo, reset, status, version.

Flags:
`

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration (same as the down command)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	command, args := "up", []string(nil)
	if *rollback {
		command = "down"
	} else if flag.NArg() > 0 {
		command, args = flag.Arg(0), flag.Args()[1:]
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Setup("info", "text").WithError(err).Fatal("Invalid configuration")
	}
	log := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.DBDriver != database.DriverPostgres {
		log.WithField("driver", cfg.DBDriver).Error("Migrations are only managed for postgres; sqlite is migrated on startup")
		os.Exit(2)
	}

	db, err := database.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	log.WithField("command", command).Info("Running migrations")
	err = database.RunGoose(context.Background(), db, command, args...)
	_ = database.Close(db)
	if err != nil {
		log.WithError(err).Fatal("Migration failed")
	}
	log.Info("Migrations complete")
}
