package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/kalmanoharan/rebalance-engine/store"
)

// migrateCmd applies any pending schema migrations and exits. store.Open
// already applies migrations on every startup; this subcommand exists for
// operators who want to run them ahead of a deploy, separately from serve.
type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending database migrations" }
func (*migrateCmd) Usage() string    { return "migrate\n\n  Applies pending schema migrations and exits.\n" }
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (c *migrateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error applying migrations: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	fmt.Println("Migrations applied.")
	return subcommands.ExitSuccess
}
