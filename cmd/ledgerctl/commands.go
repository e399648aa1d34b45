// cmd/ledgerctl/commands.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"

	app "papertrade/internal"
	"papertrade/internal/api/types"
	"papertrade/internal/config"
	"papertrade/internal/util"
	"papertrade/pkg/db"
)

var commands = []subcommands.Command{
	&migrateCmd{},
	&portfolioCmd{},
	&historyCmd{},
}

// openApp builds the database-backed core without the HTTP layer.
func openApp(ctx context.Context) (*app.Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.AutoMigrate = false
	util.InitLogger("error") // keep stdout for the report
	a := &app.Application{Config: cfg, Logger: util.GetLogger()}
	if err := a.InitializeCore(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// resolveUser accepts a numeric id or a username.
func resolveUser(ctx context.Context, a *app.Application, ref string) (int64, error) {
	if ref == "" {
		return 0, errors.New("-user is required")
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}
	u, err := a.UserRepository.GetUserByUsername(ctx, a.DB, ref)
	if err != nil {
		return 0, fmt.Errorf("user %q: %w", ref, err)
	}
	return u.ID, nil
}

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "create the ledger tables if they do not exist" }
func (*migrateCmd) Usage() string {
	return `ledgerctl migrate

  Applies the embedded schema to the configured database. Safe to re-run.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	database, err := db.NewPostgresDB(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println("schema applied")
	return subcommands.ExitSuccess
}

type portfolioCmd struct {
	user string
	raw  bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "display a user's holdings and cash" }
func (*portfolioCmd) Usage() string {
	return `ledgerctl portfolio -user <id|username> [-raw]

  Prints the portfolio valued at last traded prices.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "user id or username")
	f.BoolVar(&c.raw, "raw", false, "print plain markdown instead of rendering it")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Shutdown(ctx)

	userID, err := resolveUser(ctx, a, c.user)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	p, err := a.PortfolioService.BuildPortfolio(ctx, userID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(portfolioMarkdown(types.NewPortfolioView(p)), c.raw)
	return subcommands.ExitSuccess
}

type historyCmd struct {
	user string
	raw  bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display every trade and deposit of a user" }
func (*historyCmd) Usage() string {
	return `ledgerctl history -user <id|username> [-raw]

  Prints trades and deposits in chronological order.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "user id or username")
	f.BoolVar(&c.raw, "raw", false, "print plain markdown instead of rendering it")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Shutdown(ctx)

	userID, err := resolveUser(ctx, a, c.user)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	h, err := a.PortfolioService.BuildHistory(ctx, userID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(historyMarkdown(types.NewHistoryView(h)), c.raw)
	return subcommands.ExitSuccess
}
