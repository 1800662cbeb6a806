package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5"

	"github.com/worldrep/worldrep-report/cmd/reportctl/cli"
	"github.com/worldrep/worldrep-report/internal/accounting/ledger"
	"github.com/worldrep/worldrep-report/internal/app"
	"github.com/worldrep/worldrep-report/internal/platform/db"
)

const usage = `usage: reportctl <command> [flags]

commands:
  migrate                         create the ledger tables
  seed                            insert the demo company and postings
  rates validate --company C --currency EUR[,GBP] --on YYYY-MM-DD [--json]
  jobs trigger warmup [company...]
  jobs trigger bump [reason]
  jobs stats
`

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping reportctl")
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	switch args[0] {
	case "migrate", "seed":
		return runSchema(ctx, cfg, args[0])
	case "rates":
		return runRates(ctx, cfg, args[1:])
	case "jobs":
		return runJobs(ctx, cfg, args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
}

func runSchema(ctx context.Context, cfg *app.Config, command string) int {
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		return 1
	}
	defer pool.Close()

	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		if err := ledger.NewRepository(tx).ApplySchema(ctx); err != nil {
			return err
		}
		if command == "seed" {
			return cli.Seed(ctx, tx)
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		return 1
	}
	fmt.Printf("%s complete\n", command)
	return 0
}

func runRates(ctx context.Context, cfg *app.Config, args []string) int {
	if len(args) == 0 || args[0] != "validate" {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	fs := flag.NewFlagSet("rates validate", flag.ContinueOnError)
	company := fs.String("company", "", "company name")
	currencies := fs.String("currency", "", "comma separated presentation currencies")
	on := fs.String("on", "", "rate date (YYYY-MM-DD)")
	jsonOut := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rates validate: %v\n", err)
		return 1
	}
	defer pool.Close()

	ratesCLI, err := cli.NewRatesCLI(ledger.NewRepository(pool))
	if err != nil {
		fmt.Fprintf(os.Stderr, "rates validate: %v\n", err)
		return 1
	}
	return ratesCLI.ValidateCommand(ctx, cli.RatesValidateOptions{
		Company:    *company,
		Currencies: strings.Split(*currencies, ","),
		On:         *on,
		JSONOutput: *jsonOut,
	})
}

func runJobs(ctx context.Context, cfg *app.Config, args []string) int {
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
		return 1
	}
	defer func() {
		_ = jobsCLI.Close()
	}()

	switch {
	case len(args) >= 2 && args[0] == "trigger":
		info, err := jobsCLI.Trigger(ctx, args[1], args[2:]...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs trigger: %v\n", err)
			return 1
		}
		if info == nil {
			fmt.Println("already queued")
			return 0
		}
		fmt.Printf("enqueued %s (%s)\n", info.Type, info.ID)
		return 0
	case len(args) == 1 && args[0] == "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs stats: %v\n", err)
			return 1
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
		return 0
	default:
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
}
