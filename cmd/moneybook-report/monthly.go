package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"moneybook/internal/core"
)

type monthlyCmd struct {
	owner  string
	period string
}

func (*monthlyCmd) Name() string     { return "monthly" }
func (*monthlyCmd) Synopsis() string { return "display the records and totals of one month" }
func (*monthlyCmd) Usage() string {
	return `moneybook-report monthly -owner <id> [-period YYYY-MM]

  Displays the summary and the records of one owner's month.
`
}

func (c *monthlyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "owner id")
	f.StringVar(&c.period, "period", "", "period key YYYY-MM (defaults to the current month)")
}

func (c *monthlyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" {
		fmt.Fprintln(os.Stderr, "Error: -owner is required")
		return subcommands.ExitUsageError
	}

	result, cfg, err := openStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer result.Close()

	period := core.CurrentPeriod(time.Now().In(cfg.Location())).Key()
	if c.period != "" {
		period = core.PeriodKey(c.period)
		if err := period.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: period %q: %v\n", c.period, err)
			return subcommands.ExitUsageError
		}
	}

	records, err := result.Backend.ListByPeriod(ctx, c.owner, period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	md := newBuilder(cfg).Monthly(c.owner, period, records)
	if err := printMarkdown(os.Stdout, md); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
