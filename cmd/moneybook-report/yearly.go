package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
)

type yearlyCmd struct {
	owner string
	year  int
}

func (*yearlyCmd) Name() string     { return "yearly" }
func (*yearlyCmd) Synopsis() string { return "display the per-month totals of one year" }
func (*yearlyCmd) Usage() string {
	return `moneybook-report yearly -owner <id> [-year YYYY]

  Displays the year totals and the income, expense and balance of each month.
`
}

func (c *yearlyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "owner id")
	f.IntVar(&c.year, "year", 0, "calendar year (defaults to the current year)")
}

func (c *yearlyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" {
		fmt.Fprintln(os.Stderr, "Error: -owner is required")
		return subcommands.ExitUsageError
	}
	if c.year < 0 || c.year > 9999 {
		fmt.Fprintf(os.Stderr, "Error: invalid year %d\n", c.year)
		return subcommands.ExitUsageError
	}

	result, cfg, err := openStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer result.Close()

	year := c.year
	if year == 0 {
		year = time.Now().In(cfg.Location()).Year()
	}

	records, err := result.Backend.ListByYear(ctx, c.owner, year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	md := newBuilder(cfg).Yearly(c.owner, year, records)
	if err := printMarkdown(os.Stdout, md); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
