// cmd/seed.go

package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_err"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/seed"
)

// SeedCmd loads generated demo data into an analytics database.
var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a database with demo data",
	Long: `Seed generates deterministic demo business data (contacts, orders,
invoices and friends) and loads it into the stack's analytics database.

  metis seed --type sales_orders --count 5000 --normalize`,
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		if db := cli.GetStringOrEmpty(cmd, "db"); db != "postgres" {
			return metis_err.NewValidationError(
				"unsupported database backend: "+db,
				"Only `postgres` is available.")
		}

		dataset, err := cli.GetRequiredString(cmd, "type")
		if err != nil {
			return metis_err.NewValidationError(err.Error(),
				"Available types: "+strings.Join(seed.Names(), ", "))
		}

		opts := seed.Options{Dataset: dataset}
		opts.Count, _ = cmd.Flags().GetInt("count")
		opts.BatchSize, _ = cmd.Flags().GetInt("batch-size")
		opts.Seed, _ = cmd.Flags().GetInt64("seed")
		opts.Normalize, _ = cmd.Flags().GetBool("normalize")
		opts.Clear, _ = cmd.Flags().GetBool("clear")

		if opts.Start, err = parseDate(cli.GetStringOrEmpty(cmd, "start"), "start"); err != nil {
			return err
		}
		if opts.End, err = parseDate(cli.GetStringOrEmpty(cmd, "end"), "end"); err != nil {
			return err
		}

		dsn := cli.GetStringOrEmpty(cmd, "dsn")
		if dsn == "" {
			dsn = os.Getenv("METIS_SEED_DSN")
		}
		if dsn != "" {
			if opts.Config, err = seed.ConfigFromDSN(dsn); err != nil {
				return err
			}
		}

		summary, err := seed.Run(rc, opts)
		if err != nil {
			return err
		}

		printBlank()
		printSuccess("Seeded %s: inserted %d of %d requested (table %s now holds %d rows).",
			summary.Dataset, summary.Inserted, summary.Requested, summary.Table, summary.Total)
		if opts.Normalize {
			printPlain("  dimensions: %d customers, %d products", summary.Customers, summary.Products)
		}
		printBlank()
		printInfo("Connection: %s", summary.Config.String())
		printPlain("  %s", summary.Config.PsqlCommand())
		return nil
	}),
}

func init() {
	SeedCmd.Flags().StringP("db", "d", "postgres", "Database service to seed")
	SeedCmd.Flags().StringP("type", "t", "", "Type of data to generate ("+strings.Join(seed.Names(), ", ")+")")
	SeedCmd.Flags().IntP("count", "n", seed.DefaultCount, "Number of records to generate")
	SeedCmd.Flags().Int("batch-size", seed.DefaultBatchSize, "Records per insert batch")
	SeedCmd.Flags().Int64("seed", 0, "Random seed (0 means time-based)")
	SeedCmd.Flags().String("start", "", "Start date for the time field (YYYY-MM-DD, default: 1 year ago)")
	SeedCmd.Flags().String("end", "", "End date for the time field (YYYY-MM-DD, default: today)")
	SeedCmd.Flags().Bool("normalize", false, "Extract customer/product dimension tables")
	SeedCmd.Flags().Bool("clear", false, "Clear existing data before seeding")
	SeedCmd.Flags().String("dsn", "", "Postgres DSN override (also METIS_SEED_DSN)")

	if err := SeedCmd.MarkFlagRequired("type"); err != nil {
		panic(err)
	}
}

func parseDate(value, name string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, metis_err.NewValidationError(
			"invalid "+name+" date: "+value,
			"Use YYYY-MM-DD.")
	}
	return t, nil
}
