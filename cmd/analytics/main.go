// The analytics CLI generates and backfills metric snapshots and refreshes
// the demand forecast, connecting straight to the database.
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/supplypulse/backend/internal/analytics"
	"github.com/supplypulse/backend/internal/cache"
	"github.com/supplypulse/backend/internal/domain"
	"github.com/supplypulse/backend/internal/repository/postgres"
)

const dateLayout = "2006-01-02"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newPeriodFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "period",
		Usage: "Snapshot period (daily, weekly, monthly)",
		Value: "daily",
	}
}

func buildAggregator(c *cli.Context) (*analytics.Aggregator, *sql.DB, error) {
	raw, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := raw.Ping(); err != nil {
		raw.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := postgres.NewDBFromSQL(sqlx.NewDb(raw, "pgx"))
	aggregator := analytics.NewAggregator(
		postgres.NewOrderRepository(db),
		postgres.NewProductRepository(db),
		postgres.NewSupplierRepository(db),
		postgres.NewSnapshotRepository(db),
		cache.NewNoopDashboardKPICache(),
	)

	return aggregator, raw, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "analytics",
		Usage: "Generate and backfill analytics snapshots",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate the snapshot for one period window",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newPeriodFlag(),
					&cli.StringFlag{
						Name:  "date",
						Usage: "Reference date (YYYY-MM-DD), defaults to today",
					},
				},
				Action: runGenerate,
			},
			{
				Name:  "backfill",
				Usage: "Generate daily snapshots across a date range",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:     "from",
						Usage:    "First date (YYYY-MM-DD), inclusive",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Last date (YYYY-MM-DD), inclusive",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of days processed in parallel",
						Value: 4,
					},
				},
				Action: runBackfill,
			},
			{
				Name:  "forecast",
				Usage: "Recompute the demand forecast from recent daily snapshots",
				Flags: []cli.Flag{
					newDBURLFlag(),
				},
				Action: runForecast,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runGenerate(c *cli.Context) error {
	period, ok := domain.ParsePeriod(c.String("period"))
	if !ok {
		return fmt.Errorf("unknown period: %s", c.String("period"))
	}

	refDate := time.Now().UTC()
	if raw := c.String("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", raw, err)
		}
		refDate = parsed
	}

	aggregator, db, err := buildAggregator(c)
	if err != nil {
		return err
	}
	defer db.Close()

	start := time.Now()
	snapshot, err := aggregator.GenerateSnapshot(c.Context, period, refDate)
	if err != nil {
		return err
	}

	log.Printf("Generated %s snapshot for %s (%d orders) in %v",
		period, snapshot.Date.Format(dateLayout), snapshot.TotalOrders, time.Since(start))

	return nil
}

func runBackfill(c *cli.Context) error {
	from, err := time.Parse(dateLayout, c.String("from"))
	if err != nil {
		return fmt.Errorf("invalid from date: %w", err)
	}
	to, err := time.Parse(dateLayout, c.String("to"))
	if err != nil {
		return fmt.Errorf("invalid to date: %w", err)
	}
	if to.Before(from) {
		return fmt.Errorf("to date is before from date")
	}

	aggregator, db, err := buildAggregator(c)
	if err != nil {
		return err
	}
	defer db.Close()

	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(c.Int("concurrency"))

	days := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		day := day
		days++
		g.Go(func() error {
			if _, err := aggregator.GenerateSnapshot(ctx, domain.PeriodDaily, day); err != nil {
				return fmt.Errorf("backfill %s: %w", day.Format(dateLayout), err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Printf("Backfilled %d daily snapshots (%s to %s)",
		days, from.Format(dateLayout), to.Format(dateLayout))

	return nil
}

func runForecast(c *cli.Context) error {
	aggregator, db, err := buildAggregator(c)
	if err != nil {
		return err
	}
	defer db.Close()

	forecast, err := aggregator.RefreshForecast(c.Context)
	if err != nil {
		return err
	}

	log.Printf("Forecast: %d orders next period, trend %s",
		forecast.NextPeriodOrders, forecast.DemandTrend)

	return nil
}
