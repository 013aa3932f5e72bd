package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lox/rainview/internal/series"
	"github.com/lox/rainview/internal/store"
)

type Globals struct {
	EnvFile     kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file.'"`
	DB          string                   `default:"data/rainview.db" env:"RAINVIEW_DB" help:"Path to SQLite archive."`
	Threshold   float64                  `default:"0.9" env:"RAINVIEW_THRESHOLD" help:"Share of expected days a bucket needs to be aggregated."`
	MetricsFile string                   `env:"RAINVIEW_METRICS_FILE" help:"Write Prometheus metrics to this textfile on exit."`

	out io.Writer
}

func (g *Globals) config() series.Config {
	cfg := series.DefaultConfig()
	cfg.SufficiencyThreshold = g.Threshold
	return cfg
}

type CLI struct {
	Globals

	Import   ImportCmd   `cmd:"" help:"Load stations and daily series from a staging archive."`
	Runs     RunsCmd     `cmd:"" help:"Show recent import runs."`
	Stations StationsCmd `cmd:"" help:"List stations."`
	Chart    ChartCmd    `cmd:"" help:"Print resampled series with trend fits."`
	Stats    StatsCmd    `cmd:"" help:"Print the summary statistics table."`
	Download DownloadCmd `cmd:"" help:"Write the joined series as CSV."`
	Ticks    TicksCmd    `cmd:"" help:"Plan axis ticks for a range."`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("rainview"),
		kong.Description("Resample, summarise and trend-fit long daily rainfall records."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	cli.Globals.out = os.Stdout

	err := kctx.Run(&cli.Globals)

	if cli.MetricsFile != "" {
		if werr := prometheus.WriteToTextfile(cli.MetricsFile, prometheus.DefaultGatherer); werr != nil {
			log.Printf("metrics: write %s: %v", cli.MetricsFile, werr)
		}
	}
	kctx.FatalIfErrorf(err)
}

// openStore opens and migrates the SQLite archive at path.
func openStore(path string) (*store.Store, func(), error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return st, func() { db.Close() }, nil
}

// openSource opens a staging archive read-only. It is not migrated: the
// converter that wrote it owns its schema.
func openSource(path string) (*store.Store, func(), error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, nil, fmt.Errorf("open staging: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("open staging %s: %w", path, err)
	}
	return store.New(db), func() { db.Close() }, nil
}
