package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lox/rainview/internal/ingest"
	"github.com/lox/rainview/internal/models"
	"github.com/lox/rainview/internal/report"
	"github.com/lox/rainview/internal/series"
	"github.com/lox/rainview/internal/ticks"
)

// Selection is the station/frequency/summary/year choice shared by the report commands.
type Selection struct {
	Station []string `short:"s" required:"" help:"Station identifier (repeatable, order is kept)."`
	Freq    string   `short:"f" default:"Y" enum:"Y,M,W,Q,24H" help:"Resampling frequency (${enum})."`
	Summary string   `default:"TOTAL" enum:"TOTAL,MAX" help:"Bucket summary (${enum})."`
	Start   int      `help:"First year to include (0 = unbounded)."`
	End     int      `help:"Last year to include (0 = unbounded)."`
}

func (s Selection) request() (report.Request, error) {
	freq, err := models.ParseFrequency(s.Freq)
	if err != nil {
		return report.Request{}, err
	}
	summary, err := models.ParseSummary(s.Summary)
	if err != nil {
		return report.Request{}, err
	}
	return report.Request{
		StationIDs: s.Station,
		Years:      series.YearRange{Start: s.Start, End: s.End},
		Frequency:  freq,
		Summary:    summary,
	}, nil
}

func newService(g *Globals) (*report.Service, func(), error) {
	st, closeDB, err := openStore(g.DB)
	if err != nil {
		return nil, nil, err
	}
	svc, err := report.NewService(st, g.config())
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return svc, closeDB, nil
}

type ImportCmd struct {
	From string `required:"" type:"existingfile" help:"Staging SQLite archive produced by the converter."`
}

func (c *ImportCmd) Run(g *Globals, ctx context.Context) error {
	src, closeSrc, err := openSource(c.From)
	if err != nil {
		return err
	}
	defer closeSrc()

	dst, closeDst, err := openStore(g.DB)
	if err != nil {
		return err
	}
	defer closeDst()

	rep, err := ingest.NewImporter(src, dst, c.From).Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.out, rep.Summary())
	for _, f := range rep.Failed {
		fmt.Fprintf(g.out, "  failed %s\n", f.Error())
	}
	return nil
}

type RunsCmd struct {
	Limit int `default:"10" help:"Number of runs to show."`
}

func (c *RunsCmd) Run(g *Globals) error {
	st, closeDB, err := openStore(g.DB)
	if err != nil {
		return err
	}
	defer closeDB()

	runs, err := st.RecentImportRuns(c.Limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(g.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSOURCE\tIMPORTED\tFAILED\tOK")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%v\n", r.ID, r.StartedAt.Format(time.RFC3339), r.Source,
			r.StationsImported.Int64, r.StationsFailed.Int64, r.Success)
	}
	return tw.Flush()
}

type StationsCmd struct{}

func (c *StationsCmd) Run(g *Globals) error {
	svc, closeDB, err := newService(g)
	if err != nil {
		return err
	}
	defer closeDB()

	stations, err := svc.Stations()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(g.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATION\tELEV\tLAT\tLON")
	for _, st := range stations {
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%.4f\t%.4f\n", st.StationID, st.CatalogLabel(), st.Elevation, st.Latitude, st.Longitude)
	}
	return tw.Flush()
}

type ChartCmd struct {
	Selection
}

func (c *ChartCmd) Run(g *Globals, ctx context.Context) error {
	req, err := c.request()
	if err != nil {
		return err
	}
	svc, closeDB, err := newService(g)
	if err != nil {
		return err
	}
	defer closeDB()

	charts, err := svc.Chart(ctx, req)
	if err != nil {
		return err
	}
	for _, ch := range charts {
		fmt.Fprintln(g.out, ch.Label)
		tw := tabwriter.NewWriter(g.out, 0, 4, 2, ' ', tabwriter.AlignRight)
		for i, p := range ch.Points {
			trend := ""
			if i < len(ch.Fit.Fitted) {
				trend = fmt.Sprintf("%.2f", ch.Fit.Fitted[i].Value.Float64)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t\n", p.Time.Format(time.DateOnly), formatValue(p.Value.Float64, p.Value.Valid), trend)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(g.out)
	}
	return nil
}

func formatValue(v float64, valid bool) string {
	if !valid || math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}

type StatsCmd struct {
	Selection
}

func (c *StatsCmd) Run(g *Globals, ctx context.Context) error {
	req, err := c.request()
	if err != nil {
		return err
	}
	svc, closeDB, err := newService(g)
	if err != nil {
		return err
	}
	defer closeDB()

	table, err := svc.StatsTable(ctx, req)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(g.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "\t%s\n", strings.Join(req.StationIDs, "\t"))
	for _, f := range report.DescriptorFields {
		fmt.Fprintf(tw, "%s\t%s\n", f, strings.Join(table.Descriptors[f], "\t"))
	}
	for _, f := range table.Combined.Fields {
		fmt.Fprintf(tw, "%s\t%s\n", f, strings.Join(table.Cells[f], "\t"))
	}
	return tw.Flush()
}

type DownloadCmd struct {
	Selection
	Out string `short:"o" help:"Output file (default stdout)."`
}

func (c *DownloadCmd) Run(g *Globals, ctx context.Context) error {
	req, err := c.request()
	if err != nil {
		return err
	}
	svc, closeDB, err := newService(g)
	if err != nil {
		return err
	}
	defer closeDB()

	if c.Out == "" {
		return svc.Download(ctx, req, g.out)
	}
	f, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	if err := svc.Download(ctx, req, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type TicksCmd struct {
	Lo     float64 `required:"" help:"Range start."`
	Hi     float64 `required:"" help:"Range end."`
	Max    int     `default:"10" help:"Maximum number of ticks."`
	Inside bool    `default:"true" negatable:"" help:"Only keep ticks inside the range."`
}

func (c *TicksCmd) Run(g *Globals) error {
	t := ticks.Auto(c.Lo, c.Hi, c.Max, c.Inside)
	fmt.Fprintln(g.out, strings.Join(ticks.Labels(t), " "))
	return nil
}
