package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"netinv.sh/internal/dashboard"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newSnapshotCmd creates the one-shot snapshot command
func newSnapshotCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Load the dashboard once and print it",
		Long:  `Fetch the inventory, aggregate it and print the result as a table, JSON or YAML`,
		Example: `  netctl snapshot
  netctl snapshot -o json | jq '.kpis'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "table", "json", "yaml":
			default:
				return fmt.Errorf("unknown output format %q (use table, json or yaml)", output)
			}

			s, err := newSession(cmd.Context(), "netctl", false)
			if err != nil {
				return err
			}
			defer s.Close()

			opts := s.cfg.DashboardOptions()
			dopts := []dashboard.Option{
				dashboard.WithOptions(opts),
				dashboard.WithLogger(s.obs.Logger.Slog(s.cfg.Log.Format)),
			}

			var bar *progressbar.ProgressBar
			if term.IsTerminal(int(os.Stderr.Fd())) {
				bar = newFetchBar(len(dashboard.DefaultPlan(opts.Limits)))
				dopts = append(dopts, dashboard.WithFetchObserver(func(dashboard.Request, error) {
					_ = bar.Add(1)
				}))
			}

			snap, err := dashboard.New(s.client, nil, dopts...).Load(cmd.Context())
			if bar != nil {
				_ = bar.Clear()
			}
			if err != nil {
				return &dashboard.LoadError{Err: err}
			}

			return writeSnapshot(os.Stdout, snap, output, s.cfg.Console.Title)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json, yaml)")

	return cmd
}

func newFetchBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Fetching inventory"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(50*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func writeSnapshot(w io.Writer, snap *dashboard.Snapshot, format, title string) error {
	switch format {
	case "json":
		return writeSnapshotJSON(w, snap)
	case "yaml":
		return writeSnapshotYAML(w, snap)
	default:
		return writeSnapshotTable(w, snap, title)
	}
}

func writeSnapshotJSON(w io.Writer, snap *dashboard.Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snap)
}

// writeSnapshotYAML goes through the JSON encoding so both formats share
// the same keys and field order.
func writeSnapshotYAML(w io.Writer, snap *dashboard.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to convert snapshot: %w", err)
	}
	blockStyle(&doc)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return err
	}
	return encoder.Close()
}

// blockStyle drops the flow and quoting styles the JSON input carries
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func writeSnapshotTable(w io.Writer, snap *dashboard.Snapshot, title string) error {
	k := snap.KPIs

	fmt.Fprintf(w, "%s  %s\n\n", bold(title), snap.LoadedAt.Format(time.RFC3339))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total devices\t%d\n", k.TotalDevices)
	fmt.Fprintf(tw, "Active devices\t%d\n", k.ActiveDevices)
	fmt.Fprintf(tw, "Health\t%s\n", toneSprint(k.HealthTone)(fmt.Sprintf("%d%%", k.Health)))
	fmt.Fprintf(tw, "Locations\t%d\n", k.Locations)
	fmt.Fprintf(tw, "VLANs\t%d\n", k.VLANs)
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, chart := range snap.Charts {
		fmt.Fprintf(w, "\n%s\n", bold(chart.Title))
		if len(chart.Labels) == 0 {
			fmt.Fprintln(w, "  No data")
			continue
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for i, label := range chart.Labels {
			fmt.Fprintf(tw, "  %s\t%d\n", label, chart.Values[i])
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\n%s\n", bold(snap.Alerts.Title))
	if snap.Alerts.IsEmpty() {
		fmt.Fprintf(w, "  %s\n", snap.Alerts.Empty)
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, row := range snap.Alerts.Rows {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", severitySprint(row.Severity)(strings.ToUpper(row.Severity)), row.Message, row.CreatedAt)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\n%s\n", bold(snap.CPU.Title))
	if snap.CPU.IsEmpty() {
		fmt.Fprintf(w, "  %s\n", snap.CPU.Empty)
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, row := range snap.CPU.Rows {
			fmt.Fprintf(tw, "  %s\t%.1f%%\n", row.Host, row.CPU)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if snap.Skipped > 0 {
		fmt.Fprintf(w, "\n%s %d malformed records skipped\n", yellow("[WARN]"), snap.Skipped)
	}
	return nil
}

func toneSprint(t dashboard.Tone) func(a ...any) string {
	switch t {
	case dashboard.ToneDanger:
		return red
	case dashboard.ToneWarning:
		return yellow
	default:
		return green
	}
}

func severitySprint(severity string) func(a ...any) string {
	switch strings.ToLower(severity) {
	case "critical", "error":
		return red
	case "warning":
		return yellow
	default:
		return cyan
	}
}
