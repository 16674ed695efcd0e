package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"tintcore/internal/config"
	"tintcore/internal/reload"
	"tintcore/internal/texture"
	"tintcore/internal/watch"
	"tintcore/pkg/domain"
)

type rootOptions struct {
	configPath string
	jsonOut    bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "tintctl",
		Short:         "Reload and inspect data-driven visual overrides",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to tintcore.yaml")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print reports as JSON")

	root.AddCommand(
		newReloadCmd(opts),
		newValidateCmd(opts),
		newWatchCmd(opts),
		newTexturesCmd(opts),
		newJournalCmd(opts),
	)
	wrapErrors(root, stderr)
	return root
}

// wrapErrors prints a failing subcommand's error after whatever it wrote to
// stdout; cobra itself is silenced.
func wrapErrors(cmd *cobra.Command, stderr io.Writer) {
	for _, c := range cmd.Commands() {
		run := c.RunE
		if run == nil {
			continue
		}
		c.RunE = func(c *cobra.Command, args []string) error {
			err := run(c, args)
			if err != nil {
				_, _ = fmt.Fprintf(stderr, "tintctl %s: %v\n", c.Name(), err)
			}
			return err
		}
	}
}

func loadApp(cmd *cobra.Command, opts *rootOptions, withHost bool) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	var manifest *config.Manifest
	if withHost {
		m, err := config.LoadManifest(cfg.Host.Manifest)
		if err != nil {
			return nil, err
		}
		manifest = &m
	}
	return newApp(cmd.Context(), cfg, manifest, cmd.ErrOrStderr())
}

func newReloadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Run one reload cycle against the configured packs and host manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			report, err := a.compound.Reload(cmd.Context(), a.src)
			if perr := printReport(cmd.OutOrStdout(), report, opts.jsonOut); perr != nil {
				return perr
			}
			return err
		},
	}
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Decode and cross-check every category without touching a host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			report, err := a.compound.Reload(cmd.Context(), a.src)
			if perr := printReport(cmd.OutOrStdout(), report, opts.jsonOut); perr != nil {
				return perr
			}
			if err != nil {
				return fmt.Errorf("packs are invalid: %w", err)
			}
			return nil
		},
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload whenever files in filesystem packs change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			if metricsAddr == "" {
				metricsAddr = a.cfg.Metrics.Addr
			}
			ctx := cmd.Context()
			if metricsAddr != "" {
				stop := serveMetrics(ctx, a, metricsAddr)
				defer stop()
			}
			trigger := reload.NewTrigger(a.compound, a.src)
			out := cmd.OutOrStdout()
			report, _, err := trigger.Fire(ctx)
			_ = printReport(out, report, opts.jsonOut)
			if err != nil {
				a.log.Warn("initial reload failed", "error", err)
			}
			w, err := watch.New(a.cfg.FilesystemRoots(), trigger,
				watch.WithDebounce(a.cfg.Watch.Debounce),
				watch.WithLogger(a.log),
				watch.OnReload(func(r reload.Report, _ error) { _ = printReport(out, r, opts.jsonOut) }),
			)
			if err != nil {
				return err
			}
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func serveMetrics(ctx context.Context, a *app, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	a.log.Info("serving metrics", "addr", addr)
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

func newTexturesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "textures <root>",
		Short: "List texture groups found under a category root such as colormaps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			layer, err := a.src.Images(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printTextures(cmd.OutOrStdout(), texture.Build(layer))
		},
	}
}

func newJournalCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the most recent reload reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			reports, err := a.journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, r := range reports {
				if err := printReport(cmd.OutOrStdout(), r, opts.jsonOut); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of reports to show")
	return cmd
}

func printReport(w io.Writer, r reload.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		return enc.Encode(r)
	}
	status := "ok"
	if !r.OK() {
		status = "failed: " + r.Error
	}
	if r.Degraded {
		status += " (degraded)"
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "cycle %s\t%s\t%s\t%s\n", r.ID, r.StartedAt.Format(time.RFC3339), r.Duration.Round(time.Microsecond), status)
	for _, c := range r.Categories {
		line := fmt.Sprintf("  %s\tapplied=%d", c.Name, c.Applied)
		if c.Error != "" {
			line += "\terror=" + c.Error
		}
		_, _ = fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

func printTextures(w io.Writer, ix *texture.Index) error {
	ids := ix.IDs()
	slices.SortFunc(ids, domain.ResourceID.Compare)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, id := range ids {
		g, _ := ix.Group(id)
		_, hasDefault := g.Default()
		indices := make([]string, 0, g.Len())
		for _, i := range g.Indices() {
			indices = append(indices, fmt.Sprint(i))
		}
		_, _ = fmt.Fprintf(tw, "%s\tdefault=%t\tindices=%s\n", id, hasDefault, strings.Join(indices, ","))
	}
	return tw.Flush()
}
