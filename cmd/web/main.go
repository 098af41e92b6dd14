package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/export"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/source"
	"sales-dashboard/internal/ui"
)

const version = "1.0.0"

type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	client    *source.Client
	dashboard *services.Dashboard
}

func newApp(logOut io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := observability.NewLogger(logOut, cfg.Logger)
	slog.SetDefault(logger)

	client := source.NewClient(cfg.Source, logger)
	limits := models.FilterLimits{
		Regions:           cfg.Dashboard.Regions,
		MinYear:           cfg.Dashboard.MinYear,
		MaxYear:           cfg.Dashboard.MaxYear,
		DefaultTopSellers: cfg.Dashboard.DefaultTopSellers,
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		client:    client,
		dashboard: services.NewDashboard(client, limits, logger),
	}, nil
}

func (a *app) viewOptions() ui.Options {
	return ui.Options{
		Regions:   a.cfg.Dashboard.Regions,
		MinYear:   a.cfg.Dashboard.MinYear,
		MaxYear:   a.cfg.Dashboard.MaxYear,
		TableRows: a.cfg.Dashboard.TableRows,
	}
}

// handler is the routed server wrapped in the middleware chain.
func (a *app) handler() http.Handler {
	srv := server.NewServer(a.dashboard, a.client, a.viewOptions(), a.logger)

	rateLimiter := middleware.NewRateLimiter(a.cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(a.logger),
		middleware.RequestID(),
		middleware.Logger(a.logger),
		middleware.Tracing(a.logger),
		middleware.SecurityHeaders(),
		middleware.CORS(a.cfg.Security),
		middleware.TrustedProxy(a.cfg.Security),
		middleware.RateLimit(rateLimiter, a.logger),
	)

	return middlewareChain(srv)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sales-dashboard",
		Short:        "Sales analytics dashboard",
		Long:         "Serves an interactive dashboard over the sales API, or exports the filtered data as a spreadsheet.",
		Version:      version,
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(newServeCmd(), newExportCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(os.Stdout)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return err
	}

	a.logger.Info("starting application",
		"version", version,
		"source_url", a.cfg.Source.URL,
		"cache_ttl", a.cfg.Source.CacheTTL,
	)

	httpServer := &http.Server{
		Addr:         a.cfg.Address(),
		Handler:      a.handler(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, a.logger, a.cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		a.logger.Info("closing sales API client")
		return a.client.Close()
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting graceful server")
	if err := gracefulServer.Run(ctx); err != nil {
		a.logger.Error("server failed", "error", err)
		return err
	}

	a.logger.Info("application stopped gracefully")
	return nil
}

type exportOptions struct {
	region  string
	year    int
	sellers []string
	top     int
	out     string
}

func newExportCmd() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered sales and seller summary to an .xlsx file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.region, "region", models.NationalRegion, "region to fetch")
	cmd.Flags().IntVar(&opts.year, "year", 0, "year to fetch (0 selects the whole period)")
	cmd.Flags().StringArrayVar(&opts.sellers, "seller", nil, "keep only these sellers (repeatable)")
	cmd.Flags().IntVar(&opts.top, "top", 0, "number of top sellers (default from configuration)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "vendas.xlsx", `output file, "-" for stdout`)

	return cmd
}

func runExport(cmd *cobra.Command, opts *exportOptions) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.client.Close()

	res, err := a.dashboard.Build(cmd.Context(), models.Filters{
		Region:     opts.region,
		AllYears:   opts.year == 0,
		Year:       opts.year,
		Sellers:    opts.sellers,
		TopSellers: opts.top,
	})
	if err != nil {
		return err
	}

	write := func(w io.Writer) error {
		return export.WriteXLSX(w, res.Sales, res.Report.Sellers)
	}
	if opts.out == "-" {
		err = write(cmd.OutOrStdout())
	} else {
		err = writeFile(opts.out, write)
	}
	if err != nil {
		return err
	}

	a.logger.Info("spreadsheet written",
		"out", opts.out,
		"sales", len(res.Sales),
		"sellers", len(res.Report.Sellers),
	)
	return nil
}

// writeFile creates path and fills it with write. The file is removed when
// writing or closing fails.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return write(f)
}
