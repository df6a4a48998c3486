package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	apihttp "tariff-cloud/internal/api/http"
	"tariff-cloud/internal/auth"
	"tariff-cloud/internal/config"
	"tariff-cloud/internal/logging"
	"tariff-cloud/internal/observability/metrics"
	pricingapp "tariff-cloud/internal/pricing/application"
	pricing "tariff-cloud/internal/pricing/domain"
	"tariff-cloud/internal/pricing/infrastructure/xlsx"
	"tariff-cloud/internal/pricing/interfaces/report"
	schedulepostgres "tariff-cloud/internal/schedule/infrastructure/postgres"
	tariffapp "tariff-cloud/internal/tariff/application"
	tariff "tariff-cloud/internal/tariff/domain"
	"tariff-cloud/internal/tariff/infrastructure/document"
	"tariff-cloud/internal/tariff/infrastructure/fetch"
	tariffpostgres "tariff-cloud/internal/tariff/infrastructure/postgres"
)

const formatXLSX = "xlsx"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "tariffctl",
		Short:         "Tariff document parsing and station price tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCommand(),
		newParseCommand(),
		newEnergyCommand(),
		newServiceCommand(),
		newCorrectCommand(),
		newTotalCommand(),
		newRatesCommand(),
		newTokenCommand(),
	)
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireServer(); err != nil {
				return err
			}
			logger := logging.New("server")

			db, err := openDB(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			metrics.Init(db, logger)

			records := tariffpostgres.NewRecordRepository(db, tariffpostgres.WithTenantID(cfg.TenantID))
			plans := schedulepostgres.NewPlanRepository(db, schedulepostgres.WithTenantID(cfg.TenantID))
			reader := newDocumentReader(cfg)
			ingester, err := tariffapp.NewIngestApplicationService(
				newFetcher(cfg),
				reader,
				tariffapp.WithRepository(records),
				tariffapp.WithLogger(logging.New("ingest")),
			)
			if err != nil {
				return err
			}

			mux := apihttp.NewMux(apihttp.Deps{
				Reader:   reader,
				Records:  records,
				Ingester: ingester,
				Plans:    plans,
				TenantID: cfg.TenantID,
				Currency: cfg.Currency,
				Ping:     db.PingContext,
				Logger:   logger,
			})
			policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
			authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy, logging.New("auth"))
			server := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           apihttp.LoggingMiddleware(authMiddleware.Wrap(mux), logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
				errCh <- server.ListenAndServe()
			}()
			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
			defer cancel()
			logger.Info().Msg("http shutting down")
			return server.Shutdown(shutdownCtx)
		},
	}
}

func newParseCommand() *cobra.Command {
	var (
		out  string
		save bool
	)
	cmd := &cobra.Command{
		Use:   "parse <url|path>...",
		Short: "Parse tariff documents into a tariff table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New("parse")

			opts := []tariffapp.IngestOption{tariffapp.WithLogger(logger)}
			if save {
				if cfg.DatabaseURL == "" {
					return errors.New("parse: --save needs DATABASE_URL")
				}
				db, err := openDB(cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer db.Close()
				opts = append(opts, tariffapp.WithRepository(
					tariffpostgres.NewRecordRepository(db, tariffpostgres.WithTenantID(cfg.TenantID))))
			}

			svc, err := tariffapp.NewIngestApplicationService(newFetcher(cfg), newDocumentReader(cfg), opts...)
			if err != nil {
				return err
			}
			rep, err := svc.Ingest(cmd.Context(), args)
			if err != nil {
				return err
			}
			for _, e := range rep.Errors {
				logger.Warn().Str("source", e.Source).Msg(e.Message)
			}
			if len(rep.Records) == 0 {
				return errors.New("parse: " + tariffapp.MessageNoRecords)
			}
			return exportFile(out, "tariffs", func() ([]byte, error) {
				return xlsx.WriteTariffTable(rep.Records)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "电价表.xlsx", "output tariff table")
	cmd.Flags().BoolVar(&save, "save", false, "store parsed records in the database")
	return cmd
}

func newEnergyCommand() *cobra.Command {
	var (
		stationsPath string
		tariffsPath  string
		region       string
		month        int
		out          string
	)
	cmd := &cobra.Command{
		Use:   "energy",
		Short: "Set per-station energy prices for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, err := readWith(stationsPath, xlsx.ReadStationSheet)
			if err != nil {
				return err
			}
			records, err := loadRecords(cmd.Context(), tariffsPath, region)
			if err != nil {
				return err
			}
			svc := pricingapp.NewPricingApplicationService(pricingapp.WithLogger(logging.New("pricing")))
			rep, err := svc.SetEnergyPrices(sheet.Stations, records, month)
			if err != nil {
				return err
			}
			return exportFile(out, "energy", func() ([]byte, error) {
				return xlsx.WriteEnergyResults(rep.Results, rep.Mismatches)
			})
		},
	}
	cmd.Flags().StringVar(&stationsPath, "stations", "", "station sheet (xlsx)")
	cmd.Flags().StringVar(&tariffsPath, "tariffs", "", "tariff table (xlsx); empty reads stored records")
	cmd.Flags().StringVar(&region, "region", "", "stored record region filter")
	cmd.Flags().IntVar(&month, "month", int(time.Now().Month()), "billing month 1-12")
	cmd.Flags().StringVarP(&out, "out", "o", "电费结果.xlsx", "output file")
	_ = cmd.MarkFlagRequired("stations")
	return cmd
}

func newServiceCommand() *cobra.Command {
	var (
		stationsPath string
		pricesPath   string
		month        int
		out          string
	)
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Set per-station service fees for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, err := readWith(stationsPath, xlsx.ReadStationSheet)
			if err != nil {
				return err
			}
			prices, err := readWith(pricesPath, xlsx.ReadServicePrices)
			if err != nil {
				return err
			}
			svc := pricingapp.NewPricingApplicationService(pricingapp.WithLogger(logging.New("pricing")))
			rep, err := svc.SetServicePrices(sheet, prices, month)
			if err != nil {
				return err
			}
			return exportFile(out, "service", func() ([]byte, error) {
				return xlsx.WriteStationTexts(xlsx.ColumnService, rep.Results)
			})
		},
	}
	cmd.Flags().StringVar(&stationsPath, "stations", "", "station sheet (xlsx)")
	cmd.Flags().StringVar(&pricesPath, "prices", "", "service price table (xlsx)")
	cmd.Flags().IntVar(&month, "month", int(time.Now().Month()), "billing month 1-12")
	cmd.Flags().StringVarP(&out, "out", "o", "服务费结果.xlsx", "output file")
	_ = cmd.MarkFlagRequired("stations")
	_ = cmd.MarkFlagRequired("prices")
	return cmd
}

func newCorrectCommand() *cobra.Command {
	var (
		in      string
		station string
		points  []string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Rewrite one station's service fee schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := readWith(in, func(r io.Reader) ([]pricing.StationText, error) {
				return xlsx.ReadStationTexts(r, xlsx.ColumnService)
			})
			if err != nil {
				return err
			}
			rows, err := correctionRows(points)
			if err != nil {
				return err
			}
			svc := pricingapp.NewPricingApplicationService(pricingapp.WithLogger(logging.New("pricing")))
			corrected, _, err := svc.CorrectSchedule(station, rows)
			if err != nil {
				return err
			}
			found := false
			for i := range texts {
				if texts[i].Station == station {
					texts[i] = corrected
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("correct: station %q not in %s", station, in)
			}
			if out == "" {
				out = in
			}
			return exportFile(out, "correction", func() ([]byte, error) {
				return xlsx.WriteStationTexts(xlsx.ColumnService, texts)
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "service result table (xlsx)")
	cmd.Flags().StringVar(&station, "station", "", "station name")
	cmd.Flags().StringArrayVar(&points, "set", nil, "segment end and price, e.g. 8:00=0.5; repeat up to 24:00")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file; defaults to --in")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("station")
	return cmd
}

func newTotalCommand() *cobra.Command {
	var (
		energyPath  string
		servicePath string
		out         string
		pdfOut      string
		month       int
	)
	cmd := &cobra.Command{
		Use:   "total",
		Short: "Merge energy and service schedules into total prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New("pricing")
			energy, err := readWith(energyPath, func(r io.Reader) ([]pricing.StationText, error) {
				return xlsx.ReadStationTexts(r, xlsx.ColumnEnergy)
			})
			if err != nil {
				return err
			}
			service, err := readWith(servicePath, func(r io.Reader) ([]pricing.StationText, error) {
				return xlsx.ReadStationTexts(r, xlsx.ColumnService)
			})
			if err != nil {
				return err
			}

			svc := pricingapp.NewPricingApplicationService(pricingapp.WithLogger(logger))
			rep, err := svc.CalculateTotals(energy, service)
			if err != nil {
				return err
			}
			if len(rep.EnergyOnly) > 0 || len(rep.ServiceOnly) > 0 {
				logger.Warn().
					Strs("energy_only", rep.EnergyOnly).
					Strs("service_only", rep.ServiceOnly).
					Msg("stations missing on one side")
			}
			if err := exportFile(out, "totals", func() ([]byte, error) {
				return xlsx.WriteTotals(rep)
			}); err != nil {
				return err
			}
			if pdfOut == "" {
				return nil
			}
			opts := []report.PDFOption{report.WithMonth(month)}
			if cfg.Report.FontFile != "" {
				opts = append(opts, report.WithFontFile(cfg.Report.FontFile))
			}
			return exportAs(pdfOut, "totals", "pdf", func() ([]byte, error) {
				return report.BuildTotalsPDF(rep, time.Now(), opts...)
			})
		},
	}
	cmd.Flags().StringVar(&energyPath, "energy", "", "energy result table (xlsx)")
	cmd.Flags().StringVar(&servicePath, "service", "", "service result table (xlsx)")
	cmd.Flags().StringVarP(&out, "out", "o", "总价结果.xlsx", "output file")
	cmd.Flags().StringVar(&pdfOut, "pdf", "", "optional PDF report")
	cmd.Flags().IntVar(&month, "month", 0, "billing month printed in the PDF report")
	_ = cmd.MarkFlagRequired("energy")
	_ = cmd.MarkFlagRequired("service")
	return cmd
}

func newRatesCommand() *cobra.Command {
	var (
		in    string
		out   string
		plain bool
	)
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Normalize a rate version template",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			rows, err := readWith(in, xlsx.ReadRateVersionRows)
			if err != nil {
				return err
			}
			svc := pricingapp.NewPricingApplicationService(pricingapp.WithLogger(logging.New("pricing")))
			versions := svc.BuildRateVersions(rows)
			if out == "" {
				out = xlsx.RateVersionFilename(time.Now())
			}
			style := xlsx.RateVersionStyle{Font: cfg.Report.Font, FontSize: cfg.Report.FontSize, Plain: plain}
			return exportFile(out, "rates", func() ([]byte, error) {
				return xlsx.WriteRateVersions(versions, style)
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "rate version template (xlsx)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file; defaults to a dated name")
	cmd.Flags().BoolVar(&plain, "plain", false, "skip header and cell styling")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newTokenCommand() *cobra.Command {
	var (
		role    string
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return auth.ErrEmptySecret
			}
			normalized, ok := auth.NormalizeRole(role)
			if !ok {
				return auth.ErrInvalidRole
			}
			token, err := auth.IssueJWT([]byte(cfg.JWTSecret), cfg.TenantID, normalized, subject, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&role, "role", string(auth.RoleViewer), "viewer, operator or admin")
	cmd.Flags().StringVar(&subject, "subject", "tariffctl", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func openDB(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

func newFetcher(cfg config.Config) *fetch.Client {
	return fetch.NewClient(
		fetch.WithTimeout(cfg.Fetch.Timeout),
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
		fetch.WithReferer(cfg.Fetch.Referer),
	)
}

func newDocumentReader(cfg config.Config) *document.Reader {
	return document.NewReader(document.WithColumnGap(cfg.PDF.ColumnGap))
}

// loadRecords reads a tariff table, or the stored records when path is empty.
func loadRecords(ctx context.Context, path, region string) ([]tariff.Record, error) {
	if path != "" {
		return readWith(path, xlsx.ReadTariffTable)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("energy: --tariffs or DATABASE_URL is required")
	}
	db, err := openDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	repo := tariffpostgres.NewRecordRepository(db, tariffpostgres.WithTenantID(cfg.TenantID))
	return repo.ListRecords(ctx, region)
}

func readWith[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return read(f)
}

// correctionRows parses "END=PRICE" flags.
func correctionRows(points []string) ([]pricingapp.CorrectionRow, error) {
	rows := make([]pricingapp.CorrectionRow, 0, len(points))
	for _, p := range points {
		end, price, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("correct: %q is not END=PRICE", p)
		}
		v, err := decimal.NewFromString(strings.TrimSpace(price))
		if err != nil {
			return nil, fmt.Errorf("correct: price %q: %w", price, err)
		}
		rows = append(rows, pricingapp.CorrectionRow{End: strings.TrimSpace(end), Price: tariff.Price(v)})
	}
	return rows, nil
}

func exportFile(path, name string, render func() ([]byte, error)) error {
	return exportAs(path, name, formatXLSX, render)
}

func exportAs(path, name, format string, render func() ([]byte, error)) error {
	start := time.Now()
	data, err := render()
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveExport(format, result, time.Since(start))
	if err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	logger := logging.New("export")
	logger.Info().Str("file", path).Int("bytes", len(data)).Msg(name + " written")
	return nil
}
