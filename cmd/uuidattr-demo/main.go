// Command uuidattr-demo inserts example records into a SQLite database with
// UUID attribute policies installed and prints what was stored.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/glebarez/sqlite"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/RRWM1rr0rB/uuidattr/core/closer"
	"github.com/RRWM1rr0rB/uuidattr/core/uuid"
	"github.com/RRWM1rr0rB/uuidattr/core/uuid/policy"
	"github.com/RRWM1rr0rB/uuidattr/errors"
	"github.com/RRWM1rr0rB/uuidattr/gormhook"
	"github.com/RRWM1rr0rB/uuidattr/logging"
	"github.com/RRWM1rr0rB/uuidattr/metrics"
	"github.com/RRWM1rr0rB/uuidattr/tracing"
)

const (
	demoTable   = "demo_records"
	serviceName = "uuidattr-demo"
	version     = "0.1.0"
)

type demoRecord struct {
	ID   uint   `gorm:"primaryKey"`
	UUID string `gorm:"column:uuid;size:36"`
	Name string
}

func (demoRecord) TableName() string { return demoTable }

type options struct {
	configPath  string
	dbPath      string
	records     int
	workers     int
	metricsPort int
	otlpHost    string
	otlpPort    string
	logLevel    string
	logFormat   string
	logSource   bool
	env         string
	traceRatio  float64
	serve       bool
	profiling   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML policy file (default: one storage-engine policy on "+demoTable+")")
	flag.StringVar(&opts.dbPath, "db", "uuidattr-demo.sqlite3", "SQLite database path")
	flag.IntVar(&opts.records, "records", 10, "number of records to insert")
	flag.IntVar(&opts.workers, "workers", 4, "concurrent inserts")
	flag.IntVar(&opts.metricsPort, "metrics-port", 0, "serve /metrics on this port, 0 disables")
	flag.StringVar(&opts.otlpHost, "otlp-host", "", "OTLP/HTTP collector host, empty disables tracing")
	flag.StringVar(&opts.otlpPort, "otlp-port", "4318", "OTLP/HTTP collector port")
	flag.StringVar(&opts.logLevel, "log-level", "info", "log level")
	flag.StringVar(&opts.logFormat, "log-format", logging.FormatText, "log format: text or json")
	flag.BoolVar(&opts.logSource, "log-source", false, "add source locations to log records")
	flag.StringVar(&opts.env, "env", "", "deployment environment reported with traces")
	flag.Float64Var(&opts.traceRatio, "trace-ratio", 1, "fraction of root spans sampled")
	flag.BoolVar(&opts.profiling, "pprof", false, "mount /debug/pprof/ on the metrics server")
	flag.BoolVar(&opts.serve, "serve", false, "keep serving metrics until interrupted")
	flag.Parse()

	logger := logging.NewLogger(
		logging.WithLevel(opts.logLevel),
		logging.WithFormat(opts.logFormat),
		logging.WithAddSource(opts.logSource),
		logging.WithAttrs(logging.StringAttr("service", serviceName)),
		logging.WithOutput(os.Stderr),
		logging.WithSetDefault(true),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithLogger(ctx, logger)

	if err := run(ctx, opts); err != nil {
		logger.Error("uuidattr-demo failed", logging.ErrAttr(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) (err error) {
	logger := logging.L(ctx)

	closers := closer.New()
	defer func() {
		err = errors.Append(err, closers.Close())
	}()

	if opts.otlpHost != "" {
		provider, tErr := tracing.New(ctx,
			tracing.WithEndpoint(opts.otlpHost, opts.otlpPort),
			tracing.WithSampleRatio(opts.traceRatio),
			tracing.WithServiceName(serviceName),
			tracing.WithServiceVersion(version),
			tracing.WithInstanceID(uuid.NewV4String()),
			tracing.WithEnvironment(opts.env),
		)
		if tErr != nil {
			return tErr
		}
		_ = closers.Add(closer.ContextFunc(context.WithoutCancel(ctx), provider.Shutdown))
	}

	if opts.metricsPort != 0 {
		srv, mErr := metrics.NewServer(metrics.NewConfig(
			metrics.WithPort(opts.metricsPort),
			metrics.WithProfiling(opts.profiling),
		))
		if mErr != nil {
			return mErr
		}
		_ = closers.Add(srv)
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Error("metrics server stopped", logging.ErrAttr(err))
			}
		}()
		logger.Info("serving metrics", logging.IntAttr("port", opts.metricsPort))
	}

	models, err := loadModels(opts.configPath)
	if err != nil {
		return err
	}

	db, err := openDB(opts.dbPath, closers)
	if err != nil {
		return err
	}
	if err := db.Use(gormhook.New(gormhook.WithConfig(models), gormhook.WithLogger(logger))); err != nil {
		return err
	}

	spanCtx, span := tracing.Start(ctx, "uuidattr-demo.insert")
	records, err := insert(spanCtx, db, opts.records, opts.workers)
	tracing.Error(spanCtx, err)
	span.End()
	if err != nil {
		return err
	}

	for _, r := range records {
		fmt.Printf("%d\t%s\t%s\n", r.ID, r.UUID, r.Name)
	}

	if opts.serve && opts.metricsPort != 0 {
		<-ctx.Done()
	}
	return nil
}

func loadModels(path string) (policy.Models, error) {
	if path == "" {
		return policy.Models{demoTable: {policy.DefaultConfig()}}, nil
	}
	return policy.LoadConfigFile(path)
}

func openDB(path string, closers *closer.LIFO) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	// SQLite has a single writer.
	sqlDB.SetMaxOpenConns(1)
	_ = closers.Add(sqlDB)

	if err := db.AutoMigrate(&demoRecord{}); err != nil {
		return nil, errors.Wrap(err, "migrate")
	}
	return db, nil
}

// insert creates n records using up to workers goroutines and returns them as
// stored.
func insert(ctx context.Context, db *gorm.DB, n, workers int) ([]demoRecord, error) {
	var (
		mu  sync.Mutex
		ids = make([]uint, 0, n)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i := range n {
		g.Go(func() error {
			rec := demoRecord{Name: fmt.Sprintf("record-%03d", i)}
			if err := db.WithContext(gctx).Create(&rec).Error; err != nil {
				return errors.Wrap(err, rec.Name)
			}
			mu.Lock()
			ids = append(ids, rec.ID)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var stored []demoRecord
	if len(ids) == 0 {
		return stored, nil
	}
	err := db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&stored).Error
	return stored, errors.Wrap(err, "reload records")
}
