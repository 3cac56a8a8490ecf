package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go_photodna/core"
	"go_photodna/db"
	"go_photodna/logging"
	"go_photodna/metrics"
	"go_photodna/photodna"
	"go_photodna/shutdown"
	"go_photodna/vision"
)

func scanCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "hash every image under a directory into the database",
		ArgsUsage: "<dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "pixel format handed to the library",
			},
			&cli.IntFlag{
				Name:  "max-dim",
				Usage: "downscale so neither side exceeds this many pixels (0 keeps the original size)",
			},
			&cli.BoolFlag{
				Name:  "border",
				Usage: "run border detection and store borderless hashes too",
			},
			&cli.Float64Flag{
				Name:  "rate",
				Usage: "images per second, 0 for unlimited (default " + core.EnvScanRate + ")",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "concurrent decode workers; native hash calls still run one at a time (default " + core.EnvMaxThreads + ")",
			},
		},
		Action: env.scan,
	}
}

// scanner hashes files for one batch and queues the records. Workers decode and digest
// in parallel; gen serializes their native calls.
type scanner struct {
	gen     *photodna.Generator
	repo    *db.Repository
	logger  *logging.Logger
	format  photodna.PixelFormat
	maxDim  int
	border  bool
	batchID string

	hashed atomic.Int64
	failed atomic.Int64
}

// process hashes one file and queues its record.
func (s *scanner) process(ctx context.Context, path string) error {
	px, err := vision.Prepare(path, s.format, s.maxDim)
	if err != nil {
		return err
	}
	digest, err := core.ComputeBLAKE2b256(path)
	if err != nil {
		return err
	}

	var rec *db.HashRecord
	if s.border {
		res, err := s.gen.ComputeHashWithBorderDetection(px.Data, px.Width, px.Height, px.HashOptions())
		if err != nil {
			return err
		}
		rec = db.NewHashRecord(path, digest, px.Width, px.Height, px.Format, res.Primary).WithBorder(res)
	} else {
		h, err := s.gen.ComputeHashWithStride(px.Data, px.Width, px.Height, px.Stride, px.HashOptions())
		if err != nil {
			return err
		}
		rec = db.NewHashRecord(path, digest, px.Width, px.Height, px.Format, h)
	}
	rec.BatchID = s.batchID
	return s.repo.InsertAsync(ctx, rec)
}

// run feeds paths to workers, throttled by limiter, until done or ctx ends.
func (s *scanner) run(ctx context.Context, mgr *shutdown.Manager, paths []string, workers int, limiter *rate.Limiter) {
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				err := mgr.WrapOperation(ctx, "scan", func(ctx context.Context) error {
					return s.process(ctx, path)
				})
				if err != nil {
					s.failed.Add(1)
					if !errors.Is(err, context.Canceled) {
						s.logger.Warn("Failed to hash image", zap.String("path", path), zap.Error(err))
					}
					continue
				}
				s.hashed.Add(1)
			}
		}()
	}

	for _, path := range paths {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		select {
		case jobs <- path:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()
}

func (e *cliEnv) scan(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one directory", core.ExitCodeError)
	}
	root := c.Args().First()

	format, err := e.pixelFormat(c)
	if err != nil {
		return err
	}
	paths, err := collectImages(root)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintf(e.out, "No images found under %s\n", root)
		return nil
	}

	ctx := e.mgr.Context()
	store := metrics.NewStore(metrics.DefaultHistoryCapacity, time.Now())
	observers := []photodna.Observer{store}
	if e.cfg.MetricsAddr != "" {
		prom := metrics.NewPrometheus()
		srv, err := metrics.Listen(e.cfg.MetricsAddr, prom.Handler())
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		// Keep serving until cleanup so the final counts can still be scraped.
		go func() {
			if err := srv.Serve(context.Background()); err != nil {
				e.logger.Warn("Metrics server stopped", zap.Error(err))
			}
		}()
		e.mgr.Register("metrics", shutdown.PriorityMetrics, shutdown.DrainFunc(e.logger, "metrics", srv.Shutdown))
		observers = append(observers, prom)
		e.logger.Info("Serving metrics", zap.String("url", "http://"+srv.Addr()+metrics.MetricsPath))
	}

	gen, err := e.generator(metrics.NewFanout(observers...))
	if err != nil {
		return err
	}
	database, err := e.openDatabase()
	if err != nil {
		return err
	}

	writer := db.NewRepositoryWriter(db.NewRepository(database, nil), func(rec *db.HashRecord, err error) {
		e.logger.Error("Failed to store hash record", zap.String("path", rec.SourcePath), zap.Error(err))
	})
	writer.Start()
	e.mgr.Register("writer", shutdown.PriorityWriter, shutdown.DrainFunc(e.logger, "writer", writer.Shutdown))

	workers := e.cfg.MaxThreads
	if c.IsSet("workers") {
		workers = max(c.Int("workers"), 1)
	}
	scanRate := e.cfg.ScanRate
	if c.IsSet("rate") {
		scanRate = c.Float64("rate")
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if scanRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(scanRate), 1)
	}

	s := &scanner{
		gen:     gen,
		repo:    db.NewRepository(database, writer),
		logger:  e.logger,
		format:  format,
		maxDim:  c.Int("max-dim"),
		border:  c.Bool("border"),
		batchID: uuid.NewString(),
	}

	e.logger.Info("Scan started",
		zap.String("batch_id", s.batchID),
		zap.String("root", root),
		zap.Int("images", len(paths)),
		zap.Int("workers", workers),
		zap.Float64("rate", scanRate),
	)
	start := time.Now()
	s.run(ctx, e.mgr, paths, workers, limiter)

	// Flush queued records before reporting.
	if err := writer.Shutdown(context.Background()); err != nil {
		e.logger.Warn("Writer did not drain", zap.Error(err))
	}
	end := time.Now()
	var stored int64
	if recs, err := s.repo.ListBatch(context.Background(), s.batchID); err != nil {
		e.logger.Warn("Failed to count stored records", zap.Error(err))
	} else {
		stored = int64(len(recs))
	}
	e.logger.Info("Scan finished",
		append(logging.TimingFields(start, end, int(s.hashed.Load())),
			zap.String("batch_id", s.batchID),
			zap.Int64("hashed", s.hashed.Load()),
			zap.Int64("failed", s.failed.Load()),
			zap.Int64("stored", stored),
			zap.Int64("store_failures", writer.Failed()),
		)...,
	)

	if e.cfg.RetentionDays > 0 && !e.mgr.Interrupted() {
		res, err := database.Cleanup(ctx, e.cfg.RetentionDays)
		if err != nil {
			e.logger.Warn("Retention cleanup failed", zap.Error(err))
		} else if res.Deleted > 0 {
			e.logger.Info("Retention cleanup", zap.Int64("deleted", res.Deleted), zap.Time("cutoff", res.Cutoff))
		}
	}

	e.printScanSummary(s, store.Summary(), stored, end.Sub(start))
	if e.mgr.Interrupted() {
		return cli.Exit("scan interrupted", e.mgr.ExitCode())
	}
	return nil
}

func (e *cliEnv) printScanSummary(s *scanner, sum metrics.Summary, stored int64, elapsed time.Duration) {
	fmt.Fprintf(e.out, "Batch %s\n", s.batchID)
	fmt.Fprintf(e.out, "  hashed:  %s\n", color.GreenString("%d", s.hashed.Load()))
	if n := s.failed.Load(); n > 0 {
		fmt.Fprintf(e.out, "  failed:  %s\n", color.RedString("%d", n))
	} else {
		fmt.Fprintf(e.out, "  failed:  0\n")
	}
	fmt.Fprintf(e.out, "  stored:  %d\n", stored)
	if s.border {
		fmt.Fprintf(e.out, "  borders: %d\n", sum.BordersFound)
	}
	fmt.Fprintf(e.out, "  elapsed: %s\n", elapsed.Round(time.Millisecond))

	kinds := make([]string, 0, len(sum.ErrorsByKind))
	for kind := range sum.ErrorsByKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(e.out, "  %s: %d\n", kind, sum.ErrorsByKind[kind])
	}
}

// collectImages returns the image files under root in lexical order.
func collectImages(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && vision.IsImageFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return paths, nil
}
