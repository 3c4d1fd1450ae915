package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dumpreader/internal/controller"
	"dumpreader/internal/filterspec"
	"dumpreader/internal/model"
	"dumpreader/internal/scheduler"
	"dumpreader/internal/workqueue"
)

// newLoadCmd builds the "load" subcommand: a reference consumer of
// WorkQueue demonstrating how an external loader pool would drive the
// four non-blocking producer calls. It does not write to any database —
// it reads each dispatched chunk fully (simulating load work) and applies
// deferred indexes/analyze in the order WorkQueue hands them out. Pool
// logic lives here, outside the core, since actual SQL execution is a
// separate concern from dump reading and scheduling.
func newLoadCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Drain the work queue with a bounded worker pool (reference consumer, no database write)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := resolveConfig(ctx, cmd)
			if err != nil {
				return err
			}
			filter, err := filterspec.Compile(cfg.FilterPatterns)
			if err != nil {
				return fmt.Errorf("compile filters: %w", err)
			}
			dir, err := openDirectory(ctx, cfg.Backend, logger)
			if err != nil {
				return err
			}

			ctl := controller.New(dir, filter, logger)
			if err := ctl.Open(ctx); err != nil {
				return fmt.Errorf("open dump: %w", err)
			}

			concurrency := cfg.Concurrency
			if concurrency <= 0 {
				concurrency = 4
			}

			return runLoad(ctx, ctl, concurrency, logger)
		},
	}
	return cmd
}

// loadPool tracks in-flight byte shares and per-table completed-chunk
// counts so the scheduler and NextDeferredIndex's loadFinished callback
// have an accurate view across concurrent workers. queue serializes the
// workers' WorkQueue handouts, which mutate the model.
type loadPool struct {
	queue        sync.Mutex
	mu           sync.Mutex
	inFlight     scheduler.InFlight
	chunksLoaded map[model.TableKey]int
}

func newLoadPool() *loadPool {
	return &loadPool{
		inFlight:     make(scheduler.InFlight),
		chunksLoaded: make(map[model.TableKey]int),
	}
}

func (p *loadPool) snapshotInFlight() scheduler.InFlight {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(scheduler.InFlight, len(p.inFlight))
	for k, v := range p.inFlight {
		out[k] = v
	}
	return out
}

func (p *loadPool) dispatch(key model.TableKey, size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight[key] += size
}

func (p *loadPool) complete(key model.TableKey, size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight[key] -= size
	if p.inFlight[key] <= 0 {
		delete(p.inFlight, key)
	}
	p.chunksLoaded[key]++
}

func (p *loadPool) loadedCount(key model.TableKey) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chunksLoaded[key]
}

func runLoad(ctx context.Context, ctl *controller.Controller, concurrency int, logger *slog.Logger) error {
	wq := ctl.WorkQueue()

	if err := drainSchemaDDL(ctx, wq, logger); err != nil {
		return err
	}

	pool := newLoadPool()
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < concurrency; i++ {
		g.Go(func() error {
			return loadWorker(gctx, wq, pool, logger)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return drainDeferredWork(ctx, ctl, wq, pool, logger)
}

func drainSchemaDDL(ctx context.Context, wq *workqueue.WorkQueue, logger *slog.Logger) error {
	for {
		ddl, ok, err := wq.NextSchema(ctx)
		if err != nil {
			return fmt.Errorf("next schema: %w", err)
		}
		if !ok {
			return nil
		}
		if ddl.Script != nil {
			_ = ddl.Script.Close()
		}
		for _, t := range ddl.Tables {
			_ = t.File.Close()
		}
		for _, v := range ddl.Views {
			_ = v.File.Close()
		}
		logger.Info("schema DDL applied", "schema", ddl.Schema, "tables", len(ddl.Tables), "views", len(ddl.Views))
	}
}

func loadWorker(ctx context.Context, wq *workqueue.WorkQueue, pool *loadPool, logger *slog.Logger) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		pool.queue.Lock()
		chunk, ok, err := wq.NextTableChunk(ctx, pool.snapshotInFlight())
		more := ok || wq.DataAvailable()
		pool.queue.Unlock()
		if err != nil {
			return fmt.Errorf("next table chunk: %w", err)
		}
		if !ok {
			if !more {
				return nil
			}
			continue
		}

		key := model.TableKey{Schema: chunk.Schema, Table: chunk.Table}
		pool.dispatch(key, chunk.ChunkSize)

		if _, err := io.Copy(io.Discard, chunk.File); err != nil {
			_ = chunk.File.Close()
			return fmt.Errorf("load chunk %s.%s[%d]: %w", chunk.Schema, chunk.Table, chunk.ChunkIndex, err)
		}
		if err := chunk.File.Close(); err != nil {
			return fmt.Errorf("close chunk %s.%s[%d]: %w", chunk.Schema, chunk.Table, chunk.ChunkIndex, err)
		}

		pool.complete(key, chunk.ChunkSize)
		logger.Debug("chunk loaded", "schema", chunk.Schema, "table", chunk.Table, "index", chunk.ChunkIndex)
	}
}

func drainDeferredWork(ctx context.Context, ctl *controller.Controller, wq *workqueue.WorkQueue, pool *loadPool, logger *slog.Logger) error {
	loadFinished := func(schema, table string) bool {
		key := model.TableKey{Schema: schema, Table: table}
		t, ok := ctl.Model().Table(key)
		if !ok {
			return false
		}
		return t.LastChunkSeen && pool.loadedCount(key) == t.NumChunks
	}

	for {
		batch, ok := wq.NextDeferredIndex(loadFinished)
		if !ok {
			break
		}
		logger.Info("deferred indexes applied", "schema", batch.Schema, "table", batch.Table, "count", len(batch.Indexes))
	}

	for {
		analyze, ok := wq.NextTableAnalyze()
		if !ok {
			break
		}
		logger.Info("analyze applied", "schema", analyze.Schema, "table", analyze.Table, "histograms", len(analyze.Histograms))
	}

	return nil
}
