// Package controller drives the open → rescan loop and exposes the
// work queue a loader pool pulls from. It is the one place that touches
// both the Scanner and the gocron-based tailing schedule.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	petname "github.com/dustinkirkland/golang-petname"

	"dumpreader/internal/classify"
	"dumpreader/internal/directory"
	"dumpreader/internal/logging"
	"dumpreader/internal/manifest"
	"dumpreader/internal/model"
	"dumpreader/internal/scanner"
	"dumpreader/internal/workqueue"
)

// Controller owns one dump's Model and drives open()/rescan() against a
// Directory. It is not safe for concurrent mutation: callers serialize
// Open/Rescan/Tail the same way they serialize WorkQueue handouts.
type Controller struct {
	dir     directory.Directory
	filter  scanner.Filter
	scanner *scanner.Scanner
	model   *model.Model
	log     *slog.Logger

	runID   uuid.UUID
	runName string

	cron     gocron.Scheduler
	tailJob  gocron.Job
}

// New builds a Controller over dir. A nil filter admits every schema and
// table; a nil logger discards.
func New(dir directory.Directory, filter scanner.Filter, log *slog.Logger) *Controller {
	log = logging.Scoped(log, "controller")
	if filter == nil {
		filter = scanner.AllowAll{}
	}
	return &Controller{
		dir:     dir,
		filter:  filter,
		scanner: scanner.New(dir, filter, log),
		model:   model.New(),
		log:     log,
		runID:   uuid.New(),
		runName: petname.Generate(2, "-"),
	}
}

// Model returns the controller's owned EntityModel.
func (c *Controller) Model() *model.Model { return c.model }

// WorkQueue builds a WorkQueue view over this controller's current model.
func (c *Controller) WorkQueue() *workqueue.WorkQueue {
	return workqueue.New(c.model, c.dir, c.log)
}

// RunID identifies this controller instance for logs and diagnostics.
func (c *Controller) RunID() string { return c.runID.String() }

// RunName is a human-friendly label for this run, generated once at
// construction (e.g. "quiet-falcon").
func (c *Controller) RunName() string { return c.runName }

// Open parses the root manifest, builds the included-schema shells,
// records the dump-wide attributes, then performs one full rescan. A
// rescan here is always safe and idempotent regardless of whether the
// terminator is present yet — it simply does the first dump-level,
// metadata-descent, and data-descent pass in one call instead of
// special-casing "only rescan if already COMPLETE".
func (c *Controller) Open(ctx context.Context) error {
	listing, err := directory.Listing(ctx, c.dir)
	if err != nil {
		return err
	}

	data, err := directory.Slurp(ctx, c.dir, classify.DumpManifestName)
	if err != nil {
		return fmt.Errorf("open root manifest: %w", err)
	}
	tree, err := manifest.Parse(classify.DumpManifestName, data)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	d := c.model.Dump
	d.Version = tree.String("version", "")
	d.ServerVersion = tree.String("serverVersion", "")
	d.DefaultCharset = tree.String("defaultCharacterSet", "")
	d.GTIDExecuted = tree.String("gtidExecuted", "")
	d.TZUTC = tree.Bool("tzUtc", false)
	d.MDSCompatibility = tree.Bool("mdsCompatibility", false)
	d.SchemaBasenames = tree.StringMap("basenames")

	for _, name := range tree.StringSlice("schemas") {
		if !c.filter.IncludeSchema(name) {
			continue
		}
		s := c.model.EnsureSchema(name)
		if base, ok := d.SchemaBasenames[name]; ok {
			s.Basename = base
		}
	}

	c.log.Info("dump opened", "run_id", c.RunID(), "run_name", c.runName, "schemas", len(c.model.Schemas()))

	if err := c.scanner.Rescan(ctx, listing, c.model); err != nil {
		return fmt.Errorf("open: initial rescan: %w", err)
	}
	return nil
}

// Rescan lists dir and applies one incremental scan pass to the model.
// Subsequent calls handle tailing: a dump still being written by its
// producer.
func (c *Controller) Rescan(ctx context.Context) error {
	listing, err := directory.Listing(ctx, c.dir)
	if err != nil {
		return err
	}
	if err := c.scanner.Rescan(ctx, listing, c.model); err != nil {
		return err
	}
	c.log.Debug("rescan complete", "run_id", c.RunID(), "dump_status", c.model.Dump.Status)
	return nil
}

// StartTailing registers a gocron job that calls Rescan every interval
// until StopTailing is called. It is the mechanism behind "tailing" a
// dump that is still being produced.
func (c *Controller) StartTailing(ctx context.Context, interval time.Duration) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create tailing scheduler: %w", err)
	}
	job, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := c.Rescan(ctx); err != nil {
				c.log.Error("tailing rescan failed", "run_id", c.RunID(), "error", err)
			}
		}),
		gocron.WithName(fmt.Sprintf("tail-%s", c.runName)),
	)
	if err != nil {
		return fmt.Errorf("schedule tailing job: %w", err)
	}
	c.cron = s
	c.tailJob = job
	s.Start()
	c.log.Info("tailing started", "run_id", c.RunID(), "interval", interval)
	return nil
}

// StopTailing shuts down the tailing scheduler, if running.
func (c *Controller) StopTailing() error {
	if c.cron == nil {
		return nil
	}
	return c.cron.Shutdown()
}
