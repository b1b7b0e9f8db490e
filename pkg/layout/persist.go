package layout

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/goalnet/pkg/errors"
	"github.com/matzehuels/goalnet/pkg/observability"
)

// PositionSaver persists the coordinates of one node.
// Every store backend implements it.
type PositionSaver interface {
	SavePosition(ctx context.Context, id int64, x, y float64) error
}

// SaverFunc adapts a function to PositionSaver.
type SaverFunc func(ctx context.Context, id int64, x, y float64) error

func (f SaverFunc) SavePosition(ctx context.Context, id int64, x, y float64) error {
	return f(ctx, id, x, y)
}

// SaveReport summarises the persistence step of a layout run.
// Ids appear in node order.
type SaveReport struct {
	Attempted int     `json:"attempted"`
	Saved     []int64 `json:"saved,omitempty"`
	Failed    []int64 `json:"failed,omitempty"`
}

// OK reports whether every attempted save succeeded.
func (r SaveReport) OK() bool { return len(r.Failed) == 0 }

// SavePosition persists one position and reports success. Non-finite
// coordinates are rejected without calling saver. Errors are logged at warn
// level and never returned.
func SavePosition(ctx context.Context, saver PositionSaver, logger *log.Logger, id int64, x, y float64) bool {
	if logger == nil {
		logger = discardLogger
	}
	start := time.Now()
	ok := savePosition(ctx, saver, logger, id, x, y)
	observability.Persist().OnSave(ctx, id, ok, time.Since(start))
	return ok
}

func savePosition(ctx context.Context, saver PositionSaver, logger *log.Logger, id int64, x, y float64) bool {
	if err := errors.ValidateCoordinate(x, y); err != nil {
		logger.Warn("position not saved", "node", id, "err", err)
		return false
	}
	if saver == nil {
		logger.Warn("position not saved", "node", id, "err", "no position store configured")
		return false
	}
	if err := saver.SavePosition(ctx, id, x, y); err != nil {
		logger.Warn("position not saved", "node", id, "err", err)
		return false
	}
	return true
}

// SaveTarget is one position to persist.
type SaveTarget struct {
	ID int64
	X  float64
	Y  float64
}

// SaveAll persists every target concurrently and waits for all of them.
// A failure never cancels the other saves. limit bounds the number of saves
// in flight; zero means unbounded.
func SaveAll(ctx context.Context, saver PositionSaver, logger *log.Logger, targets []SaveTarget, limit int) SaveReport {
	results := make([]bool, len(targets))

	// No derived context: one failed save must not cancel the rest.
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, t := range targets {
		g.Go(func() error {
			results[i] = SavePosition(ctx, saver, logger, t.ID, t.X, t.Y)
			return nil
		})
	}
	_ = g.Wait()

	report := SaveReport{Attempted: len(targets)}
	for i, ok := range results {
		if ok {
			report.Saved = append(report.Saved, targets[i].ID)
		} else {
			report.Failed = append(report.Failed, targets[i].ID)
		}
	}
	return report
}
