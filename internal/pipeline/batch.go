package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/parcel-cli/internal/model"
)

// BatchItem is the outcome of one input in a batch.
type BatchItem struct {
	Name      string  `json:"name"`
	ContextID string  `json:"context_id,omitempty"`
	Result    *Result `json:"-"`
	Err       error   `json:"-"`
	ErrorKind string  `json:"error_kind,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// BatchSummary collects a batch's outcomes in input order.
type BatchSummary struct {
	Items     []BatchItem `json:"items"`
	Succeeded int64       `json:"succeeded"`
	Failed    int64       `json:"failed"`
}

// RunBatch runs every input with at most concurrency runs in flight. A failed
// input is recorded in its item and does not abort the batch.
func (p *Pipeline) RunBatch(ctx context.Context, inputs []Input, concurrency int) (*BatchSummary, error) {
	summary := &BatchSummary{Items: make([]BatchItem, len(inputs))}
	if len(inputs) == 0 {
		zap.L().Info("pipeline: empty batch")
		return summary, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("pipeline: processing batch",
		zap.Int("cases", len(inputs)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for i, in := range inputs {
		g.Go(func() error {
			item := BatchItem{Name: in.Name}
			res, err := p.Run(gctx, in)
			item.Result = res
			if res != nil && res.Context != nil {
				item.ContextID = res.Context.ID
			}
			if err != nil {
				failed.Add(1)
				item.Err = err
				item.ErrorKind = model.KindOf(err)
				item.Error = err.Error()
			} else {
				succeeded.Add(1)
			}
			summary.Items[i] = item
			return nil // don't abort batch on individual failure
		})
	}

	if err := g.Wait(); err != nil {
		return summary, eris.Wrap(err, "pipeline: batch")
	}

	summary.Succeeded = succeeded.Load()
	summary.Failed = failed.Load()
	zap.L().Info("pipeline: batch complete",
		zap.Int64("succeeded", summary.Succeeded),
		zap.Int64("failed", summary.Failed),
	)
	return summary, nil
}
