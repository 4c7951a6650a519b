package tree

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
)

type orderedTreeMetrics struct {
	inserts     metric.Int64Counter
	rejected    metric.Int64Counter
	rebuilds    metric.Int64Counter
	rebuildSize metric.Int64Histogram
}

func newOrderedTreeMetrics(meter metric.Meter) (*orderedTreeMetrics, error) {
	var (
		m    = &orderedTreeMetrics{}
		err  error
		merr error
	)
	m.inserts, err = meter.Int64Counter(
		"bstree.tree.inserts",
		metric.WithDescription("Values inserted into the ordered tree."),
	)
	merr = multierr.Append(merr, err)
	m.rejected, err = meter.Int64Counter(
		"bstree.tree.rejected",
		metric.WithDescription("Inserts rejected by the comparator checks."),
	)
	merr = multierr.Append(merr, err)
	m.rebuilds, err = meter.Int64Counter(
		"bstree.tree.rebuilds",
		metric.WithDescription("Whole tree rebuilds triggered by an unbalanced root."),
	)
	merr = multierr.Append(merr, err)
	m.rebuildSize, err = meter.Int64Histogram(
		"bstree.tree.rebuild.size",
		metric.WithDescription("Nodes relinked by a rebuild."),
	)
	merr = multierr.Append(merr, err)
	if merr != nil {
		return nil, merr
	}
	return m, nil
}

func (m *orderedTreeMetrics) inserted() {
	if m == nil {
		return
	}
	m.inserts.Add(context.Background(), 1)
}

func (m *orderedTreeMetrics) reject() {
	if m == nil {
		return
	}
	m.rejected.Add(context.Background(), 1)
}

func (m *orderedTreeMetrics) rebuilt(size int64) {
	if m == nil {
		return
	}
	m.rebuilds.Add(context.Background(), 1)
	m.rebuildSize.Record(context.Background(), size)
}
