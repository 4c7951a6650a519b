package tree

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/benz9527/xbst/xlog"
)

func TestOrderedTree_Meter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	tree := NewOrderedTree[float64](WithOrderedTreeMeter[float64](mp.Meter("tree-test")))
	for _, v := range []float64{1, 2, 3, 4} {
		require.NoError(t, tree.Insert(v))
	}
	require.Error(t, tree.Insert(math.NaN()))

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	collected := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			collected[m.Name] = m.Data
		}
	}

	sumOf := func(name string) int64 {
		sum, ok := collected[name].(metricdata.Sum[int64])
		require.True(t, ok, name)
		require.Len(t, sum.DataPoints, 1, name)
		return sum.DataPoints[0].Value
	}
	require.Equal(t, int64(4), sumOf("bstree.tree.inserts"))
	require.Equal(t, int64(1), sumOf("bstree.tree.rejected"))
	require.Equal(t, int64(1), sumOf("bstree.tree.rebuilds"))

	hist, ok := collected["bstree.tree.rebuild.size"].(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	require.Equal(t, uint64(1), hist.DataPoints[0].Count)
	require.Equal(t, int64(3), hist.DataPoints[0].Sum)

	// Without a meter nothing is recorded and nothing breaks.
	plain := NewOrderedTree[int](WithOrderedTreeMeter[int](nil))
	require.NoError(t, plain.Insert(1))
}

type histogramlessMeter struct {
	noop.Meter
}

func (histogramlessMeter) Int64Histogram(string, ...metric.Int64HistogramOption) (metric.Int64Histogram, error) {
	return nil, errors.New("[test] histogram unavailable")
}

func TestOrderedTree_MeterFailureLoggedWhateverTheOptionOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := xlog.NewXLogger(
		xlog.WithXLoggerWriter(buf),
		xlog.WithXLoggerLevel(xlog.LogLevelDebug),
		xlog.WithXLoggerEncoder(xlog.JSON),
	)
	tree := NewOrderedTree[int](
		WithOrderedTreeMeter[int](histogramlessMeter{}),
		WithOrderedTreeLogger[int](logger),
	)
	require.Contains(t, buf.String(), "[ordered-tree] metrics disabled")
	require.Contains(t, buf.String(), "[test] histogram unavailable")
	require.Nil(t, tree.(*orderedTree[int]).metrics)

	for i := 1; i <= 3; i++ {
		require.NoError(t, tree.Insert(i))
	}
	require.Equal(t, []int{1, 2, 3}, tree.Values(InOrderTraversal))
}
