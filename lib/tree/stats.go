package tree

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	TreeStatsName = "xboot/xtree"
)

var (
	rotateLeftAttrs  = metric.WithAttributeSet(attribute.NewSet(attribute.String("xtree.rotate.direction", "left")))
	rotateRightAttrs = metric.WithAttributeSet(attribute.NewSet(attribute.String("xtree.rotate.direction", "right")))
)

type treeStats struct {
	insertCount    metric.Int64Counter
	duplicateCount metric.Int64Counter
	rotateCount    metric.Int64Counter
	recolorCount   metric.Int64Counter
	nodeCount      metric.Int64UpDownCounter
}

func (stats *treeStats) IncreaseInsertCount() {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1)
	stats.nodeCount.Add(context.Background(), 1)
}

func (stats *treeStats) IncreaseDuplicateCount() {
	if stats == nil {
		return
	}
	stats.duplicateCount.Add(context.Background(), 1)
}

func (stats *treeStats) IncreaseRotateCount(dir Direction) {
	if stats == nil {
		return
	}
	switch dir {
	case Left:
		stats.rotateCount.Add(context.Background(), 1, rotateLeftAttrs)
	case Right:
		stats.rotateCount.Add(context.Background(), 1, rotateRightAttrs)
	default:
	}
}

func (stats *treeStats) IncreaseRecolorCount(n int64) {
	if stats == nil || n <= 0 {
		return
	}
	stats.recolorCount.Add(context.Background(), n)
}

func newTreeStats(name string, provider metric.MeterProvider) *treeStats {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(fmt.Sprintf("%s/%s", TreeStatsName, name))
	return &treeStats{
		insertCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"xtree.insert.count",
				metric.WithDescription("The number of keys accepted by the tree."),
			),
		),
		duplicateCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"xtree.insert.duplicate.count",
				metric.WithDescription("The number of keys rejected as duplicates."),
			),
		),
		rotateCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"xtree.rotate.count",
				metric.WithDescription("The number of rotations performed by the fix-up."),
			),
		),
		recolorCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"xtree.recolor.count",
				metric.WithDescription("The number of node repaints performed by the red-black fix-up."),
			),
		),
		nodeCount: lo.Must[metric.Int64UpDownCounter](meter.
			Int64UpDownCounter(
				"xtree.node.count",
				metric.WithDescription("The number of nodes held by the tree."),
			),
		),
	}
}
