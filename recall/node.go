package recall

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
)

// Node 把 Source 适配成 pipeline.Node，作为链路的首个节点产出候选集。
type Node struct {
	Source Source
}

func (n *Node) Name() string        { return n.Source.Name() }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Node) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return n.Source.Recall(ctx, rctx)
}
