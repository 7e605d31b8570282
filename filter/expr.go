package filter

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/dsl"
	"github.com/rushteam/movierec/pkg/utils"
)

// Expr 是规则过滤节点：对每个候选求值一条 CEL 表达式，
// 结果为 false 的候选被剔除。
//
// 表达式在 NewExpr 时编译一次，之后可并发复用。
// 求值出错的候选保留并打上 label，错误不中断整条链路。
type Expr struct {
	Expression string

	program *dsl.Program
}

// NewExpr 编译表达式并返回节点；语法错误在这里暴露。
func NewExpr(expression string) (*Expr, error) {
	prg, err := dsl.Compile(expression)
	if err != nil {
		return nil, err
	}
	return &Expr{Expression: expression, program: prg}, nil
}

func (n *Expr) Name() string        { return "filter.expr" }
func (n *Expr) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *Expr) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.program == nil || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		keep, err := n.program.Eval(it, rctx)
		if err != nil {
			it.PutLabel("filter_error", utils.Label{Value: err.Error(), Source: "filter"})
			out = append(out, it)
			continue
		}
		if !keep {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}
