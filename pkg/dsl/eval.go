// Package dsl 提供候选过滤规则的 CEL 解释器。
//
// 表达式对以下变量求值：
//   - item：候选影片，字段 id / score / meta（category、release_date 等）
//   - label：候选标签的扁平视图，label.recall_source 直接取 value
//   - rctx：请求上下文，字段 user_id / algorithm / params
//
// 示例：
//   - `item.score >= 2.0`
//   - `item.meta.category != "Horror"`
//   - `label.recall_source.contains("popular")`
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/movierec/core"
)

var (
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// getCELEnv 获取全局 CEL 环境（线程安全，可复用）。
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的规则，可跨请求并发复用。
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；语法错误在这里一次性暴露，而不是每次求值。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// Eval 对单个候选求值，返回布尔结果。
// 访问不存在的 key 会报错；存在性检查应使用 label.key != null。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must return boolean, got %T", p.expr, out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 求值的输入。
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(item.Labels))
	labelAccessor := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = map[string]any{"value": v.Value, "source": v.Source}
		labelAccessor[k] = v.Value
	}

	input := map[string]any{
		"item": map[string]any{
			"id":     item.ID,
			"score":  item.Score,
			"meta":   item.Meta,
			"labels": labels,
		},
		"label": labelAccessor,
	}
	if rctx != nil {
		input["rctx"] = map[string]any{
			"user_id":   rctx.UserID,
			"algorithm": rctx.Algorithm,
			"params":    rctx.Params,
		}
	} else {
		input["rctx"] = map[string]any{}
	}
	return input
}
