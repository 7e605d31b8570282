package utils

// Label 标记候选的来龙去脉：哪个召回源产出、被哪条规则处理过。
// Value 与 Source 的语义由上层约定；这里只提供标准化的合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rerank / engine ...
}

// MergeLabel 合并同名 Label，默认策略是"保留历史、可追踪"：
// - Value 以 '|' 累积
// - Source 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
