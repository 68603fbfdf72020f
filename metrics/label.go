package metrics

// Label 指标标签
// 用于为指标添加维度信息，实现指标的细粒度分组和筛选
//
// 标签命名规范：
//   - 使用小写字母和下划线：entity_type 而不是 entityType
//   - 避免高基数标签（如学习者 ID、请求 ID）
type Label struct {
	Key   string
	Value string
}

// L 便捷构造函数，创建一个 Label 实例
//
//	counter.Inc(ctx, metrics.L("outcome", "fallback"))
func L(key, value string) Label {
	return Label{Key: key, Value: value}
}
