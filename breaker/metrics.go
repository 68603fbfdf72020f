package breaker

// Metrics 指标常量定义
const (
	// MetricStateChanges 状态变更次数 (Counter)
	MetricStateChanges = "breaker_state_changes_total"

	// MetricState 当前状态 (Gauge: 0=closed 1=half_open 2=open)
	MetricState = "breaker_state"

	// LabelFromState 源状态标签
	LabelFromState = "from_state"

	// LabelToState 目标状态标签
	LabelToState = "to_state"
)
