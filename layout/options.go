package layout

import "errors"

// ErrNoMeasurer 表示构建布局时没有注入测量后端。
var ErrNoMeasurer = errors.New("layout: 缺少测量后端 Measurer")

// TextStyle 标识一种文字样式；相同 (text, style) 的测量结果必须一致。
type TextStyle struct {
	Font   string  `json:"font"`
	Size   float64 `json:"size"` // px
	Weight string  `json:"weight,omitempty"`
}

// Metrics 是测量回调返回的文本度量（像素）。
type Metrics struct {
	Width         float64   `json:"width"`
	Height        float64   `json:"height"`
	FirstBaseline float64   `json:"firstBaseline"`
	CharBounds    []float64 `json:"charBounds,omitempty"` // 每个字素簇的右边界，可选
}

// Measurer 负责文本测量，由宿主的排版/渲染层提供。
type Measurer interface {
	Measure(text string, style TextStyle) Metrics
}

// MeasureFunc 让普通函数实现 Measurer。
type MeasureFunc func(text string, style TextStyle) Metrics

func (f MeasureFunc) Measure(text string, style TextStyle) Metrics { return f(text, style) }

// MetricsFunc 是绑定了样式的测量函数，折行算法只依赖它。
type MetricsFunc func(text string) Metrics

// BuildOptions 配置单行布局所需的依赖与参数。
type BuildOptions struct {
	Measurer    Measurer
	Style       TextStyle
	MaxWidth    float64
	CanvasWidth float64 // <=0 时取 MaxWidth
	RowHeight   float64 // <=0 时按最高音节 * 1.2 推算
	CharAnim    CharAnimOptions
}

// CharAnimOptions 决定哪些单词启用逐字动画。
type CharAnimOptions struct {
	Enabled            bool    `json:"enabled"`
	ThresholdMsPerChar float64 `json:"thresholdMsPerChar"`
}

// DefaultRowHeightFactor 在未指定行高时作用于最高音节高度。
const DefaultRowHeightFactor = 1.2
