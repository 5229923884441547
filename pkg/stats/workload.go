// Package stats 提供分配结果的负载统计分析
package stats

import (
	"math"
	"sort"
)

// NurseLoadInfo 护士负载信息（用于统计分析）
type NurseLoadInfo struct {
	NurseID       string `json:"nurse_id"`
	NurseName     string `json:"nurse_name"`
	Capacity      int    `json:"capacity"`
	AssignedCount int    `json:"assigned_count"`
	TotalAcuity   int    `json:"total_acuity"`
	IVCount       int    `json:"iv_count"`
}

// NurseStat 单个护士的均衡统计
type NurseStat struct {
	NurseID        string  `json:"nurse_id"`
	NurseName      string  `json:"nurse_name"`
	TotalAcuity    int     `json:"total_acuity"`
	AssignedCount  int     `json:"assigned_count"`
	NormalizedLoad float64 `json:"normalized_load"` // 病情权重负载 / 容量
	Deviation      float64 `json:"deviation"`       // 与平均负载的偏差百分比
}

// BalanceMetrics 负载均衡指标
type BalanceMetrics struct {
	// 病情权重负载均衡
	AcuityGini     float64 `json:"acuity_gini"`     // 负载基尼系数 (0=完全均衡, 1=完全不均衡)
	AcuityVariance float64 `json:"acuity_variance"` // 归一化负载方差
	AcuityStdDev   float64 `json:"acuity_std_dev"`  // 归一化负载标准差
	AvgAcuity      float64 `json:"avg_acuity"`      // 人均病情权重负载
	MaxAcuity      int     `json:"max_acuity"`      // 最大负载
	MinAcuity      int     `json:"min_acuity"`      // 最小负载
	AcuityRange    int     `json:"acuity_range"`    // 负载极差

	// 护士级别统计
	NurseStats []NurseStat `json:"nurse_stats"`

	// 综合评分
	OverallBalanceScore float64 `json:"overall_balance_score"` // 综合均衡评分 (0-100)
}

// BalanceAnalyzer 负载均衡分析器
type BalanceAnalyzer struct{}

// NewBalanceAnalyzer 创建负载均衡分析器
func NewBalanceAnalyzer() *BalanceAnalyzer {
	return &BalanceAnalyzer{}
}

// Analyze 分析一次分配结果的负载均衡情况
func (b *BalanceAnalyzer) Analyze(loads []*NurseLoadInfo) *BalanceMetrics {
	if len(loads) == 0 {
		return &BalanceMetrics{OverallBalanceScore: 100}
	}

	normalized := make([]float64, len(loads))
	acuities := make([]float64, len(loads))
	maxAcuity := loads[0].TotalAcuity
	minAcuity := loads[0].TotalAcuity

	for i, l := range loads {
		acuities[i] = float64(l.TotalAcuity)
		if l.Capacity > 0 {
			normalized[i] = float64(l.TotalAcuity) / float64(l.Capacity)
		}
		if l.TotalAcuity > maxAcuity {
			maxAcuity = l.TotalAcuity
		}
		if l.TotalAcuity < minAcuity {
			minAcuity = l.TotalAcuity
		}
	}

	avgAcuity := mean(acuities)
	avgNorm := mean(normalized)
	variance := varianceOf(normalized, avgNorm)
	stdDev := math.Sqrt(variance)
	gini := giniCoefficient(acuities)

	stats := make([]NurseStat, len(loads))
	for i, l := range loads {
		deviation := 0.0
		if avgNorm > 0 {
			deviation = (normalized[i] - avgNorm) / avgNorm * 100
		}
		stats[i] = NurseStat{
			NurseID:        l.NurseID,
			NurseName:      l.NurseName,
			TotalAcuity:    l.TotalAcuity,
			AssignedCount:  l.AssignedCount,
			NormalizedLoad: normalized[i],
			Deviation:      deviation,
		}
	}

	return &BalanceMetrics{
		AcuityGini:          gini,
		AcuityVariance:      variance,
		AcuityStdDev:        stdDev,
		AvgAcuity:           avgAcuity,
		MaxAcuity:           maxAcuity,
		MinAcuity:           minAcuity,
		AcuityRange:         maxAcuity - minAcuity,
		NurseStats:          stats,
		OverallBalanceScore: balanceScore(gini, stdDev, avgNorm),
	}
}

// balanceScore 计算综合均衡评分
// 基尼系数占七成，负载离散度占三成
func balanceScore(gini, stdDev, avgNorm float64) float64 {
	giniScore := (1 - gini) * 100

	dispersionScore := 100.0
	if avgNorm > 0 {
		cv := stdDev / avgNorm // 变异系数
		dispersionScore = (1 - math.Min(cv, 1)) * 100
	}

	score := giniScore*0.7 + dispersionScore*0.3
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// varianceOf 计算方差
func varianceOf(values []float64, avg float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumSquares float64
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// giniCoefficient 计算基尼系数
func giniCoefficient(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var total, weighted float64
	for i, v := range sorted {
		total += v
		weighted += v * float64(i+1)
	}
	if total == 0 {
		return 0
	}

	return (2*weighted - float64(n+1)*total) / (float64(n) * total)
}
