// Package objective 提供负载均衡目标函数
package objective

import (
	"github.com/paiban/paihu/pkg/assigner/capacity"
	"github.com/paiban/paihu/pkg/model"
)

// Weights 目标函数权重
type Weights struct {
	// Balance 负载均衡项权重（方差，越小越均衡）
	Balance float64 `yaml:"balance" json:"balance"`

	// Continuity 护理连续性项权重（沿用上个班次的护士可降低成本）
	Continuity float64 `yaml:"continuity" json:"continuity"`
}

// DefaultWeights 返回默认权重
func DefaultWeights() Weights {
	return Weights{
		Balance:    1.0,
		Continuity: 0.3,
	}
}

// Evaluator 目标函数评估器
// 成本越低越好；可行性永远优先于成本，成本只用于同覆盖率方案间排序
type Evaluator struct {
	nurses  []*model.Nurse
	weights Weights
}

// NewEvaluator 创建评估器
func NewEvaluator(nurses []*model.Nurse, weights Weights) *Evaluator {
	return &Evaluator{
		nurses:  nurses,
		weights: weights,
	}
}

// Cost 计算一个（可能不完整的）分配方案的成本
// assignedNurse[patientIdx] 为护士下标，-1 表示未分配
//
// 成本 = Balance * 归一化负载方差 + Continuity * 连续性未命中比例
// 归一化负载 = 护士病情权重负载 / 护士容量，防止大容量护士天然吃重
func (e *Evaluator) Cost(tracker *capacity.Tracker, patients []*model.Patient, assignedNurse []int) float64 {
	return e.weights.Balance*e.balanceCost(tracker) +
		e.weights.Continuity*e.continuityCost(patients, assignedNurse)
}

// balanceCost 计算归一化负载的方差
func (e *Evaluator) balanceCost(tracker *capacity.Tracker) float64 {
	n := tracker.NurseCount()
	if n == 0 {
		return 0
	}

	var sum float64
	loads := make([]float64, n)
	for i := 0; i < n; i++ {
		loads[i] = tracker.NormalizedLoad(i)
		sum += loads[i]
	}
	mean := sum / float64(n)

	var variance float64
	for _, l := range loads {
		diff := l - mean
		variance += diff * diff
	}
	return variance / float64(n)
}

// continuityCost 计算连续性未命中比例
// 只统计声明了上任护士且上任护士仍在本班次名单中的患者
func (e *Evaluator) continuityCost(patients []*model.Patient, assignedNurse []int) float64 {
	nurseIdxByID := make(map[string]int, len(e.nurses))
	for i, n := range e.nurses {
		nurseIdxByID[n.ID] = i
	}

	eligible := 0
	missed := 0
	for pi, p := range patients {
		if p.LastNurseID == "" {
			continue
		}
		lastIdx, ok := nurseIdxByID[p.LastNurseID]
		if !ok {
			continue
		}
		eligible++
		if pi >= len(assignedNurse) || assignedNurse[pi] != lastIdx {
			missed++
		}
	}

	if eligible == 0 {
		return 0
	}
	return float64(missed) / float64(eligible)
}
