// Package solver 提供约束分配求解器
package solver

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paiban/paihu/pkg/assigner/capacity"
	"github.com/paiban/paihu/pkg/assigner/eligibility"
	"github.com/paiban/paihu/pkg/assigner/objective"
	"github.com/paiban/paihu/pkg/logger"
	"github.com/paiban/paihu/pkg/model"
)

// costEpsilon 成本比较容差，用于确定性的平局裁决
const costEpsilon = 1e-9

// deadlinePollMask 每 64 个节点检查一次截止时间
const deadlinePollMask = 0x3F

// Config 求解器配置
type Config struct {
	// Deadline 墙钟时间预算，到期返回当前最优解而非报错
	// <=0 视为立即到期，只返回贪心播种解
	Deadline time.Duration `yaml:"deadline" json:"deadline"`

	// MaxNodes 搜索节点数上限（兜底保护，<=0 使用默认值）
	MaxNodes int64 `yaml:"max_nodes" json:"max_nodes"`

	// Workers 根分支并行度，<=1 为串行搜索
	Workers int `yaml:"workers" json:"workers"`
}

// DefaultConfig 返回默认求解器配置
func DefaultConfig() Config {
	return Config{
		Deadline: 30 * time.Second,
		MaxNodes: 5_000_000,
		Workers:  1,
	}
}

// Solution 一个分配方案
// AssignedNurse[patientIdx] 为护士下标，-1 表示未分配
type Solution struct {
	AssignedNurse []int
	Assigned      int
	Cost          float64
}

// Clone 深拷贝方案
func (s *Solution) Clone() *Solution {
	clone := &Solution{
		AssignedNurse: make([]int, len(s.AssignedNurse)),
		Assigned:      s.Assigned,
		Cost:          s.Cost,
	}
	copy(clone.AssignedNurse, s.AssignedNurse)
	return clone
}

// betterThan 字典序比较：覆盖率优先，其次成本，最后按分配向量裁决平局
// 平局裁决保证并行搜索下结果仍然确定
func (s *Solution) betterThan(other *Solution) bool {
	if other == nil {
		return true
	}
	if s.Assigned != other.Assigned {
		return s.Assigned > other.Assigned
	}
	if s.Cost < other.Cost-costEpsilon {
		return true
	}
	if s.Cost > other.Cost+costEpsilon {
		return false
	}
	for i := range s.AssignedNurse {
		a, b := s.AssignedNurse[i], other.AssignedNurse[i]
		if a == b {
			continue
		}
		// 留空排在所有护士下标之后：同成本下优先保住靠前（高权重）患者
		if a == -1 {
			return false
		}
		if b == -1 {
			return true
		}
		return a < b
	}
	return false
}

// Result 求解结果
type Result struct {
	Best     *Solution
	Optimal  bool // 搜索空间被完整穷尽或排除
	Nodes    int64
	Duration time.Duration
}

// searchState 一次求解的共享状态
// 最优解由互斥锁保护，停止标志与节点计数用原子量，热路径无锁
type searchState struct {
	mu        sync.Mutex
	incumbent *Solution

	stop  atomic.Bool
	nodes atomic.Int64

	deadline    time.Time
	hasDeadline bool
	maxNodes    int64
}

// offer 提交一个完整方案，必要时更新全局最优
func (st *searchState) offer(candidate *Solution) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if candidate.betterThan(st.incumbent) {
		st.incumbent = candidate.Clone()
		return true
	}
	return false
}

// bestAssigned 读取当前最优覆盖数
func (st *searchState) bestAssigned() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.incumbent == nil {
		return -1
	}
	return st.incumbent.Assigned
}

// best 读取当前最优解的拷贝
func (st *searchState) best() *Solution {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.incumbent == nil {
		return nil
	}
	return st.incumbent.Clone()
}

// BranchBoundSolver 分支定界求解器
// 按病情权重降序处理患者（先放最难安置的），以便尽早失败并改善早期界
type BranchBoundSolver struct {
	matrix      *eligibility.Matrix
	evaluator   *objective.Evaluator
	nurses      []*model.Nurse
	patients    []*model.Patient
	cfg         Config
	ivLoadLimit int
	logger      *logger.AssignerLogger
	runID       string
}

// New 创建分支定界求解器
// patients 必须已按病情权重降序、同权重按标识升序排好
func New(matrix *eligibility.Matrix, evaluator *objective.Evaluator,
	nurses []*model.Nurse, patients []*model.Patient, ivLoadLimit int, cfg Config) *BranchBoundSolver {
	if cfg.MaxNodes <= 0 {
		cfg.MaxNodes = DefaultConfig().MaxNodes
	}
	return &BranchBoundSolver{
		matrix:      matrix,
		evaluator:   evaluator,
		nurses:      nurses,
		patients:    patients,
		cfg:         cfg,
		ivLoadLimit: ivLoadLimit,
		logger:      logger.NewAssignerLogger(),
	}
}

// SetRunID 设置运行标识（用于日志关联）
func (s *BranchBoundSolver) SetRunID(runID string) {
	s.runID = runID
}

// Solve 执行求解
// 先用贪心法播种一个可行解，保证哪怕预算为零也有结果可返回，
// 再做分支定界搜索改进；到期或节点耗尽时返回当前最优
func (s *BranchBoundSolver) Solve(ctx context.Context) *Result {
	start := time.Now()

	st := &searchState{
		hasDeadline: s.cfg.Deadline > 0,
		maxNodes:    s.cfg.MaxNodes,
	}
	if st.hasDeadline {
		st.deadline = start.Add(s.cfg.Deadline)
	}

	// 贪心播种
	st.offer(s.greedy())

	// 预算为零或为负等于立即到期：只返回贪心解，按尽力而为处理
	if len(s.patients) > 0 && !st.hasDeadline {
		st.stop.Store(true)
	}

	if len(s.patients) > 0 && st.hasDeadline && !s.expired(ctx, st) {
		tracker := capacity.NewTracker(s.nurses, s.ivLoadLimit)
		current := make([]int, len(s.patients))
		for i := range current {
			current[i] = -1
		}

		if s.cfg.Workers > 1 {
			s.searchParallel(ctx, st, tracker, current)
		} else {
			s.search(ctx, st, 0, tracker, current, 0)
		}
	}

	best := st.best()
	if best == nil {
		best = emptySolution(len(s.patients))
	}

	return &Result{
		Best:     best,
		Optimal:  !st.stop.Load(),
		Nodes:    st.nodes.Load(),
		Duration: time.Since(start),
	}
}

// search 深度优先的分支定界
func (s *BranchBoundSolver) search(ctx context.Context, st *searchState, depth int, tracker *capacity.Tracker, current []int, assigned int) {
	n := st.nodes.Add(1)
	if n&deadlinePollMask == 0 && s.expired(ctx, st) {
		return
	}
	if n > st.maxNodes {
		st.stop.Store(true)
		return
	}

	if depth == len(s.patients) {
		cost := s.evaluator.Cost(tracker, s.patients, current)
		candidate := &Solution{AssignedNurse: current, Assigned: assigned, Cost: cost}
		if st.offer(candidate) && s.logger != nil {
			s.logger.NewIncumbent(s.runID, assigned, cost)
		}
		return
	}

	// 覆盖率上界剪枝：即使剩余患者全部安置也追不上当前最优
	remaining := len(s.patients) - depth
	if assigned+remaining < st.bestAssigned() {
		return
	}

	p := s.patients[depth]
	for _, ni := range s.candidateOrder(depth, tracker) {
		if !tracker.Assign(ni, p) {
			continue
		}
		current[depth] = ni
		s.search(ctx, st, depth+1, tracker, current, assigned+1)
		current[depth] = -1
		tracker.Undo(ni, p)

		if st.stop.Load() {
			return
		}
	}

	// 跳过分支：患者留空是设计好的泄压阀，放在最后探索
	s.search(ctx, st, depth+1, tracker, current, assigned)
}

// candidateOrder 返回该患者的候选护士下标
// 按当前归一化负载升序（负载轻者优先，利于均衡），同负载按下标升序保证确定性
func (s *BranchBoundSolver) candidateOrder(depth int, tracker *capacity.Tracker) []int {
	p := s.patients[depth]
	var candidates []int
	for _, ni := range s.matrix.EligibleNurses(depth) {
		if tracker.CanAssign(ni, p) {
			candidates = append(candidates, ni)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		li := tracker.NormalizedLoad(candidates[i])
		lj := tracker.NormalizedLoad(candidates[j])
		if li != lj {
			return li < lj
		}
		return candidates[i] < candidates[j]
	})
	return candidates
}

// expired 检查时间预算与外部取消
func (s *BranchBoundSolver) expired(ctx context.Context, st *searchState) bool {
	if st.stop.Load() {
		return true
	}
	if ctx != nil && ctx.Err() != nil {
		st.stop.Store(true)
		return true
	}
	if st.hasDeadline && time.Now().After(st.deadline) {
		if !st.stop.Swap(true) && s.logger != nil {
			s.logger.DeadlineReached(s.runID, s.cfg.Deadline, st.nodes.Load())
		}
		return true
	}
	return false
}

// greedy 贪心构造初始可行解
// 患者按既定顺序依次选取当前归一化负载最轻的合格护士
func (s *BranchBoundSolver) greedy() *Solution {
	tracker := capacity.NewTracker(s.nurses, s.ivLoadLimit)
	current := make([]int, len(s.patients))
	assigned := 0

	for pi, p := range s.patients {
		current[pi] = -1
		bestIdx := -1
		bestLoad := math.Inf(1)
		for _, ni := range s.matrix.EligibleNurses(pi) {
			if !tracker.CanAssign(ni, p) {
				continue
			}
			load := tracker.NormalizedLoad(ni)
			if load < bestLoad {
				bestLoad = load
				bestIdx = ni
			}
		}
		if bestIdx >= 0 && tracker.Assign(bestIdx, p) {
			current[pi] = bestIdx
			assigned++
		}
	}

	return &Solution{
		AssignedNurse: current,
		Assigned:      assigned,
		Cost:          s.evaluator.Cost(tracker, s.patients, current),
	}
}

// emptySolution 构造全部未分配的方案
func emptySolution(patientCount int) *Solution {
	current := make([]int, patientCount)
	for i := range current {
		current[i] = -1
	}
	return &Solution{AssignedNurse: current, Assigned: 0, Cost: 0}
}
