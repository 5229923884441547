// Package capacity 提供护士容量跟踪
package capacity

import (
	"github.com/paiban/paihu/pkg/model"
)

// Tracker 容量跟踪器
// 在搜索过程中记录每个护士的剩余可分配容量，支持廉价回退
// 不做内部加锁：求解器按分支复制（Clone），并行分支各持一份
type Tracker struct {
	nurses        []*model.Nurse
	remaining     []int // 剩余患者名额
	ivRemaining   []int // 剩余静脉化疗名额（-1 表示不限制）
	assignedCount []int
	acuityLoad    []int
}

// NewTracker 创建容量跟踪器
// ivLoadLimit 为每个有资质护士可同时负责的静脉化疗患者上限，<=0 表示不限制
func NewTracker(nurses []*model.Nurse, ivLoadLimit int) *Tracker {
	t := &Tracker{
		nurses:        nurses,
		remaining:     make([]int, len(nurses)),
		ivRemaining:   make([]int, len(nurses)),
		assignedCount: make([]int, len(nurses)),
		acuityLoad:    make([]int, len(nurses)),
	}
	for i, n := range nurses {
		t.remaining[i] = n.MaxPatients
		if ivLoadLimit > 0 && n.CanTakeIV() {
			t.ivRemaining[i] = ivLoadLimit
		} else {
			t.ivRemaining[i] = -1
		}
	}
	return t
}

// Remaining 返回护士的剩余容量，永不为负
func (t *Tracker) Remaining(nurseIdx int) int {
	return t.remaining[nurseIdx]
}

// CanAssign 检查是否可以把患者分配给护士而不超容量
func (t *Tracker) CanAssign(nurseIdx int, p *model.Patient) bool {
	if t.remaining[nurseIdx] <= 0 {
		return false
	}
	if p.IsIV() && t.ivRemaining[nurseIdx] == 0 {
		return false
	}
	return true
}

// Assign 试探性地把患者分配给护士
// 超出容量时返回 false 且不改变任何状态
func (t *Tracker) Assign(nurseIdx int, p *model.Patient) bool {
	if !t.CanAssign(nurseIdx, p) {
		return false
	}
	t.remaining[nurseIdx]--
	if p.IsIV() && t.ivRemaining[nurseIdx] > 0 {
		t.ivRemaining[nurseIdx]--
	}
	t.assignedCount[nurseIdx]++
	t.acuityLoad[nurseIdx] += p.Acuity
	return true
}

// Undo 撤销一次试探分配
// 与 Assign 必须严格配对使用，多余的撤销会被忽略以防状态损坏
func (t *Tracker) Undo(nurseIdx int, p *model.Patient) {
	if t.assignedCount[nurseIdx] <= 0 {
		return
	}
	t.remaining[nurseIdx]++
	if p.IsIV() && t.ivRemaining[nurseIdx] >= 0 {
		t.ivRemaining[nurseIdx]++
	}
	t.assignedCount[nurseIdx]--
	t.acuityLoad[nurseIdx] -= p.Acuity
}

// AssignedCount 返回护士当前已分配的患者数
func (t *Tracker) AssignedCount(nurseIdx int) int {
	return t.assignedCount[nurseIdx]
}

// AcuityLoad 返回护士当前的病情权重负载
func (t *Tracker) AcuityLoad(nurseIdx int) int {
	return t.acuityLoad[nurseIdx]
}

// NormalizedLoad 返回按容量归一化的负载
func (t *Tracker) NormalizedLoad(nurseIdx int) float64 {
	cap := t.nurses[nurseIdx].MaxPatients
	if cap <= 0 {
		return 0
	}
	return float64(t.acuityLoad[nurseIdx]) / float64(cap)
}

// NurseCount 返回护士数量
func (t *Tracker) NurseCount() int {
	return len(t.nurses)
}

// Clone 深拷贝跟踪器（按分支复制用）
func (t *Tracker) Clone() *Tracker {
	clone := &Tracker{
		nurses:        t.nurses,
		remaining:     make([]int, len(t.remaining)),
		ivRemaining:   make([]int, len(t.ivRemaining)),
		assignedCount: make([]int, len(t.assignedCount)),
		acuityLoad:    make([]int, len(t.acuityLoad)),
	}
	copy(clone.remaining, t.remaining)
	copy(clone.ivRemaining, t.ivRemaining)
	copy(clone.assignedCount, t.assignedCount)
	copy(clone.acuityLoad, t.acuityLoad)
	return clone
}
