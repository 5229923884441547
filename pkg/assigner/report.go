package assigner

import (
	"time"

	"github.com/paiban/paihu/pkg/assigner/eligibility"
	"github.com/paiban/paihu/pkg/assigner/solver"
	"github.com/paiban/paihu/pkg/model"
	"github.com/paiban/paihu/pkg/stats"
)

// Status 分配结果状态
type Status string

const (
	// StatusOptimal 搜索在预算内完整穷尽，结果可证最优
	StatusOptimal Status = "optimal"

	// StatusBestEffort 到达时间预算，返回当前最优的尽力而为结果
	StatusBestEffort Status = "best_effort"
)

// UnassignedReason 患者未分配原因
type UnassignedReason string

const (
	// ReasonNoEligibleNurse 不存在任何合格护士
	ReasonNoEligibleNurse UnassignedReason = "no_eligible_nurse"

	// ReasonAllEligibleAtCapacity 合格护士都已满容量
	ReasonAllEligibleAtCapacity UnassignedReason = "all_eligible_at_capacity"
)

// UnassignedPatient 未分配患者及原因
type UnassignedPatient struct {
	PatientID string           `json:"patient_id"`
	Initials  string           `json:"initials,omitempty"`
	Reason    UnassignedReason `json:"reason"`
}

// NurseLoad 护士负载汇总
type NurseLoad struct {
	NurseID       string   `json:"nurse_id"`
	NurseName     string   `json:"nurse_name"`
	AssignedCount int      `json:"assigned_count"`
	TotalAcuity   int      `json:"total_acuity"`
	IVCount       int      `json:"iv_count"`
	PatientIDs    []string `json:"patient_ids,omitempty"`
}

// Report 对外的分配报告
type Report struct {
	RunID         string                `json:"run_id"`
	Status        Status                `json:"status"`
	Assignments   map[string]string     `json:"assignments"` // 患者ID -> 护士ID
	Unassigned    []UnassignedPatient   `json:"unassigned"`
	NurseLoads    map[string]*NurseLoad `json:"nurse_loads"`
	QualityScore  float64               `json:"quality_score"` // 目标函数成本，越低越均衡
	Balance       *stats.BalanceMetrics `json:"balance"`
	NodesExplored int64                 `json:"nodes_explored"`
	Duration      time.Duration         `json:"duration"`
	GeneratedAt   time.Time             `json:"generated_at"`
}

// assembleReport 把求解器内部结果转换为对外报告
// 纯转换，无副作用
func assembleReport(runID string, nurses []*model.Nurse, patients []*model.Patient,
	matrix *eligibility.Matrix, result *solver.Result) *Report {

	report := &Report{
		RunID:         runID,
		Status:        StatusBestEffort,
		Assignments:   make(map[string]string, len(patients)),
		Unassigned:    make([]UnassignedPatient, 0),
		NurseLoads:    make(map[string]*NurseLoad, len(nurses)),
		QualityScore:  result.Best.Cost,
		NodesExplored: result.Nodes,
		Duration:      result.Duration,
		GeneratedAt:   time.Now(),
	}
	if result.Optimal {
		report.Status = StatusOptimal
	}

	for _, n := range nurses {
		report.NurseLoads[n.ID] = &NurseLoad{
			NurseID:   n.ID,
			NurseName: n.Name,
		}
	}

	for pi, p := range patients {
		ni := result.Best.AssignedNurse[pi]
		if ni < 0 {
			report.Unassigned = append(report.Unassigned, UnassignedPatient{
				PatientID: p.ID,
				Initials:  p.Initials,
				Reason:    unassignedReason(matrix, pi),
			})
			continue
		}

		nurse := nurses[ni]
		report.Assignments[p.ID] = nurse.ID

		load := report.NurseLoads[nurse.ID]
		load.AssignedCount++
		load.TotalAcuity += p.Acuity
		load.PatientIDs = append(load.PatientIDs, p.ID)
		if p.IsIV() {
			load.IVCount++
		}
	}

	report.Balance = stats.NewBalanceAnalyzer().Analyze(balanceInput(nurses, report.NurseLoads))

	return report
}

// unassignedReason 推导患者未分配的原因码
func unassignedReason(matrix *eligibility.Matrix, patientIdx int) UnassignedReason {
	if !matrix.HasAnyEligible(patientIdx) {
		return ReasonNoEligibleNurse
	}
	return ReasonAllEligibleAtCapacity
}

// balanceInput 把护士负载转换为统计分析输入
func balanceInput(nurses []*model.Nurse, loads map[string]*NurseLoad) []*stats.NurseLoadInfo {
	result := make([]*stats.NurseLoadInfo, 0, len(nurses))
	for _, n := range nurses {
		load := loads[n.ID]
		result = append(result, &stats.NurseLoadInfo{
			NurseID:       n.ID,
			NurseName:     n.Name,
			Capacity:      n.MaxPatients,
			AssignedCount: load.AssignedCount,
			TotalAcuity:   load.TotalAcuity,
			IVCount:       load.IVCount,
		})
	}
	return result
}
