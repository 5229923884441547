package eligibility

import (
	"github.com/paiban/paihu/pkg/model"
)

// Matrix 资格矩阵
// 对每个 (护士, 患者) 组合记录是否允许分配
// 每次运行重新推导，不跨运行保存
type Matrix struct {
	nurses   []*model.Nurse
	patients []*model.Patient
	eligible [][]bool // [patientIdx][nurseIdx]
}

// BuildMatrix 构建资格矩阵，O(N·M)
// 纯函数：不修改输入，不产生副作用
// 规则：
//  1. 静脉化疗患者只能分配给有资质的护士
//  2. 护士技能等级必须达到患者病情权重对应的阈值
//  3. 发疱性药物患者要求额外的最低技能等级
func BuildMatrix(nurses []*model.Nurse, patients []*model.Patient, rules Rules) *Matrix {
	m := &Matrix{
		nurses:   nurses,
		patients: patients,
		eligible: make([][]bool, len(patients)),
	}

	for pi, p := range patients {
		row := make([]bool, len(nurses))
		required := rules.RequiredSkill(p.Acuity)
		if p.Vesicant && rules.VesicantMinSkill > required {
			required = rules.VesicantMinSkill
		}
		for ni, n := range nurses {
			if p.TreatmentRoute.RequiresCertification() && !n.CanTakeIV() {
				continue
			}
			if n.SkillLevel < required {
				continue
			}
			row[ni] = true
		}
		m.eligible[pi] = row
	}

	return m
}

// Eligible 检查某个 (护士, 患者) 组合是否合格
func (m *Matrix) Eligible(patientIdx, nurseIdx int) bool {
	return m.eligible[patientIdx][nurseIdx]
}

// EligibleNurses 返回某患者的所有合格护士下标（按护士下标升序）
func (m *Matrix) EligibleNurses(patientIdx int) []int {
	var result []int
	for ni, ok := range m.eligible[patientIdx] {
		if ok {
			result = append(result, ni)
		}
	}
	return result
}

// HasAnyEligible 检查某患者是否存在至少一个合格护士
func (m *Matrix) HasAnyEligible(patientIdx int) bool {
	for _, ok := range m.eligible[patientIdx] {
		if ok {
			return true
		}
	}
	return false
}

// NurseCount 返回护士数量
func (m *Matrix) NurseCount() int { return len(m.nurses) }

// PatientCount 返回患者数量
func (m *Matrix) PatientCount() int { return len(m.patients) }
