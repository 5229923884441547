// Package model 定义分配引擎的核心数据模型
package model

// Nurse 护士
// 由外部输入构造，仅在单次分配运行内有效，运行结束即丢弃
type Nurse struct {
	ID               string `json:"id" validate:"required"`
	Name             string `json:"name"`
	SkillLevel       int    `json:"skill_level" validate:"gte=1"`
	IVChemoCertified bool   `json:"iv_chemo_certified"`
	MaxPatients      int    `json:"max_patients" validate:"gte=1"`
}

// CanTakeIV 检查护士是否可以接收静脉化疗患者
func (n *Nurse) CanTakeIV() bool {
	return n.IVChemoCertified
}

// TotalCapacity 计算护士列表的总容量
func TotalCapacity(nurses []*Nurse) int {
	total := 0
	for _, n := range nurses {
		if n.MaxPatients > 0 {
			total += n.MaxPatients
		}
	}
	return total
}
