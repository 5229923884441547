package model

// TreatmentRoute 给药途径
type TreatmentRoute string

const (
	RouteOral TreatmentRoute = "oral" // 口服
	RouteIV   TreatmentRoute = "iv"   // 静脉化疗
)

// IsValid 检查给药途径是否合法
func (r TreatmentRoute) IsValid() bool {
	return r == RouteOral || r == RouteIV
}

// RequiresCertification 检查该途径是否要求静脉化疗资质
func (r TreatmentRoute) RequiresCertification() bool {
	return r == RouteIV
}

// Patient 患者
// 由外部输入构造，仅在单次分配运行内有效
type Patient struct {
	ID             string         `json:"id" validate:"required"`
	Initials       string         `json:"initials"`
	Acuity         int            `json:"acuity" validate:"gte=1"`
	TreatmentRoute TreatmentRoute `json:"treatment_route" validate:"required"`

	// Vesicant 是否使用发疱性药物（对护士经验有额外要求）
	Vesicant bool `json:"vesicant,omitempty"`

	// LastNurseID 上个班次负责该患者的护士（用于连续性加分，可为空）
	LastNurseID string `json:"last_nurse_id,omitempty"`
}

// IsIV 检查患者是否为静脉化疗
func (p *Patient) IsIV() bool {
	return p.TreatmentRoute == RouteIV
}

// TotalAcuity 计算患者列表的总病情权重
func TotalAcuity(patients []*Patient) int {
	total := 0
	for _, p := range patients {
		total += p.Acuity
	}
	return total
}
