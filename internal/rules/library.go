// Package rules 规则目录
// 描述分配引擎支持的全部可配置规则及其参数，供运营端查询和校验取值范围
package rules

// RuleParam 规则参数定义
type RuleParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, float, string, bool, array
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
}

// RuleDefinition 规则定义
type RuleDefinition struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Type        string      `json:"type"` // hard 硬约束, soft 软目标
	Description string      `json:"description"`
	Params      []RuleParam `json:"params"`
}

// LibraryResponse 规则目录响应
type LibraryResponse struct {
	Library []RuleDefinition `json:"library"`
}

// GetLibrary 获取完整的规则目录
func GetLibrary() []RuleDefinition {
	return []RuleDefinition{
		// =====================================================
		// 硬约束
		// =====================================================
		{
			Name:        "iv_chemo_certification",
			DisplayName: "静脉化疗资质",
			Type:        "hard",
			Description: "静脉化疗患者只能分配给持有静脉化疗资质的护士，无论其技能等级多高。",
			Params:      []RuleParam{},
		},
		{
			Name:        "skill_threshold",
			DisplayName: "技能等级阈值",
			Type:        "hard",
			Description: "护士技能等级必须达到患者病情权重对应的最低阈值。阈值表按病情权重单调不减，运营可调整而无需改代码。",
			Params: []RuleParam{
				{Name: "skill_thresholds", Type: "array", Description: "病情权重到最低技能等级的映射表", Default: "[{1:1},{5:2},{8:3}]"},
			},
		},
		{
			Name:        "vesicant_min_skill",
			DisplayName: "发疱性药物经验要求",
			Type:        "hard",
			Description: "使用发疱性药物的患者要求护士具备额外的最低技能等级。",
			Params: []RuleParam{
				{Name: "min_skill", Type: "int", Description: "最低技能等级", Default: "2", Min: "1", Max: "5"},
			},
		},
		{
			Name:        "max_patients",
			DisplayName: "护士容量上限",
			Type:        "hard",
			Description: "每个护士同时负责的患者数不得超过其容量，搜索过程中任何超容分配都会被拒绝。",
			Params: []RuleParam{
				{Name: "max_patients", Type: "int", Description: "单个护士的患者数上限", Min: "1"},
			},
		},
		{
			Name:        "iv_load_limit",
			DisplayName: "静脉化疗负载上限",
			Type:        "hard",
			Description: "限制每个有资质护士同时负责的静脉化疗患者数，防止高强度操作过度集中。",
			Params: []RuleParam{
				{Name: "iv_load_limit", Type: "int", Description: "静脉化疗患者数上限", Default: "2", Min: "1", Max: "4"},
			},
		},
		{
			Name:        "unit_capacity",
			DisplayName: "病区容量上限",
			Type:        "hard",
			Description: "单个班次可接收的患者总数上限，超出直接拒绝输入。",
			Params: []RuleParam{
				{Name: "max_patients", Type: "int", Description: "病区患者总数上限", Default: "20", Min: "1", Max: "40"},
			},
		},

		// =====================================================
		// 软目标
		// =====================================================
		{
			Name:        "workload_balance",
			DisplayName: "负载均衡",
			Type:        "soft",
			Description: "最小化各护士按容量归一化后的病情权重负载方差，防止高权重患者集中在个别护士。可行性永远优先于该目标。",
			Params: []RuleParam{
				{Name: "balance_weight", Type: "float", Description: "均衡项权重", Default: "1.0", Min: "0", Max: "10"},
			},
		},
		{
			Name:        "caregiver_continuity",
			DisplayName: "护理连续性",
			Type:        "soft",
			Description: "尽量让患者沿用上个班次的护士，降低交接成本。",
			Params: []RuleParam{
				{Name: "continuity_weight", Type: "float", Description: "连续性项权重", Default: "0.3", Min: "0", Max: "10"},
			},
		},
	}
}

// FindRule 按名称查找规则定义
func FindRule(name string) *RuleDefinition {
	for _, r := range GetLibrary() {
		if r.Name == name {
			return &r
		}
	}
	return nil
}
