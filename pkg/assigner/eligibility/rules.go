// Package eligibility 提供护士-患者资格过滤
package eligibility

import (
	"sort"

	"github.com/paiban/paihu/pkg/errors"
)

// SkillThreshold 病情权重到最低技能等级的映射规则
// 规则按 MinAcuity 升序排列，取满足 acuity >= MinAcuity 的最后一条
type SkillThreshold struct {
	MinAcuity int `yaml:"min_acuity" json:"min_acuity"`
	MinSkill  int `yaml:"min_skill" json:"min_skill"`
}

// Rules 资格规则配置
// 阈值表是运营可调的配置，而非硬编码常量
type Rules struct {
	// SkillThresholds 病情权重阈值表（必须随 MinAcuity 单调不减）
	SkillThresholds []SkillThreshold `yaml:"skill_thresholds" json:"skill_thresholds"`

	// VesicantMinSkill 发疱性药物患者要求的最低技能等级
	VesicantMinSkill int `yaml:"vesicant_min_skill" json:"vesicant_min_skill"`

	// SkillScaleMax 技能等级量表上限
	SkillScaleMax int `yaml:"skill_scale_max" json:"skill_scale_max"`

	// AcuityScaleMax 病情权重量表上限
	AcuityScaleMax int `yaml:"acuity_scale_max" json:"acuity_scale_max"`
}

// DefaultRules 返回默认资格规则
// 默认阈值来自BMT病区的运营经验：高权重患者需要资深护士
func DefaultRules() Rules {
	return Rules{
		SkillThresholds: []SkillThreshold{
			{MinAcuity: 1, MinSkill: 1},
			{MinAcuity: 5, MinSkill: 2},
			{MinAcuity: 8, MinSkill: 3},
		},
		VesicantMinSkill: 2,
		SkillScaleMax:    5,
		AcuityScaleMax:   10,
	}
}

// RequiredSkill 计算某病情权重要求的最低技能等级
func (r Rules) RequiredSkill(acuity int) int {
	required := 1
	for _, t := range r.SkillThresholds {
		if acuity >= t.MinAcuity {
			required = t.MinSkill
		}
	}
	return required
}

// Validate 校验规则自身的一致性
func (r Rules) Validate() error {
	if r.SkillScaleMax < 1 {
		return errors.InvalidInput("skill_scale_max", "必须大于等于1")
	}
	if r.AcuityScaleMax < 1 {
		return errors.InvalidInput("acuity_scale_max", "必须大于等于1")
	}
	if len(r.SkillThresholds) == 0 {
		return errors.InvalidInput("skill_thresholds", "阈值表不能为空")
	}
	if !sort.SliceIsSorted(r.SkillThresholds, func(i, j int) bool {
		return r.SkillThresholds[i].MinAcuity < r.SkillThresholds[j].MinAcuity
	}) {
		return errors.InvalidInput("skill_thresholds", "必须按 min_acuity 升序排列")
	}
	prev := 0
	for _, t := range r.SkillThresholds {
		if t.MinSkill < prev {
			// 阈值必须单调：权重越高，要求的技能等级不能降低
			return errors.InvalidInput("skill_thresholds", "min_skill 必须随 min_acuity 单调不减")
		}
		if t.MinSkill > r.SkillScaleMax {
			return errors.InvalidInput("skill_thresholds", "min_skill 超出技能量表上限")
		}
		prev = t.MinSkill
	}
	return nil
}
