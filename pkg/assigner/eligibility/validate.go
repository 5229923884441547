package eligibility

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/paiban/paihu/pkg/errors"
	"github.com/paiban/paihu/pkg/model"
)

var validate = validator.New()

// ValidateInput 在构建资格矩阵前校验输入
// 检查项：
//   - 结构字段（必填、下限）由 validator 标签驱动
//   - 标识符在各自列表内不得重复
//   - 技能等级/病情权重必须落在配置的量表范围内
//   - 给药途径必须是已声明的枚举值
//
// 返回 nil 表示通过；否则返回聚合了全部问题的 ValidationErrors
func ValidateInput(nurses []*model.Nurse, patients []*model.Patient, rules Rules) *errors.ValidationErrors {
	ve := &errors.ValidationErrors{}

	seenNurse := make(map[string]bool, len(nurses))
	for i, n := range nurses {
		field := fmt.Sprintf("nurses[%d]", i)
		if n == nil {
			ve.Add(field, "不能为空")
			continue
		}
		if err := validate.Struct(n); err != nil {
			if fes, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range fes {
					ve.Add(fmt.Sprintf("%s.%s", field, fe.Field()), fmt.Sprintf("不满足约束 '%s'", fe.Tag()))
				}
			} else {
				ve.Add(field, err.Error())
			}
		}
		if n.ID != "" {
			if seenNurse[n.ID] {
				ve.Add(field+".id", fmt.Sprintf("护士标识 '%s' 重复", n.ID))
			}
			seenNurse[n.ID] = true
		}
		if n.SkillLevel > rules.SkillScaleMax {
			ve.Add(field+".skill_level",
				fmt.Sprintf("技能等级 %d 超出量表范围 [1, %d]", n.SkillLevel, rules.SkillScaleMax))
		}
	}

	seenPatient := make(map[string]bool, len(patients))
	for i, p := range patients {
		field := fmt.Sprintf("patients[%d]", i)
		if p == nil {
			ve.Add(field, "不能为空")
			continue
		}
		if err := validate.Struct(p); err != nil {
			if fes, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range fes {
					ve.Add(fmt.Sprintf("%s.%s", field, fe.Field()), fmt.Sprintf("不满足约束 '%s'", fe.Tag()))
				}
			} else {
				ve.Add(field, err.Error())
			}
		}
		if p.ID != "" {
			if seenPatient[p.ID] {
				ve.Add(field+".id", fmt.Sprintf("患者标识 '%s' 重复", p.ID))
			}
			seenPatient[p.ID] = true
		}
		if p.Acuity > rules.AcuityScaleMax {
			ve.Add(field+".acuity",
				fmt.Sprintf("病情权重 %d 超出量表范围 [1, %d]", p.Acuity, rules.AcuityScaleMax))
		}
		if p.TreatmentRoute != "" && !p.TreatmentRoute.IsValid() {
			ve.Add(field+".treatment_route",
				fmt.Sprintf("未知的给药途径 '%s'", p.TreatmentRoute))
		}
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}
