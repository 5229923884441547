// Package assigner 提供护士-患者分配引擎的统一入口
//
// 单次分配运行是同步的纯计算：入口进、报告出，
// 运行之间不共享任何可变状态，可在独立协程中并发调用
package assigner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/paihu/pkg/assigner/eligibility"
	"github.com/paiban/paihu/pkg/assigner/objective"
	"github.com/paiban/paihu/pkg/assigner/solver"
	"github.com/paiban/paihu/pkg/errors"
	"github.com/paiban/paihu/pkg/logger"
	"github.com/paiban/paihu/pkg/model"
)

// Options 分配引擎选项
type Options struct {
	// Rules 资格规则（阈值表等运营可调配置）
	Rules eligibility.Rules `yaml:"rules" json:"rules"`

	// Weights 目标函数权重
	Weights objective.Weights `yaml:"weights" json:"weights"`

	// Solver 求解器配置（时间预算、并行度）
	Solver solver.Config `yaml:"solver" json:"solver"`

	// MaxPatients 病区单班患者数上限，<=0 表示不限制
	MaxPatients int `yaml:"max_patients" json:"max_patients"`

	// IVLoadLimit 每个有资质护士可同时负责的静脉化疗患者上限，<=0 表示不限制
	IVLoadLimit int `yaml:"iv_load_limit" json:"iv_load_limit"`
}

// DefaultOptions 返回默认选项
// 默认值来自BMT病区的运营上限：单班最多20名患者，
// 每个有资质护士最多同时负责2名静脉化疗患者
func DefaultOptions() Options {
	return Options{
		Rules:       eligibility.DefaultRules(),
		Weights:     objective.DefaultWeights(),
		Solver:      solver.DefaultConfig(),
		MaxPatients: 20,
		IVLoadLimit: 2,
	}
}

// Assigner 分配引擎
type Assigner struct {
	opts   Options
	logger *logger.AssignerLogger
}

// New 创建分配引擎
func New(opts Options) *Assigner {
	return &Assigner{
		opts:   opts,
		logger: logger.NewAssignerLogger(),
	}
}

// Optimize 执行一次分配优化
//
// 调用方要么得到一份完整的 Report，要么得到以下两类错误之一：
//   - ValidationError (CodeValidationFail / CodeInvalidInput)：输入格式或取值非法
//   - InfeasibleInputError (CodeInfeasibleInput)：输入结构性无解（如有患者但无护士）
//
// 个别患者无法分配不是错误，会在 Report.Unassigned 中带原因码返回
func (a *Assigner) Optimize(ctx context.Context, nurses []*model.Nurse, patients []*model.Patient) (*Report, error) {
	runID := uuid.New().String()
	a.logger.StartRun(runID, len(nurses), len(patients))

	if err := a.opts.Rules.Validate(); err != nil {
		return nil, err
	}

	if ve := eligibility.ValidateInput(nurses, patients, a.opts.Rules); ve != nil {
		return nil, ve.ToAppError()
	}

	if a.opts.MaxPatients > 0 && len(patients) > a.opts.MaxPatients {
		ve := &errors.ValidationErrors{}
		ve.Add("patients", fmt.Sprintf("患者数 %d 超出病区上限 %d", len(patients), a.opts.MaxPatients))
		return nil, ve.ToAppError()
	}

	if len(patients) > 0 {
		if len(nurses) == 0 {
			return nil, errors.InfeasibleInput("有患者待分配但没有任何护士")
		}
		if model.TotalCapacity(nurses) == 0 {
			return nil, errors.InfeasibleInput("护士总容量为零")
		}
	}

	// 确定性排序：护士按标识升序，患者按病情权重降序、同权重按标识升序
	sortedNurses := sortNurses(nurses)
	sortedPatients := sortPatients(patients)

	matrix := eligibility.BuildMatrix(sortedNurses, sortedPatients, a.opts.Rules)
	evaluator := objective.NewEvaluator(sortedNurses, a.opts.Weights)

	bb := solver.New(matrix, evaluator, sortedNurses, sortedPatients, a.opts.IVLoadLimit, a.opts.Solver)
	bb.SetRunID(runID)
	result := bb.Solve(ctx)

	report := assembleReport(runID, sortedNurses, sortedPatients, matrix, result)
	a.logger.RunComplete(runID, result.Duration, string(report.Status), report.QualityScore)

	return report, nil
}

// OptimizeWithDeadline 以指定时间预算执行一次分配优化
// 覆盖选项中的求解器预算，其余配置不变
func (a *Assigner) OptimizeWithDeadline(ctx context.Context, nurses []*model.Nurse, patients []*model.Patient, deadline time.Duration) (*Report, error) {
	clone := *a
	clone.opts.Solver.Deadline = deadline
	return clone.Optimize(ctx, nurses, patients)
}

// sortNurses 复制并按标识升序排序护士
func sortNurses(nurses []*model.Nurse) []*model.Nurse {
	sorted := make([]*model.Nurse, len(nurses))
	copy(sorted, nurses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// sortPatients 复制并按病情权重降序排序患者（先放最难安置的）
func sortPatients(patients []*model.Patient) []*model.Patient {
	sorted := make([]*model.Patient, len(patients))
	copy(sorted, patients)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Acuity != sorted[j].Acuity {
			return sorted[i].Acuity > sorted[j].Acuity
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
