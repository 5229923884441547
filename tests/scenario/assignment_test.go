// Package scenario 端到端场景测试
// 用接近真实班次的输入验证分配引擎的整体行为
package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/paiban/paihu/pkg/assigner"
	"github.com/paiban/paihu/pkg/model"
)

// bmtShift 构造一个典型的BMT病区班次：
// 4名护士（两名有静脉化疗资质），10名患者（权重混合，含发疱性药物与延续护理）
func bmtShift() ([]*model.Nurse, []*model.Patient) {
	nurses := []*model.Nurse{
		{ID: "N001", Name: "张护士", SkillLevel: 3, IVChemoCertified: true, MaxPatients: 3},
		{ID: "N002", Name: "李护士", SkillLevel: 2, IVChemoCertified: true, MaxPatients: 3},
		{ID: "N003", Name: "王护士", SkillLevel: 2, IVChemoCertified: false, MaxPatients: 3},
		{ID: "N004", Name: "赵护士", SkillLevel: 1, IVChemoCertified: false, MaxPatients: 3},
	}
	patients := []*model.Patient{
		{ID: "P001", Initials: "A.B.", Acuity: 9, TreatmentRoute: model.RouteIV, Vesicant: true},
		{ID: "P002", Initials: "C.D.", Acuity: 7, TreatmentRoute: model.RouteIV},
		{ID: "P003", Initials: "E.F.", Acuity: 6, TreatmentRoute: model.RouteOral, LastNurseID: "N003"},
		{ID: "P004", Initials: "G.H.", Acuity: 5, TreatmentRoute: model.RouteIV},
		{ID: "P005", Initials: "I.J.", Acuity: 4, TreatmentRoute: model.RouteOral},
		{ID: "P006", Initials: "K.L.", Acuity: 3, TreatmentRoute: model.RouteOral, LastNurseID: "N004"},
		{ID: "P007", Initials: "M.N.", Acuity: 3, TreatmentRoute: model.RouteOral},
		{ID: "P008", Initials: "O.P.", Acuity: 2, TreatmentRoute: model.RouteOral},
		{ID: "P009", Initials: "Q.R.", Acuity: 2, TreatmentRoute: model.RouteOral},
		{ID: "P010", Initials: "S.T.", Acuity: 1, TreatmentRoute: model.RouteOral},
	}
	return nurses, patients
}

func TestScenario_TypicalShift(t *testing.T) {
	nurses, patients := bmtShift()
	engine := assigner.New(assigner.DefaultOptions())

	report, err := engine.Optimize(context.Background(), nurses, patients)
	if err != nil {
		t.Fatalf("典型班次不应报错: %v", err)
	}

	// 总容量12 >= 10名患者，且每个患者都有合格护士，应全部安置
	if len(report.Unassigned) != 0 {
		t.Errorf("典型班次应全部安置, 未分配: %v", report.Unassigned)
	}
	if len(report.Assignments) != len(patients) {
		t.Errorf("分配数错误: 期望%d, 实际%d", len(patients), len(report.Assignments))
	}

	assertHardConstraints(t, nurses, patients, report)

	// 均衡统计应随报告返回
	if report.Balance == nil || len(report.Balance.NurseStats) != len(nurses) {
		t.Error("均衡统计缺失或不完整")
	}
}

func TestScenario_CertifiedNursesSaturated(t *testing.T) {
	// 只有1名有资质护士（容量2），却有3名静脉化疗患者
	nurses := []*model.Nurse{
		{ID: "N001", Name: "张护士", SkillLevel: 3, IVChemoCertified: true, MaxPatients: 2},
		{ID: "N002", Name: "王护士", SkillLevel: 3, IVChemoCertified: false, MaxPatients: 4},
	}
	patients := []*model.Patient{
		{ID: "P001", Acuity: 6, TreatmentRoute: model.RouteIV},
		{ID: "P002", Acuity: 5, TreatmentRoute: model.RouteIV},
		{ID: "P003", Acuity: 4, TreatmentRoute: model.RouteIV},
		{ID: "P004", Acuity: 3, TreatmentRoute: model.RouteOral},
	}

	engine := assigner.New(assigner.DefaultOptions())
	report, err := engine.Optimize(context.Background(), nurses, patients)
	if err != nil {
		t.Fatal(err)
	}

	// 2个静脉名额，第3名静脉患者必须留空且原因是容量耗尽
	if len(report.Unassigned) != 1 {
		t.Fatalf("应恰有1名患者留空, 实际%d", len(report.Unassigned))
	}
	if report.Unassigned[0].Reason != assigner.ReasonAllEligibleAtCapacity {
		t.Errorf("原因码应为容量耗尽, 实际%s", report.Unassigned[0].Reason)
	}
	// 口服患者不受影响
	if _, ok := report.Assignments["P004"]; !ok {
		t.Error("口服患者应被安置")
	}

	assertHardConstraints(t, nurses, patients, report)
}

func TestScenario_ContinuityPreferred(t *testing.T) {
	// 两名同质护士，患者P001上个班次由N002负责
	// 覆盖与均衡完全对称时，连续性应决定归属
	nurses := []*model.Nurse{
		{ID: "N001", Name: "张护士", SkillLevel: 3, MaxPatients: 2},
		{ID: "N002", Name: "李护士", SkillLevel: 3, MaxPatients: 2},
	}
	patients := []*model.Patient{
		{ID: "P001", Acuity: 5, TreatmentRoute: model.RouteOral, LastNurseID: "N002"},
	}

	engine := assigner.New(assigner.DefaultOptions())
	report, err := engine.Optimize(context.Background(), nurses, patients)
	if err != nil {
		t.Fatal(err)
	}

	if got := report.Assignments["P001"]; got != "N002" {
		t.Errorf("连续性应让P001沿用N002, 实际%s", got)
	}
}

func TestScenario_DeadlineDegradation(t *testing.T) {
	nurses, patients := bmtShift()
	engine := assigner.New(assigner.DefaultOptions())

	report, err := engine.OptimizeWithDeadline(context.Background(), nurses, patients, 0)
	if err != nil {
		t.Fatalf("零预算不应报错: %v", err)
	}

	if report.Status != assigner.StatusBestEffort {
		t.Errorf("零预算状态应为best_effort, 实际%s", report.Status)
	}
	// 贪心种子在容量充足时也能全部安置
	if len(report.Assignments) == 0 {
		t.Error("零预算也应返回非空的贪心可行解")
	}
	assertHardConstraints(t, nurses, patients, report)
}

func TestScenario_ParallelMatchesSerial(t *testing.T) {
	nurses, patients := bmtShift()

	serial := assigner.New(assigner.DefaultOptions())
	serialReport, err := serial.Optimize(context.Background(), nurses, patients)
	if err != nil {
		t.Fatal(err)
	}

	opts := assigner.DefaultOptions()
	opts.Solver.Workers = 4
	parallel := assigner.New(opts)

	for i := 0; i < 3; i++ {
		parallelReport, err := parallel.Optimize(context.Background(), nurses, patients)
		if err != nil {
			t.Fatal(err)
		}
		for pid, nid := range serialReport.Assignments {
			if parallelReport.Assignments[pid] != nid {
				t.Fatalf("并行结果与串行不一致: 患者%s %s vs %s",
					pid, nid, parallelReport.Assignments[pid])
			}
		}
	}
}

func TestScenario_RerunIdempotent(t *testing.T) {
	nurses, patients := bmtShift()
	engine := assigner.New(assigner.DefaultOptions())

	first, err := engine.Optimize(context.Background(), nurses, patients)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Optimize(context.Background(), nurses, patients)
	if err != nil {
		t.Fatal(err)
	}

	for pid, nid := range first.Assignments {
		if second.Assignments[pid] != nid {
			t.Errorf("重跑结果不一致: 患者%s %s vs %s", pid, nid, second.Assignments[pid])
		}
	}
}

func TestScenario_MoreNursesNeverHurt(t *testing.T) {
	// 人手紧张的班次：容量2对患者4
	nurses := []*model.Nurse{
		{ID: "N001", Name: "张护士", SkillLevel: 3, IVChemoCertified: true, MaxPatients: 2},
	}
	patients := []*model.Patient{
		{ID: "P001", Acuity: 7, TreatmentRoute: model.RouteIV},
		{ID: "P002", Acuity: 5, TreatmentRoute: model.RouteOral},
		{ID: "P003", Acuity: 4, TreatmentRoute: model.RouteOral},
		{ID: "P004", Acuity: 2, TreatmentRoute: model.RouteOral},
	}

	engine := assigner.New(assigner.DefaultOptions())
	before, err := engine.Optimize(context.Background(), nurses, patients)
	if err != nil {
		t.Fatal(err)
	}

	// 增加护士后未分配数不得增加
	augmented := append([]*model.Nurse{}, nurses...)
	augmented = append(augmented, &model.Nurse{
		ID: "N002", Name: "李护士", SkillLevel: 2, IVChemoCertified: false, MaxPatients: 2,
	})
	after, err := engine.Optimize(context.Background(), augmented, patients)
	if err != nil {
		t.Fatal(err)
	}

	if len(after.Unassigned) > len(before.Unassigned) {
		t.Errorf("增加护士后未分配数不应增加: %d -> %d",
			len(before.Unassigned), len(after.Unassigned))
	}
	assertHardConstraints(t, augmented, patients, after)
}

func TestScenario_GenerousDeadlineCompletes(t *testing.T) {
	nurses, patients := bmtShift()

	opts := assigner.DefaultOptions()
	opts.Solver.Deadline = 10 * time.Second

	start := time.Now()
	report, err := assigner.New(opts).Optimize(context.Background(), nurses, patients)
	if err != nil {
		t.Fatal(err)
	}

	// 该规模实例应远早于预算完成并标记为最优
	if report.Status != assigner.StatusOptimal {
		t.Errorf("充足预算下应标记最优, 实际%s", report.Status)
	}
	if elapsed := time.Since(start); elapsed > opts.Solver.Deadline {
		t.Errorf("求解耗时超出预算: %v", elapsed)
	}
}

// assertHardConstraints 校验报告不违反任何硬约束
func assertHardConstraints(t *testing.T, nurses []*model.Nurse, patients []*model.Patient, report *assigner.Report) {
	t.Helper()

	rules := assigner.DefaultOptions().Rules
	ivLimit := assigner.DefaultOptions().IVLoadLimit

	nurseByID := make(map[string]*model.Nurse)
	for _, n := range nurses {
		nurseByID[n.ID] = n
	}
	patientByID := make(map[string]*model.Patient)
	for _, p := range patients {
		patientByID[p.ID] = p
	}

	counts := make(map[string]int)
	ivCounts := make(map[string]int)
	for pid, nid := range report.Assignments {
		n := nurseByID[nid]
		p := patientByID[pid]
		if n == nil || p == nil {
			t.Fatalf("报告中出现未知标识: 患者%s 护士%s", pid, nid)
		}
		counts[nid]++

		if p.IsIV() {
			ivCounts[nid]++
			if !n.CanTakeIV() {
				t.Errorf("患者%s: 静脉化疗分配给无资质护士%s", pid, nid)
			}
		}
		if n.SkillLevel < rules.RequiredSkill(p.Acuity) {
			t.Errorf("患者%s: 护士%s技能不足", pid, nid)
		}
		if p.Vesicant && n.SkillLevel < rules.VesicantMinSkill {
			t.Errorf("患者%s: 发疱性药物分配给技能不足的护士%s", pid, nid)
		}
	}

	for nid, c := range counts {
		if c > nurseByID[nid].MaxPatients {
			t.Errorf("护士%s超容: %d > %d", nid, c, nurseByID[nid].MaxPatients)
		}
	}
	for nid, c := range ivCounts {
		if ivLimit > 0 && c > ivLimit {
			t.Errorf("护士%s静脉化疗负载超限: %d > %d", nid, c, ivLimit)
		}
	}
}
