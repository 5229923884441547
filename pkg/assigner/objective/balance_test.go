package objective

import (
	"math"
	"testing"

	"github.com/paiban/paihu/pkg/assigner/capacity"
	"github.com/paiban/paihu/pkg/model"
)

const eps = 1e-9

func TestEvaluator_BalancedIsCheaper(t *testing.T) {
	nurses := []*model.Nurse{
		{ID: "N001", SkillLevel: 3, MaxPatients: 4},
		{ID: "N002", SkillLevel: 3, MaxPatients: 4},
	}
	patients := []*model.Patient{
		{ID: "P001", Acuity: 5, TreatmentRoute: model.RouteOral},
		{ID: "P002", Acuity: 5, TreatmentRoute: model.RouteOral},
	}
	ev := NewEvaluator(nurses, DefaultWeights())

	// 方案一：两个患者压在同一护士
	skewed := capacity.NewTracker(nurses, 0)
	skewed.Assign(0, patients[0])
	skewed.Assign(0, patients[1])
	skewedCost := ev.Cost(skewed, patients, []int{0, 0})

	// 方案二：一人一个
	even := capacity.NewTracker(nurses, 0)
	even.Assign(0, patients[0])
	even.Assign(1, patients[1])
	evenCost := ev.Cost(even, patients, []int{0, 1})

	if evenCost >= skewedCost {
		t.Errorf("均衡方案成本应更低: 均衡=%f, 倾斜=%f", evenCost, skewedCost)
	}
	// 相同归一化负载时方差为0
	if math.Abs(evenCost) > eps {
		t.Errorf("完全均衡时成本应为0, 实际%f", evenCost)
	}
}

func TestEvaluator_NormalizedByCapacity(t *testing.T) {
	// 大容量护士可以承担更多绝对负载而不被判定为失衡
	nurses := []*model.Nurse{
		{ID: "N001", SkillLevel: 3, MaxPatients: 2},
		{ID: "N002", SkillLevel: 3, MaxPatients: 4},
	}
	patients := []*model.Patient{
		{ID: "P001", Acuity: 4, TreatmentRoute: model.RouteOral},
		{ID: "P002", Acuity: 4, TreatmentRoute: model.RouteOral},
		{ID: "P003", Acuity: 4, TreatmentRoute: model.RouteOral},
	}
	ev := NewEvaluator(nurses, Weights{Balance: 1.0})

	// N001 负载4/容量2=2.0，N002 负载8/容量4=2.0，归一化后完全均衡
	tr := capacity.NewTracker(nurses, 0)
	tr.Assign(0, patients[0])
	tr.Assign(1, patients[1])
	tr.Assign(1, patients[2])

	if cost := ev.Cost(tr, patients, []int{0, 1, 1}); math.Abs(cost) > eps {
		t.Errorf("按容量归一化后应完全均衡, 成本=%f", cost)
	}
}

func TestEvaluator_Continuity(t *testing.T) {
	nurses := []*model.Nurse{
		{ID: "N001", SkillLevel: 3, MaxPatients: 4},
		{ID: "N002", SkillLevel: 3, MaxPatients: 4},
	}
	patients := []*model.Patient{
		{ID: "P001", Acuity: 3, TreatmentRoute: model.RouteOral, LastNurseID: "N001"},
		{ID: "P002", Acuity: 3, TreatmentRoute: model.RouteOral, LastNurseID: "N009"}, // 不在本班次
		{ID: "P003", Acuity: 3, TreatmentRoute: model.RouteOral},
	}
	ev := NewEvaluator(nurses, Weights{Continuity: 1.0})

	hit := capacity.NewTracker(nurses, 0)
	// 沿用上任护士，连续性未命中为0
	if cost := ev.Cost(hit, patients, []int{0, 1, 1}); math.Abs(cost) > eps {
		t.Errorf("沿用上任护士时连续性成本应为0, 实际%f", cost)
	}

	// 换了护士，唯一可统计的患者未命中，比例为1
	if cost := ev.Cost(hit, patients, []int{1, 0, 0}); math.Abs(cost-1.0) > eps {
		t.Errorf("全部未命中时连续性成本应为1, 实际%f", cost)
	}
}

func TestEvaluator_EmptyInput(t *testing.T) {
	ev := NewEvaluator(nil, DefaultWeights())
	tr := capacity.NewTracker(nil, 0)
	if cost := ev.Cost(tr, nil, nil); cost != 0 {
		t.Errorf("空输入成本应为0, 实际%f", cost)
	}
}
