package model

import "testing"

func TestTreatmentRoute(t *testing.T) {
	if !RouteOral.IsValid() || !RouteIV.IsValid() {
		t.Error("预定义途径应合法")
	}
	if TreatmentRoute("topical").IsValid() {
		t.Error("未知途径不应合法")
	}
	if RouteOral.RequiresCertification() {
		t.Error("口服不应要求资质")
	}
	if !RouteIV.RequiresCertification() {
		t.Error("静脉化疗应要求资质")
	}
}

func TestTotalCapacity(t *testing.T) {
	nurses := []*Nurse{
		{ID: "N001", MaxPatients: 3},
		{ID: "N002", MaxPatients: 4},
		{ID: "N003", MaxPatients: -1}, // 非法容量不计入
	}
	if got := TotalCapacity(nurses); got != 7 {
		t.Errorf("总容量错误: 期望7, 实际%d", got)
	}
	if got := TotalCapacity(nil); got != 0 {
		t.Errorf("空列表总容量应为0, 实际%d", got)
	}
}

func TestTotalAcuity(t *testing.T) {
	patients := []*Patient{
		{ID: "P001", Acuity: 5},
		{ID: "P002", Acuity: 3},
	}
	if got := TotalAcuity(patients); got != 8 {
		t.Errorf("总权重错误: 期望8, 实际%d", got)
	}
}
