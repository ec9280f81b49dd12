// Package status 把各表独立录入的原始记录推导成相对参考日期的运营事实：
// 哪些派遣在岗、哪些车辆空闲、哪些车辆保养临近、哪些车辆不合规。
// 全部为纯函数：只读快照 + asOf 进，结果出，可重复调用。
package status

import (
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/fleetops/fleetops/internal/assignment"
	"github.com/fleetops/fleetops/internal/common/dates"
	"github.com/fleetops/fleetops/internal/vehicle"
)

// Snapshot 一次请求内读取的一致性快照。
type Snapshot struct {
	Vehicles    []vehicle.Vehicle
	Assignments []assignment.Assignment
	Compliance  []vehicle.Compliance
	Maintenance []vehicle.Maintenance
}

// IsAssignmentActive 判断派遣在 asOf 当天是否在岗：
// end_date 为空，或 end_date >= asOf（日粒度）。没有其他状态字段。
func IsAssignmentActive(a assignment.Assignment, asOf time.Time) bool {
	if a.EndDate == nil {
		return true
	}
	return !a.EndDate.Before(dates.DateOnly(asOf))
}

// ActiveAssignments 返回 asOf 当天在岗的全部派遣。
// 不保证同车/同司机至多一条：模型允许重叠派遣，此处原样返回。
func ActiveAssignments(assignments []assignment.Assignment, asOf time.Time) []assignment.Assignment {
	out := make([]assignment.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if IsAssignmentActive(a, asOf) {
			out = append(out, a)
		}
	}
	return out
}

// ActivePlateSet 在岗派遣所覆盖的车牌集合。
func ActivePlateSet(assignments []assignment.Assignment, asOf time.Time) mapset.Set[string] {
	s := mapset.NewSet[string]()
	for _, a := range assignments {
		if IsAssignmentActive(a, asOf) {
			s.Add(a.PlateNumber)
		}
	}
	return s
}

// UnassignedVehicles 反连接：全量车辆集合减去在岗派遣投影出的车牌集合。
// 输出保持车辆切片的扫描顺序。
func UnassignedVehicles(vehicles []vehicle.Vehicle, assignments []assignment.Assignment, asOf time.Time) []vehicle.Vehicle {
	all := mapset.NewSet[string]()
	for _, v := range vehicles {
		all.Add(v.PlateNumber)
	}
	idle := all.Difference(ActivePlateSet(assignments, asOf))

	out := make([]vehicle.Vehicle, 0, idle.Cardinality())
	for _, v := range vehicles {
		if idle.Contains(v.PlateNumber) {
			out = append(out, v)
		}
	}
	return out
}

// MaintenanceDue 返回 next_service_date 在 asOf + windowDays 之内（含当天）的保养记录，
// 按 next_service_date 升序，截断到 limit 条。未填下次保养日期的记录不参与。
func MaintenanceDue(records []vehicle.Maintenance, asOf time.Time, windowDays, limit int) []vehicle.Maintenance {
	deadline := dates.DateOnly(asOf).AddDate(0, 0, windowDays)

	due := make([]vehicle.Maintenance, 0)
	for _, m := range records {
		if m.NextServiceDate == nil {
			continue
		}
		if !m.NextServiceDate.After(deadline) {
			due = append(due, m)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextServiceDate.Before(*due[j].NextServiceDate)
	})
	if limit >= 0 && len(due) > limit {
		due = due[:limit]
	}
	return due
}

// IssueType 合规问题分类。
type IssueType string

const (
	IssueInspectionMissing IssueType = "Inspection Missing"
	IssueInspectionExpired IssueType = "Inspection Expired"
	IssueInsuranceExpired  IssueType = "Insurance Expired"
	IssueUnknown           IssueType = "Unknown Issue"
)

// ComplianceIssue 一辆车的合规问题。
type ComplianceIssue struct {
	Compliance vehicle.Compliance
	Issue      IssueType
}

// ComplianceIssues 两遍结构：先用 hasComplianceIssue 过滤出"有问题"的记录，
// 再对每条命中记录独立跑 classifyCompliance 的有序首匹配链。
// 两遍判断不强制一致：分类链全不命中时落到 Unknown Issue 分支。
// 不要把两遍合成一遍，否则 Unknown Issue 分支会被悄悄消掉。
// 顺序 = 合规表扫描顺序，截断到 limit 条。
func ComplianceIssues(records []vehicle.Compliance, asOf time.Time, limit int) []ComplianceIssue {
	cutoff := dates.DateOnly(asOf).AddDate(-1, 0, 0)

	out := make([]ComplianceIssue, 0)
	for _, c := range records {
		if !hasComplianceIssue(c, cutoff) {
			continue
		}
		out = append(out, ComplianceIssue{
			Compliance: c,
			Issue:      classifyCompliance(c, cutoff),
		})
		if limit >= 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// hasComplianceIssue 外层成员过滤：规则 1 或 2 或 3 任一命中。
// 空日期不参与比较（视为不命中，对齐 SQL NULL 语义）。
func hasComplianceIssue(c vehicle.Compliance, cutoff time.Time) bool {
	if c.YearlyInspection == vehicle.No {
		return true
	}
	if c.InspectionDate != nil && c.InspectionDate.Before(cutoff) {
		return true
	}
	if c.InsuranceDate != nil && c.InsuranceDate.Before(cutoff) {
		return true
	}
	return false
}

// classifyCompliance 有序首匹配：年检未做 > 年检过期 > 保险过期 > 未知。
func classifyCompliance(c vehicle.Compliance, cutoff time.Time) IssueType {
	switch {
	case c.YearlyInspection == vehicle.No:
		return IssueInspectionMissing
	case c.InspectionDate != nil && c.InspectionDate.Before(cutoff):
		return IssueInspectionExpired
	case c.InsuranceDate != nil && c.InsuranceDate.Before(cutoff):
		return IssueInsuranceExpired
	default:
		return IssueUnknown
	}
}
