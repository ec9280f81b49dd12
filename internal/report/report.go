package report

// Table 报表的统一输出形态：命名列 + 有序行。
// 渲染/导出（HTML、表格文件）由上层协作方负责，这里不绑定任何输出格式。
type Table struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// AssignmentSummary 派遣汇总：按用途类别的车辆计数 + 两个标量。
type AssignmentSummary struct {
	Counts             Table `json:"counts"`
	OngoingAssignments int   `json:"ongoing_assignments"`
	UnassignedVehicles int   `json:"unassigned_vehicles"`
}

// Dashboard 首页聚合：总量计数 + 保养临近 top-N + 合规问题 top-N。
type Dashboard struct {
	VehicleCount      int64 `json:"vehicle_count"`
	DriverCount       int64 `json:"driver_count"`
	ActiveAssignments int   `json:"active_assignments"`
	MaintenanceDue    Table `json:"maintenance_due"`
	ComplianceIssues  Table `json:"compliance_issues"`
}

// Placeholder 值：司机花名册中未匹配在岗派遣的占位输出。
const (
	NotAssigned = "Not assigned"
	Blank       = "-"
)
