package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/fleetops/fleetops/internal/assignment"
	"github.com/fleetops/fleetops/internal/common/dates"
	"github.com/fleetops/fleetops/internal/common/tracing"
	"github.com/fleetops/fleetops/internal/driver"
	"github.com/fleetops/fleetops/internal/status"
	"github.com/fleetops/fleetops/internal/vehicle"
)

// 仪表盘协作方使用的默认参数。引擎本身按参数接收，不内置。
const (
	DefaultMaintenanceWindowDays = 7
	DefaultDashboardLimit        = 5
)

// Aggregator 报表聚合器：实体扫描 + status 包派生事实的只读组合。
// 每次请求现算，不缓存：已提交的变更在下一次报表里立即可见。
type Aggregator struct {
	vehicles    *vehicle.Repo
	drivers     *driver.Repo
	assignments *assignment.Repo

	windowDays int
	limit      int
}

func NewAggregator(db *gorm.DB, windowDays, limit int) *Aggregator {
	if windowDays <= 0 {
		windowDays = DefaultMaintenanceWindowDays
	}
	if limit <= 0 {
		limit = DefaultDashboardLimit
	}
	return &Aggregator{
		vehicles:    vehicle.NewRepo(db),
		drivers:     driver.NewRepo(db),
		assignments: assignment.NewRepo(db),
		windowDays:  windowDays,
		limit:       limit,
	}
}

// snapshot 一次请求内的快照读取。full 时连同合规与保养记录。
func (g *Aggregator) snapshot(ctx context.Context, full bool) (*status.Snapshot, error) {
	snap := &status.Snapshot{}
	var err error
	if snap.Vehicles, err = g.vehicles.ListAll(ctx); err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	if snap.Assignments, err = g.assignments.ListAll(ctx); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	if !full {
		return snap, nil
	}
	if snap.Compliance, err = g.vehicles.ListAllCompliance(ctx); err != nil {
		return nil, fmt.Errorf("list compliance: %w", err)
	}
	if snap.Maintenance, err = g.vehicles.ListAllMaintenance(ctx); err != nil {
		return nil, fmt.Errorf("list maintenance: %w", err)
	}
	return snap, nil
}

// AssignmentSummary 按用途类别的车辆分组计数，外加在岗派遣数与空闲车辆数。
func (g *Aggregator) AssignmentSummary(ctx context.Context, asOf time.Time) (*AssignmentSummary, error) {
	span, ctx := tracing.StartSpan(ctx, "report.AssignmentSummary")
	defer span.Finish()

	counts, err := g.vehicles.CountByAssignedFor(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by assigned_for: %w", err)
	}
	snap, err := g.snapshot(ctx, false)
	if err != nil {
		return nil, err
	}

	table := Table{
		Name:    "Assignment Summary",
		Columns: []string{"Assignment Type", "Vehicle Count"},
	}
	for _, c := range counts {
		table.Rows = append(table.Rows, []string{string(c.AssignedFor), strconv.FormatInt(c.Count, 10)})
	}

	return &AssignmentSummary{
		Counts:             table,
		OngoingAssignments: len(status.ActiveAssignments(snap.Assignments, asOf)),
		UnassignedVehicles: len(status.UnassignedVehicles(snap.Vehicles, snap.Assignments, asOf)),
	}, nil
}

// UnassignedVehicles 空闲车辆全属性行。
func (g *Aggregator) UnassignedVehicles(ctx context.Context, asOf time.Time) (*Table, error) {
	span, ctx := tracing.StartSpan(ctx, "report.UnassignedVehicles")
	defer span.Finish()

	snap, err := g.snapshot(ctx, false)
	if err != nil {
		return nil, err
	}

	table := &Table{
		Name: "Unassigned Vehicles",
		Columns: []string{
			"Plate Number", "Chassis", "Type", "Make", "Model", "Year",
			"Fuel Type", "Fuel Capacity", "Fuel Consumption", "Loading Capacity", "Assigned For",
		},
	}
	for _, v := range status.UnassignedVehicles(snap.Vehicles, snap.Assignments, asOf) {
		table.Rows = append(table.Rows, []string{
			v.PlateNumber,
			v.Chassis,
			string(v.VehicleType),
			v.Make,
			v.Model,
			v.Year,
			string(v.FuelType),
			formatFloat(v.FuelCapacity),
			formatFloat(v.FuelConsumption),
			v.LoadingCapacity,
			string(v.AssignedFor),
		})
	}
	return table, nil
}

// DriverAssignments 司机花名册：每司机一行，左连接至多一条在岗派遣。
// 同一司机有多条在岗派遣时取 id 最小的一条，保证输出确定；
// 没有在岗派遣的司机输出占位字段。
func (g *Aggregator) DriverAssignments(ctx context.Context, asOf time.Time) (*Table, error) {
	span, ctx := tracing.StartSpan(ctx, "report.DriverAssignments")
	defer span.Finish()

	drivers, err := g.drivers.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	snap, err := g.snapshot(ctx, false)
	if err != nil {
		return nil, err
	}

	vehicleByPlate := make(map[string]vehicle.Vehicle, len(snap.Vehicles))
	for _, v := range snap.Vehicles {
		vehicleByPlate[v.PlateNumber] = v
	}

	// ListAll 按 id 升序，首个命中即最小 id
	activeByDriver := make(map[uint]*assignment.Assignment, len(drivers))
	for i := range snap.Assignments {
		a := snap.Assignments[i]
		if !status.IsAssignmentActive(a, asOf) {
			continue
		}
		if _, ok := activeByDriver[a.DriverID]; !ok {
			activeByDriver[a.DriverID] = &snap.Assignments[i]
		}
	}

	table := &Table{
		Name: "Driver Assignments",
		Columns: []string{
			"Driver Name", "ID Number", "Phone",
			"Assigned Vehicle", "Work Place", "Start Date", "End Date",
		},
	}
	for _, d := range drivers {
		a := activeByDriver[d.ID]
		if a == nil {
			table.Rows = append(table.Rows, []string{
				d.Name, d.IDNumber, d.Phone, NotAssigned, Blank, Blank, Blank,
			})
			continue
		}
		assigned := a.PlateNumber
		if v, ok := vehicleByPlate[a.PlateNumber]; ok && v.Make != "" {
			assigned = fmt.Sprintf("%s (%s)", v.PlateNumber, v.Make)
		}
		table.Rows = append(table.Rows, []string{
			d.Name,
			d.IDNumber,
			d.Phone,
			assigned,
			a.WorkPlace,
			a.StartDate.Format(dates.Layout),
			dates.Format(a.EndDate, Blank),
		})
	}
	return table, nil
}

// Dashboard 首页聚合：总量计数 + top-N 保养临近 + top-N 合规问题。
func (g *Aggregator) Dashboard(ctx context.Context, asOf time.Time) (*Dashboard, error) {
	span, ctx := tracing.StartSpan(ctx, "report.Dashboard")
	defer span.Finish()

	vehicleCount, err := g.vehicles.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count vehicles: %w", err)
	}
	driverCount, err := g.drivers.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count drivers: %w", err)
	}
	snap, err := g.snapshot(ctx, true)
	if err != nil {
		return nil, err
	}

	vehicleByPlate := make(map[string]vehicle.Vehicle, len(snap.Vehicles))
	for _, v := range snap.Vehicles {
		vehicleByPlate[v.PlateNumber] = v
	}

	dueTable := Table{
		Name:    "Maintenance Due",
		Columns: []string{"Plate Number", "Make", "Model", "Next Service Date", "Maintenance Center"},
	}
	for _, m := range status.MaintenanceDue(snap.Maintenance, asOf, g.windowDays, g.limit) {
		v := vehicleByPlate[m.PlateNumber]
		dueTable.Rows = append(dueTable.Rows, []string{
			m.PlateNumber,
			v.Make,
			v.Model,
			dates.Format(m.NextServiceDate, Blank),
			string(m.MaintenanceCenter),
		})
	}

	issueTable := Table{
		Name:    "Compliance Issues",
		Columns: []string{"Plate Number", "Make", "Model", "Issue"},
	}
	for _, is := range status.ComplianceIssues(snap.Compliance, asOf, g.limit) {
		v := vehicleByPlate[is.Compliance.PlateNumber]
		issueTable.Rows = append(issueTable.Rows, []string{
			is.Compliance.PlateNumber,
			v.Make,
			v.Model,
			string(is.Issue),
		})
	}

	return &Dashboard{
		VehicleCount:      vehicleCount,
		DriverCount:       driverCount,
		ActiveAssignments: len(status.ActiveAssignments(snap.Assignments, asOf)),
		MaintenanceDue:    dueTable,
		ComplianceIssues:  issueTable,
	}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
