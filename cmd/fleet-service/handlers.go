package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fleetops/fleetops/internal/assignment"
	"github.com/fleetops/fleetops/internal/common/apperr"
	"github.com/fleetops/fleetops/internal/driver"
	"github.com/fleetops/fleetops/internal/report"
	"github.com/fleetops/fleetops/internal/vehicle"
)

// services 聚合各领域服务，handler 只做 JSON 编解码与路由，不含业务规则。
type services struct {
	vehicles    *vehicle.Service
	drivers     *driver.Service
	assignments *assignment.Service
	reports     *report.Aggregator
}

func newMux(s *services) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	// 报表：每次请求现算，asOf = 当前时间
	mux.HandleFunc("/reports/dashboard", func(w http.ResponseWriter, r *http.Request) {
		d, err := s.reports.Dashboard(r.Context(), time.Now())
		respond(w, d, err)
	})
	mux.HandleFunc("/reports/assignment-summary", func(w http.ResponseWriter, r *http.Request) {
		t, err := s.reports.AssignmentSummary(r.Context(), time.Now())
		respond(w, t, err)
	})
	mux.HandleFunc("/reports/unassigned-vehicles", func(w http.ResponseWriter, r *http.Request) {
		t, err := s.reports.UnassignedVehicles(r.Context(), time.Now())
		respond(w, t, err)
	})
	mux.HandleFunc("/reports/driver-assignments", func(w http.ResponseWriter, r *http.Request) {
		t, err := s.reports.DriverAssignments(r.Context(), time.Now())
		respond(w, t, err)
	})

	mux.HandleFunc("/vehicles", s.handleVehicles)
	mux.HandleFunc("/vehicles/", s.handleVehicle)
	mux.HandleFunc("/drivers", s.handleDrivers)
	mux.HandleFunc("/drivers/", s.handleDriver)
	mux.HandleFunc("/assignments", s.handleAssignments)
	mux.HandleFunc("/assignments/", s.handleAssignment)
	mux.HandleFunc("/compliance/", s.handleCompliance)
	mux.HandleFunc("/maintenance/", s.handleMaintenance)

	return mux
}

func (s *services) handleVehicles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		vs, err := s.vehicles.ListVehicles(r.Context())
		respond(w, vs, err)
	case http.MethodPost:
		var in vehicle.VehicleInput
		if !decode(w, r, &in) {
			return
		}
		v, err := s.vehicles.CreateVehicle(r.Context(), in)
		respond(w, v, err)
	default:
		methodNotAllowed(w)
	}
}

func (s *services) handleVehicle(w http.ResponseWriter, r *http.Request) {
	plate := strings.TrimPrefix(r.URL.Path, "/vehicles/")
	switch r.Method {
	case http.MethodGet:
		v, err := s.vehicles.GetVehicle(r.Context(), plate)
		respond(w, v, err)
	case http.MethodPost, http.MethodPut:
		var in vehicle.VehicleInput
		if !decode(w, r, &in) {
			return
		}
		v, err := s.vehicles.UpdateVehicle(r.Context(), plate, in)
		respond(w, v, err)
	case http.MethodDelete:
		respond(w, map[string]string{"deleted": plate}, s.vehicles.DeleteVehicle(r.Context(), plate))
	default:
		methodNotAllowed(w)
	}
}

func (s *services) handleDrivers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var in driver.DriverInput
		if !decode(w, r, &in) {
			return
		}
		d, err := s.drivers.CreateDriver(r.Context(), in)
		respond(w, d, err)
	case http.MethodGet:
		// 基础检索：?id_number= 或 ?name=
		q := r.URL.Query()
		if idn := q.Get("id_number"); idn != "" {
			d, err := s.drivers.FindByIDNumber(r.Context(), idn)
			respond(w, d, err)
			return
		}
		if name := q.Get("name"); name != "" {
			d, err := s.drivers.SearchByName(r.Context(), name)
			respond(w, d, err)
			return
		}
		http.Error(w, "id_number or name query required", http.StatusBadRequest)
	default:
		methodNotAllowed(w)
	}
}

func (s *services) handleDriver(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r.URL.Path, "/drivers/")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		d, err := s.drivers.GetDriver(r.Context(), id)
		respond(w, d, err)
	case http.MethodPost, http.MethodPut:
		var in driver.DriverInput
		if !decode(w, r, &in) {
			return
		}
		d, err := s.drivers.UpdateDriver(r.Context(), id, in)
		respond(w, d, err)
	case http.MethodDelete:
		respond(w, map[string]uint{"deleted": id}, s.drivers.DeleteDriver(r.Context(), id))
	default:
		methodNotAllowed(w)
	}
}

func (s *services) handleAssignments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		as, err := s.assignments.ListAssignments(r.Context())
		respond(w, as, err)
	case http.MethodPost:
		var in assignment.AssignmentInput
		if !decode(w, r, &in) {
			return
		}
		a, err := s.assignments.CreateAssignment(r.Context(), in)
		respond(w, a, err)
	default:
		methodNotAllowed(w)
	}
}

func (s *services) handleAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r.URL.Path, "/assignments/")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		a, err := s.assignments.GetAssignment(r.Context(), id)
		respond(w, a, err)
	case http.MethodPost, http.MethodPut:
		var in assignment.AssignmentInput
		if !decode(w, r, &in) {
			return
		}
		a, err := s.assignments.UpdateAssignment(r.Context(), id, in)
		respond(w, a, err)
	case http.MethodDelete:
		respond(w, map[string]uint{"deleted": id}, s.assignments.DeleteAssignment(r.Context(), id))
	default:
		methodNotAllowed(w)
	}
}

func (s *services) handleCompliance(w http.ResponseWriter, r *http.Request) {
	plate := strings.TrimPrefix(r.URL.Path, "/compliance/")
	switch r.Method {
	case http.MethodGet:
		c, err := s.vehicles.GetCompliance(r.Context(), plate)
		respond(w, c, err)
	case http.MethodPost, http.MethodPut:
		var in vehicle.ComplianceInput
		if !decode(w, r, &in) {
			return
		}
		c, err := s.vehicles.UpsertCompliance(r.Context(), plate, in)
		respond(w, c, err)
	default:
		methodNotAllowed(w)
	}
}

func (s *services) handleMaintenance(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/maintenance/")
	// DELETE /maintenance/{id}：按记录 id 删除；其余按车牌操作
	if r.Method == http.MethodDelete {
		id, err := strconv.ParseUint(rest, 10, 32)
		if err != nil {
			http.Error(w, "invalid maintenance id", http.StatusBadRequest)
			return
		}
		respond(w, map[string]uint64{"deleted": id}, s.vehicles.DeleteMaintenance(r.Context(), uint(id)))
		return
	}
	switch r.Method {
	case http.MethodGet:
		ms, err := s.vehicles.ListMaintenance(r.Context(), rest)
		respond(w, ms, err)
	case http.MethodPost:
		var in vehicle.MaintenanceInput
		if !decode(w, r, &in) {
			return
		}
		m, err := s.vehicles.AddMaintenance(r.Context(), rest, in)
		respond(w, m, err)
	default:
		methodNotAllowed(w)
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, path, prefix string) (uint, bool) {
	raw := strings.TrimPrefix(path, prefix)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

func respond(w http.ResponseWriter, payload interface{}, err error) {
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(payload)
}

// statusOf 把业务错误类别映射到 HTTP 状态码；其余按 500 处理。
func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindDuplicateKey, apperr.KindConstraint:
		return http.StatusConflict
	case apperr.KindReferential, apperr.KindInvalidRange, apperr.KindInvalidFormat:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
