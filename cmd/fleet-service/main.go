package main

import (
	"flag"
	"fmt"

	"github.com/fleetops/fleetops/internal/assignment"
	"github.com/fleetops/fleetops/internal/common/config"
	"github.com/fleetops/fleetops/internal/common/db"
	"github.com/fleetops/fleetops/internal/common/logger"
	"github.com/fleetops/fleetops/internal/common/middleware"
	"github.com/fleetops/fleetops/internal/common/server"
	"github.com/fleetops/fleetops/internal/common/tracing"
	"github.com/fleetops/fleetops/internal/driver"
	"github.com/fleetops/fleetops/internal/report"
	"github.com/fleetops/fleetops/internal/vehicle"
)

var (
	configPath = flag.String("config", "configs/fleet-service.json", "配置文件路径")
	consulKey  = flag.String("consul-config-key", "", "从 Consul KV 读取配置的 key（设置后优先于本地文件）")
)

func main() {
	flag.Parse()

	// 加载配置
	var (
		cfg *config.Config
		err error
	)
	if *consulKey != "" {
		local, lerr := config.LoadConfig(*configPath)
		if lerr != nil {
			panic(fmt.Sprintf("failed to load config: %v", lerr))
		}
		cfg, err = config.LoadConfigFromConsulKV(local.Consul.Host, local.Consul.Port, *consulKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Driver, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 初始化数据库
	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to init database: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&vehicle.Vehicle{},
		&vehicle.Compliance{},
		&vehicle.Maintenance{},
		&driver.Driver{},
		&assignment.Assignment{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// 组装领域服务与报表聚合器
	vehicleRepo := vehicle.NewRepo(gormDB)
	driverRepo := driver.NewRepo(gormDB)

	services := &services{
		vehicles:    vehicle.NewService(gormDB),
		drivers:     driver.NewService(gormDB),
		assignments: assignment.NewService(gormDB, vehicleRepo, driverRepo),
		reports:     report.NewAggregator(gormDB, cfg.Report.MaintenanceWindowDays, cfg.Report.DashboardLimit),
	}

	handler := server.Chain(
		newMux(services),
		server.Recovery(log),
		server.Tracing(cfg.Server.Name),
		server.AccessLog(log),
		server.RateLimit(middleware.NewTokenBucket(100, 50)),
	)

	if err := server.RunHTTPServer(cfg, log, handler); err != nil {
		log.Fatalf("fleet-service exited with error: %v", err)
	}
}
