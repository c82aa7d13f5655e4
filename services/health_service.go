package services

import (
	"context"
	"runtime"
	"time"

	"counselign/config"
	"counselign/database"
)

// HealthService aggregates dependency status for the health endpoint.
type HealthService struct {
	serviceName string
	version     string
	startTime   time.Time
}

// HealthReport is the JSON body of the health endpoint.
type HealthReport struct {
	Status        string             `json:"status"` // ok, degraded, critical
	Service       string             `json:"service"`
	Version       string             `json:"version"`
	Environment   string             `json:"environment"`
	Time          time.Time          `json:"time"`
	UptimeSeconds float64            `json:"uptime_seconds"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Goroutines    int                `json:"goroutines"`
}

// DependencyStatus captures the health of one external dependency.
type DependencyStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"` // up, down, disabled
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func NewHealthService(serviceName, version string) *HealthService {
	if serviceName == "" {
		serviceName = "Counselign API"
	}
	if version == "" {
		version = "1.0.0"
	}
	return &HealthService{
		serviceName: serviceName,
		version:     version,
		startTime:   time.Now(),
	}
}

// GetHealthReport probes the database and Redis and assembles the report.
func (s *HealthService) GetHealthReport() HealthReport {
	report := HealthReport{
		Status:        "ok",
		Service:       s.serviceName,
		Version:       s.version,
		Time:          time.Now().UTC(),
		UptimeSeconds: time.Since(s.startTime).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
	}
	if config.AppConfig != nil {
		report.Environment = config.AppConfig.AppEnv
	}

	db := DependencyStatus{Name: "mysql", Status: "up"}
	if database.DB == nil {
		db.Status = "down"
		db.Error = "database connection not initialised"
		report.Status = "critical"
	} else if sqlDB, err := database.DB.DB(); err != nil {
		db.Status = "down"
		db.Error = err.Error()
		report.Status = "critical"
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		start := time.Now()
		err := sqlDB.PingContext(ctx)
		cancel()
		db.LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			db.Status = "down"
			db.Error = err.Error()
			report.Status = "critical"
		}
	}
	report.Dependencies = append(report.Dependencies, db)

	redisDep := DependencyStatus{Name: "redis", Status: "up"}
	if client := database.GetRedisClient(); client == nil {
		redisDep.Status = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		start := time.Now()
		err := client.Ping(ctx).Err()
		cancel()
		redisDep.LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			redisDep.Status = "down"
			redisDep.Error = err.Error()
			// Redis is optional: notifications fall back to direct inserts
			if report.Status == "ok" {
				report.Status = "degraded"
			}
		}
	}
	report.Dependencies = append(report.Dependencies, redisDep)

	return report
}

// HTTPStatusForOverall maps a health status to an HTTP status code.
func (s *HealthService) HTTPStatusForOverall(status string) int {
	if status == "critical" {
		return 503
	}
	return 200
}
