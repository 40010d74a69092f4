package services

import (
	"fmt"
	"time"

	"esgishoma-backend-go/internal/blob"
	"esgishoma-backend-go/internal/models"
	"esgishoma-backend-go/internal/store"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// DiagnosticsService runs the dashboard health probes: storage latency for
// both stores plus host memory and disk pressure.
type DiagnosticsService struct {
	Store    *store.Store
	Blobs    *blob.Store
	Tokens   TokenService
	DiskPath string
}

func (s *DiagnosticsService) Run(token string) ([]models.DiagnosticResult, error) {
	if _, err := s.Tokens.RequireAdmin(token); err != nil {
		return nil, err
	}

	results := []models.DiagnosticResult{
		probeLatency("1", "Record Store", s.Store.Ping),
		probeLatency("2", "Blob Store", s.Blobs.Ping),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		status := "ok"
		if vm.UsedPercent > 90 {
			status = "warning"
		}
		results = append(results, models.DiagnosticResult{
			ID:          "3",
			Label:       "System Memory",
			Value:       fmt.Sprintf("%.0f%%", vm.UsedPercent),
			Status:      status,
			Description: "Memory in use on the host.",
		})
	} else {
		results = append(results, probeError("3", "System Memory", err))
	}

	diskPath := s.DiskPath
	if diskPath == "" {
		diskPath = "/"
	}
	if usage, err := disk.Usage(diskPath); err == nil {
		status := "ok"
		if usage.UsedPercent > 90 {
			status = "warning"
		}
		results = append(results, models.DiagnosticResult{
			ID:          "4",
			Label:       "Disk Usage",
			Value:       fmt.Sprintf("%.0f%%", usage.UsedPercent),
			Status:      status,
			Description: "Space used on the data volume.",
		})
	} else {
		results = append(results, probeError("4", "Disk Usage", err))
	}

	return results, nil
}

func probeLatency(id, label string, ping func() error) models.DiagnosticResult {
	start := time.Now()
	if err := ping(); err != nil {
		return probeError(id, label, err)
	}
	return models.DiagnosticResult{
		ID:          id,
		Label:       label,
		Value:       time.Since(start).Round(time.Microsecond).String(),
		Status:      "ok",
		Description: "Storage responded to a probe query.",
	}
}

func probeError(id, label string, err error) models.DiagnosticResult {
	return models.DiagnosticResult{
		ID:          id,
		Label:       label,
		Value:       "unavailable",
		Status:      "error",
		Description: err.Error(),
	}
}
