package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/riskalloc/internal/database"
	"github.com/aristath/riskalloc/internal/utils"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves process and host status.
type SystemHandlers struct {
	log       zerolog.Logger
	configDB  *database.DB
	dataDir   string
	version   string
	startedAt time.Time
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(log zerolog.Logger, configDB *database.DB, dataDir, version string) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("service", "system").Logger(),
		configDB:  configDB,
		dataDir:   dataDir,
		version:   version,
		startedAt: time.Now(),
	}
}

// SystemStatusResponse represents system status
type SystemStatusResponse struct {
	Status        string  `json:"status" msgpack:"status"`
	Version       string  `json:"version" msgpack:"version"`
	StartedAt     string  `json:"started_at" msgpack:"started_at"`
	Uptime        string  `json:"uptime" msgpack:"uptime"`
	UptimeSeconds int64   `json:"uptime_seconds" msgpack:"uptime_seconds"`
	GoVersion     string  `json:"go_version" msgpack:"go_version"`
	Goroutines    int     `json:"goroutines" msgpack:"goroutines"`
	CPUPercent    float64 `json:"cpu_percent" msgpack:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent" msgpack:"ram_percent"`
	Database      string  `json:"database" msgpack:"database"`
	DataDir       string  `json:"data_dir" msgpack:"data_dir"`
}

// GetSystemStatusSnapshot returns a snapshot of the current system status.
// A failing settings database degrades the status instead of failing it.
func (h *SystemHandlers) GetSystemStatusSnapshot(ctx context.Context) SystemStatusResponse {
	uptime := time.Since(h.startedAt)
	cpuPercent, ramPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		Version:       h.version,
		StartedAt:     h.startedAt.Format(time.RFC3339),
		Uptime:        uptime.Truncate(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		GoVersion:     runtime.Version(),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
		Database:      "ok",
		DataDir:       h.dataDir,
	}

	if h.configDB == nil {
		response.Database = "unavailable"
		response.Status = "degraded"
	} else if err := h.configDB.QuickCheck(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Settings database check failed")
		response.Database = err.Error()
		response.Status = "degraded"
	}

	return response
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")
	utils.WriteData(w, r, http.StatusOK, h.GetSystemStatusSnapshot(r.Context()), h.log)
}

// getSystemStats calculates CPU and RAM usage percentages over a short
// sampling window so the endpoint stays responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
