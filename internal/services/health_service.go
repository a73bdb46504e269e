package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"klothdash/internal/dataset"
	"klothdash/pkg/contracts"
	api "klothdash/pkg/contracts/api/v1"
)

// Health states
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// SourceReporter reports on the configured input files
type SourceReporter interface {
	Status() []dataset.SourceStatus
	CacheStats() map[string]interface{}
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	sources   SourceReporter
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates a new health service
func NewHealthService(version string, sources SourceReporter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version))

	return &HealthService{
		version:   version,
		sources:   sources,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) api.HealthResponse {
	hs.logger.DebugContext(ctx, "performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return api.HealthResponse{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready only when every source file is present
func (hs *HealthService) ReadinessCheck(ctx context.Context) api.HealthResponse {
	status := api.HealthResponse{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
	if hs.sources == nil {
		status.Status = StatusNotReady
		return status
	}

	for _, st := range hs.sources.Status() {
		sh := api.SourceHealth{
			Name:   st.Name,
			Path:   st.Path,
			Sheet:  st.Sheet,
			Status: StatusReady,
		}
		if !st.Exists {
			sh.Status = StatusNotReady
			sh.Message = st.Error
			status.Status = StatusNotReady
		}
		status.Sources = append(status.Sources, sh)
	}
	status.Cache = hs.sources.CacheStats()

	if status.Status != StatusReady {
		hs.logger.WarnContext(ctx, "service not ready",
			slog.Any("sources", status.Sources))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) api.HealthResponse {
	return api.HealthResponse{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() api.VersionResponse {
	info := contracts.GetVersionInfo()
	return api.VersionResponse{
		Version:     hs.version,
		BuildTime:   info.BuildTime,
		GitCommit:   info.GitCommit,
		GoVersion:   info.GoVersion,
		OS:          info.OS,
		Arch:        info.Architecture,
		UptimeSecs:  time.Since(hs.startTime).Seconds(),
		StartTime:   hs.startTime.Format(time.RFC3339),
		CurrentTime: time.Now().Format(time.RFC3339),
	}
}
