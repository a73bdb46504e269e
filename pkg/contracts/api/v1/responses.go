package api

import "time"

// HealthResponse is returned by the health endpoints
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Sources   []SourceHealth         `json:"sources,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// SourceHealth reports the state of one input file
type SourceHealth struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Sheet   string `json:"sheet,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// VersionResponse is returned by /api/version
type VersionResponse struct {
	Version     string  `json:"version"`
	BuildTime   string  `json:"build_time"`
	GitCommit   string  `json:"git_commit"`
	GoVersion   string  `json:"go_version"`
	OS          string  `json:"os"`
	Arch        string  `json:"arch"`
	UptimeSecs  float64 `json:"uptime_seconds"`
	StartTime   string  `json:"start_time"`
	CurrentTime string  `json:"current_time"`
}
