// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the data transfer objects exchanged with the native
// helper. The UI treats these as opaque records: it stores them in view
// state, filters and sorts them in memory, and passes identifiers back to
// the helper for mutating calls. Lifecycle rules (e.g. an entry disappears
// once deleted on disk) live on the helper side.
package model

import (
	"fmt"
	"time"
)

// CacheKind distinguishes the internal cache stores the helper manages.
type CacheKind string

const (
	CacheKindDownload CacheKind = "download"
	CacheKindMetadata CacheKind = "metadata"
)

// CacheEntry is one item in an internal (download or metadata) cache.
type CacheEntry struct {
	ID         string    `json:"id"`
	Kind       CacheKind `json:"kind"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// ToolCache describes a third-party tool cache discovered on disk
// (e.g. a package manager store or a compiler artifact dir).
type ToolCache struct {
	Name       string    `json:"name"`
	Tool       string    `json:"tool"`
	Path       string    `json:"path"`
	SizeBytes  int64     `json:"size_bytes"`
	EntryCount int       `json:"entry_count"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// CacheQuery selects a page of cache entries. Offset/Limit paginate;
// Search narrows by substring; SortBy is one of "name", "size", "used".
type CacheQuery struct {
	Kind     CacheKind `json:"kind"`
	Search   string    `json:"search"`
	SortBy   string    `json:"sort_by"`
	SortDesc bool      `json:"sort_desc"`
	Offset   int       `json:"offset"`
	Limit    int       `json:"limit"`
}

// CachePage is one page of entries plus the aggregate totals for the
// whole (filtered) set, used by the stat cards and the page footer.
type CachePage struct {
	Entries   []CacheEntry `json:"entries"`
	Total     int          `json:"total"`
	TotalSize int64        `json:"total_size"`
}

// CleanResult reports what a clean or cleanup operation removed.
type CleanResult struct {
	Removed    int   `json:"removed"`
	FreedBytes int64 `json:"freed_bytes"`
}

// VerifyResult reports an integrity check over a cache or an installed
// environment version.
type VerifyResult struct {
	Checked  int `json:"checked"`
	Corrupt  int `json:"corrupt"`
	Repaired int `json:"repaired"`
}

// BatchResult carries the per-item outcome counts the helper computed for
// a bulk operation. The UI reports these verbatim.
type BatchResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}

// Partial returns true when the batch had both successes and failures.
func (b BatchResult) Partial() bool {
	return b.Succeeded > 0 && (b.Failed > 0 || b.Skipped > 0)
}

// EnvType is a managed language/runtime family (python, node, go, ...).
type EnvType struct {
	Name      string `json:"name"`
	Display   string `json:"display"`
	Installed int    `json:"installed"`
}

// EnvProvider is an installation source for an environment type.
type EnvProvider struct {
	Name    string `json:"name"`
	EnvType string `json:"env_type"`
	Default bool   `json:"default"`
}

// EnvVersion is one installed or installable version of an environment.
type EnvVersion struct {
	EnvType   string `json:"env_type"`
	Version   string `json:"version"`
	Provider  string `json:"provider"`
	Installed bool   `json:"installed"`
	Global    bool   `json:"global"`
	Path      string `json:"path,omitempty"`
}

// String returns the type@version representation used in logs and status lines.
func (v EnvVersion) String() string {
	return fmt.Sprintf("%s@%s", v.EnvType, v.Version)
}

// DetectedVersion is a version requirement found in project files
// (.python-version, .nvmrc, go.mod and friends).
type DetectedVersion struct {
	EnvType    string `json:"env_type"`
	Constraint string `json:"constraint"`
	Source     string `json:"source"`
	Satisfied  bool   `json:"satisfied"`
}

// Progress is a streamed progress event for long-running helper work
// (installs, self-update download).
type Progress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Detail  string  `json:"detail,omitempty"`
}

// DistroState mirrors the states `wsl --list --verbose` reports.
type DistroState string

const (
	DistroRunning    DistroState = "Running"
	DistroStopped    DistroState = "Stopped"
	DistroInstalling DistroState = "Installing"
)

// Distro is one WSL distribution.
type Distro struct {
	Name    string      `json:"name"`
	State   DistroState `json:"state"`
	Version int         `json:"version"`
	Default bool        `json:"default"`
}

// DistroResources is a point-in-time resource snapshot for a distro.
type DistroResources struct {
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryUsed     int64   `json:"memory_used"`
	MemoryTotal    int64   `json:"memory_total"`
	DiskUsed       int64   `json:"disk_used"`
	DiskTotal      int64   `json:"disk_total"`
	ProcessCount   int     `json:"process_count"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
	KernelVersion  string  `json:"kernel_version"`
	DefaultUser    string  `json:"default_user"`
	SystemdEnabled bool    `json:"systemd_enabled"`
}

// EnvPair is one environment variable inside a distro.
type EnvPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ExecResult is the outcome of running a shell command inside a distro.
type ExecResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// SystemdService is one systemd unit inside a distro.
type SystemdService struct {
	Unit        string `json:"unit"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	Enabled     bool   `json:"enabled"`
}

// LogLevel is a log severity as the helper reports it.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogEntry is one parsed line from the helper's log file.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
}

// LogQuery filters a log file query. Empty Levels means all levels; zero
// Since/Until leave that boundary open; Pattern is a regular expression.
type LogQuery struct {
	Levels  []LogLevel `json:"levels,omitempty"`
	Since   time.Time  `json:"since,omitempty"`
	Until   time.Time  `json:"until,omitempty"`
	Pattern string     `json:"pattern,omitempty"`
	Limit   int        `json:"limit,omitempty"`
}

// RetentionPolicy controls helper-side log rotation and cleanup.
type RetentionPolicy struct {
	MaxAgeDays  int  `json:"max_age_days"`
	MaxSizeMB   int  `json:"max_size_mb"`
	MaxFiles    int  `json:"max_files"`
	AutoCleanup bool `json:"auto_cleanup"`
}

// Feedback is a user-submitted feedback item.
type Feedback struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Contact  string `json:"contact,omitempty"`
}

// BackupManifest describes one backup archive the helper knows about.
type BackupManifest struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
	Contents  []string  `json:"contents"`
	Valid     bool      `json:"valid"`
}

// UpdateInfo is the result of a self-update check.
type UpdateInfo struct {
	CurrentVersion string `json:"current_version"`
	LatestVersion  string `json:"latest_version"`
	Available      bool   `json:"available"`
	ReleaseNotes   string `json:"release_notes,omitempty"`
}

// PlatformInfo describes the host machine as the helper sees it.
type PlatformInfo struct {
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	Hostname     string `json:"hostname"`
	WSLAvailable bool   `json:"wsl_available"`
	HelperPath   string `json:"helper_path"`
	HelperVer    string `json:"helper_version"`
}

// ActionLogEntry is a row in the local action log: what the user ran,
// when, and how it went. This is client-side history, not helper data.
type ActionLogEntry struct {
	ID        int
	Timestamp string
	Action    string
	Details   string
	Outcome   string
}
