// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// package backend defines the contract between the Devkeep UI and the
// native helper that performs all real system work. The UI only ever talks
// to these interfaces; the concrete client lives in backend/native and an
// in-memory fake for tests and demo mode lives in backend/fake.
package backend

import (
	"context"

	"github.com/devkeep/devkeep/internal/model"
)

// CacheService covers discovery and maintenance of tool and internal caches.
type CacheService interface {
	DiscoverToolCaches(ctx context.Context) ([]model.ToolCache, error)
	ListEntries(ctx context.Context, q model.CacheQuery) (*model.CachePage, error)
	Clean(ctx context.Context, name string) (*model.CleanResult, error)
	CleanAll(ctx context.Context) (*model.CleanResult, error)
	Verify(ctx context.Context, name string) (*model.VerifyResult, error)
	DeleteEntry(ctx context.Context, id string) error
	DeleteEntries(ctx context.Context, ids []string) (*model.BatchResult, error)
}

// ProgressFunc receives streamed progress events for long-running work.
// It is called from the goroutine that reads the helper's event stream.
type ProgressFunc func(model.Progress)

// EnvService manages language/runtime versions.
type EnvService interface {
	ListTypes(ctx context.Context) ([]model.EnvType, error)
	ListProviders(ctx context.Context, envType string) ([]model.EnvProvider, error)
	ListVersions(ctx context.Context, envType string) ([]model.EnvVersion, error)
	// Install starts an installation and returns a cancel token once the
	// helper has accepted the request. Progress events arrive via fn until
	// the call returns.
	Install(ctx context.Context, envType, version string, fn ProgressFunc) (token string, err error)
	CancelInstall(ctx context.Context, token string) error
	Uninstall(ctx context.Context, envType, version string) error
	SetGlobal(ctx context.Context, envType, version string) error
	SetLocal(ctx context.Context, envType, version, dir string) error
	DetectProject(ctx context.Context, dir string) ([]model.DetectedVersion, error)
	VerifyInstall(ctx context.Context, envType, version string) (*model.VerifyResult, error)
}

// WslService inspects and controls WSL distributions.
type WslService interface {
	ListDistros(ctx context.Context) ([]model.Distro, error)
	Resources(ctx context.Context, name string) (*model.DistroResources, error)
	Environment(ctx context.Context, name string) ([]model.EnvPair, error)
	Exec(ctx context.Context, name, command string) (*model.ExecResult, error)
	MountDisk(ctx context.Context, name, vhdPath string) error
	ResizeDisk(ctx context.Context, name string, sizeGB int) error
	Import(ctx context.Context, name, tarPath, installDir string) error
	ExportDistro(ctx context.Context, name, tarPath string) error
	SetDefaultUser(ctx context.Context, name, user string) error
	Services(ctx context.Context, name string) ([]model.SystemdService, error)
	StartService(ctx context.Context, name, unit string) error
	StopService(ctx context.Context, name, unit string) error
	EnableService(ctx context.Context, name, unit string, enable bool) error
}

// LogService queries and manages the helper's log files.
type LogService interface {
	Query(ctx context.Context, q model.LogQuery) ([]model.LogEntry, error)
	ExportLogs(ctx context.Context, q model.LogQuery, outPath string) error
	RetentionPolicy(ctx context.Context) (*model.RetentionPolicy, error)
	SetRetentionPolicy(ctx context.Context, p model.RetentionPolicy) error
	Cleanup(ctx context.Context) (*model.CleanResult, error)
}

// SystemService covers the cross-cutting calls: self-update, platform
// info, feedback, backups and diagnostics.
type SystemService interface {
	CheckUpdate(ctx context.Context) (*model.UpdateInfo, error)
	ApplyUpdate(ctx context.Context, fn ProgressFunc) error
	PlatformInfo(ctx context.Context) (*model.PlatformInfo, error)
	SubmitFeedback(ctx context.Context, fb model.Feedback) error
	CreateBackup(ctx context.Context, outPath string) (*model.BackupManifest, error)
	RestoreBackup(ctx context.Context, path string) error
	ListBackups(ctx context.Context) ([]model.BackupManifest, error)
	ValidateBackup(ctx context.Context, path string) (*model.BackupManifest, error)
	CleanupBackups(ctx context.Context, keep int) (*model.CleanResult, error)
	ExportDiagnostics(ctx context.Context, outPath string) error
}

// Backend bundles all domain services behind one handle.
type Backend interface {
	CacheService
	EnvService
	WslService
	LogService
	SystemService
	// Available reports whether the native helper can be reached at all.
	// Views short-circuit their fetch effects when this is false and render
	// their unavailable state instead.
	Available() bool
}
