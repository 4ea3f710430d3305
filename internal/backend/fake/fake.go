// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// package fake provides an in-memory backend used by tests and by demo
// mode. Behavior is deliberately simple: data lives in slices guarded by a
// mutex, mutating calls edit them in place, and every method can be forced
// to fail through the Fail map.
package fake

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devkeep/devkeep/internal/model"

	"github.com/devkeep/devkeep/internal/backend"
)

// Backend is the in-memory implementation. The zero value is usable but
// empty; NewSeeded returns one populated with demo data.
type Backend struct {
	mu sync.Mutex

	ToolCaches []model.ToolCache
	Entries    []model.CacheEntry
	Types      []model.EnvType
	Providers  []model.EnvProvider
	Versions   []model.EnvVersion
	Detected   []model.DetectedVersion
	Distros    []model.Distro
	Res        map[string]model.DistroResources
	Units      map[string][]model.SystemdService
	Logs       []model.LogEntry
	Policy     model.RetentionPolicy
	Backups    []model.BackupManifest
	Update     model.UpdateInfo
	Platform   model.PlatformInfo
	Feedbacks  []model.Feedback

	// Fail forces the named operation (e.g. "cache.list") to return an
	// error. Used by UI tests to exercise failure paths.
	Fail map[string]error

	// Calls records the operations invoked, in order.
	Calls []string

	// LastBatch records the identifier set of the most recent batch call.
	LastBatch []string

	installTokens int
	cancelled     map[string]bool
	unavailable   bool
}

var _ backend.Backend = (*Backend)(nil)

// New returns an empty fake backend.
func New() *Backend {
	return &Backend{
		Res:       map[string]model.DistroResources{},
		Units:     map[string][]model.SystemdService{},
		Fail:      map[string]error{},
		cancelled: map[string]bool{},
	}
}

// NewSeeded returns a fake backend populated with plausible demo data.
func NewSeeded() *Backend {
	b := New()
	now := time.Now()
	b.ToolCaches = []model.ToolCache{
		{Name: "pip", Tool: "pip", Path: "~/.cache/pip", SizeBytes: 512 << 20, EntryCount: 1204, LastUsedAt: now.Add(-2 * time.Hour)},
		{Name: "npm", Tool: "npm", Path: "~/.npm", SizeBytes: 1 << 30, EntryCount: 6381, LastUsedAt: now.Add(-26 * time.Hour)},
		{Name: "cargo", Tool: "cargo", Path: "~/.cargo/registry", SizeBytes: 3 << 30, EntryCount: 947, LastUsedAt: now.Add(-90 * time.Hour)},
	}
	for i := 0; i < 24; i++ {
		kind := model.CacheKindDownload
		if i%3 == 0 {
			kind = model.CacheKindMetadata
		}
		b.Entries = append(b.Entries, model.CacheEntry{
			ID:         fmt.Sprintf("entry-%02d", i),
			Kind:       kind,
			Name:       fmt.Sprintf("package-%02d.tar.gz", i),
			Path:       fmt.Sprintf("~/.devkeep/cache/package-%02d.tar.gz", i),
			SizeBytes:  int64((i + 1)) * 3 << 20,
			CreatedAt:  now.Add(-time.Duration(i*7) * time.Hour),
			LastUsedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	b.Types = []model.EnvType{
		{Name: "python", Display: "Python", Installed: 2},
		{Name: "node", Display: "Node.js", Installed: 1},
		{Name: "go", Display: "Go", Installed: 1},
	}
	b.Providers = []model.EnvProvider{
		{Name: "official", EnvType: "python", Default: true},
		{Name: "pyenv", EnvType: "python"},
		{Name: "official", EnvType: "node", Default: true},
	}
	b.Versions = []model.EnvVersion{
		{EnvType: "python", Version: "3.12.4", Provider: "official", Installed: true, Global: true, Path: "~/.devkeep/envs/python/3.12.4"},
		{EnvType: "python", Version: "3.11.9", Provider: "official", Installed: true},
		{EnvType: "python", Version: "3.13.0", Provider: "official"},
		{EnvType: "node", Version: "22.6.0", Provider: "official", Installed: true, Global: true},
		{EnvType: "node", Version: "20.16.0", Provider: "official"},
		{EnvType: "go", Version: "1.25.1", Provider: "official", Installed: true, Global: true},
	}
	b.Detected = []model.DetectedVersion{
		{EnvType: "python", Constraint: ">=3.11", Source: "pyproject.toml", Satisfied: true},
		{EnvType: "node", Constraint: "22.x", Source: ".nvmrc", Satisfied: true},
	}
	b.Distros = []model.Distro{
		{Name: "Ubuntu-24.04", State: model.DistroRunning, Version: 2, Default: true},
		{Name: "Debian", State: model.DistroStopped, Version: 2},
	}
	b.Res["Ubuntu-24.04"] = model.DistroResources{
		CPUPercent: 3.5, MemoryUsed: 900 << 20, MemoryTotal: 8 << 30,
		DiskUsed: 11 << 30, DiskTotal: 256 << 30, ProcessCount: 34,
		UptimeSeconds: 86400, KernelVersion: "5.15.167.4-microsoft-standard-WSL2",
		DefaultUser: "dev", SystemdEnabled: true,
	}
	b.Units["Ubuntu-24.04"] = []model.SystemdService{
		{Unit: "docker.service", Description: "Docker Application Container Engine", Active: true, Enabled: true},
		{Unit: "cron.service", Description: "Regular background program processing daemon", Active: true, Enabled: true},
		{Unit: "postgresql.service", Description: "PostgreSQL RDBMS", Active: false, Enabled: false},
	}
	levels := []model.LogLevel{model.LevelDebug, model.LevelInfo, model.LevelWarn, model.LevelError}
	for i := 0; i < 40; i++ {
		b.Logs = append(b.Logs, model.LogEntry{
			Timestamp: now.Add(-time.Duration(i) * time.Minute),
			Level:     levels[i%len(levels)],
			Source:    "helper",
			Message:   fmt.Sprintf("operation %d completed", i),
		})
	}
	b.Policy = model.RetentionPolicy{MaxAgeDays: 14, MaxSizeMB: 64, MaxFiles: 5, AutoCleanup: true}
	b.Backups = []model.BackupManifest{
		{ID: "bk-1", Path: "~/.devkeep/backups/2026-08-01.dkbak", CreatedAt: now.AddDate(0, 0, -29), SizeBytes: 4 << 20, Contents: []string{"settings", "envs"}, Valid: true},
	}
	b.Update = model.UpdateInfo{CurrentVersion: "1.4.0", LatestVersion: "1.5.2", Available: true, ReleaseNotes: "WSL disk resize fixes"}
	b.Platform = model.PlatformInfo{OS: "linux", Arch: "amd64", Hostname: "devbox", WSLAvailable: true, HelperPath: "/usr/local/bin/devkeep-helper", HelperVer: "1.4.0"}
	return b
}

// SetUnavailable flips the Available() result, simulating a missing helper.
func (b *Backend) SetUnavailable(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unavailable = v
}

func (b *Backend) Available() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.unavailable
}

// check records the call and returns the injected failure, if any.
func (b *Backend) check(op string) error {
	b.Calls = append(b.Calls, op)
	if err := b.Fail[op]; err != nil {
		return err
	}
	if b.unavailable {
		return backend.ErrUnavailable
	}
	return nil
}

// --- CacheService ---

func (b *Backend) DiscoverToolCaches(ctx context.Context) ([]model.ToolCache, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("cache.discover"); err != nil {
		return nil, err
	}
	return append([]model.ToolCache(nil), b.ToolCaches...), nil
}

func (b *Backend) ListEntries(ctx context.Context, q model.CacheQuery) (*model.CachePage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("cache.list"); err != nil {
		return nil, err
	}

	var filtered []model.CacheEntry
	needle := strings.ToLower(q.Search)
	for _, e := range b.Entries {
		if q.Kind != "" && e.Kind != q.Kind {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(e.Name), needle) {
			continue
		}
		filtered = append(filtered, e)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		var less bool
		switch q.SortBy {
		case "size":
			less = filtered[i].SizeBytes < filtered[j].SizeBytes
		case "used":
			less = filtered[i].LastUsedAt.Before(filtered[j].LastUsedAt)
		default:
			less = filtered[i].Name < filtered[j].Name
		}
		if q.SortDesc {
			return !less
		}
		return less
	})

	page := &model.CachePage{Total: len(filtered)}
	for _, e := range filtered {
		page.TotalSize += e.SizeBytes
	}
	start := q.Offset
	if start > len(filtered) {
		start = len(filtered)
	}
	end := len(filtered)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	page.Entries = append([]model.CacheEntry(nil), filtered[start:end]...)
	return page, nil
}

func (b *Backend) Clean(ctx context.Context, name string) (*model.CleanResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("cache.clean"); err != nil {
		return nil, err
	}
	for i, tc := range b.ToolCaches {
		if tc.Name == name {
			res := &model.CleanResult{Removed: tc.EntryCount, FreedBytes: tc.SizeBytes}
			b.ToolCaches[i].SizeBytes = 0
			b.ToolCaches[i].EntryCount = 0
			return res, nil
		}
	}
	return nil, fmt.Errorf("unknown cache: %s", name)
}

func (b *Backend) CleanAll(ctx context.Context) (*model.CleanResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("cache.clean_all"); err != nil {
		return nil, err
	}
	var res model.CleanResult
	for i := range b.ToolCaches {
		res.Removed += b.ToolCaches[i].EntryCount
		res.FreedBytes += b.ToolCaches[i].SizeBytes
		b.ToolCaches[i].SizeBytes = 0
		b.ToolCaches[i].EntryCount = 0
	}
	for _, e := range b.Entries {
		res.Removed++
		res.FreedBytes += e.SizeBytes
	}
	b.Entries = nil
	return &res, nil
}

func (b *Backend) Verify(ctx context.Context, name string) (*model.VerifyResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("cache.verify"); err != nil {
		return nil, err
	}
	return &model.VerifyResult{Checked: len(b.Entries)}, nil
}

func (b *Backend) DeleteEntry(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("cache.delete"); err != nil {
		return err
	}
	for i, e := range b.Entries {
		if e.ID == id {
			b.Entries = append(b.Entries[:i], b.Entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no such entry: %s", id)
}

func (b *Backend) DeleteEntries(ctx context.Context, ids []string) (*model.BatchResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("cache.delete_batch"); err != nil {
		return nil, err
	}
	b.LastBatch = append([]string(nil), ids...)
	var res model.BatchResult
	for _, id := range ids {
		found := false
		for i, e := range b.Entries {
			if e.ID == id {
				b.Entries = append(b.Entries[:i], b.Entries[i+1:]...)
				found = true
				break
			}
		}
		if found {
			res.Succeeded++
		} else {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: not found", id))
		}
	}
	return &res, nil
}

// --- EnvService ---

func (b *Backend) ListTypes(ctx context.Context) ([]model.EnvType, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("env.types"); err != nil {
		return nil, err
	}
	return append([]model.EnvType(nil), b.Types...), nil
}

func (b *Backend) ListProviders(ctx context.Context, envType string) ([]model.EnvProvider, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("env.providers"); err != nil {
		return nil, err
	}
	var out []model.EnvProvider
	for _, p := range b.Providers {
		if p.EnvType == envType {
			out = append(out, p)
		}
	}
	return out, nil
}

func (b *Backend) ListVersions(ctx context.Context, envType string) ([]model.EnvVersion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("env.versions"); err != nil {
		return nil, err
	}
	var out []model.EnvVersion
	for _, v := range b.Versions {
		if v.EnvType == envType {
			out = append(out, v)
		}
	}
	return out, nil
}

func (b *Backend) Install(ctx context.Context, envType, version string, fn backend.ProgressFunc) (string, error) {
	b.mu.Lock()
	if err := b.check("env.install"); err != nil {
		b.mu.Unlock()
		return "", err
	}
	b.installTokens++
	token := fmt.Sprintf("install-%d", b.installTokens)
	b.mu.Unlock()

	// Synchronous fake install: emit a couple of progress events, then
	// mark the version installed.
	if fn != nil {
		fn(model.Progress{Stage: "download", Percent: 50})
		fn(model.Progress{Stage: "install", Percent: 100})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancelled[token] {
		return token, backend.ErrCancelled
	}
	for i, v := range b.Versions {
		if v.EnvType == envType && v.Version == version {
			b.Versions[i].Installed = true
			return token, nil
		}
	}
	b.Versions = append(b.Versions, model.EnvVersion{EnvType: envType, Version: version, Installed: true})
	return token, nil
}

func (b *Backend) CancelInstall(ctx context.Context, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("env.cancel_install"); err != nil {
		return err
	}
	b.cancelled[token] = true
	return nil
}

func (b *Backend) Uninstall(ctx context.Context, envType, version string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("env.uninstall"); err != nil {
		return err
	}
	for i, v := range b.Versions {
		if v.EnvType == envType && v.Version == version && v.Installed {
			b.Versions[i].Installed = false
			b.Versions[i].Global = false
			return nil
		}
	}
	return fmt.Errorf("%s@%s is not installed", envType, version)
}

func (b *Backend) SetGlobal(ctx context.Context, envType, version string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("env.set_global"); err != nil {
		return err
	}
	found := false
	for i, v := range b.Versions {
		if v.EnvType != envType {
			continue
		}
		if v.Version == version {
			if !v.Installed {
				return fmt.Errorf("%s@%s is not installed", envType, version)
			}
			b.Versions[i].Global = true
			found = true
		} else {
			b.Versions[i].Global = false
		}
	}
	if !found {
		return fmt.Errorf("unknown version %s@%s", envType, version)
	}
	return nil
}

func (b *Backend) SetLocal(ctx context.Context, envType, version, dir string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.check("env.set_local")
}

func (b *Backend) DetectProject(ctx context.Context, dir string) ([]model.DetectedVersion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("env.detect"); err != nil {
		return nil, err
	}
	return append([]model.DetectedVersion(nil), b.Detected...), nil
}

func (b *Backend) VerifyInstall(ctx context.Context, envType, version string) (*model.VerifyResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("env.verify"); err != nil {
		return nil, err
	}
	return &model.VerifyResult{Checked: 1}, nil
}

// --- WslService ---

func (b *Backend) ListDistros(ctx context.Context) ([]model.Distro, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("wsl.list"); err != nil {
		return nil, err
	}
	return append([]model.Distro(nil), b.Distros...), nil
}

func (b *Backend) Resources(ctx context.Context, name string) (*model.DistroResources, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("wsl.resources"); err != nil {
		return nil, err
	}
	r, ok := b.Res[name]
	if !ok {
		return nil, fmt.Errorf("no such distro: %s", name)
	}
	return &r, nil
}

func (b *Backend) Environment(ctx context.Context, name string) ([]model.EnvPair, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("wsl.environment"); err != nil {
		return nil, err
	}
	return []model.EnvPair{{Key: "PATH", Value: "/usr/local/bin:/usr/bin"}, {Key: "WSL_DISTRO_NAME", Value: name}}, nil
}

func (b *Backend) Exec(ctx context.Context, name, command string) (*model.ExecResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("wsl.exec"); err != nil {
		return nil, err
	}
	return &model.ExecResult{Stdout: fmt.Sprintf("(%s) %s: ok\n", name, command)}, nil
}

func (b *Backend) MountDisk(ctx context.Context, name, vhdPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.check("wsl.mount")
}

func (b *Backend) ResizeDisk(ctx context.Context, name string, sizeGB int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("wsl.resize"); err != nil {
		return err
	}
	r := b.Res[name]
	r.DiskTotal = int64(sizeGB) << 30
	b.Res[name] = r
	return nil
}

func (b *Backend) Import(ctx context.Context, name, tarPath, installDir string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("wsl.import"); err != nil {
		return err
	}
	b.Distros = append(b.Distros, model.Distro{Name: name, State: model.DistroStopped, Version: 2})
	return nil
}

func (b *Backend) ExportDistro(ctx context.Context, name, tarPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.check("wsl.export")
}

func (b *Backend) SetDefaultUser(ctx context.Context, name, user string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("wsl.set_default_user"); err != nil {
		return err
	}
	r := b.Res[name]
	r.DefaultUser = user
	b.Res[name] = r
	return nil
}

func (b *Backend) Services(ctx context.Context, name string) ([]model.SystemdService, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("wsl.services"); err != nil {
		return nil, err
	}
	return append([]model.SystemdService(nil), b.Units[name]...), nil
}

func (b *Backend) StartService(ctx context.Context, name, unit string) error {
	return b.setServiceActive(name, unit, "wsl.service_start", true)
}

func (b *Backend) StopService(ctx context.Context, name, unit string) error {
	return b.setServiceActive(name, unit, "wsl.service_stop", false)
}

func (b *Backend) EnableService(ctx context.Context, name, unit string, enable bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("wsl.service_enable"); err != nil {
		return err
	}
	for i, s := range b.Units[name] {
		if s.Unit == unit {
			b.Units[name][i].Enabled = enable
			return nil
		}
	}
	return fmt.Errorf("no such unit: %s", unit)
}

func (b *Backend) setServiceActive(name, unit, op string, active bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(op); err != nil {
		return err
	}
	for i, s := range b.Units[name] {
		if s.Unit == unit {
			b.Units[name][i].Active = active
			return nil
		}
	}
	return fmt.Errorf("no such unit: %s", unit)
}

// --- LogService ---

func (b *Backend) Query(ctx context.Context, q model.LogQuery) ([]model.LogEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("logs.query"); err != nil {
		return nil, err
	}
	levelOK := func(l model.LogLevel) bool {
		if len(q.Levels) == 0 {
			return true
		}
		for _, want := range q.Levels {
			if l == want {
				return true
			}
		}
		return false
	}
	var out []model.LogEntry
	for _, e := range b.Logs {
		if !levelOK(e.Level) {
			continue
		}
		if !q.Since.IsZero() && e.Timestamp.Before(q.Since) {
			continue
		}
		if !q.Until.IsZero() && e.Timestamp.After(q.Until) {
			continue
		}
		if q.Pattern != "" && !strings.Contains(e.Message, q.Pattern) {
			continue
		}
		out = append(out, e)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func (b *Backend) ExportLogs(ctx context.Context, q model.LogQuery, outPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.check("logs.export")
}

func (b *Backend) RetentionPolicy(ctx context.Context) (*model.RetentionPolicy, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("logs.retention"); err != nil {
		return nil, err
	}
	p := b.Policy
	return &p, nil
}

func (b *Backend) SetRetentionPolicy(ctx context.Context, p model.RetentionPolicy) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("logs.set_retention"); err != nil {
		return err
	}
	b.Policy = p
	return nil
}

func (b *Backend) Cleanup(ctx context.Context) (*model.CleanResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("logs.cleanup"); err != nil {
		return nil, err
	}
	removed := len(b.Logs) / 2
	b.Logs = b.Logs[:len(b.Logs)-removed]
	return &model.CleanResult{Removed: removed}, nil
}

// --- SystemService ---

func (b *Backend) CheckUpdate(ctx context.Context) (*model.UpdateInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("system.check_update"); err != nil {
		return nil, err
	}
	u := b.Update
	return &u, nil
}

func (b *Backend) ApplyUpdate(ctx context.Context, fn backend.ProgressFunc) error {
	b.mu.Lock()
	if err := b.check("system.apply_update"); err != nil {
		b.mu.Unlock()
		return err
	}
	b.mu.Unlock()
	if fn != nil {
		fn(model.Progress{Stage: "download", Percent: 40})
		fn(model.Progress{Stage: "verify", Percent: 70})
		fn(model.Progress{Stage: "swap", Percent: 100})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Update.CurrentVersion = b.Update.LatestVersion
	b.Update.Available = false
	return nil
}

func (b *Backend) PlatformInfo(ctx context.Context) (*model.PlatformInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("system.platform"); err != nil {
		return nil, err
	}
	p := b.Platform
	return &p, nil
}

func (b *Backend) SubmitFeedback(ctx context.Context, fb model.Feedback) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("system.feedback"); err != nil {
		return err
	}
	b.Feedbacks = append(b.Feedbacks, fb)
	return nil
}

func (b *Backend) CreateBackup(ctx context.Context, outPath string) (*model.BackupManifest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("backup.create"); err != nil {
		return nil, err
	}
	m := model.BackupManifest{
		ID:        fmt.Sprintf("bk-%d", len(b.Backups)+1),
		Path:      outPath,
		CreatedAt: time.Now(),
		SizeBytes: 4 << 20,
		Contents:  []string{"settings", "envs"},
		Valid:     true,
	}
	b.Backups = append(b.Backups, m)
	return &m, nil
}

func (b *Backend) RestoreBackup(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.check("backup.restore")
}

func (b *Backend) ListBackups(ctx context.Context) ([]model.BackupManifest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("backup.list"); err != nil {
		return nil, err
	}
	return append([]model.BackupManifest(nil), b.Backups...), nil
}

func (b *Backend) ValidateBackup(ctx context.Context, path string) (*model.BackupManifest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("backup.validate"); err != nil {
		return nil, err
	}
	for _, m := range b.Backups {
		if m.Path == path {
			cp := m
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("no manifest for %s", path)
}

func (b *Backend) CleanupBackups(ctx context.Context, keep int) (*model.CleanResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check("backup.cleanup"); err != nil {
		return nil, err
	}
	var res model.CleanResult
	if keep >= 0 && len(b.Backups) > keep {
		for _, m := range b.Backups[:len(b.Backups)-keep] {
			res.Removed++
			res.FreedBytes += m.SizeBytes
		}
		b.Backups = b.Backups[len(b.Backups)-keep:]
	}
	return &res, nil
}

func (b *Backend) ExportDiagnostics(ctx context.Context, outPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.check("system.diagnostics")
}
