// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"time"

	"github.com/devkeep/devkeep/internal/model"
)

// Store defines the interface for Devkeep's local database. The local store
// holds frontend-owned state only: the action log, queued feedback, backup
// manifests, persisted settings, and pinned host keys for remote backup
// targets. All cache/environment/WSL state lives with the native helper and
// is never persisted here.
type Store interface {
	// Action log methods
	LogAction(action, details, outcome string) error
	GetActionLog(limit int) ([]model.ActionLogEntry, error)
	PruneActionLog(olderThan time.Time) (int, error)

	// Feedback queue methods
	EnqueueFeedback(f model.Feedback) error
	PendingFeedback() ([]model.Feedback, error)
	DeleteFeedback(id string) error

	// Backup manifest methods
	SaveBackupManifest(m model.BackupManifest) error
	GetBackupManifests() ([]model.BackupManifest, error)
	GetBackupManifest(id string) (*model.BackupManifest, error)
	DeleteBackupManifest(id string) error

	// Settings methods
	SetSetting(key, value string) error
	GetSetting(key string) (string, error)
	AllSettings() (map[string]string, error)

	// Host key methods for remote backup targets
	GetKnownHostKey(hostname string) (string, error)
	AddKnownHostKey(hostname, key string) error
}
