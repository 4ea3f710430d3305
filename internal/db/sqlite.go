// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the local data access layer for Devkeep.
// This file contains the SQLite implementation of the database store.
package db // import "github.com/devkeep/devkeep/internal/db"

import (
	"time"

	"github.com/devkeep/devkeep/internal/model"
	"github.com/uptrace/bun"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SqliteStore is the SQLite implementation of the Store interface.
type SqliteStore struct {
	bun *bun.DB
}

func (s *SqliteStore) LogAction(action, details, outcome string) error {
	return LogActionBun(s.bun, action, details, outcome)
}

func (s *SqliteStore) GetActionLog(limit int) ([]model.ActionLogEntry, error) {
	return GetActionLogBun(s.bun, limit)
}

func (s *SqliteStore) PruneActionLog(olderThan time.Time) (int, error) {
	return PruneActionLogBun(s.bun, olderThan)
}

func (s *SqliteStore) EnqueueFeedback(f model.Feedback) error {
	return EnqueueFeedbackBun(s.bun, f)
}

func (s *SqliteStore) PendingFeedback() ([]model.Feedback, error) {
	return PendingFeedbackBun(s.bun)
}

func (s *SqliteStore) DeleteFeedback(id string) error {
	return DeleteFeedbackBun(s.bun, id)
}

func (s *SqliteStore) SaveBackupManifest(m model.BackupManifest) error {
	return SaveBackupManifestBun(s.bun, m)
}

func (s *SqliteStore) GetBackupManifests() ([]model.BackupManifest, error) {
	return GetBackupManifestsBun(s.bun)
}

func (s *SqliteStore) GetBackupManifest(id string) (*model.BackupManifest, error) {
	return GetBackupManifestBun(s.bun, id)
}

func (s *SqliteStore) DeleteBackupManifest(id string) error {
	return DeleteBackupManifestBun(s.bun, id)
}

func (s *SqliteStore) SetSetting(key, value string) error {
	return SetSettingBun(s.bun, key, value)
}

func (s *SqliteStore) GetSetting(key string) (string, error) {
	return GetSettingBun(s.bun, key)
}

func (s *SqliteStore) AllSettings() (map[string]string, error) {
	return AllSettingsBun(s.bun)
}

func (s *SqliteStore) GetKnownHostKey(hostname string) (string, error) {
	return GetKnownHostKeyBun(s.bun, hostname)
}

func (s *SqliteStore) AddKnownHostKey(hostname, key string) error {
	return AddKnownHostKeyBun(s.bun, hostname, key)
}
