// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the local data access layer for Devkeep.
// This file contains the MySQL implementation of the database store.
package db // import "github.com/devkeep/devkeep/internal/db"

import (
	"time"

	"github.com/devkeep/devkeep/internal/model"
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/uptrace/bun"
)

// MySQLStore is the MySQL implementation of the Store interface. The DSN
// should include `?parseTime=true` so DATETIME columns scan correctly.
type MySQLStore struct {
	bun *bun.DB
}

func (s *MySQLStore) LogAction(action, details, outcome string) error {
	return LogActionBun(s.bun, action, details, outcome)
}

func (s *MySQLStore) GetActionLog(limit int) ([]model.ActionLogEntry, error) {
	return GetActionLogBun(s.bun, limit)
}

func (s *MySQLStore) PruneActionLog(olderThan time.Time) (int, error) {
	return PruneActionLogBun(s.bun, olderThan)
}

func (s *MySQLStore) EnqueueFeedback(f model.Feedback) error {
	return EnqueueFeedbackBun(s.bun, f)
}

func (s *MySQLStore) PendingFeedback() ([]model.Feedback, error) {
	return PendingFeedbackBun(s.bun)
}

func (s *MySQLStore) DeleteFeedback(id string) error {
	return DeleteFeedbackBun(s.bun, id)
}

func (s *MySQLStore) SaveBackupManifest(m model.BackupManifest) error {
	return SaveBackupManifestBun(s.bun, m)
}

func (s *MySQLStore) GetBackupManifests() ([]model.BackupManifest, error) {
	return GetBackupManifestsBun(s.bun)
}

func (s *MySQLStore) GetBackupManifest(id string) (*model.BackupManifest, error) {
	return GetBackupManifestBun(s.bun, id)
}

func (s *MySQLStore) DeleteBackupManifest(id string) error {
	return DeleteBackupManifestBun(s.bun, id)
}

func (s *MySQLStore) SetSetting(key, value string) error {
	return SetSettingBun(s.bun, key, value)
}

func (s *MySQLStore) GetSetting(key string) (string, error) {
	return GetSettingBun(s.bun, key)
}

func (s *MySQLStore) AllSettings() (map[string]string, error) {
	return AllSettingsBun(s.bun)
}

func (s *MySQLStore) GetKnownHostKey(hostname string) (string, error) {
	return GetKnownHostKeyBun(s.bun, hostname)
}

func (s *MySQLStore) AddKnownHostKey(hostname, key string) error {
	return AddKnownHostKeyBun(s.bun, hostname, key)
}
