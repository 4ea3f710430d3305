// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the local data access layer for Devkeep.
// This file contains the PostgreSQL implementation of the database store.
package db // import "github.com/devkeep/devkeep/internal/db"

import (
	"time"

	"github.com/devkeep/devkeep/internal/model"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/uptrace/bun"
)

// PostgresStore is the PostgreSQL implementation of the Store interface.
type PostgresStore struct {
	bun *bun.DB
}

func (s *PostgresStore) LogAction(action, details, outcome string) error {
	return LogActionBun(s.bun, action, details, outcome)
}

func (s *PostgresStore) GetActionLog(limit int) ([]model.ActionLogEntry, error) {
	return GetActionLogBun(s.bun, limit)
}

func (s *PostgresStore) PruneActionLog(olderThan time.Time) (int, error) {
	return PruneActionLogBun(s.bun, olderThan)
}

func (s *PostgresStore) EnqueueFeedback(f model.Feedback) error {
	return EnqueueFeedbackBun(s.bun, f)
}

func (s *PostgresStore) PendingFeedback() ([]model.Feedback, error) {
	return PendingFeedbackBun(s.bun)
}

func (s *PostgresStore) DeleteFeedback(id string) error {
	return DeleteFeedbackBun(s.bun, id)
}

func (s *PostgresStore) SaveBackupManifest(m model.BackupManifest) error {
	return SaveBackupManifestBun(s.bun, m)
}

func (s *PostgresStore) GetBackupManifests() ([]model.BackupManifest, error) {
	return GetBackupManifestsBun(s.bun)
}

func (s *PostgresStore) GetBackupManifest(id string) (*model.BackupManifest, error) {
	return GetBackupManifestBun(s.bun, id)
}

func (s *PostgresStore) DeleteBackupManifest(id string) error {
	return DeleteBackupManifestBun(s.bun, id)
}

func (s *PostgresStore) SetSetting(key, value string) error {
	return SetSettingBun(s.bun, key, value)
}

func (s *PostgresStore) GetSetting(key string) (string, error) {
	return GetSettingBun(s.bun, key)
}

func (s *PostgresStore) AllSettings() (map[string]string, error) {
	return AllSettingsBun(s.bun)
}

func (s *PostgresStore) GetKnownHostKey(hostname string) (string, error) {
	return GetKnownHostKeyBun(s.bun, hostname)
}

func (s *PostgresStore) AddKnownHostKey(hostname, key string) error {
	return AddKnownHostKeyBun(s.bun, hostname, key)
}
