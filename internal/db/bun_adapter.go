// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/devkeep/devkeep/internal/model"
	"github.com/uptrace/bun"
)

// ActionLogModel is the Bun mapping for the action_log table.
type ActionLogModel struct {
	bun.BaseModel `bun:"table:action_log"`
	ID            int    `bun:"id,pk,autoincrement"`
	Timestamp     string `bun:"timestamp"`
	Action        string `bun:"action"`
	Details       string `bun:"details"`
	Outcome       string `bun:"outcome"`
}

// FeedbackModel is the Bun mapping for the feedback_queue table.
type FeedbackModel struct {
	bun.BaseModel `bun:"table:feedback_queue"`
	ID            string    `bun:"id,pk"`
	Category      string    `bun:"category"`
	Message       string    `bun:"message"`
	Contact       string    `bun:"contact"`
	QueuedAt      time.Time `bun:"queued_at"`
}

// BackupManifestModel is the Bun mapping for the backup_manifests table.
// Contents is stored as a JSON array of top-level archive entries.
type BackupManifestModel struct {
	bun.BaseModel `bun:"table:backup_manifests"`
	ID            string    `bun:"id,pk"`
	Path          string    `bun:"path"`
	CreatedAt     time.Time `bun:"created_at"`
	SizeBytes     int64     `bun:"size_bytes"`
	Contents      string    `bun:"contents"`
	Valid         bool      `bun:"valid"`
}

// SettingModel is the Bun mapping for the settings table.
type SettingModel struct {
	bun.BaseModel `bun:"table:settings"`
	Key           string `bun:"key,pk"`
	Value         string `bun:"value"`
}

// HostKeyModel is the Bun mapping for the known_host_keys table.
type HostKeyModel struct {
	bun.BaseModel `bun:"table:known_host_keys"`
	Hostname      string `bun:"hostname,pk"`
	HostKey       string `bun:"host_key"`
}

// LogActionBun inserts an action log entry. Timestamps are stored as RFC3339
// UTC strings so retention comparisons stay portable across dialects.
func LogActionBun(bdb *bun.DB, action, details, outcome string) error {
	ctx := context.Background()
	_, err := ExecRaw(ctx, bdb, "INSERT INTO action_log (timestamp, action, details, outcome) VALUES (?, ?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), action, details, outcome)
	return MapDBError(err)
}

// GetActionLogBun retrieves action log entries ordered newest first. A limit
// of 0 means no limit.
func GetActionLogBun(bdb *bun.DB, limit int) ([]model.ActionLogEntry, error) {
	ctx := context.Background()
	var am []ActionLogModel
	q := bdb.NewSelect().Model(&am).OrderExpr("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.ActionLogEntry, 0, len(am))
	for _, a := range am {
		out = append(out, model.ActionLogEntry{ID: a.ID, Timestamp: a.Timestamp, Action: a.Action, Details: a.Details, Outcome: a.Outcome})
	}
	return out, nil
}

// PruneActionLogBun deletes entries older than the cutoff and returns the
// number of rows removed.
func PruneActionLogBun(bdb *bun.DB, olderThan time.Time) (int, error) {
	ctx := context.Background()
	res, err := ExecRaw(ctx, bdb, "DELETE FROM action_log WHERE timestamp < ?", olderThan.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// EnqueueFeedbackBun stores a feedback report in the submission queue.
func EnqueueFeedbackBun(bdb *bun.DB, f model.Feedback) error {
	ctx := context.Background()
	_, err := bdb.NewInsert().Model(&FeedbackModel{
		ID:       f.ID,
		Category: f.Category,
		Message:  f.Message,
		Contact:  f.Contact,
		QueuedAt: time.Now().UTC(),
	}).Exec(ctx)
	return MapDBError(err)
}

// PendingFeedbackBun returns queued feedback in submission order.
func PendingFeedbackBun(bdb *bun.DB) ([]model.Feedback, error) {
	ctx := context.Background()
	var fm []FeedbackModel
	if err := bdb.NewSelect().Model(&fm).OrderExpr("queued_at ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Feedback, 0, len(fm))
	for _, f := range fm {
		out = append(out, model.Feedback{ID: f.ID, Category: f.Category, Message: f.Message, Contact: f.Contact})
	}
	return out, nil
}

// DeleteFeedbackBun removes a queued feedback report by ID.
func DeleteFeedbackBun(bdb *bun.DB, id string) error {
	ctx := context.Background()
	_, err := bdb.NewDelete().Model((*FeedbackModel)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

// SaveBackupManifestBun records a backup manifest, replacing any existing
// record with the same ID.
func SaveBackupManifestBun(bdb *bun.DB, m model.BackupManifest) error {
	ctx := context.Background()
	contents, err := json.Marshal(m.Contents)
	if err != nil {
		return err
	}
	return bdb.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Delete-then-insert keeps the upsert portable across dialects.
		if _, err := tx.NewDelete().Model((*BackupManifestModel)(nil)).Where("id = ?", m.ID).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&BackupManifestModel{
			ID:        m.ID,
			Path:      m.Path,
			CreatedAt: m.CreatedAt.UTC(),
			SizeBytes: m.SizeBytes,
			Contents:  string(contents),
			Valid:     m.Valid,
		}).Exec(ctx)
		return MapDBError(err)
	})
}

// GetBackupManifestsBun returns all manifests, newest first.
func GetBackupManifestsBun(bdb *bun.DB) ([]model.BackupManifest, error) {
	ctx := context.Background()
	var bm []BackupManifestModel
	if err := bdb.NewSelect().Model(&bm).OrderExpr("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.BackupManifest, 0, len(bm))
	for _, b := range bm {
		out = append(out, backupManifestModelToModel(b))
	}
	return out, nil
}

// GetBackupManifestBun retrieves a single manifest, or nil when not found.
func GetBackupManifestBun(bdb *bun.DB, id string) (*model.BackupManifest, error) {
	ctx := context.Background()
	var b BackupManifestModel
	err := bdb.NewSelect().Model(&b).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	m := backupManifestModelToModel(b)
	return &m, nil
}

// DeleteBackupManifestBun removes a manifest record by ID.
func DeleteBackupManifestBun(bdb *bun.DB, id string) error {
	ctx := context.Background()
	_, err := bdb.NewDelete().Model((*BackupManifestModel)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

func backupManifestModelToModel(b BackupManifestModel) model.BackupManifest {
	var contents []string
	if b.Contents != "" {
		// Tolerate malformed rows; a manifest without contents is still usable.
		_ = json.Unmarshal([]byte(b.Contents), &contents)
	}
	return model.BackupManifest{
		ID:        b.ID,
		Path:      b.Path,
		CreatedAt: b.CreatedAt,
		SizeBytes: b.SizeBytes,
		Contents:  contents,
		Valid:     b.Valid,
	}
}

// SetSettingBun persists a setting, replacing any prior value.
func SetSettingBun(bdb *bun.DB, key, value string) error {
	ctx := context.Background()
	return bdb.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*SettingModel)(nil)).Where("key = ?", key).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&SettingModel{Key: key, Value: value}).Exec(ctx)
		return MapDBError(err)
	})
}

// GetSettingBun returns a setting value, or "" when the key is unset.
func GetSettingBun(bdb *bun.DB, key string) (string, error) {
	ctx := context.Background()
	var s SettingModel
	err := bdb.NewSelect().Model(&s).Where("key = ?", key).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return s.Value, nil
}

// AllSettingsBun returns every persisted setting.
func AllSettingsBun(bdb *bun.DB) (map[string]string, error) {
	ctx := context.Background()
	var sm []SettingModel
	if err := bdb.NewSelect().Model(&sm).Scan(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(sm))
	for _, s := range sm {
		out[s.Key] = s.Value
	}
	return out, nil
}

// GetKnownHostKeyBun returns the pinned key for a host, or "" if unknown.
func GetKnownHostKeyBun(bdb *bun.DB, hostname string) (string, error) {
	ctx := context.Background()
	var hk HostKeyModel
	err := bdb.NewSelect().Model(&hk).Where("hostname = ?", hostname).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return hk.HostKey, nil
}

// AddKnownHostKeyBun pins a host key, replacing any existing pin.
func AddKnownHostKeyBun(bdb *bun.DB, hostname, key string) error {
	ctx := context.Background()
	return bdb.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*HostKeyModel)(nil)).Where("hostname = ?", hostname).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&HostKeyModel{Hostname: hostname, HostKey: key}).Exec(ctx)
		return MapDBError(err)
	})
}
