// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"testing"

	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/model"
)

func TestFeedbackSubmitSendsToBackend(t *testing.T) {
	b := setupTest(t)
	m := newFeedbackModel(b)
	m.message.SetValue("the cache view repeats entries after a clean")

	next, cmd := m.Update(key("ctrl+s"))
	m = next.(*feedbackModel)
	if !m.busy {
		t.Fatalf("busy flag not set")
	}

	msg := cmd().(feedbackSubmittedMsg)
	if msg.err != nil || msg.queued {
		t.Fatalf("msg = %+v, want direct submission", msg)
	}
	if msg.fb.Category != "bug" || msg.fb.ID == "" {
		t.Errorf("feedback = %+v", msg.fb)
	}
	if len(b.Feedbacks) != 1 {
		t.Fatalf("backend received %d reports, want 1", len(b.Feedbacks))
	}

	next, _ = m.Update(msg)
	m = next.(*feedbackModel)
	if m.message.Value() != "" {
		t.Errorf("message not cleared after submit")
	}

	// Nothing should linger in the local queue.
	pending, err := db.PendingFeedback()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("queue = %d, want empty", len(pending))
	}
}

func TestFeedbackEmptyMessageRefused(t *testing.T) {
	b := setupTest(t)
	m := newFeedbackModel(b)
	m.message.SetValue("   ")

	next, cmd := m.Update(key("ctrl+s"))
	m = next.(*feedbackModel)
	if cmd != nil || m.busy {
		t.Fatalf("empty report was submitted")
	}
	if m.status == "" {
		t.Errorf("no status for refused submission")
	}
}

func TestFeedbackQueuedWhenHelperDown(t *testing.T) {
	b := setupTest(t)
	b.SetUnavailable(true)
	m := newFeedbackModel(b)
	m.message.SetValue("wsl export hangs on large distros")
	m.category = 2 // performance

	_, cmd := m.Update(key("ctrl+s"))
	msg := cmd().(feedbackSubmittedMsg)
	if msg.err != nil || !msg.queued {
		t.Fatalf("msg = %+v, want queued report", msg)
	}

	pending, err := db.PendingFeedback()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Category != "performance" {
		t.Fatalf("pending = %+v", pending)
	}
}

func TestFeedbackFlushDrainsQueue(t *testing.T) {
	b := setupTest(t)
	for _, fb := range []model.Feedback{
		{ID: "fb-1", Category: "bug", Message: "one"},
		{ID: "fb-2", Category: "other", Message: "two"},
	} {
		if err := db.EnqueueFeedback(fb); err != nil {
			t.Fatal(err)
		}
	}
	m := newFeedbackModel(b)
	next, _ := m.Update(m.loadPendingCmd()())
	m = next.(*feedbackModel)
	if m.pendingCount != 2 {
		t.Fatalf("pendingCount = %d, want 2", m.pendingCount)
	}

	next, cmd := m.Update(key("ctrl+r"))
	m = next.(*feedbackModel)
	msg := cmd().(queueFlushedMsg)
	if msg.err != nil || msg.sent != 2 || msg.left != 0 {
		t.Fatalf("msg = %+v, want both reports sent", msg)
	}

	pending, err := db.PendingFeedback()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("queue not drained: %+v", pending)
	}
	if len(b.Feedbacks) != 2 {
		t.Errorf("backend received %d reports, want 2", len(b.Feedbacks))
	}
}

func TestFeedbackFlushRefusedWhileHelperDown(t *testing.T) {
	b := setupTest(t)
	b.SetUnavailable(true)
	if err := db.EnqueueFeedback(model.Feedback{ID: "fb-1", Category: "bug", Message: "one"}); err != nil {
		t.Fatal(err)
	}
	m := newFeedbackModel(b)
	next, _ := m.Update(m.loadPendingCmd()())
	m = next.(*feedbackModel)

	_, cmd := m.Update(key("ctrl+r"))
	msg := cmd().(queueFlushedMsg)
	if msg.err == nil || msg.left != 1 {
		t.Fatalf("msg = %+v, want refusal with the report kept", msg)
	}
}

func TestFeedbackCategoryNavigation(t *testing.T) {
	b := setupTest(t)
	m := newFeedbackModel(b)

	next, _ := m.Update(key("j"))
	m = next.(*feedbackModel)
	next, _ = m.Update(key("j"))
	m = next.(*feedbackModel)
	if feedbackCategories[m.category] != "performance" {
		t.Fatalf("category = %s, want performance", feedbackCategories[m.category])
	}
	next, _ = m.Update(key("k"))
	m = next.(*feedbackModel)
	if feedbackCategories[m.category] != "feature" {
		t.Fatalf("category = %s, want feature", feedbackCategories[m.category])
	}
}
