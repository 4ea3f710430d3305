// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package native

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/devkeep/devkeep/internal/model"
)

func TestDecodeEnvelopeSuccess(t *testing.T) {
	raw := []byte(`{"ok":true,"data":{"removed":4,"freed_bytes":1048576}}`)
	var out model.CleanResult
	if err := decodeEnvelope(raw, &out); err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}
	if out.Removed != 4 || out.FreedBytes != 1048576 {
		t.Errorf("decoded %+v, want Removed=4 FreedBytes=1048576", out)
	}
}

func TestDecodeEnvelopeFailure(t *testing.T) {
	raw := []byte(`{"ok":false,"error":"cache locked by another process"}`)
	err := decodeEnvelope(raw, nil)
	if err == nil {
		t.Fatal("expected error for ok=false envelope")
	}
	if !strings.Contains(err.Error(), "cache locked") {
		t.Errorf("error %q does not carry helper message", err)
	}
}

func TestDecodeEnvelopeNilOut(t *testing.T) {
	raw := []byte(`{"ok":true,"data":{"ignored":true}}`)
	if err := decodeEnvelope(raw, nil); err != nil {
		t.Fatalf("decodeEnvelope with nil out: %v", err)
	}
}

func TestReadEventsForwardsProgressAndReturnsResult(t *testing.T) {
	stream := strings.Join([]string{
		`{"event":"progress","progress":{"stage":"download","percent":12.5}}`,
		`{"event":"progress","progress":{"stage":"download","percent":80}}`,
		`{"event":"result","ok":true,"data":{"token":"ins-1"}}`,
	}, "\n")

	var seen []model.Progress
	raw, err := readEvents(bufio.NewReader(strings.NewReader(stream)), func(p model.Progress) {
		seen = append(seen, p)
	})
	if err != nil {
		t.Fatalf("readEvents: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("forwarded %d progress events, want 2", len(seen))
	}
	if seen[1].Percent != 80 {
		t.Errorf("second progress percent = %v, want 80", seen[1].Percent)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := decodeEnvelope(raw, &out); err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}
	if out.Token != "ins-1" {
		t.Errorf("token = %q, want ins-1", out.Token)
	}
}

func TestReadEventsPlainEnvelope(t *testing.T) {
	// One-shot operations print a single bare envelope without event framing.
	raw, err := readEvents(bufio.NewReader(strings.NewReader(`{"ok":true,"data":[]}`)), nil)
	if err != nil {
		t.Fatalf("readEvents: %v", err)
	}
	if err := decodeEnvelope(raw, nil); err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}
}

func TestReadEventsEmptyStream(t *testing.T) {
	if _, err := readEvents(bufio.NewReader(strings.NewReader("")), nil); err == nil {
		t.Fatal("expected error for empty helper output")
	}
}

func TestReadEventsSkipsNoise(t *testing.T) {
	stream := "warming up...\n{\"ok\":true}\n"
	raw, err := readEvents(bufio.NewReader(strings.NewReader(stream)), nil)
	if err != nil {
		t.Fatalf("readEvents: %v", err)
	}
	if err := decodeEnvelope(raw, nil); err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}
}

func TestWriteRequestFraming(t *testing.T) {
	var buf bytes.Buffer
	if err := writeRequest(&buf, "cache.clean", struct {
		Name string `json:"name"`
	}{"pip"}); err != nil {
		t.Fatalf("writeRequest: %v", err)
	}
	got := buf.String()
	if !strings.HasSuffix(got, "\n") {
		t.Error("request frame is not newline-terminated")
	}
	if !strings.Contains(got, `"op":"cache.clean"`) || !strings.Contains(got, `"name":"pip"`) {
		t.Errorf("frame %q missing op or body", got)
	}
}

func TestNewWithExplicitPath(t *testing.T) {
	c, err := New("/opt/devkeep/devkeep-helper")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !c.Available() {
		t.Error("client with explicit helper path should be available")
	}
}
