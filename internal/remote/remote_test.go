// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package remote

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/devkeep/devkeep/internal/db"
	"golang.org/x/crypto/ssh"
)

func testPublicKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("wrap key: %v", err)
	}
	return sshPub
}

func marshalAuthorized(k ssh.PublicKey) []byte {
	return ssh.MarshalAuthorizedKey(k)
}

func TestCanonicalAddr(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"backup.example.com", "backup.example.com:22"},
		{"backup.example.com:2222", "backup.example.com:2222"},
		{"10.0.0.5", "10.0.0.5:22"},
		{"10.0.0.5:22", "10.0.0.5:22"},
	}
	for _, c := range cases {
		if got := canonicalAddr(c.in); got != c.want {
			t.Errorf("canonicalAddr(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPinnedHostKeyCallbackUnknownHost(t *testing.T) {
	if _, err := db.New("sqlite", ":memory:"); err != nil {
		t.Fatalf("db.New: %v", err)
	}

	err := pinnedHostKeyCallback("fresh.example.com:22", nil, testPublicKey(t))
	if err == nil {
		t.Fatal("expected error for unpinned host")
	}
	if !strings.Contains(err.Error(), "trust-host") {
		t.Errorf("error should point at trust-host, got: %v", err)
	}
}

func TestPinnedHostKeyCallbackMatchAndMismatch(t *testing.T) {
	if _, err := db.New("sqlite", ":memory:"); err != nil {
		t.Fatalf("db.New: %v", err)
	}

	key := testPublicKey(t)
	pinned := string(marshalAuthorized(key))
	if err := db.AddKnownHostKey("pinned.example.com", pinned); err != nil {
		t.Fatalf("AddKnownHostKey: %v", err)
	}

	if err := pinnedHostKeyCallback("pinned.example.com:22", nil, key); err != nil {
		t.Errorf("expected pinned key to be accepted, got: %v", err)
	}

	if err := db.AddKnownHostKey("pinned.example.com", "ssh-ed25519 DIFFERENT"); err != nil {
		t.Fatalf("AddKnownHostKey: %v", err)
	}
	err := pinnedHostKeyCallback("pinned.example.com:22", nil, key)
	if err == nil || !strings.Contains(err.Error(), "MISMATCH") {
		t.Errorf("expected mismatch error, got: %v", err)
	}
}
