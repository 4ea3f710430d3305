// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/i18n"
	"golang.org/x/term"
)

// requireBackend returns the configured backend or an error suitable for
// direct return from a RunE.
func requireBackend() (backend.Backend, error) {
	b := backend.Default()
	if b == nil || !b.Available() {
		return nil, fmt.Errorf("%s", i18n.T("backend.unavailable"))
	}
	return b, nil
}

// promptForConfirmation asks a yes/no question on the terminal and returns
// the trimmed, lower-cased answer. A non-interactive stdin counts as "no";
// scripts pass -y instead.
func promptForConfirmation(prompt string) string {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ""
	}
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(answer))
}

// humanBytes renders a byte count with a binary unit suffix.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
