// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package backend

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindGeneric},
		{"plain", errors.New("disk full"), KindGeneric},
		{"timeout", errors.New("request timed out after 30s"), KindTimeout},
		{"network", errors.New("network is unreachable"), KindNetwork},
		{"refused", errors.New("dial tcp: connection refused"), KindNetwork},
		{"unavailable wrapped", fmt.Errorf("listing caches: %w", ErrUnavailable), KindUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("Classify(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestDefaultRoundTrip(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	SetDefault(nil)
	if Available() {
		t.Fatal("Available() = true with nil default")
	}
}
