// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// package native implements the backend contract by invoking the
// devkeep-helper binary. Each call is one helper invocation with a JSON
// request on stdin and a JSON response envelope on stdout; long-running
// operations stream newline-delimited progress events before the final
// envelope. When a resident helper session is listening on the local
// socket (named pipe on Windows), calls go through it instead of spawning
// a fresh process.
package native

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/logging"
	"github.com/devkeep/devkeep/internal/model"
)

// HelperName is the binary the client looks for on PATH when no explicit
// path is configured.
const HelperName = "devkeep-helper"

// Client talks to the native helper. It is safe for concurrent use; each
// call spawns its own helper invocation or session round trip.
type Client struct {
	helperPath string
}

// New locates the helper binary and returns a client, or an error when
// the helper is not installed. Pass an empty path to search PATH.
func New(helperPath string) (*Client, error) {
	if helperPath == "" {
		p, err := exec.LookPath(HelperName)
		if err != nil {
			return nil, fmt.Errorf("%w: %s not found in PATH", backend.ErrUnavailable, HelperName)
		}
		helperPath = p
	}
	return &Client{helperPath: helperPath}, nil
}

// Available reports whether the helper binary is reachable.
func (c *Client) Available() bool {
	return c != nil && c.helperPath != ""
}

// envelope is the uniform response wrapper the helper writes as its final
// output line.
type envelope struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// event is one streamed line during a long-running operation. Lines with
// Event == "progress" carry a progress payload; the line with
// Event == "result" is the final envelope.
type event struct {
	Event    string          `json:"event"`
	Progress *model.Progress `json:"progress,omitempty"`
	OK       bool            `json:"ok"`
	Error    string          `json:"error,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// invoke runs one helper operation and decodes the response data into out
// (out may be nil for operations without a result payload).
func (c *Client) invoke(ctx context.Context, op string, req, out any) error {
	if !c.Available() {
		return backend.ErrUnavailable
	}
	raw, err := c.roundTrip(ctx, op, req, nil)
	if err != nil {
		return err
	}
	return decodeEnvelope(raw, out)
}

// stream runs one long-running helper operation, forwarding progress
// events to fn until the final envelope arrives.
func (c *Client) stream(ctx context.Context, op string, req any, fn backend.ProgressFunc, out any) error {
	if !c.Available() {
		return backend.ErrUnavailable
	}
	raw, err := c.roundTrip(ctx, op, req, fn)
	if err != nil {
		return err
	}
	return decodeEnvelope(raw, out)
}

// roundTrip prefers the resident session and falls back to a one-shot
// helper process. It returns the raw final envelope line.
func (c *Client) roundTrip(ctx context.Context, op string, req any, fn backend.ProgressFunc) ([]byte, error) {
	if conn, err := dialSession(ctx); err == nil {
		defer conn.Close()
		if err := writeRequest(conn, op, req); err != nil {
			return nil, fmt.Errorf("helper session write: %w", err)
		}
		return readEvents(bufio.NewReader(conn), fn)
	}
	return c.execOnce(ctx, op, req, fn)
}

// execOnce spawns the helper for a single operation.
func (c *Client) execOnce(ctx context.Context, op string, req any, fn backend.ProgressFunc) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.helperPath, op, "--json")
	if req != nil {
		body, err := json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("encode request for %s: %w", op, err)
		}
		cmd.Stdin = bytes.NewReader(body)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start helper: %w", err)
	}

	raw, readErr := readEvents(bufio.NewReader(stdout), fn)
	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return nil, backend.ErrCancelled
	}
	if readErr != nil {
		return nil, readErr
	}
	if waitErr != nil {
		// The helper exits non-zero on failure but still writes an error
		// envelope; prefer that message when we have it.
		if len(raw) > 0 {
			return raw, nil
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = waitErr.Error()
		}
		return nil, fmt.Errorf("helper %s: %s", op, msg)
	}
	return raw, nil
}

// writeRequest frames one session request as a single JSON line.
func writeRequest(w io.Writer, op string, req any) error {
	frame := struct {
		Op   string `json:"op"`
		Body any    `json:"body,omitempty"`
	}{Op: op, Body: req}
	line, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = w.Write(line)
	return err
}

// readEvents consumes streamed lines until the final envelope. Plain
// (non-event) envelopes are returned as-is, so one-shot operations that
// print a single JSON document work unchanged.
func readEvents(r *bufio.Reader, fn backend.ProgressFunc) ([]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var last []byte
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev event
		if err := json.Unmarshal(line, &ev); err != nil {
			logging.Debugf("skipping unparseable helper line: %s", line)
			continue
		}
		switch ev.Event {
		case "progress":
			if fn != nil && ev.Progress != nil {
				fn(*ev.Progress)
			}
		default:
			// "result" events and bare envelopes both end up here.
			last = append([]byte(nil), line...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read helper output: %w", err)
	}
	if last == nil {
		return nil, fmt.Errorf("helper produced no response")
	}
	return last, nil
}

// decodeEnvelope unwraps a final envelope line into out.
func decodeEnvelope(raw []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode helper response: %w", err)
	}
	if !env.OK {
		if env.Error == "" {
			return fmt.Errorf("helper reported failure")
		}
		return fmt.Errorf("%s", env.Error)
	}
	if out == nil || env.Data == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode helper payload: %w", err)
	}
	return nil
}
