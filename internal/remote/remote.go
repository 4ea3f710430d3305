// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// Package remote pushes and pulls backup archives to an off-machine SFTP
// target. Host keys are pinned on first trust in the local store; a key
// mismatch aborts the connection.
package remote

import (
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/devkeep/devkeep/internal/db"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Client wraps an SSH connection with an SFTP session for backup transfer.
type Client struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

// BackupFile describes one archive found in the remote backup directory.
type BackupFile struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// canonicalAddr adds the default SSH port when the host has none.
func canonicalAddr(host string) string {
	if _, _, err := net.SplitHostPort(host); err != nil {
		return net.JoinHostPort(host, "22")
	}
	return host
}

// pinnedHostKeyCallback validates the presented host key against the pin
// stored in the local database.
func pinnedHostKeyCallback(hostname string, remote net.Addr, key ssh.PublicKey) error {
	// The hostname passed to the callback can include the port; strip it so
	// the database lookup matches what the user configured.
	host, _, err := net.SplitHostPort(hostname)
	if err != nil {
		host = hostname
	}

	presentedKey := string(ssh.MarshalAuthorizedKey(key))

	knownKey, err := db.GetKnownHostKey(host)
	if err != nil {
		return fmt.Errorf("failed to query known host keys: %w", err)
	}
	if knownKey == "" {
		return fmt.Errorf("unknown host key for %s. run 'devkeep backup trust-host' to add it", host)
	}
	if knownKey != presentedKey {
		return fmt.Errorf("!!! HOST KEY MISMATCH FOR %s !!!\nRemote key presented: %s\nThis could be a man-in-the-middle attack", host, presentedKey)
	}
	return nil
}

// Dial opens an SSH+SFTP session to the backup target, authenticating with
// the configured private key file. There is no agent fallback; the key file
// is the single supported credential.
func Dial(host, user, keyFile string) (*Client, error) {
	if keyFile == "" {
		return nil, fmt.Errorf("no private key file configured for remote backups")
	}
	keyData, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read private key file: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("unable to parse private key: %w", err)
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: pinnedHostKeyCallback,
		Timeout:         10 * time.Second,
	}

	sshClient, err := ssh.Dial("tcp", canonicalAddr(host), config)
	if err != nil {
		return nil, fmt.Errorf("connection to backup target failed: %w", err)
	}
	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, fmt.Errorf("failed to create sftp client: %w", err)
	}
	return &Client{ssh: sshClient, sftp: sftpClient}, nil
}

// Close closes the underlying SSH and SFTP clients.
func (c *Client) Close() {
	if c.sftp != nil {
		_ = c.sftp.Close()
	}
	if c.ssh != nil {
		_ = c.ssh.Close()
	}
}

// Push uploads a local backup archive into the remote backup directory.
// The upload goes to a temporary name and is renamed into place so a
// half-written archive never shadows a good one.
func (c *Client) Push(localPath, remoteDir string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local archive: %w", err)
	}
	defer func() { _ = src.Close() }()

	_ = c.sftp.MkdirAll(remoteDir)

	name := filepath.Base(localPath)
	tmpPath := path.Join(remoteDir, fmt.Sprintf(".%s.devkeep.%d", name, time.Now().UnixNano()))
	dst, err := c.sftp.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file on remote: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = c.sftp.Remove(tmpPath)
		return fmt.Errorf("failed to write archive to remote: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = c.sftp.Remove(tmpPath)
		return fmt.Errorf("failed to finalize remote upload: %w", err)
	}

	finalPath := path.Join(remoteDir, name)
	if err := c.sftp.Rename(tmpPath, finalPath); err != nil {
		_ = c.sftp.Remove(tmpPath)
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	return nil
}

// Pull downloads a named archive from the remote backup directory.
func (c *Client) Pull(remoteDir, name, localPath string) error {
	src, err := c.sftp.Open(path.Join(remoteDir, name))
	if err != nil {
		return fmt.Errorf("failed to open remote archive %s: %w", name, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to download archive: %w", err)
	}
	return nil
}

// List returns the backup archives present in the remote directory, newest
// first. In-flight temporary uploads are skipped.
func (c *Client) List(remoteDir string) ([]BackupFile, error) {
	infos, err := c.sftp.ReadDir(remoteDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote backup directory: %w", err)
	}
	out := make([]BackupFile, 0, len(infos))
	for _, fi := range infos {
		if fi.IsDir() || strings.HasPrefix(fi.Name(), ".") {
			continue
		}
		out = append(out, BackupFile{Name: fi.Name(), Size: fi.Size(), ModTime: fi.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModTime.After(out[j].ModTime) })
	return out, nil
}

// FetchHostKey connects to a host just to retrieve its public key, returned
// in authorized-keys format ready for pinning.
func FetchHostKey(host string) (string, error) {
	keyChan := make(chan ssh.PublicKey, 1)
	const sentinel = "devkeep: successfully retrieved host key"

	config := &ssh.ClientConfig{
		// No authentication needed; the handshake alone yields the key.
		User: "devkeep-probe",
		HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			keyChan <- key
			// Returning an error stops the handshake once we have the key.
			return fmt.Errorf("%s", sentinel)
		},
		Timeout: 5 * time.Second,
	}

	_, err := ssh.Dial("tcp", canonicalAddr(host), config)
	if err != nil {
		if strings.Contains(err.Error(), sentinel) {
			return string(ssh.MarshalAuthorizedKey(<-keyChan)), nil
		}
		return "", fmt.Errorf("failed to connect to %s: %w", host, err)
	}
	return "", fmt.Errorf("ssh dial succeeded unexpectedly, could not retrieve key")
}
