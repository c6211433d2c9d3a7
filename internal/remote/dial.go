package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

const defaultConnectTimeout = 15 * time.Second

var defaultIdentityFiles = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// Dial connects and authenticates to the target. Authentication tries the
// configured key, the ssh-agent at SSH_AUTH_SOCK, and finally the default
// identity files under ~/.ssh when no key is configured.
func Dial(ctx context.Context, target Target) (*ssh.Client, error) {
	login, addr, err := target.Endpoint()
	if err != nil {
		return nil, err
	}

	auths, err := authMethods(target)
	if err != nil {
		return nil, err
	}
	hostKeyCB, err := hostKeyCallback(target)
	if err != nil {
		return nil, err
	}

	timeout := target.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	cfg := &ssh.ClientConfig{
		User:            login,
		Auth:            auths,
		HostKeyCallback: hostKeyCB,
		Timeout:         timeout,
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	// The handshake has no timeout of its own.
	_ = conn.SetDeadline(time.Now().Add(timeout))
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Time{})
	return ssh.NewClient(c, chans, reqs), nil
}

func authMethods(target Target) ([]ssh.AuthMethod, error) {
	var auths []ssh.AuthMethod

	if target.KeyPath != "" {
		signer, err := LoadSigner(target.KeyPath, target.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("load key: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			ag := agent.NewClient(conn)
			auths = append(auths, ssh.PublicKeysCallback(ag.Signers))
		}
	}

	if target.KeyPath == "" {
		if signers := defaultSigners(); len(signers) > 0 {
			auths = append(auths, ssh.PublicKeys(signers...))
		}
	}
	return auths, nil
}

func defaultSigners() []ssh.Signer {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	var signers []ssh.Signer
	for _, name := range defaultIdentityFiles {
		signer, err := LoadSigner(filepath.Join(home, ".ssh", name), "")
		if err != nil {
			continue
		}
		signers = append(signers, signer)
	}
	return signers
}

func hostKeyCallback(target Target) (ssh.HostKeyCallback, error) {
	if !target.StrictHostKey {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec
	}
	if _, err := os.Stat(target.KnownHosts); err != nil {
		return nil, fmt.Errorf("known_hosts file not found at %s and strict host key checking is enabled", target.KnownHosts)
	}
	cb, err := knownhosts.New(target.KnownHosts)
	if err != nil {
		return nil, fmt.Errorf("known_hosts: %w", err)
	}
	return cb, nil
}

// LoadSigner reads a private key, decrypting it when passphrase is set.
func LoadSigner(path, passphrase string) (ssh.Signer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(b, []byte(passphrase))
	}
	s, err := ssh.ParsePrivateKey(b)
	if err == nil {
		return s, nil
	}
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) {
		return nil, fmt.Errorf("private key %s is encrypted; load it into ssh-agent instead", path)
	}
	return nil, err
}
