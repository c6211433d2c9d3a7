package remote_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh/knownhosts"

	"newsctl/internal/remote"
	"newsctl/internal/testsupport"
)

func TestDialWithKnownHosts(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	t.Setenv("HOME", t.TempDir())
	srv := testsupport.StartSSHServer(t)
	known := srv.WriteKnownHosts(t, t.TempDir())

	client, err := remote.Dial(context.Background(), remote.Target{
		Host:           "deployer@" + srv.Host,
		Port:           srv.Port,
		KnownHosts:     known,
		StrictHostKey:  true,
		ConnectTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	defer client.Close()
	require.Equal(t, "deployer", client.User())
}

func TestDialRejectsUnknownHostKey(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	t.Setenv("HOME", t.TempDir())
	srv := testsupport.StartSSHServer(t)
	other := testsupport.StartSSHServer(t)

	// Pin another server's key to srv's address.
	forged := filepath.Join(t.TempDir(), "known_hosts")
	line := knownhosts.Line([]string{knownhosts.Normalize(srv.Addr())}, other.HostKey)
	require.NoError(t, os.WriteFile(forged, []byte(line+"\n"), 0o600))

	_, err := remote.Dial(context.Background(), remote.Target{
		Host:           "deployer@" + srv.Host,
		Port:           srv.Port,
		KnownHosts:     forged,
		StrictHostKey:  true,
		ConnectTimeout: 3 * time.Second,
	})
	require.Error(t, err)
}

func TestDialStrictWithoutKnownHostsFile(t *testing.T) {
	_, err := remote.Dial(context.Background(), remote.Target{
		Host:          "deployer@127.0.0.1",
		Port:          1,
		KnownHosts:    filepath.Join(t.TempDir(), "missing"),
		StrictHostKey: true,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "known_hosts file not found")
}

func TestDialConnectionRefused(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	_, err := remote.Dial(context.Background(), remote.Target{
		Host:           "deployer@127.0.0.1",
		Port:           1,
		ConnectTimeout: time.Second,
	})
	require.Error(t, err)
}

func TestLoadSigner(t *testing.T) {
	dir := t.TempDir()
	_, err := remote.LoadSigner(filepath.Join(dir, "missing"), "")
	require.Error(t, err)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	plain := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	path := filepath.Join(dir, "id_rsa")
	require.NoError(t, os.WriteFile(path, plain, 0o600))

	signer, err := remote.LoadSigner(path, "")
	require.NoError(t, err)
	require.NotNil(t, signer.PublicKey())

	block, err := x509.EncryptPEMBlock(rand.Reader, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key), []byte("pp"), x509.PEMCipherAES256) //nolint:staticcheck
	require.NoError(t, err)
	encPath := filepath.Join(dir, "id_rsa_enc")
	require.NoError(t, os.WriteFile(encPath, pem.EncodeToMemory(block), 0o600))

	_, err = remote.LoadSigner(encPath, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "encrypted")

	signer, err = remote.LoadSigner(encPath, "pp")
	require.NoError(t, err)
	require.NotNil(t, signer)
}
