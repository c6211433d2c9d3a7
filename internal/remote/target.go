package remote

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"
)

// Target describes how to reach the deployment host.
type Target struct {
	// Host is host, user@host, or user@host:port.
	Host           string
	Port           int
	KeyPath        string
	Passphrase     string
	KnownHosts     string
	StrictHostKey  bool
	ConnectTimeout time.Duration
}

// Endpoint splits Host into login user and dial address. The user falls back
// to the local account name and the port to Target.Port, then 22.
func (t Target) Endpoint() (string, string, error) {
	host := strings.TrimSpace(t.Host)
	if host == "" {
		return "", "", fmt.Errorf("remote host is empty")
	}

	login := ""
	if at := strings.LastIndex(host, "@"); at >= 0 {
		login = host[:at]
		host = host[at+1:]
	}
	if login == "" {
		login = localUser()
	}

	port := t.Port
	if h, p, err := net.SplitHostPort(host); err == nil {
		n, convErr := strconv.Atoi(p)
		if convErr != nil {
			return "", "", fmt.Errorf("remote port %q: %w", p, convErr)
		}
		host, port = h, n
	}
	if port <= 0 {
		port = 22
	}
	if host == "" {
		return "", "", fmt.Errorf("remote host %q has no hostname", t.Host)
	}
	return login, net.JoinHostPort(host, strconv.Itoa(port)), nil
}

func localUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "root"
}
