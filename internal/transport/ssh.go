// Package transport opens the single SSH connection to the OLT and exposes
// its interactive shell as a raw byte stream. It is adapted from
// BaseCLIDriver.Connect in the teacher's cli package, extended with the
// legacy key-exchange/cipher set older OLT firmwares require and a
// keepalive ticker.
package transport

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// ReadyTimeout bounds how long Dial waits for the TCP connection to be
// established; the SSH handshake and authentication that follow are not
// bounded by it.
const ReadyTimeout = 30 * time.Second

// KeepaliveInterval is how often a keepalive request is sent once connected.
const KeepaliveInterval = 10 * time.Second

// legacyKeyExchanges and legacyCiphers replace the default golang.org/x/crypto/ssh
// negotiation set so that older MA5801 firmware, which only speaks
// group-exchange/group14/group1 KEX and CBC/CTR AES or 3DES, can still
// negotiate a session. The defaults are not kept alongside them:
// curve25519/ECDH key exchange and GCM/ChaCha20 ciphers are not offered. Fewer algorithms are fine if a probe already
// succeeded; this list is the maximal set, not a requirement to use all of it.
var legacyKeyExchanges = []string{
	"diffie-hellman-group-exchange-sha256",
	"diffie-hellman-group14-sha256",
	"diffie-hellman-group14-sha1",
	"diffie-hellman-group-exchange-sha1",
	"diffie-hellman-group1-sha1",
}

var legacyCiphers = []string{
	"aes128-ctr", "aes192-ctr", "aes256-ctr",
	"aes128-cbc", "aes192-cbc", "aes256-cbc",
	"3des-cbc",
}

// Config holds the parameters needed to dial the OLT.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Session wraps a dialed SSH client plus its interactive shell pipes.
type Session struct {
	client  *ssh.Client
	sshSess *ssh.Session
	Stdin   io.WriteCloser
	Stdout  *bufio.Reader

	stopKeepalive chan struct{}
}

// Dial opens the TCP connection, negotiates SSH (offering only the legacy
// algorithm set above), requests a vt100 PTY, and starts an
// interactive shell. The caller owns Session and must call Close.
func Dial(cfg Config) (*Session, error) {
	sshConfig := &ssh.ClientConfig{
		User: cfg.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(cfg.Password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         ReadyTimeout,
		Config: ssh.Config{
			KeyExchanges: legacyKeyExchanges,
			Ciphers:      legacyCiphers,
		},
	}

	addr := net.JoinHostPort(cfg.Host, portString(cfg.Port))
	client, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return nil, &TransportError{Kind: classifyDialErrorKind(err), Host: cfg.Host, Port: cfg.Port, Cause: err}
	}

	sess, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ssh session: %w", err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := sess.RequestPty("vt100", 200, 80, modes); err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("request pty: %w", err)
	}

	stdin, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := sess.Shell(); err != nil {
		sess.Close()
		client.Close()
		return nil, fmt.Errorf("start shell: %w", err)
	}

	s := &Session{
		client:        client,
		sshSess:       sess,
		Stdin:         stdin,
		Stdout:        bufio.NewReaderSize(stdout, 64*1024),
		stopKeepalive: make(chan struct{}),
	}
	go s.keepaliveLoop()
	return s, nil
}

func (s *Session) keepaliveLoop() {
	ticker := time.NewTicker(KeepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_, _, err := s.client.SendRequest("keepalive@ma5801-olt-manager", true, nil)
			if err != nil {
				return
			}
		case <-s.stopKeepalive:
			return
		}
	}
}

// Close tears down the shell and the underlying connection.
func (s *Session) Close() error {
	close(s.stopKeepalive)
	var firstErr error
	if s.sshSess != nil {
		if err := s.sshSess.Close(); err != nil && err != io.EOF {
			firstErr = err
		}
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// TransportError surfaces connection, handshake, or authentication failures
// that happen before a shell is usable (spec taxonomy: TransportError).
type TransportError struct {
	Kind  string // "unreachable" | "auth" | "timeout" | "closed"
	Host  string
	Port  int
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s to %s:%d: %v", e.Kind, e.Host, e.Port, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

func IsTransportError(err error) bool { _, ok := err.(*TransportError); return ok }

func classifyDialErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch err.(type) {
	case *net.OpError:
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return "timeout"
		}
		return "unreachable"
	}
	if _, ok := err.(*ssh.PassphraseMissingError); ok {
		return "auth"
	}
	// x/crypto/ssh reports failed auth as a plain *ssh.ExitError-less string;
	// the handshake error text is the most reliable signal available.
	msg := err.Error()
	if strings.Contains(msg, "unable to authenticate") || strings.Contains(msg, "authentication") {
		return "auth"
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return "timeout"
	}
	return "unreachable"
}

func portString(p int) string {
	if p == 0 {
		p = 22
	}
	return fmt.Sprintf("%d", p)
}
