package cliengine

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nanoncore/ma5801-olt-manager/internal/transport"
)

// bannerPromptRE matches the unprivileged prompt the device greets with,
// e.g. "MA5801>" (spec §4.B: `hostname[>#]\s*$`).
var bannerPromptRE = regexp.MustCompile(`(?m)[\r\n][A-Za-z0-9_\-\.]+[>#][ \t]*$`)

// DialSettle is the minimum settling pause between staircase steps.
const DialSettle = 2 * time.Second

// dialReadyTimeout bounds waiting for the banner prompt after PTY setup.
const dialReadyTimeout = 20 * time.Second

// Session bundles a live transport connection, its command Dispatcher, and
// the shell's current mode, per the state machine in spec §9.
type Session struct {
	tr         *transport.Session
	router     *streamRouter
	Dispatcher *Dispatcher
	state      ShellState
	port       string
	log        zerolog.Logger
}

// Connect dials the OLT, walks the login → enable → (display vlan all) →
// config mode staircase described in spec §4.B, and returns a ready
// Session plus the VLAN output captured along the way (used by the Fetch
// Orchestrator as its first VLAN sample, since `display vlan all` refuses
// to run inside config mode on some firmwares).
func Connect(cfg transport.Config, log zerolog.Logger) (*Session, string, error) {
	tr, err := transport.Dial(cfg)
	if err != nil {
		return nil, "", err
	}

	s := &Session{tr: tr, router: newStreamRouter(tr.Stdout), state: StateConnecting, log: log}

	if _, err := s.readSettled(bannerPromptRE, dialReadyTimeout); err != nil {
		tr.Close()
		return nil, "", &transport.TransportError{Kind: "timeout", Host: cfg.Host, Port: cfg.Port, Cause: err}
	}

	if err := s.stepSettle("enable"); err != nil {
		tr.Close()
		return nil, "", err
	}
	s.state = StatePrivileged

	vlanOutput, err := s.stepCapture("display vlan all")
	if err != nil {
		tr.Close()
		return nil, "", err
	}

	if err := s.stepSettle("config"); err != nil {
		tr.Close()
		return nil, "", err
	}
	s.state = StateConfig

	s.Dispatcher = NewDispatcher(tr.Stdin, s.router.activate(), log)
	return s, vlanOutput, nil
}

// State reports the session's current position on the mode staircase.
func (s *Session) State() ShellState { return s.state }

// EnterInterface transitions into `interface gpon <F/S>` and records the
// new state so callers can compose port-scoped commands. No-op if already
// in that interface.
func (s *Session) EnterInterface(fs string) error {
	if s.state == StateInInterface && s.port == fs {
		return nil
	}
	if _, err := s.Dispatcher.Execute(fmt.Sprintf("interface gpon %s", fs)); err != nil {
		return err
	}
	s.state = StateInInterface
	s.port = fs
	return nil
}

// LeaveInterface returns to config mode via `quit`.
func (s *Session) LeaveInterface() error {
	if s.state != StateInInterface {
		return nil
	}
	if _, err := s.Dispatcher.Execute("quit"); err != nil {
		return err
	}
	s.state = StateConfig
	s.port = ""
	return nil
}

// QuitConfig returns to privileged mode via `quit`, the counterpart to
// EnterInterface/LeaveInterface one level up the staircase. Used when a
// command refuses to run from config mode on some firmwares (spec
// §4.B/§4.E name `display vlan all` as one such command).
func (s *Session) QuitConfig() error {
	if s.state != StateConfig {
		return nil
	}
	if _, err := s.Dispatcher.Execute("quit"); err != nil {
		return err
	}
	s.state = StatePrivileged
	return nil
}

// EnterConfig re-enters config mode via `config`, restoring the
// invariant that the session rests in config mode between operations.
func (s *Session) EnterConfig() error {
	if s.state == StateConfig {
		return nil
	}
	if _, err := s.Dispatcher.Execute("config"); err != nil {
		return err
	}
	s.state = StateConfig
	return nil
}

// Execute runs a single command through the Dispatcher.
func (s *Session) Execute(command string) (string, error) {
	return s.Dispatcher.Execute(command)
}

// Close tears down the dispatcher and the underlying transport, resolving
// any outstanding futures with CancelledError and marking the session
// disconnected.
func (s *Session) Close() error {
	if s.Dispatcher != nil {
		s.Dispatcher.Close()
	}
	s.state = StateDisconnected
	return s.tr.Close()
}

// stepSettle sends command and waits DialSettle with no further data,
// matching the staircase's "settling pause" requirement.
func (s *Session) stepSettle(command string) error {
	if _, err := s.tr.Stdin.Write([]byte(command + "\r\n")); err != nil {
		return &DisconnectedError{Reason: err.Error()}
	}
	_, err := s.readSettled(nil, DialSettle*3)
	return err
}

// stepCapture sends command and returns its full output, used for the
// opportunistic `display vlan all` capture before entering config mode.
func (s *Session) stepCapture(command string) (string, error) {
	if _, err := s.tr.Stdin.Write([]byte(command + "\r\n")); err != nil {
		return "", &DisconnectedError{Reason: err.Error()}
	}
	return s.readSettled(nil, DialSettle*3)
}

// readSettled accumulates chunks from the session's stream router and
// returns once DialSettle passes with no new data after promptRE has
// matched the buffer (or, when promptRE is nil, after any data at all has
// arrived). It fails if that has not happened within maxWait. It activates itself
// as the router's current sink, so it never races the Dispatcher (or a
// prior dial step) for bytes off the shared stream.
func (s *Session) readSettled(promptRE *regexp.Regexp, maxWait time.Duration) (string, error) {
	chunks := s.router.activate()

	var buf strings.Builder
	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()
	var settle *time.Timer
	var settleC <-chan time.Time

	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				return buf.String(), &DisconnectedError{Reason: "stdout closed during dial"}
			}
			buf.Write(chunk)
			matched := promptRE == nil || promptRE.MatchString(buf.String())
			if matched {
				if settle == nil {
					settle = time.NewTimer(DialSettle)
					settleC = settle.C
				} else {
					if !settle.Stop() {
						<-settle.C
					}
					settle.Reset(DialSettle)
				}
			}
		case <-settleC:
			return buf.String(), nil
		case <-deadline.C:
			return buf.String(), fmt.Errorf("no settled response within %s", maxWait)
		}
	}
}
