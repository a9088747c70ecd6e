package cliengine

import (
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher serializes command: string requests onto a single shared
// shell byte stream and resolves each with its complete output. It is
// adapted from ExpectSession.Execute in the teacher's cli package,
// rebuilt around an explicit FIFO queue and settle timer because the
// spec requires serialized futures over one shell rather than one
// goroutine making one blocking call at a time.
type Dispatcher struct {
	stdin  io.Writer
	prompt *regexp.Regexp
	log    zerolog.Logger

	chunks <-chan []byte
	reqs   chan *request

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// CommandTimeout is the per-command deadline after which the dispatcher
// resolves the future with whatever text has accumulated (spec §4.C).
const CommandTimeout = 15 * time.Second

// SettleWindow is how long the dispatcher waits after seeing a clean
// prompt before delivering the buffered output, absorbing trailing output
// some firmwares emit after the prompt line.
const SettleWindow = 800 * time.Millisecond

// cleanPromptRE matches a trailing clean prompt line: "hostname#",
// "hostname>", or a mode-qualified variant like "hostname(config)#" /
// "hostname(config-if-gpon-0/1)#".
var cleanPromptRE = regexp.MustCompile(`[\r\n]([A-Za-z0-9_\-\.]+(\([^)]*\))?[#>])[ \t]*$`)

// paramCompletionRE matches the literal Huawei parameter-completion
// sub-prompt that must never be treated as command completion.
var paramCompletionRE = regexp.MustCompile(`\{\s*<cr>\|\|<K>\s*\}\s*:\s*$`)

var pagerMarkers = []string{"---- More", "--More--"}

// passwordArgRE matches a "password <value>" argument pair so the value
// is masked in any command text the dispatcher logs.
var passwordArgRE = regexp.MustCompile(`(?i)(password\s+)\S+`)

type request struct {
	command  string
	resultCh chan result
}

type result struct {
	output string
	err    error
}

// NewDispatcher starts the dispatcher's run loop draining the request
// queue one at a time. chunks is the session's single stdout reader,
// handed off by a streamRouter (or scripted directly by a test) — the
// Dispatcher never reads the transport itself, so it never competes with
// any other phase for the underlying stream.
func NewDispatcher(stdin io.Writer, chunks <-chan []byte, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		stdin:  stdin,
		prompt: cleanPromptRE,
		log:    log,
		chunks: chunks,
		reqs:   make(chan *request),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Execute enqueues command and blocks until the dispatcher resolves it.
// Returns *TimeoutError (with the partial buffer) when no clean prompt
// appears within CommandTimeout, *CancelledError if the shell was torn
// down first, or *CliError if the device's reply looks like a rejection.
func (d *Dispatcher) Execute(command string) (string, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return "", &CancelledError{}
	}
	d.mu.Unlock()

	req := &request{command: command, resultCh: make(chan result, 1)}
	select {
	case d.reqs <- req:
	case <-d.done:
		return "", &CancelledError{}
	}

	r := <-req.resultCh
	return r.output, r.err
}

// Close tears down the dispatcher, resolving every queued and in-flight
// future with CancelledError. Subsequent Execute calls fail immediately.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()
	close(d.done)
}

func (d *Dispatcher) run() {
	for {
		select {
		case req := <-d.reqs:
			out, err := d.executeOne(req.command)
			req.resultCh <- result{output: out, err: err}
		case <-d.done:
			d.drain()
			return
		}
	}
}

// drain resolves any request still arriving after shutdown with
// CancelledError, until the request channel itself is abandoned by GC.
func (d *Dispatcher) drain() {
	for {
		select {
		case req := <-d.reqs:
			req.resultCh <- result{err: &CancelledError{}}
		default:
			return
		}
	}
}

func (d *Dispatcher) executeOne(command string) (string, error) {
	select {
	case <-d.done:
		return "", &CancelledError{}
	default:
	}
	if _, err := d.stdin.Write([]byte(command + "\r\n")); err != nil {
		return "", &DisconnectedError{Reason: err.Error()}
	}

	var buf strings.Builder
	deadline := time.NewTimer(CommandTimeout)
	defer deadline.Stop()

	var settle *time.Timer
	var settleC <-chan time.Time

	for {
		select {
		case chunk, ok := <-d.chunks:
			if !ok {
				return buf.String(), &DisconnectedError{Reason: "stdout closed"}
			}
			text := string(chunk)
			text, sawPager := absorbPager(text)
			if sawPager {
				d.send(" ")
			}
			text, sawParam := absorbParamCompletion(text)
			if sawParam {
				d.send("\n")
			}
			buf.WriteString(text)

			if isCleanCompletion(buf.String()) {
				if settle == nil {
					settle = time.NewTimer(SettleWindow)
					settleC = settle.C
				} else {
					if !settle.Stop() {
						<-settle.C
					}
					settle.Reset(SettleWindow)
				}
			} else if settle != nil {
				settle.Stop()
				settle = nil
				settleC = nil
			}

		case <-settleC:
			output := cleanEcho(buf.String(), command)
			if looksLikeCliError(output) {
				return output, &CliError{Command: command, Output: output}
			}
			return output, nil

		case <-d.done:
			return cleanEcho(buf.String(), command), &CancelledError{}

		case <-deadline.C:
			d.log.Warn().Str("command", passwordArgRE.ReplaceAllString(command, "${1}***")).Msg("dispatcher: command timed out, no clean prompt")
			return cleanEcho(buf.String(), command), &TimeoutError{Command: command, After: CommandTimeout.String()}
		}
	}
}

func (d *Dispatcher) send(s string) {
	_, _ = d.stdin.Write([]byte(s))
}

// absorbPager strips pager markers from text and reports whether one was
// found, so the caller can send a single SPACE to page through.
func absorbPager(text string) (string, bool) {
	found := false
	for _, marker := range pagerMarkers {
		for strings.Contains(text, marker) {
			idx := strings.Index(text, marker)
			end := idx + len(marker)
			// Huawei appends a parenthetical like "( Press 'Q' to break )"
			// after the bare marker; drop the remainder of that line too.
			if nl := strings.IndexAny(text[end:], "\r\n"); nl >= 0 {
				end += nl
			} else {
				end = len(text)
			}
			text = text[:idx] + text[end:]
			found = true
		}
	}
	return text, found
}

// absorbParamCompletion strips a trailing parameter-completion sub-prompt
// and reports whether it was present. This must never be mistaken for a
// clean prompt.
func absorbParamCompletion(text string) (string, bool) {
	if paramCompletionRE.MatchString(text) {
		return paramCompletionRE.ReplaceAllString(text, ""), true
	}
	return text, false
}

// isCleanCompletion reports whether buffer ends in a clean prompt line
// that is not itself a parameter-completion sub-prompt.
func isCleanCompletion(buffer string) bool {
	if paramCompletionRE.MatchString(buffer) {
		return false
	}
	return cleanPromptRE.MatchString(buffer)
}

func cleanEcho(buffer, command string) string {
	lines := strings.Split(buffer, "\n")
	if len(lines) > 0 && strings.Contains(lines[0], command) {
		lines = lines[1:]
	}
	out := strings.Join(lines, "\n")
	// Drop the trailing prompt line itself.
	if loc := cleanPromptRE.FindStringIndex(out); loc != nil {
		out = out[:loc[0]]
	}
	return strings.TrimRight(out, "\r\n \t")
}

func looksLikeCliError(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "unknown command") || strings.Contains(lower, "error:") ||
		strings.Contains(lower, "% invalid") || strings.Contains(lower, "incomplete command")
}
