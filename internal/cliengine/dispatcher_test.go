package cliengine

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// scriptedStdin captures every write the Dispatcher makes to the shell's
// stdin and publishes each on a channel so a test driver goroutine can
// script the next canned response, mirroring how the teacher's
// driver_test.go scripts a fake shell for BaseCLIDriver.
type scriptedStdin struct {
	writes chan string
}

func newScriptedStdin() *scriptedStdin {
	return &scriptedStdin{writes: make(chan string, 64)}
}

func (s *scriptedStdin) Write(p []byte) (int, error) {
	s.writes <- string(p)
	return len(p), nil
}

// TestDispatcherPagerAbsorption is worked scenario 5 from spec §8: 300
// lines interrupted by pager markers every 22 lines must come back
// concatenated with no marker text.
func TestDispatcherPagerAbsorption(t *testing.T) {
	stdin := newScriptedStdin()
	chunks := make(chan []byte, 64)
	d := NewDispatcher(stdin, chunks, zerolog.Nop())
	defer d.Close()

	var lines []string
	for i := 1; i <= 300; i++ {
		lines = append(lines, fmt.Sprintf("line %03d", i))
		if i%22 == 0 && i != 300 {
			lines = append(lines, "---- More ( Press 'Q' to break ) ----")
		}
	}
	body := strings.Join(lines, "\n")

	go func() {
		<-stdin.writes
		chunks <- []byte("display something\n" + body)
		chunks <- []byte("\nMA5801#")
	}()

	start := time.Now()
	out, err := d.Execute("display something")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Execute() took %s, want within 5s", elapsed)
	}
	if strings.Contains(out, "More") {
		t.Errorf("pager marker leaked into returned output: %q", out)
	}
	if !strings.Contains(out, "line 001") || !strings.Contains(out, "line 300") {
		t.Errorf("expected all 300 lines concatenated, got %d bytes", len(out))
	}
}

// TestDispatcherParamCompletionSubPrompt asserts the Huawei parameter
// completion sub-prompt is answered with a bare newline and never
// mistaken for command completion.
func TestDispatcherParamCompletionSubPrompt(t *testing.T) {
	stdin := newScriptedStdin()
	chunks := make(chan []byte, 64)
	d := NewDispatcher(stdin, chunks, zerolog.Nop())
	defer d.Close()

	badAck := make(chan string, 1)
	go func() {
		<-stdin.writes // the command itself
		chunks <- []byte("service-port vlan 200\n{ <cr>||<K> }: ")
		ack := <-stdin.writes // the dispatcher's answer to the sub-prompt
		if ack != "\n" {
			badAck <- ack
		}
		close(badAck)
		chunks <- []byte("\nMA5801(config)#")
	}()

	out, err := d.Execute("service-port vlan 200")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := <-badAck; got != "" {
		t.Errorf("expected a bare newline past the param-completion sub-prompt, got %q", got)
	}
	if strings.Contains(out, "<cr>") {
		t.Errorf("param-completion sub-prompt leaked into returned output: %q", out)
	}
}

// TestDispatcherNeverOverlapsCommands covers the §8 invariant directly:
// given two overlapping Execute calls, the second command's first write
// must occur strictly after the first command's future resolves.
func TestDispatcherNeverOverlapsCommands(t *testing.T) {
	stdin := newScriptedStdin()
	chunks := make(chan []byte, 64)
	d := NewDispatcher(stdin, chunks, zerolog.Nop())
	defer d.Close()

	var (
		mu          sync.Mutex
		resolvedAt  []time.Time
		secondWrite time.Time
	)

	go func() {
		<-stdin.writes // first request's write
		time.Sleep(50 * time.Millisecond)
		chunks <- []byte("\nresult-1\nMA5801#")

		<-stdin.writes // second request's write
		mu.Lock()
		secondWrite = time.Now()
		mu.Unlock()
		chunks <- []byte("\nresult-2\nMA5801#")
	}()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := d.Execute(fmt.Sprintf("cmd%d", i)); err != nil {
				t.Errorf("Execute() error = %v", err)
				return
			}
			mu.Lock()
			resolvedAt = append(resolvedAt, time.Now())
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(resolvedAt) != 2 {
		t.Fatalf("expected 2 resolutions, got %d", len(resolvedAt))
	}
	firstResolved := resolvedAt[0]
	if resolvedAt[1].Before(firstResolved) {
		firstResolved = resolvedAt[1]
	}
	if !secondWrite.After(firstResolved) {
		t.Errorf("second command wrote at %v, want strictly after the first resolved at %v", secondWrite, firstResolved)
	}
}

// TestDispatcherFIFOFairness is worked scenario 6 from spec §8: commands
// submitted together are resolved in enqueue order, one at a time, never
// in parallel.
func TestDispatcherFIFOFairness(t *testing.T) {
	stdin := newScriptedStdin()
	chunks := make(chan []byte, 64)
	d := NewDispatcher(stdin, chunks, zerolog.Nop())
	defer d.Close()

	const n = 10
	const responseDelay = 20 * time.Millisecond

	go func() {
		for i := 0; i < n; i++ {
			<-stdin.writes
			time.Sleep(responseDelay)
			chunks <- []byte(fmt.Sprintf("\nresult-%d\nMA5801#", i))
		}
	}()

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	start := time.Now()
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Stagger submission slightly so each call reaches the
			// dispatcher's request queue in enqueue order.
			time.Sleep(time.Duration(i) * time.Millisecond)
			if _, err := d.Execute(fmt.Sprintf("cmd%d", i)); err != nil {
				t.Errorf("Execute(cmd%d) error = %v", i, err)
				return
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	for i, v := range order {
		if v != i {
			t.Fatalf("resolution order = %v, want strictly increasing 0..%d", order, n-1)
		}
	}
	if minExpected := time.Duration(n) * responseDelay; elapsed < minExpected {
		t.Errorf("elapsed = %s, want at least %s if commands ran one at a time", elapsed, minExpected)
	}
}

// TestDispatcherTimeoutDeliversPartialBuffer covers the boundary case: a
// command that never sees a clean prompt resolves with whatever text
// accumulated, tagged as a *TimeoutError.
func TestDispatcherTimeoutDeliversPartialBuffer(t *testing.T) {
	stdin := newScriptedStdin()
	chunks := make(chan []byte, 64)
	d := NewDispatcher(stdin, chunks, zerolog.Nop())
	defer d.Close()

	go func() {
		<-stdin.writes
		chunks <- []byte("partial output with no prompt line")
	}()

	out, err := d.Execute("display something")
	if !IsTimeoutError(err) {
		t.Fatalf("expected *TimeoutError, got %T: %v", err, err)
	}
	if !strings.Contains(out, "partial output") {
		t.Errorf("expected the partial buffer alongside the timeout, got %q", out)
	}
}

// TestDispatcherCloseCancelsQueued covers shutdown: anything still queued
// resolves with *CancelledError instead of hanging forever.
func TestDispatcherCloseCancelsQueued(t *testing.T) {
	stdin := newScriptedStdin()
	chunks := make(chan []byte, 64)
	d := NewDispatcher(stdin, chunks, zerolog.Nop())

	d.Close()

	if _, err := d.Execute("display version"); !IsCancelledError(err) {
		t.Errorf("expected *CancelledError after Close, got %T: %v", err, err)
	}
}
