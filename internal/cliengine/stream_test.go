package cliengine

import (
	"io"
	"testing"
	"time"
)

// TestStreamRouterFansOutToActiveSinkOnly asserts a streamRouter relays
// chunks to whichever sink is currently active and nothing else, the
// property the single-owner reader goroutine relies on to hand the
// stream off between dial steps and the Dispatcher without a race.
func TestStreamRouterFansOutToActiveSinkOnly(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	sr := newStreamRouter(pr)

	sinkA := sr.activate()
	if _, err := pw.Write([]byte("hello-a")); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case chunk := <-sinkA:
		if string(chunk) != "hello-a" {
			t.Errorf("sinkA got %q, want %q", chunk, "hello-a")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sinkA to receive its chunk")
	}

	sinkB := sr.activate()
	if _, err := pw.Write([]byte("hello-b")); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case chunk := <-sinkB:
		if string(chunk) != "hello-b" {
			t.Errorf("sinkB got %q, want %q", chunk, "hello-b")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sinkB to receive its chunk")
	}

	select {
	case _, ok := <-sinkA:
		if ok {
			t.Error("sinkA received a chunk after activation moved to sinkB")
		}
	default:
	}
}

// TestStreamRouterClosesActiveSinkOnEOF asserts the active sink is
// closed once the underlying stream ends, matching the "stdout closed"
// handling readSettled and the Dispatcher both rely on.
func TestStreamRouterClosesActiveSinkOnEOF(t *testing.T) {
	pr, pw := io.Pipe()
	sr := newStreamRouter(pr)
	sink := sr.activate()

	pw.Close()

	select {
	case _, ok := <-sink:
		if ok {
			t.Error("expected the sink to be closed after EOF, got a chunk instead")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the sink to close after EOF")
	}
}
