package grib

import (
	"errors"
	"io"
	"testing"
)

func twoMessageBuffer(t *testing.T) []byte {
	t.Helper()
	grid := testGridSpec{ni: 2, nj: 2, la1: 10_000_000, lo1: 0, la2: 9_000_000, lo2: 1_000_000, di: 1_000_000, dj: 1_000_000}
	msg1 := buildTestMessage(t, 0, 0, 100, 50000, grid, []byte{1, 1, 1, 1})
	msg2 := buildTestMessage(t, 0, 0, 100, 85000, grid, []byte{2, 2, 2, 2})
	return append(append([]byte{}, msg1...), msg2...)
}

func TestMessageWalkerNext(t *testing.T) {
	w := NewMessageWalker(twoMessageBuffer(t), WalkStopOnError)

	msg1, err := w.Next()
	if err != nil {
		t.Fatalf("first Next: %v", err)
	}
	if msg1.Section4 == nil || msg1.Section4.Product == nil {
		t.Fatal("expected a parsed product")
	}

	msg2, err := w.Next()
	if err != nil {
		t.Fatalf("second Next: %v", err)
	}
	if msg2 == msg1 {
		t.Fatal("expected a distinct second message")
	}

	if _, err := w.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("third Next: got %v, want io.EOF", err)
	}

	if w.Index() != 2 {
		t.Errorf("Index() = %d, want 2", w.Index())
	}
}

func TestMessageWalkerStopOnErrorJunkBetweenMessages(t *testing.T) {
	data := twoMessageBuffer(t)
	firstLen := len(data) / 2 // both test messages are the same length
	withJunk := append(append(append([]byte{}, data[:firstLen]...), []byte{0xDE, 0xAD, 0xBE, 0xEF}...), data[firstLen:]...)

	w := NewMessageWalker(withJunk, WalkStopOnError)
	if _, err := w.Next(); err != nil {
		t.Fatalf("first Next: %v", err)
	}
	if _, err := w.Next(); err == nil {
		t.Fatal("expected an error for junk bytes before the second signature")
	}
}

func TestMessageWalkerSkipOnErrorResyncs(t *testing.T) {
	data := twoMessageBuffer(t)
	firstLen := len(data) / 2
	withJunk := append(append(append([]byte{}, data[:firstLen]...), []byte{0xDE, 0xAD, 0xBE, 0xEF}...), data[firstLen:]...)

	w := NewMessageWalker(withJunk, WalkSkipOnError)

	if _, err := w.Next(); err != nil {
		t.Fatalf("first Next: %v", err)
	}
	if _, err := w.Next(); err != nil {
		t.Fatalf("second Next should resync past junk, got error: %v", err)
	}
	if _, err := w.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("third Next: got %v, want io.EOF", err)
	}
	if w.Index() != 2 {
		t.Errorf("Index() = %d, want 2", w.Index())
	}
}
