package hub

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sitelens/scan-engine/internal/core/domain"
)

func drain(ch <-chan domain.ProgressEvent) []domain.ProgressEvent {
	var out []domain.ProgressEvent
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestHub_EmitReachesAllRoomMembers(t *testing.T) {
	h := New(zerolog.Nop())
	a := h.Join("sub-a", "scan-1")
	b := h.Join("sub-b", "scan-1")

	h.Emit(domain.ProgressEvent{ScanID: "scan-1", Kind: domain.EventProgress, Percent: 10})

	for name, ch := range map[string]<-chan domain.ProgressEvent{"a": a, "b": b} {
		got := drain(ch)
		if len(got) != 1 || got[0].Percent != 10 {
			t.Errorf("subscriber %s: got %v, want one progress(10) event", name, got)
		}
	}
}

func TestHub_RoomsAreIndependent(t *testing.T) {
	h := New(zerolog.Nop())
	one := h.Join("sub-a", "scan-1")
	two := h.Join("sub-a", "scan-2")

	h.Emit(domain.ProgressEvent{ScanID: "scan-1", Kind: domain.EventProgress, Percent: 50})

	if got := drain(one); len(got) != 1 {
		t.Errorf("scan-1 subscriber: got %d events, want 1", len(got))
	}
	if got := drain(two); len(got) != 0 {
		t.Errorf("scan-2 subscriber: got %d events, want 0", len(got))
	}
}

func TestHub_EmitToEmptyRoomIsNoOp(t *testing.T) {
	h := New(zerolog.Nop())
	// Must not panic or block.
	h.Emit(domain.ProgressEvent{ScanID: "nobody-home", Kind: domain.EventProgress})
}

func TestHub_LeaveClosesChannelAndStopsDelivery(t *testing.T) {
	h := New(zerolog.Nop())
	ch := h.Join("sub-a", "scan-1")
	h.Leave("sub-a", "scan-1")

	if _, ok := <-ch; ok {
		t.Error("expected channel closed after leave")
	}

	h.Emit(domain.ProgressEvent{ScanID: "scan-1", Kind: domain.EventProgress})
}

func TestHub_DeliveryIsFIFOWithinRoom(t *testing.T) {
	h := New(zerolog.Nop())
	ch := h.Join("sub-a", "scan-1")

	for i := 1; i <= 5; i++ {
		h.Emit(domain.ProgressEvent{ScanID: "scan-1", Kind: domain.EventProgress, Percent: i * 10})
	}

	got := drain(ch)
	if len(got) != 5 {
		t.Fatalf("got %d events, want 5", len(got))
	}
	for i, e := range got {
		if e.Percent != (i+1)*10 {
			t.Errorf("event %d: percent = %d, want %d", i, e.Percent, (i+1)*10)
		}
	}
}

func TestHub_RejoinReplacesMembership(t *testing.T) {
	h := New(zerolog.Nop())
	old := h.Join("sub-a", "scan-1")
	fresh := h.Join("sub-a", "scan-1")

	if _, ok := <-old; ok {
		t.Error("expected previous channel closed on rejoin")
	}

	h.Emit(domain.ProgressEvent{ScanID: "scan-1", Kind: domain.EventProgress, Percent: 10})
	if got := drain(fresh); len(got) != 1 {
		t.Errorf("fresh channel: got %d events, want 1", len(got))
	}
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := New(zerolog.Nop())
	ch := h.Join("sub-a", "scan-1")

	// Overflow the buffer; Emit must never block.
	for i := 0; i < subscriberBuffer+10; i++ {
		h.Emit(domain.ProgressEvent{ScanID: "scan-1", Kind: domain.EventProgress, Percent: i})
	}

	got := drain(ch)
	if len(got) != subscriberBuffer {
		t.Errorf("got %d events, want buffer size %d (overflow dropped)", len(got), subscriberBuffer)
	}
}

func TestHub_ConcurrentJoinEmitLeave(t *testing.T) {
	h := New(zerolog.Nop())
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			scanID := fmt.Sprintf("scan-%d", n%2)
			subID := fmt.Sprintf("sub-%d", n)
			ch := h.Join(subID, scanID)
			h.Emit(domain.ProgressEvent{ScanID: scanID, Kind: domain.EventProgress, Percent: n})
			drain(ch)
			h.Leave(subID, scanID)
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
