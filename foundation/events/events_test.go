package events_test

import (
	"testing"

	"github.com/ardanlabs/gossipchain/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestEvents(t *testing.T) {
	t.Log("Given the need to fan events out to listeners.")
	{
		evts := events.New()

		ch1 := evts.Acquire("one")
		ch2 := evts.Acquire("two")
		if evts.Acquire("one") != ch1 {
			t.Fatalf("\t%s\tShould get the same channel for the same id.", failed)
		}
		t.Logf("\t%s\tShould get the same channel for the same id.", success)

		evts.Send("new block")
		if got := <-ch1; got != "new block" {
			t.Fatalf("\t%s\tShould receive the event on the first channel: got %q", failed, got)
		}
		if got := <-ch2; got != "new block" {
			t.Fatalf("\t%s\tShould receive the event on the second channel: got %q", failed, got)
		}
		t.Logf("\t%s\tShould receive the event on every channel.", success)

		// A full listener must not block the sender.
		for i := 0; i < 500; i++ {
			evts.Send("flood")
		}
		t.Logf("\t%s\tShould not block on a full channel.", success)

		if err := evts.Release("one"); err != nil {
			t.Fatalf("\t%s\tShould be able to release a channel: %s", failed, err)
		}
		if err := evts.Release("one"); err == nil {
			t.Fatalf("\t%s\tShould not be able to release a channel twice.", failed)
		}
		t.Logf("\t%s\tShould be able to release a channel once.", success)

		evts.Shutdown()
		if evts.Len() != 0 {
			t.Fatalf("\t%s\tShould remove every channel on shutdown.", failed)
		}

		for range ch2 {
		}
		t.Logf("\t%s\tShould close every channel on shutdown.", success)
	}
}
