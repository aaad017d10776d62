package event

import (
	"slices"
	"testing"
)

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	d := New()
	var got []string
	d.Subscribe("a", func(_ string, p any) { got = append(got, "first:"+p.(string)) })
	d.Subscribe("a", func(_ string, p any) { got = append(got, "second:"+p.(string)) })
	d.Subscribe("b", func(_ string, _ any) { got = append(got, "wrong topic") })

	d.Publish("a", "x")

	want := []string{"first:x", "second:x"}
	if !slices.Equal(got, want) {
		t.Fatalf("delivered %v, want %v", got, want)
	}
}

func TestUnsubscribe(t *testing.T) {
	d := New()
	calls := 0
	s1 := d.Subscribe("t", func(string, any) { calls++ })
	d.Subscribe("t", func(string, any) { calls += 10 })

	d.Unsubscribe(s1)
	d.Publish("t", nil)
	if calls != 10 {
		t.Fatalf("calls = %d, want 10", calls)
	}
	if n := d.SubscriberCount("t"); n != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", n)
	}

	// Unsubscribing twice is harmless.
	d.Unsubscribe(s1)
}

func TestHandlerMaySubscribeDuringPublish(t *testing.T) {
	d := New()
	late := 0
	d.Subscribe("t", func(string, any) {
		d.Subscribe("t", func(string, any) { late++ })
	})

	d.Publish("t", nil)
	if late != 0 {
		t.Fatalf("handler added during publish ran %d times, want 0", late)
	}
	d.Publish("t", nil)
	if late != 1 {
		t.Fatalf("late handler ran %d times, want 1", late)
	}
}

func TestHandlerMayPublish(t *testing.T) {
	d := New()
	var order []string
	d.Subscribe("outer", func(string, any) {
		order = append(order, "outer")
		d.Publish("inner", nil)
		order = append(order, "outer done")
	})
	d.Subscribe("inner", func(string, any) { order = append(order, "inner") })

	d.Publish("outer", nil)
	want := []string{"outer", "inner", "outer done"}
	if !slices.Equal(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestReset(t *testing.T) {
	d := New()
	calls := 0
	d.Subscribe("t", func(string, any) { calls++ })
	d.Reset()
	d.Publish("t", nil)
	if calls != 0 {
		t.Fatalf("calls after Reset = %d, want 0", calls)
	}
}
