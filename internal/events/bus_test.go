package events

import "testing"

func TestBus_FanOutAndUnsubscribe(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe("a")
	b := bus.Subscribe("b")

	bus.Publish(TypeFiltersChanged, map[string]interface{}{"ip_type": "residential"})

	for _, sub := range []*Subscriber{a, b} {
		select {
		case ev := <-sub.Events:
			if ev.Type != TypeFiltersChanged {
				t.Fatalf("subscriber %s got %q", sub.ID, ev.Type)
			}
			if string(ev.MarshalData()) != `{"ip_type":"residential"}` {
				t.Fatalf("unexpected data: %s", ev.MarshalData())
			}
		default:
			t.Fatalf("subscriber %s got nothing", sub.ID)
		}
	}

	bus.Unsubscribe("a")
	if _, ok := <-a.Events; ok {
		t.Fatal("unsubscribed channel still open")
	}
	if bus.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", bus.Len())
	}
}

func TestBus_DropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("slow")

	for i := 0; i < subscriberBuffer+10; i++ {
		bus.Publish(TypeProposalsUpdated, i)
	}
	if len(sub.Events) != subscriberBuffer {
		t.Fatalf("buffered %d events, want %d", len(sub.Events), subscriberBuffer)
	}
}

func TestBus_PublishTimestamped(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("ts")

	bus.PublishTimestamped(TypeDaemonStatus, nil)

	ev := <-sub.Events
	data, ok := ev.Data.(map[string]interface{})
	if !ok || data["timestamp"] == "" || data["timestamp"] == nil {
		t.Fatalf("missing timestamp: %#v", ev.Data)
	}
}
