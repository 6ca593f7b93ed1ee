package queue

import (
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestMergeDeliveriesForwardsFromAllSources(t *testing.T) {
	a := make(chan amqp.Delivery, 2)
	b := make(chan amqp.Delivery, 2)
	a <- amqp.Delivery{RoutingKey: ReservationConfirmedQueue}
	b <- amqp.Delivery{RoutingKey: HolderPromotedQueue}
	close(a)
	close(b)

	got := make(map[string]int)
	for d := range mergeDeliveries(a, b) {
		got[d.RoutingKey]++
	}
	if got[ReservationConfirmedQueue] != 1 || got[HolderPromotedQueue] != 1 {
		t.Errorf("merged deliveries = %v, want one per queue", got)
	}
}

// Losing the broker connection closes every delivery channel; the
// merged channel must close in turn so the consume loop can return and
// the reconnect loop dial again.
func TestMergeDeliveriesClosesWhenSourcesClose(t *testing.T) {
	a := make(chan amqp.Delivery)
	b := make(chan amqp.Delivery)
	merged := mergeDeliveries(a, b)

	close(a)
	select {
	case <-merged:
		t.Fatal("merged closed with one source still open")
	case <-time.After(20 * time.Millisecond):
	}

	close(b)
	select {
	case _, ok := <-merged:
		if ok {
			t.Fatal("unexpected delivery on merged channel")
		}
	case <-time.After(time.Second):
		t.Fatal("merged channel did not close after all sources closed")
	}
}
