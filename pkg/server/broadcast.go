package server

import (
	"log/slog"
)

// fanOut appends line to the history and hands it to every member, all
// under the channel lock. Delivery must not block: members enqueue and
// return.
func (c *Channel) fanOut(line string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history.Append(line)
	for _, m := range c.members {
		m.Deliver(c.name, line)
	}
	return len(c.members)
}

// Broadcaster delivers channel lines to members and records them in the
// channel history.
type Broadcaster struct {
	registry *Registry
	metrics  *Metrics
}

// NewBroadcaster creates a Broadcaster over registry. metrics may be nil.
func NewBroadcaster(registry *Registry, metrics *Metrics) *Broadcaster {
	return &Broadcaster{registry: registry, metrics: metrics}
}

// Broadcast sends line to every member of ch.
func (b *Broadcaster) Broadcast(ch *Channel, line string) {
	n := ch.fanOut(line)
	if b.metrics != nil {
		b.metrics.BroadcastLines.Add(1)
		b.metrics.Deliveries.Add(int64(n))
	}
	slog.Debug("broadcast", "channel", ch.Name(), "recipients", n)
}

// BroadcastTo resolves the channel by name and broadcasts line to it.
func (b *Broadcaster) BroadcastTo(channel, line string) error {
	ch, err := b.registry.lookup(channel)
	if err != nil {
		return err
	}
	b.Broadcast(ch, line)
	return nil
}
