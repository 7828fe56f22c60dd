package server

import (
	"fmt"
	"sort"
	"sync"

	"github.com/NicolasHaas/telechat/pkg/model"
)

// Member is what a channel knows about a joined session: something it
// can hand a rendered line to. channel names the sender so a member that
// has just switched channels can drop stale lines.
type Member interface {
	Deliver(channel, line string)
}

// Channel is a named broadcast group with bounded membership and history.
// mu guards members and history; a broadcast holds it for the whole
// fan-out so every member sees lines in history order.
type Channel struct {
	name     string
	capacity int

	mu      sync.Mutex
	members map[string]Member // username -> member
	history *History
}

func newChannel(cfg model.Channel) *Channel {
	return &Channel{
		name:     cfg.Name,
		capacity: cfg.MaxUsers,
		members:  make(map[string]Member),
		history:  NewHistory(cfg.History),
	}
}

// Name returns the channel name.
func (c *Channel) Name() string { return c.name }

// Capacity returns the member limit.
func (c *Channel) Capacity() int { return c.capacity }

// join registers m under username. replay, if non-nil, runs under the
// channel lock with the current history so no broadcast can slip between
// the snapshot and the membership change.
func (c *Channel) join(username string, m Member, replay func(history []string)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.members[username]; ok {
		if existing != m {
			return model.ErrUsernameInUse
		}
	} else if len(c.members) >= c.capacity {
		return model.ErrChannelFull
	}

	c.members[username] = m
	if replay != nil {
		replay(c.history.Lines())
	}
	return nil
}

// leave removes username if it is mapped to m. It reports whether a
// membership was removed.
func (c *Channel) leave(username string, m Member) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.members[username]; !ok || existing != m {
		return false
	}
	delete(c.members, username)
	return true
}

// Replay calls fn with the history under the channel lock.
func (c *Channel) Replay(fn func(history []string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.history.Lines())
}

// History returns a snapshot of the buffered lines, oldest first.
func (c *Channel) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Lines()
}

// Members returns the member usernames, sorted.
func (c *Channel) Members() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.members))
	for name := range c.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of members.
func (c *Channel) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.members)
}

// ChannelInfo is a point-in-time view of a channel.
type ChannelInfo struct {
	Name     string `json:"name"`
	Members  int    `json:"members"`
	Capacity int    `json:"capacity"`
}

// Registry maps channel names to channels. The set of channels is fixed
// once provisioned; membership and history are locked per channel.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*Channel
}

// NewRegistry provisions the given channels.
func NewRegistry(chans []model.Channel) (*Registry, error) {
	r := &Registry{channels: make(map[string]*Channel, len(chans))}
	for _, cfg := range chans {
		if err := r.Add(cfg); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add provisions one channel.
func (r *Registry) Add(cfg model.Channel) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("server: channel %q: %w", cfg.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.channels[cfg.Name]; exists {
		return fmt.Errorf("server: channel %q defined twice", cfg.Name)
	}
	r.channels[cfg.Name] = newChannel(cfg)
	return nil
}

// Get looks a channel up by name.
func (r *Registry) Get(name string) (*Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[name]
	return ch, ok
}

func (r *Registry) lookup(name string) (*Channel, error) {
	ch, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownChannel, name)
	}
	return ch, nil
}

// Join adds username/m to the named channel. See Channel.join for replay.
func (r *Registry) Join(channel, username string, m Member, replay func(history []string)) error {
	ch, err := r.lookup(channel)
	if err != nil {
		return err
	}
	return ch.join(username, m, replay)
}

// Leave removes username/m from the named channel. Unknown channels and
// absent members are ignored.
func (r *Registry) Leave(channel, username string, m Member) bool {
	ch, ok := r.Get(channel)
	if !ok {
		return false
	}
	return ch.leave(username, m)
}

// Members lists the usernames in the named channel.
func (r *Registry) Members(channel string) ([]string, error) {
	ch, err := r.lookup(channel)
	if err != nil {
		return nil, err
	}
	return ch.Members(), nil
}

// Channels lists all channel names, sorted.
func (r *Registry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns name, member count and capacity for every channel,
// sorted by name.
func (r *Registry) Snapshot() []ChannelInfo {
	names := r.Channels()
	infos := make([]ChannelInfo, 0, len(names))
	for _, name := range names {
		ch, ok := r.Get(name)
		if !ok {
			continue
		}
		infos = append(infos, ChannelInfo{Name: name, Members: ch.Count(), Capacity: ch.Capacity()})
	}
	return infos
}

// AppendHistory adds line to the named channel's history without
// delivering it.
func (r *Registry) AppendHistory(channel, line string) error {
	ch, err := r.lookup(channel)
	if err != nil {
		return err
	}
	ch.mu.Lock()
	ch.history.Append(line)
	ch.mu.Unlock()
	return nil
}

// ReplayHistory returns the named channel's history, oldest first.
func (r *Registry) ReplayHistory(channel string) ([]string, error) {
	ch, err := r.lookup(channel)
	if err != nil {
		return nil, err
	}
	return ch.History(), nil
}

// Config returns the provisioned channel configs, sorted by name.
func (r *Registry) Config() []model.Channel {
	names := r.Channels()
	out := make([]model.Channel, 0, len(names))
	for _, name := range names {
		ch, _ := r.Get(name)
		out = append(out, model.Channel{Name: ch.name, MaxUsers: ch.capacity, History: ch.history.Limit()})
	}
	return out
}
