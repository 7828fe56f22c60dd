package server

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/NicolasHaas/telechat/pkg/model"
)

// countingMember records delivered lines.
type countingMember struct {
	mu    sync.Mutex
	lines []string
}

func (m *countingMember) Deliver(_, line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
}

func (m *countingMember) got() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(model.DefaultChannels())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestHistoryKeepsLastLines(t *testing.T) {
	h := NewHistory(model.ChannelDefaultHistory)
	var want []string
	for i := 0; i < 25; i++ {
		line := fmt.Sprintf("line %d", i)
		h.Append(line)
		if i >= 15 {
			want = append(want, line)
		}
	}
	if diff := cmp.Diff(want, h.Lines()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	if h.Len() != 10 || h.Limit() != 10 {
		t.Errorf("Len/Limit = %d/%d, want 10/10", h.Len(), h.Limit())
	}
}

func TestHistoryLinesIsCopy(t *testing.T) {
	h := NewHistory(3)
	h.Append("a")
	lines := h.Lines()
	lines[0] = "mutated"
	if got := h.Lines()[0]; got != "a" {
		t.Errorf("history changed through returned slice: %q", got)
	}
}

func TestHistoryZeroLimit(t *testing.T) {
	h := NewHistory(0)
	h.Append("a")
	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
}

func TestRegistryDefaults(t *testing.T) {
	reg := newTestRegistry(t)
	if diff := cmp.Diff([]string{"movies", "public"}, reg.Channels()); diff != "" {
		t.Errorf("channels mismatch (-want +got):\n%s", diff)
	}
	want := []ChannelInfo{
		{Name: "movies", Members: 0, Capacity: 10},
		{Name: "public", Members: 0, Capacity: 10},
	}
	if diff := cmp.Diff(want, reg.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.DefaultChannels()[1], reg.Config()[0]); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryUnknownChannel(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.Join("nowhere", "alice", &countingMember{}, nil)
	if !errors.Is(err, model.ErrUnknownChannel) {
		t.Errorf("Join = %v, want ErrUnknownChannel", err)
	}
	if _, err := reg.Members("nowhere"); !errors.Is(err, model.ErrUnknownChannel) {
		t.Errorf("Members = %v, want ErrUnknownChannel", err)
	}
	if reg.Leave("nowhere", "alice", &countingMember{}) {
		t.Error("Leave on unknown channel reported removal")
	}
}

func TestRegistryAddRejectsInvalid(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Add(model.NewChannel("public")); err == nil {
		t.Error("duplicate channel accepted")
	}
	if err := reg.Add(model.Channel{Name: "bad name", MaxUsers: 10}); !errors.Is(err, model.ErrChannelNameInvalid) {
		t.Errorf("Add = %v, want ErrChannelNameInvalid", err)
	}
}

func TestJoinCapacity(t *testing.T) {
	reg := newTestRegistry(t)
	for i := 0; i < 10; i++ {
		if err := reg.Join("movies", fmt.Sprintf("u%d", i), &countingMember{}, nil); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	err := reg.Join("movies", "u10", &countingMember{}, nil)
	if !errors.Is(err, model.ErrChannelFull) {
		t.Fatalf("11th join = %v, want ErrChannelFull", err)
	}
	members, _ := reg.Members("movies")
	if len(members) != 10 {
		t.Errorf("members = %d, want 10", len(members))
	}
}

func TestJoinUsernameInUse(t *testing.T) {
	reg := newTestRegistry(t)
	first := &countingMember{}
	if err := reg.Join("public", "alice", first, nil); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := reg.Join("public", "alice", &countingMember{}, nil); !errors.Is(err, model.ErrUsernameInUse) {
		t.Errorf("second Join = %v, want ErrUsernameInUse", err)
	}
	// Same member again is a no-op success.
	if err := reg.Join("public", "alice", first, nil); err != nil {
		t.Errorf("rejoin by same member = %v", err)
	}
	// Only the holder of the name can remove it.
	if reg.Leave("public", "alice", &countingMember{}) {
		t.Error("a different member removed alice")
	}
	if !reg.Leave("public", "alice", first) {
		t.Error("Leave by holder did not remove alice")
	}
}

func TestJoinReplayRunsUnderLock(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.AppendHistory("public", "old line"); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}

	var replayed []string
	err := reg.Join("public", "alice", &countingMember{}, func(history []string) {
		replayed = history
	})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if diff := cmp.Diff([]string{"old line"}, replayed); diff != "" {
		t.Errorf("replay mismatch (-want +got):\n%s", diff)
	}
	hist, _ := reg.ReplayHistory("public")
	if diff := cmp.Diff([]string{"old line"}, hist); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentJoinsNeverExceedCapacity(t *testing.T) {
	reg := newTestRegistry(t)

	var wg sync.WaitGroup
	var ok, full atomic.Int64
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := reg.Join("public", fmt.Sprintf("u%d", i%30), &countingMember{}, nil)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, model.ErrChannelFull), errors.Is(err, model.ErrUsernameInUse):
				full.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	members, _ := reg.Members("public")
	if len(members) != 10 {
		t.Errorf("members = %d, want 10", len(members))
	}
	seen := make(map[string]bool)
	for _, m := range members {
		if seen[m] {
			t.Errorf("duplicate member %q", m)
		}
		seen[m] = true
	}
	if ok.Load() != 10 || ok.Load()+full.Load() != 50 {
		t.Errorf("ok=%d rejected=%d", ok.Load(), full.Load())
	}
}

func TestJoinLeaveChurnNeverExceedsCapacity(t *testing.T) {
	reg := newTestRegistry(t)
	const users = 25

	var wg sync.WaitGroup
	stop := make(chan struct{})
	var violations atomic.Int64

	// Watcher checks the invariants while members hop between channels.
	watched := make(chan struct{})
	go func() {
		defer close(watched)
		for {
			select {
			case <-stop:
				return
			default:
			}
			for _, name := range reg.Channels() {
				members, _ := reg.Members(name)
				if len(members) > model.ChannelDefaultMaxUsers {
					violations.Add(1)
				}
				for i := 1; i < len(members); i++ {
					if members[i] == members[i-1] {
						violations.Add(1)
					}
				}
			}
		}
	}()

	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := &countingMember{}
			name := fmt.Sprintf("u%d", i)
			current := ""
			for j := 0; j < 200; j++ {
				target := "public"
				if (i+j)%2 == 0 {
					target = "movies"
				}
				if current != "" {
					reg.Leave(current, name, m)
					current = ""
				}
				err := reg.Join(target, name, m, nil)
				switch {
				case err == nil:
					current = target
				case errors.Is(err, model.ErrChannelFull):
				default:
					t.Errorf("unexpected error: %v", err)
					return
				}
				// Leaving twice is harmless.
				if j%7 == 0 && current != "" {
					reg.Leave(current, name, m)
					reg.Leave(current, name, m)
					current = ""
				}
			}
		}(i)
	}
	wg.Wait()
	close(stop)
	<-watched

	if got := violations.Load(); got != 0 {
		t.Errorf("%d invariant violations observed", got)
	}
	for _, name := range reg.Channels() {
		ch, _ := reg.Get(name)
		if got := ch.Count(); got > ch.Capacity() {
			t.Errorf("%s: %d members, capacity %d", name, got, ch.Capacity())
		}
	}
}

func TestBroadcastOrderMatchesHistory(t *testing.T) {
	reg := newTestRegistry(t)
	b := NewBroadcaster(reg, nil)
	a, c := &countingMember{}, &countingMember{}
	_ = reg.Join("public", "a", a, nil)
	_ = reg.Join("public", "c", c, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = b.BroadcastTo("public", fmt.Sprintf("%d-%d", i, j))
			}
		}(i)
	}
	wg.Wait()

	if diff := cmp.Diff(a.got(), c.got()); diff != "" {
		t.Errorf("members saw different orders (-a +c):\n%s", diff)
	}
	hist, _ := reg.ReplayHistory("public")
	got := a.got()
	if diff := cmp.Diff(got[len(got)-10:], hist); diff != "" {
		t.Errorf("history is not the tail of delivery order (-delivered +history):\n%s", diff)
	}
}

func TestBroadcastToUnknownChannel(t *testing.T) {
	b := NewBroadcaster(newTestRegistry(t), NewMetrics())
	if err := b.BroadcastTo("nowhere", "x"); !errors.Is(err, model.ErrUnknownChannel) {
		t.Errorf("BroadcastTo = %v, want ErrUnknownChannel", err)
	}
}
