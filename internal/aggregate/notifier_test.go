package aggregate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qjm-roster/internal/wargame"
)

type gatedCounter struct {
	mu    sync.Mutex
	gates map[string]chan *wargame.PersonnelCount
	errs  map[string]error
}

func newGatedCounter() *gatedCounter {
	return &gatedCounter{gates: make(map[string]chan *wargame.PersonnelCount), errs: make(map[string]error)}
}

func (g *gatedCounter) gate(key string) chan *wargame.PersonnelCount {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[key]
	if !ok {
		ch = make(chan *wargame.PersonnelCount, 1)
		g.gates[key] = ch
	}
	return ch
}

func (g *gatedCounter) GetPersonnelCount(ctx context.Context, attackers, defenders []string) (*wargame.PersonnelCount, error) {
	key := ""
	if len(defenders) > 0 {
		key = defenders[len(defenders)-1]
	}
	g.mu.Lock()
	err := g.errs[key]
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return <-g.gate(key), nil
}

func TestDensity(t *testing.T) {
	assert.InDelta(t, 0.8, Density(8000, 10), 1e-9)
	assert.Equal(t, 0.0, Density(8000, 0))
	assert.Equal(t, 0.0, Density(8000, -2))
}

func TestLatestIssuedResponseWins(t *testing.T) {
	c := newGatedCounter()
	n := NewNotifier(c, func() float64 { return 10 }, 0, nil)

	first := n.notify(nil, []string{"first"})
	second := n.notify(nil, []string{"second"})
	require.Less(t, first, second)

	c.gate("second") <- &wargame.PersonnelCount{Defenders: 2000}
	c.gate("first") <- &wargame.PersonnelCount{Defenders: 1000}
	n.Wait()

	got := n.Latest()
	assert.Equal(t, second, got.Seq)
	assert.Equal(t, 2000, got.Defenders)
	assert.InDelta(t, 0.2, got.Density, 1e-9)
}

func TestStaleResponseDiscardedEvenIfNewerFails(t *testing.T) {
	c := newGatedCounter()
	c.errs["second"] = &wargame.RemoteError{Op: "getPersonnelCount", Err: errors.New("boom")}
	n := NewNotifier(c, func() float64 { return 10 }, 0, nil)

	n.notify(nil, []string{"first"})
	n.notify(nil, []string{"second"})
	c.gate("first") <- &wargame.PersonnelCount{Defenders: 1000}
	n.Wait()

	assert.Zero(t, n.Latest().Seq)
}

func TestOnUpdateCallback(t *testing.T) {
	c := newGatedCounter()
	n := NewNotifier(c, nil, 0, nil)
	var got []Stats
	n.OnUpdate(func(s Stats) { got = append(got, s) })

	n.Notify([]string{"a"}, []string{"d"})
	c.gate("d") <- &wargame.PersonnelCount{Attackers: 5, Defenders: 7}
	n.Wait()

	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].Defenders)
	assert.Zero(t, got[0].Density)
}

func TestNotifyCopiesSlices(t *testing.T) {
	c := newGatedCounter()
	n := NewNotifier(c, nil, 0, nil)
	defenders := []string{"d"}
	n.Notify(nil, defenders)
	defenders[0] = "mutated"
	c.gate("d") <- &wargame.PersonnelCount{Defenders: 1}
	n.Wait()
	assert.Equal(t, 1, n.Latest().Defenders)
}
