package journal

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"time"

	"qjm-roster/internal/roster"
)

// ReplayLog replays events from r to writer. A speed >0 paces events by their
// timestamps divided by speed; speed <= 0 replays without delay.
func ReplayLog(r io.Reader, writer roster.EventWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	for {
		var ev roster.Event
		if err := dec.Decode(&ev); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !prev.IsZero() && speed > 0 {
			diff := ev.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if err := writer.WriteEvent(ev); err != nil {
			return err
		}
		prev = ev.Timestamp
	}
}

// ReplayLogFile opens a file and replays its events.
func ReplayLogFile(path string, writer roster.EventWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}

// Membership rebuilds container membership from replayed events.
type Membership struct {
	location map[string]string
	seq      map[string]int
	n        int
}

// NewMembership returns an empty membership collector.
func NewMembership() *Membership {
	return &Membership{location: make(map[string]string), seq: make(map[string]int)}
}

// WriteEvent moves the event's unit into its destination.
func (m *Membership) WriteEvent(e roster.Event) error {
	m.n++
	m.location[e.UnitID] = e.To
	m.seq[e.UnitID] = m.n
	return nil
}

// Containers returns unit ids per container, ordered by arrival.
func (m *Membership) Containers() map[string][]string {
	out := make(map[string][]string)
	units := make([]string, 0, len(m.location))
	for u := range m.location {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return m.seq[units[i]] < m.seq[units[j]] })
	for _, u := range units {
		c := m.location[u]
		out[c] = append(out[c], u)
	}
	return out
}
