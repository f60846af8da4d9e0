// Personnel density notifier triggered after roster commits
package aggregate

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"qjm-roster/internal/wargame"
)

// Counter looks up personnel totals for attacker and defender units.
type Counter interface {
	GetPersonnelCount(ctx context.Context, attackers, defenders []string) (*wargame.PersonnelCount, error)
}

// Stats is the derived statistic shown to the operator.
type Stats struct {
	Seq       uint64    `json:"seq"`
	Attackers int       `json:"attackers"`
	Defenders int       `json:"defenders"`
	Frontage  float64   `json:"frontage_km"`
	Density   float64   `json:"defender_density"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Notifier fetches personnel counts after each commit. Every request carries a
// sequence number; a response is applied only if no later request has been
// issued since, so the displayed value always reflects the newest roster.
type Notifier struct {
	counter  Counter
	frontage func() float64
	log      *slog.Logger
	timeout  time.Duration
	onUpdate func(Stats)

	issued atomic.Uint64
	mu     sync.RWMutex
	latest Stats
	wg     sync.WaitGroup
}

// NewNotifier creates a notifier. frontage returns the defender frontage in km
// at the time a response arrives. A zero timeout leaves requests unbounded.
func NewNotifier(counter Counter, frontage func() float64, timeout time.Duration, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{counter: counter, frontage: frontage, timeout: timeout, log: logger}
}

// OnUpdate registers a callback invoked with each applied statistic.
func (n *Notifier) OnUpdate(fn func(Stats)) {
	n.mu.Lock()
	n.onUpdate = fn
	n.mu.Unlock()
}

// Notify issues a personnel lookup in the background and returns immediately.
func (n *Notifier) Notify(attackers, defenders []string) {
	n.notify(attackers, defenders)
}

func (n *Notifier) notify(attackers, defenders []string) uint64 {
	seq := n.issued.Add(1)
	atk := append([]string(nil), attackers...)
	def := append([]string(nil), defenders...)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.fetch(seq, atk, def)
	}()
	return seq
}

func (n *Notifier) fetch(seq uint64, attackers, defenders []string) {
	ctx := context.Background()
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	pc, err := n.counter.GetPersonnelCount(ctx, attackers, defenders)
	if err != nil {
		n.log.Warn("personnel count failed", "seq", seq, "err", err)
		return
	}
	n.apply(seq, pc)
}

func (n *Notifier) apply(seq uint64, pc *wargame.PersonnelCount) {
	frontage := 0.0
	if n.frontage != nil {
		frontage = n.frontage()
	}
	st := Stats{
		Seq:       seq,
		Attackers: pc.Attackers,
		Defenders: pc.Defenders,
		Frontage:  frontage,
		Density:   Density(pc.Defenders, frontage),
		UpdatedAt: time.Now().UTC(),
	}

	n.mu.Lock()
	if seq != n.issued.Load() || seq <= n.latest.Seq {
		n.mu.Unlock()
		n.log.Debug("discarding superseded personnel count", "seq", seq, "latest", n.issued.Load())
		return
	}
	n.latest = st
	cb := n.onUpdate
	n.mu.Unlock()

	if cb != nil {
		cb(st)
	}
}

// Latest returns the most recent authoritative statistic. Seq is zero until
// the first response has been applied.
func (n *Notifier) Latest() Stats {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.latest
}

// Wait blocks until all in-flight lookups have finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// Density is defenders per metre of frontage: defenders / (1000 * frontageKm).
func Density(defenders int, frontageKm float64) float64 {
	if frontageKm <= 0 {
		return 0
	}
	return float64(defenders) / (1000 * frontageKm)
}
