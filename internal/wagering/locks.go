package wagering

import (
	"sync"
	"time"

	"github.com/mmynk/sidepot/internal/models"
)

// lockTable hands out one RWMutex per group and one Mutex per bet.
//
// Lock order is always group then bet. Placing a wager or creating a bet
// holds the group read lock, so the group's debt set cannot change under
// it. Resolving a bet or a debt holds the group write lock. Work on
// unrelated groups or bets never contends.
//
// A bet's entry is dropped once the bet is settled. Settled is terminal and
// every operation re-reads the status under the lock, so a caller still
// holding the old mutex cannot change anything. Group entries live for the
// life of the process, one per group touched.
type lockTable struct {
	mu     sync.Mutex
	groups map[string]*sync.RWMutex
	bets   map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{
		groups: make(map[string]*sync.RWMutex),
		bets:   make(map[string]*sync.Mutex),
	}
}

func (t *lockTable) group(id string) *sync.RWMutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.groups[id]
	if !ok {
		l = &sync.RWMutex{}
		t.groups[id] = l
	}
	return l
}

func (t *lockTable) bet(id string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.bets[id]
	if !ok {
		l = &sync.Mutex{}
		t.bets[id] = l
	}
	return l
}

// forgetBet drops the bet's mutex. Holders of the old mutex are unaffected.
func (t *lockTable) forgetBet(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.bets, id)
}

// size reports how many group and bet mutexes are held in the table.
func (t *lockTable) size() (groups, bets int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.groups), len(t.bets)
}

// forgetSettled drops the bet lock of a bet that is already settled.
func (e *Engine) forgetSettled(bet *models.Bet) {
	if bet.Status == models.BetSettled {
		e.locks.forgetBet(bet.ID)
	}
}

// readGroup takes the group read lock and returns its release.
func (e *Engine) readGroup(groupID string) func() {
	l := e.locks.group(groupID)
	start := time.Now()
	l.RLock()
	e.metrics.LockWait.Observe(time.Since(start).Seconds())
	return l.RUnlock
}

// writeGroup takes the group write lock and returns its release.
func (e *Engine) writeGroup(groupID string) func() {
	l := e.locks.group(groupID)
	start := time.Now()
	l.Lock()
	e.metrics.LockWait.Observe(time.Since(start).Seconds())
	return l.Unlock
}

// lockBet takes the bet lock and returns its release.
func (e *Engine) lockBet(betID string) func() {
	l := e.locks.bet(betID)
	start := time.Now()
	l.Lock()
	e.metrics.LockWait.Observe(time.Since(start).Seconds())
	return l.Unlock
}
