// Package store keeps process-lifetime purchase and refund tallies.
package store

import (
	"sort"
	"sync"
)

// Kind names a tally.
type Kind string

const (
	Purchases Kind = "purchases"
	Refunds   Kind = "refunds"
)

// Counters is a per-user tally keyed by kind. Implementations must be safe
// for concurrent use.
type Counters interface {
	Increment(kind Kind, userID string) int
	Get(kind Kind, userID string) int
	Snapshot() Snapshot
}

// Snapshot is a point-in-time copy of all tallies.
type Snapshot map[Kind]map[string]int

// Total sums a kind across users.
func (s Snapshot) Total(kind Kind) int {
	n := 0
	for _, v := range s[kind] {
		n += v
	}
	return n
}

// Users returns the user ids with a tally of kind, sorted.
func (s Snapshot) Users(kind Kind) []string {
	out := make([]string, 0, len(s[kind]))
	for u := range s[kind] {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Store is the in-memory Counters. Nothing survives a restart.
type Store struct {
	mu sync.RWMutex
	m  map[Kind]map[string]int
}

func New() *Store {
	return &Store{m: make(map[Kind]map[string]int)}
}

// Increment adds one to the user's tally and returns the new value.
func (s *Store) Increment(kind Kind, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser, ok := s.m[kind]
	if !ok {
		byUser = make(map[string]int)
		s.m[kind] = byUser
	}
	byUser[userID]++
	return byUser[userID]
}

func (s *Store) Get(kind Kind, userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[kind][userID]
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Snapshot, len(s.m))
	for k, byUser := range s.m {
		cp := make(map[string]int, len(byUser))
		for u, n := range byUser {
			cp[u] = n
		}
		out[k] = cp
	}
	return out
}
