package views

import "sync/atomic"

// Sequencer numbers requests for one presentation slot, such as "the project
// list on screen", whose key changes when the user switches organization.
// Only the response to the latest ticket should be shown.
type Sequencer struct {
	latest atomic.Uint64
}

// Ticket identifies one request issued through a Sequencer
type Ticket struct {
	seq uint64
	s   *Sequencer
}

// Next issues a ticket that supersedes every earlier one
func (s *Sequencer) Next() Ticket {
	return Ticket{seq: s.latest.Add(1), s: s}
}

// Current reports whether no newer ticket has been issued
func (t Ticket) Current() bool {
	return t.s != nil && t.s.latest.Load() == t.seq
}
