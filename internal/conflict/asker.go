package conflict

import (
	"context"

	"twinpane/internal/errors"
)

// Pending is a conflict waiting for an answer. Exactly one of Resume or
// abandonment through the operation's context ends the wait.
type Pending struct {
	Conflict Conflict
	reply    chan Decision
}

// NewPending wraps c in a Pending with room for one answer
func NewPending(c Conflict) *Pending {
	return &Pending{Conflict: c, reply: make(chan Decision, 1)}
}

// Answer delivers the decision passed to Resume
func (p *Pending) Answer() <-chan Decision {
	return p.reply
}

// Resume delivers the user's answer. Calling it more than once, or after
// the waiting operation has gone away, has no effect.
func (p *Pending) Resume(d Decision) {
	select {
	case p.reply <- d:
	default:
	}
}

// ChannelAsker hands conflicts to whoever reads Pending and blocks until
// they answer. The engine goroutine is the only one that waits.
type ChannelAsker struct {
	pending chan *Pending
}

// NewChannelAsker creates an asker whose conflicts are published on a
// channel with the given buffer.
func NewChannelAsker(buffer int) *ChannelAsker {
	return &ChannelAsker{pending: make(chan *Pending, buffer)}
}

// Pending returns the channel conflicts are published on
func (a *ChannelAsker) Pending() <-chan *Pending {
	return a.pending
}

// Ask implements Asker
func (a *ChannelAsker) Ask(ctx context.Context, c Conflict) (Decision, error) {
	p := NewPending(c)

	select {
	case a.pending <- p:
	case <-ctx.Done():
		return Decision{}, errors.Classify("waiting for conflict decision", c.Existing.Path, ctx.Err())
	}

	select {
	case d := <-p.Answer():
		return d, nil
	case <-ctx.Done():
		return Decision{}, errors.Classify("waiting for conflict decision", c.Existing.Path, ctx.Err())
	}
}
