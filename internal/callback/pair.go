// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package callback

// Pair owns a pre-phase and post-phase callback for one host event, both
// managed by the registry. Callers distinguish the phases by reference, so
// pairs are usually created under the empty name.
type Pair struct {
	registry *Registry
	pre      *Callback
	post     *Callback
}

// NewPair creates both phase callbacks under name. Creation is all or
// nothing: a pair never holds only one phase.
func NewPair(r *Registry, name string) *Pair {
	return &Pair{
		registry: r,
		pre:      r.CreateCallback(name),
		post:     r.CreateCallback(name),
	}
}

// NewEmptyPair creates a pair with no callbacks registered. Used where the
// host event exists but nothing may ever hook it.
func NewEmptyPair(r *Registry) *Pair {
	return &Pair{registry: r}
}

// Pre returns the pre-phase callback, or nil for an empty pair.
func (p *Pair) Pre() *Callback { return p.pre }

// Post returns the post-phase callback, or nil for an empty pair.
func (p *Pair) Post() *Callback { return p.post }

// Close releases whichever phase callbacks exist back to the registry and
// nulls the local references, making repeated Close calls harmless.
func (p *Pair) Close() {
	if p.pre != nil {
		p.registry.ReleaseCallback(p.pre)
		p.pre = nil
	}
	if p.post != nil {
		p.registry.ReleaseCallback(p.post)
		p.post = nil
	}
}
