// Package clone implements the attribute-mapping-and-cascade engine.
//
// A Config declared per source type controls how instances of that type
// are cloned: which destination type receives the copy, which
// attributes are copied under which names, and which relations cascade
// to child clones. The Cloner executes one clone per call: it gates on
// the configured block predicate, resolves the effective attribute
// pairs, builds the receiver, copies attributes, applies linkage
// attributes supplied by a parent invocation, persists the receiver
// through the Saver, and finally cascades into declared relations,
// threading the saved receiver's identity down as the child's foreign
// key value.
//
// All collaborators are injected: a schema.Set for attribute access and
// relationship reflection, a Registry of declared configurations, and a
// Saver for persistence. Nothing in this package keeps process-wide
// state.
//
// Failure semantics are deliberate and narrow: a blocked clone is a
// silent no-op, a persistence failure propagates immediately and halts
// the remaining cascade without rolling back earlier saves, and a
// relation that cascades back into an already-visited record fails with
// a cycle error instead of recursing.
package clone
