// Package criteria implements the composable partition predicates named
// in §4.4: the atoms MaxDepth, MinCardinality, and MinRadius, a caller
//-supplied Custom predicate, and an and/or combinator. It depends on
// pkg/cluster (for the Cluster type its predicates inspect) but
// pkg/cluster never imports this package back.
package criteria

import (
	"github.com/TobiSchelling/cakes/pkg/cluster"
	"github.com/TobiSchelling/cakes/pkg/numeric"
)

type atomKind int

const (
	maxDepth atomKind = iota
	minCardinality
	minRadius
	custom
)

type atom[T any, U numeric.Number] struct {
	kind        atomKind
	depthLimit  int
	cardLimit   int
	radiusLimit U
	predicate   func(*cluster.Cluster[T, U]) bool
}

func (a atom[T, U]) check(c *cluster.Cluster[T, U]) bool {
	switch a.kind {
	case maxDepth:
		return c.Depth() < a.depthLimit
	case minCardinality:
		return c.Cardinality() > a.cardLimit
	case minRadius:
		return c.Radius() > a.radiusLimit
	case custom:
		return a.predicate(c)
	default:
		return false
	}
}

// PartitionCriteria is a composable predicate deciding whether a cluster
// may split, built with With* methods and evaluated by Check.
// PartitionCriteria satisfies cluster.Criteria[T, U].
type PartitionCriteria[T any, U numeric.Number] struct {
	atoms []atom[T, U]
	// requireAll selects conjunction (and, default) vs disjunction (or)
	// across atoms.
	requireAll bool
}

// New builds an empty PartitionCriteria. When strict is true, a
// MinCardinality(2) atom is seeded so singleton clusters never split
// even if no other atom is added; non-strict criteria default to
// MinCardinality(1), the weakest useful bound (cardinality must still
// exceed 1 to split at all).
func New[T any, U numeric.Number](strict bool) PartitionCriteria[T, U] {
	minCard := 1
	if strict {
		minCard = 2
	}
	return PartitionCriteria[T, U]{
		atoms:      []atom[T, U]{{kind: minCardinality, cardLimit: minCard}},
		requireAll: true,
	}
}

// WithMaxDepth returns a new criteria that additionally requires
// depth < k.
func (p PartitionCriteria[T, U]) WithMaxDepth(k int) PartitionCriteria[T, U] {
	return p.with(atom[T, U]{kind: maxDepth, depthLimit: k})
}

// WithMinCardinality returns a new criteria that additionally requires
// cardinality > m.
func (p PartitionCriteria[T, U]) WithMinCardinality(m int) PartitionCriteria[T, U] {
	return p.with(atom[T, U]{kind: minCardinality, cardLimit: m})
}

// WithMinRadius returns a new criteria that additionally requires
// radius > r.
func (p PartitionCriteria[T, U]) WithMinRadius(r U) PartitionCriteria[T, U] {
	return p.with(atom[T, U]{kind: minRadius, radiusLimit: r})
}

// WithCustom returns a new criteria that additionally requires pred(c).
func (p PartitionCriteria[T, U]) WithCustom(pred func(*cluster.Cluster[T, U]) bool) PartitionCriteria[T, U] {
	return p.with(atom[T, U]{kind: custom, predicate: pred})
}

// WithMode sets whether the atoms combine by conjunction (all, the
// default) or disjunction (any).
func (p PartitionCriteria[T, U]) WithMode(requireAll bool) PartitionCriteria[T, U] {
	p.requireAll = requireAll
	return p
}

func (p PartitionCriteria[T, U]) with(a atom[T, U]) PartitionCriteria[T, U] {
	next := make([]atom[T, U], len(p.atoms), len(p.atoms)+1)
	copy(next, p.atoms)
	next = append(next, a)
	p.atoms = next
	return p
}

// Check evaluates every atom against c and combines them per the
// criteria's mode.
func (p PartitionCriteria[T, U]) Check(c *cluster.Cluster[T, U]) bool {
	if len(p.atoms) == 0 {
		return true
	}
	if p.requireAll {
		for _, a := range p.atoms {
			if !a.check(c) {
				return false
			}
		}
		return true
	}
	for _, a := range p.atoms {
		if a.check(c) {
			return true
		}
	}
	return false
}
