// Package entity holds the universe, sets and relations of a program,
// each keyed by the source line that declared or produced it.
package entity

import "strings"

// Universe is the ordered list of labels; a label's position is its index.
type Universe struct {
	labels []string
	index  map[string]int
}

func newUniverse(labels []string) *Universe {
	u := &Universe{
		labels: make([]string, 0, len(labels)),
		index:  make(map[string]int, len(labels)),
	}
	for _, l := range labels {
		u.index[l] = len(u.labels)
		u.labels = append(u.labels, l)
	}
	return u
}

func (u *Universe) Len() int { return len(u.labels) }

func (u *Universe) Label(i int) string { return u.labels[i] }

// Index returns the position of label in the universe.
func (u *Universe) Index(label string) (int, bool) {
	i, ok := u.index[label]
	return i, ok
}

// Set is a duplicate-free list of universe indices. Items keep insertion
// order, which is also print order.
type Set struct {
	Items []int
	Line  int

	// universe marks the canonical universe set registered by DeclareUniverse.
	universe bool
	// Placeholder marks an empty stand-in for a command not yet executed.
	Placeholder bool
}

func (s *Set) Len() int { return len(s.Items) }

// IsUniverse reports whether s is the set registered for the U line.
func (s *Set) IsUniverse() bool { return s.universe }

// Pair is an ordered pair of universe indices.
type Pair struct {
	X, Y int
}

// Relation is a duplicate-free list of pairs in insertion order.
type Relation struct {
	Pairs []Pair
	Line  int

	Placeholder bool
}

func (r *Relation) Len() int { return len(r.Pairs) }

func (r *Relation) Contains(p Pair) bool {
	for _, q := range r.Pairs {
		if q == p {
			return true
		}
	}
	return false
}

// FormatSet renders s as "S a b" or, for the universe set, "U a b".
func FormatSet(u *Universe, s *Set) string {
	var b strings.Builder
	if s.universe {
		b.WriteString("U")
	} else {
		b.WriteString("S")
	}
	for _, i := range s.Items {
		b.WriteByte(' ')
		b.WriteString(u.Label(i))
	}
	return b.String()
}

// FormatRelation renders r as "R (a b) (b c)".
func FormatRelation(u *Universe, r *Relation) string {
	var b strings.Builder
	b.WriteString("R")
	for _, p := range r.Pairs {
		b.WriteString(" (")
		b.WriteString(u.Label(p.X))
		b.WriteByte(' ')
		b.WriteString(u.Label(p.Y))
		b.WriteByte(')')
	}
	return b.String()
}
