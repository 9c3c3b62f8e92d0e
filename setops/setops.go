// Package setops implements the set algebra and relation predicates the
// interpreter dispatches to. Functions never mutate their operands;
// value-producing ones return fresh, duplicate-free slices in a
// deterministic order derived from their inputs.
package setops

import (
	"math/rand/v2"

	"github.com/RobertP-SyndicateLabs/setcal/entity"
)

// ---- SETS ----

func Empty(s *entity.Set) bool { return s.Len() == 0 }

func Card(s *entity.Set) int { return s.Len() }

func members(s *entity.Set) map[int]bool {
	m := make(map[int]bool, s.Len())
	for _, i := range s.Items {
		m[i] = true
	}
	return m
}

// Complement returns the universe indices not in s, in universe order.
func Complement(u *entity.Universe, s *entity.Set) []int {
	in := members(s)
	out := make([]int, 0, u.Len()-len(in))
	for i := 0; i < u.Len(); i++ {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}

// Union keeps a's order and appends b's members missing from a.
func Union(a, b *entity.Set) []int {
	in := members(a)
	out := append(make([]int, 0, a.Len()+b.Len()), a.Items...)
	for _, i := range b.Items {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}

func Intersect(a, b *entity.Set) []int {
	in := members(b)
	out := []int{}
	for _, i := range a.Items {
		if in[i] {
			out = append(out, i)
		}
	}
	return out
}

// Minus returns a − b in a's order.
func Minus(a, b *entity.Set) []int {
	in := members(b)
	out := []int{}
	for _, i := range a.Items {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}

func SubsetEq(a, b *entity.Set) bool {
	in := members(b)
	for _, i := range a.Items {
		if !in[i] {
			return false
		}
	}
	return true
}

// Subset is proper inclusion.
func Subset(a, b *entity.Set) bool {
	return a.Len() < b.Len() && SubsetEq(a, b)
}

// Equals ignores member order.
func Equals(a, b *entity.Set) bool {
	return a.Len() == b.Len() && SubsetEq(a, b)
}

// ---- RELATIONS ----

func pairs(r *entity.Relation) map[entity.Pair]bool {
	m := make(map[entity.Pair]bool, r.Len())
	for _, p := range r.Pairs {
		m[p] = true
	}
	return m
}

func Reflexive(u *entity.Universe, r *entity.Relation) bool {
	in := pairs(r)
	for i := 0; i < u.Len(); i++ {
		if !in[entity.Pair{X: i, Y: i}] {
			return false
		}
	}
	return true
}

func Symmetric(r *entity.Relation) bool {
	in := pairs(r)
	for _, p := range r.Pairs {
		if !in[entity.Pair{X: p.Y, Y: p.X}] {
			return false
		}
	}
	return true
}

func Antisymmetric(r *entity.Relation) bool {
	in := pairs(r)
	for _, p := range r.Pairs {
		if p.X != p.Y && in[entity.Pair{X: p.Y, Y: p.X}] {
			return false
		}
	}
	return true
}

func Transitive(r *entity.Relation) bool {
	in := pairs(r)
	for _, p := range r.Pairs {
		for _, q := range r.Pairs {
			if p.Y == q.X && !in[entity.Pair{X: p.X, Y: q.Y}] {
				return false
			}
		}
	}
	return true
}

// Function reports whether every x maps to at most one y.
func Function(r *entity.Relation) bool {
	img := make(map[int]int, r.Len())
	for _, p := range r.Pairs {
		if y, ok := img[p.X]; ok && y != p.Y {
			return false
		}
		img[p.X] = p.Y
	}
	return true
}

// Domain returns the distinct x components in pair order.
func Domain(r *entity.Relation) []int {
	seen := make(map[int]bool, r.Len())
	out := []int{}
	for _, p := range r.Pairs {
		if !seen[p.X] {
			seen[p.X] = true
			out = append(out, p.X)
		}
	}
	return out
}

// Codomain returns the distinct y components in pair order.
func Codomain(r *entity.Relation) []int {
	seen := make(map[int]bool, r.Len())
	out := []int{}
	for _, p := range r.Pairs {
		if !seen[p.Y] {
			seen[p.Y] = true
			out = append(out, p.Y)
		}
	}
	return out
}

// ClosureRef adds (x,x) for every universe element x, in universe order.
func ClosureRef(u *entity.Universe, r *entity.Relation) []entity.Pair {
	in := pairs(r)
	out := append(make([]entity.Pair, 0, r.Len()+u.Len()), r.Pairs...)
	for i := 0; i < u.Len(); i++ {
		p := entity.Pair{X: i, Y: i}
		if !in[p] {
			out = append(out, p)
		}
	}
	return out
}

func ClosureSym(r *entity.Relation) []entity.Pair {
	in := pairs(r)
	out := append(make([]entity.Pair, 0, 2*r.Len()), r.Pairs...)
	for _, p := range r.Pairs {
		q := entity.Pair{X: p.Y, Y: p.X}
		if !in[q] {
			in[q] = true
			out = append(out, q)
		}
	}
	return out
}

// ClosureTrans saturates r until no (x,y),(y,z) lacks (x,z). New pairs
// are appended in discovery order.
func ClosureTrans(r *entity.Relation) []entity.Pair {
	in := pairs(r)
	out := append(make([]entity.Pair, 0, r.Len()), r.Pairs...)
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(out); i++ {
			for j := 0; j < len(out); j++ {
				if out[i].Y != out[j].X {
					continue
				}
				q := entity.Pair{X: out[i].X, Y: out[j].Y}
				if !in[q] {
					in[q] = true
					out = append(out, q)
					changed = true
				}
			}
		}
	}
	return out
}

// mapping checks that r is a total function from a into b and returns its
// image multiset as counts per y.
func mapping(r *entity.Relation, a, b *entity.Set) (map[int]int, bool) {
	if !Function(r) {
		return nil, false
	}
	inA, inB := members(a), members(b)
	covered := make(map[int]bool, a.Len())
	hits := make(map[int]int, b.Len())
	for _, p := range r.Pairs {
		if !inA[p.X] || !inB[p.Y] {
			return nil, false
		}
		covered[p.X] = true
		hits[p.Y]++
	}
	if len(covered) != len(inA) {
		return nil, false
	}
	return hits, true
}

// Injective: r is a total function a → b and no two x share a y.
func Injective(r *entity.Relation, a, b *entity.Set) bool {
	hits, ok := mapping(r, a, b)
	if !ok {
		return false
	}
	for _, n := range hits {
		if n > 1 {
			return false
		}
	}
	return true
}

// Surjective: r is a total function a → b hitting every member of b.
func Surjective(r *entity.Relation, a, b *entity.Set) bool {
	hits, ok := mapping(r, a, b)
	if !ok {
		return false
	}
	return len(hits) == len(members(b))
}

func Bijective(r *entity.Relation, a, b *entity.Set) bool {
	return a.Len() == b.Len() && Injective(r, a, b) && Surjective(r, a, b)
}

// ---- SELECT ----

// Select picks one element of items uniformly. It reports false when
// items is empty.
func Select(rng *rand.Rand, items []int) (int, bool) {
	if len(items) == 0 {
		return 0, false
	}
	return items[rng.IntN(len(items))], true
}
