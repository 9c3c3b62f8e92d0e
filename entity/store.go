package entity

import (
	"github.com/RobertP-SyndicateLabs/setcal/diag"
)

// LabelPair is a relation pair as written in the source, before resolution.
type LabelPair struct {
	X, Y string
}

// Store owns every set and relation of a run. Entities are only ever
// appended; the line maps point at the entity currently bound to a line.
type Store struct {
	universe *Universe
	uniLine  int

	sets      []*Set
	relations []*Relation

	setByLine map[int]int
	relByLine map[int]int

	// Placeholders handed out per unexecuted command line.
	setHolders map[int]int
	relHolders map[int]int

	reserved map[string]bool
}

// NewStore returns an empty store. Labels in reserved cannot be used in
// the universe.
func NewStore(reserved []string) *Store {
	s := &Store{
		setByLine:  make(map[int]int),
		relByLine:  make(map[int]int),
		setHolders: make(map[int]int),
		relHolders: make(map[int]int),
		reserved:   make(map[string]bool, len(reserved)),
	}
	for _, r := range reserved {
		s.reserved[r] = true
	}
	return s
}

// Universe returns the declared universe, or nil before DeclareUniverse.
func (s *Store) Universe() *Universe { return s.universe }

// UniverseSet returns the full-membership set stored at the U line.
func (s *Store) UniverseSet() *Set {
	if s.universe == nil {
		return nil
	}
	return s.sets[s.setByLine[s.uniLine]]
}

func validLabel(l string) bool {
	if l == "" {
		return false
	}
	for i := 0; i < len(l); i++ {
		c := l[i]
		if !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

// DeclareUniverse stores the universe and its full-membership set at line.
func (s *Store) DeclareUniverse(line int, labels []string) error {
	if s.universe != nil {
		return diag.New(diag.KindStructural, diag.CodeDuplicateUniverse, line,
			"universe already declared on line %d", s.uniLine)
	}

	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if !validLabel(l) {
			return diag.New(diag.KindSemantic, diag.CodeInvalidLabel, line,
				"invalid universe element %q: only letters are allowed", l)
		}
		if s.reserved[l] || l == "true" || l == "false" {
			return diag.New(diag.KindSemantic, diag.CodeReservedLabel, line,
				"universe element %q collides with a reserved word", l)
		}
		if seen[l] {
			return diag.New(diag.KindSemantic, diag.CodeDuplicateLabel, line,
				"duplicity in universe: %q", l)
		}
		seen[l] = true
	}

	s.universe = newUniverse(labels)
	s.uniLine = line

	items := make([]int, len(labels))
	for i := range items {
		items[i] = i
	}
	s.setByLine[line] = len(s.sets)
	s.sets = append(s.sets, &Set{Items: items, Line: line, universe: true})
	return nil
}

func (s *Store) requireUniverse(line int) error {
	if s.universe == nil {
		return diag.New(diag.KindStructural, diag.CodeMissingUniverse, line,
			"universe must be declared before sets and relations")
	}
	return nil
}

func (s *Store) resolve(line int, label string) (int, error) {
	i, ok := s.universe.Index(label)
	if !ok {
		return 0, diag.New(diag.KindSemantic, diag.CodeUnknownUniverseMember, line,
			"%q: the set/relation contains items that do not belong in the universe", label)
	}
	return i, nil
}

// DeclareSet resolves labels against the universe and appends the set.
func (s *Store) DeclareSet(line int, labels []string) error {
	if err := s.requireUniverse(line); err != nil {
		return err
	}

	items := make([]int, 0, len(labels))
	seen := make(map[int]bool, len(labels))
	for _, l := range labels {
		i, err := s.resolve(line, l)
		if err != nil {
			return err
		}
		if seen[i] {
			return diag.New(diag.KindSemantic, diag.CodeDuplicateMember, line,
				"duplicity in a set: %q", l)
		}
		seen[i] = true
		items = append(items, i)
	}

	s.RegisterDerivedSet(line, items)
	return nil
}

// DeclareRelation resolves pairs against the universe and appends the relation.
func (s *Store) DeclareRelation(line int, pairs []LabelPair) error {
	if err := s.requireUniverse(line); err != nil {
		return err
	}

	out := make([]Pair, 0, len(pairs))
	seen := make(map[Pair]bool, len(pairs))
	for _, lp := range pairs {
		x, err := s.resolve(line, lp.X)
		if err != nil {
			return err
		}
		y, err := s.resolve(line, lp.Y)
		if err != nil {
			return err
		}
		p := Pair{X: x, Y: y}
		if seen[p] {
			return diag.New(diag.KindSemantic, diag.CodeDuplicateMember, line,
				"duplicity in a relation: (%s %s)", lp.X, lp.Y)
		}
		seen[p] = true
		out = append(out, p)
	}

	s.RegisterDerivedRelation(line, out)
	return nil
}

// FindSetByLine returns the index of the set bound to line.
func (s *Store) FindSetByLine(line int) (int, bool) {
	i, ok := s.setByLine[line]
	return i, ok
}

// FindRelationByLine returns the index of the relation bound to line.
func (s *Store) FindRelationByLine(line int) (int, bool) {
	i, ok := s.relByLine[line]
	return i, ok
}

func (s *Store) Set(i int) *Set { return s.sets[i] }

func (s *Store) Relation(i int) *Relation { return s.relations[i] }

// SetAt returns the set bound to line, if any.
func (s *Store) SetAt(line int) (*Set, bool) {
	i, ok := s.setByLine[line]
	if !ok {
		return nil, false
	}
	return s.sets[i], true
}

// RelationAt returns the relation bound to line, if any.
func (s *Store) RelationAt(line int) (*Relation, bool) {
	i, ok := s.relByLine[line]
	if !ok {
		return nil, false
	}
	return s.relations[i], true
}

// RegisterDerivedSet appends a set and binds it to line. Callers pass
// duplicate-free items.
func (s *Store) RegisterDerivedSet(line int, items []int) int {
	idx := len(s.sets)
	s.sets = append(s.sets, &Set{Items: items, Line: line})
	s.setByLine[line] = idx
	return idx
}

// RegisterDerivedRelation appends a relation and binds it to line.
func (s *Store) RegisterDerivedRelation(line int, pairs []Pair) int {
	idx := len(s.relations)
	s.relations = append(s.relations, &Relation{Pairs: pairs, Line: line})
	s.relByLine[line] = idx
	return idx
}

// PlaceholderSet returns the empty stand-in set for an unexecuted command
// line, allocating it on first use. Later calls for the same line return
// the same index. The placeholder is not bound to line, so the command's
// real result takes over the line once it runs.
func (s *Store) PlaceholderSet(line int) int {
	if i, ok := s.setHolders[line]; ok {
		return i
	}
	idx := len(s.sets)
	s.sets = append(s.sets, &Set{Line: line, Placeholder: true})
	s.setHolders[line] = idx
	return idx
}

// PlaceholderRelation is PlaceholderSet for relations.
func (s *Store) PlaceholderRelation(line int) int {
	if i, ok := s.relHolders[line]; ok {
		return i
	}
	idx := len(s.relations)
	s.relations = append(s.relations, &Relation{Line: line, Placeholder: true})
	s.relHolders[line] = idx
	return idx
}

// NumSets and NumRelations count every stored entity, placeholders included.
func (s *Store) NumSets() int { return len(s.sets) }

func (s *Store) NumRelations() int { return len(s.relations) }
