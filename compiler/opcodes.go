package compiler

// OpCode identifies a command operation. The numbering is canonical and
// matches the order of the operation table.
type OpCode int

const (
	OpEmpty OpCode = iota
	OpCard
	OpComplement
	OpUnion
	OpIntersect
	OpMinus
	OpSubsetEq
	OpSubset
	OpEquals
	OpReflexive
	OpSymmetric
	OpAntisymmetric
	OpTransitive
	OpFunction
	OpDomain
	OpCodomain
	OpClosureRef
	OpClosureSym
	OpClosureTrans
	OpInjective
	OpSurjective
	OpBijective
	OpSelect

	numOps
)

// ResultKind is what executing an operation yields.
type ResultKind int

const (
	ResultBool ResultKind = iota
	ResultScalar
	ResultSet
	ResultRelation
)

// Operand is the entity class an argument must resolve to.
type Operand int

const (
	OperandSet Operand = iota
	OperandRelation
	// OperandAny accepts a set, falling back to a relation.
	OperandAny
)

func (o Operand) String() string {
	switch o {
	case OperandSet:
		return "set"
	case OperandRelation:
		return "relation"
	default:
		return "set or relation"
	}
}

type opInfo struct {
	name     string
	operands []Operand
	result   ResultKind
	// branch: one extra trailing argument is accepted as a jump target.
	branch bool
}

var (
	one      = []Operand{OperandSet}
	two      = []Operand{OperandSet, OperandSet}
	rel      = []Operand{OperandRelation}
	relAndAB = []Operand{OperandRelation, OperandSet, OperandSet}
)

var opTable = [numOps]opInfo{
	OpEmpty:         {name: "empty", operands: one, result: ResultBool, branch: true},
	OpCard:          {name: "card", operands: one, result: ResultScalar},
	OpComplement:    {name: "complement", operands: one, result: ResultSet},
	OpUnion:         {name: "union", operands: two, result: ResultSet},
	OpIntersect:     {name: "intersect", operands: two, result: ResultSet},
	OpMinus:         {name: "minus", operands: two, result: ResultSet},
	OpSubsetEq:      {name: "subseteq", operands: two, result: ResultBool, branch: true},
	OpSubset:        {name: "subset", operands: two, result: ResultBool, branch: true},
	OpEquals:        {name: "equals", operands: two, result: ResultBool, branch: true},
	OpReflexive:     {name: "reflexive", operands: rel, result: ResultBool, branch: true},
	OpSymmetric:     {name: "symmetric", operands: rel, result: ResultBool, branch: true},
	OpAntisymmetric: {name: "antisymmetric", operands: rel, result: ResultBool, branch: true},
	OpTransitive:    {name: "transitive", operands: rel, result: ResultBool, branch: true},
	OpFunction:      {name: "function", operands: rel, result: ResultBool, branch: true},
	OpDomain:        {name: "domain", operands: rel, result: ResultSet},
	OpCodomain:      {name: "codomain", operands: rel, result: ResultSet},
	OpClosureRef:    {name: "closure_ref", operands: rel, result: ResultRelation},
	OpClosureSym:    {name: "closure_sym", operands: rel, result: ResultRelation},
	OpClosureTrans:  {name: "closure_trans", operands: rel, result: ResultRelation},
	OpInjective:     {name: "injective", operands: relAndAB, result: ResultBool, branch: true},
	OpSurjective:    {name: "surjective", operands: relAndAB, result: ResultBool, branch: true},
	OpBijective:     {name: "bijective", operands: relAndAB, result: ResultBool, branch: true},
	OpSelect:        {name: "select", operands: []Operand{OperandAny}, result: ResultSet, branch: true},
}

var opByName = func() map[string]OpCode {
	m := make(map[string]OpCode, numOps)
	for op := OpCode(0); op < numOps; op++ {
		m[opTable[op].name] = op
	}
	return m
}()

// LookupOp maps an operation name to its OpCode.
func LookupOp(name string) (OpCode, bool) {
	op, ok := opByName[name]
	return op, ok
}

// OpNames lists every operation name in canonical order. These words are
// reserved and cannot appear in the universe.
func OpNames() []string {
	names := make([]string, 0, numOps)
	for op := OpCode(0); op < numOps; op++ {
		names = append(names, opTable[op].name)
	}
	return names
}

func (op OpCode) String() string {
	if op < 0 || op >= numOps {
		return "unknown"
	}
	return opTable[op].name
}

// Arity is the number of operand line references the operation takes.
func (op OpCode) Arity() int { return len(opTable[op].operands) }

// Branches reports whether the operation accepts a trailing jump target.
func (op OpCode) Branches() bool { return opTable[op].branch }

func (op OpCode) Operands() []Operand { return opTable[op].operands }

func (op OpCode) Result() ResultKind { return opTable[op].result }

// Produces reports whether the operation yields an addressable entity.
func (op OpCode) Produces() bool {
	r := opTable[op].result
	return r == ResultSet || r == ResultRelation
}
