package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationTable(t *testing.T) {
	names := OpNames()
	assert.Len(t, names, 23)
	assert.Equal(t, "empty", names[0])
	assert.Equal(t, "select", names[22])

	for i, name := range names {
		op, ok := LookupOp(name)
		assert.True(t, ok, name)
		assert.Equal(t, OpCode(i), op)
		assert.Equal(t, name, op.String())
	}

	_, ok := LookupOp("Union")
	assert.False(t, ok, "names are case sensitive")
	assert.Equal(t, "unknown", OpCode(99).String())
}

func TestOperationShapes(t *testing.T) {
	cases := []struct {
		op       OpCode
		arity    int
		branches bool
		result   ResultKind
	}{
		{OpEmpty, 1, true, ResultBool},
		{OpCard, 1, false, ResultScalar},
		{OpComplement, 1, false, ResultSet},
		{OpUnion, 2, false, ResultSet},
		{OpEquals, 2, true, ResultBool},
		{OpReflexive, 1, true, ResultBool},
		{OpDomain, 1, false, ResultSet},
		{OpClosureTrans, 1, false, ResultRelation},
		{OpBijective, 3, true, ResultBool},
		{OpSelect, 1, true, ResultSet},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.arity, tc.op.Arity(), tc.op.String())
		assert.Equal(t, tc.branches, tc.op.Branches(), tc.op.String())
		assert.Equal(t, tc.result, tc.op.Result(), tc.op.String())
	}

	assert.True(t, OpUnion.Produces())
	assert.True(t, OpClosureSym.Produces())
	assert.False(t, OpCard.Produces())
	assert.False(t, OpSubset.Produces())

	assert.Equal(t, []Operand{OperandRelation, OperandSet, OperandSet}, OpInjective.Operands())
	assert.Equal(t, "set or relation", OpSelect.Operands()[0].String())
}
