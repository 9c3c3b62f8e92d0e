package compiler

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RobertP-SyndicateLabs/setcal/diag"
	"github.com/RobertP-SyndicateLabs/setcal/entity"
	"github.com/RobertP-SyndicateLabs/setcal/setops"
)

// Options configures a run. The zero value is usable: output is
// discarded, logging is off and select is seeded from the clock.
type Options struct {
	Out    io.Writer
	Logger *zap.Logger
	Limits Limits

	// Seed for select; 0 seeds from the clock. Ignored when Rand is set.
	Seed uint64
	Rand *rand.Rand

	// RunID tags log lines; generated when empty.
	RunID string
}

func (o Options) withDefaults() Options {
	if o.Out == nil {
		o.Out = io.Discard
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	def := DefaultLimits()
	if o.Limits.MaxLines == 0 {
		o.Limits.MaxLines = def.MaxLines
	}
	if o.Limits.MaxLabelLength == 0 {
		o.Limits.MaxLabelLength = def.MaxLabelLength
	}
	if o.Limits.StepFactor <= 0 {
		o.Limits.StepFactor = def.StepFactor
	}
	if o.Rand == nil {
		seed := o.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		o.Rand = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	return o
}

// ---- PUBLIC ENTRYPOINTS ----

// Parse scans and parses src into a Program.
func Parse(src, filename string, limits Limits, log *zap.Logger) (*Program, error) {
	return NewParser(NewLexer(src, filename), limits, log).ParseProgram()
}

// RunFile: high-level entry to parse and execute a program file.
func RunFile(path string, opts Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}

	opts = opts.withDefaults()
	prog, err := Parse(string(data), path, opts.Limits, opts.Logger)
	if err != nil {
		return err
	}
	return Run(prog, opts)
}

// Run executes a parsed program.
func Run(prog *Program, opts Options) error {
	return NewInterpreter(prog, opts).Execute()
}

// ---- INTERPRETER ----

// Interpreter walks a Program's lines with a program counter. Declaration
// lines echo their entity; command lines resolve operands, dispatch to
// setops, and may register a result or jump.
type Interpreter struct {
	prog  *Program
	out   io.Writer
	w     *bufio.Writer
	log   *zap.Logger
	rng   *rand.Rand
	limit Limits

	steps   int
	visited []bool // declaration lines already echoed, by line-1
}

func NewInterpreter(prog *Program, opts Options) *Interpreter {
	opts = opts.withDefaults()
	return &Interpreter{
		prog:  prog,
		out:   opts.Out,
		log:   opts.Logger.With(zap.String("run_id", opts.RunID)),
		rng:   opts.Rand,
		limit: opts.Limits,
	}
}

// Steps is the number of lines visited by the last Execute.
func (in *Interpreter) Steps() int { return in.steps }

func (in *Interpreter) budget() int {
	cmds := len(in.prog.Commands)
	if cmds < 1 {
		cmds = 1
	}
	return in.limit.StepFactor * len(in.prog.Lines) * cmds
}

// Execute runs the program once from line 1. Output written before an
// error is still flushed.
func (in *Interpreter) Execute() (err error) {
	in.w = bufio.NewWriter(in.out)
	defer func() {
		if ferr := in.w.Flush(); err == nil && ferr != nil {
			err = fmt.Errorf("write error: %w", ferr)
		}
	}()

	in.steps = 0
	in.visited = make([]bool, len(in.prog.Lines))
	budget := in.budget()
	in.log.Debug("run start",
		zap.String("file", in.prog.File),
		zap.Int("lines", len(in.prog.Lines)),
		zap.Int("first_command", in.prog.FirstCommandLine()),
		zap.Int("budget", budget))

	pc := 1
	for pc <= len(in.prog.Lines) {
		// Safety cap: backward jumps can revisit lines forever.
		if in.steps >= budget {
			return diag.WithFile(diag.New(diag.KindRuntime, diag.CodeStepBudgetExceeded, pc,
				"exceeded %d steps; possible infinite jump loop", budget), in.prog.File)
		}
		in.steps++

		line := in.prog.Lines[pc-1]
		if line.Kind != LineCommand {
			// Declarations print once per pass; a jump back passes through.
			if !in.visited[pc-1] {
				in.visited[pc-1] = true
				if err := in.echo(line); err != nil {
					return diag.WithFile(err, in.prog.File)
				}
			}
			pc++
			continue
		}

		next, err := in.execCommand(line.Command)
		if err != nil {
			return diag.WithFile(err, in.prog.File)
		}
		pc = next
	}

	in.log.Debug("run finished", zap.Int("steps", in.steps))
	return nil
}

func (in *Interpreter) println(s string) {
	in.w.WriteString(s)
	in.w.WriteByte('\n')
}

func (in *Interpreter) echo(line Line) error {
	store := in.prog.Store
	u := store.Universe()
	switch line.Kind {
	case LineUniverse, LineSet:
		s, ok := store.SetAt(line.Number)
		if !ok {
			return diag.New(diag.KindArgument, diag.CodeNotFound, line.Number, "no set on line %d", line.Number)
		}
		in.println(entity.FormatSet(u, s))
	case LineRelation:
		r, ok := store.RelationAt(line.Number)
		if !ok {
			return diag.New(diag.KindArgument, diag.CodeNotFound, line.Number, "no relation on line %d", line.Number)
		}
		in.println(entity.FormatRelation(u, r))
	}
	return nil
}

// ---- COMMANDS ----

// operand is a resolved argument: exactly one of set, rel is non-nil.
type operand struct {
	set *entity.Set
	rel *entity.Relation
}

// execCommand runs c and returns the next program counter.
func (in *Interpreter) execCommand(c *Command) (int, error) {
	next := c.Line + 1

	// Value commands are single-write: a revisit reprints the cached result.
	if c.morphed {
		in.log.Debug("replay", zap.Int("line", c.Line), zap.Stringer("op", c.Op))
		return next, in.replay(c)
	}

	ops, err := in.resolve(c)
	if err != nil {
		return 0, err
	}
	c.executed = true

	in.log.Debug("exec",
		zap.Int("line", c.Line),
		zap.Stringer("op", c.Op),
		zap.Ints("args", c.Args))

	store := in.prog.Store
	u := store.Universe()

	switch c.Op.Result() {
	case ResultBool:
		ok := in.predicate(c.Op, ops)
		in.println(strconv.FormatBool(ok))
		if !ok && c.Target > 0 {
			in.log.Debug("jump", zap.Int("from", c.Line), zap.Int("to", c.Target))
			return c.Target, nil
		}

	case ResultScalar:
		in.println(strconv.Itoa(setops.Card(ops[0].set)))

	case ResultSet:
		items, ok := in.setValue(c.Op, ops)
		if !ok {
			// Only select can come back empty-handed.
			if c.Target > 0 {
				in.log.Debug("jump", zap.Int("from", c.Line), zap.Int("to", c.Target))
				return c.Target, nil
			}
			return 0, diag.New(diag.KindRuntime, diag.CodeEmptySelect, c.Line,
				"select: operand on line %d is empty", c.Args[0])
		}
		idx := store.RegisterDerivedSet(c.Line, items)
		c.morphed = true
		in.println(entity.FormatSet(u, store.Set(idx)))

	case ResultRelation:
		pairs := in.relationValue(c.Op, ops)
		idx := store.RegisterDerivedRelation(c.Line, pairs)
		c.morphed = true
		in.println(entity.FormatRelation(u, store.Relation(idx)))
	}

	return next, nil
}

func (in *Interpreter) replay(c *Command) error {
	store := in.prog.Store
	u := store.Universe()
	if c.Op.Result() == ResultRelation {
		r, ok := store.RelationAt(c.Line)
		if !ok {
			return diag.New(diag.KindArgument, diag.CodeNotFound, c.Line, "no cached relation on line %d", c.Line)
		}
		in.println(entity.FormatRelation(u, r))
		return nil
	}
	s, ok := store.SetAt(c.Line)
	if !ok {
		return diag.New(diag.KindArgument, diag.CodeNotFound, c.Line, "no cached set on line %d", c.Line)
	}
	in.println(entity.FormatSet(u, s))
	return nil
}

func (in *Interpreter) resolve(c *Command) ([]operand, error) {
	want := c.Op.Operands()
	out := make([]operand, len(c.Args))
	for i, ref := range c.Args {
		o, err := in.resolveOperand(c, ref, want[i])
		if err != nil {
			return nil, err
		}
		out[i] = o
	}
	return out, nil
}

func (in *Interpreter) resolveOperand(c *Command, ref int, want Operand) (operand, error) {
	line, ok := in.prog.Line(ref)
	if !ok {
		return operand{}, diag.New(diag.KindArgument, diag.CodeInvalidOperand, c.Line,
			"%s: line %d does not exist", c.Op, ref)
	}
	store := in.prog.Store
	wantSet := want == OperandSet || want == OperandAny
	wantRel := want == OperandRelation || want == OperandAny

	if ref == c.Line {
		return operand{}, diag.New(diag.KindArgument, diag.CodeInvalidOperand, c.Line,
			"%s: a command cannot use its own line %d as an operand", c.Op, ref)
	}

	if line.Kind == LineCommand && !line.Command.morphed {
		target := line.Command
		if target.executed || !target.Op.Produces() {
			return operand{}, diag.New(diag.KindArgument, diag.CodeInvalidOperand, c.Line,
				"%s: line %d (%s) holds no set or relation", c.Op, ref, target.Op)
		}

		// Forward reference: bind an empty stand-in until that line runs.
		switch {
		case target.Op.Result() == ResultSet && wantSet:
			idx := store.PlaceholderSet(ref)
			in.log.Debug("placeholder", zap.Int("line", c.Line), zap.Int("ref", ref), zap.String("kind", "set"))
			return operand{set: store.Set(idx)}, nil
		case target.Op.Result() == ResultRelation && wantRel:
			idx := store.PlaceholderRelation(ref)
			in.log.Debug("placeholder", zap.Int("line", c.Line), zap.Int("ref", ref), zap.String("kind", "relation"))
			return operand{rel: store.Relation(idx)}, nil
		}
		return operand{}, diag.New(diag.KindArgument, diag.CodeInvalidOperand, c.Line,
			"%s: line %d (%s) does not yield a %s", c.Op, ref, target.Op, want)
	}

	if wantSet {
		if s, ok := store.SetAt(ref); ok {
			return operand{set: s}, nil
		}
	}
	if wantRel {
		if r, ok := store.RelationAt(ref); ok {
			return operand{rel: r}, nil
		}
	}
	return operand{}, diag.New(diag.KindArgument, diag.CodeInvalidOperand, c.Line,
		"%s: line %d is not a %s", c.Op, ref, want)
}

// ---- DISPATCH ----

func (in *Interpreter) predicate(op OpCode, ops []operand) bool {
	u := in.prog.Store.Universe()
	switch op {
	case OpEmpty:
		return setops.Empty(ops[0].set)
	case OpSubsetEq:
		return setops.SubsetEq(ops[0].set, ops[1].set)
	case OpSubset:
		return setops.Subset(ops[0].set, ops[1].set)
	case OpEquals:
		return setops.Equals(ops[0].set, ops[1].set)
	case OpReflexive:
		return setops.Reflexive(u, ops[0].rel)
	case OpSymmetric:
		return setops.Symmetric(ops[0].rel)
	case OpAntisymmetric:
		return setops.Antisymmetric(ops[0].rel)
	case OpTransitive:
		return setops.Transitive(ops[0].rel)
	case OpFunction:
		return setops.Function(ops[0].rel)
	case OpInjective:
		return setops.Injective(ops[0].rel, ops[1].set, ops[2].set)
	case OpSurjective:
		return setops.Surjective(ops[0].rel, ops[1].set, ops[2].set)
	case OpBijective:
		return setops.Bijective(ops[0].rel, ops[1].set, ops[2].set)
	}
	panic("predicate: unhandled op " + op.String())
}

// setValue computes a set-valued op; ok is false only for select on an
// empty operand.
func (in *Interpreter) setValue(op OpCode, ops []operand) ([]int, bool) {
	u := in.prog.Store.Universe()
	switch op {
	case OpComplement:
		return setops.Complement(u, ops[0].set), true
	case OpUnion:
		return setops.Union(ops[0].set, ops[1].set), true
	case OpIntersect:
		return setops.Intersect(ops[0].set, ops[1].set), true
	case OpMinus:
		return setops.Minus(ops[0].set, ops[1].set), true
	case OpDomain:
		return setops.Domain(ops[0].rel), true
	case OpCodomain:
		return setops.Codomain(ops[0].rel), true
	case OpSelect:
		var items []int
		if ops[0].set != nil {
			items = ops[0].set.Items
		} else {
			items = setops.Domain(ops[0].rel)
		}
		x, ok := setops.Select(in.rng, items)
		if !ok {
			return nil, false
		}
		return []int{x}, true
	}
	panic("setValue: unhandled op " + op.String())
}

func (in *Interpreter) relationValue(op OpCode, ops []operand) []entity.Pair {
	u := in.prog.Store.Universe()
	switch op {
	case OpClosureRef:
		return setops.ClosureRef(u, ops[0].rel)
	case OpClosureSym:
		return setops.ClosureSym(ops[0].rel)
	case OpClosureTrans:
		return setops.ClosureTrans(ops[0].rel)
	}
	panic("relationValue: unhandled op " + op.String())
}
