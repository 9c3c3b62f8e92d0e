package compiler

import "github.com/RobertP-SyndicateLabs/setcal/entity"

// LineKind is what a source line declares.
type LineKind int

const (
	LineUniverse LineKind = iota
	LineSet
	LineRelation
	LineCommand
)

func (k LineKind) String() string {
	switch k {
	case LineUniverse:
		return "U"
	case LineSet:
		return "S"
	case LineRelation:
		return "R"
	default:
		return "C"
	}
}

// Line is one entry of the program's line table. Lines are addressed by
// their 1-based number; Program.Lines[n-1] is line n.
type Line struct {
	Number  int
	Kind    LineKind
	Command *Command // set when Kind == LineCommand
}

// Command is a parsed C line plus its execution state.
type Command struct {
	Line int
	Op   OpCode
	Args []int // operand line references
	// Target is the jump line taken when a predicate is false; 0 means none.
	Target int

	executed bool // the line has been reached at least once
	morphed  bool // a result entity was registered for this line
}

func (c *Command) Executed() bool { return c.executed }

func (c *Command) Morphed() bool { return c.morphed }

// Program is the parsed input: the line table, the commands in source
// order and the entity store filled by the declarations.
type Program struct {
	File     string
	Lines    []Line
	Commands []*Command
	Store    *entity.Store
}

// Line returns line n, or false when n is outside the file.
func (p *Program) Line(n int) (Line, bool) {
	if n < 1 || n > len(p.Lines) {
		return Line{}, false
	}
	return p.Lines[n-1], true
}

// FirstCommandLine is the line number of the first C line.
func (p *Program) FirstCommandLine() int {
	if len(p.Commands) == 0 {
		return 0
	}
	return p.Commands[0].Line
}
