package parser

// Mode selects which lexical rules the scanner applies.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeString
	ModeTemplate
	ModeRegex
	ModeRegexFlags
	ModeJSXTag
	ModeJSXString
	ModeJSXText
)

var modeNames = [...]string{
	ModeNormal:     "normal",
	ModeString:     "string",
	ModeTemplate:   "template",
	ModeRegex:      "regex",
	ModeRegexFlags: "regex-flags",
	ModeJSXTag:     "jsx-tag",
	ModeJSXString:  "jsx-string",
	ModeJSXText:    "jsx-text",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Context tells the scanner what kind of token the parser can accept next.
// It only matters for '/', '<' and a '.' followed by a digit.
type Context uint8

const (
	ExpectValue Context = iota
	ExpectOperator
)

func (c Context) String() string {
	if c == ExpectOperator {
		return "operator"
	}
	return "value"
}

// Frame is one entry of the scanner's mode stack.
type Frame struct {
	Mode Mode

	// Quote is the delimiter of a string frame.
	Quote byte

	// Depth counts the braces opened inside a normal frame.
	Depth int

	// Embedded is set on normal frames entered through "${" or a JSX "{";
	// the '}' that brings Depth back below zero pops them.
	Embedded bool

	// Closing marks a JSX tag frame entered through "</".
	Closing bool
}

// ScannerState is an immutable stack of frames. Pushing and popping return
// new states and never touch the receiver, so checkpoints are a plain copy.
type ScannerState struct {
	top *stateNode
}

type stateNode struct {
	frame Frame
	below *stateNode
	size  int
}

func rootState() ScannerState {
	return ScannerState{top: &stateNode{frame: Frame{Mode: ModeNormal}, size: 1}}
}

func (s ScannerState) Top() Frame {
	if s.top == nil {
		return Frame{Mode: ModeNormal}
	}
	return s.top.frame
}

func (s ScannerState) Size() int {
	if s.top == nil {
		return 1
	}
	return s.top.size
}

// AtRoot reports whether the state is the outermost normal frame with no
// open braces.
func (s ScannerState) AtRoot() bool {
	top := s.Top()
	return s.Size() == 1 && top.Mode == ModeNormal && top.Depth == 0
}

func (s ScannerState) push(f Frame) ScannerState {
	return ScannerState{top: &stateNode{frame: f, below: s.top, size: s.Size() + 1}}
}

// pop never removes the root frame.
func (s ScannerState) pop() ScannerState {
	if s.top == nil || s.top.below == nil {
		return s
	}
	return ScannerState{top: s.top.below}
}

func (s ScannerState) replace(f Frame) ScannerState {
	if s.top == nil {
		return ScannerState{top: &stateNode{frame: f, size: 1}}
	}
	return ScannerState{top: &stateNode{frame: f, below: s.top.below, size: s.top.size}}
}

type transitionOp uint8

const (
	transNone transitionOp = iota
	transPush
	transPop
	transReplace
)

type transition struct {
	op    transitionOp
	frame Frame
}

func (s ScannerState) apply(t transition) ScannerState {
	switch t.op {
	case transPush:
		return s.push(t.frame)
	case transPop:
		return s.pop()
	case transReplace:
		return s.replace(t.frame)
	}
	return s
}
