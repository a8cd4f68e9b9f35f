// Package opcodes defines the single-byte instruction set emitted by the
// compiler and executed by the VM.
package opcodes

// Op is a single bytecode instruction tag.
type Op byte

// Inline operand widths are fixed per opcode: u8 for constant/global/local
// indices, u16 big-endian for jump offsets and call targets.
const (
	CONSTANT Op = iota // u8 idx        -> push constants[idx]
	POP                // —             -> discard TOS

	DEFINE_GLOBAL // u8 name_id    -> globals[name_id] = pop()
	GET_GLOBAL    // u8 name_id    -> push globals[name_id]
	SET_GLOBAL    // u8 name_id    -> globals[name_id] = TOS (no pop)

	GET_LOCAL // u8 slot -> push frame.base[slot]
	SET_LOCAL // u8 slot -> frame.base[slot] = TOS (no pop)

	ADD // pop b, pop a, push a+b
	SUB // pop b, pop a, push a-b
	MUL // pop b, pop a, push a*b
	DIV // pop b, pop a, push a/b (truncating)

	LESS            // a < b
	GREATER         // a > b
	LESS_EQUAL      // a <= b
	GREATER_EQUAL   // a >= b
	EQUAL           // a == b
	NOT_EQUAL       // a != b

	JUMP          // u16 offset -> ip += offset
	JUMP_IF_FALSE // u16 offset -> pop; if popped == 0, ip += offset
	LOOP          // u16 offset -> ip -= offset

	IN       // u8 name_id -> read int into globals[name_id]
	IN_LOCAL // u8 slot    -> read int into frame.base[slot]
	OUT      // pop, print decimal + newline

	CALL   // u16 target, u8 argc -> push frame, jump to target
	RETURN // pop retval, unwind frame (or halt at top level)
)

var names = [...]string{
	CONSTANT:      "CONSTANT",
	POP:           "POP",
	DEFINE_GLOBAL: "DEFINE_GLOBAL",
	GET_GLOBAL:    "GET_GLOBAL",
	SET_GLOBAL:    "SET_GLOBAL",
	GET_LOCAL:     "GET_LOCAL",
	SET_LOCAL:     "SET_LOCAL",
	ADD:           "ADD",
	SUB:           "SUB",
	MUL:           "MUL",
	DIV:           "DIV",
	LESS:          "LESS",
	GREATER:       "GREATER",
	LESS_EQUAL:    "LESS_EQUAL",
	GREATER_EQUAL: "GREATER_EQUAL",
	EQUAL:         "EQUAL",
	NOT_EQUAL:     "NOT_EQUAL",
	JUMP:          "JUMP",
	JUMP_IF_FALSE: "JUMP_IF_FALSE",
	LOOP:          "LOOP",
	IN:            "IN",
	IN_LOCAL:      "IN_LOCAL",
	OUT:           "OUT",
	CALL:          "CALL",
	RETURN:        "RETURN",
}

// String renders the opcode's mnemonic, or "OP_UNKNOWN" for any byte
// value outside the defined set (which the VM treats as a fatal runtime
// error at execution time).
func (op Op) String() string {
	if int(op) < len(names) && names[op] != "" {
		return names[op]
	}
	return "OP_UNKNOWN"
}

// OperandWidth returns the number of bytes of inline operand data that
// follow the opcode byte itself.
func OperandWidth(op Op) int {
	switch op {
	case CONSTANT, DEFINE_GLOBAL, GET_GLOBAL, SET_GLOBAL, GET_LOCAL, SET_LOCAL, IN, IN_LOCAL:
		return 1
	case JUMP, JUMP_IF_FALSE, LOOP:
		return 2
	case CALL:
		return 3 // u16 target + u8 argc
	default:
		return 0
	}
}
