// Package vm executes a compiled Chunk with a value stack, a globals
// table, and a bounded call-frame stack.
package vm

import (
	"bufio"
	"fmt"
	"io"

	"github.com/wudi/ccb/compiler"
	"github.com/wudi/ccb/internal/ccblog"
	"github.com/wudi/ccb/internal/config"
	"github.com/wudi/ccb/internal/diag"
	"github.com/wudi/ccb/opcodes"
)

// frame pairs a return instruction pointer with a base pointer into the
// value stack, one per active function call.
type frame struct {
	returnIP int
	base     int
}

// VM is the bytecode interpreter. It is not safe for concurrent use; one
// VM executes one Chunk at a time, matching the single-threaded,
// process-wide singleton shape of spec.md §5 (here an explicit value
// instead of a global, per spec.md §9's design note).
type VM struct {
	stack    []int
	stackTop int
	frames   []frame
	globals  [256]int

	out    io.Writer
	in     *bufio.Reader
	tracer *ccblog.Logger

	profile map[opcodes.Op]int
}

// New creates a VM bounded by lim, writing OUT output to out and reading
// IN input from in. tracer may be nil to disable instruction tracing.
func New(lim config.Limits, out io.Writer, in io.Reader, tracer *ccblog.Logger) *VM {
	return &VM{
		stack:   make([]int, lim.StackSize),
		frames:  make([]frame, 0, lim.FrameStackSize),
		out:     out,
		in:      bufio.NewReader(in),
		tracer:  tracer,
		profile: make(map[opcodes.Op]int),
	}
}

// Profile returns the per-opcode execution counts gathered by this VM's
// runs; every executed opcode is counted, whether or not tracing is on.
func (m *VM) Profile() map[opcodes.Op]int {
	return m.profile
}

func readU16(code []byte, ip int) int {
	return int(code[ip])<<8 | int(code[ip+1])
}

// Run executes chunk from offset 0 to its top-level RETURN, or returns the
// first fatal runtime error encountered.
func (m *VM) Run(chunk *compiler.Chunk) error {
	return m.RunFrom(chunk, 0)
}

// RunFrom executes chunk starting at ip instead of offset 0, reusing the
// VM's current globals and starting from an empty value stack and frame
// stack, as at a top-level boundary. This lets a REPL compile and run one increment of a growing
// chunk at a time instead of re-executing everything from the start.
func (m *VM) RunFrom(chunk *compiler.Chunk, ip int) error {
	m.stackTop = 0
	m.frames = m.frames[:0]
	code := chunk.Code
	maxStack := len(m.stack)
	maxFrames := cap(m.frames)

	push := func(v int) error {
		if m.stackTop >= maxStack {
			return diag.NewRuntimeError("stack overflow (depth > %d)", maxStack)
		}
		m.stack[m.stackTop] = v
		m.stackTop++
		return nil
	}
	pop := func() int {
		m.stackTop--
		return m.stack[m.stackTop]
	}
	peek := func() int {
		return m.stack[m.stackTop-1]
	}

	for {
		if m.tracer.Enabled() {
			op := opcodes.Op(code[ip])
			m.tracer.Trace(ip, op.String(), m.stackTop)
		}

		op := opcodes.Op(code[ip])
		ip++
		m.profile[op]++

		switch op {
		case opcodes.CONSTANT:
			idx := code[ip]
			ip++
			if err := push(chunk.Constants[idx]); err != nil {
				return err
			}

		case opcodes.POP:
			pop()

		case opcodes.DEFINE_GLOBAL:
			id := code[ip]
			ip++
			m.globals[id] = pop()

		case opcodes.GET_GLOBAL:
			id := code[ip]
			ip++
			if err := push(m.globals[id]); err != nil {
				return err
			}

		case opcodes.SET_GLOBAL:
			id := code[ip]
			ip++
			m.globals[id] = peek()

		case opcodes.GET_LOCAL:
			slot := code[ip]
			ip++
			base := m.frames[len(m.frames)-1].base
			if err := push(m.stack[base+int(slot)]); err != nil {
				return err
			}

		case opcodes.SET_LOCAL:
			slot := code[ip]
			ip++
			base := m.frames[len(m.frames)-1].base
			m.stack[base+int(slot)] = peek()

		case opcodes.ADD:
			b, a := pop(), pop()
			if err := push(a + b); err != nil {
				return err
			}
		case opcodes.SUB:
			b, a := pop(), pop()
			if err := push(a - b); err != nil {
				return err
			}
		case opcodes.MUL:
			b, a := pop(), pop()
			if err := push(a * b); err != nil {
				return err
			}
		case opcodes.DIV:
			b, a := pop(), pop()
			if b == 0 {
				return diag.NewRuntimeError("division by zero")
			}
			if err := push(a / b); err != nil {
				return err
			}

		case opcodes.LESS:
			b, a := pop(), pop()
			if err := push(boolToInt(a < b)); err != nil {
				return err
			}
		case opcodes.GREATER:
			b, a := pop(), pop()
			if err := push(boolToInt(a > b)); err != nil {
				return err
			}
		case opcodes.LESS_EQUAL:
			b, a := pop(), pop()
			if err := push(boolToInt(a <= b)); err != nil {
				return err
			}
		case opcodes.GREATER_EQUAL:
			b, a := pop(), pop()
			if err := push(boolToInt(a >= b)); err != nil {
				return err
			}
		case opcodes.EQUAL:
			b, a := pop(), pop()
			if err := push(boolToInt(a == b)); err != nil {
				return err
			}
		case opcodes.NOT_EQUAL:
			b, a := pop(), pop()
			if err := push(boolToInt(a != b)); err != nil {
				return err
			}

		case opcodes.JUMP:
			offset := readU16(code, ip)
			ip += 2
			ip += offset

		case opcodes.JUMP_IF_FALSE:
			offset := readU16(code, ip)
			if peek() == 0 {
				ip = ip + 2 + offset
			} else {
				ip += 2
			}
			pop()

		case opcodes.LOOP:
			offset := readU16(code, ip)
			ip += 2
			ip -= offset

		case opcodes.IN:
			id := code[ip]
			ip++
			m.globals[id] = m.readInt()

		case opcodes.IN_LOCAL:
			slot := code[ip]
			ip++
			base := m.frames[len(m.frames)-1].base
			m.stack[base+int(slot)] = m.readInt()

		case opcodes.OUT:
			fmt.Fprintf(m.out, "%d\n", pop())

		case opcodes.CALL:
			target := readU16(code, ip)
			ip += 2
			argc := int(code[ip])
			ip++
			if len(m.frames) >= maxFrames {
				return diag.NewRuntimeError("call stack overflow (depth > %d)", maxFrames)
			}
			m.frames = append(m.frames, frame{returnIP: ip, base: m.stackTop - argc})
			ip = target

		case opcodes.RETURN:
			if len(m.frames) == 0 {
				return nil
			}
			retval := pop()
			f := m.frames[len(m.frames)-1]
			m.frames = m.frames[:len(m.frames)-1]
			m.stackTop = f.base
			if err := push(retval); err != nil {
				return err
			}
			ip = f.returnIP

		default:
			return diag.NewRuntimeError("unknown opcode %d at ip %d", byte(op), ip-1)
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// readInt reads one base-10 integer from standard input, whitespace
// separated. On parse failure it stores zero and drains to the next
// newline (spec.md §4.4).
func (m *VM) readInt() int {
	for {
		b, err := m.in.ReadByte()
		if err != nil {
			return 0
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		m.in.UnreadByte()
		break
	}

	neg := false
	if b, err := m.in.ReadByte(); err == nil {
		if b == '-' {
			neg = true
		} else {
			m.in.UnreadByte()
		}
	}

	var digits []byte
	for {
		b, err := m.in.ReadByte()
		if err != nil {
			break
		}
		if b < '0' || b > '9' {
			m.in.UnreadByte()
			break
		}
		digits = append(digits, b)
	}

	if len(digits) == 0 {
		m.drainLine()
		return 0
	}

	v := 0
	for _, d := range digits {
		v = v*10 + int(d-'0')
	}
	if neg {
		v = -v
	}
	return v
}

func (m *VM) drainLine() {
	for {
		b, err := m.in.ReadByte()
		if err != nil || b == '\n' {
			return
		}
	}
}
