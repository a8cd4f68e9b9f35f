// Package disasm prints a human-readable listing of a compiled Chunk and
// of the compiler's interned global names, for the CLI's "-dump-chunk"
// flag. It is diagnostic tooling, not part of the core pipeline's
// semantics (spec.md §1 excludes diagnostic formatting from the core).
package disasm

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/wudi/ccb/compiler"
	"github.com/wudi/ccb/opcodes"
)

// Chunk writes a full disassembly of c to w, in the traditional
// "# Chunk" header + one-line-per-instruction form.
func Chunk(w io.Writer, c *compiler.Chunk) {
	fmt.Fprintf(w, "# Chunk: %s code, %d constants\n",
		humanize.Bytes(uint64(len(c.Code))), len(c.Constants))

	ip := 0
	for ip < len(c.Code) {
		op := opcodes.Op(c.Code[ip])
		width := opcodes.OperandWidth(op)
		fmt.Fprintf(w, "%04d  %-14s", ip, op)
		for _, b := range c.Code[ip+1 : ip+1+width] {
			fmt.Fprintf(w, " %02x", b)
		}
		fmt.Fprintln(w)
		ip += 1 + width
	}
}

// Globals writes the compiler's interned global-name table in
// deterministic, id-sorted order.
func Globals(w io.Writer, names map[string]int) {
	ids := maps.Values(names)
	slices.Sort(ids)

	byID := make(map[int]string, len(names))
	for name, id := range names {
		byID[id] = name
	}
	for _, id := range ids {
		fmt.Fprintf(w, "  %3d  %s\n", id, byID[id])
	}
}

// Profile writes per-opcode execution counts gathered during a run,
// busiest first.
func Profile(w io.Writer, counts map[opcodes.Op]int) {
	type row struct {
		op    opcodes.Op
		count int
	}
	rows := make([]row, 0, len(counts))
	for op, n := range counts {
		rows = append(rows, row{op, n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].count > rows[j].count })
	for _, r := range rows {
		fmt.Fprintf(w, "  %-14s %d\n", r.op, r.count)
	}
}
