package disassembler

import (
	"fmt"

	"github.com/Urethramancer/sicxe/cpu"
)

// LabelType defines the context of a label.
type LabelType int

const (
	// JumpTarget is for J, JEQ, JGT and JLT targets.
	JumpTarget LabelType = iota
	// SubroutineEntry is for a JSUB target.
	SubroutineEntry
)

// isJump checks if an instruction transfers control to its operand.
func isJump(inst *Instruction) bool {
	switch inst.Op.Opcode {
	case cpu.OPJ, cpu.OPJEQ, cpu.OPJGT, cpu.OPJLT, cpu.OPJSUB:
		return true
	}
	return false
}

// isTerminal checks if an instruction unconditionally stops linear execution.
func isTerminal(inst *Instruction) bool {
	return inst.Op.Opcode == cpu.OPJ || inst.Op.Opcode == cpu.OPRSUB
}

// labelName generates a label string based on the address and its context.
func labelName(addr int, labelType LabelType) string {
	prefix := "loc_"
	if labelType == SubroutineEntry {
		prefix = "sub_"
	}
	return fmt.Sprintf("%s%06X", prefix, addr)
}

// addrQueue is a simple worklist queue for addresses to decode.
type addrQueue struct {
	items []int
	seen  map[int]bool
}

func newQueue() *addrQueue {
	return &addrQueue{seen: make(map[int]bool)}
}

func (q *addrQueue) push(addr int) {
	if !q.seen[addr] {
		q.items = append(q.items, addr)
		q.seen[addr] = true
	}
}

func (q *addrQueue) pop() (int, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	a := q.items[0]
	q.items = q.items[1:]
	return a, true
}
