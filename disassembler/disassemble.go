package disassembler

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/Urethramancer/sicxe/cpu"
)

// Disassemble renders memory in [start,end) as SIC/XE assembly. Code is
// found by following control flow from the entry points, start when none
// are given; everything unreachable is rendered as data.
func Disassemble(mem *cpu.Memory, start, end int, entries ...int) (string, error) {
	if start < 0 || end > len(mem.Data) || start > end {
		return "", errors.Errorf("range %06X-%06X outside memory of %d bytes", start, end, len(mem.Data))
	}
	if start == end {
		return "", nil
	}
	if len(entries) == 0 {
		entries = []int{start}
	}
	table := cpu.NewTable()

	// --- STAGE 1: Linear Sweep ---
	instructions := make(map[int]*Instruction)
	for pc := start; pc < end; pc++ {
		if inst, ok := Decode(mem, table, pc, end); ok {
			instructions[pc] = inst
		}
	}

	// --- STAGE 2: Control Flow Analysis ---
	labels := make(map[int]LabelType)
	q := newQueue()
	for _, e := range entries {
		q.push(e)
	}
	for {
		addr, ok := q.pop()
		if !ok {
			break
		}
		inst, exists := instructions[addr]
		if !exists || inst.IsCode {
			continue
		}
		inst.IsCode = true

		if !isTerminal(inst) {
			q.push(addr + inst.Size)
		}
		if isJump(inst) && inst.Target >= start && inst.Target < end {
			q.push(inst.Target)
			if inst.Op.Opcode == cpu.OPJSUB {
				labels[inst.Target] = SubroutineEntry
			} else if _, exists := labels[inst.Target]; !exists {
				labels[inst.Target] = JumpTarget
			}
		}
	}

	// --- STAGE 3: Render Final Output ---
	var out strings.Builder
	isCode := func(addr int) bool {
		inst, ok := instructions[addr]
		return ok && inst.IsCode
	}
	for pc := start; pc < end; {
		if !isCode(pc) {
			dataEnd := pc
			for dataEnd < end && !isCode(dataEnd) {
				dataEnd++
			}
			out.WriteString(formatData(mem.Slice(pc, dataEnd), pc))
			pc = dataEnd
			continue
		}

		inst := instructions[pc]
		label := ""
		if lt, ok := labels[pc]; ok {
			label = labelName(pc, lt)
		}
		operands := inst.Operands
		if isJump(inst) && inst.Target >= 0 {
			if lt, ok := labels[inst.Target]; ok {
				operands = labelName(inst.Target, lt)
			}
		}
		writeLine(&out, pc, label, inst.Mnemonic, operands, inst.Comment)
		pc += inst.Size
	}

	return out.String(), nil
}

// writeLine prints one listing line: address, label, mnemonic, operands
// and an optional comment.
func writeLine(sb *strings.Builder, addr int, label, mnemonic, operands, comment string) {
	line := fmt.Sprintf("%06X  %-10s %-8s %s", addr, label, mnemonic, operands)
	if comment != "" {
		line += " . " + comment
	}
	sb.WriteString(strings.TrimRight(line, " "))
	sb.WriteByte('\n')
}
