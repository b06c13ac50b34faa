package disassembler

import (
	"fmt"
	"strconv"

	"github.com/Urethramancer/sicxe/cpu"
)

// Instruction represents a single decoded instruction at a specific address.
type Instruction struct {
	Address  int
	Size     int
	Op       *cpu.InstructionMnemonic
	Flags    cpu.Flags
	Mnemonic string
	Operands string
	Comment  string
	// Target is where a jump or call lands, or -1 when it is not known
	// without running the program.
	Target int
	IsCode bool // reachable from an entry point
}

// Decode decodes the instruction at addr. The whole instruction must lie
// below end; ok is false for bytes that do not form a valid instruction.
func Decode(mem *cpu.Memory, table *cpu.Table, addr, end int) (*Instruction, bool) {
	code := mem.Slice(addr, end)
	if len(code) == 0 {
		return nil, false
	}
	mn, ok := table.Opcode(code[0])
	if !ok {
		return nil, false
	}
	inst := &Instruction{Address: addr, Op: mn, Mnemonic: mn.Name, Target: -1}

	switch mn.Format {
	case cpu.Format1:
		if code[0] != mn.Opcode {
			return nil, false
		}
		inst.Size = 1
		return inst, true
	case cpu.Format3:
		if len(code) < 3 {
			return nil, false
		}
		inst.Size = 3
		return inst, true
	case cpu.Format34:
		return decodeMemory(inst, code)
	}

	if len(code) < 2 || code[0] != mn.Opcode {
		return nil, false
	}
	inst.Size = 2
	hi, lo := code[1]>>4, code[1]&0x0F
	r1, r2 := cpu.Register(hi), cpu.Register(lo)
	switch mn.Format {
	case cpu.Format2Num:
		inst.Operands = strconv.Itoa(int(hi))
	case cpu.Format2Reg:
		if !r1.Valid() {
			return nil, false
		}
		inst.Operands = r1.String()
	case cpu.Format2RegNum:
		if !r1.Valid() {
			return nil, false
		}
		inst.Operands = fmt.Sprintf("%s, %d", r1, lo)
	case cpu.Format2RegReg:
		if !r1.Valid() || !r2.Valid() {
			return nil, false
		}
		inst.Operands = fmt.Sprintf("%s, %s", r1, r2)
	}
	return inst, true
}

// decodeMemory decodes a format 3, format 4 or SIC memory instruction.
func decodeMemory(inst *Instruction, code []byte) (*Instruction, bool) {
	if len(code) < 3 {
		return nil, false
	}
	f := cpu.FlagsFromBytes(code[0], code[1])
	inst.Size = 3

	var operand int
	prefix, relative := "", ""
	switch {
	case f.IsSIC():
		// b, p and e are address bits here.
		f &= cpu.FlagIndexed
		operand = int(code[1]&0x7F)<<8 | int(code[2])
		inst.Target = operand
	case !f.IsValid():
		return nil, false
	case f.IsExtended():
		if len(code) < 4 {
			return nil, false
		}
		inst.Size = 4
		inst.Mnemonic = "+" + inst.Op.Name
		operand = int(code[1]&0x0F)<<16 | int(code[2])<<8 | int(code[3])
		inst.Target = operand
	default:
		operand = int(code[1]&0x0F)<<8 | int(code[2])
		switch {
		case f.IsPCRelative():
			operand = cpu.SignExtend(operand, 12)
			inst.Target = inst.Address + inst.Size + operand
			relative = "(PC) + "
			if operand < 0 {
				relative = "(PC) - "
				operand = -operand
				if inst.Op.Opcode == cpu.OPJ && operand == 3 {
					inst.Comment = "halt"
				}
			}
		case f.IsBaseRelative():
			relative = "(B) + "
		default:
			inst.Target = operand
		}
	}
	inst.Flags = f

	switch {
	case f.IsImmediate():
		prefix = "#"
	case f.IsIndirect():
		prefix = "@"
	}
	if f.IsIndexed() || !f.IsSimple() {
		inst.Target = -1
	}

	inst.Operands = fmt.Sprintf("%s%s0x%X", prefix, relative, operand)
	if f.IsIndexed() {
		inst.Operands += ", X"
	}
	return inst, true
}
