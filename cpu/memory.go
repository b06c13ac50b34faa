package cpu

import "fmt"

// MaxAddress is one past the highest address reachable with a 20-bit format 4 address.
const MaxAddress = 1 << 20

// WordMask keeps the low 24 bits of a value.
const WordMask = 0xFFFFFF

// Memory is a flat byte-addressed SIC/XE memory image. Words are 24-bit big-endian.
type Memory struct {
	Data []byte
}

// NewMemory allocates size bytes of zeroed memory.
func NewMemory(size int) *Memory {
	return &Memory{Data: make([]byte, size)}
}

func (m *Memory) check(addr, n int) error {
	if addr < 0 || addr+n > len(m.Data) {
		return fmt.Errorf("address %06X out of range", addr)
	}
	return nil
}

// Byte reads a single byte.
func (m *Memory) Byte(addr int) (byte, error) {
	if err := m.check(addr, 1); err != nil {
		return 0, err
	}
	return m.Data[addr], nil
}

// SetByte stores a single byte.
func (m *Memory) SetByte(addr int, b byte) error {
	if err := m.check(addr, 1); err != nil {
		return err
	}
	m.Data[addr] = b
	return nil
}

// Word reads a big-endian 24-bit word.
func (m *Memory) Word(addr int) (int, error) {
	if err := m.check(addr, 3); err != nil {
		return 0, err
	}
	return BytesToWord(m.Data[addr : addr+3]), nil
}

// SetWord stores the low 24 bits of v big-endian.
func (m *Memory) SetWord(addr int, v int) error {
	if err := m.check(addr, 3); err != nil {
		return err
	}
	copy(m.Data[addr:], WordToBytes(v))
	return nil
}

// Write copies b into memory starting at addr.
func (m *Memory) Write(addr int, b []byte) error {
	if err := m.check(addr, len(b)); err != nil {
		return err
	}
	copy(m.Data[addr:], b)
	return nil
}

// Slice returns the bytes in [start,end), clamped to the memory size.
func (m *Memory) Slice(start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if end > len(m.Data) {
		end = len(m.Data)
	}
	if start >= end {
		return nil
	}
	return m.Data[start:end]
}

// WordToBytes converts the low 24 bits of v to three big-endian bytes.
func WordToBytes(v int) []byte {
	return []byte{byte(v >> 16), byte(v >> 8), byte(v)}
}

// BytesToWord interprets up to three bytes as a big-endian unsigned value.
func BytesToWord(b []byte) int {
	v := 0
	for _, c := range b {
		v = v<<8 | int(c)
	}
	return v
}

// SignExtend interprets the low bits of v as a two's complement number.
func SignExtend(v int, bits uint) int {
	shift := 64 - bits
	return int(int64(v<<shift) >> shift)
}
