package cpu

// Flags are the nixbpe addressing bits of a format 3/4 instruction, in encoding order.
type Flags byte

const (
	// FlagExtended is e: format 4, 20-bit address.
	FlagExtended Flags = 1 << iota
	// FlagPCRelative is p: displacement from the next instruction.
	FlagPCRelative
	// FlagBaseRelative is b: displacement from the base register.
	FlagBaseRelative
	// FlagIndexed is x: add the X register.
	FlagIndexed
	// FlagImmediate is i.
	FlagImmediate
	// FlagIndirect is n.
	FlagIndirect
)

// Simple is ni=11, the default for XE instructions.
const Simple = FlagIndirect | FlagImmediate

// FlagsFromBytes extracts nixbpe from the first two bytes of a format 3/4 instruction.
func FlagsFromBytes(b1, b2 byte) Flags {
	return Flags(b1&3)<<4 | Flags(b2>>4)
}

// NI returns the n and i bits as the low two bits of a byte.
func (f Flags) NI() byte {
	return byte(f>>4) & 3
}

// XBPE returns the x, b, p and e bits as a nibble.
func (f Flags) XBPE() byte {
	return byte(f) & 0xF
}

// SetNI replaces the n and i bits.
func (f *Flags) SetNI(ni byte) {
	*f = *f&^Simple | Flags(ni&3)<<4
}

// Set turns bits on or off.
func (f *Flags) Set(bits Flags, on bool) {
	if on {
		*f |= bits
	} else {
		*f &^= bits
	}
}

// Has reports whether all of bits are set.
func (f Flags) Has(bits Flags) bool { return f&bits == bits }

// IsSIC reports the legacy SIC encoding, ni=00.
func (f Flags) IsSIC() bool { return f&Simple == 0 }

// IsImmediate reports ni=01.
func (f Flags) IsImmediate() bool { return f&Simple == FlagImmediate }

// IsIndirect reports ni=10.
func (f Flags) IsIndirect() bool { return f&Simple == FlagIndirect }

// IsSimple reports ni=11 or the SIC form.
func (f Flags) IsSimple() bool { return f&Simple == Simple || f.IsSIC() }

func (f Flags) IsIndexed() bool      { return f.Has(FlagIndexed) }
func (f Flags) IsBaseRelative() bool { return f.Has(FlagBaseRelative) }
func (f Flags) IsPCRelative() bool   { return f.Has(FlagPCRelative) }
func (f Flags) IsExtended() bool     { return f.Has(FlagExtended) }

// IsValid checks the combinations the machine cannot encode.
func (f Flags) IsValid() bool {
	if f.IsIndexed() && !f.IsSimple() {
		return false
	}
	if f.IsBaseRelative() && f.IsPCRelative() {
		return false
	}
	if f.IsExtended() && (f.IsBaseRelative() || f.IsPCRelative()) {
		return false
	}
	return true
}

// String renders the bits as "nixbpe" with dashes for cleared bits.
func (f Flags) String() string {
	const letters = "nixbpe"
	out := []byte("------")
	for i := 0; i < 6; i++ {
		if f&(1<<(5-i)) != 0 {
			out[i] = letters[i]
		}
	}
	return string(out)
}
