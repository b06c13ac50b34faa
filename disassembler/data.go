package disassembler

import (
	"fmt"
	"strings"
)

const (
	minStrLen    = 4
	minZeroRun   = 16
	bytesPerLine = 16
)

// isPrintable checks if a byte can appear inside a C'...' literal.
func isPrintable(b byte) bool {
	return b >= 0x20 && b <= 0x7E && b != '\''
}

// formatData renders a block of non-code bytes. Long zero runs become
// RESB, printable runs of minStrLen or more become C'...', the rest X'...'.
func formatData(data []byte, baseAddr int) string {
	var sb strings.Builder
	n := len(data)

	for i := 0; i < n; {
		// Zero fill
		end := i
		for end < n && data[end] == 0 {
			end++
		}
		if end-i >= minZeroRun {
			writeLine(&sb, baseAddr+i, "", "RESB", fmt.Sprintf("%d", end-i), "")
			i = end
			continue
		}

		// Printable run
		end = i
		for end < n && isPrintable(data[end]) {
			end++
		}
		if end-i >= minStrLen {
			writeLine(&sb, baseAddr+i, "", "BYTE", "C'"+string(data[i:end])+"'", "")
			i = end
			continue
		}

		// Hex up to the next run worth naming
		end = i + 1
		for end < n && end-i < bytesPerLine && !runStarts(data[end:]) {
			end++
		}
		writeLine(&sb, baseAddr+i, "", "BYTE", fmt.Sprintf("X'%X'", data[i:end]), "")
		i = end
	}

	return sb.String()
}

// runStarts reports whether data begins with a zero or printable run long
// enough to be rendered on its own.
func runStarts(data []byte) bool {
	zeros, printable := 0, 0
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}
	for printable < len(data) && isPrintable(data[printable]) {
		printable++
	}
	return zeros >= minZeroRun || printable >= minStrLen
}
