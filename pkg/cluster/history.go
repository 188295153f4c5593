package cluster

import (
	"strings"

	"github.com/TobiSchelling/cakes/internal/cakeserr"
)

// History is the bit-string naming a cluster: the root is [true]; a left
// child appends false, a right child appends true. Depth is len(h)-1.
type History []bool

// RootHistory returns the root's single-bit history.
func RootHistory() History {
	return History{true}
}

// Child returns the history of this node's child on the given branch
// (false = left, true = right).
func (h History) Child(bit bool) History {
	child := make(History, len(h)+1)
	copy(child, h)
	child[len(h)] = bit
	return child
}

// Depth is len(h) - 1; the root has depth 0.
func (h History) Depth() int {
	return len(h) - 1
}

const hexDigits = "0123456789abcdef"

// Name renders the history as a lowercase hex string: left-pad the bits
// to the next multiple of four, group into nibbles MSB-first, and emit
// one hex digit per nibble. The root's single true bit pads to "0001",
// i.e. "1".
func (h History) Name() string {
	pad := (4 - len(h)%4) % 4
	total := len(h) + pad

	var b strings.Builder
	b.Grow(total / 4)
	for nibbleStart := 0; nibbleStart < total; nibbleStart += 4 {
		var v int
		for bitPos := 0; bitPos < 4; bitPos++ {
			v <<= 1
			idx := nibbleStart + bitPos - pad
			if idx >= 0 && idx < len(h) && h[idx] {
				v |= 1
			}
		}
		b.WriteByte(hexDigits[v])
	}
	return b.String()
}

// ParseName recovers a History from the string Name produced. It decodes
// every hex digit to four bits MSB-first, then strips the left padding by
// scanning for the first true bit — the root's bit is always true by
// construction, so the first 1-bit in the decoded string marks the start
// of the real history. An all-zero decode (never produced by Name for a
// real history) is rejected as an invalid argument.
func ParseName(name string) (History, error) {
	var bits []bool
	for _, r := range name {
		v, err := hexNibble(r)
		if err != nil {
			return nil, err
		}
		for bitPos := 3; bitPos >= 0; bitPos-- {
			bits = append(bits, v&(1<<bitPos) != 0)
		}
	}

	for i, b := range bits {
		if b {
			return History(bits[i:]), nil
		}
	}
	return nil, cakeserr.Argument("cluster: name %q decodes to an all-zero history", name)
}

func hexNibble(r rune) (int, error) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), nil
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10, nil
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10, nil
	default:
		return 0, cakeserr.Argument("cluster: invalid hex digit %q in name", r)
	}
}
