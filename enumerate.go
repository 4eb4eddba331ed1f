package kaleido

import (
	"encoding/binary"
	"math"
	"slices"
)

// MaxTableSize bounds the number of path codes a table may hold.
const MaxTableSize = 1 << 26

// PathCode encodes one reflection sequence.
//
// |code| read as a base-M numeral lists the mirrors to reflect across, with
// the digit of weight M^(k-1) being the k-th reflection. A negative code
// applies one more reflection across mirror 0 after the digits. The table
// sentinel M+1 stands for the unreflected base point.
type PathCode int32

// Sentinel returns the base-point code for m mirrors.
func Sentinel(m int) PathCode { return PathCode(m + 1) }

// Sequence decodes c into mirror indices in the order they are applied.
// The sentinel decodes to an empty sequence.
func (c PathCode) Sequence(m int) []int {
	if c == Sentinel(m) {
		return nil
	}
	a := int64(c)
	if a < 0 {
		a = -a
	}
	var seq []int
	for {
		seq = append(seq, int(a%int64(m)))
		a /= int64(m)
		if a == 0 {
			break
		}
	}
	if c < 0 {
		seq = append(seq, 0)
	}
	return seq
}

// Depth returns the number of reflections c encodes.
func (c PathCode) Depth(m int) int {
	return len(c.Sequence(m))
}

// Encode is the inverse of Sequence for sequences without adjacent repeats.
// An empty sequence encodes to the sentinel.
func Encode(seq []int, m int) PathCode {
	if len(seq) == 0 {
		return Sentinel(m)
	}
	neg := false
	if n := len(seq); n > 1 && seq[n-1] == 0 {
		neg = true
		seq = seq[:n-1]
	}
	var code, w int64 = 0, 1
	for _, d := range seq {
		code += int64(d) * w
		w *= int64(m)
	}
	if neg {
		code = -code
	}
	return PathCode(code)
}

// TableSize returns the number of codes Enumerate(m, d) produces:
// 2d+1 for two mirrors, m*((m-1)^d - 1)/(m-2) + 1 otherwise.
func TableSize(m, d int) (int, error) {
	if err := checkShape(m, d); err != nil {
		return 0, err
	}
	return tableSize(m, d), nil
}

func tableSize(m, d int) int {
	if m == 2 {
		return 2*d + 1
	}
	p := 1
	for range d {
		p *= m - 1
	}
	return m*(p-1)/(m-2) + 1
}

// BlockOffset returns the index of the first depth-k code in a table for m
// mirrors. Depth 0 starts at 0. The value does not depend on the table's
// maximum depth.
func BlockOffset(m, k int) int {
	if k <= 0 {
		return 0
	}
	return tableSize(m, k-1)
}

// checkShape validates (m, d) and rejects tables whose size or codes do not
// fit in 32-bit kernel indices.
func checkShape(m, d int) error {
	switch {
	case m == 0:
		return configErr("mirrors", ErrNoMirrors)
	case m == 1:
		return configErr("mirrors", ErrDegenerateMirrorCount)
	case m < 0 || m > MaxMirrors:
		return configErrf("mirrors", ErrTooManyMirrors, "%d", m)
	case d < 0:
		return configErrf("depth", ErrInvalidDepth, "%d", d)
	}
	// Codes reach up to m^d - 1, so m^d must stay within int32.
	pow := int64(1)
	for range d {
		pow *= int64(m)
		if pow > math.MaxInt32 {
			return configErrf("depth", ErrIndexOverflow, "%d^%d codes exceed int32", m, d)
		}
	}
	size := int64(1)
	if m == 2 {
		size = 2*int64(d) + 1
	} else {
		p := int64(1)
		for range d {
			p *= int64(m - 1)
		}
		size = int64(m)*(p-1)/int64(m-2) + 1
	}
	if size > MaxTableSize {
		return configErrf("depth", ErrIndexOverflow, "%d paths exceed %d", size, MaxTableSize)
	}
	return nil
}

// PathTable is the ordered, immutable list of path codes for every
// reflection sequence of depth 0..MaxDepth without adjacent repeats.
//
// Depth blocks are contiguous and start at BlockOffset. Inside a block,
// codes are ordered by parent index, then by appended mirror index.
type PathTable struct {
	mirrors  int
	maxDepth int
	codes    []PathCode
}

// Enumerate generates the path table for m mirrors up to depth d.
//
// Each depth-k code extends a depth-(k-1) parent by one mirror j other than
// the parent's last mirror. The last mirror of a negative parent is 0,
// otherwise it is the top digit |parent| / m^(k-2). Appending mirror 0
// negates the parent. Appending j > 0 adds j*m^(k-1) to |parent|, which
// also turns a parent's trailing mirror 0 into an explicit zero digit.
func Enumerate(m, d int) (*PathTable, error) {
	if err := checkShape(m, d); err != nil {
		return nil, err
	}

	codes := make([]PathCode, 0, tableSize(m, d))
	codes = append(codes, Sentinel(m))
	if d == 0 {
		return &PathTable{mirrors: m, maxDepth: d, codes: codes}, nil
	}
	for j := range m {
		codes = append(codes, PathCode(j))
	}

	prevLo, prevHi := 1, 1+m
	lastWeight := int32(1) // m^(k-2)
	for k := 2; k <= d; k++ {
		weight := lastWeight * int32(m) // m^(k-1)
		for _, parent := range codes[prevLo:prevHi] {
			last := 0
			abs := int32(parent)
			if parent < 0 {
				abs = -abs
			} else {
				last = int(abs / lastWeight)
			}
			for j := range m {
				switch {
				case j == last:
				case j == 0:
					codes = append(codes, -parent)
				default:
					codes = append(codes, PathCode(abs+int32(j)*weight))
				}
			}
		}
		prevLo, prevHi = prevHi, len(codes)
		lastWeight = weight
	}

	Logger().Debug("kaleido: path table generated", "mirrors", m, "depth", d, "paths", len(codes))
	return &PathTable{mirrors: m, maxDepth: d, codes: codes}, nil
}

// Mirrors returns the mirror count the table was generated for.
func (t *PathTable) Mirrors() int { return t.mirrors }

// MaxDepth returns the deepest reflection count in the table.
func (t *PathTable) MaxDepth() int { return t.maxDepth }

// Len returns the number of codes.
func (t *PathTable) Len() int { return len(t.codes) }

// At returns code i.
func (t *PathTable) At(i int) PathCode { return t.codes[i] }

// Codes returns a copy of all codes.
func (t *PathTable) Codes() []PathCode { return slices.Clone(t.codes) }

// Block returns the codes of depth k, or nil when k is out of range.
// The returned slice must not be modified.
func (t *PathTable) Block(k int) []PathCode {
	if k < 0 || k > t.maxDepth {
		return nil
	}
	lo := BlockOffset(t.mirrors, k)
	hi := BlockOffset(t.mirrors, k+1)
	return t.codes[lo:hi:hi]
}

// Bytes encodes the table as little-endian int32 words for upload.
func (t *PathTable) Bytes() []byte {
	b := make([]byte, 4*len(t.codes))
	for i, c := range t.codes {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(c))
	}
	return b
}
