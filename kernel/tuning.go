// Package kernel holds the device kernels of the transform: the bit-reversal
// permutation, coset power distribution, the LDE spread and the multi-pass
// Cooley-Tukey and Gentleman-Sande butterflies.
//
// Every kernel enqueues its work on a stream and returns without waiting.
// Shape violations (lengths that are not the advertised power of two,
// partially aliased buffers) are programming errors and panic.
package kernel

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/utils"

	"github.com/jonathanmweiss/go-ntt/field"
)

// Tuning selects how work is cut into blocks. It never changes results.
type Tuning struct {
	// LgPass is the number of butterfly stages fused into one launch.
	LgPass int `yaml:"lg-pass"`
	// LgTile is the side of the square tiles used by the bit reversal.
	LgTile int `yaml:"lg-tile"`
}

var (
	narrowTuning = Tuning{LgPass: 10, LgTile: 5}
	wideTuning   = Tuning{LgPass: 8, LgTile: 4}
)

// DefaultTuning returns the tuning for elements of the given byte width.
func DefaultTuning(width int) Tuning {
	if width <= field.NarrowWidth {
		return narrowTuning
	}

	return wideTuning
}

func (t Tuning) validate() {
	if t.LgPass < 1 || t.LgTile < 1 {
		panic(fmt.Sprintf("kernel: invalid tuning %+v", t))
	}
}

// lgElemsPerBlock is log2 of the work of one block in element-wise kernels.
const lgElemsPerBlock = 10

func rev(x uint64, lg int) uint64 {
	return utils.BitReverse64(x, lg)
}

func checkLen(what string, n, lg int) {
	if n != 1<<lg {
		panic(fmt.Sprintf("kernel: %s holds %d elements, want 2^%d", what, n, lg))
	}
}

func blocksFor(n int) int {
	return (n + 1<<lgElemsPerBlock - 1) >> lgElemsPerBlock
}

func blockRange(block, n int) (int, int) {
	lo := block << lgElemsPerBlock
	hi := lo + 1<<lgElemsPerBlock
	if hi > n {
		hi = n
	}

	return lo, hi
}
