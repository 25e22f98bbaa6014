package rng

import (
	"github.com/xor-shift/pibench/util"
)

type Xoshiro256SSState struct {
	state [4]uint64
}

// NewXoshiro256SS expands seed into a full state. Every seed is accepted;
// seed 0 yields the all-zero state, see IsZero.
func NewXoshiro256SS(seed uint64) *Xoshiro256SSState {
	return &Xoshiro256SSState{
		state: expandSeed(seed),
	}
}

func (state *Xoshiro256SSState) Next() uint64 {
	return xoshiro256SSPermuteState(&state.state)
}

// NextDouble returns the top 53 bits of Next scaled into [0, 1).
func (state *Xoshiro256SSState) NextDouble() float64 {
	return float64(state.Next()>>11) * (1.0 / (1 << 53))
}

// The jump tables are x^(2^128) and x^(2^192) reduced modulo the minimal
// polynomial of this generator's transition, not the upstream xoshiro256
// ones: rotating the updated s[1] changes the linear map.
var (
	jumpTable = [4]uint64{
		0x84b4254d16549a66,
		0x32205c1ff7e04709,
		0x52d27f135b09275f,
		0x0000000000000001,
	}

	longJumpTable = [4]uint64{
		0x073f775d38215c8c,
		0xe047f8b38440ed85,
		0x3ead75cfd00cadc4,
		0x0000000000000000,
	}
)

// Jump advances the generator by 2^128 calls to Next.
func (state *Xoshiro256SSState) Jump() {
	jumpImpl(&state.state, jumpTable)
}

// LongJump advances the generator by 2^192 calls to Next. The period is at
// most (2^3-1)(2^91-1)(2^97-1), just under 2^191, so this wraps around; use
// Jump for disjoint streams.
func (state *Xoshiro256SSState) LongJump() {
	jumpImpl(&state.state, longJumpTable)
}

// IsZero reports whether the generator is stuck in the all-zero state, in
// which it only ever produces zeroes.
func (state *Xoshiro256SSState) IsZero() bool {
	return state.state == [4]uint64{}
}

func (state *Xoshiro256SSState) String() string {
	return util.ArrayToString(state.state[:])
}
