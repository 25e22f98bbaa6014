package util

import (
	"fmt"
	"unsafe"
)

// RotL rotates x left by k bits. k must satisfy 0 < k < bit width of T; the
// formula shifts by (width - k) which is meaningless outside that range.
func RotL[T uint8 | uint16 | uint32 | uint64](x T, k uint) T {
	BitWidth := unsafe.Sizeof(x) * 8
	return (x << k) | (x >> (uint(BitWidth) - k))
}

// ArrayToString renders every element as zero padded hex, most significant
// element first.
func ArrayToString[T uint8 | uint16 | uint32 | uint64](arr []T) string {
	ret := ""

	for _, v := range arr {
		bitWidth := int(unsafe.Sizeof(v) * 8)
		ret += fmt.Sprintf("%0[1]*[2]x", bitWidth/4, v)
	}

	return ret
}
