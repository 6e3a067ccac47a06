package probing

import "math/bits"

// MinCapacity is the smallest capacity any table is allocated with.
const MinCapacity = 7

// primes[e] is the smallest prime greater than 2^e.
var primes = [32]int{
	2, 3, 5, 11, 17, 37, 67, 131, 257, 521, 1031, 2053, 4099, 8209, 16411,
	32771, 65537, 131101, 262147, 524309, 1048583, 2097169, 4194319, 8388617,
	16777259, 33554467, 67108879, 134217757, 268435459, 536870923, 1073741827,
	2147483659,
}

// PowerOfTwoExponent returns the smallest e such that 2^e >= x.
func PowerOfTwoExponent(x int) int {
	if x < 2 {
		return 0
	}
	return bits.Len64(uint64(x - 1))
}

// PrimeCapacity normalizes a requested capacity to the prime just above the
// next power of two. Requests below MinCapacity yield MinCapacity.
func PrimeCapacity(x int) int {
	if x < MinCapacity {
		return MinCapacity
	}
	e := PowerOfTwoExponent(x)
	if e >= len(primes) {
		e = len(primes) - 1
	}
	return primes[e]
}

// ShrinkTarget is the capacity requested when a table of the given capacity
// falls under the shrink threshold.
func ShrinkTarget(capacity int) int {
	e := PowerOfTwoExponent(capacity) - 2
	if e < 0 {
		return 0
	}
	return 1 << e
}
