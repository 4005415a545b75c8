package lfsr

import (
	"testing"

	"pgregory.net/rapid"
)

func TestNext(t *testing.T) {
	// Leading output of the layer 2 descrambler register.
	const want = "10101111101010101000000101001010"
	l := New(0x155, 0x110)
	for i := 0; i < len(want); i++ {
		got := l.Next()
		if want[i]-'0' != got {
			t.Fatalf("output mismatch at bit %d; expected %c, got %d", i, want[i], got)
		}
	}
}

func TestDeterminism(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint32().Draw(t, "seed")
		poly := rapid.Uint32().Draw(t, "poly")
		a, b := New(seed, poly), New(seed, poly)
		for i := 0; i < 512; i++ {
			x, y := a.Next(), b.Next()
			if x != y {
				t.Fatalf("sequence mismatch at bit %d for seed=%#x poly=%#x; %d != %d", i, seed, poly, x, y)
			}
		}
	})
}
