package gf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saorsa-labs/saorsa-fec/gf"
)

func TestMulZero(t *testing.T) {
	assert.Equal(t, byte(0), gf.Mul(0, 200))
	assert.Equal(t, byte(0), gf.Mul(200, 0))
	assert.Equal(t, byte(0), gf.Mul(0, 0))
}

func TestMulDivInverse(t *testing.T) {
	for a := 1; a < 256; a++ {
		for b := 1; b < 256; b++ {
			product := gf.Mul(byte(a), byte(b))
			assert.Equal(t, byte(a), gf.Div(product, byte(b)), "a=%d b=%d", a, b)
		}
	}
}

func TestInv(t *testing.T) {
	for a := 1; a < 256; a++ {
		inv := gf.Inv(byte(a))
		assert.Equal(t, byte(1), gf.Mul(byte(a), inv), "a=%d", a)
	}
}

func TestPowMatchesRepeatedMul(t *testing.T) {
	a := byte(0x53)
	want := byte(1)
	for n := 0; n < 10; n++ {
		assert.Equal(t, want, gf.Pow(a, n), "n=%d", n)
		want = gf.Mul(want, a)
	}
}

func TestVecMac(t *testing.T) {
	acc := make([]byte, 4)
	src := []byte{1, 2, 3, 4}
	gf.VecMac(acc, src, 0)
	assert.Equal(t, []byte{0, 0, 0, 0}, acc)

	acc = make([]byte, 4)
	gf.VecMac(acc, src, 1)
	assert.Equal(t, src, acc)

	acc = make([]byte, 4)
	gf.VecMac(acc, src, 5)
	for i, s := range src {
		assert.Equal(t, gf.Mul(5, s), acc[i])
	}
}

func TestMulCommutative(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			assert.Equal(t, gf.Mul(byte(a), byte(b)), gf.Mul(byte(b), byte(a)))
		}
	}
}
