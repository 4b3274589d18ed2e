// Package gf implements GF(2^8) arithmetic over the standard
// Reed-Solomon primitive polynomial 0x11d.
//
// This is deliberately hand-rolled against the standard library only:
// log/exp tables and vectorised multiply-accumulate are not a concern
// any third-party library in this module's dependency tree already
// owns. The accelerated Reed-Solomon codec (github.com/klauspost/reedsolomon,
// wired in package rs) supersedes this table-driven implementation when
// performance matters; this package exists so the Pure codec in
// package rs has a from-first-principles GF(2^8) to multiply over, and
// so the field arithmetic itself is directly testable on its own.
package gf

// primitivePoly is the standard Reed-Solomon primitive polynomial for
// GF(2^8), x^8 + x^4 + x^3 + x^2 + 1.
const primitivePoly = 0x11d

// exp and log are the standard multiplicative tables: exp[i] = g^i and
// log[g^i] = i, for generator g = 2. exp has 510 entries so that
// exp[log[a]+log[b]] can be read without a modulo reduction for any
// valid log[a]+log[b] sum up to 2*254.
var (
	expTable [510]byte
	logTable [256]int
)

func init() {
	x := 1
	for i := 0; i < 255; i++ {
		expTable[i] = byte(x)
		logTable[x] = i
		x <<= 1
		if x&0x100 != 0 {
			x ^= primitivePoly
		}
	}
	for i := 255; i < 510; i++ {
		expTable[i] = expTable[i-255]
	}
}

// Mul returns a*b in GF(2^8). Mul(a, 0) == Mul(0, b) == 0.
func Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[logTable[a]+logTable[b]]
}

// Div returns a/b in GF(2^8). b must not be zero.
func Div(a, b byte) byte {
	if a == 0 {
		return 0
	}
	diff := logTable[a] - logTable[b]
	if diff < 0 {
		diff += 255
	}
	return expTable[diff]
}

// Pow returns a^n in GF(2^8).
func Pow(a byte, n int) byte {
	if n == 0 {
		return 1
	}
	if a == 0 {
		return 0
	}
	l := (logTable[a] * n) % 255
	if l < 0 {
		l += 255
	}
	return expTable[l]
}

// Inv returns a^-1 in GF(2^8). a must not be zero.
func Inv(a byte) byte {
	return expTable[255-logTable[a]]
}

// VecMac computes acc ^= coef*src elementwise, the inner loop of the
// Reed-Solomon matrix multiply. len(acc) must equal len(src).
func VecMac(acc, src []byte, coef byte) {
	if coef == 0 {
		return
	}
	logCoef := logTable[coef]
	for i, s := range src {
		if s == 0 {
			continue
		}
		acc[i] ^= expTable[logCoef+logTable[s]]
	}
}
