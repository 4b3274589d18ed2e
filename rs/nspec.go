// Package rs implements a systematic Reed-Solomon codec: a generator
// matrix G of size (k+m)xk whose top k rows are the identity (so
// data shards pass through unchanged), cached per NSpec, behind a
// capability interface with two implementations: Pure (built from
// scratch on package gf) and Accelerated (backed by
// github.com/klauspost/reedsolomon).
package rs

import (
	"fmt"

	"github.com/saorsa-labs/saorsa-fec/errs"
)

// NSpec is the (k, m) pair of data and parity shard counts for one
// Reed-Solomon codeword.
type NSpec struct {
	K int
	M int
}

// N is the total shard count k+m.
func (s NSpec) N() int {
	return s.K + s.M
}

// Validate checks 1<=k<=255, 1<=m<=255, k+m<=256. k=1,m=0 is rejected
// implicitly since m must be >=1.
func (s NSpec) Validate() error {
	if s.K < 1 || s.K > 255 {
		return fmt.Errorf("%w: k=%d out of range [1,255]", errs.ErrInvalidParameters, s.K)
	}
	if s.M < 1 || s.M > 255 {
		return fmt.Errorf("%w: m=%d out of range [1,255]", errs.ErrInvalidParameters, s.M)
	}
	if s.K+s.M > 256 {
		return fmt.Errorf("%w: k+m=%d exceeds 256", errs.ErrInvalidParameters, s.K+s.M)
	}
	return nil
}

func (s NSpec) String() string {
	return fmt.Sprintf("NSpec(k=%d,m=%d)", s.K, s.M)
}
