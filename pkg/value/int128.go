package value

import "math/big"

// Int128 is a fixed-width signed 128-bit integer. Go has no native int128;
// this type stores the value as a pair of 64-bit words (hi holds the sign)
// and defers to math/big only for overflow detection during arithmetic.
type Int128 struct {
	hi int64
	lo uint64
}

var (
	Int128Max = Int128FromBig(maxInt128Big())
	Int128Min = Int128FromBig(minInt128Big())
	Int128Zero = Int128{}
)

func maxInt128Big() *big.Int {
	v := new(big.Int).Lsh(big.NewInt(1), 127)
	return v.Sub(v, big.NewInt(1))
}

func minInt128Big() *big.Int {
	v := new(big.Int).Lsh(big.NewInt(1), 127)
	return v.Neg(v)
}

// Int128FromInt64 widens a native int64 into an Int128.
func Int128FromInt64(v int64) Int128 {
	if v < 0 {
		return Int128{hi: -1, lo: uint64(v)}
	}
	return Int128{hi: 0, lo: uint64(v)}
}

var twoPow128 = new(big.Int).Lsh(big.NewInt(1), 128)
var mask64 = new(big.Int).SetUint64(^uint64(0))

// Int128FromBig narrows a math/big.Int into an Int128, saturating on overflow.
// The 128-bit value is stored as its two's-complement representation split
// into a signed high word and an unsigned low word, so reconstruction never
// has to recurse through negation.
func Int128FromBig(v *big.Int) Int128 {
	if v.Cmp(maxInt128Big()) > 0 {
		return Int128{hi: 1<<63 - 1, lo: ^uint64(0)}
	}
	if v.Cmp(minInt128Big()) < 0 {
		return Int128{hi: -1 << 63, lo: 0}
	}
	unsigned := v
	if v.Sign() < 0 {
		unsigned = new(big.Int).Add(v, twoPow128)
	}
	lo := new(big.Int).And(unsigned, mask64)
	hi := new(big.Int).Rsh(unsigned, 64)
	return Int128{hi: int64(hi.Uint64()), lo: lo.Uint64()}
}

func (a Int128) big() *big.Int {
	unsigned := new(big.Int).Lsh(new(big.Int).SetUint64(uint64(a.hi)), 64)
	unsigned.Add(unsigned, new(big.Int).SetUint64(a.lo))
	if a.hi < 0 {
		return new(big.Int).Sub(unsigned, twoPow128)
	}
	return unsigned
}

// Int64 narrows to a native int64, truncating if out of range.
func (a Int128) Int64() int64 {
	return int64(a.lo)
}

// Float64 converts to the nearest IEEE-754 double.
func (a Int128) Float64() float64 {
	f := new(big.Float).SetInt(a.big())
	r, _ := f.Float64()
	return r
}

func (a Int128) String() string { return a.big().String() }

func (a Int128) Cmp(b Int128) int { return a.big().Cmp(b.big()) }

func (a Int128) IsZero() bool { return a.hi == 0 && a.lo == 0 }

// Add saturates at Int128Max/Int128Min on overflow, per the operator
// semantics in the arithmetic table (§4.2).
func (a Int128) Add(b Int128) Int128 {
	return Int128FromBig(new(big.Int).Add(a.big(), b.big()))
}

func (a Int128) Sub(b Int128) Int128 {
	return Int128FromBig(new(big.Int).Sub(a.big(), b.big()))
}

func (a Int128) Mul(b Int128) Int128 {
	return Int128FromBig(new(big.Int).Mul(a.big(), b.big()))
}

// Div saturates to Int128Max on division by zero rather than panicking,
// matching the boundary behavior required by §8.
func (a Int128) Div(b Int128) Int128 {
	if b.IsZero() {
		return Int128Max
	}
	return Int128FromBig(new(big.Int).Quo(a.big(), b.big()))
}

// Mod returns zero on division by zero, matching checked_rem(...).unwrap_or(0)
// (unlike Div, which saturates to Int128Max per checked_div(...).unwrap_or(i128::MAX)).
func (a Int128) Mod(b Int128) Int128 {
	if b.IsZero() {
		return Int128Zero
	}
	return Int128FromBig(new(big.Int).Rem(a.big(), b.big()))
}

func (a Int128) Lsh(n uint) Int128 {
	return Int128FromBig(new(big.Int).Lsh(a.big(), n))
}

func (a Int128) Rsh(n uint) Int128 {
	return Int128FromBig(new(big.Int).Rsh(a.big(), n))
}

func (a Int128) Xor(b Int128) Int128 {
	return Int128FromBig(new(big.Int).Xor(a.big(), b.big()))
}
