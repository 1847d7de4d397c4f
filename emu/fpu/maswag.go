/*
 * GAIA - Alternate ("maswag") FPU implementation.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package fpu

// Maswag is the alternate FPU enabled by -fpu-maswag. It favors integer bit
// tricks over calling into the host math library, the way the reference
// fpu.h helpers (fadd/fsub/fmul/finv/fsqrt/h_i2f/h_f2i/h_floor) are named.
// Only the header for that implementation survives in the source this was
// distilled from; the bodies here are a from-scratch bit-trick rendition,
// not a byte-for-byte port. Results are not bit-identical to Standard:
// finv and fsqrt are seeded bit tricks refined by two Newton steps, so
// they agree with Standard only approximately.
type Maswag struct{}

// Eval implements Unit.
func (Maswag) Eval(tag uint8, ra, rb uint32) (uint32, error) {
	switch tag {
	case 0:
		return fadd(ra, rb), nil
	case 1:
		return fadd(ra, rb^0x80000000), nil
	case 2:
		return fmul(ra, rb), nil
	case 4:
		return finv(ra), nil
	case 5:
		return fsqrt(ra), nil
	case 6:
		return hF2I(ra), nil
	case 7:
		return hI2F(ra), nil
	case 8:
		return hFloor(ra), nil
	default:
		return 0, &ErrDecode{Tag: tag}
	}
}

var _ Unit = Maswag{}

func decompose(x uint32) (sign uint32, exp int32, mant uint32) {
	sign = x & 0x80000000
	exp = int32((x>>23)&0xff) - 127
	mant = x & 0x7fffff
	if x&0x7f800000 != 0 {
		mant |= 1 << 23 // implicit leading one
	}
	return
}

func recompose(sign uint32, exp int32, mant uint64, roundBits uint32) uint32 {
	if mant == 0 {
		return sign
	}
	// Normalize mant into bit 23 (one implicit + 23 fraction bits).
	for mant >= (1 << 24) {
		roundBits |= uint32(mant) & 1
		mant >>= 1
		exp++
	}
	for mant < (1 << 23) {
		mant <<= 1
		exp--
	}
	// Round to nearest, ties to even, using the bits shifted out above.
	if roundBits&1 != 0 {
		mant++
		if mant >= (1 << 24) {
			mant >>= 1
			exp++
		}
	}
	biased := exp + 127
	if biased <= 0 {
		return sign
	}
	if biased >= 0xff {
		return sign | 0x7f800000 // overflow to infinity
	}
	return sign | uint32(biased)<<23 | (uint32(mant) & 0x7fffff)
}

func fadd(x, y uint32) uint32 {
	sx, ex, mx := decompose(x)
	sy, ey, my := decompose(y)
	if mx == 0 {
		return y
	}
	if my == 0 {
		return x
	}
	// Align to the larger exponent.
	shift := ex - ey
	if shift < 0 {
		sx, sy = sy, sx
		ex, ey = ey, ex
		mx, my = my, mx
		shift = -shift
	}
	var lost uint32
	if shift > 0 {
		if shift >= 32 {
			my, lost = 0, boolBit(my != 0)
		} else {
			lost = my & ((1 << uint(shift)) - 1)
			my >>= uint(shift)
		}
	}
	var sum int64
	if sx == sy {
		sum = int64(mx) + int64(my)
		return recompose(sx, ex, uint64(sum), lost)
	}
	sum = int64(mx) - int64(my)
	sign := sx
	if sum < 0 {
		sum = -sum
		sign = sy
		lost = 0 // borrow already folded into the magnitude above
	}
	return recompose(sign, ex, uint64(sum), lost)
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func fmul(x, y uint32) uint32 {
	sx, ex, mx := decompose(x)
	sy, ey, my := decompose(y)
	sign := sx ^ sy
	if mx == 0 || my == 0 {
		return sign
	}
	prod := uint64(mx) * uint64(my) // Q23 * Q23 = Q46
	exp := ex + ey
	// prod has its top bit at position 46 or 47; recompose expects the
	// leading one at bit 23, so shift down by 23 first.
	round := uint32(prod) & ((1 << 23) - 1)
	return recompose(sign, exp, prod>>23, round)
}

func finv(x uint32) uint32 {
	if x&0x7fffffff == 0 {
		return x&0x80000000 | 0x7f800000 // divide by zero -> signed infinity
	}
	// Classic fast-inverse bit-trick seed, refined by two Newton iterations
	// of y' = y*(2 - x*y) against the exact reciprocal.
	i := int32(0x7ef311c3) - int32(x)
	y := f32(uint32(i))
	xf := f32(x)
	y *= 2 - xf*y
	y *= 2 - xf*y
	return bits(y)
}

func fsqrt(x uint32) uint32 {
	if x&0x7fffffff == 0 {
		return x
	}
	if int32(x) < 0 {
		return 0x7fc00000 // NaN for sqrt of a negative
	}
	// Quake's fast inverse square root, refined, then inverted.
	xf := f32(x)
	half := xf * 0.5
	i := int32(0x5f3759df) - int32(x)>>1
	y := f32(uint32(i))
	y *= 1.5 - half*y*y
	y *= 1.5 - half*y*y
	return bits(xf * y)
}

func hF2I(x uint32) uint32 {
	sign, exp, mant := decompose(x)
	if mant == 0 || exp < -1 {
		return 0
	}
	shift := exp - 23
	var v uint32
	if shift >= 0 {
		v = mant << uint(shift)
	} else {
		n := uint(-shift)
		v = mant >> n
		if n > 0 && (mant>>(n-1))&1 != 0 {
			// Round half to even against the bit just shifted out.
			if mant&((1<<(n-1))-1) != 0 || v&1 != 0 {
				v++
			}
		}
	}
	if sign != 0 {
		return uint32(-int32(v))
	}
	return v
}

func hI2F(x uint32) uint32 {
	v := int32(x)
	sign := uint32(0)
	u := uint32(v)
	if v < 0 {
		sign = 0x80000000
		u = uint32(-v)
	}
	if u == 0 {
		return 0
	}
	exp := int32(31)
	for u&0x80000000 == 0 {
		u <<= 1
		exp--
	}
	mant := (u >> 8) & 0x7fffff
	round := u & 0xff
	return recompose(sign, exp, uint64(mant)|1<<23, round)
}

func hFloor(x uint32) uint32 {
	sign, exp, mant := decompose(x)
	if mant == 0 || exp >= 23 {
		return x
	}
	if exp < 0 {
		if sign != 0 {
			return 0xbf800000 // -1.0
		}
		return 0
	}
	frac := mant & ((1 << uint(23-exp)) - 1)
	whole := mant &^ frac
	if frac == 0 {
		return sign | uint32(exp+127)<<23 | (whole & 0x7fffff)
	}
	if sign == 0 {
		return sign | uint32(exp+127)<<23 | (whole & 0x7fffff)
	}
	// Negative, non-integral: floor rounds away from zero, so add one ULP
	// at this exponent's granularity before re-normalizing.
	return recompose(sign, exp, uint64(whole)+(1<<uint(23-exp)), 0)
}
