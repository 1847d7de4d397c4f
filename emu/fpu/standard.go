/*
 * GAIA - Standard FPU implementation.
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

import "math"

// Standard is the default FPU, implemented directly against Go's math
// package float32 operations.
type Standard struct{}

// Eval implements Unit.
func (Standard) Eval(tag uint8, ra, rb uint32) (uint32, error) {
	a, b := f32(ra), f32(rb)
	switch tag {
	case 0:
		return bits(a + b), nil
	case 1:
		return bits(a - b), nil
	case 2:
		return bits(a * b), nil
	case 4:
		return bits(1.0 / a), nil
	case 5:
		return bits(float32(math.Sqrt(float64(a)))), nil
	case 6:
		return uint32(int32(math.RoundToEven(float64(a)))), nil
	case 7:
		return bits(float32(int32(ra))), nil
	case 8:
		return bits(float32(math.Floor(float64(a)))), nil
	default:
		return 0, &ErrDecode{Tag: tag}
	}
}

var _ Unit = Standard{}
