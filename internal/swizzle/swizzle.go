// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package swizzle implements the Tegra X1 block-linear tiling transform
// used by BNTX texture payloads. Deswizzle is the only entry point most
// callers need; the rest of the package is exported for testing against
// the arithmetic in isolation.
package swizzle

import "github.com/kinnay/ninres-go/internal/nerr"

// RoundUp rounds x up to the next multiple of y, where y is a power of two.
func RoundUp(x, y uint32) uint32 {
	return ((x - 1) | (y - 1)) + 1
}

// DivRoundUp divides n by d, rounding up.
func DivRoundUp(n, d uint32) uint32 {
	return (n + d - 1) / d
}

// Pow2RoundUp returns the smallest power of two that is >= x. Pow2RoundUp(0)
// returns 1.
func Pow2RoundUp(x uint32) uint32 {
	if x == 0 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	return x + 1
}

// blockLinearAddr computes the source byte offset of block (x, y) within a
// Tegra block-linear surface whose image width is widthBlocks blocks, whose
// block size is bpp bytes, and whose GOB height is blockHeight GOBs.
func blockLinearAddr(x, y, widthBlocks, bpp, baseAddr, blockHeight uint32) uint32 {
	gobsPerRow := DivRoundUp(widthBlocks*bpp, 64)
	gobAddr := baseAddr +
		(y/(8*blockHeight))*512*blockHeight*gobsPerRow +
		(x*bpp/64)*512*blockHeight +
		(y%(8*blockHeight)/8)*512

	xBytes := x * bpp
	return gobAddr +
		((xBytes%64)/32)*256 +
		((y%8)/2)*64 +
		((xBytes%32)/16)*32 +
		(y%2)*16 +
		(xBytes % 16)
}

// Deswizzle transforms one mip level of Tegra-tiled texture data into
// row-major order. width and height are the mip's pixel dimensions; blkW
// and blkH are the format's compressed block dimensions; bpp is the
// format's bytes per block. roundPitch controls whether a linear
// (tile_mode == 1) surface's pitch is padded to 32 bytes, which the "NX "
// target always requires. blockHeightLog2 is the effective
// (already-shifted) block height exponent; values above 5 are rejected as
// CorruptData, mirroring the reference deswizzler.
func Deswizzle(width, height, blkW, blkH uint32, roundPitch bool, bpp uint32, tileMode uint16, blockHeightLog2 uint32, src []byte) ([]byte, error) {
	if blockHeightLog2 > 5 {
		return nil, nerr.New(nerr.CorruptData, "block height log2 exceeds 5")
	}

	blockHeight := uint32(1) << blockHeightLog2
	w := DivRoundUp(width, blkW)
	h := DivRoundUp(height, blkH)

	var pitch, surfSize uint32
	if tileMode == 1 {
		pitch = w * bpp
		if roundPitch {
			pitch = RoundUp(pitch, 32)
		}
		surfSize = pitch * h
	} else {
		pitch = RoundUp(w*bpp, 64)
		surfSize = pitch * RoundUp(h, blockHeight*8)
	}

	out := make([]byte, surfSize)
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			var pos uint32
			if tileMode == 1 {
				pos = y*pitch + x*bpp
			} else {
				pos = blockLinearAddr(x, y, w, bpp, 0, blockHeight)
			}
			dst := (y*w + x) * bpp
			if pos+bpp <= surfSize && pos+bpp <= uint32(len(src)) {
				copy(out[dst:dst+bpp], src[pos:pos+bpp])
			}
		}
	}
	return out, nil
}
