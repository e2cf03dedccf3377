// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package texfmt holds the static BNTX texture-format tables: the block
// dimensions and bytes-per-block for each format code, keyed by the high
// 24 bits of a Texture.Format field (format >> 8). The tables are built
// once at package initialization and are safe to read from any goroutine
// thereafter.
package texfmt

// BlockDims returns the (width, height) of one compressed block for the
// given format code. Codes absent from the table default to (1, 1), per
// the BLK_DIMS lookup rule.
func BlockDims(code uint32) (width, height uint32) {
	if d, ok := blockDims[code]; ok {
		return d.w, d.h
	}
	return 1, 1
}

// BytesPerBlock returns the number of bytes one compressed block occupies
// for the given format code. Unlike BlockDims this lookup is required:
// absence of an entry is a CorruptData condition for the caller to report.
func BytesPerBlock(code uint32) (bpp uint32, ok bool) {
	bpp, ok = bytesPerBlock[code]
	return
}

type dims struct{ w, h uint32 }

var blockDims = map[uint32]dims{
	0x1a: {4, 4},
	0x1b: {4, 4},
	0x1c: {4, 4},
	0x1d: {4, 4},
	0x1e: {4, 4},
	0x1f: {4, 4},
	0x20: {4, 4},
	0x2d: {4, 4},
	0x2e: {5, 4},
	0x2f: {5, 5},
	0x30: {6, 5},
	0x31: {6, 6},
	0x32: {8, 5},
	0x33: {8, 6},
	0x34: {8, 8},
	0x35: {10, 5},
	0x36: {10, 6},
	0x37: {10, 8},
	0x38: {10, 10},
	0x39: {12, 10},
	0x3a: {12, 12},
}

var bytesPerBlock = map[uint32]uint32{
	0x01: 1,
	0x02: 1,
	0x03: 2,
	0x04: 2,
	0x05: 2,
	0x06: 2,
	0x07: 2,
	0x08: 2,
	0x09: 2,
	0x0b: 4,
	0x0c: 4,
	0x0e: 4,
	0x1a: 8,
	0x1b: 0x10,
	0x1c: 0x10,
	0x1d: 8,
	0x1e: 0x10,
	0x1f: 0x10,
	0x20: 0x10,
	0x2d: 0x10,
	0x2e: 0x10,
	0x2f: 0x10,
	0x30: 0x10,
	0x31: 0x10,
	0x32: 0x10,
	0x33: 0x10,
	0x34: 0x10,
	0x35: 0x10,
	0x36: 0x10,
	0x37: 0x10,
	0x38: 0x10,
	0x39: 0x10,
	0x3a: 0x10,
	0x3b: 2,
}
