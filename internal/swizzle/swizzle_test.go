// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package swizzle_test

import (
	"bytes"
	"testing"

	"github.com/kinnay/ninres-go/internal/swizzle"
)

func TestRoundUp(t *testing.T) {
	testCases := []struct{ x, y, want uint32 }{
		{1, 32, 32},
		{32, 32, 32},
		{33, 32, 64},
		{0, 64, 0},
	}
	for _, tc := range testCases {
		if got := swizzle.RoundUp(tc.x, tc.y); got != tc.want {
			t.Errorf("RoundUp(%d,%d) = %d, want %d", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestDivRoundUp(t *testing.T) {
	testCases := []struct{ n, d, want uint32 }{
		{8, 4, 2},
		{9, 4, 3},
		{0, 4, 0},
		{1, 4, 1},
	}
	for _, tc := range testCases {
		if got := swizzle.DivRoundUp(tc.n, tc.d); got != tc.want {
			t.Errorf("DivRoundUp(%d,%d) = %d, want %d", tc.n, tc.d, got, tc.want)
		}
	}
}

func TestPow2RoundUp(t *testing.T) {
	testCases := []struct{ x, want uint32 }{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{5, 8},
		{1024, 1024},
		{1025, 2048},
	}
	for _, tc := range testCases {
		if got := swizzle.Pow2RoundUp(tc.x); got != tc.want {
			t.Errorf("Pow2RoundUp(%d) = %d, want %d", tc.x, got, tc.want)
		}
	}
}

func TestDeswizzleLinear(t *testing.T) {
	// tile_mode == 1 (linear): source position is (y*pitch + x*bpp), no
	// GOB addressing involved, so a single 4x1 row of 1-byte blocks
	// should come through unchanged once pitch padding is accounted for.
	width, height := uint32(4), uint32(1)
	bpp := uint32(1)
	src := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	// pitch = round_up(4*1, 32) = 32, so the source must be padded to
	// at least pitch*height = 32 bytes for the copy to succeed.
	padded := make([]byte, 32)
	copy(padded, src)

	out, err := swizzle.Deswizzle(width, height, 1, 1, true, bpp, 1, 0, padded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out[:4], src) {
		t.Errorf("got %v, want %v", out[:4], src)
	}
}

func TestDeswizzleBlockLinear(t *testing.T) {
	// tile_mode == 0 (block-linear): an 8x8, 1 byte-per-block surface with
	// block_height_log2 == 0 exercises blockLinearAddr's GOB addressing
	// directly. Source is the identity sequence src[i] = byte(i); the
	// expected output below is hand-computed from the address formula in
	// §4.6 (gobAddr/xBytes terms), not derived by calling the function
	// under test.
	width, height := uint32(8), uint32(8)
	bpp := uint32(1)

	// surf_size = round_up(8*1, 64) * round_up(8, 1*8) = 64 * 8 = 512.
	src := make([]byte, 512)
	for i := range src {
		src[i] = byte(i)
	}

	out, err := swizzle.Deswizzle(width, height, 1, 1, true, bpp, 0, 0, src)
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
		0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17,
		0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47,
		0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57,
		0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87,
		0x90, 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97,
		0xc0, 0xc1, 0xc2, 0xc3, 0xc4, 0xc5, 0xc6, 0xc7,
		0xd0, 0xd1, 0xd2, 0xd3, 0xd4, 0xd5, 0xd6, 0xd7,
	}
	if !bytes.Equal(out[:len(want)], want) {
		t.Errorf("got %v, want %v", out[:len(want)], want)
	}
}

func TestDeswizzleRejectsExcessiveBlockHeight(t *testing.T) {
	_, err := swizzle.Deswizzle(4, 4, 1, 1, true, 1, 0, 6, nil)
	if err == nil {
		t.Fatal("expected an error for block_height_log2 > 5")
	}
}

func TestDeswizzleOutOfRangeIsSkippedNotFatal(t *testing.T) {
	// A short source buffer must not cause a panic or an error; reads
	// that would overrun it are silently skipped and the destination
	// stays zero-initialized.
	out, err := swizzle.Deswizzle(64, 64, 1, 1, true, 4, 0, 0, []byte{0x01, 0x02})
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range out {
		if b != 0 {
			t.Fatalf("expected an all-zero buffer, found non-zero byte")
		}
	}
}
