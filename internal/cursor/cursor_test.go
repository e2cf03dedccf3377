// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cursor_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kinnay/ninres-go/internal/cursor"
	"github.com/kinnay/ninres-go/internal/nerr"
	"github.com/kinnay/ninres-go/internal/sarc"
)

func TestNewAtBOM(t *testing.T) {
	testCases := []struct {
		name    string
		buf     []byte
		offset  int
		order   cursor.ByteOrder
		wantErr bool
	}{
		{"big-endian", []byte{0, 0, 0xFE, 0xFF}, 2, cursor.BigEndian, false},
		{"little-endian", []byte{0, 0, 0xFF, 0xFE}, 2, cursor.LittleEndian, false},
		{"invalid", []byte{0, 0, 0x12, 0x34}, 2, 0, true},
		{"too short", []byte{0, 0}, 2, 0, true},
	}
	for _, tc := range testCases {
		c, err := cursor.NewAtBOM(tc.buf, tc.offset)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected an error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
			continue
		}
		if c.Order() != tc.order {
			t.Errorf("%s: got order %v, want %v", tc.name, c.Order(), tc.order)
		}
	}
}

func TestReadPrimitives(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	c := cursor.New(buf, cursor.LittleEndian)

	u8, err := c.ReadU8()
	if err != nil || u8 != 0x01 {
		t.Fatalf("ReadU8: got (%v, %v)", u8, err)
	}
	u16, err := c.ReadU16()
	if err != nil || u16 != 0x0302 {
		t.Fatalf("ReadU16: got (%#x, %v)", u16, err)
	}
	u32, err := c.ReadU32()
	if err != nil || u32 != 0x07060504 {
		t.Fatalf("ReadU32: got (%#x, %v)", u32, err)
	}
}

func TestReadU32BigEndian(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x00, 0x2A}
	c := cursor.New(buf, cursor.BigEndian)
	v, err := c.ReadU32()
	if err != nil {
		t.Fatal(err)
	}
	if v != 42 {
		t.Errorf("got %d, want 42", v)
	}
}

func TestOutOfRange(t *testing.T) {
	c := cursor.New([]byte{0x01}, cursor.BigEndian)
	_, err := c.ReadU32()
	if err == nil {
		t.Fatal("expected an Io error")
	}
	if !errors.Is(err, nerr.New(nerr.Io, "")) {
		t.Errorf("got %v, want an Io error", err)
	}
}

func TestSeek(t *testing.T) {
	c := cursor.New(make([]byte, 16), cursor.BigEndian)
	if _, err := c.Seek(4, cursor.SeekStart); err != nil {
		t.Fatal(err)
	}
	if c.Position() != 4 {
		t.Fatalf("got %d, want 4", c.Position())
	}
	if _, err := c.Seek(2, cursor.SeekCurrent); err != nil {
		t.Fatal(err)
	}
	if c.Position() != 6 {
		t.Fatalf("got %d, want 6", c.Position())
	}
	if _, err := c.Seek(-1, cursor.SeekEnd); err != nil {
		t.Fatal(err)
	}
	if c.Position() != 15 {
		t.Fatalf("got %d, want 15", c.Position())
	}
	if _, err := c.Seek(-100, cursor.SeekStart); err == nil {
		t.Fatal("expected an error for a negative position")
	}
}

// buildSARCFixture assembles a minimal one-node SARC buffer ("x" ->
// {0x00, 0x01}) with every multi-byte field written in order, and the given
// raw byte-order-mark bytes at offset 6. It is the little/big-endian twin
// used by TestParseEndianFlip to check that NewAtBOM's branching is the only
// difference a serializer's endianness makes to a parsed view.
func buildSARCFixture(t *testing.T, order binary.ByteOrder, bom [2]byte) []byte {
	t.Helper()

	const (
		sarcHeaderSize = 0x14
		sfatHeaderSize = 0x0C
		sfatNodeSize   = 0x10
	)
	nameTableBase := sarcHeaderSize + sfatHeaderSize + sfatNodeSize // one node

	sfnt := append([]byte{'S', 'F', 'N', 'T', 0x08, 0x00, 0x00, 0x00}, 'x', 0x00, 0x00, 0x00)
	payload := []byte{0x00, 0x01}

	dataOffset := nameTableBase + len(sfnt)
	if dataOffset%8 != 0 {
		dataOffset += 8 - dataOffset%8
	}

	buf := make([]byte, dataOffset+len(payload))

	copy(buf[0:4], "SARC")
	copy(buf[6:8], bom[:])
	order.PutUint32(buf[8:12], uint32(len(buf)))
	order.PutUint32(buf[12:16], uint32(dataOffset))
	order.PutUint16(buf[16:18], 0x0100)

	sfatBase := sarcHeaderSize
	copy(buf[sfatBase:sfatBase+4], "SFAT")
	order.PutUint16(buf[sfatBase+4:sfatBase+6], 0x0C)
	order.PutUint16(buf[sfatBase+6:sfatBase+8], 1)
	order.PutUint32(buf[sfatBase+8:sfatBase+12], 0x65)

	nodeOff := sfatBase + sfatHeaderSize
	order.PutUint32(buf[nodeOff:nodeOff+4], 0)          // hash, not exercised
	order.PutUint32(buf[nodeOff+4:nodeOff+8], 0x01000000) // offsetWords == 0
	order.PutUint32(buf[nodeOff+8:nodeOff+12], 0)
	order.PutUint32(buf[nodeOff+12:nodeOff+16], uint32(len(payload)))

	copy(buf[nameTableBase:], sfnt)
	copy(buf[dataOffset:], payload)

	return buf
}

func TestParseEndianFlip(t *testing.T) {
	be := buildSARCFixture(t, binary.BigEndian, [2]byte{0xFE, 0xFF})
	le := buildSARCFixture(t, binary.LittleEndian, [2]byte{0xFF, 0xFE})

	beView, err := sarc.Parse(be)
	if err != nil {
		t.Fatalf("big-endian parse: %v", err)
	}
	leView, err := sarc.Parse(le)
	if err != nil {
		t.Fatalf("little-endian parse: %v", err)
	}

	if diff := cmp.Diff(beView, leView); diff != "" {
		t.Errorf("little-endian view differs from its big-endian twin (-big +little):\n%s", diff)
	}
}

func TestCStringAt(t *testing.T) {
	buf := append([]byte("hello\x00"), 0xFF)
	s, err := cursor.CStringAt(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if s != "hello" {
		t.Errorf("got %q, want %q", s, "hello")
	}

	_, err = cursor.CStringAt([]byte("no terminator"), 0)
	if err == nil {
		t.Fatal("expected an error for an unterminated string")
	}

	_, err = cursor.CStringAt([]byte{0xFF, 0xFE, 0x00}, 0)
	if !errors.Is(err, nerr.New(nerr.Utf8, "")) {
		t.Errorf("got %v, want a Utf8 error", err)
	}
}
