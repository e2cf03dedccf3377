// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package cursor implements the bounds-checked, endian-tagged byte cursor
// shared by the SARC, BFRES and BNTX decoders. Every container this module
// reads begins with a byte-order-mark word at a fixed offset; Cursor hides
// the resulting endian-branching from the rest of the decoders.
package cursor

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/kinnay/ninres-go/internal/nerr"
)

// ByteOrder identifies the endianness a container was serialized with, as
// determined by its byte-order-mark word.
type ByteOrder int

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

func (o ByteOrder) order() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Whence values for Seek, mirroring io.Seeker.
const (
	SeekStart = iota
	SeekCurrent
	SeekEnd
)

// Cursor owns a borrowed byte buffer and a read position. All reads are
// bounds-checked: a read that would run past the end of the buffer fails
// with an Io error rather than panicking.
type Cursor struct {
	buf   []byte
	pos   int
	order ByteOrder
}

// New returns a Cursor over buf using the given byte order directly,
// without inspecting buf for a byte-order-mark word.
func New(buf []byte, order ByteOrder) *Cursor {
	return &Cursor{buf: buf, order: order}
}

// NewAtBOM reads a 16-bit byte-order-mark word at bomOffset (always
// interpreted big-endian, since 0xFEFF/0xFFFE are byte-order invariant by
// construction) and returns a Cursor positioned at 0. Any value other than
// 0xFEFF or 0xFFFE fails with ByteOrderInvalid.
func NewAtBOM(buf []byte, bomOffset int) (*Cursor, error) {
	if bomOffset < 0 || bomOffset+2 > len(buf) {
		return nil, nerr.New(nerr.Io, "buffer too short for byte-order mark")
	}
	word := binary.BigEndian.Uint16(buf[bomOffset : bomOffset+2])
	var order ByteOrder
	switch word {
	case 0xFEFF:
		order = BigEndian
	case 0xFFFE:
		order = LittleEndian
	default:
		return nil, nerr.New(nerr.ByteOrderInvalid, "")
	}
	return &Cursor{buf: buf, order: order}, nil
}

// Order returns the byte order this cursor decodes multi-byte values with.
func (c *Cursor) Order() ByteOrder { return c.order }

// Len returns the length of the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Bytes returns the underlying buffer. Callers must not retain or mutate
// slices derived from it beyond the lifetime of the parse.
func (c *Cursor) Bytes() []byte { return c.buf }

// Position returns the current read position.
func (c *Cursor) Position() int { return c.pos }

// SetPosition sets the read position directly, without bounds checking
// (reads from an out of range position fail lazily, per the Io contract).
func (c *Cursor) SetPosition(pos int) { c.pos = pos }

// Seek adjusts the read position relative to whence, mirroring io.Seeker.
func (c *Cursor) Seek(offset int, whence int) (int, error) {
	var base int
	switch whence {
	case SeekStart:
		base = 0
	case SeekCurrent:
		base = c.pos
	case SeekEnd:
		base = len(c.buf)
	default:
		return 0, nerr.Newf(nerr.Io, "invalid whence %d", whence)
	}
	pos := base + offset
	if pos < 0 {
		return 0, nerr.New(nerr.Io, "negative seek position")
	}
	c.pos = pos
	return pos, nil
}

func (c *Cursor) require(n int) error {
	if c.pos < 0 || c.pos+n > len(c.buf) {
		return nerr.Newf(nerr.Io, "read of %d bytes at offset %d overruns %d byte buffer", n, c.pos, len(c.buf))
	}
	return nil
}

// ReadBytes reads n raw bytes and advances the position. The returned
// slice aliases the cursor's buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.require(n); err != nil {
		return nil, err
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadU8 reads an unsigned 8-bit integer.
func (c *Cursor) ReadU8() (uint8, error) {
	if err := c.require(1); err != nil {
		return 0, err
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

// ReadU16 reads an unsigned 16-bit integer in the cursor's byte order.
func (c *Cursor) ReadU16() (uint16, error) {
	if err := c.require(2); err != nil {
		return 0, err
	}
	v := c.order.order().Uint16(c.buf[c.pos : c.pos+2])
	c.pos += 2
	return v, nil
}

// ReadU32 reads an unsigned 32-bit integer in the cursor's byte order.
func (c *Cursor) ReadU32() (uint32, error) {
	if err := c.require(4); err != nil {
		return 0, err
	}
	v := c.order.order().Uint32(c.buf[c.pos : c.pos+4])
	c.pos += 4
	return v, nil
}

// ReadU64 reads an unsigned 64-bit integer in the cursor's byte order.
func (c *Cursor) ReadU64() (uint64, error) {
	if err := c.require(8); err != nil {
		return 0, err
	}
	v := c.order.order().Uint64(c.buf[c.pos : c.pos+8])
	c.pos += 8
	return v, nil
}

// ReadI32 reads a signed 32-bit integer in the cursor's byte order.
func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

// ReadI64 reads a signed 64-bit integer in the cursor's byte order.
func (c *Cursor) ReadI64() (int64, error) {
	v, err := c.ReadU64()
	return int64(v), err
}

// ByteAt returns the single byte at an absolute offset without moving the
// cursor's position.
func (c *Cursor) ByteAt(offset int) (byte, error) {
	if offset < 0 || offset >= len(c.buf) {
		return 0, nerr.Newf(nerr.Io, "read at offset %d overruns %d byte buffer", offset, len(c.buf))
	}
	return c.buf[offset], nil
}

// CStringAt reads a NUL-terminated UTF-8 string starting at an absolute
// offset, without moving the cursor's position. The terminating NUL is not
// included in the returned string.
func CStringAt(buf []byte, offset int) (string, error) {
	if offset < 0 || offset > len(buf) {
		return "", nerr.Newf(nerr.Io, "string offset %d overruns %d byte buffer", offset, len(buf))
	}
	end := offset
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	if end >= len(buf) {
		return "", nerr.New(nerr.Io, "unterminated string runs off the end of the buffer")
	}
	if !utf8.Valid(buf[offset:end]) {
		return "", nerr.New(nerr.Utf8, "path is not valid UTF-8")
	}
	return string(buf[offset:end]), nil
}
