// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bfres parses BFRES ("FRES") resource containers. The parser reads
// only as much of the container as is needed to enumerate its embedded
// files and dispatch any that are BNTX texture banks; other embedded
// resource kinds are skipped, per the decoder's scope.
package bfres

import (
	"bytes"

	"github.com/kinnay/ninres-go/internal/bntx"
	"github.com/kinnay/ninres-go/internal/cursor"
	"github.com/kinnay/ninres-go/internal/nerr"
)

// View is the parsed form of a BFRES container.
type View struct {
	Version               uint32
	ByteAlignment          uint8
	FileNameOffset         uint32
	Flags                  uint16
	BlockOffset            uint16
	RelocationTableOffset  uint32
	BfresSize              uint32
	FileNameLengthOffset   uint64
	EmbeddedFilesOffset     uint64
	EmbeddedFilesDictOffset uint64
	StringTableOffset       uint64
	StringTableSize         uint32

	// Files holds one entry per embedded slot, in dictionary order.
	Files []EmbeddedFile
}

// Extension reports the canonical file extension for this container kind.
func (v *View) Extension() string { return "bfres" }

// EmbeddedFile is one slot of a BFRES container's embedded file table.
// Only slots whose leading magic is "BNTX" are decoded; all others carry a
// nil BNTX and their raw bytes only.
type EmbeddedFile struct {
	Data []byte
	BNTX *bntx.View
}

var bntxMagic = []byte("BNTX")

// Parse decodes a BFRES container from buf.
func Parse(buf []byte) (*View, error) {
	c, err := cursor.NewAtBOM(buf, 0x0C)
	if err != nil {
		return nil, err
	}

	c.SetPosition(0x08)
	version, err := c.ReadU32()
	if err != nil {
		return nil, err
	}

	alignment, err := c.ByteAt(0x0E)
	if err != nil {
		return nil, err
	}

	c.SetPosition(0x10)
	fileNameOffset, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	flags, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	blockOffset, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	relocationTableOffset, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	bfresSize, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if _, err := c.Seek(4, cursor.SeekCurrent); err != nil {
		return nil, err
	}
	fileNameLengthOffset, err := c.ReadU64()
	if err != nil {
		return nil, err
	}

	c.SetPosition(0xB8)
	embeddedFilesOffset, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	embeddedFilesDictOffset, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	if _, err := c.Seek(8, cursor.SeekCurrent); err != nil {
		return nil, err
	}
	stringTableOffset, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	stringTableSize, err := c.ReadU32()
	if err != nil {
		return nil, err
	}

	c.SetPosition(int(embeddedFilesOffset))
	dataOffset, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	dataSize, err := c.ReadU64()
	if err != nil {
		return nil, err
	}

	c.SetPosition(int(embeddedFilesDictOffset) + 4)
	count, err := c.ReadU32()
	if err != nil {
		return nil, err
	}

	files := make([]EmbeddedFile, 0, count)
	for n := 0; n < int(count); n++ {
		lo := int(dataOffset) + n*int(dataSize)
		hi := lo + int(dataSize)
		if lo < 0 || hi > c.Len() || lo > hi {
			return nil, nerr.Newf(nerr.Io, "embedded file %d range [%d,%d) overruns buffer", n, lo, hi)
		}
		raw := c.Bytes()[lo:hi]

		ef := EmbeddedFile{Data: raw}
		if len(raw) >= 4 && bytes.Equal(raw[:4], bntxMagic) {
			bv, err := bntx.Parse(raw)
			if err != nil {
				return nil, err
			}
			ef.BNTX = bv
		}
		files = append(files, ef)
	}

	return &View{
		Version:                 version,
		ByteAlignment:           alignment,
		FileNameOffset:          fileNameOffset,
		Flags:                   flags,
		BlockOffset:             blockOffset,
		RelocationTableOffset:   relocationTableOffset,
		BfresSize:               bfresSize,
		FileNameLengthOffset:    fileNameLengthOffset,
		EmbeddedFilesOffset:     embeddedFilesOffset,
		EmbeddedFilesDictOffset: embeddedFilesDictOffset,
		StringTableOffset:       stringTableOffset,
		StringTableSize:         stringTableSize,
		Files:                   files,
	}, nil
}
