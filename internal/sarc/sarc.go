// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package sarc parses SEAD archive ("SARC") containers: a header, an SFAT
// node index and an SFNT name table, followed by a payload area that the
// SFAT entries carve into named byte ranges. See
// http://mk8.tockdom.com/wiki/SARC_(File_Format) for the wire format.
package sarc

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/kinnay/ninres-go/internal/cursor"
	"github.com/kinnay/ninres-go/internal/nerr"
)

// zstdMagic is the standard ZSTD frame magic number.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// View is the immutable, parsed form of a SARC archive.
type View struct {
	FileSize   uint32
	DataOffset uint32
	Version    uint16
	Nodes      []Node
}

// Extension reports the canonical file extension for this container kind.
func (v *View) Extension() string { return "sarc" }

// Node describes one SFAT entry: its hash, attributes, optional name, and
// the byte range it occupies in the archive's payload area.
type Node struct {
	Hash      uint32
	Attribute uint32
	// PathTableOffset is non-nil iff attribute&0xFFFF0000 == 0x01000000.
	PathTableOffset *uint32
	// Path is non-nil iff PathTableOffset is non-nil.
	Path *string

	DataStartOffset uint32
	DataEndOffset   uint32

	// Data is an owned copy of buffer[dataOffset+start .. dataOffset+end].
	Data []byte
	// DataDecompressed holds the full ZSTD-inflated payload when Data
	// begins with the ZSTD frame magic, else it is nil.
	DataDecompressed []byte
}

// Payload returns DataDecompressed if present, else Data, matching the
// "transparent access to the decompressed variant" surface consumers use.
func (n *Node) Payload() []byte {
	if n.DataDecompressed != nil {
		return n.DataDecompressed
	}
	return n.Data
}

const (
	sarcHeaderSize = 0x14
	sfatHeaderSize = 0x0C
	sfatNodeSize   = 0x10
)

// Parse decodes a SARC archive from buf. Any failure aborts the whole
// parse; there is no partial recovery.
func Parse(buf []byte) (*View, error) {
	c, err := cursor.NewAtBOM(buf, 0x06)
	if err != nil {
		return nil, err
	}

	c.SetPosition(0x08)
	fileSize, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	dataOffset, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	version, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	if _, err := c.Seek(8, cursor.SeekCurrent); err != nil {
		return nil, err
	}

	// The node_count field sits 0x06 bytes into the SFAT header, which
	// itself starts at 0x14.
	c.SetPosition(sarcHeaderSize + 0x06)
	nodeCount, err := c.ReadU16()
	if err != nil {
		return nil, err
	}

	nameTableBase := sarcHeaderSize + sfatHeaderSize + int(nodeCount)*sfatNodeSize

	nodes := make([]Node, 0, nodeCount)
	for i := 0; i < int(nodeCount); i++ {
		c.SetPosition(sarcHeaderSize + sfatHeaderSize + i*sfatNodeSize)

		hash, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		attr, err := c.ReadU32()
		if err != nil {
			return nil, err
		}

		var pathTableOffset *uint32
		var path *string
		if attr&0xFFFF0000 == 0x01000000 {
			off := (attr & 0xFFFF) * 4
			pathTableOffset = &off
			s, err := cursor.CStringAt(c.Bytes(), nameTableBase+int(off)+8)
			if err != nil {
				return nil, err
			}
			path = &s
		}

		start, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		end, err := c.ReadU32()
		if err != nil {
			return nil, err
		}

		lo, hi := int(dataOffset)+int(start), int(dataOffset)+int(end)
		if lo < 0 || hi > c.Len() || lo > hi {
			return nil, nerr.Newf(nerr.Io, "node %d payload range [%d,%d) overruns buffer", i, lo, hi)
		}
		data := make([]byte, hi-lo)
		copy(data, c.Bytes()[lo:hi])

		var decompressed []byte
		if len(data) >= 4 && bytes.Equal(data[:4], zstdMagic) {
			decompressed, err = inflateZstd(data)
			if err != nil {
				return nil, err
			}
		}

		nodes = append(nodes, Node{
			Hash:             hash,
			Attribute:        attr,
			PathTableOffset:  pathTableOffset,
			Path:             path,
			DataStartOffset:  start,
			DataEndOffset:    end,
			Data:             data,
			DataDecompressed: decompressed,
		})
	}

	return &View{
		FileSize:   fileSize,
		DataOffset: dataOffset,
		Version:    version,
		Nodes:      nodes,
	}, nil
}

func inflateZstd(framed []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(framed))
	if err != nil {
		return nil, nerr.Wrap(nerr.Zstd, "creating decoder", err)
	}
	defer dec.Close()
	out, err := io.ReadAll(dec)
	if err != nil {
		return nil, nerr.Wrap(nerr.Zstd, "decompressing frame", err)
	}
	return out, nil
}

// Hash implements the SFAT name hash: h[0] = 0, h[k+1] = data[k] + h[k]*key.
// The parser neither requires nor checks this; it is exported for
// consumers that want to verify archive integrity out of band.
func Hash(data []uint32, key uint32) uint32 {
	var h uint32
	for _, d := range data {
		h = d + h*key
	}
	return h
}
