// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package ninres decodes Nintendo SARC archives and BFRES resource
// containers, including the BNTX texture banks BFRES files embed. It
// recognizes a buffer's format from its leading magic bytes, parses the
// container structurally, and for BNTX textures reverses the Tegra
// block-linear tiling transform to produce row-major pixel data.
//
// Decode is the package's single entry point:
//
//	v, err := ninres.Decode(buf)
//	switch view := v.(type) {
//	case *ninres.SarcView:
//		for _, n := range view.Nodes { ... }
//	case *ninres.BfresView:
//		for _, f := range view.Files { ... }
//	}
//
// Writing (encoding) any of these formats is out of scope; so is parsing
// BFRES sub-resources other than the embedded BNTX dispatch, and texture
// formats beyond those internal/texfmt tabulates.
package ninres

import (
	"github.com/kinnay/ninres-go/internal/bfres"
	"github.com/kinnay/ninres-go/internal/bntx"
	"github.com/kinnay/ninres-go/internal/nerr"
	"github.com/kinnay/ninres-go/internal/sarc"
)

// Decoded is implemented by every concrete view Decode can return.
type Decoded interface {
	// Extension is the canonical file extension for the decoded kind,
	// e.g. "sarc", "bfres" or "bntx".
	Extension() string
}

// Type aliases give callers a single import for the full decoded object
// graph while letting each format's mechanics live in its own internal
// package.
type (
	SarcView     = sarc.View
	SfatNode     = sarc.Node
	BfresView    = bfres.View
	EmbeddedFile = bfres.EmbeddedFile
	BNTXView     = bntx.View
	Texture      = bntx.Texture
)

// Kind identifies the category of a decoding failure.
type Kind = nerr.Kind

// Error is the concrete error type every decoding function returns.
type Error = nerr.Error

// Kind values, re-exported from internal/nerr for callers that want to
// switch on err.(*ninres.Error).Kind or use errors.Is.
const (
	TypeUnknown      = nerr.TypeUnknown
	ByteOrderInvalid = nerr.ByteOrderInvalid
	CorruptData      = nerr.CorruptData
	Io               = nerr.Io
	Utf8             = nerr.Utf8
	TryFromSlice     = nerr.TryFromSlice
	Zstd             = nerr.Zstd
)

// Decode inspects buf's leading four bytes and dispatches to the matching
// parser. A buffer that begins with neither "SARC" nor "FRES" fails with a
// TypeUnknown *Error carrying those four bytes.
func Decode(buf []byte) (Decoded, error) {
	if len(buf) < 4 {
		var magic [4]byte
		copy(magic[:], buf)
		return nil, nerr.Unknown(magic)
	}

	switch string(buf[:4]) {
	case "SARC":
		return sarc.Parse(buf)
	case "FRES":
		return bfres.Parse(buf)
	default:
		var magic [4]byte
		copy(magic[:], buf[:4])
		return nil, nerr.Unknown(magic)
	}
}

// SFATHash implements the SARC SFAT name hash, exposed for consumers that
// want to verify an archive's node hashes out of band; Decode neither
// requires nor checks it.
func SFATHash(data []uint32, key uint32) uint32 {
	return sarc.Hash(data, key)
}
