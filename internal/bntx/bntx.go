// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bntx parses BNTX ("BNTX") texture banks: a header, a string
// table, one BRTI descriptor per texture, and the Tegra-swizzled pixel
// data those descriptors point at. Deswizzling is delegated to
// internal/swizzle; format metadata comes from internal/texfmt.
package bntx

import (
	"bytes"

	"github.com/kinnay/ninres-go/internal/cursor"
	"github.com/kinnay/ninres-go/internal/nerr"
	"github.com/kinnay/ninres-go/internal/swizzle"
	"github.com/kinnay/ninres-go/internal/texfmt"
)

var brtiMagic = []byte("BRTI")

// View is the parsed form of a BNTX texture bank.
type View struct {
	Alignment             uint8
	TargetAddressSize     uint8
	FileNameOffset        uint32
	Flag                  uint16
	BlockOffset           uint16
	RelocationTableOffset uint32
	FileSize              uint32
	TextureCount          int32
	TextureArrayOffset    int64
	TextureDataOffset     int64
	TextureDictOffset     int64

	// StringTable maps the absolute byte offset of an entry's size field
	// to the decoded entry.
	StringTable map[int]StringTableEntry

	Textures []Texture
}

// Extension reports the canonical file extension for this container kind.
func (v *View) Extension() string { return "bntx" }

// StringTableEntry is one decoded entry of a BNTX string table.
type StringTableEntry struct {
	Size uint16
	Text string
}

// Texture is one BRTI descriptor together with its deswizzled pixel data.
// Field order mirrors the order they are read from the wire, starting at
// BRTI+0x10.
type Texture struct {
	Flags       uint8
	Dim         uint8
	TileMode    uint16
	Swizzle     uint16
	MipCount    uint16
	SampleCount uint16
	Format      uint32
	AccessFlags uint32
	Width       uint32
	Height      uint32
	Depth       uint32
	ArrayLength uint32

	TextureLayout  uint32
	TextureLayout2 uint32

	ImageSize   uint32
	Alignment   uint32
	ChannelType uint32
	SurfaceDim  uint8

	Name string

	ParentOffset       uint64
	PtrOffset          uint64
	UserDataOffset     uint64
	TexPtr             uint64
	TexView            uint64
	DescSlotDataOffset uint64
	UserDictOffset     uint64

	// MipOffsets has length MipCount; MipOffsets[0] is always 0.
	MipOffsets []uint64

	// TextureData is indexed [array][mip] and holds deswizzled,
	// row-major pixel bytes.
	TextureData [][][]byte
}

// Parse decodes a BNTX texture bank from buf.
func Parse(buf []byte) (*View, error) {
	c, err := cursor.NewAtBOM(buf, 0x0C)
	if err != nil {
		return nil, err
	}

	alignment, err := c.ByteAt(0x0E)
	if err != nil {
		return nil, err
	}
	targetAddressSize, err := c.ByteAt(0x0F)
	if err != nil {
		return nil, err
	}

	c.SetPosition(0x10)
	fileNameOffset, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	flag, err := c.ReadU16()
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
	fileSize, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if _, err := c.Seek(4, cursor.SeekCurrent); err != nil {
		return nil, err
	}
	textureCount, err := c.ReadI32()
	if err != nil {
		return nil, err
	}
	textureArrayOffset, err := c.ReadI64()
	if err != nil {
		return nil, err
	}
	textureDataOffset, err := c.ReadI64()
	if err != nil {
		return nil, err
	}
	textureDictOffset, err := c.ReadI64()
	if err != nil {
		return nil, err
	}

	stringTable, err := parseStringTable(c, int(blockOffset), int(textureCount))
	if err != nil {
		return nil, err
	}

	textures := make([]Texture, 0, textureCount)
	for i := 0; i < int(textureCount); i++ {
		ptr, err := readU64At(c, int(textureArrayOffset)+i*8)
		if err != nil {
			return nil, err
		}

		magicLo := int(ptr)
		if magicLo < 0 || magicLo+4 > c.Len() {
			return nil, nerr.Newf(nerr.Io, "texture %d BRTI pointer %d overruns buffer", i, ptr)
		}
		if !bytes.Equal(c.Bytes()[magicLo:magicLo+4], brtiMagic) {
			return nil, nerr.Newf(nerr.CorruptData, "texture %d is missing BRTI magic", i)
		}

		tex, err := parseTexture(c, int(ptr), stringTable)
		if err != nil {
			return nil, err
		}
		textures = append(textures, *tex)
	}

	return &View{
		Alignment:             alignment,
		TargetAddressSize:     targetAddressSize,
		FileNameOffset:        fileNameOffset,
		Flag:                  flag,
		BlockOffset:           blockOffset,
		RelocationTableOffset: relocationTableOffset,
		FileSize:              fileSize,
		TextureCount:          textureCount,
		TextureArrayOffset:    textureArrayOffset,
		TextureDataOffset:     textureDataOffset,
		TextureDictOffset:     textureDictOffset,
		StringTable:           stringTable,
		Textures:              textures,
	}, nil
}

func readU64At(c *cursor.Cursor, offset int) (uint64, error) {
	saved := c.Position()
	defer c.SetPosition(saved)
	c.SetPosition(offset)
	return c.ReadU64()
}

func parseStringTable(c *cursor.Cursor, blockOffset, textureCount int) (map[int]StringTableEntry, error) {
	table := make(map[int]StringTableEntry, textureCount)
	c.SetPosition(blockOffset + 0x18)
	for i := 0; i < textureCount; i++ {
		entryOffset := c.Position()
		size, err := c.ReadU16()
		if err != nil {
			return nil, err
		}
		raw, err := c.ReadBytes(int(size))
		if err != nil {
			return nil, err
		}
		table[entryOffset] = StringTableEntry{Size: size, Text: string(raw)}

		pos := c.Position()
		if pos%2 != 0 {
			pos++
		} else {
			pos += 2
		}
		c.SetPosition(pos)
	}
	return table, nil
}

func parseTexture(c *cursor.Cursor, brtiOffset int, stringTable map[int]StringTableEntry) (*Texture, error) {
	c.SetPosition(brtiOffset + 0x10)

	flags, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	dim, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	tileMode, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	swiz, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	mipCount, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	sampleCount, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	if _, err := c.Seek(2, cursor.SeekCurrent); err != nil {
		return nil, err
	}
	format, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	accessFlags, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	width, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	height, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	depth, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	arrayLength, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	textureLayout, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	textureLayout2, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if _, err := c.Seek(20, cursor.SeekCurrent); err != nil {
		return nil, err
	}
	imageSize, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	alignment, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	channelType, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	surfaceDim, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	if _, err := c.Seek(3, cursor.SeekCurrent); err != nil {
		return nil, err
	}
	nameOffset, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	parentOffset, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	ptrOffset, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	userDataOffset, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	texPtr, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	texView, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	descSlotDataOffset, err := c.ReadU64()
	if err != nil {
		return nil, err
	}
	userDictOffset, err := c.ReadU64()
	if err != nil {
		return nil, err
	}

	entry, ok := stringTable[int(nameOffset)]
	if !ok {
		return nil, nerr.Newf(nerr.CorruptData, "texture name_offset %d not found in string table", nameOffset)
	}
	name := entry.Text

	tex := &Texture{
		Flags: flags, Dim: dim, TileMode: tileMode, Swizzle: swiz,
		MipCount: mipCount, SampleCount: sampleCount, Format: format,
		AccessFlags: accessFlags, Width: width, Height: height, Depth: depth,
		ArrayLength: arrayLength, TextureLayout: textureLayout, TextureLayout2: textureLayout2,
		ImageSize: imageSize, Alignment: alignment, ChannelType: channelType, SurfaceDim: surfaceDim,
		Name: name, ParentOffset: parentOffset, PtrOffset: ptrOffset, UserDataOffset: userDataOffset,
		TexPtr: texPtr, TexView: texView, DescSlotDataOffset: descSlotDataOffset, UserDictOffset: userDictOffset,
	}

	mipOffsets := make([]uint64, mipCount)
	if mipCount > 0 {
		first, err := readU64At(c, int(ptrOffset))
		if err != nil {
			return nil, err
		}
		mipOffsets[0] = 0
		for k := 1; k < int(mipCount); k++ {
			raw, err := readU64At(c, int(ptrOffset)+k*8)
			if err != nil {
				return nil, err
			}
			mipOffsets[k] = raw - first
		}

		textureData, err := extractTextureData(c.Bytes(), first, format, width, height, int(arrayLength),
			int(mipCount), mipOffsets, imageSize, textureLayout, tileMode)
		if err != nil {
			return nil, err
		}
		tex.TextureData = textureData
	}
	tex.MipOffsets = mipOffsets

	return tex, nil
}

// extractTextureData implements §4.5's per-array/per-mip extraction: for
// every array slot it deswizzles each mip level again from the same source
// region, matching the reference decoder's behavior of not deriving a
// per-array source offset.
func extractTextureData(buf []byte, firstMipAbs uint64, format, width, height uint32,
	arrayLength, mipCount int, mipOffsets []uint64, imageSize, textureLayout uint32, tileMode uint16) ([][][]byte, error) {

	bw, bh := texfmt.BlockDims(format >> 8)
	bpp, ok := texfmt.BytesPerBlock(format >> 8)
	if !ok {
		return nil, nerr.Newf(nerr.CorruptData, "unknown texture format code 0x%x", format>>8)
	}

	blockHeightLog2 := textureLayout & 7
	linesPerBlockHeight := (uint32(1) << blockHeightLog2) * 8
	shift := uint32(0)

	result := make([][][]byte, arrayLength)
	for a := 0; a < arrayLength; a++ {
		mips := make([][]byte, mipCount)
		localShift := shift
		for k := 0; k < mipCount; k++ {
			mw := maxU32(1, width>>uint(k))
			mh := maxU32(1, height>>uint(k))

			start := int64(firstMipAbs) + int64(mipOffsets[k])
			size := (int64(imageSize) - int64(mipOffsets[k])) / int64(arrayLength)
			if start < 0 || size < 0 || start+size > int64(len(buf)) {
				return nil, nerr.Newf(nerr.Io, "mip %d array %d source range overruns buffer", k, a)
			}
			src := buf[start : start+size]

			if swizzle.Pow2RoundUp(swizzle.DivRoundUp(mh, bh)) < linesPerBlockHeight {
				localShift++
			}

			effective := blockHeightLog2
			if localShift < effective {
				effective -= localShift
			} else {
				effective = 0
			}

			deswizzled, err := swizzle.Deswizzle(mw, mh, bw, bh, true, bpp, tileMode, uint32(effective), src)
			if err != nil {
				return nil, err
			}

			sizeFinal := swizzle.DivRoundUp(mw, bw) * swizzle.DivRoundUp(mh, bh) * bpp
			if sizeFinal > uint32(len(deswizzled)) {
				sizeFinal = uint32(len(deswizzled))
			}
			mips[k] = deswizzled[:sizeFinal]
		}
		result[a] = mips
		shift = localShift
	}
	return result, nil
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
