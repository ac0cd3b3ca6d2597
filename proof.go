// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package fri

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/polynomial"
)

// sanity bounds for proof parsing
const (
	maxProofLayers    = 64
	maxProofOpenings  = 1 << 20
	maxProofPathLen   = 64
	maxProofRemainder = 1 << 20
	maxDigestSize     = 64
)

// Opening authenticates one coset of a committed layer: the coset values
// and the Merkle path binding their digest to the layer commitment.
type Opening struct {
	// Position is the coset index within the layer.
	Position uint64
	Coset    []fr.Element
	Path     [][]byte
}

// ProofLayer carries the commitment of one layer and the openings of the
// queried cosets, sorted by ascending position.
type ProofLayer struct {
	Commitment []byte
	Openings   []Opening
}

// Proof is the transmitted FRI artifact: one commitment and opening set
// per folding round, plus the remainder polynomial sent in the clear. It
// is self-describing enough to be parsed without the protocol options,
// though options must still match for verification to be meaningful.
type Proof struct {
	FoldingFactor int
	Layers        []ProofLayer
	Remainder     polynomial.Polynomial
}

// NumLayers returns the number of committed layers.
func (p *Proof) NumLayers() int { return len(p.Layers) }

func (p *Proof) digestSize() int {
	if len(p.Layers) == 0 {
		return 0
	}
	return len(p.Layers[0].Commitment)
}

// WriteTo serializes the proof. The layout is
//
//	[layerCount u32][foldingFactor u32][digestSize u32]
//	per layer: [digest][openingCount u32]
//	           per opening: [position u64][coset values][pathLen u32][path digests]
//	[remainderLen u32][remainder coefficients]
//
// with big-endian integers and 32-byte big-endian field elements.
// Serialization is deterministic: openings are stored sorted by position.
func (p *Proof) WriteTo(w io.Writer) (int64, error) {
	var written int64
	var buf [8]byte

	writeU32 := func(v uint32) error {
		binary.BigEndian.PutUint32(buf[:4], v)
		n, err := w.Write(buf[:4])
		written += int64(n)
		return err
	}
	writeBytes := func(b []byte) error {
		n, err := w.Write(b)
		written += int64(n)
		return err
	}

	if err := writeU32(uint32(len(p.Layers))); err != nil {
		return written, err
	}
	if err := writeU32(uint32(p.FoldingFactor)); err != nil {
		return written, err
	}
	if err := writeU32(uint32(p.digestSize())); err != nil {
		return written, err
	}

	for i := range p.Layers {
		if err := writeBytes(p.Layers[i].Commitment); err != nil {
			return written, err
		}
		if err := writeU32(uint32(len(p.Layers[i].Openings))); err != nil {
			return written, err
		}
		for j := range p.Layers[i].Openings {
			o := &p.Layers[i].Openings[j]
			binary.BigEndian.PutUint64(buf[:8], o.Position)
			if err := writeBytes(buf[:8]); err != nil {
				return written, err
			}
			for k := range o.Coset {
				b := o.Coset[k].Bytes()
				if err := writeBytes(b[:]); err != nil {
					return written, err
				}
			}
			if err := writeU32(uint32(len(o.Path))); err != nil {
				return written, err
			}
			for k := range o.Path {
				if err := writeBytes(o.Path[k]); err != nil {
					return written, err
				}
			}
		}
	}

	if err := writeU32(uint32(len(p.Remainder))); err != nil {
		return written, err
	}
	for i := range p.Remainder {
		b := p.Remainder[i].Bytes()
		if err := writeBytes(b[:]); err != nil {
			return written, err
		}
	}

	return written, nil
}

// ReadFrom parses a proof serialized by WriteTo. Counts are bounded
// before any allocation; structural inconsistencies are reported as
// ErrMalformedProof.
func (p *Proof) ReadFrom(r io.Reader) (int64, error) {
	var read int64
	var buf [8]byte

	readU32 := func() (uint32, error) {
		n, err := io.ReadFull(r, buf[:4])
		read += int64(n)
		if err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint32(buf[:4]), nil
	}
	readBytes := func(size int) ([]byte, error) {
		b := make([]byte, size)
		n, err := io.ReadFull(r, b)
		read += int64(n)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	readElement := func(z *fr.Element) error {
		var b [fr.Bytes]byte
		n, err := io.ReadFull(r, b[:])
		read += int64(n)
		if err != nil {
			return err
		}
		z.SetBytes(b[:])
		return nil
	}

	layerCount, err := readU32()
	if err != nil {
		return read, err
	}
	foldingFactor, err := readU32()
	if err != nil {
		return read, err
	}
	digestSize, err := readU32()
	if err != nil {
		return read, err
	}
	if layerCount > maxProofLayers {
		return read, fmt.Errorf("%w: layer count %d too large", ErrMalformedProof, layerCount)
	}
	if foldingFactor < 2 || foldingFactor > 1<<16 || !isPowerOfTwo(int(foldingFactor)) {
		return read, fmt.Errorf("%w: invalid folding factor %d", ErrMalformedProof, foldingFactor)
	}
	if layerCount > 0 && (digestSize == 0 || digestSize > maxDigestSize) {
		return read, fmt.Errorf("%w: invalid digest size %d", ErrMalformedProof, digestSize)
	}

	p.FoldingFactor = int(foldingFactor)
	p.Layers = make([]ProofLayer, layerCount)

	for i := range p.Layers {
		if p.Layers[i].Commitment, err = readBytes(int(digestSize)); err != nil {
			return read, err
		}
		openingCount, err := readU32()
		if err != nil {
			return read, err
		}
		if openingCount > maxProofOpenings {
			return read, fmt.Errorf("%w: opening count %d too large", ErrMalformedProof, openingCount)
		}
		p.Layers[i].Openings = make([]Opening, openingCount)
		for j := range p.Layers[i].Openings {
			o := &p.Layers[i].Openings[j]
			n, err := io.ReadFull(r, buf[:8])
			read += int64(n)
			if err != nil {
				return read, err
			}
			o.Position = binary.BigEndian.Uint64(buf[:8])
			o.Coset = make([]fr.Element, foldingFactor)
			for k := range o.Coset {
				if err := readElement(&o.Coset[k]); err != nil {
					return read, err
				}
			}
			pathLen, err := readU32()
			if err != nil {
				return read, err
			}
			if pathLen > maxProofPathLen {
				return read, fmt.Errorf("%w: path length %d too large", ErrMalformedProof, pathLen)
			}
			o.Path = make([][]byte, pathLen)
			for k := range o.Path {
				if o.Path[k], err = readBytes(int(digestSize)); err != nil {
					return read, err
				}
			}
		}
	}

	remainderLen, err := readU32()
	if err != nil {
		return read, err
	}
	if remainderLen > maxProofRemainder {
		return read, fmt.Errorf("%w: remainder length %d too large", ErrMalformedProof, remainderLen)
	}
	p.Remainder = make(polynomial.Polynomial, remainderLen)
	for i := range p.Remainder {
		if err := readElement(&p.Remainder[i]); err != nil {
			return read, err
		}
	}

	return read, nil
}
