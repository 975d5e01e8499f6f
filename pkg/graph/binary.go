package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

const (
	magicBytes = "PATHGRPH"
	version    = uint32(1)
	maxNodes   = 10_000_000
	maxEdges   = 50_000_000
	maxShapes  = 200_000_000
)

// fileHeader is the binary header.
type fileHeader struct {
	Magic     [8]byte
	Version   uint32
	NumNodes  uint32
	NumEdges  uint32
	NumShapes uint32 // flattened shape points
}

// WriteBinary serializes g to path. The file is written to a temporary
// sibling and renamed into place. The reverse CSR is not stored.
func WriteBinary(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	geoFirstOut := g.GeoFirstOut
	if geoFirstOut == nil {
		geoFirstOut = make([]uint32, g.NumEdges+1)
	}

	hdr := fileHeader{
		Version:   version,
		NumNodes:  g.NumNodes,
		NumEdges:  g.NumEdges,
		NumShapes: uint32(len(g.GeoShapeLat)),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	sections := []struct {
		name string
		u32  []uint32
		f64  []float64
	}{
		{name: "NodeLat", f64: g.NodeLat},
		{name: "NodeLon", f64: g.NodeLon},
		{name: "FirstOut", u32: firstOutOrEmpty(g)},
		{name: "Head", u32: g.Head},
		{name: "Weight", u32: g.Weight},
		{name: "GeoFirstOut", u32: geoFirstOut},
		{name: "GeoShapeLat", f64: g.GeoShapeLat},
		{name: "GeoShapeLon", f64: g.GeoShapeLon},
	}
	for _, s := range sections {
		if s.u32 != nil {
			err = writeUint32Slice(w, s.u32)
		} else {
			err = writeFloat64Slice(w, s.f64)
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", s.name, err)
		}
	}

	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

func firstOutOrEmpty(g *Graph) []uint32 {
	if g.FirstOut == nil {
		return make([]uint32, g.NumNodes+1)
	}
	return g.FirstOut
}

// ReadBinary deserializes a graph written by WriteBinary and rebuilds its
// reverse CSR.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}
	if hdr.NumShapes > maxShapes {
		return nil, fmt.Errorf("NumShapes %d exceeds limit %d", hdr.NumShapes, maxShapes)
	}

	g := &Graph{NumNodes: hdr.NumNodes, NumEdges: hdr.NumEdges}
	n, m, s := int(hdr.NumNodes), int(hdr.NumEdges), int(hdr.NumShapes)

	if g.NodeLat, err = readFloat64Slice(r, n); err != nil {
		return nil, fmt.Errorf("read NodeLat: %w", err)
	}
	if g.NodeLon, err = readFloat64Slice(r, n); err != nil {
		return nil, fmt.Errorf("read NodeLon: %w", err)
	}
	if g.FirstOut, err = readUint32Slice(r, n+1); err != nil {
		return nil, fmt.Errorf("read FirstOut: %w", err)
	}
	if g.Head, err = readUint32Slice(r, m); err != nil {
		return nil, fmt.Errorf("read Head: %w", err)
	}
	if g.Weight, err = readUint32Slice(r, m); err != nil {
		return nil, fmt.Errorf("read Weight: %w", err)
	}
	if g.GeoFirstOut, err = readUint32Slice(r, m+1); err != nil {
		return nil, fmt.Errorf("read GeoFirstOut: %w", err)
	}
	if g.GeoShapeLat, err = readFloat64Slice(r, s); err != nil {
		return nil, fmt.Errorf("read GeoShapeLat: %w", err)
	}
	if g.GeoShapeLon, err = readFloat64Slice(r, s); err != nil {
		return nil, fmt.Errorf("read GeoShapeLon: %w", err)
	}

	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	if err := validateCSR(g.FirstOut, g.Head, hdr.NumNodes); err != nil {
		return nil, fmt.Errorf("forward CSR invalid: %w", err)
	}
	if err := validateOffsets(g.GeoFirstOut, hdr.NumShapes); err != nil {
		return nil, fmt.Errorf("GeoFirstOut invalid: %w", err)
	}

	g.BuildReverse()
	return g, nil
}

// validateCSR checks CSR invariants. Heads must be sorted within each
// node's range for FindEdge.
func validateCSR(firstOut, head []uint32, numNodes uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("FirstOut length %d != NumNodes+1 %d", len(firstOut), numNodes+1)
	}
	if err := validateOffsets(firstOut, uint32(len(head))); err != nil {
		return fmt.Errorf("FirstOut: %w", err)
	}
	for u := uint32(0); u < numNodes; u++ {
		for e := firstOut[u]; e < firstOut[u+1]; e++ {
			if head[e] >= numNodes {
				return fmt.Errorf("Head[%d]=%d >= NumNodes=%d", e, head[e], numNodes)
			}
			if e > firstOut[u] && head[e] < head[e-1] {
				return fmt.Errorf("Head not sorted for node %d at edge %d", u, e)
			}
		}
	}
	return nil
}

// validateOffsets checks that offsets starts at 0, never decreases and ends
// at total.
func validateOffsets(offsets []uint32, total uint32) error {
	if len(offsets) == 0 {
		return fmt.Errorf("empty offsets")
	}
	if offsets[0] != 0 {
		return fmt.Errorf("offsets[0]=%d, want 0", offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return fmt.Errorf("not monotonic at %d: %d < %d", i, offsets[i], offsets[i-1])
		}
	}
	if last := offsets[len(offsets)-1]; last != total {
		return fmt.Errorf("last offset %d != %d", last, total)
	}
	return nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	s := make([]uint32, n)
	if n == 0 {
		return s, nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	s := make([]float64, n)
	if n == 0 {
		return s, nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
