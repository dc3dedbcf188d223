// Package sacio reads and writes a minimal subset of the binary SAC
// waveform format: the header fields this module populates (station and
// event geometry, reference time, P/S arrival markers) plus the evenly
// sampled data array Template file.
package sacio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	headerFloats  = 70
	headerInts    = 40
	headerStrings = 192
	headerBytes   = headerFloats*4 + headerInts*4 + headerStrings

	// undefined is SAC's sentinel for an unset numeric header field.
	undefinedF float32 = -12345.0
	undefinedI int32   = -12345

	// nvhdrCurrent is the only header version this package writes/reads.
	nvhdrCurrent int32 = 6
	// iftypeTime marks an evenly sampled time-series file.
	iftypeTime int32 = 1
)

// float field indices within the 70-word float section.
const (
	idxDelta = 0
	idxB     = 5
	idxA     = 8
	idxT0    = 10
	idxStla  = 31
	idxStlo  = 32
	idxStel  = 33
	idxEvla  = 35
	idxEvlo  = 36
	idxEvdp  = 38
)

// int field indices within the 40-word int section (absolute word index,
// i.e. already offset by headerFloats when used as a slice index).
const (
	idxNzyear = headerFloats + 0
	idxNzjday = headerFloats + 1
	idxNzhour = headerFloats + 2
	idxNzmin  = headerFloats + 3
	idxNzsec  = headerFloats + 4
	idxNzmsec = headerFloats + 5
	idxNvhdr  = headerFloats + 6
	idxNpts   = headerFloats + 9
	idxIftype = headerFloats + 15
	idxLeven  = headerFloats + 35
)

// string field byte offsets, relative to the start of the string block
// (headerFloats*4 + headerInts*4).
const (
	offKevnm = 8
	offKa    = 40
	offKt0   = 48
)

// Header carries the subset of SAC header fields this package
// understands; everything else round-trips as SAC's "undefined" sentinel.
type Header struct {
	Delta float64 // sampling interval, seconds
	B     float64 // begin time, seconds relative to reference time

	StationLat, StationLon, StationElevation float64
	EventLat, EventLon, EventDepth           float64

	// A is the P arrival time, T0 the S arrival time, both in seconds
	// relative to the reference time.
	A, T0 float64
	KA    string // phase name at A, e.g. "Ptheo"
	KT0   string // phase name at T0, e.g. "Stheo"

	KEVNM string // event name

	// ReferenceTime is the absolute time that B, A, T0 are offsets from.
	ReferenceTime time.Time
}

// File is a parsed SAC file: header plus data.
type File struct {
	Header Header
	Data   []float64
}

// Write renders f to filename in binary SAC format.
func Write(filename string, f File) error {
	buf, err := marshal(f)
	if err != nil {
		return fmt.Errorf("sacio: marshaling %s: %w", filename, err)
	}
	if err := os.WriteFile(filename, buf, 0o644); err != nil {
		return fmt.Errorf("sacio: writing %s: %w", filename, err)
	}
	return nil
}

func marshal(f File) ([]byte, error) {
	floats := make([]float32, headerFloats)
	ints := make([]int32, headerInts)
	for i := range floats {
		floats[i] = undefinedF
	}
	for i := range ints {
		ints[i] = undefinedI
	}
	strBlock := bytes.Repeat([]byte{'-'}, headerStrings)

	h := f.Header
	floats[idxDelta] = float32(h.Delta)
	floats[idxB] = float32(h.B)
	floats[idxA] = float32(h.A)
	floats[idxT0] = float32(h.T0)
	floats[idxStla] = float32(h.StationLat)
	floats[idxStlo] = float32(h.StationLon)
	floats[idxStel] = float32(h.StationElevation)
	floats[idxEvla] = float32(h.EventLat)
	floats[idxEvlo] = float32(h.EventLon)
	floats[idxEvdp] = float32(h.EventDepth)

	ref := h.ReferenceTime.UTC()
	ints[idxNzyear-headerFloats] = int32(ref.Year())
	ints[idxNzjday-headerFloats] = int32(ref.YearDay())
	ints[idxNzhour-headerFloats] = int32(ref.Hour())
	ints[idxNzmin-headerFloats] = int32(ref.Minute())
	ints[idxNzsec-headerFloats] = int32(ref.Second())
	ints[idxNzmsec-headerFloats] = int32(ref.Nanosecond() / 1e6)
	ints[idxNvhdr-headerFloats] = nvhdrCurrent
	ints[idxNpts-headerFloats] = int32(len(f.Data))
	ints[idxIftype-headerFloats] = iftypeTime
	ints[idxLeven-headerFloats] = 1

	putString(strBlock, offKevnm, 16, h.KEVNM)
	putString(strBlock, offKa, 8, h.KA)
	putString(strBlock, offKt0, 8, h.KT0)

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, floats); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, ints); err != nil {
		return nil, err
	}
	buf.Write(strBlock)

	data32 := make([]float32, len(f.Data))
	for i, v := range f.Data {
		data32[i] = float32(v)
	}
	if err := binary.Write(&buf, binary.LittleEndian, data32); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func putString(block []byte, offset, width int, s string) {
	padded := make([]byte, width)
	for i := range padded {
		padded[i] = ' '
	}
	copy(padded, s)
	copy(block[offset:offset+width], padded)
}

// Read parses a binary SAC file from filename.
func Read(filename string) (File, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return File{}, fmt.Errorf("sacio: reading %s: %w", filename, err)
	}
	return unmarshal(raw)
}

func unmarshal(raw []byte) (File, error) {
	if len(raw) < headerBytes {
		return File{}, fmt.Errorf("sacio: file too short for a SAC header: %d bytes", len(raw))
	}
	r := bytes.NewReader(raw)
	floats := make([]float32, headerFloats)
	ints := make([]int32, headerInts)
	if err := binary.Read(r, binary.LittleEndian, floats); err != nil {
		return File{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, ints); err != nil {
		return File{}, err
	}
	strBlock := make([]byte, headerStrings)
	if _, err := io.ReadFull(r, strBlock); err != nil {
		return File{}, err
	}

	npts := int(ints[idxNpts-headerFloats])
	data32 := make([]float32, npts)
	if err := binary.Read(r, binary.LittleEndian, data32); err != nil {
		return File{}, fmt.Errorf("sacio: reading %d data samples: %w", npts, err)
	}
	data := make([]float64, npts)
	for i, v := range data32 {
		data[i] = float64(v)
	}

	year := int(ints[idxNzyear-headerFloats])
	yday := int(ints[idxNzjday-headerFloats])
	hour := int(ints[idxNzhour-headerFloats])
	minute := int(ints[idxNzmin-headerFloats])
	sec := int(ints[idxNzsec-headerFloats])
	msec := int(ints[idxNzmsec-headerFloats])
	ref := time.Date(year, 1, 1, hour, minute, sec, msec*1e6, time.UTC).AddDate(0, 0, yday-1)

	h := Header{
		Delta:            float64(floats[idxDelta]),
		B:                float64(floats[idxB]),
		StationLat:       float64(floats[idxStla]),
		StationLon:       float64(floats[idxStlo]),
		StationElevation: float64(floats[idxStel]),
		EventLat:         float64(floats[idxEvla]),
		EventLon:         float64(floats[idxEvlo]),
		EventDepth:       float64(floats[idxEvdp]),
		A:                float64(floats[idxA]),
		T0:               float64(floats[idxT0]),
		KA:               trimString(strBlock[offKa : offKa+8]),
		KT0:              trimString(strBlock[offKt0 : offKt0+8]),
		KEVNM:            trimString(strBlock[offKevnm : offKevnm+16]),
		ReferenceTime:    ref,
	}
	return File{Header: h, Data: data}, nil
}

func trimString(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == ' ' || b[end-1] == 0 || b[end-1] == '-') {
		end--
	}
	return string(b[:end])
}
