package converter

import (
	"archive/zip"
	"bufio"
	"encoding/binary"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"
	"unicode/utf16"

	"github.com/nconklindev/smetacsv/internal/types"
)

// BIFF12 record types read from .xlsb parts.
const (
	brtRowHdr     = 0x00
	brtCellBlank  = 0x01
	brtCellRk     = 0x02
	brtCellError  = 0x03
	brtCellBool   = 0x04
	brtCellReal   = 0x05
	brtCellSt     = 0x06
	brtCellIsst   = 0x07
	brtFmlaString = 0x08
	brtFmlaNum    = 0x09
	brtFmlaBool   = 0x0A
	brtFmlaError  = 0x0B
	brtSSTItem    = 0x13
	brtBundleSh   = 0x9C
)

const (
	xlsbMaxRows = 1 << 20
	xlsbMaxCols = 1 << 14

	xlsbDefaultSheet = "xl/worksheets/sheet1.bin"
)

var errTruncatedRecord = errors.New("xlsb: truncated record")

var xlsbErrorText = map[byte]string{
	0x00: "#NULL!",
	0x07: "#DIV/0!",
	0x0F: "#VALUE!",
	0x17: "#REF!",
	0x1D: "#NAME?",
	0x24: "#NUM!",
	0x2A: "#N/A",
	0x2B: "#GETTING_DATA",
}

func readXLSBRows(filePath string) ([][]types.Cell, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[f.Name] = f
	}

	sheetPart, err := firstSheetPart(parts)
	if err != nil {
		return nil, err
	}

	var sst []string
	if f, ok := parts["xl/sharedStrings.bin"]; ok {
		if sst, err = readSharedStrings(f); err != nil {
			return nil, fmt.Errorf("xlsb shared strings: %w", err)
		}
	}

	f, ok := parts[sheetPart]
	if !ok {
		return nil, fmt.Errorf("xlsb: worksheet part %s not found", sheetPart)
	}
	return readSheetBin(f, sst)
}

// firstSheetPart resolves the zip path of the first worksheet listed in the workbook.
func firstSheetPart(parts map[string]*zip.File) (string, error) {
	wb, ok := parts["xl/workbook.bin"]
	if !ok {
		return "", errors.New("xlsb: xl/workbook.bin not found")
	}

	relID := ""
	err := eachRecord(wb, func(recType int, data []byte) (bool, error) {
		if recType != brtBundleSh {
			return true, nil
		}
		if len(data) < 8 {
			return false, errTruncatedRecord
		}
		id, _, err := readWideString(data, 8)
		if err != nil {
			return false, err
		}
		relID = id
		return false, nil
	})
	if err != nil {
		return "", err
	}

	rels, ok := parts["xl/_rels/workbook.bin.rels"]
	if relID == "" || !ok {
		return xlsbDefaultSheet, nil
	}

	target, err := relationshipTarget(rels, relID)
	if err != nil {
		return "", err
	}
	if target == "" {
		return xlsbDefaultSheet, nil
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/"), nil
	}
	return path.Join("xl", target), nil
}

type xlsbRelationships struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

func relationshipTarget(f *zip.File, id string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var rels xlsbRelationships
	if err := xml.NewDecoder(rc).Decode(&rels); err != nil {
		return "", fmt.Errorf("xlsb relationships: %w", err)
	}
	for _, r := range rels.Relationships {
		if r.ID == id {
			return r.Target, nil
		}
	}
	return "", nil
}

func readSharedStrings(f *zip.File) ([]string, error) {
	var sst []string
	err := eachRecord(f, func(recType int, data []byte) (bool, error) {
		if recType != brtSSTItem {
			return true, nil
		}
		// RichStr: one flags byte, then the plain text.
		s, _, err := readWideString(data, 1)
		if err != nil {
			return false, err
		}
		sst = append(sst, s)
		return true, nil
	})
	return sst, err
}

func readSheetBin(f *zip.File, sst []string) ([][]types.Cell, error) {
	var rows [][]types.Cell
	row := -1

	err := eachRecord(f, func(recType int, data []byte) (bool, error) {
		if recType == brtRowHdr {
			if len(data) < 4 {
				return false, errTruncatedRecord
			}
			r := int(binary.LittleEndian.Uint32(data))
			if r >= xlsbMaxRows {
				return false, fmt.Errorf("xlsb: row %d out of range", r)
			}
			row = r
			return true, nil
		}
		if recType < brtCellBlank || recType > brtFmlaError {
			return true, nil
		}
		if row < 0 {
			return true, nil
		}
		if len(data) < 8 {
			return false, errTruncatedRecord
		}
		col := int(binary.LittleEndian.Uint32(data))
		if col >= xlsbMaxCols {
			return false, fmt.Errorf("xlsb: column %d out of range", col)
		}

		cell, err := decodeXLSBCell(recType, data[8:], sst)
		if err != nil {
			return false, err
		}
		if cell.Kind == types.Empty {
			return true, nil
		}

		for len(rows) <= row {
			rows = append(rows, nil)
		}
		for len(rows[row]) <= col {
			rows[row] = append(rows[row], types.Cell{})
		}
		rows[row][col] = cell
		return true, nil
	})

	return rows, err
}

func decodeXLSBCell(recType int, v []byte, sst []string) (types.Cell, error) {
	switch recType {
	case brtCellBlank:
		return types.Cell{}, nil
	case brtCellRk:
		if len(v) < 4 {
			return types.Cell{}, errTruncatedRecord
		}
		return types.NumberCell(decodeRK(binary.LittleEndian.Uint32(v))), nil
	case brtCellReal, brtFmlaNum:
		if len(v) < 8 {
			return types.Cell{}, errTruncatedRecord
		}
		return types.NumberCell(math.Float64frombits(binary.LittleEndian.Uint64(v))), nil
	case brtCellBool, brtFmlaBool:
		if len(v) < 1 {
			return types.Cell{}, errTruncatedRecord
		}
		return types.BoolCell(v[0] != 0), nil
	case brtCellError, brtFmlaError:
		if len(v) < 1 {
			return types.Cell{}, errTruncatedRecord
		}
		if text, ok := xlsbErrorText[v[0]]; ok {
			return types.TextCell(text), nil
		}
		return types.TextCell("#ERROR"), nil
	case brtCellSt, brtFmlaString:
		s, _, err := readWideString(v, 0)
		if err != nil {
			return types.Cell{}, err
		}
		return types.TextCell(s), nil
	case brtCellIsst:
		if len(v) < 4 {
			return types.Cell{}, errTruncatedRecord
		}
		idx := int(binary.LittleEndian.Uint32(v))
		if idx >= len(sst) {
			return types.Cell{}, fmt.Errorf("xlsb: shared string %d out of range", idx)
		}
		return types.TextCell(sst[idx]), nil
	}
	return types.Cell{}, nil
}

// decodeRK unpacks the compressed RK number representation.
func decodeRK(rk uint32) float64 {
	var v float64
	if rk&0x02 != 0 {
		v = float64(int32(rk) >> 2)
	} else {
		v = math.Float64frombits(uint64(rk&0xFFFFFFFC) << 32)
	}
	if rk&0x01 != 0 {
		v /= 100
	}
	return v
}

// eachRecord streams the BIFF12 records of a part. fn returns false to stop early.
func eachRecord(f *zip.File, fn func(recType int, data []byte) (bool, error)) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	br := bufio.NewReader(rc)
	for {
		recType, err := readRecordVarint(br, 2)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		size, err := readRecordVarint(br, 4)
		if err != nil {
			return unexpectedEOF(err)
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(br, data); err != nil {
			return unexpectedEOF(err)
		}

		more, err := fn(recType, data)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// readRecordVarint reads a record type (up to 2 bytes) or size (up to 4
// bytes); each byte carries 7 bits and the high bit marks continuation.
func readRecordVarint(br io.ByteReader, maxBytes int) (int, error) {
	v := 0
	for i := 0; i < maxBytes; i++ {
		b, err := br.ReadByte()
		if err != nil {
			if i > 0 {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		v |= int(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			break
		}
	}
	return v, nil
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// readWideString decodes an XLWideString (uint32 character count followed by
// UTF-16LE) at off. A count of 0xFFFFFFFF is the null string.
func readWideString(data []byte, off int) (string, int, error) {
	if off+4 > len(data) {
		return "", off, errTruncatedRecord
	}
	n := binary.LittleEndian.Uint32(data[off:])
	off += 4
	if n == 0xFFFFFFFF {
		return "", off, nil
	}
	if uint64(off)+uint64(n)*2 > uint64(len(data)) {
		return "", off, errTruncatedRecord
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(data[off+2*i:])
	}
	return string(utf16.Decode(units)), off + int(n)*2, nil
}
