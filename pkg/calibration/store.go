package calibration

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// recordMagic marks a persisted record as valid. Any other leading byte
// is treated as an absent calibration.
const recordMagic = 0xC5

// diskRecord is the fixed-size wire form of a Record: one magic byte
// followed by six little-endian uint16 fields.
type diskRecord struct {
	Magic   uint8
	XMin    uint16
	XCenter uint16
	XMax    uint16
	YMin    uint16
	YCenter uint16
	YMax    uint16
}

const recordSize = 13

// Store persists a calibration Record. Load returns a Record with
// Valid=false (and no error) when nothing usable is stored.
type Store interface {
	Load() (Record, error)
	Save(Record) error
}

// FileStore keeps the binary record at a fixed offset of a file,
// standing in for the EEPROM slot the original devices used.
type FileStore struct {
	Path   string
	Offset int64
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load() (Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("open calibration: %w", err)
	}
	defer f.Close()

	buf := make([]byte, recordSize)
	if _, err := f.ReadAt(buf, s.Offset); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("read calibration: %w", err)
	}

	var dr diskRecord
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &dr); err != nil {
		return Record{}, fmt.Errorf("decode calibration: %w", err)
	}
	if dr.Magic != recordMagic {
		return Record{}, nil
	}
	return Record{
		X:     Axis{Min: int(dr.XMin), Center: int(dr.XCenter), Max: int(dr.XMax)},
		Y:     Axis{Min: int(dr.YMin), Center: int(dr.YCenter), Max: int(dr.YMax)},
		Valid: true,
	}, nil
}

func (s *FileStore) Save(rec Record) error {
	dr := diskRecord{
		Magic:   recordMagic,
		XMin:    uint16(rec.X.Min),
		XCenter: uint16(rec.X.Center),
		XMax:    uint16(rec.X.Max),
		YMin:    uint16(rec.Y.Min),
		YCenter: uint16(rec.Y.Center),
		YMax:    uint16(rec.Y.Max),
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, dr); err != nil {
		return fmt.Errorf("encode calibration: %w", err)
	}

	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open calibration: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteAt(buf.Bytes(), s.Offset); err != nil {
		return fmt.Errorf("write calibration: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests and simulation.
type MemStore struct {
	rec    Record
	stored bool
	Saves  int
}

func (s *MemStore) Load() (Record, error) {
	if !s.stored {
		return Record{}, nil
	}
	return s.rec, nil
}

func (s *MemStore) Save(rec Record) error {
	s.rec = rec
	s.stored = true
	s.Saves++
	return nil
}
