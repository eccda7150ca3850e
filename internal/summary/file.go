package summary

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// magic identifies a module summary file.
var magic = [4]byte{'M', 'O', 'D', 'S'}

// formatVersion is bumped whenever the record layout changes.
const formatVersion uint16 = 1

type fileHeader struct {
	Magic     [4]byte
	Version   uint16
	Functions uint32
}

// WriteFile persists a summary. The file is written to a temporary
// name and renamed into place so readers never observe a partial
// summary.
func WriteFile(path string, m *ModuleSummary) error {
	count, err := safecast.Conv[uint32](len(m.Functions))
	if err != nil {
		return fmt.Errorf("summary of %s has too many functions: %w", m.Name, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	header := fileHeader{Magic: magic, Version: formatVersion, Functions: count}
	if err := binary.Write(f, binary.BigEndian, header); err != nil {
		f.Close()
		return err
	}
	if err := msgpack.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile loads and validates a summary written by WriteFile.
func ReadFile(path string) (*ModuleSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var header fileHeader
	if err := binary.Read(f, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("%s: failed to read summary header: %w", path, err)
	}
	if !bytes.Equal(header.Magic[:], magic[:]) {
		return nil, fmt.Errorf("%s: not a module summary file", path)
	}
	if header.Version != formatVersion {
		return nil, fmt.Errorf("%s: summary format version %d, expected %d",
			path, header.Version, formatVersion)
	}

	var m ModuleSummary
	if err := msgpack.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("%s: failed to decode summary records: %w", path, err)
	}
	if uint32(len(m.Functions)) != header.Functions {
		return nil, fmt.Errorf("%s: header promises %d function records, found %d",
			path, header.Functions, len(m.Functions))
	}
	return &m, nil
}
