package wad

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidHeader    = errors.New("invalid wad header")
	ErrCorruptedLump    = errors.New("corrupted lump")
	ErrMissingLump      = errors.New("missing lump")
	ErrMapDoesNotExist  = errors.New("map does not exist")
	ErrInvalidReference = errors.New("record references a missing record")
)

// Lump is a named blob from the archive directory.
type Lump struct {
	Name string
	data []byte
}

func (l Lump) Bytes() []byte {
	return l.data
}

func (l Lump) Size() int {
	return len(l.data)
}

// name8 is a NUL padded 8 byte lump or texture name.
type name8 [8]byte

func (n name8) String() string {
	if i := bytes.IndexByte(n[:], 0); i >= 0 {
		return string(n[:i])
	}

	return string(n[:])
}

// readRecords decodes a lump made of fixed-size little endian records.
func readRecords[T any](lump Lump) ([]T, error) {
	var zero T

	size := binary.Size(zero)
	if lump.Size()%size != 0 {
		return nil, errors.Wrapf(ErrCorruptedLump, "%s: size %d is not a multiple of %d", lump.Name, lump.Size(), size)
	}

	out := make([]T, lump.Size()/size)

	err := binary.Read(bytes.NewReader(lump.data), binary.LittleEndian, out)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", lump.Name)
	}

	return out, nil
}

// MissingLumpsError lists every required lump a map lacks.
type MissingLumpsError struct {
	Map          string
	MissingLumps []string
}

func (m MissingLumpsError) Error() string {
	return fmt.Sprintf(`map %s is missing lumps: ("%s")`, m.Map, strings.Join(m.MissingLumps, `", "`))
}

func (m MissingLumpsError) Is(target error) bool {
	return target == ErrMissingLump
}
