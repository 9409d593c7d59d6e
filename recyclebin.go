/*
   Velociraptor - Hunting Evil
   Copyright (C) 2019 Velocidex Innovations.

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as published
   by the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Parser for $I metadata files found in the Windows $Recycle.Bin
// folder. When a file is deleted through the Explorer shell, Windows
// renames it to an opaque $R name and drops a small $I file next to
// it recording the original pathname, the file size and the deletion
// time. Decoding the $I file is enough to put the $R payload back
// where it came from.
package recyclebin

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	// Version 1 records (pre Windows 10) always carry a fixed 260
	// code unit (MAX_PATH) pathname field.
	fixedPathnameLength = 260

	// Hard limit on the pathname length field in version 2
	// records. Windows never writes anything close to this.
	maxPathnameLength = 0x1000
)

// All structural decode failures wrap this error so callers can
// match the whole family with errors.Is().
var ErrInvalidFormat = errors.New("Not a valid $I file")

// The fixed little endian header at the start of every $I file.
type recordHeader struct {
	Version      uint64
	FileSize     uint64
	DeletionTime uint64
}

// Record is the decoded content of one $I metadata file.
type Record struct {
	// Format version of the record: 1 before Windows 10, 2 after.
	Version uint64

	// The file size Windows recorded at deletion time. Checked
	// against the actual size of the $R payload before restoring.
	DeclaredSize uint64

	// When the file was sent to the recycle bin.
	DeletionTime time.Time

	// The original pathname in the host filesystem encoding,
	// e.g. `C:\Users\mike\secret.txt`.
	DeletedPath string

	components []string
}

// Components returns the relative path the file restores to, one
// component per directory level. The drive letter is folded to lower
// case and loses its colon, so `C:\Users\mike\secret.txt` restores
// under ["c", "Users", "mike", "secret.txt"].
func (self *Record) Components() []string {
	return self.components
}

// RestorePath joins the restore components with the host separator.
func (self *Record) RestorePath() string {
	return filepath.Join(self.components...)
}

// ParseRecycleBin decodes a single $I record from the reader. Errors
// due to a malformed record all match ErrInvalidFormat.
func ParseRecycleBin(reader io.Reader, converter *PathConverter) (*Record, error) {
	header := &recordHeader{}
	err := binary.Read(reader, binary.LittleEndian, header)
	if err != nil {
		return nil, fmt.Errorf("%w: Truncated header: %v", ErrInvalidFormat, err)
	}

	var raw []byte

	switch header.Version {
	case 1:
		raw = make([]byte, fixedPathnameLength*2)
		_, err = io.ReadFull(reader, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: Truncated pathname: %v",
				ErrInvalidFormat, err)
		}

	case 2:
		var length uint32
		err = binary.Read(reader, binary.LittleEndian, &length)
		if err != nil {
			return nil, fmt.Errorf("%w: Truncated pathname length: %v",
				ErrInvalidFormat, err)
		}

		if length > maxPathnameLength {
			return nil, fmt.Errorf("%w: Pathname too long: %v code units",
				ErrInvalidFormat, length)
		}

		raw = make([]byte, int(length)*2)
		_, err = io.ReadFull(reader, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: Truncated pathname: %v",
				ErrInvalidFormat, err)
		}

	default:
		return nil, fmt.Errorf("%w: Unsupported version %v",
			ErrInvalidFormat, header.Version)
	}

	pathname, err := converter.decodePathname(raw)
	if err != nil {
		return nil, err
	}

	components, err := restoreComponents(pathname)
	if err != nil {
		return nil, err
	}

	return &Record{
		Version:      header.Version,
		DeclaredSize: header.FileSize,
		DeletionTime: FiletimeToTime(header.DeletionTime),
		DeletedPath:  pathname,
		components:   components,
	}, nil
}

// ParseFile decodes the $I file at filename. The file is fully read
// and closed before this returns.
func ParseFile(filename string, converter *PathConverter) (*Record, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	return ParseRecycleBin(fd, converter)
}
