package recyclebin

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// PathConverter rebuilds deleted pathnames in the encoding the host
// filesystem expects. It is resolved once at startup (usually from
// the config file) and passed to the parser explicitly - there is no
// process wide encoding state.
type PathConverter struct {
	name    string
	decoder *encoding.Decoder

	// nil means the host uses utf-8 and the decoded pathname is
	// passed through unchanged.
	encoder *encoding.Encoder
}

// NewPathConverter resolves an IANA encoding name (e.g. "latin1",
// "Shift_JIS") into a converter. An empty name means utf-8.
func NewPathConverter(name string) (*PathConverter, error) {
	result := &PathConverter{
		name: name,
		decoder: unicode.UTF16(
			unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder(),
	}

	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		result.name = "utf-8"
		return result, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("Unknown filesystem encoding %q", name)
	}

	result.encoder = enc.NewEncoder()
	return result, nil
}

func (self *PathConverter) Name() string {
	return self.name
}

// decodePathname converts the raw UTF-16LE pathname field into a
// host encoded path truncated at the NUL terminator.
func (self *PathConverter) decodePathname(raw []byte) (string, error) {
	decoded, err := self.decoder.Bytes(raw)

	// The UTF-16 decoder substitutes the replacement char for
	// unpaired surrogates instead of failing, so check for it
	// explicitly.
	if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", fmt.Errorf("%w: Invalid UTF-16LE pathname", ErrInvalidFormat)
	}

	if self.encoder != nil {
		decoded, err = self.encoder.Bytes(decoded)
		if err != nil {
			return "", fmt.Errorf("%w: Pathname not representable in %v",
				ErrInvalidFormat, self.name)
		}
	}

	// The pathname field is padded - only the part up to the NUL
	// terminator is real.
	idx := bytes.IndexByte(decoded, 0)
	if idx < 0 {
		return "", fmt.Errorf("%w: Pathname not NUL terminated", ErrInvalidFormat)
	}

	return string(decoded[:idx]), nil
}

// restoreComponents checks the drive prefix and splits the pathname
// into relative restore components: `C:\Users\mike\secret.txt`
// becomes ["c", "Users", "mike", "secret.txt"]. Empty and dot
// components are dropped so a crafted record can not climb out of
// the restore target.
func restoreComponents(pathname string) ([]string, error) {
	if len(pathname) < 3 {
		return nil, fmt.Errorf("%w: Pathname too short: %q",
			ErrInvalidFormat, pathname)
	}

	drive := pathname[0]
	if !('a' <= drive && drive <= 'z' || 'A' <= drive && drive <= 'Z') {
		return nil, fmt.Errorf("%w: Pathname has no drive letter: %q",
			ErrInvalidFormat, pathname)
	}

	if pathname[1] != ':' || pathname[2] != '\\' {
		return nil, fmt.Errorf("%w: Pathname is not drive qualified: %q",
			ErrInvalidFormat, pathname)
	}

	components := []string{strings.ToLower(pathname[:1])}
	for _, c := range strings.Split(pathname[3:], "\\") {
		if c == "" || c == "." || c == ".." {
			continue
		}
		components = append(components, c)
	}

	return components, nil
}
