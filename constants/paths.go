package constants

import "strings"

const (
	// Metadata files in a recycle bin start with this prefix.
	IFILE_PREFIX = "$I"

	// The payload file corresponding to a metadata file shares its
	// suffix but starts with this prefix instead.
	RFILE_PREFIX = "$R"
)

// IsMetadataName reports whether a directory entry is named like a
// recycle bin metadata file.
func IsMetadataName(name string) bool {
	return strings.HasPrefix(name, IFILE_PREFIX)
}

// PayloadName maps a metadata filename to its sibling payload
// filename: $IKXV0R9.txt becomes $RKXV0R9.txt.
func PayloadName(name string) string {
	return RFILE_PREFIX + strings.TrimPrefix(name, IFILE_PREFIX)
}
