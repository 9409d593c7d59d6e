package json

import (
	"testing"

	"github.com/Velocidex/ordereddict"
	"github.com/stretchr/testify/assert"
)

func TestDictEncodingKeepsOrder(t *testing.T) {
	row := ordereddict.NewDict().
		Set("IFile", `C:\$Recycle.Bin\$IKXV0R9.txt`).
		Set("Size", uint64(10)).
		Set("Missing", nil)

	serialized, err := Marshal(row)
	assert.NoError(t, err)
	assert.Equal(t,
		`{"IFile":"C:\\$Recycle.Bin\\$IKXV0R9.txt","Size":10,"Missing":null}`,
		string(serialized))
}

func TestMarshalIndent(t *testing.T) {
	row := ordereddict.NewDict().
		Set("Version", 2).
		Set("Deleted", "2023-03-15T10:30:00Z")

	serialized, err := MarshalIndent(row)
	assert.NoError(t, err)
	assert.Equal(t,
		"{\n \"Version\": 2,\n \"Deleted\": \"2023-03-15T10:30:00Z\"\n}",
		string(serialized))
}
