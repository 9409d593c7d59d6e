package goldie

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"www.velocidex.com/golang/recyclebin/json"
)

// Assert compares golden against the fixture checked in under
// fixtures/<name>.golden. Rebuild fixtures with go test -update.
func Assert(t *testing.T, filename string, golden []byte) {
	t.Helper()

	g := goldie.New(t)
	_ = g.WithFixtureDir("fixtures")
	g.Assert(t, filename, golden)
}

// AssertJson serializes golden with the shared encoder options so
// ordered dicts render in column order.
func AssertJson(t *testing.T, filename string, golden interface{}) {
	t.Helper()

	Assert(t, filename, json.MustMarshalIndent(golden))
}
