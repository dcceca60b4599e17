package typegen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/pxdgen/errors"
)

func TestCompareOutputs_BannerIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "point.pxd")

	onDisk := Banner("point.json", "v0.1.0") + "\n\ncdef extern from \"point.h\":\n    pass\n"
	require.NoError(t, os.WriteFile(path, []byte(onDisk), 0644))

	fresh := FileContent(&Result{Output: "cdef extern from \"point.h\":\n    pass\n"}, "point.json", "v0.2.0")
	result := CompareOutputs([]Expected{{Path: path, Content: fresh}})

	assert.True(t, result.UpToDate)
	assert.Empty(t, result.Differences)
	assert.NoError(t, result.Err())
}

func TestCompareOutputs_FunctionalChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "point.pxd")
	require.NoError(t, os.WriteFile(path, []byte("cdef extern from \"point.h\":\n    int x\n"), 0644))

	result := CompareOutputs([]Expected{{Path: path, Content: []byte("cdef extern from \"point.h\":\n    long x\n")}})

	assert.False(t, result.UpToDate)
	assert.Equal(t, []string{path}, result.Differences)

	err := result.Err()
	require.Error(t, err)
	assert.True(t, errors.IsOutOfDateError(err))
	assert.Contains(t, errors.FlattenHints(err), "pxdgen generate")
}

func TestCompareOutputs_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.pxd")
	result := CompareOutputs([]Expected{{Path: path, Content: []byte("x\n")}})

	assert.False(t, result.UpToDate)
	assert.Equal(t, []string{path + " (missing)"}, result.Differences)
}

func TestFileContent(t *testing.T) {
	content := string(FileContent(&Result{Output: "a\n\n"}, "in.json", "dev"))
	assert.Equal(t, "# Generated by pxdgen dev from in.json. Do not edit.\n\na\n", content)
}

func TestResult_Summaries(t *testing.T) {
	r := &Result{Scopes: []ScopeSummary{
		{Namespace: "", Phased: false},
		{Namespace: "geo", Phased: true, InnerCycles: []string{"A", "B"}},
	}}
	assert.True(t, r.Phased())
	assert.Equal(t, []string{"geo::A", "geo::B"}, r.InnerCycles())
}
