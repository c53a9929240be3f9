package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/roadmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const straightMap = `
name: straight
roads:
  - id: "1"
    start: {x: 0, y: 0, heading: 0}
    geometry:
      - {type: line, length: 100}
    sections:
      - s: 0
        lanes:
          - {id: 1, width: [{s: 0, a: 3.0}]}
          - {id: -1, width: [{s: 0, a: 3.5}]}
`

func writeMap(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "straight.yaml")
	require.NoError(t, os.WriteFile(path, []byte(straightMap), 0o644))
	return dir, path
}

func TestPrintSummary(t *testing.T) {
	_, path := writeMap(t)
	def, err := roadmap.Load(path)
	require.NoError(t, err)
	m, err := roadmap.Build(def, roadmap.WithWorkers(1))
	require.NoError(t, err)

	var buf bytes.Buffer
	printSummary(&buf, m)
	assert.Contains(t, buf.String(), "map straight: 1 roads, 2 lanes")
	assert.Contains(t, buf.String(), "R1-LS0-R1")
	assert.Contains(t, buf.String(), "R1-LS0-L1")
}

func TestFindMap(t *testing.T) {
	dir, _ := writeMap(t)

	def, err := findMap("straight.yaml", dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "straight", def.Name)

	_, err = findMap("missing", dir, nil)
	assert.True(t, domain.Is(err, domain.ErrNotFound))
}

func TestStoreCommands(t *testing.T) {
	_, path := writeMap(t)
	storeDir := filepath.Join(t.TempDir(), "store")

	run := func(args ...string) string {
		t.Helper()
		cmd := storeCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(append(args, "--store", storeDir))
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	run("put", path)
	assert.Equal(t, "straight\n", run("list"))

	def, err := roadmap.Parse([]byte(run("get", "straight")))
	require.NoError(t, err)
	assert.Equal(t, "straight", def.Name)
	require.Len(t, def.Roads, 1)

	run("delete", "straight")
	assert.Empty(t, run("list"))
}
