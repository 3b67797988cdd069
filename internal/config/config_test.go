package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tzpatch/pkg/patch"
	"github.com/joshuapare/tzpatch/pkg/sig"
)

func TestDefaultMatchesBuiltinPatches(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	ps, err := c.Patches()
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, patch.TrainzExe(), ps[0])
	assert.Equal(t, patch.NativeInterfaceDLL(), ps[1])
}

func TestSaveLoadDefault(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Save(Default(), &buf))
	assert.Contains(t, buf.String(), "[[target]]")

	c, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadOverridesTargets(t *testing.T) {
	const manifest = `
backup_suffix = ".orig"

[[target]]
name = "game.exe"
path = "game.exe"
signature = "C2 08 ?? 6A"
mask = "FF FF 00 F0"
delta = 2
replacement = "EB FE"
strict = true

[asset]
kuid = "kuid:1:2"
`
	c, err := Load(strings.NewReader(manifest))
	require.NoError(t, err)
	assert.Equal(t, ".orig", c.BackupSuffix)
	require.Len(t, c.Targets, 1)
	assert.Equal(t, "kuid:1:2", c.Asset.KUID)
	assert.Equal(t, Default().Asset.Package, c.Asset.Package, "unset keys keep defaults")
	assert.Equal(t, Default().Plugin, c.Plugin)

	p, err := c.Targets[0].Patch()
	require.NoError(t, err)
	assert.Equal(t, sig.Signature{sig.Byte(0xC2), sig.Byte(0x08), sig.Any, sig.Byte(0x6A)}, p.Signature)
	assert.Equal(t, sig.Mask{0xFF, 0xFF, 0x00, 0xF0}, p.Mask)
	assert.Equal(t, []byte{0xEB, 0xFE}, p.Replacement)
	assert.True(t, p.Strict)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     string
	}{
		{"unknown key", "colour = 1\n", "unknown keys"},
		{"bad mask length", `
[[target]]
name = "a"
path = "a.exe"
signature = "C2 08"
mask = "FF"
replacement = "90"
`, "mask must be as long"},
		{"both replacement forms", `
[[target]]
name = "a"
path = "a.exe"
signature = "C2"
replacement = "90"
nops = 2
`, "mutually exclusive"},
		{"absolute path", `
[[target]]
name = "a"
path = "/abs/a.exe"
signature = "C2"
nops = 1
`, "relative"},
		{"duplicate name", `
[[target]]
name = "a"
path = "a.exe"
signature = "C2"
nops = 1

[[target]]
name = "a"
path = "b.exe"
signature = "C2"
nops = 1
`, "duplicate"},
		{"bad toml", "[[target", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.manifest))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tzpatch.toml")
	require.NoError(t, os.WriteFile(path, []byte("backup_suffix = \".old\"\n"), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ".old", c.BackupSuffix)
	assert.Len(t, c.Targets, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
