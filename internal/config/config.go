// Package config describes the patch manifest: which files to patch, where
// the plugin goes and which asset to replace.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/joshuapare/tzpatch/pkg/patch"
	"github.com/joshuapare/tzpatch/pkg/sig"
)

// Target is one binary to patch, relative to the installation root.
type Target struct {
	Name        string `toml:"name"`
	Path        string `toml:"path"`
	Signature   string `toml:"signature"`
	Mask        string `toml:"mask,omitempty"`
	Start       int    `toml:"start,omitempty"`
	MaxScan     int    `toml:"max_scan,omitempty"`
	Delta       int    `toml:"delta"`
	Replacement string `toml:"replacement,omitempty"`
	NOPs        int    `toml:"nops,omitempty"` // shorthand for N bytes of 0x90
	Strict      bool   `toml:"strict,omitempty"`
}

// Patch converts the textual target into a validated patch.Patch.
func (t Target) Patch() (patch.Patch, error) {
	s, err := sig.Parse(t.Signature)
	if err != nil {
		return patch.Patch{}, fmt.Errorf("target %s: signature: %w", t.Name, err)
	}
	m, err := sig.ParseMask(t.Mask)
	if err != nil {
		return patch.Patch{}, fmt.Errorf("target %s: mask: %w", t.Name, err)
	}

	var repl []byte
	switch {
	case t.Replacement != "" && t.NOPs > 0:
		return patch.Patch{}, fmt.Errorf("target %s: replacement and nops are mutually exclusive", t.Name)
	case t.NOPs > 0:
		repl = patch.NOPs(t.NOPs)
	default:
		if repl, err = sig.ParseBytes(t.Replacement); err != nil {
			return patch.Patch{}, fmt.Errorf("target %s: replacement: %w", t.Name, err)
		}
	}

	p := patch.Patch{
		Name:        t.Name,
		Signature:   s,
		Mask:        m,
		Start:       t.Start,
		MaxScan:     t.MaxScan,
		Delta:       t.Delta,
		Replacement: repl,
		Strict:      t.Strict,
	}
	if err := p.Validate(); err != nil {
		return patch.Patch{}, fmt.Errorf("target %s: %w", t.Name, err)
	}
	return p, nil
}

// Plugin is the file copied into the installation's plugin directory.
type Plugin struct {
	Name string `toml:"name"`
	Dir  string `toml:"dir"` // Destination, relative to the installation root
}

// Asset is the content package replaced through the asset tool.
type Asset struct {
	KUID    string `toml:"kuid"`
	Package string `toml:"package"` // CDP file name in the source directory
	Tool    string `toml:"tool"`    // Asset tool executable, relative to the installation root
}

// Config is the full manifest.
type Config struct {
	BackupSuffix string   `toml:"backup_suffix"`
	Targets      []Target `toml:"target"`
	Plugin       Plugin   `toml:"plugin"`
	Asset        Asset    `toml:"asset"`
}

// Default returns the built-in manifest for a Trainz installation.
func Default() Config {
	exe, dll := patch.TrainzExe(), patch.NativeInterfaceDLL()
	return Config{
		BackupSuffix: patch.DefaultBackupSuffix,
		Targets: []Target{
			{
				Name:      exe.Name,
				Path:      filepath.Join("bin", "trainz.exe"),
				Signature: exe.Signature.String(),
				Delta:     exe.Delta,
				NOPs:      len(exe.Replacement),
			},
			{
				Name:        dll.Name,
				Path:        filepath.Join("bin", "trainznativeinterface.dll"),
				Signature:   dll.Signature.String(),
				Delta:       dll.Delta,
				Replacement: fmt.Sprintf("% X", dll.Replacement),
			},
		},
		Plugin: Plugin{
			Name: "TNISpeedTree.dll",
			Dir:  filepath.Join("bin", "plugins"),
		},
		Asset: Asset{
			KUID:    "kuid:401543:1077",
			Package: "SpeedTreeLibrary.cdp",
			Tool:    filepath.Join("bin", "TrainzUtil.exe"),
		},
	}
}

// Save writes c as TOML.
func Save(c Config, w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Load reads a manifest on top of Default. A manifest that lists any
// targets replaces the built-in target list. Unknown keys are rejected.
func Load(r io.Reader) (Config, error) {
	c := Default()
	builtin := c.Targets
	c.Targets = nil

	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return c, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return c, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if len(c.Targets) == 0 {
		c.Targets = builtin
	}
	return c, c.Validate()
}

// LoadFile is Load for a path on disk.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	c, err := Load(f)
	if err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Validate parses every target so malformed signatures and mask length
// mismatches surface before any file is touched.
func (c Config) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Targets))
	for i, t := range c.Targets {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("target %d: missing name", i))
		} else if seen[t.Name] {
			errs = append(errs, fmt.Errorf("target %s: duplicate name", t.Name))
		}
		seen[t.Name] = true
		if t.Path == "" || filepath.IsAbs(t.Path) {
			errs = append(errs, fmt.Errorf("target %s: path must be relative to the installation root", t.Name))
		}
		if _, err := t.Patch(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Patches returns the parsed patches in manifest order.
func (c Config) Patches() ([]patch.Patch, error) {
	out := make([]patch.Patch, 0, len(c.Targets))
	for _, t := range c.Targets {
		p, err := t.Patch()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
