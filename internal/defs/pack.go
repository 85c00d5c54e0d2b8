package defs

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content/default.yaml
var defaultPackYAML []byte

// Pack is one YAML content file.
type Pack struct {
	Name       string          `yaml:"name"`
	Tiles      []TileDef       `yaml:"tiles"`
	Enemies    []EnemyDef      `yaml:"enemies"`
	Heroes     []HeroDef       `yaml:"heroes"`
	LootTables []LootTable     `yaml:"loot_tables"`
	Containers []LootContainer `yaml:"containers"`
	Recipes    []Recipe        `yaml:"recipes"`
}

// ParsePack parses a YAML content pack.
func ParsePack(data []byte) (Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Pack{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := p.checkIDs(); err != nil {
		return Pack{}, err
	}
	return p, nil
}

// DefaultPack returns the embedded content pack.
func DefaultPack() (Pack, error) {
	return ParsePack(defaultPackYAML)
}

// DefaultYAML returns the raw embedded content pack.
func DefaultYAML() []byte {
	return defaultPackYAML
}

func (p Pack) checkIDs() error {
	seen := make(map[string]bool)
	for _, t := range p.Tiles {
		if t.ID == "" {
			return fmt.Errorf("tile with empty id")
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate tile id %q", t.ID)
		}
		seen[t.ID] = true
	}
	for _, e := range p.Enemies {
		if e.ID == "" {
			return fmt.Errorf("enemy with empty id")
		}
	}
	for _, h := range p.Heroes {
		if h.ID == "" {
			return fmt.Errorf("hero with empty id")
		}
	}
	return nil
}

// Loader reads content packs from a directory tree.
type Loader struct {
	Root string
}

// NewLoader creates a new pack loader.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// LoadAll recursively loads every .yaml/.yml file under Root, sorted by path
// so overrides are deterministic.
func (l *Loader) LoadAll() ([]Pack, error) {
	var paths []string

	err := filepath.WalkDir(l.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	sort.Strings(paths)

	packs := make([]Pack, 0, len(paths))
	for _, path := range paths {
		p, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		packs = append(packs, p)
	}
	return packs, nil
}

// LoadFile loads a single pack file.
func (l *Loader) LoadFile(path string) (Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pack{}, fmt.Errorf("reading file %s: %w", path, err)
	}
	p, err := ParsePack(data)
	if err != nil {
		return Pack{}, fmt.Errorf("parsing file %s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// Open builds a database from the embedded default pack, overlaid with every
// pack found under dir when dir is non-empty.
func Open(db *Database, dir string) error {
	base, err := DefaultPack()
	if err != nil {
		return fmt.Errorf("defs: default pack: %w", err)
	}
	db.Add(base)

	if dir == "" {
		return nil
	}
	packs, err := NewLoader(dir).LoadAll()
	if err != nil {
		return fmt.Errorf("defs: %w", err)
	}
	for _, p := range packs {
		db.Add(p)
	}
	return nil
}
