// Package resource loads the static game catalogs (items, monsters, spawn
// tables, locations and skill templates) from YAML or JSON files.
package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kasuganosora/roadquest/model"
	"gopkg.in/yaml.v3"
)

// SkillTemplate describes a learnable skill.
type SkillTemplate struct {
	Name     string          `json:"name" yaml:"name"`
	Type     model.SkillType `json:"type" yaml:"type"`
	Effects  []string        `json:"effects" yaml:"effects"`
	SPCost   int             `json:"sp_cost" yaml:"sp_cost"`
	Duration int             `json:"duration" yaml:"duration"`
}

// Loader reads and holds every catalog file found under Dir.
type Loader struct {
	Dir       string
	Items     []*model.Item
	Monsters  []*model.Monster
	Spawns    []*model.SpawnEntry
	Locations []*model.Location
	Skills    []*SkillTemplate
}

// NewLoader creates a Loader for the given catalog directory.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// Load reads every catalog. A catalog file may be absent, in which case its
// list stays empty; a file that exists but does not parse is an error.
func (l *Loader) Load() error {
	if _, err := os.Stat(l.Dir); err != nil {
		return fmt.Errorf("resource: catalog dir %s: %w", l.Dir, err)
	}
	loaders := []func() error{
		func() (err error) { l.Items, err = loadCatalog[model.Item](l.Dir, "items"); return },
		func() (err error) { l.Monsters, err = loadCatalog[model.Monster](l.Dir, "monsters"); return },
		func() (err error) { l.Spawns, err = loadCatalog[model.SpawnEntry](l.Dir, "spawns"); return },
		func() (err error) { l.Locations, err = loadCatalog[model.Location](l.Dir, "locations"); return },
		func() (err error) { l.Skills, err = loadCatalog[SkillTemplate](l.Dir, "skills"); return },
	}
	for _, fn := range loaders {
		if err := fn(); err != nil {
			return err
		}
	}
	l.assignSpawnIDs()
	return nil
}

// assignSpawnIDs numbers spawn entries that omit an id by file order.
func (l *Loader) assignSpawnIDs() {
	var next int64
	for _, s := range l.Spawns {
		next = max(next, s.ID)
	}
	for _, s := range l.Spawns {
		if s.ID == 0 {
			next++
			s.ID = next
		}
	}
}

var catalogExts = []string{".yaml", ".yml", ".json"}

// loadCatalog reads <dir>/<name>.{yaml,yml,json}, the first that exists.
func loadCatalog[T any](dir, name string) ([]*T, error) {
	for _, ext := range catalogExts {
		path := filepath.Join(dir, name+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resource: read %s: %w", path, err)
		}
		arr, err := decodeArray[T](path, data)
		if err != nil {
			return nil, fmt.Errorf("resource: parse %s: %w", path, err)
		}
		return compact(arr), nil
	}
	return nil, nil
}

func decodeArray[T any](path string, data []byte) ([]*T, error) {
	var arr []*T
	if strings.HasSuffix(path, ".json") {
		err := json.Unmarshal(data, &arr)
		return arr, err
	}
	err := yaml.Unmarshal(data, &arr)
	return arr, err
}

func compact[T any](arr []*T) []*T {
	out := arr[:0]
	for _, v := range arr {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// ItemByID returns the Item with the given ID, or nil.
func (l *Loader) ItemByID(id string) *model.Item {
	for _, it := range l.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// MonsterByID returns the Monster with the given ID, or nil.
func (l *Loader) MonsterByID(id string) *model.Monster {
	for _, m := range l.Monsters {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// LocationByID returns the Location with the given ID, or nil.
func (l *Loader) LocationByID(id string) *model.Location {
	for _, loc := range l.Locations {
		if loc.ID == id {
			return loc
		}
	}
	return nil
}

// SkillByName returns the SkillTemplate with the given name, or nil.
func (l *Loader) SkillByName(name string) *SkillTemplate {
	for _, s := range l.Skills {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// DanglingSpawns returns spawn entries whose monster is not in the catalog.
func (l *Loader) DanglingSpawns() []*model.SpawnEntry {
	var out []*model.SpawnEntry
	for _, s := range l.Spawns {
		if l.MonsterByID(s.MonsterID) == nil {
			out = append(out, s)
		}
	}
	return out
}
