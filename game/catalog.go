package game

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Catalog maps definition ids to character sheets. It is built once at
// startup and only read afterwards.
type Catalog map[uint32]*Character

// Get looks up a definition. A missing id is a normal outcome.
func (c Catalog) Get(id uint32) (*Character, bool) {
	ch, ok := c[id]
	return ch, ok
}

// IDs returns the registered ids in ascending order.
func (c Catalog) IDs() []uint32 {
	ids := make([]uint32, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// LoadCharacter decodes a single definition file.
func LoadCharacter(path string) (*Character, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read character %s: %w", path, err)
	}
	var ch Character
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, fmt.Errorf("decode character %s: %w", path, err)
	}
	return &ch, nil
}

// LoadCatalog registers the built-in sheet under id 0 and every "<id>.json"
// file found in dir; id 0 stays reserved for the built-in. Unreadable or
// malformed files are logged and skipped, so the id is simply absent. A
// missing directory leaves only the default.
func LoadCatalog(dir string, log *zap.SugaredLogger) Catalog {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	out := Catalog{0: DefaultCharacter()}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warnf("character directory %s not readable: %v", dir, err)
		return out
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		stem, ok := strings.CutSuffix(name, ".json")
		if !ok || stem == "" {
			continue
		}
		id, err := strconv.ParseUint(stem, 10, 32)
		if err != nil || id == 0 {
			continue
		}
		ch, err := LoadCharacter(filepath.Join(dir, name))
		if err != nil {
			log.Warnf("skipping character %d: %v", id, err)
			continue
		}
		ch.ID = uint32(id)
		out[uint32(id)] = ch
		log.Infof("loaded character %d (%s)", id, ch.Name)
	}
	return out
}
