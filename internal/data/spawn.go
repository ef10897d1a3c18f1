package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpawnEntry places count monsters of a template at a world position.
type SpawnEntry struct {
	TemplateID int32   `yaml:"template_id"`
	X          float32 `yaml:"x"`
	Z          float32 `yaml:"z"`
	Count      int     `yaml:"count"`
}

type spawnFile struct {
	Spawns []SpawnEntry `yaml:"spawns"`
}

// LoadSpawnList reads the spawn placement file. Every entry must reference
// a known template.
func LoadSpawnList(path string, templates map[int32]*MonsterTemplate) ([]SpawnEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn list %s: %w", path, err)
	}

	var file spawnFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse spawn list %s: %w", path, err)
	}

	for i := range file.Spawns {
		sp := &file.Spawns[i]
		if _, ok := templates[sp.TemplateID]; !ok {
			return nil, fmt.Errorf("spawn entry %d: unknown template id %d", i, sp.TemplateID)
		}
		if sp.Count <= 0 {
			sp.Count = 1
		}
	}

	return file.Spawns, nil
}
