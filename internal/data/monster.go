// Package data loads static game data shipped alongside the server
// binaries. Files are YAML so designers can edit them without tooling.
package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning defaults applied to template fields left unset.
const (
	DefaultSpeed            = 2.0  // world units per second
	DefaultAggroRange       = 3.0  // aggro scan radius
	DefaultAttackRange      = 1.5  // melee reach
	DefaultAttackCooldownMs = 2000 // ms between swings
)

// MonsterTemplate is one monster archetype.
type MonsterTemplate struct {
	ID               int32   `yaml:"id"`
	Name             string  `yaml:"name"`
	HP               int32   `yaml:"hp"`
	Attack           int32   `yaml:"attack"`
	Defense          int32   `yaml:"defense"`
	Level            int32   `yaml:"level"`
	Speed            float32 `yaml:"speed"`
	AggroRange       float32 `yaml:"aggro_range"`
	AttackRange      float32 `yaml:"attack_range"`
	AttackCooldownMs int     `yaml:"attack_cooldown_ms"`
}

type monsterFile struct {
	Monsters []MonsterTemplate `yaml:"monsters"`
}

// LoadMonsterTemplates reads the monster template file keyed by template id.
func LoadMonsterTemplates(path string) (map[int32]*MonsterTemplate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read monster templates %s: %w", path, err)
	}

	var file monsterFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse monster templates %s: %w", path, err)
	}

	templates := make(map[int32]*MonsterTemplate, len(file.Monsters))
	for i := range file.Monsters {
		tmpl := file.Monsters[i]
		if tmpl.ID <= 0 {
			return nil, fmt.Errorf("monster template %q: missing id", tmpl.Name)
		}
		if _, dup := templates[tmpl.ID]; dup {
			return nil, fmt.Errorf("monster template id %d: duplicate", tmpl.ID)
		}
		if tmpl.HP <= 0 {
			return nil, fmt.Errorf("monster template id %d: hp must be positive", tmpl.ID)
		}
		if tmpl.Speed == 0 {
			tmpl.Speed = DefaultSpeed
		}
		if tmpl.AggroRange == 0 {
			tmpl.AggroRange = DefaultAggroRange
		}
		if tmpl.AttackRange == 0 {
			tmpl.AttackRange = DefaultAttackRange
		}
		if tmpl.AttackCooldownMs == 0 {
			tmpl.AttackCooldownMs = DefaultAttackCooldownMs
		}
		templates[tmpl.ID] = &tmpl
	}

	return templates, nil
}
