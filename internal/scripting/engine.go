// Package scripting wraps a gopher-lua VM so combat tuning lives in data
// rather than in compiled code.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single Lua VM. Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts under scriptsDir.
// Missing subdirectories are skipped so a minimal deployment still boots.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "combat"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// AttackContext holds pre-packed data for an attack damage calculation.
type AttackContext struct {
	AttackerAttack int
	AttackerLevel  int
	TargetDefense  int
	TargetLevel    int
}

// AttackResult is returned by the Lua damage function.
type AttackResult struct {
	Damage int
}

// CalcAttackDamage calls the Lua calc_attack_damage function. A missing or
// failing script falls back to a minimal floor hit so combat keeps working.
func (e *Engine) CalcAttackDamage(ctx AttackContext) AttackResult {
	fn := e.vm.GetGlobal("calc_attack_damage")
	if fn == lua.LNil {
		e.log.Error("lua function calc_attack_damage not found")
		return AttackResult{Damage: 1}
	}

	t := e.vm.NewTable()

	atk := e.vm.NewTable()
	atk.RawSetString("attack", lua.LNumber(ctx.AttackerAttack))
	atk.RawSetString("level", lua.LNumber(ctx.AttackerLevel))
	t.RawSetString("attacker", atk)

	tgt := e.vm.NewTable()
	tgt.RawSetString("defense", lua.LNumber(ctx.TargetDefense))
	tgt.RawSetString("level", lua.LNumber(ctx.TargetLevel))
	t.RawSetString("target", tgt)

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_attack_damage error", zap.Error(err))
		return AttackResult{Damage: 1}
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua calc_attack_damage returned non-table")
		return AttackResult{Damage: 1}
	}

	return AttackResult{
		Damage: lInt(rt, "damage"),
	}
}

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
