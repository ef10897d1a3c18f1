package game

import (
	"github.com/gridgate/server/internal/nav"
	"github.com/gridgate/server/internal/scripting"
	"go.uber.org/zap"
)

// Combat resolves attacks and deaths. Damage numbers come from the Lua
// script so tuning never needs a rebuild; a nil engine falls back to the
// built-in formula, which tests rely on.
type Combat struct {
	state   *State
	mesh    *nav.Mesh
	scripts *scripting.Engine
	log     *zap.Logger
}

func NewCombat(state *State, mesh *nav.Mesh, scripts *scripting.Engine, log *zap.Logger) *Combat {
	return &Combat{state: state, mesh: mesh, scripts: scripts, log: log}
}

func (c *Combat) damage(attackerAttack, attackerLevel, targetDefense, targetLevel int32) int32 {
	if c.scripts != nil {
		res := c.scripts.CalcAttackDamage(scripting.AttackContext{
			AttackerAttack: int(attackerAttack),
			AttackerLevel:  int(attackerLevel),
			TargetDefense:  int(targetDefense),
			TargetLevel:    int(targetLevel),
		})
		if res.Damage > 0 {
			return int32(res.Damage)
		}
	}
	dmg := attackerAttack + attackerLevel - targetDefense
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// PlayerAttackMonster lands a player's hit on a monster. An idle or
// returning monster retaliates; a killed monster resets to its spawn.
func (c *Combat) PlayerAttackMonster(p *Player, m *Monster) {
	dmg := c.damage(p.Attack, p.Level, m.Defense, m.Level)
	m.HP -= dmg
	if m.HP < 0 {
		m.HP = 0
	}

	witnesses := c.state.NearbyPlayers(m.X, m.Z)
	broadcastAttack(p.UID, m.UID, monsterAccountID(m.UID), dmg, m.HP, witnesses)

	if m.HP == 0 {
		c.log.Info("monster killed",
			zap.Uint64("uid", m.UID),
			zap.String("by", p.AccountID),
		)
		c.respawnMonster(m)
		return
	}
	if m.State == MonsterIdle || m.State == MonsterReturn {
		startChase(m, p, c.mesh)
	}
}

// MonsterAttackPlayer lands a monster's hit on a player.
func (c *Combat) MonsterAttackPlayer(m *Monster, p *Player) {
	dmg := c.damage(m.Attack, m.Level, p.Defense, p.Level)
	p.HP -= dmg
	if p.HP < 0 {
		p.HP = 0
	}

	witnesses := c.state.NearbyPlayers(p.X, p.Z)
	broadcastAttack(m.UID, p.UID, p.AccountID, dmg, p.HP, witnesses)

	if p.HP == 0 {
		c.respawnPlayer(p)
	}
}

// PlayerAttackPlayer lands a PvP hit.
func (c *Combat) PlayerAttackPlayer(attacker, target *Player) {
	dmg := c.damage(attacker.Attack, attacker.Level, target.Defense, target.Level)
	target.HP -= dmg
	if target.HP < 0 {
		target.HP = 0
	}

	witnesses := c.state.NearbyPlayers(target.X, target.Z)
	broadcastAttack(attacker.UID, target.UID, target.AccountID, dmg, target.HP, witnesses)

	if target.HP == 0 {
		c.respawnPlayer(target)
	}
}

// respawnPlayer teleports a dead player to the origin at full health. Runs
// after the killing blow's broadcast, so clients see the death before the
// teleport. Only the victim is told about the new position; everyone else
// picks it up from the victim's next movement.
func (c *Combat) respawnPlayer(p *Player) {
	c.state.MovePlayer(p, 0, 0, 0, 0)
	p.HP = p.MaxHP
	broadcastMove(p.AccountID, 0, 0, 0, 0, []*Player{p})
	c.log.Info("player respawned", zap.String("account", p.AccountID))
}

// respawnMonster resets a dead monster to its spawn point at full health.
// Players near the spawn are shown the reappearance immediately.
func (c *Combat) respawnMonster(m *Monster) {
	m.X, m.Z = m.SpawnX, m.SpawnZ
	m.HP = m.MaxHP
	m.State = MonsterIdle
	m.TargetAccount = ""
	m.path = nil
	m.pathIndex = 0
	c.state.IndexMonster(m)

	if witnesses := c.state.NearbyPlayers(m.X, m.Z); len(witnesses) > 0 {
		broadcastMove(monsterAccountID(m.UID), m.X, 0, m.Z, m.Yaw, witnesses)
	}
}
