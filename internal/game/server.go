// Package game implements the authoritative simulation process. All state
// lives behind a single game loop goroutine: per-connection reader
// goroutines only feed queues, the loop drains them, runs the systems in
// phase order, and pushes results back out through the write queues. No
// simulation data is ever touched from two goroutines.
package game

import (
	"context"
	"path/filepath"
	"time"

	"github.com/gridgate/server/internal/config"
	"github.com/gridgate/server/internal/core/event"
	"github.com/gridgate/server/internal/core/system"
	"github.com/gridgate/server/internal/data"
	"github.com/gridgate/server/internal/dispatch"
	"github.com/gridgate/server/internal/nav"
	"github.com/gridgate/server/internal/net"
	"github.com/gridgate/server/internal/scripting"
	"go.uber.org/zap"
)

// Server is the game process.
type Server struct {
	cfg *config.Config
	log *zap.Logger

	srv     *net.Server
	state   *State
	mesh    *nav.Mesh
	combat  *Combat
	scripts *scripting.Engine
	bus     *event.Bus
	runner  *system.Runner
	mux     *dispatch.Dispatcher[*net.Session]

	gateways map[uint64]*net.Session
}

// New loads the navmesh, scripts and static data, spawns the monster
// population and binds the gateway listener.
func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	if err := nav.Generate(cfg.Game.NavMeshPath); err != nil {
		log.Warn("navmesh bake failed",
			zap.String("path", cfg.Game.NavMeshPath), zap.Error(err))
	}
	mesh, err := nav.Load(cfg.Game.NavMeshPath)
	if err != nil {
		log.Warn("navmesh unavailable, using flat dummy plane",
			zap.String("path", cfg.Game.NavMeshPath), zap.Error(err))
		mesh = nav.BakeDummy(float32(cfg.Zone.Width), float32(cfg.Zone.Height))
	}

	scripts, err := scripting.NewEngine(cfg.Game.ScriptsDir, log)
	if err != nil {
		return nil, err
	}

	templates, err := data.LoadMonsterTemplates(filepath.Join(cfg.Game.DataDir, "monster_list.yaml"))
	if err != nil {
		return nil, err
	}
	spawns, err := data.LoadSpawnList(filepath.Join(cfg.Game.DataDir, "spawn_list.yaml"), templates)
	if err != nil {
		return nil, err
	}

	state := NewState(NewZone(cfg.Zone.Width, cfg.Zone.Height, cfg.Zone.SectorSize))
	spawnMonsters(state, templates, spawns)

	s := newServer(cfg, log, state, mesh, scripts)

	srv, err := net.NewServer(cfg.Game.BindAddress,
		cfg.Network.InQueueSize, cfg.Network.OutQueueSize, cfg.Network.WriteTimeout.Std(), log)
	if err != nil {
		scripts.Close()
		return nil, err
	}
	s.srv = srv
	return s, nil
}

// newServer wires the simulation without any sockets.
func newServer(cfg *config.Config, log *zap.Logger, state *State, mesh *nav.Mesh, scripts *scripting.Engine) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log,
		state:    state,
		mesh:     mesh,
		scripts:  scripts,
		bus:      event.NewBus(),
		runner:   system.NewRunner(),
		mux:      dispatch.NewDispatcher[*net.Session](log),
		gateways: make(map[uint64]*net.Session),
	}
	s.combat = NewCombat(state, mesh, scripts, log)
	s.registerHandlers()

	s.runner.Register(&eventSystem{bus: s.bus})
	s.runner.Register(newInputSystem(s, cfg.Game.MaxPacketsPerTick))
	s.runner.Register(newAISystem(state, mesh, s.combat, s.bus, log))
	s.runner.Register(newSyncSystem(state, cfg.Game.NetworkSyncInterval.Std()))
	return s
}

// spawnMonsters instantiates the spawn list. Entries with count > 1 are
// staggered a little so the pack does not stand in one point.
func spawnMonsters(state *State, templates map[int32]*data.MonsterTemplate, spawns []data.SpawnEntry) {
	uid := MonsterUIDBase
	for _, sp := range spawns {
		tmpl := templates[sp.TemplateID]
		for i := 0; i < sp.Count; i++ {
			offset := float32(i)
			state.AddMonster(NewMonster(uid, tmpl, sp.X+offset, sp.Z))
			uid++
		}
	}
}

// Run is the game loop. It is the only goroutine that touches State.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("game server listening",
		zap.String("bind", s.cfg.Game.BindAddress),
		zap.Duration("tick", s.cfg.Game.TickRate.Std()),
		zap.Int("monsters", len(s.state.monsters)),
	)

	go s.srv.AcceptLoop()

	ticker := time.NewTicker(s.cfg.Game.TickRate.Std())
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case sess := <-s.srv.NewSessions():
			s.gateways[sess.ID] = sess
			s.log.Info("gateway connected",
				zap.Uint64("session", sess.ID), zap.String("ip", sess.IP))
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			s.reapDeadGateways()
			s.runner.Tick(dt)
		}
	}
}

func (s *Server) shutdown() {
	s.srv.Shutdown()
	for _, sess := range s.gateways {
		sess.Close()
	}
	if s.scripts != nil {
		s.scripts.Close()
	}
}

// reapDeadGateways removes every player that arrived through a gateway
// whose connection has died. Their leave requests are gone with the
// gateway, so the cleanup happens here.
func (s *Server) reapDeadGateways() {
	for id, sess := range s.gateways {
		if !sess.IsClosed() {
			continue
		}
		delete(s.gateways, id)
		s.log.Warn("gateway disconnected", zap.Uint64("session", id))

		for accountID, p := range s.state.players {
			if p.Out == sender(sess) {
				s.state.RemovePlayer(accountID)
				event.Emit(s.bus, PlayerLeft{AccountID: accountID})
			}
		}
	}
}
