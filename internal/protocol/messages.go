package protocol

import "github.com/gridgate/server/internal/protocol/wire"

// Message schemas. Field order in MarshalPacket/UnmarshalPacket is the wire
// schema; both sides must agree, so never reorder fields without bumping
// the packet id.

// ── Login ─────────────────────────────────────────────────────────

// LoginReq is ClientLoginLoginReq { id, password }.
type LoginReq struct {
	ID       string
	Password string
}

func (m *LoginReq) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteS(m.ID)
	w.WriteS(m.Password)
	return w.Bytes()
}

func (m *LoginReq) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.ID = r.ReadS()
	m.Password = r.ReadS()
	return r.Err()
}

// LoginRes is LoginClientLoginRes { success }.
type LoginRes struct {
	Success bool
}

func (m *LoginRes) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteBool(m.Success)
	return w.Bytes()
}

func (m *LoginRes) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.Success = r.ReadBool()
	return r.Err()
}

// Heartbeat carries no fields; the frame itself is the signal.
type Heartbeat struct{}

func (m *Heartbeat) MarshalPacket() []byte            { return nil }
func (m *Heartbeat) UnmarshalPacket(data []byte) error { return nil }

// WorldSelectReq is ClientLoginWorldSelectReq { world_id }.
type WorldSelectReq struct {
	WorldID int32
}

func (m *WorldSelectReq) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteD(m.WorldID)
	return w.Bytes()
}

func (m *WorldSelectReq) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.WorldID = r.ReadD()
	return r.Err()
}

// WorldSelectRes is LoginClientWorldSelectRes
// { success, gateway_ip, gateway_port, session_token }.
type WorldSelectRes struct {
	Success      bool
	GatewayIP    string
	GatewayPort  uint16
	SessionToken string
}

func (m *WorldSelectRes) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteBool(m.Success)
	w.WriteS(m.GatewayIP)
	w.WriteH(m.GatewayPort)
	w.WriteS(m.SessionToken)
	return w.Bytes()
}

func (m *WorldSelectRes) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.Success = r.ReadBool()
	m.GatewayIP = r.ReadS()
	m.GatewayPort = r.ReadH()
	m.SessionToken = r.ReadS()
	return r.Err()
}

// ── Login ↔ World (S2S) ───────────────────────────────────────────

// LoginWorldSelectReq is { account_id, world_id }.
type LoginWorldSelectReq struct {
	AccountID string
	WorldID   int32
}

func (m *LoginWorldSelectReq) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteS(m.AccountID)
	w.WriteD(m.WorldID)
	return w.Bytes()
}

func (m *LoginWorldSelectReq) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.AccountID = r.ReadS()
	m.WorldID = r.ReadD()
	return r.Err()
}

// WorldLoginSelectRes is
// { account_id, success, gateway_ip, gateway_port, session_token }.
type WorldLoginSelectRes struct {
	AccountID    string
	Success      bool
	GatewayIP    string
	GatewayPort  uint16
	SessionToken string
}

func (m *WorldLoginSelectRes) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteS(m.AccountID)
	w.WriteBool(m.Success)
	w.WriteS(m.GatewayIP)
	w.WriteH(m.GatewayPort)
	w.WriteS(m.SessionToken)
	return w.Bytes()
}

func (m *WorldLoginSelectRes) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.AccountID = r.ReadS()
	m.Success = r.ReadBool()
	m.GatewayIP = r.ReadS()
	m.GatewayPort = r.ReadH()
	m.SessionToken = r.ReadS()
	return r.Err()
}

// ── Gateway client-facing ─────────────────────────────────────────

// ConnectReq is ClientGatewayConnectReq { account_id, session_token }.
type ConnectReq struct {
	AccountID    string
	SessionToken string
}

func (m *ConnectReq) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteS(m.AccountID)
	w.WriteS(m.SessionToken)
	return w.Bytes()
}

func (m *ConnectReq) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.AccountID = r.ReadS()
	m.SessionToken = r.ReadS()
	return r.Err()
}

// ConnectRes is GatewayClientConnectRes { success }.
type ConnectRes struct {
	Success bool
}

func (m *ConnectRes) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteBool(m.Success)
	return w.Bytes()
}

func (m *ConnectRes) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.Success = r.ReadBool()
	return r.Err()
}

// ChatReq is ClientGatewayChatReq { msg }.
type ChatReq struct {
	Msg string
}

func (m *ChatReq) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteS(m.Msg)
	return w.Bytes()
}

func (m *ChatReq) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.Msg = r.ReadS()
	return r.Err()
}

// ChatRes is GatewayClientChatRes { account_id, msg }.
type ChatRes struct {
	AccountID string
	Msg       string
}

func (m *ChatRes) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteS(m.AccountID)
	w.WriteS(m.Msg)
	return w.Bytes()
}

func (m *ChatRes) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.AccountID = r.ReadS()
	m.Msg = r.ReadS()
	return r.Err()
}

// MoveReq is ClientGatewayMoveReq { x, y, z, yaw }.
type MoveReq struct {
	X, Y, Z float32
	Yaw     float32
}

func (m *MoveReq) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteF(m.X)
	w.WriteF(m.Y)
	w.WriteF(m.Z)
	w.WriteF(m.Yaw)
	return w.Bytes()
}

func (m *MoveReq) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.X = r.ReadF()
	m.Y = r.ReadF()
	m.Z = r.ReadF()
	m.Yaw = r.ReadF()
	return r.Err()
}

// MoveRes is GatewayClientMoveRes { account_id, x, y, z, yaw }.
type MoveRes struct {
	AccountID string
	X, Y, Z   float32
	Yaw       float32
}

func (m *MoveRes) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteS(m.AccountID)
	w.WriteF(m.X)
	w.WriteF(m.Y)
	w.WriteF(m.Z)
	w.WriteF(m.Yaw)
	return w.Bytes()
}

func (m *MoveRes) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.AccountID = r.ReadS()
	m.X = r.ReadF()
	m.Y = r.ReadF()
	m.Z = r.ReadF()
	m.Yaw = r.ReadF()
	return r.Err()
}

// AttackReq is ClientGatewayAttackReq { target_uid }.
type AttackReq struct {
	TargetUID uint64
}

func (m *AttackReq) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteQ(m.TargetUID)
	return w.Bytes()
}

func (m *AttackReq) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.TargetUID = r.ReadQ()
	return r.Err()
}

// AttackRes is GatewayClientAttackRes
// { attacker_uid, target_account_id, damage, target_remain_hp }.
type AttackRes struct {
	AttackerUID     uint64
	TargetAccountID string
	Damage          int32
	TargetRemainHP  int32
}

func (m *AttackRes) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteQ(m.AttackerUID)
	w.WriteS(m.TargetAccountID)
	w.WriteD(m.Damage)
	w.WriteD(m.TargetRemainHP)
	return w.Bytes()
}

func (m *AttackRes) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.AttackerUID = r.ReadQ()
	m.TargetAccountID = r.ReadS()
	m.Damage = r.ReadD()
	m.TargetRemainHP = r.ReadD()
	return r.Err()
}

// ── Gateway ↔ Game (S2S) ──────────────────────────────────────────

// GatewayGameMoveReq is { account_id, x, y, z, yaw }.
type GatewayGameMoveReq struct {
	AccountID string
	X, Y, Z   float32
	Yaw       float32
}

func (m *GatewayGameMoveReq) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteS(m.AccountID)
	w.WriteF(m.X)
	w.WriteF(m.Y)
	w.WriteF(m.Z)
	w.WriteF(m.Yaw)
	return w.Bytes()
}

func (m *GatewayGameMoveReq) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.AccountID = r.ReadS()
	m.X = r.ReadF()
	m.Y = r.ReadF()
	m.Z = r.ReadF()
	m.Yaw = r.ReadF()
	return r.Err()
}

// GatewayGameLeaveReq is { account_id }.
type GatewayGameLeaveReq struct {
	AccountID string
}

func (m *GatewayGameLeaveReq) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteS(m.AccountID)
	return w.Bytes()
}

func (m *GatewayGameLeaveReq) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.AccountID = r.ReadS()
	return r.Err()
}

// GatewayGameAttackReq is { account_id, target_uid }.
type GatewayGameAttackReq struct {
	AccountID string
	TargetUID uint64
}

func (m *GatewayGameAttackReq) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteS(m.AccountID)
	w.WriteQ(m.TargetUID)
	return w.Bytes()
}

func (m *GatewayGameAttackReq) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.AccountID = r.ReadS()
	m.TargetUID = r.ReadQ()
	return r.Err()
}

// GameGatewayMoveRes is { account_id, x, y, z, yaw, target_account_ids[] }.
// TargetAccountIDs is the authoritative recipient list: Gateway fans the
// event out to exactly those sessions and does no AOI math of its own.
type GameGatewayMoveRes struct {
	AccountID        string
	X, Y, Z          float32
	Yaw              float32
	TargetAccountIDs []string
}

func (m *GameGatewayMoveRes) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteS(m.AccountID)
	w.WriteF(m.X)
	w.WriteF(m.Y)
	w.WriteF(m.Z)
	w.WriteF(m.Yaw)
	w.WriteStrings(m.TargetAccountIDs)
	return w.Bytes()
}

func (m *GameGatewayMoveRes) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.AccountID = r.ReadS()
	m.X = r.ReadF()
	m.Y = r.ReadF()
	m.Z = r.ReadF()
	m.Yaw = r.ReadF()
	m.TargetAccountIDs = r.ReadStrings()
	return r.Err()
}

// GameGatewayAttackRes is { attacker_uid, target_uid, target_account_id,
// damage, target_remain_hp, target_account_ids[] }.
type GameGatewayAttackRes struct {
	AttackerUID      uint64
	TargetUID        uint64
	TargetAccountID  string
	Damage           int32
	TargetRemainHP   int32
	TargetAccountIDs []string
}

func (m *GameGatewayAttackRes) MarshalPacket() []byte {
	w := wire.NewWriter()
	w.WriteQ(m.AttackerUID)
	w.WriteQ(m.TargetUID)
	w.WriteS(m.TargetAccountID)
	w.WriteD(m.Damage)
	w.WriteD(m.TargetRemainHP)
	w.WriteStrings(m.TargetAccountIDs)
	return w.Bytes()
}

func (m *GameGatewayAttackRes) UnmarshalPacket(data []byte) error {
	r := wire.NewReader(data)
	m.AttackerUID = r.ReadQ()
	m.TargetUID = r.ReadQ()
	m.TargetAccountID = r.ReadS()
	m.Damage = r.ReadD()
	m.TargetRemainHP = r.ReadD()
	m.TargetAccountIDs = r.ReadStrings()
	return r.Err()
}
