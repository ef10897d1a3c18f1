package game

import "github.com/gridgate/server/internal/protocol"

// Broadcast helpers. Recipients are grouped by gateway connection so each
// gateway receives one frame carrying its own slice of target accounts.

func groupByOut(recipients []*Player) map[sender][]string {
	groups := make(map[sender][]string)
	for _, p := range recipients {
		groups[p.Out] = append(groups[p.Out], p.AccountID)
	}
	return groups
}

// broadcastMove tells the recipients that an entity is now at a position.
// Monsters move under their synthetic account id.
func broadcastMove(accountID string, x, y, z, yaw float32, recipients []*Player) {
	for out, accounts := range groupByOut(recipients) {
		msg := &protocol.GameGatewayMoveRes{
			AccountID:        accountID,
			X:                x,
			Y:                y,
			Z:                z,
			Yaw:              yaw,
			TargetAccountIDs: accounts,
		}
		out.Send(protocol.PktGameGatewayMoveRes, msg.MarshalPacket())
	}
}

// broadcastAttack tells the recipients about a landed hit.
func broadcastAttack(attackerUID, targetUID uint64, targetAccountID string, damage, remainHP int32, recipients []*Player) {
	for out, accounts := range groupByOut(recipients) {
		msg := &protocol.GameGatewayAttackRes{
			AttackerUID:      attackerUID,
			TargetUID:        targetUID,
			TargetAccountID:  targetAccountID,
			Damage:           damage,
			TargetRemainHP:   remainHP,
			TargetAccountIDs: accounts,
		}
		out.Send(protocol.PktGameGatewayAttackRes, msg.MarshalPacket())
	}
}
