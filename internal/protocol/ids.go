// Package protocol defines packet ids and message schemas shared by all four
// processes. Ids are globally unique across the repo so a packet routed to
// the wrong dispatcher is detectable. Client-facing ids live below 1000,
// server-to-server ids at 1000 and above.
package protocol

// MaxPacketID bounds the dispatch tables. The id space is sized to the
// reserved range rather than the full uint16 range; MaxPacketID itself is a
// sentinel and is rejected at registration.
const MaxPacketID uint16 = 1100

// Client-facing packet ids.
const (
	PktClientLoginLoginReq       uint16 = 1  // client → Login
	PktLoginClientLoginRes       uint16 = 2  // Login → client
	PktClientServerHeartbeat     uint16 = 3  // client → any
	PktClientLoginWorldSelectReq uint16 = 10 // client → Login
	PktLoginClientWorldSelectRes uint16 = 11 // Login → client
	PktClientGatewayConnectReq   uint16 = 20 // client → Gateway
	PktGatewayClientConnectRes   uint16 = 21 // Gateway → client
	PktClientGatewayChatReq      uint16 = 22 // client → Gateway
	PktGatewayClientChatRes      uint16 = 23 // Gateway → client
	PktClientGatewayMoveReq      uint16 = 24 // client → Gateway
	PktGatewayClientMoveRes      uint16 = 25 // Gateway → client
	PktClientGatewayAttackReq    uint16 = 26 // client → Gateway
	PktGatewayClientAttackRes    uint16 = 27 // Gateway → client
)

// Server-to-server packet ids.
const (
	PktLoginWorldSelectReq  uint16 = 1010 // Login → World
	PktWorldLoginSelectRes  uint16 = 1011 // World → Login
	PktGatewayGameMoveReq   uint16 = 1020 // Gateway → Game
	PktGatewayGameLeaveReq  uint16 = 1021 // Gateway → Game
	PktGatewayGameAttackReq uint16 = 1022 // Gateway → Game
	PktGameGatewayMoveRes   uint16 = 1025 // Game → Gateway
	PktGameGatewayAttackRes uint16 = 1026 // Game → Gateway
)
