// botclient drives synthetic players through the full cluster path: login,
// world selection, gateway connect, then a movement and chat loop. Used for
// smoke-testing a running cluster and for rough load figures.
//
// Usage:
//
//	go run ./cmd/botclient -login 127.0.0.1:7777 -bots 10 -duration 30s
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"time"

	gonet "github.com/gridgate/server/internal/net"
	"github.com/gridgate/server/internal/protocol"
	"golang.org/x/sync/errgroup"
)

var (
	loginAddr = flag.String("login", "127.0.0.1:7777", "login server address")
	bots      = flag.Int("bots", 1, "number of concurrent bots")
	prefix    = flag.String("prefix", "bot", "account name prefix")
	password  = flag.String("password", "botpass", "account password")
	worldID   = flag.Int("world", 1, "world to select")
	duration  = flag.Duration("duration", 30*time.Second, "how long each bot plays")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *duration+30*time.Second)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < *bots; i++ {
		account := fmt.Sprintf("%s%03d", *prefix, i)
		g.Go(func() error {
			return runBot(ctx, account)
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d bots finished\n", *bots)
}

func runBot(ctx context.Context, account string) error {
	gatewayAddr, token, err := authenticate(account)
	if err != nil {
		return fmt.Errorf("%s: %w", account, err)
	}
	return play(ctx, account, gatewayAddr, token)
}

// authenticate performs login and world selection and returns the gateway
// endpoint plus the session token it expects.
func authenticate(account string) (string, string, error) {
	conn, err := net.DialTimeout("tcp", *loginAddr, 5*time.Second)
	if err != nil {
		return "", "", fmt.Errorf("dial login: %w", err)
	}
	defer conn.Close()

	login := &protocol.LoginReq{ID: account, Password: *password}
	if err := gonet.WriteFrame(conn, protocol.PktClientLoginLoginReq, login.MarshalPacket()); err != nil {
		return "", "", err
	}
	var loginRes protocol.LoginRes
	if err := expect(conn, protocol.PktLoginClientLoginRes, &loginRes); err != nil {
		return "", "", err
	}
	if !loginRes.Success {
		return "", "", fmt.Errorf("login rejected")
	}

	sel := &protocol.WorldSelectReq{WorldID: int32(*worldID)}
	if err := gonet.WriteFrame(conn, protocol.PktClientLoginWorldSelectReq, sel.MarshalPacket()); err != nil {
		return "", "", err
	}
	var selRes protocol.WorldSelectRes
	if err := expect(conn, protocol.PktLoginClientWorldSelectRes, &selRes); err != nil {
		return "", "", err
	}
	if !selRes.Success {
		return "", "", fmt.Errorf("world %d not available", *worldID)
	}

	addr := fmt.Sprintf("%s:%d", selRes.GatewayIP, selRes.GatewayPort)
	return addr, selRes.SessionToken, nil
}

// play connects to the gateway and wanders until the deadline.
func play(ctx context.Context, account, gatewayAddr, token string) error {
	conn, err := net.DialTimeout("tcp", gatewayAddr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("%s: dial gateway: %w", account, err)
	}
	defer conn.Close()

	connect := &protocol.ConnectReq{AccountID: account, SessionToken: token}
	if err := gonet.WriteFrame(conn, protocol.PktClientGatewayConnectReq, connect.MarshalPacket()); err != nil {
		return err
	}
	var connectRes protocol.ConnectRes
	if err := expect(conn, protocol.PktGatewayClientConnectRes, &connectRes); err != nil {
		return err
	}
	if !connectRes.Success {
		return fmt.Errorf("%s: gateway rejected connect", account)
	}

	// Broadcasts from the simulation arrive interleaved with nothing the
	// bot cares about; a reader goroutine just keeps the socket drained.
	go func() {
		for {
			if _, err := gonet.ReadFrame(conn); err != nil {
				return
			}
		}
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	x := rng.Float32() * 200
	z := rng.Float32() * 200

	deadline := time.After(*duration)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return nil
		case <-ticker.C:
			x += rng.Float32()*2 - 1
			z += rng.Float32()*2 - 1
			move := &protocol.MoveReq{X: x, Z: z, Yaw: rng.Float32() * 360}
			if err := gonet.WriteFrame(conn, protocol.PktClientGatewayMoveReq, move.MarshalPacket()); err != nil {
				return fmt.Errorf("%s: send move: %w", account, err)
			}
			if rng.Intn(20) == 0 {
				chat := &protocol.ChatReq{Msg: "hello from " + account}
				if err := gonet.WriteFrame(conn, protocol.PktClientGatewayChatReq, chat.MarshalPacket()); err != nil {
					return fmt.Errorf("%s: send chat: %w", account, err)
				}
			}
		}
	}
}

type unmarshaler interface {
	UnmarshalPacket(data []byte) error
}

// expect reads the next frame and requires it to carry the given id.
func expect(conn net.Conn, id uint16, msg unmarshaler) error {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	frame, err := gonet.ReadFrame(conn)
	if err != nil {
		return err
	}
	conn.SetReadDeadline(time.Time{})
	if frame.ID != id {
		return fmt.Errorf("expected packet %d, got %d", id, frame.ID)
	}
	return msg.UnmarshalPacket(frame.Payload)
}
