// Package ws owns the websocket connections to the game server: dialing,
// the read loop, and fire-and-forget sends.
package ws

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/cannonfall/client/internal/protocol"
)

const writeTimeout = 3 * time.Second

// Client is one live connection. Reads are delivered strictly in arrival
// order through the deliver callback; writes are fire-and-forget.
type Client struct {
	conn   *websocket.Conn
	log    *zap.SugaredLogger
	ctx    context.Context
	cancel context.CancelFunc
}

// Dial opens a connection to base+path, carrying the session identity as
// query parameters the way the server expects.
func Dial(ctx context.Context, log *zap.SugaredLogger, base, path, wallet, username string) (*Client, error) {
	q := url.Values{}
	q.Set("wallet", wallet)
	q.Set("username", username)
	addr := fmt.Sprintf("%s%s?%s", base, path, q.Encode())

	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	cctx, cancel := context.WithCancel(ctx)
	return &Client{conn: conn, log: log, ctx: cctx, cancel: cancel}, nil
}

// Send encodes and writes one outbound command. No acknowledgement is awaited;
// the next relevant server update is the only confirmation.
func (c *Client) Send(cmd protocol.Outbound) error {
	payload, err := protocol.EncodeOutbound(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

// ReadLoop reads frames until the connection drops, decoding each and handing
// it to deliver. Undecodable or unrecognized frames are dropped with no other
// effect; the connection stays open. onClose fires exactly once at the end.
func (c *Client) ReadLoop(deliver func(protocol.Inbound), onClose func(error)) {
	defer c.cancel()
	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				onClose(nil)
			default:
				onClose(err)
			}
			return
		}

		msg, err := protocol.DecodeInbound(data)
		if err != nil {
			c.log.Debugw("dropping frame", "err", err)
			continue
		}
		deliver(msg)
	}
}

// Close tears the connection down. The read loop unblocks and reports close.
func (c *Client) Close() {
	c.cancel()
	_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
}
