package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the subset of a websocket connection the ingestor needs. Reads
// block until a frame, a close, or an error arrives.
type Conn interface {
	ReadMessage() (messageType int, payload []byte, err error)
	Close() error
}

// Dialer opens a feed connection.
type Dialer interface {
	DialContext(ctx context.Context, url string) (Conn, error)
}

// WebsocketDialer dials the external gift-event feed.
type WebsocketDialer struct {
	HandshakeTimeout time.Duration
}

var _ Dialer = WebsocketDialer{}

func (d WebsocketDialer) DialContext(ctx context.Context, url string) (Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.HandshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil {
		resp.Body.Close()
	}

	if err != nil {
		return nil, fmt.Errorf("dialer.DialContext: %w", err)
	}

	return conn, nil
}

// IsCloseError reports whether err is a websocket close (peer went away) as
// opposed to a transport failure. The two drive different ingestor states.
func IsCloseError(err error) bool {
	var closeErr *websocket.CloseError

	return errors.As(err, &closeErr)
}
