package auction

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/xerrors"

	bCtx "github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain/auction"
)

// ErrMalformedMessage marks a frame that arrived intact but failed to parse.
// The connection itself is still healthy, callers should drop the message and
// keep reading.
var ErrMalformedMessage = errors.New("malformed feed message")

// Transport is one live connection to the auction feed. ReadMessage blocks
// until a message arrives or the connection dies.
type Transport interface {
	ReadMessage() (*auction.Message, error)
	WriteMessage(msg *auction.Message) error
	Close() error
}

// Dialer opens transports. Sessions hold a Dialer rather than a Transport so
// they can redial after a drop.
type Dialer interface {
	Dial(c bCtx.Ctx, url string) (Transport, error)
}

type wsDialer struct{}

// NewDialer returns a websocket-backed Dialer
func NewDialer() Dialer {
	return &wsDialer{}
}

func (d *wsDialer) Dial(c bCtx.Ctx, url string) (Transport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(c, url, nil)
	if err != nil {
		return nil, xerrors.Errorf("failed to dial %s: %w", url, err)
	}
	return &wsTransport{conn: conn}, nil
}

type wsTransport struct {
	conn *websocket.Conn

	// gorilla allows one concurrent writer only
	writeMu sync.Mutex
}

func (t *wsTransport) ReadMessage() (*auction.Message, error) {
	_, raw, err := t.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	msg := &auction.Message{}
	if err := json.Unmarshal(raw, msg); err != nil {
		return nil, xerrors.Errorf("%s: %w", err.Error(), ErrMalformedMessage)
	}
	return msg, nil
}

func (t *wsTransport) WriteMessage(msg *auction.Message) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteJSON(msg)
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}
