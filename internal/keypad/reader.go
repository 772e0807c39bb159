package keypad

import (
	"bufio"
	"context"
	"errors"
	"io"

	"control_panel/internal/panel"
)

// Action is what a single input byte asks for.
type Action int

const (
	ActionKey Action = iota
	ActionSubmit
	ActionUnlock
)

// Input is one decoded keypad event.
type Input struct {
	Action Action
	Key    panel.Key // set for ActionKey
}

// Wire bytes beyond the panel keys themselves.
const (
	byteSubmit   = '#'
	byteUnlock   = 'U'
	byteAltPanic = 'P'
)

// Reader decodes a keypad byte stream: '0'-'9', '*' cancel, '!' or 'P' panic
// and '#' submit. 'U' (unlock) is decoded only with WithUnlock. Anything else
// is skipped.
type Reader struct {
	br          *bufio.Reader
	allowUnlock bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithUnlock enables the 'U' lockout release key. Only service consoles get
// it; a panel's own keypad must not be able to clear its lockout.
func WithUnlock() Option {
	return func(r *Reader) { r.allowUnlock = true }
}

func NewReader(r io.Reader, opts ...Option) *Reader {
	rd := &Reader{br: bufio.NewReader(r)}
	for _, opt := range opts {
		opt(rd)
	}
	return rd
}

// Next returns the next input or the underlying read error (io.EOF at end).
func (r *Reader) Next() (Input, error) {
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			return Input{}, err
		}
		switch k := panel.Key(b); {
		case k.IsDigit(), k == panel.KeyCancel, k == panel.KeyPanic:
			return Input{Action: ActionKey, Key: k}, nil
		case b == byteAltPanic:
			return Input{Action: ActionKey, Key: panel.KeyPanic}, nil
		case b == byteSubmit:
			return Input{Action: ActionSubmit}, nil
		case b == byteUnlock && r.allowUnlock:
			return Input{Action: ActionUnlock}, nil
		}
	}
}

// Target receives decoded input. *panel.Controller satisfies it.
type Target interface {
	Press(ctx context.Context, key panel.Key)
	Submit(ctx context.Context)
	Unlock() bool
}

// Pump feeds every input from r into t until the stream ends or ctx is done.
// A clean end of stream returns nil.
func Pump(ctx context.Context, r *Reader, t Target) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		in, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch in.Action {
		case ActionKey:
			t.Press(ctx, in.Key)
		case ActionSubmit:
			t.Submit(ctx)
		case ActionUnlock:
			t.Unlock()
		}
	}
}
