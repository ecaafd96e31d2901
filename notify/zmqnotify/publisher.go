// Package zmqnotify republishes workbook change notifications on a ZeroMQ
// PUB socket, grounded on broyeztony-karl/kernel's iopub broadcast: an
// HMAC-signed multipart frame (topic, signature, payload) so subscribers
// can verify the publisher's identity the way the kernel's clients do.
package zmqnotify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/go-zeromq/zmq4"

	"gridcalc/value"
	"gridcalc/workbook"
)

// topic is the single PUB topic this publisher emits under; subscribers
// filter on it the way a Jupyter client filters iopub by msg_type.
const topic = "cell_changed"

// CellChangedEvent is the JSON payload frame for one changed cell.
type CellChangedEvent struct {
	Sheet   string `json:"sheet"`
	Addr    string `json:"addr"`
	Display string `json:"display,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Publisher owns a PUB socket and a signing key, grounded on the
// kernel's Kernel.iopub + Kernel.config.Key pairing.
type Publisher struct {
	sock zmq4.Socket
	key  []byte
}

// Dial binds a PUB socket at addr (e.g. "tcp://127.0.0.1:5560") and wires
// itself as w's notification callback. key may be empty to disable
// signing.
func Dial(ctx context.Context, addr string, key []byte, w *workbook.Workbook) (*Publisher, error) {
	sock := zmq4.NewPub(ctx)
	if err := sock.Listen(addr); err != nil {
		return nil, fmt.Errorf("zmqnotify: listen %s: %w", addr, err)
	}
	p := &Publisher{sock: sock, key: key}
	w.RegisterCallback(p.onChanged)
	return p, nil
}

// Close releases the underlying socket.
func (p *Publisher) Close() error {
	return p.sock.Close()
}

func (p *Publisher) onChanged(w *workbook.Workbook, changed []workbook.ChangedCell) {
	for _, c := range changed {
		event := CellChangedEvent{Sheet: c.Sheet, Addr: c.Addr}
		v, err := w.GetCellValue(c.Sheet, c.Addr)
		if err != nil {
			continue
		}
		if ev, ok := v.(value.ErrorValue); ok {
			event.Error = ev.Kind_.Spelling()
		} else {
			event.Display = displayString(v)
		}
		if err := p.publish(event); err != nil {
			continue
		}
	}
}

func (p *Publisher) publish(event CellChangedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	signature := p.sign(payload)

	frames := [][]byte{
		[]byte(topic),
		[]byte(signature),
		payload,
	}
	return p.sock.Send(zmq4.NewMsgFrom(frames...))
}

func (p *Publisher) sign(payload []byte) string {
	if len(p.key) == 0 {
		return ""
	}
	mac := hmac.New(sha256.New, p.key)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func displayString(v value.Value) string {
	switch tv := v.(type) {
	case value.EmptyValue:
		return ""
	case value.NumberValue:
		return tv.CanonicalString()
	case value.StringValue:
		return tv.Value
	case value.BoolValue:
		if tv.Value {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}
