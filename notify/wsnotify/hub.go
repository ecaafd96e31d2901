// Package wsnotify fans workbook change notifications out to connected
// websocket clients, grounded on broyeztony-karl/spreadsheet's Server:
// a client-set guarded by a mutex, broadcasting one JSON message per
// changed cell and evicting any client whose write fails.
package wsnotify

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"gridcalc/value"
	"gridcalc/workbook"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// CellUpdate is the wire shape pushed to subscribers for one changed cell.
type CellUpdate struct {
	Type    string `json:"type"`
	Sheet   string `json:"sheet"`
	Addr    string `json:"addr"`
	Display string `json:"display"`
	Error   string `json:"error,omitempty"`
}

// Hub tracks connected clients and broadcasts ChangedCell batches. The
// zero value is not usable; construct with NewHub.
type Hub struct {
	w       *workbook.Workbook
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub wires itself as w's notification callback, so every committed
// recomputation broadcasts to whichever clients are currently connected.
func NewHub(w *workbook.Workbook) *Hub {
	h := &Hub{w: w, clients: make(map[*websocket.Conn]bool)}
	w.RegisterCallback(h.onChanged)
	return h
}

// HandleWebSocket upgrades the request, registers the connection, and
// reads from it until it closes. No initial state is sent: a client
// receives only the updates broadcast after it connects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("wsnotify: upgrade error:", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) onChanged(w *workbook.Workbook, changed []workbook.ChangedCell) {
	if len(changed) == 0 {
		return
	}
	for _, c := range changed {
		v, err := w.GetCellValue(c.Sheet, c.Addr)
		if err != nil {
			continue
		}
		h.broadcast(cellUpdateFor(c, v))
	}
}

func cellUpdateFor(c workbook.ChangedCell, v value.Value) CellUpdate {
	update := CellUpdate{Type: "cell_updated", Sheet: c.Sheet, Addr: c.Addr}
	if ev, ok := v.(value.ErrorValue); ok {
		update.Error = ev.Kind_.Spelling()
		return update
	}
	update.Display = displayString(v)
	return update
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

func (h *Hub) broadcast(update CellUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if err := client.WriteJSON(update); err != nil {
			log.Printf("wsnotify: broadcast write failed: %v", err)
			_ = client.Close()
			delete(h.clients, client)
		}
	}
}
