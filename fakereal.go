// Fake vs Real
//
// Each round shows two images side by side. One is authentic, one is
// synthetic; the player picks the real one before the session clock runs out.
//
// Features:
// - One hub goroutine owns the game and runs a fixed-rate frame loop:
//   queued intents, then time-based updates, then a state push to clients
// - Browsers connect on /ws; any connected screen can play, all of them see
//   the same state (kiosk plus spectators)
// - Round images are served by side on /round/:serial/:side so the page
//   never learns which file is real
// - Unreadable images are replaced by a placeholder, never surfaced as errors
// - Per-mode top 10 leaderboards, readable on /leaderboard/:mode
// - QR code on /qr for opening the game on another device, backed by go-qrcode

package main

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Messages coming from clients
type ClientMessage struct {
	Type string `json:"type"`           // "left", "right", "skip", "confirm", "backspace", "char", "quit"
	Char string `json:"char,omitempty"` // char
}

// StateMessage carries the full render snapshot. It is only sent when the
// snapshot changed since the last frame.
type StateMessage struct {
	Type string `json:"type"` // "state"
	View
}

// EventMessage drives one-shot effects (sounds, flashes) on the client.
type EventMessage struct {
	Type  string    `json:"type"` // "event"
	Event EventKind `json:"event"`
	State string    `json:"state"`
	Label string    `json:"label,omitempty"`
}

type Client struct {
	conn *websocket.Conn
	send chan any
}

type roundRequest struct {
	reply chan Round
}

type Hub struct {
	cfg     *Config
	dataset *Dataset
	store   *LeaderboardStore
	machine *Machine

	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	intents  chan Intent
	rounds   chan roundRequest
	done     chan struct{}

	lastView []byte
}

func newHub(cfg *Config, ds *Dataset, store *LeaderboardStore, rng *rand.Rand) *Hub {
	h := &Hub{
		cfg:      cfg,
		dataset:  ds,
		store:    store,
		clients:  make(map[*Client]bool),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		intents:  make(chan Intent, 64),
		rounds:   make(chan roundRequest),
		done:     make(chan struct{}),
	}
	h.machine = newMachine(cfg, ds, store, rng, h, time.Now())

	return h
}

// Done is closed once the frame loop has stopped.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.cfg.frameInterval())
	defer ticker.Stop()

	pending := make([]Intent, 0, 8)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.clients[c] = true
			h.sendTo(c, h.stateMessage(time.Now()))

		case c := <-h.unreg:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case in := <-h.intents:
			pending = append(pending, in)

		case req := <-h.rounds:
			req.reply <- h.machine.Round()

		case now := <-ticker.C:
			h.frame(pending, now)
			pending = pending[:0]

			if h.machine.Quit() {
				logf(h.cfg, "GAMES: Player quit, stopping frame loop")
				h.closeAll()
				return
			}
		}
	}
}

// frame is one tick: input, update, render.
func (h *Hub) frame(pending []Intent, now time.Time) {
	for _, in := range pending {
		h.machine.HandleIntent(in, now)
		if h.machine.Quit() {
			return
		}
	}

	h.machine.Update(now)

	msg := h.stateMessage(now)
	data, err := json.Marshal(msg)
	if err != nil {
		errorf("GAMES: Encoding state: %v", err)
		return
	}
	if string(data) == string(h.lastView) {
		return
	}
	h.lastView = data

	h.broadcast(msg)
}

func (h *Hub) stateMessage(now time.Time) StateMessage {
	return StateMessage{
		Type: "state",
		View: h.machine.Snapshot(now),
	}
}

// Notify forwards machine events to every client. It runs on the hub
// goroutine, inside machine calls made by run.
func (h *Hub) Notify(ev Event) {
	h.broadcast(EventMessage{
		Type:  "event",
		Event: ev.Kind,
		State: ev.State.String(),
		Label: ev.Label,
	})
}

func (h *Hub) sendTo(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcast(msg any) {
	for client := range h.clients {
		h.sendTo(client, msg)
	}
}

// closeAll disconnects every client. Only called from run.
func (h *Hub) closeAll() {
	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

// currentRound asks the hub goroutine for the round on screen.
func (h *Hub) currentRound(ctx context.Context) (Round, bool) {
	req := roundRequest{reply: make(chan Round, 1)}

	select {
	case h.rounds <- req:
	case <-h.done:
		return Round{}, false
	case <-ctx.Done():
		return Round{}, false
	}

	select {
	case r := <-req.reply:
		return r, true
	case <-ctx.Done():
		return Round{}, false
	}
}

// submit queues intents for the next frame. It gives up once the hub stops.
func (h *Hub) submit(intents ...Intent) bool {
	for _, in := range intents {
		select {
		case h.intents <- in:
		case <-h.done:
			return false
		}
	}
	return true
}

func parseIntents(msg ClientMessage) []Intent {
	switch msg.Type {
	case "left":
		return []Intent{{Kind: IntentSelectLeft}}
	case "right":
		return []Intent{{Kind: IntentSelectRight}}
	case "skip":
		return []Intent{{Kind: IntentSkip}}
	case "confirm":
		return []Intent{{Kind: IntentConfirm}}
	case "backspace":
		return []Intent{{Kind: IntentBackspace}}
	case "quit":
		return []Intent{{Kind: IntentQuit}}
	case "char":
		out := make([]Intent, 0, len(msg.Char))
		for _, r := range msg.Char {
			out = append(out, Intent{Kind: IntentAppendChar, Char: r})
		}
		return out
	default:
		return nil
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func serveWS(cfg *Config, h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errorf("SERVE: Websocket upgrade from %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 32),
		}

		select {
		case h.register <- client:
		case <-h.done:
			_ = conn.Close()
			return
		}

		logf(cfg, "SERVE: Screen connected from %s", realIP(r))

		go client.writePump()
		client.readPump(h)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		if !h.submit(parseIntents(msg)...) {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// serveRound streams the current left or right image. A failed load is
// answered with the placeholder so the page always has something to show.
func serveRound(cfg *Config, h *Hub, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		side := p.ByName("side")
		if side != "left" && side != "right" {
			http.NotFound(w, r)
			return
		}

		round, ok := h.currentRound(r.Context())
		if !ok {
			http.Error(w, "game is not running", http.StatusServiceUnavailable)
			return
		}

		var img Image
		if round.Serial == 0 {
			img = Image{Err: errNotImage}
		} else if side == "left" {
			img = h.dataset.Load(round.Left.Path)
		} else {
			img = h.dataset.Load(round.Right.Path)
		}

		if !img.Loaded() {
			if round.Serial != 0 {
				errorf("ASSET: Round %d %s image %s: %v", round.Serial, side, img.Path, img.Err)
			}
			data, _ := assets.ReadFile(placeholderAsset)
			img = Image{Data: data, ContentType: "image/svg+xml"}
		}

		w.Header().Set("Cache-Control", "no-store")
		writeBody(cfg, w, img.ContentType, http.StatusOK, img.Data, errs)

		logf(cfg, "SERVE: Round %d %s image (%s) to %s in %s",
			round.Serial,
			side,
			humanize.Bytes(uint64(len(img.Data))),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveLeaderboard(cfg *Config, store *LeaderboardStore, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		mode, ok := parseMode(p.ByName("mode"))
		if !ok {
			http.NotFound(w, r)
			return
		}

		data, err := json.Marshal(store.Load(mode))
		if err != nil {
			errs <- err
			http.Error(w, "encoding leaderboard failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Cache-Control", "no-store")
		writeBody(cfg, w, "application/json; charset=utf-8", http.StatusOK, data, errs)
	}
}

// qrHandler renders a PNG QR code pointing at the game page.
func qrHandler(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + cfg.prefix + "/"

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		writeBody(cfg, w, "image/png", http.StatusOK, png, errs)
	}
}

// registerGame sets up routes so that:
//   - $prefix/                     → game page
//   - $prefix/ws                   → websocket for input and state
//   - $prefix/round/:serial/:side  → current round image
//   - $prefix/leaderboard/:mode    → ranked list as JSON
//   - $prefix/qr                   → PNG QR code for the game URL
func registerGame(cfg *Config, h *Hub, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+"/", serveHomePage(cfg, errs))

	mux.GET(cfg.prefix+"/assets/fakereal/*asset", serveAssets(cfg, errs))

	mux.GET(cfg.prefix+"/ws", serveWS(cfg, h))

	mux.GET(cfg.prefix+"/round/:serial/:side", serveRound(cfg, h, errs))

	mux.GET(cfg.prefix+"/leaderboard/:mode", serveLeaderboard(cfg, h.store, errs))

	mux.GET(cfg.prefix+"/qr", qrHandler(cfg, errs))
}
