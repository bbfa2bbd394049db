// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rcwire/jetiscope/pkg/capture"
	"github.com/rcwire/jetiscope/pkg/exbus"
)

var (
	serveListen string
	serveReplay string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream decoded frames to WebSocket clients",
	Long: `Decode live EX Bus traffic and stream every frame annotation as a JSON
event to connected WebSocket clients.

Clients connect to ws://<listen-address>/stream. Each event carries the
frame's wire time range, classification, formatted labels and the decoded
packet payload, so dashboards and loggers can consume the bus without
touching the serial port themselves.

With --replay, events come from a capture file instead of a serial port
and are paced by the capture's own timestamps, looping forever.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", ":8080", "HTTP listen address")
	serveCmd.Flags().StringVar(&serveReplay, "replay", "", "Stream a capture file instead of a serial port")
}

// streamEvent is the JSON wire form of one decoded frame annotation.
type streamEvent struct {
	StartUS int64        `json:"start_us"`
	EndUS   int64        `json:"end_us"`
	Class   string       `json:"class"`
	Label   string       `json:"label"`
	Detail  string       `json:"detail"`
	Reason  string       `json:"reason,omitempty"`
	Packet  exbus.Packet `json:"packet,omitempty"`
}

func newStreamEvent(r exbus.Result) streamEvent {
	return streamEvent{
		StartUS: r.Start.Microseconds(),
		EndUS:   r.End.Microseconds(),
		Class:   r.Class.String(),
		Label:   r.Short,
		Detail:  r.Long,
		Reason:  string(r.Reason),
		Packet:  r.Packet,
	}
}

// streamHub fans decoded events out to all connected clients.
type streamHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newStreamHub() *streamHub {
	return &streamHub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *streamHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *streamHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *streamHub) broadcast(ev streamEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("marshal event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Debug().Err(err).Str("client", conn.RemoteAddr().String()).Msg("dropping client")
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	hub := newStreamHub()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(_ *http.Request) bool {
			return true
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("websocket upgrade failed")
			return
		}
		log.Info().Str("client", ws.RemoteAddr().String()).Msg("client connected")
		hub.add(ws)

		// Drain client messages to process control frames and detect
		// disconnects.
		go func() {
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					hub.remove(ws)
					return
				}
			}
		}()
	})

	var connInfo string
	if serveReplay != "" {
		connInfo = fmt.Sprintf("Replay: %s", serveReplay)
		go replayLoop(serveReplay, hub)
	} else {
		conn, info, err := OpenConnection()
		if err != nil {
			return err
		}
		defer conn.Close()
		connInfo = info

		go func() {
			decoder := exbus.NewDecoder()
			samp := newSampler(baudRate)
			buf := make([]byte, 128)
			for {
				n, err := conn.Read(buf)
				if err != nil {
					log.Error().Err(err).Msg("read error")
					continue
				}

				for _, s := range samp.stamp(buf[:n]) {
					for _, r := range decoder.Feed(s) {
						hub.broadcast(newStreamEvent(r))
					}
				}
			}
		}()
	}

	log.Info().Str("connection", connInfo).Str("listen", serveListen).
		Msg("streaming on /stream")
	return http.ListenAndServe(serveListen, mux)
}

// replayLoop streams a capture file through the decoder over and over,
// sleeping between samples to match the capture's own pacing.
func replayLoop(path string, hub *streamHub) {
	for {
		f, err := os.Open(path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("open capture")
			return
		}

		r, err := capture.NewReader(f)
		if err != nil {
			f.Close()
			log.Error().Err(err).Str("file", path).Msg("read capture header")
			return
		}

		decoder := exbus.NewDecoder()
		var last time.Duration
		for {
			s, err := r.ReadSample()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					log.Error().Err(err).Msg("read sample")
				}
				break
			}

			if gap := s.End - last; gap > 0 && gap < time.Second {
				time.Sleep(gap)
			}
			last = s.End

			for _, res := range decoder.Feed(s) {
				hub.broadcast(newStreamEvent(res))
			}
		}
		f.Close()
	}
}
