package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/coder/websocket"
	smtxnet "github.com/peterkuimelis/smtx/internal/net"
	"github.com/peterkuimelis/smtx/internal/roster"
)

//go:embed static
var staticFiles embed.FS

// UnitInfo is the JSON representation of a catalog unit for /api/units.
type UnitInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"` // "Samurai" or "Monster"
	HP   int    `json:"hp"`
	MP   int    `json:"mp"`
	Str  int    `json:"str"`
	Skl  int    `json:"skl"`
	Mag  int    `json:"mag"`
	Spd  int    `json:"spd"`
	Lck  int    `json:"lck"`
}

// SkillInfo is the JSON representation of a skill for /api/skills.
type SkillInfo struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Cost   int    `json:"cost"`
	Power  int    `json:"power"`
	Target string `json:"target"`
	Hits   int    `json:"hits"`
	Effect string `json:"effect,omitempty"`
}

// Server is the smtx web UI server.
type Server struct {
	catalog     *roster.Catalog
	rostersFile string
	slog        *slog.Logger
	mux         *http.ServeMux
}

// NewServer loads the catalogs under dataDir and sets up the routes.
func NewServer(dataDir, rostersFile string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cat, err := roster.LoadCatalog(dataDir)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	s := &Server{
		catalog:     cat,
		rostersFile: rostersFile,
		slog:        logger,
		mux:         http.NewServeMux(),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	staticFS, _ := fs.Sub(staticFiles, "static")

	// Serve index.html at root
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		_, _ = io.Copy(w, f)
	})

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.mux.HandleFunc("GET /api/units", s.handleUnits)
	s.mux.HandleFunc("GET /api/skills", s.handleSkills)
	s.mux.HandleFunc("GET /api/rosters", s.handleRosters)

	// WebSocket proxy
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	units := []UnitInfo{}
	for _, u := range s.catalog.Units() {
		kind := "Monster"
		if u.Samurai {
			kind = "Samurai"
		}
		st := u.Stats
		units = append(units, UnitInfo{
			Name: u.Name, Kind: kind,
			HP: st.MaxHP, MP: st.MaxMP,
			Str: st.Str, Skl: st.Skl, Mag: st.Mag, Spd: st.Spd, Lck: st.Lck,
		})
	}
	writeJSON(w, units)
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	skills := []SkillInfo{}
	for _, sk := range s.catalog.Skills() {
		skills = append(skills, SkillInfo{
			Name: sk.Name, Type: sk.Type, Cost: sk.Cost, Power: sk.Power,
			Target: sk.Target, Hits: sk.Hits, Effect: sk.Effect,
		})
	}
	writeJSON(w, skills)
}

func (s *Server) handleRosters(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.rostersFile)
	if err != nil {
		http.Error(w, "could not read rosters file", http.StatusInternalServerError)
		return
	}
	rosters, err := rosterInfos(data)
	if err != nil {
		http.Error(w, "could not parse rosters file", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rosters)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// connectMessage is the browser's first WebSocket message.
type connectMessage struct {
	Type         string `json:"type"`
	Addr         string `json:"addr"`
	RosterNumber int    `json:"roster_number"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.slog.Warn("WebSocket accept error", "error", err)
		return
	}
	defer wsConn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Read initial connect message from browser
	_, connectData, err := wsConn.Read(ctx)
	if err != nil {
		s.slog.Debug("WebSocket read connect", "error", err)
		return
	}

	var connectMsg connectMessage
	if err := json.Unmarshal(connectData, &connectMsg); err != nil || connectMsg.Type != "connect" {
		wsConn.Close(websocket.StatusPolicyViolation, "expected connect message")
		return
	}

	// Open TCP connection to battle server
	var d net.Dialer
	tcpConn, err := d.DialContext(ctx, "tcp", connectMsg.Addr)
	if err != nil {
		errMsg, _ := json.Marshal(smtxnet.ServerMessage{
			Type:   smtxnet.MsgError,
			Result: fmt.Sprintf("Could not connect to battle server at %s: %v", connectMsg.Addr, err),
		})
		_ = wsConn.Write(ctx, websocket.MessageText, errMsg)
		wsConn.Close(websocket.StatusNormalClosure, "connection failed")
		return
	}
	defer tcpConn.Close()

	join := smtxnet.ClientMessage{Type: smtxnet.MsgJoin, RosterNumber: connectMsg.RosterNumber}
	if err := json.NewEncoder(tcpConn).Encode(join); err != nil {
		s.slog.Warn("TCP write join", "error", err)
		return
	}
	s.slog.Info("Browser joined battle", "addr", connectMsg.Addr, "roster", connectMsg.RosterNumber)

	done := make(chan struct{})

	// TCP → WebSocket (server messages to browser)
	go func() {
		defer close(done)
		dec := json.NewDecoder(tcpConn)
		for {
			var msg json.RawMessage
			if err := dec.Decode(&msg); err != nil {
				if !errors.Is(err, io.EOF) {
					s.slog.Debug("TCP read error", "error", err)
				}
				return
			}
			if err := wsConn.Write(ctx, websocket.MessageText, msg); err != nil {
				s.slog.Debug("WebSocket write error", "error", err)
				return
			}
		}
	}()

	// WebSocket → TCP (browser responses to server)
	go func() {
		for {
			_, data, err := wsConn.Read(ctx)
			if err != nil {
				return
			}
			data = append(data, '\n')
			if _, err := tcpConn.Write(data); err != nil {
				s.slog.Debug("TCP write error", "error", err)
				return
			}
		}
	}()

	<-done
	wsConn.Close(websocket.StatusNormalClosure, "battle ended")
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}
