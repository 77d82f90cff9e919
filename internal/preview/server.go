// Package preview implements a small dev-mode live-reload server: a
// client connects over a websocket, requests a grid render of a .shade
// file's shade(uv) entry point, and can ask for a recompile+rerender
// whenever the source changes underneath it. Adapted from the teacher's
// WebSocket server/connection plumbing (internal/network/websocket*.go),
// generalized from text-message broadcast to shader-frame streaming.
package preview

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"rusteria/internal/bytecode"
	"rusteria/internal/compiler"
	"rusteria/internal/module"
	"rusteria/internal/shadevm"
	"rusteria/internal/vmvalue"
)

// Server serves one shader source file, recompiling it on request and
// streaming rendered frames to connected clients.
type Server struct {
	SourcePath string
	Loader     module.Loader
	GridSize   int

	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

// request is the client->server message shape: {"cmd": "reload"|"frame", "time": 0.0}.
type request struct {
	Cmd  string  `json:"cmd"`
	Time float64 `json:"time"`
}

// frame is the server->client message shape: a flattened grid of colors
// plus any compile error observed along the way.
type frame struct {
	SessionID string      `json:"session_id"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Pixels    [][3]float32 `json:"pixels,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// NewServer builds a preview server over sourcePath, resolving any
// import statements the shader makes through loader.
func NewServer(sourcePath string, loader module.Loader) *Server {
	return &Server{
		SourcePath: sourcePath,
		Loader:     loader,
		GridSize:   32,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]*session),
	}
}

// ListenAndServe starts the HTTP/websocket server on addr. It blocks
// until the server stops or errors.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	server := &http.Server{Addr: addr, Handler: mux}
	return server.ListenAndServe()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sess := &session{id: uuid.New().String(), conn: conn}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess.id)
		s.mu.Unlock()
		conn.Close()
	}()

	log.Printf("preview: session %s connected", sess.id)

	for {
		var req request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		s.handleRequest(sess, req)
	}
}

func (s *Server) handleRequest(sess *session, req request) {
	switch req.Cmd {
	case "reload", "frame":
		s.renderFrame(sess, req.Time)
	default:
		s.send(sess, frame{SessionID: sess.id, Error: fmt.Sprintf("unknown command %q", req.Cmd)})
	}
}

func (s *Server) renderFrame(sess *session, t float64) {
	source, err := os.ReadFile(s.SourcePath)
	if err != nil {
		s.send(sess, frame{SessionID: sess.id, Error: err.Error()})
		return
	}

	program, err := compiler.CompileProgram(string(source), s.SourcePath, s.Loader)
	if err != nil {
		s.send(sess, frame{SessionID: sess.id, Error: err.Error()})
		return
	}
	if program.ShadeIndex == nil {
		s.send(sess, frame{SessionID: sess.id, Error: "source defines no shade(uv) function"})
		return
	}

	in := shadevm.New(program)
	in.Time = vmvalue.Broadcast(float32(t))
	if err := in.Execute(program.Body, program); err != nil {
		s.send(sess, frame{SessionID: sess.id, Error: err.Error()})
		return
	}

	n := s.GridSize
	pixels := make([][3]float32, 0, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			uv := vmvalue.New(float32(x)/float32(n-1), float32(y)/float32(n-1), 0)
			in.UV = uv
			color, err := in.RunFunction(program, *program.ShadeIndex, []vmvalue.Value{uv})
			if err != nil {
				s.send(sess, frame{SessionID: sess.id, Error: err.Error()})
				return
			}
			pixels = append(pixels, [3]float32{color.X, color.Y, color.Z})
		}
	}

	s.send(sess, frame{SessionID: sess.id, Width: n, Height: n, Pixels: pixels})
}

func (s *Server) send(sess *session, f frame) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := sess.conn.WriteJSON(f); err != nil {
		log.Printf("preview: session %s write failed: %v", sess.id, err)
	}
}

// compileOnce is exposed for the CLI's `serve` startup check: fail fast
// with a readable compile error before binding a port.
func compileOnce(sourcePath string, loader module.Loader) (*bytecode.Program, error) {
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, err
	}
	return compiler.CompileProgram(string(source), sourcePath, loader)
}

// CheckCompiles runs a synchronous compile of the server's source, for
// callers that want to surface a compile error before starting to listen.
func (s *Server) CheckCompiles() error {
	_, err := compileOnce(s.SourcePath, s.Loader)
	return err
}
