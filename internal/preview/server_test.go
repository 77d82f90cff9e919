package preview

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"rusteria/internal/module"
)

func writeShader(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.shade")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestServerStreamsFrame(t *testing.T) {
	path := writeShader(t, "fn shade(uv) { return uv; }")
	s := NewServer(path, module.NewFileLoader(t.TempDir()))
	s.GridSize = 4

	httpServer := httptest.NewServer(http.HandlerFunc(s.handleWS))
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(request{Cmd: "frame", Time: 0}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if f.Error != "" {
		t.Fatalf("unexpected error frame: %s", f.Error)
	}
	if f.Width != 4 || f.Height != 4 {
		t.Errorf("expected a 4x4 grid, got %dx%d", f.Width, f.Height)
	}
	if len(f.Pixels) != 16 {
		t.Errorf("expected 16 pixels, got %d", len(f.Pixels))
	}
	// uv at the top-left corner should shade to (0,0,0).
	if f.Pixels[0][0] != 0 || f.Pixels[0][1] != 0 {
		t.Errorf("expected corner pixel near zero, got %v", f.Pixels[0])
	}
}

func TestServerReportsCompileError(t *testing.T) {
	path := writeShader(t, "fn shade(uv) { return nonexistent; }")
	s := NewServer(path, module.NewFileLoader(t.TempDir()))

	httpServer := httptest.NewServer(http.HandlerFunc(s.handleWS))
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(request{Cmd: "frame"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if f.Error == "" {
		t.Error("expected a compile error for an undefined variable")
	}
}
