package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig points the monitor at a throwaway sqlite file and a fake
// Bot API server.
func writeTestConfig(t *testing.T, apiURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "deadman.yaml")
	content := fmt.Sprintf(`
owner: 111111
recipients: [222222]
grace_days: 3
channels:
  telegram:
    token: "123:abc"
    base_url: "%s"
db:
  driver: sqlite
  path: "%s"
`, apiURL, filepath.Join(dir, "state.db"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fakeBotAPI(t *testing.T, updatesJSON string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			fmt.Fprint(w, updatesJSON)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			fmt.Fprint(w, `{"ok":true}`)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheck_NoBaseline(t *testing.T) {
	srv := fakeBotAPI(t, `{"ok":true,"result":[]}`)
	cfgPath := writeTestConfig(t, srv.URL)

	out, err := runCommand(t, "check", "--config", cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No initial check-in") {
		t.Errorf("output = %q, want no-baseline line", out)
	}
	if !strings.Contains(out, `"outcome":"no_initial_checkin"`) {
		t.Errorf("output = %q, want JSON summary", out)
	}
}

func TestCheck_CheckinThenWithinWindow(t *testing.T) {
	srv := fakeBotAPI(t, `{"ok":true,"result":[
		{"update_id":1,"message":{"chat":{"id":111111},"text":"checkin"}}
	]}`)
	cfgPath := writeTestConfig(t, srv.URL)

	out, err := runCommand(t, "check", "--config", cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "safe window") {
		t.Errorf("output = %q, want within-window line", out)
	}
	if !strings.Contains(out, `"checkins_applied":1`) {
		t.Errorf("output = %q, want one applied check-in", out)
	}

	// Second pass re-requests from the advanced cursor; the fake server
	// replays the same update, which the offset contract would normally
	// filter server-side, so assert only on state persistence here.
	out, err = runCommand(t, "status", "--config", cfgPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Cursor:        2") {
		t.Errorf("status = %q, want cursor 2", out)
	}
}

func TestCheck_InvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deadman.yaml")
	if err := os.WriteFile(path, []byte("owner: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := runCommand(t, "check", "--config", path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("error = %q", err)
	}
}
