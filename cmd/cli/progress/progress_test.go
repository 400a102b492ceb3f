package progress

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func fakeProgressAPI(t *testing.T) *map[string]any {
	t.Helper()
	progress := map[string]any{"math": map[string]any{"level": 2}, "art": true}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "progress": progress})
		case http.MethodPost:
			var in struct {
				Progress map[string]any `json:"progress"`
			}
			_ = json.NewDecoder(r.Body).Decode(&in)
			progress = in.Progress
			_, _ = w.Write([]byte(`{"success":true}`))
		}
	}))
	t.Cleanup(srv.Close)
	t.Setenv("EDU_API_URL", srv.URL)
	t.Setenv("EDU_SESSION_FILE", filepath.Join(t.TempDir(), "session"))
	return &progress
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGet_Table(t *testing.T) {
	fakeProgressAPI(t)

	out, err := run(t, getCmd())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, `{"level":2}`) || strings.Index(out, "art") > strings.Index(out, "math") {
		t.Errorf("table output: %q", out)
	}
}

func TestGet_JSON(t *testing.T) {
	fakeProgressAPI(t)

	out, err := run(t, getCmd(), "--json")
	if err != nil {
		t.Fatalf("get --json: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %q", out)
	}
	if got["art"] != true {
		t.Errorf("unexpected progress: %v", got)
	}
}

func TestSet(t *testing.T) {
	progress := fakeProgressAPI(t)

	if _, err := run(t, setCmd(), `{"science":{"done":[1,2]}}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok := (*progress)["science"]; !ok {
		t.Errorf("progress not replaced: %v", *progress)
	}

	for _, bad := range []string{`[1,2]`, `null`, `nope`} {
		if _, err := run(t, setCmd(), bad); err == nil {
			t.Errorf("%s: expected error", bad)
		}
	}
}
