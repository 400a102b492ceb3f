package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/crucial707/educompanion/cmd/cli/config"
)

// fakeAPI accepts alice/pw1 and records the last register payload.
func fakeAPI(t *testing.T) *map[string]string {
	t.Helper()
	registered := map[string]string{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/register", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&registered)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"message":"User registered successfully"}`))
	})
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["username"] != "alice" || in["password"] != "pw1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Invalid username or password"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "educompanion_session", Value: "jwt", Path: "/"})
		_, _ = w.Write([]byte(`{"success":true,"user":{"username":"alice","email":"a@x.com","grade":"10th"}}`))
	})
	mux.HandleFunc("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "educompanion_session", Path: "/", MaxAge: -1})
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("EDU_API_URL", srv.URL)
	t.Setenv("EDU_SESSION_FILE", filepath.Join(t.TempDir(), "session"))
	return &registered
}

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRegister(t *testing.T) {
	registered := fakeAPI(t)

	out, err := run(t, registerCmd(), "pw1\n", "--username", "alice", "--email", "a@x.com", "--grade", "10th")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !strings.Contains(out, "registered successfully") {
		t.Errorf("output: %q", out)
	}
	got := *registered
	if got["username"] != "alice" || got["password"] != "pw1" || got["grade"] != "10th" {
		t.Errorf("payload: %v", got)
	}
}

func TestRegister_MissingFlags(t *testing.T) {
	fakeAPI(t)
	if _, err := run(t, registerCmd(), "", "--username", "alice"); err == nil {
		t.Fatal("expected error without --email")
	}
}

func TestLoginWhoamiLogout(t *testing.T) {
	fakeAPI(t)

	if _, err := run(t, loginCmd(), "", "--username", "alice", "--password", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}

	out, err := run(t, loginCmd(), "pw1\n", "--username", "alice")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Welcome, alice") {
		t.Errorf("login output: %q", out)
	}

	sess, err := config.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if sess.Cookies["educompanion_session"] != "jwt" || sess.User == nil || sess.User.Email != "a@x.com" {
		t.Errorf("saved session: %+v", sess)
	}

	out, err = run(t, whoamiCmd(), "")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "alice") || !strings.Contains(out, "10th") {
		t.Errorf("whoami output: %q", out)
	}

	out, err = run(t, logoutCmd(), "")
	if err != nil || !strings.Contains(out, "Logged out successfully") {
		t.Fatalf("logout: %q, %v", out, err)
	}
	if _, err := run(t, whoamiCmd(), ""); err == nil {
		t.Error("whoami after logout: expected error")
	}

	out, _ = run(t, logoutCmd(), "")
	if !strings.Contains(out, "No user logged in") {
		t.Errorf("second logout: %q", out)
	}
}

func TestReadPassword_Empty(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("\n"))
	cmd.SetErr(&bytes.Buffer{})
	if _, err := readPassword(cmd); err == nil {
		t.Fatal("expected error for empty password")
	}
}
