package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jsierra/portfolio-accounts/internal/domain"
)

type fakeLister struct {
	users []*domain.User
	err   error
}

func (l *fakeLister) List(_ context.Context) ([]*domain.User, error) { return l.users, l.err }

func TestListUsers(t *testing.T) {
	t1 := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	lastLogin := t1.Add(time.Hour)
	lockedUntil := time.Now().Add(time.Hour)

	h := NewHandle(&fakeLister{users: []*domain.User{
		{ID: 2, Name: "Beto", Email: "beto@example.com", PasswordHash: "secret-hash", RegisteredAt: t1, LastLoginAt: &lastLogin, Active: true, LockedUntil: &lockedUntil},
		{ID: 1, Name: "Ana", Email: "ana@example.com", PasswordHash: "secret-hash", RegisteredAt: t2, Active: false},
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/usuarios", nil)
	rr := httptest.NewRecorder()
	h.ListUsers(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "secret-hash") {
		t.Fatal("response leaks credential hashes")
	}

	var resp struct {
		Usuarios []struct {
			ID        int64 `json:"id"`
			Activo    bool  `json:"activo"`
			Bloqueado bool  `json:"bloqueado"`
		} `json:"usuarios"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Total != 2 || len(resp.Usuarios) != 2 {
		t.Fatalf("total = %d, len = %d, want 2 / 2", resp.Total, len(resp.Usuarios))
	}
	if resp.Usuarios[0].ID != 2 || resp.Usuarios[1].ID != 1 {
		t.Errorf("order = [%d %d], want [2 1]", resp.Usuarios[0].ID, resp.Usuarios[1].ID)
	}
	if !resp.Usuarios[0].Bloqueado {
		t.Error("locked user not reported as bloqueado")
	}
	if resp.Usuarios[1].Activo {
		t.Error("inactive user reported as activo")
	}
}

func TestListUsersRepositoryError(t *testing.T) {
	h := NewHandle(&fakeLister{err: fmt.Errorf("db down")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/usuarios", nil)
	rr := httptest.NewRecorder()
	h.ListUsers(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}
