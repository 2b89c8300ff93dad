package profile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/apppaint/apppaint/internal/document"
	"github.com/apppaint/apppaint/internal/store"
)

func TestCreateActivatesFirstProfileOnly(t *testing.T) {
	svc := NewService(store.NewMemory())
	ctx := context.Background()

	first, err := svc.Create(ctx, document.Profile{Name: "Work"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := svc.Create(ctx, document.Profile{Name: "Home", Theme: document.ThemeDark, IsActive: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !first.IsActive || second.IsActive {
		t.Errorf("active = %v/%v, want true/false", first.IsActive, second.IsActive)
	}
	if first.Theme != document.ThemeSystem || first.DefaultCanvasWidth != 800 || first.DefaultStrokeThickness != 2 {
		t.Errorf("defaults not filled: %+v", first)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(store.NewMemory())
	tests := []struct {
		name string
		p    document.Profile
	}{
		{"blank name", document.Profile{Name: "  "}},
		{"unknown theme", document.Profile{Name: "x", Theme: "Neon"}},
		{"negative thickness", document.Profile{Name: "x", DefaultStrokeThickness: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tt.p); !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("err = %v, want ErrInvalidProfile", err)
			}
		})
	}
}

func TestSetActiveAndDelete(t *testing.T) {
	svc := NewService(store.NewMemory())
	ctx := context.Background()

	a, _ := svc.Create(ctx, document.Profile{Name: "A"})
	b, _ := svc.Create(ctx, document.Profile{Name: "B"})

	if err := svc.Delete(ctx, a.ID); !errors.Is(err, ErrActiveProfile) {
		t.Fatalf("delete active err = %v, want ErrActiveProfile", err)
	}

	if _, err := svc.SetActive(ctx, b.ID); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	active, err := svc.Active(ctx)
	if err != nil || active.ID != b.ID {
		t.Fatalf("Active = %v, %v; want %s", active, err, b.ID)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != b.ID || list[1].IsActive {
		t.Errorf("list = %+v, want %s first and only one active", list, b.ID)
	}

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Errorf("delete inactive: %v", err)
	}
	if _, err := svc.SetActive(ctx, "prof_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive missing err = %v, want ErrNotFound", err)
	}
}

func TestUpdateKeepsActivation(t *testing.T) {
	svc := NewService(store.NewMemory())
	ctx := context.Background()
	p, _ := svc.Create(ctx, document.Profile{Name: "Main"})

	updated, err := svc.Update(ctx, p.ID, document.Profile{Name: "Renamed", DefaultStrokeColor: "#FF0000", IsActive: false})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.IsActive || updated.Name != "Renamed" || !updated.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("updated = %+v", updated)
	}
	if _, err := svc.Update(ctx, "prof_missing", document.Profile{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSessionStyle(t *testing.T) {
	svc := NewService(store.NewMemory())
	ctx := context.Background()

	st, err := svc.SessionStyle(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if st != document.DefaultStyle() {
		t.Errorf("no profile: %+v", st)
	}

	active, err := svc.Create(ctx, document.Profile{Name: "Thick", DefaultStrokeThickness: 5})
	if err != nil {
		t.Fatal(err)
	}
	other, err := svc.Create(ctx, document.Profile{Name: "Red", DefaultStrokeColor: "#FF0000"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		profileID string
		wantColor string
		wantWidth float64
	}{
		{"active profile", "", "#000000", 5},
		{"bound profile", other.ID, "#FF0000", 2},
		{"bound active", active.ID, "#000000", 5},
		{"unknown profile", "prof_missing", "#000000", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := svc.SessionStyle(ctx, tt.profileID)
			if err != nil {
				t.Fatal(err)
			}
			if st.StrokeColor != tt.wantColor || st.StrokeThickness != tt.wantWidth {
				t.Errorf("style = %+v, want %s/%v", st, tt.wantColor, tt.wantWidth)
			}
		})
	}
}

func TestHandlerRoutes(t *testing.T) {
	svc := NewService(store.NewMemory())
	r := mux.NewRouter()
	NewHandler(svc).Routes(r.PathPrefix("/api").Subrouter())

	active, _ := svc.Create(context.Background(), document.Profile{Name: "Active"})

	tests := []struct {
		method, path, body string
		want               int
	}{
		{"GET", "/api/profiles/active", "", http.StatusOK},
		{"GET", "/api/profiles/prof_missing", "", http.StatusNotFound},
		{"POST", "/api/profiles", `{"name":"New","theme":"Dark"}`, http.StatusCreated},
		{"POST", "/api/profiles", `{"name":""}`, http.StatusBadRequest},
		{"POST", "/api/profiles", `not json`, http.StatusBadRequest},
		{"DELETE", "/api/profiles/" + active.ID, "", http.StatusConflict},
		{"POST", "/api/profiles/" + active.ID + "/activate", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}
