package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"synoptic-engine/internal/domain"
)

func TestHTTPProjectRepository_Fetch(t *testing.T) {
	updatedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/projects/doc-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		content := domain.NewProjectContent()
		content.Pages = append(content.Pages, &domain.Page{ID: "p1", Number: 1, Blocks: []*domain.Block{}})
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content":    content,
			"settings":   domain.DefaultProjectSettings(),
			"updated_at": updatedAt,
		})
	}))
	defer server.Close()

	repo := NewHTTPProjectRepository(server.URL, time.Second)
	project, err := repo.Fetch(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if project.ID != "doc-1" {
		t.Errorf("project id = %s", project.ID)
	}
	if len(project.Content.Pages) != 1 || project.Content.Pages[0].ID != "p1" {
		t.Errorf("content not decoded: %+v", project.Content)
	}
	if !project.UpdatedAt.Equal(updatedAt) {
		t.Errorf("updated_at = %v, want %v", project.UpdatedAt, updatedAt)
	}
}

func TestHTTPProjectRepository_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := NewHTTPProjectRepository(server.URL, time.Second)
	if _, err := repo.Fetch(context.Background(), "doc-1"); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestHTTPProjectRepository_Save(t *testing.T) {
	var got struct {
		Content  *domain.ProjectContent  `json:"content"`
		Settings *domain.ProjectSettings `json:"settings"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	content := domain.NewProjectContent()
	content.Pages = append(content.Pages, &domain.Page{ID: "p1", Number: 1, Blocks: []*domain.Block{}})

	repo := NewHTTPProjectRepository(server.URL, time.Second)
	if err := repo.Save(context.Background(), "doc-1", content, domain.DefaultProjectSettings()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got.Content == nil || len(got.Content.Pages) != 1 {
		t.Error("save body missing the full content snapshot")
	}
	if got.Settings == nil {
		t.Error("save body missing settings")
	}
}

func TestHTTPProjectRepository_SaveRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	repo := NewHTTPProjectRepository(server.URL, time.Second)
	err := repo.Save(context.Background(), "doc-1", domain.NewProjectContent(), nil)
	if err == nil {
		t.Fatal("expected error on 409")
	}
}
