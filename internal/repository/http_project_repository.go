package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"synoptic-engine/internal/domain"
)

// httpProjectRepository speaks the published project API:
// GET /projects/{id} -> {content, settings, updated_at} and
// PATCH /projects/{id} with {content, settings}.
type httpProjectRepository struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProjectRepository(baseURL string, timeout time.Duration) ProjectRepository {
	return &httpProjectRepository{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type projectEnvelope struct {
	Content   *domain.ProjectContent  `json:"content"`
	Settings  *domain.ProjectSettings `json:"settings"`
	UpdatedAt time.Time               `json:"updated_at"`
}

func (r *httpProjectRepository) Fetch(ctx context.Context, id string) (*domain.RemoteProject, error) {
	url := fmt.Sprintf("%s/projects/%s", r.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch project: status %d", resp.StatusCode)
	}

	var envelope projectEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}

	return &domain.RemoteProject{
		ID:        id,
		Content:   envelope.Content,
		Settings:  envelope.Settings,
		UpdatedAt: envelope.UpdatedAt,
	}, nil
}

func (r *httpProjectRepository) Save(ctx context.Context, id string, content *domain.ProjectContent, settings *domain.ProjectSettings) error {
	body, err := json.Marshal(map[string]interface{}{
		"content":  content,
		"settings": settings,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/projects/%s", r.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("failed to save project: status %d", resp.StatusCode)
	}

	return nil
}
