package repository

import (
	"context"
	"fmt"
	"time"

	"synoptic-engine/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

// ProjectRepository is the remote persistence endpoint consumed by
// the sync coordinator. Saves carry the full current state.
type ProjectRepository interface {
	Fetch(ctx context.Context, id string) (*domain.RemoteProject, error)
	Save(ctx context.Context, id string, content *domain.ProjectContent, settings *domain.ProjectSettings) error
}

type couchProjectRepository struct {
	client *kivik.Client
	dbName string
}

func NewCouchProjectRepository(client *kivik.Client, dbName string) ProjectRepository {
	return &couchProjectRepository{
		client: client,
		dbName: dbName,
	}
}

type projectDoc struct {
	ID        string                  `json:"_id"`
	Rev       string                  `json:"_rev,omitempty"`
	Content   *domain.ProjectContent  `json:"content"`
	Settings  *domain.ProjectSettings `json:"settings"`
	UpdatedAt time.Time               `json:"updated_at"`
}

func (r *couchProjectRepository) Fetch(ctx context.Context, id string) (*domain.RemoteProject, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("project:%s", id)
	row := db.Get(ctx, docID)

	var doc projectDoc
	if err := row.ScanDoc(&doc); err != nil {
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}

	return &domain.RemoteProject{
		ID:        id,
		Content:   doc.Content,
		Settings:  doc.Settings,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (r *couchProjectRepository) Save(ctx context.Context, id string, content *domain.ProjectContent, settings *domain.ProjectSettings) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("project:%s", id)

	doc := projectDoc{
		ID:        docID,
		Content:   content,
		Settings:  settings,
		UpdatedAt: time.Now(),
	}

	// Fetch the existing revision so the put replaces rather than
	// conflicts. A missing doc is fine: first save creates it.
	row := db.Get(ctx, docID)
	var existing projectDoc
	if err := row.ScanDoc(&existing); err == nil {
		doc.Rev = existing.Rev
	}

	if _, err := db.Put(ctx, docID, doc); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	return nil
}
