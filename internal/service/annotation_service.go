package service

import (
	"context"

	"synoptic-engine/internal/domain"
)

// AnnotationProvider is the AI collaborator, consumed as a black
// box: given a bilingual text pair it returns structured annotation
// payloads. Output quality is not validated here.
type AnnotationProvider interface {
	Annotate(ctx context.Context, req *domain.AnnotationRequest) (*domain.AnnotationPayload, error)
}

type AnnotationService struct {
	provider AnnotationProvider
	sessions *Manager
}

func NewAnnotationService(provider AnnotationProvider, sessions *Manager) *AnnotationService {
	return &AnnotationService{
		provider: provider,
		sessions: sessions,
	}
}

// Annotate runs the provider on the given text pair and appends the
// resulting annotations into the open session.
func (s *AnnotationService) Annotate(ctx context.Context, documentID string, req *domain.AnnotationRequest) (*domain.AnnotationPayload, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	session, ok := s.sessions.Get(documentID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	payload, err := s.provider.Annotate(ctx, req)
	if err != nil {
		return nil, err
	}

	session.AppendAnnotations(payload)
	return payload, nil
}

// Append bulk-appends an externally produced annotation payload.
func (s *AnnotationService) Append(documentID string, payload *domain.AnnotationPayload) error {
	session, ok := s.sessions.Get(documentID)
	if !ok {
		return ErrSessionNotFound
	}
	session.AppendAnnotations(payload)
	return nil
}
