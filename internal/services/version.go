package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quillboard/quillboard-backend/internal/domain"
	qerrors "github.com/quillboard/quillboard-backend/internal/pkg/errors"
	"github.com/quillboard/quillboard-backend/internal/platform/logger"
	"github.com/quillboard/quillboard-backend/internal/repos"
)

// VersionService owns the version sequence per content identity. Appends to
// the same identity are serialized through a per-identity lock so Seq stays
// monotonic; different identities append independently.
type VersionService interface {
	RecordInitial(ctx context.Context, contentID, content, author string) (*domain.ContentVersion, error)
	RecordRevision(ctx context.Context, contentID, newContent, author string) (*domain.ContentVersion, error)
	History(ctx context.Context, contentID string) ([]*domain.ContentVersion, error)
}

type versionService struct {
	log  *logger.Logger
	repo repos.ContentVersionRepo

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewVersionService(baseLog *logger.Logger, repo repos.ContentVersionRepo) VersionService {
	return &versionService{
		log:   baseLog.With("service", "VersionService"),
		repo:  repo,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *versionService) lockFor(contentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[contentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[contentID] = l
	}
	return l
}

func (s *versionService) RecordInitial(ctx context.Context, contentID, content, author string) (*domain.ContentVersion, error) {
	return s.append(ctx, contentID, content, author)
}

// RecordRevision on an unknown contentID behaves as RecordInitial: an unseen
// identity bootstraps its sequence instead of erroring.
func (s *versionService) RecordRevision(ctx context.Context, contentID, newContent, author string) (*domain.ContentVersion, error) {
	return s.append(ctx, contentID, newContent, author)
}

func (s *versionService) append(ctx context.Context, contentID, content, author string) (*domain.ContentVersion, error) {
	if strings.TrimSpace(contentID) == "" {
		return nil, fmt.Errorf("record version: empty content id: %w", qerrors.ErrInvalidArgument)
	}
	if strings.TrimSpace(author) == "" {
		author = "unknown"
	}

	l := s.lockFor(contentID)
	l.Lock()
	defer l.Unlock()

	prev, err := s.repo.GetLatest(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("load latest version: %w", err)
	}

	v := &domain.ContentVersion{
		ID:        uuid.New(),
		ContentID: contentID,
		Seq:       1,
		Content:   content,
		Author:    author,
		CreatedAt: time.Now().UTC(),
	}
	if prev == nil {
		v.ChangeSummary = fmt.Sprintf("initial version (%d tokens)", len(strings.Fields(content)))
	} else {
		v.Seq = prev.Seq + 1
		v.ChangeSummary = changeSummary(prev.Content, content)
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("append version: %w", err)
	}
	s.log.Debug("version recorded",
		"content_id", contentID, "seq", v.Seq, "author", author, "summary", v.ChangeSummary)
	return v, nil
}

// History returns the empty sequence for unknown identities, never an error.
func (s *versionService) History(ctx context.Context, contentID string) ([]*domain.ContentVersion, error) {
	if strings.TrimSpace(contentID) == "" {
		return []*domain.ContentVersion{}, nil
	}
	out, err := s.repo.ListByContentID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.ContentVersion{}
	}
	return out, nil
}

// changeSummary is a structural approximation — added/removed token counts
// against the previous snapshot — not a line diff. Known-approximate by
// contract.
func changeSummary(prev, next string) string {
	prevTokens := strings.Fields(prev)
	nextTokens := strings.Fields(next)

	counts := make(map[string]int)
	for _, t := range prevTokens {
		counts[t]++
	}
	added := 0
	for _, t := range nextTokens {
		if counts[t] > 0 {
			counts[t]--
			continue
		}
		added++
	}
	removed := 0
	for _, rest := range counts {
		removed += rest
	}
	return fmt.Sprintf("+%d/-%d tokens (%d -> %d)", added, removed, len(prevTokens), len(nextTokens))
}
