package memstore

import (
	"context"
	"fmt"

	"github.com/fsdevblog/urlkeeper/internal/db"
	"github.com/fsdevblog/urlkeeper/internal/db/memory"
	"github.com/fsdevblog/urlkeeper/internal/models"
)

type SessionRepo struct {
	s *memory.MStorage
}

func NewSessionRepo(store *db.MemoryStorage) *SessionRepo {
	return &SessionRepo{
		s: store.Sessions,
	}
}

func (r *SessionRepo) Create(ctx context.Context, session *models.Session) error {
	if err := memory.Set(ctx, session.ID, session, r.s); err != nil {
		return fmt.Errorf("failed to create session: %w", convertErrorType(err))
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := memory.Get[models.Session](ctx, id, r.s)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", convertErrorType(err))
	}
	return session, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if err := memory.Delete(ctx, id, r.s); err != nil {
		return fmt.Errorf("failed to delete session: %w", convertErrorType(err))
	}
	return nil
}
