package blame

import (
	"context"

	"github.com/mcdonaldj/siblame/internal/ports"
)

// Service binds an Executor to one repository.
type Service struct {
	executor *Executor
	repo     ports.Repository
}

// NewService creates a Service for repo.
func NewService(executor *Executor, repo ports.Repository) *Service {
	return &Service{executor: executor, repo: repo}
}

// Blame runs a blame for filename relative to dir.
func (s *Service) Blame(ctx context.Context, dir, filename string) (*ports.BlameResult, error) {
	return s.executor.Execute(ctx, s.repo, ports.Workspace{BaseDir: dir}, filename)
}

// Compile-time check that Service implements ports.BlameService.
var _ ports.BlameService = (*Service)(nil)
