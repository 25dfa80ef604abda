package input

import (
	"context"

	"pagepilot/internal/domain/entity"
)

type ScriptRunner interface {
	Run(ctx context.Context, script *entity.Script) (*entity.RunResult, error)
}
