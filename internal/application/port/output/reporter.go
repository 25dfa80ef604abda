package output

import (
	"context"

	"pagepilot/internal/domain/entity"
)

type ReporterPort interface {
	ShowRunStart(ctx context.Context, script string, steps int)
	ShowStepStart(ctx context.Context, index, total int, tool entity.ToolName, arguments string)
	ShowStepResult(ctx context.Context, tool entity.ToolName, result string, isError bool)
	ShowRunResult(ctx context.Context, result *entity.RunResult)
}
