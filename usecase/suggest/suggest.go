// Package suggest wraps the external text-generation service for the two AI
// features: goal-based task suggestions and breaking one task into subtasks.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/focushub/backend/domain"
	taskUC "github.com/focushub/backend/usecase/task"
)

// TextGenerator is the contract the AI client fulfils. Terminal failures
// (malformed responses, exhausted retries) surface as plain errors.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateTaskNames(ctx context.Context, prompt string) ([]string, error)
}

type UseCase struct {
	ai     TextGenerator
	tasks  *taskUC.UseCase
	logger *zap.Logger
}

func New(ai TextGenerator, tasks *taskUC.UseCase, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		ai:     ai,
		tasks:  tasks,
		logger: logger,
	}
}

// SuggestTasks asks the service for a task list that works toward the goal.
func (uc *UseCase) SuggestTasks(ctx context.Context, goal string) ([]string, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "goal is required")
	}

	prompt := fmt.Sprintf(
		"Acting as a study advisor, suggest a list of concrete tasks needed to achieve the following goal: %q. Return only the main tasks.",
		goal,
	)
	return uc.ai.GenerateTaskNames(ctx, prompt)
}

// BreakdownTask splits an existing task into subtasks and appends them to
// today's list. Nothing is inserted unless the AI call succeeds, so a
// terminal failure leaves the task list untouched.
func (uc *UseCase) BreakdownTask(ctx context.Context, userID, taskID string) ([]domain.Task, error) {
	parent, err := uc.tasks.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Break the following task into realistic subtasks. Answer only with the list, one subtask per line, no bullets, no numbering, no introduction: %q",
		parent.Text,
	)
	text, err := uc.ai.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var created []domain.Task
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• \t"))
		if line == "" {
			continue
		}
		subtask, err := uc.tasks.Add(ctx, userID, line, nil, nil)
		if err != nil {
			return created, err
		}
		created = append(created, *subtask)
	}

	uc.logger.Info("task broken down",
		zap.String("user_id", userID),
		zap.String("task_id", taskID),
		zap.Int("subtasks", len(created)))
	return created, nil
}
