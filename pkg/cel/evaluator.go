package cel

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"promofeed/pkg/models"
)

// Evaluator compiles filter expressions over message records. Compiled
// programs are cached by expression text.
type Evaluator struct {
	env      *cel.Env
	programs sync.Map
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("code", cel.StringType),
		cel.Variable("message", cel.StringType),
		cel.Variable("severity", cel.StringType),
		cel.Variable("timestamp", cel.TimestampType),
		cel.Variable("metadata", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

func (e *Evaluator) ValidateFilterExpression(expression string) error {
	_, err := e.compile(expression)
	return err
}

func (e *Evaluator) compile(expression string) (cel.Program, error) {
	if cached, ok := e.programs.Load(expression); ok {
		return cached.(cel.Program), nil
	}

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("filter expression must return bool, got %v", ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	e.programs.Store(expression, program)
	return program, nil
}

func (e *Evaluator) EvaluateFilter(ctx context.Context, expression string, rec models.MessageRecord) (bool, error) {
	program, err := e.compile(expression)
	if err != nil {
		return false, err
	}

	metadata := rec.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	vars := map[string]interface{}{
		"id":        rec.ID,
		"code":      rec.Code,
		"message":   rec.Message,
		"severity":  string(rec.Severity),
		"timestamp": rec.Timestamp,
		"metadata":  metadata,
	}

	result, _, err := program.ContextEval(ctx, vars)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	boolVal, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return bool, got %T", result.Value())
	}

	return boolVal, nil
}

// Filter keeps the records matching expression. Records whose evaluation
// fails (e.g. a missing metadata key) are dropped.
func (e *Evaluator) Filter(ctx context.Context, expression string, records []models.MessageRecord) ([]models.MessageRecord, error) {
	if _, err := e.compile(expression); err != nil {
		return nil, err
	}

	out := make([]models.MessageRecord, 0, len(records))
	for _, rec := range records {
		ok, err := e.EvaluateFilter(ctx, expression, rec)
		if err != nil || !ok {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
