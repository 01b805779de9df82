package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/logging"
)

// Query languages.
const (
	XWQL = "xwql"
	HQL  = "hql"
)

// Query is a statement with its bindings.
type Query struct {
	Statement string
	Language  string
	// Bindings are named parameters (":name") and positional ones ("?1",
	// keyed "1").
	Bindings map[string]interface{}
	Limit    int
	Offset   int
}

// Executor runs HQL against the storage layer.
type Executor interface {
	Execute(ctx context.Context, hql string, q Query) ([]interface{}, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, hql string, q Query) ([]interface{}, error)

func (f ExecutorFunc) Execute(ctx context.Context, hql string, q Query) ([]interface{}, error) {
	return f(ctx, hql, q)
}

// Manager translates and runs queries.
type Manager struct {
	translator *Translator
	executor   Executor
	logger     logging.Logger
}

// NewManager returns a manager running translated statements on executor.
func NewManager(translator *Translator, executor Executor, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	if translator == nil {
		translator = NewTranslator(nil, logger)
	}
	return &Manager{translator: translator, executor: executor, logger: logger.WithComponent("query")}
}

// Translate returns the HQL for q.
func (m *Manager) Translate(ctx context.Context, q Query) (string, error) {
	switch strings.ToLower(q.Language) {
	case "", XWQL:
		return m.translator.Translate(ctx, q.Statement)
	case HQL:
		return q.Statement, nil
	}
	return "", errors.NewQueryError(errors.ErrCodeQuerySyntax, fmt.Sprintf("unsupported query language %q", q.Language), nil)
}

// Run translates and executes q, returning any failure.
func (m *Manager) Run(ctx context.Context, q Query) ([]interface{}, error) {
	hql, err := m.Translate(ctx, q)
	if err != nil {
		return nil, err
	}
	if m.executor == nil {
		return nil, errors.NewQueryError(errors.ErrCodeQueryExecution, "no query executor configured", nil)
	}
	m.logger.Debug(ctx, "executing query", "hql", hql)
	rows, err := m.executor.Execute(ctx, hql, q)
	if err != nil {
		return nil, errors.NewQueryError(errors.ErrCodeQueryExecution, "query failed", err).WithContext("hql", hql)
	}
	return rows, nil
}

// Execute runs q like Run, but a failure is logged and yields no rows.
// Malformed statements log a warning; executor failures log an error.
func (m *Manager) Execute(ctx context.Context, q Query) []interface{} {
	rows, err := m.Run(ctx, q)
	if err != nil {
		fields := []interface{}{
			"statement", q.Statement,
			"code", errors.Code(err),
			"cause", errors.GetRootCause(err).Error(),
		}
		if errors.HasErrorCode(err, errors.ErrCodeQuerySyntax) {
			m.logger.Warn(ctx, err, "invalid query", fields...)
		} else {
			m.logger.Error(ctx, err, "query failed", fields...)
		}
		return nil
	}
	return rows
}
