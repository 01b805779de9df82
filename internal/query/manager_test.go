package query

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/logging"
)

type recording struct {
	hql  []string
	rows []interface{}
	err  error
}

func (r *recording) Execute(_ context.Context, hql string, _ Query) ([]interface{}, error) {
	r.hql = append(r.hql, hql)
	return r.rows, r.err
}

func TestManagerExecute(t *testing.T) {
	exec := &recording{rows: []interface{}{"Main.WebHome"}}
	m := NewManager(nil, exec, nil)

	rows := m.Execute(context.Background(), Query{Statement: "where doc.space = :space", Bindings: map[string]interface{}{"space": "Main"}})
	assert.Equal(t, []interface{}{"Main.WebHome"}, rows)
	assert.Equal(t, []string{"select doc.fullName from XWikiDocument as doc where doc.space = :space"}, exec.hql)

	rows = m.Execute(context.Background(), Query{Statement: "select 1 from XWikiDocument d", Language: HQL})
	assert.Len(t, rows, 1)
	assert.Equal(t, "select 1 from XWikiDocument d", exec.hql[1])
}

func TestManagerDegradesToEmptyResult(t *testing.T) {
	exec := &recording{err: errors.New("connection refused")}
	m := NewManager(nil, exec, nil)

	assert.Empty(t, m.Execute(context.Background(), Query{Statement: "where doc.name = 'x'"}))

	_, err := m.Run(context.Background(), Query{Statement: "where doc.name = 'x'"})
	require.Error(t, err)
	assert.True(t, errors.IsQueryError(err))
	assert.True(t, errors.HasErrorCode(err, errors.ErrCodeQueryExecution))

	assert.Empty(t, m.Execute(context.Background(), Query{Statement: "where ("}))
	assert.Len(t, exec.hql, 2)
}

func TestManagerErrors(t *testing.T) {
	_, err := NewManager(nil, nil, nil).Run(context.Background(), Query{})
	assert.True(t, errors.HasErrorCode(err, errors.ErrCodeQueryExecution))

	_, err = NewManager(nil, nil, nil).Translate(context.Background(), Query{Language: "sql"})
	assert.True(t, errors.IsQueryError(err))

	exec := ExecutorFunc(func(_ context.Context, hql string, q Query) ([]interface{}, error) {
		return []interface{}{hql, q.Limit}, nil
	})
	rows, err := NewManager(nil, exec, nil).Run(context.Background(), Query{Language: "XWQL", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"select doc.fullName from XWikiDocument as doc", 5}, rows)
}

func TestManagerExecuteLogsFailureKind(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelDebug, Format: "json", Output: buf})
	m := NewManager(nil, &recording{err: errors.New("connection refused")}, logger)

	assert.Empty(t, m.Execute(context.Background(), Query{Statement: "where doc.name = 'x'"}))
	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"code":"ERR_QUERY_EXECUTION"`)
	assert.Contains(t, out, `"cause":"connection refused"`)

	buf.Reset()
	assert.Empty(t, m.Execute(context.Background(), Query{Statement: "where ("}))
	out = buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"code":"ERR_QUERY_SYNTAX"`)
	assert.NotContains(t, out, `"level":"ERROR"`)
}
