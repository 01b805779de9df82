package params

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertionOrder(t *testing.T) {
	m := New("z", "1", "a", "2")
	m.Set("m", "3")
	m.Set("z", "4")

	assert.Equal(t, []string{"z", "a", "m"}, m.Keys())
	assert.Equal(t, "4", m.Value("z"))
	assert.Equal(t, 3, m.Len())
}

func TestNilSafety(t *testing.T) {
	var m *Map

	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Has("x"))
	assert.Nil(t, m.Keys())
	assert.Nil(t, m.Clone())
	assert.Equal(t, "[]", m.String())
	assert.True(t, m.Equal(New()))
	assert.NotPanics(t, func() { m.Delete("x") })
}

func TestDelete(t *testing.T) {
	m := New("a", "1", "b", "2", "c", "3")
	m.Delete("b")
	m.Delete("missing")

	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.False(t, m.Has("b"))
}

func TestEqualIsOrderSensitive(t *testing.T) {
	assert.True(t, New("a", "1", "b", "2").Equal(New("a", "1", "b", "2")))
	assert.False(t, New("a", "1", "b", "2").Equal(New("b", "2", "a", "1")))
	assert.False(t, New("a", "1").Equal(New("a", "2")))
}

func TestCloneIsIndependent(t *testing.T) {
	m := New("a", "1")
	c := m.Clone()
	c.Set("b", "2")

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, c.Len())
}

func TestString(t *testing.T) {
	assert.Equal(t, "[[anchor] = [x], [queryString] = [a=b]]", New("anchor", "x", "queryString", "a=b").String())
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(New("b", "2", "a", "1"))
	require.NoError(t, err)
	assert.Equal(t, `{"b":"2","a":"1"}`, string(data))
}
