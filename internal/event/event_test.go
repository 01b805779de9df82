package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentEventMatching(t *testing.T) {
	assert.True(t, DocumentUpdatedEvent("").Matches(DocumentUpdatedEvent("Main.WebHome")))
	assert.True(t, DocumentUpdatedEvent("Main.WebHome").Matches(DocumentUpdatedEvent("Main.WebHome")))
	assert.False(t, DocumentUpdatedEvent("Main.WebHome").Matches(DocumentUpdatedEvent("Main.Other")))
	assert.False(t, DocumentUpdatedEvent("").Matches(DocumentDeletedEvent("Main.WebHome")))
	assert.False(t, DocumentUpdatedEvent("").Matches(Any{}))
	assert.True(t, Any{}.Matches(DocumentCreatedEvent("x")))
}

func TestEnvelope(t *testing.T) {
	a := NewEnvelope(Any{}, "src", 1)
	b := NewEnvelope(Any{}, "src", 1)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Time.IsZero())
}

func TestNotifierFunc(t *testing.T) {
	var got Event
	n := NotifierFunc(func(_ context.Context, e Event, _, _ interface{}) { got = e })
	n.Notify(context.Background(), DocumentDeletedEvent("A"), nil, nil)
	assert.Equal(t, DocumentDeletedEvent("A"), got)
	assert.Equal(t, "deleted", DocumentDeleted.String())
}
