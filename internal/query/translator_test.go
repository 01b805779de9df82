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

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", Prefix},
		{"   ", Prefix},
		{"where event.application = 'MessageStream'", Prefix + " where event.application = 'MessageStream'"},
		{"  WHERE x = 1", Prefix + " WHERE x = 1"},
		{"order by doc.date", Prefix + " order by doc.date"},
		{"group by doc.space", Prefix + " group by doc.space"},
		{"from doc.object(XWiki.XWikiUsers) as usr", Prefix + ", doc.object(XWiki.XWikiUsers) as usr"},
		{", doc.object(A.B) as o where o.x = 1", Prefix + ", doc.object(A.B) as o where o.x = 1"},
		{"select doc.name from Document doc", "select doc.name from Document doc"},
		{"whereabouts", "whereabouts"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func translate(t *testing.T, tr *Translator, statement string) string {
	t.Helper()
	hql, err := tr.Translate(context.Background(), statement)
	require.NoError(t, err)
	return hql
}

func TestTranslateBareWhere(t *testing.T) {
	in := "where event.application = 'MessageStream'"
	assert.Contains(t, Normalize(in), "select doc.fullName from Document as doc where event.application = 'MessageStream'")
	assert.Equal(t,
		"select doc.fullName from XWikiDocument as doc where event.application = 'MessageStream'",
		translate(t, NewTranslator(nil, nil), in))
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "object properties",
			in:   "select doc.fullName from Document as doc, doc.object(XWiki.XWikiUsers) as usr where usr.first_name like 'A%' order by usr.last_name desc",
			want: "select doc.fullName from XWikiDocument as doc, BaseObject as usr, StringProperty as usr_first_name1, StringProperty as usr_last_name2" +
				" where (usr_first_name1.value like 'A%') and usr.name = doc.fullName and usr.className = 'XWiki.XWikiUsers'" +
				" and usr_first_name1.id.id = usr.id and usr_first_name1.id.name = 'first_name'" +
				" and usr_last_name2.id.id = usr.id and usr_last_name2.id.name = 'last_name'" +
				" order by usr_last_name2.value desc",
		},
		{
			name: "object without filter",
			in:   "from doc.object('My.Class') as o",
			want: "select doc.fullName from XWikiDocument as doc, BaseObject as o where o.name = doc.fullName and o.className = 'My.Class'",
		},
		{
			name: "repeated property shares its join",
			in:   "from doc.object(A) as o where o.age > 1 and o.age < 5",
			want: "select doc.fullName from XWikiDocument as doc, BaseObject as o, StringProperty as o_age1" +
				" where (o_age1.value > 1 and o_age1.value < 5) and o.name = doc.fullName and o.className = 'A'" +
				" and o_age1.id.id = o.id and o_age1.id.name = 'age'",
		},
		{
			name: "native object columns",
			in:   "select obj.name from Object as obj where obj.className = 'A' and obj.color = 'red'",
			want: "select obj.name from BaseObject as obj, StringProperty as obj_color1" +
				" where (obj.className = 'A' and obj_color1.value = 'red') and obj_color1.id.id = obj.id and obj_color1.id.name = 'color'",
		},
		{
			name: "inline object property",
			in:   "where doc.object(XWiki.XWikiUsers).active = 1",
			want: "select doc.fullName from XWikiDocument as doc, BaseObject as doc_obj1, StringProperty as doc_obj1_active2" +
				" where (doc_obj1_active2.value = 1) and doc_obj1.name = doc.fullName and doc_obj1.className = 'XWiki.XWikiUsers'" +
				" and doc_obj1_active2.id.id = doc_obj1.id and doc_obj1_active2.id.name = 'active'",
		},
		{
			name: "inline object shared by class",
			in:   "where doc.object(A).x = 1 and doc.object('A').number = 0 order by doc.object(A).x",
			want: "select doc.fullName from XWikiDocument as doc, BaseObject as doc_obj1, StringProperty as doc_obj1_x2" +
				" where (doc_obj1_x2.value = 1 and doc_obj1.number = 0) and doc_obj1.name = doc.fullName and doc_obj1.className = 'A'" +
				" and doc_obj1_x2.id.id = doc_obj1.id and doc_obj1_x2.id.name = 'x'" +
				" order by doc_obj1_x2.value",
		},
		{
			name: "space",
			in:   "select space.name from Space as space",
			want: "select space.name from XWikiSpace as space",
		},
		{
			name: "keywords are lowered",
			in:   "SELECT DISTINCT doc.space FROM Document AS doc WHERE doc.name LIKE 'A%' ORDER BY doc.space",
			want: "select distinct doc.space from XWikiDocument as doc where doc.name like 'A%' order by doc.space",
		},
		{
			name: "functions and parameters",
			in:   "where upper(doc.name) = :name and doc.date > ?1 and doc.title in ('a', 'b')",
			want: "select doc.fullName from XWikiDocument as doc where upper(doc.name) = :name and doc.date > ?1 and doc.title in ('a', 'b')",
		},
		{
			name: "count",
			in:   "select count(*) from Document as doc",
			want: "select count(*) from XWikiDocument as doc",
		},
		{
			name: "storage classes pass through",
			in:   "select p.value from Document as doc, StringProperty as p where p.id.id = 1",
			want: "select p.value from XWikiDocument as doc, StringProperty as p where p.id.id = 1",
		},
		{
			name: "empty",
			in:   "",
			want: "select doc.fullName from XWikiDocument as doc",
		},
	}
	tr := NewTranslator(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translate(t, tr, tt.in))
		})
	}
}

func TestTranslatePropertyTypes(t *testing.T) {
	types := NewPropertyTypes("", map[string]string{
		"Blog.BlogPostClass.published": "IntegerProperty",
		"publishDate":                  "DateProperty",
	})
	tr := NewTranslator(types, nil)

	got := translate(t, tr, "from doc.object(Blog.BlogPostClass) as post where post.published = 1 and post.name <> '' order by post.publishDate")
	assert.Equal(t, "select doc.fullName from XWikiDocument as doc, BaseObject as post, IntegerProperty as post_published1, DateProperty as post_publishDate2"+
		" where (post_published1.value = 1 and post.name <> '') and post.name = doc.fullName and post.className = 'Blog.BlogPostClass'"+
		" and post_published1.id.id = post.id and post_published1.id.name = 'published'"+
		" and post_publishDate2.id.id = post.id and post_publishDate2.id.name = 'publishDate'"+
		" order by post_publishDate2.value", got)

	types.Set("Blog.BlogPostClass", "published", "LongProperty")
	assert.Contains(t, translate(t, tr, "from doc.object(Blog.BlogPostClass) as post where post.published = 1"), "LongProperty as post_published1")
	assert.Equal(t, DefaultPropertyType, types.PropertyType("Other", "x"))
}

func TestMemberOfIsNarrowedToEquality(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelDebug, Format: "text", Output: &buf})
	tr := NewTranslator(nil, logger)

	got := translate(t, tr, "from doc.object(Tags) as t where 'x' member of t.tags")
	assert.Equal(t, "select doc.fullName from XWikiDocument as doc, BaseObject as t, StringProperty as t_tags1"+
		" where ('x' = t_tags1.value) and t.name = doc.fullName and t.className = 'Tags'"+
		" and t_tags1.id.id = t.id and t_tags1.id.name = 'tags'", got)
	assert.Contains(t, buf.String(), "member of")

	buf.Reset()
	translate(t, tr, "where doc.name = 'x'")
	assert.NotContains(t, buf.String(), "member of")
}

func TestTranslateErrors(t *testing.T) {
	tr := NewTranslator(nil, nil)
	tests := []struct {
		name string
		in   string
		code string
	}{
		{"unknown document alias", "select o.x from Document as doc, page.object(A) as o", errors.ErrCodeUnknownAlias},
		{"object without alias", "from doc.object(A)", errors.ErrCodeQuerySyntax},
		{"inline object on unknown alias", "where page.object(A).x = 1", errors.ErrCodeUnknownAlias},
		{"inline object nested property", "where doc.object(A).x.y = 1", errors.ErrCodeQuerySyntax},
		{"object declaration with property", "from doc.object(A).x as o", errors.ErrCodeQuerySyntax},
		{"missing projection", "select from Document as doc", errors.ErrCodeQuerySyntax},
		{"bad token", "where doc.name = #", errors.ErrCodeQuerySyntax},
		{"unbalanced parenthesis", "where (doc.name = 'x'", errors.ErrCodeQuerySyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.Translate(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, errors.IsQueryError(err))
			assert.True(t, errors.HasErrorCode(err, tt.code), err.Error())
		})
	}
}

func TestSyntaxErrorLocation(t *testing.T) {
	_, err := Parse("where doc.name = #")
	require.Error(t, err)
	var we *errors.WikiError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, 1, we.Line)
	assert.Greater(t, we.Column, len(Prefix))
	assert.Equal(t, Prefix+" where doc.name = #", we.Context["statement"])
}

func FuzzTranslate(f *testing.F) {
	for _, seed := range []string{
		"",
		"where event.application = 'MessageStream'",
		"from doc.object(XWiki.XWikiUsers) as usr where usr.first_name like 'A%'",
		"select count(*) from Document as doc group by doc.space having count(*) > 1",
		"where 'x' member of doc.object(A).tags",
		"where ((",
	} {
		f.Add(seed)
	}
	tr := NewTranslator(nil, nil)
	f.Fuzz(func(t *testing.T, statement string) {
		hql, err := tr.Translate(context.Background(), statement)
		if err == nil && hql == "" {
			t.Fatalf("empty translation for %q", statement)
		}
	})
}
