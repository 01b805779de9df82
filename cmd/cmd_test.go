package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/wikicore/internal/event"
	"github.com/conneroisu/wikicore/internal/model"
	"github.com/conneroisu/wikicore/internal/query"
	"github.com/conneroisu/wikicore/internal/syntax"
)

// resetFlags restores the flag variables between executions of the shared
// root command.
func resetFlags() {
	renderFrom, renderTo, renderNoTransform, renderPage = "", "", false, ""
	parseFrom, parseTransform = "", false
	refEntity, refBase = false, ""
	queryLanguage = query.XWQL
	componentsOutput, componentsRole = "table", ""
	diffTo, diffNoTransform = "", false
	linksFrom, linksPage = "", ""
	versionFormat, versionShort = "text", false
	_ = versionCmd.Flags().Set("detailed", "false")
	watchTo = ""
}

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	viper.Reset()
	resetFlags()
	t.Cleanup(viper.Reset)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRenderCommand(t *testing.T) {
	t.Run("stdin", func(t *testing.T) {
		out, _, err := execute(t, "**bold**", "render", "-f", "xwiki/2.1")
		require.NoError(t, err)
		assert.Contains(t, out, "<strong>bold</strong>")
	})

	t.Run("syntax from extension", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "page.md", "# Title\n\nSome *text*\n")
		out, _, err := execute(t, "", "render", "-t", "plain/1.0", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Title")
		assert.Contains(t, out, "Some text")
	})

	t.Run("macros", func(t *testing.T) {
		out, _, err := execute(t, "{{info}}careful{{/info}}", "render", "-f", "xwiki/2.1")
		require.NoError(t, err)
		assert.Contains(t, out, "box infomessage")

		out, _, err = execute(t, "{{info}}careful{{/info}}", "render", "-f", "xwiki/2.1", "--no-transform")
		require.NoError(t, err)
		assert.NotContains(t, out, "box infomessage")
	})

	t.Run("unknown macro is reported", func(t *testing.T) {
		out, errOut, err := execute(t, "{{nosuch/}}", "render", "-f", "xwiki/2.1")
		require.NoError(t, err)
		assert.Contains(t, out, "box errormessage")
		assert.Contains(t, errOut, "unknown macro: nosuch")
	})

	t.Run("invalid syntax flag", func(t *testing.T) {
		_, _, err := execute(t, "", "render", "-f", "xwiki/2.2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Did you mean xwiki/2.1?")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "", "render", filepath.Join(t.TempDir(), "none.xwiki"))
		assert.Error(t, err)
	})
}

func TestParseCommand(t *testing.T) {
	out, _, err := execute(t, "= Title =", "parse", "-f", "xwiki/2.1")
	require.NoError(t, err)
	assert.Contains(t, out, "onWord [Title]")
}

func TestRefCommand(t *testing.T) {
	out, _, err := execute(t, "", "ref", "--entity", "doc:Sandbox.Page", "mailto:john@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Typed = [true] Type = [doc] Reference = [Sandbox.Page]")
	assert.Contains(t, out, "Entity = [xwiki:Sandbox.Page]")
	assert.Contains(t, out, "Type = [mailto] Reference = [john@example.com]")
	assert.Contains(t, out, "Entity = [none]")

	out, _, err = execute(t, "", "ref", "--entity", "--base", "Sandbox.Page", "Other")
	require.NoError(t, err)
	assert.Contains(t, out, "Entity = [xwiki:Sandbox.Other]")
}

func TestQueryCommand(t *testing.T) {
	out, _, err := execute(t, "", "query", "where doc.space = 'Main'")
	require.NoError(t, err)
	assert.Contains(t, out, "select doc.fullName from XWikiDocument as doc")

	_, _, err = execute(t, "", "query", "--language", "sql", "select 1")
	assert.Error(t, err)
}

func TestComponentsCommand(t *testing.T) {
	out, _, err := execute(t, "", "components", "-o", "json")
	require.NoError(t, err)
	var infos []componentInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	hints := make(map[string]bool)
	for _, info := range infos {
		hints[info.Hint] = true
	}
	for _, hint := range []string{"xwiki/2.1", "markdown/1.2", "include", "macro"} {
		assert.True(t, hints[hint], hint)
	}

	out, _, err = execute(t, "", "components", "--role", "macro.Macro")
	require.NoError(t, err)
	assert.Contains(t, out, "include")
	assert.NotContains(t, out, "xwiki/2.1")

	out, _, err = execute(t, "", "components", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "hint: include")
}

func TestLinksCommand(t *testing.T) {
	src := "[[Other]]\n\n{{include reference=\"Sandbox.Included\"/}}\n\n[[https://example.com]]"
	out, _, err := execute(t, src, "links", "-f", "xwiki/2.1")
	require.NoError(t, err)
	assert.Contains(t, out, "xwiki:Main.Other")
	assert.Contains(t, out, "xwiki:Sandbox.Included")
	assert.NotContains(t, out, "example.com")
}

func TestDiffCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.xwiki", "first\n\nsecond")
	b := writeFile(t, dir, "b.xwiki", "first\n\nthird")
	same := writeFile(t, dir, "same.xwiki", "first\n\nsecond")

	out, _, err := execute(t, "", "diff", "-t", "plain/1.0", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "-second")
	assert.Contains(t, out, "+third")
	assert.Contains(t, out, "1 insertions(+), 1 deletions(-)")

	out, _, err = execute(t, "", "diff", "-t", "plain/1.0", a, same)
	require.NoError(t, err)
	assert.Contains(t, out, "no differences")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version", "--format", "json")
	require.NoError(t, err)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "is_release")

	out, _, err = execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wikicore")
}

func TestRerenderListener(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	root := t.TempDir()
	writeFile(t, root, "Main/Page.xwiki", "**v1**")

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	c, err := newContainer(cmd, map[string]interface{}{"documents.root": root})
	require.NoError(t, err)
	c.Observation.AddListener(rerenderListener(cmd, c, syntax.XHTML10))

	ctx := context.Background()
	ref := model.NewDocumentReference("xwiki", []string{"Main"}, "Page")
	c.Observation.Notify(ctx, event.DocumentCreatedEvent(ref.String()), nil, ref)
	assert.Contains(t, out.String(), "== created xwiki:Main.Page ==")
	assert.Contains(t, out.String(), "<strong>v1</strong>")

	writeFile(t, root, "Main/Page.xwiki", "**v2**")
	out.Reset()
	c.Observation.Notify(ctx, event.DocumentUpdatedEvent(ref.String()), nil, ref)
	assert.Contains(t, out.String(), "<strong>v2</strong>")

	out.Reset()
	c.Observation.Notify(ctx, event.DocumentDeletedEvent(ref.String()), nil, ref)
	assert.Contains(t, out.String(), "== deleted xwiki:Main.Page ==")
	assert.NotContains(t, out.String(), "<strong>")
}

func TestValidateChoice(t *testing.T) {
	assert.NoError(t, ValidateChoice("json", OutputFormats))
	err := ValidateChoice("jsn", OutputFormats)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Did you mean json?")
	assert.NoError(t, ValidateSyntax("event/1.0"))
}
