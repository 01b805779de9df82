package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/conneroisu/wikicore/internal/di"
	"github.com/conneroisu/wikicore/internal/errors"
	"github.com/conneroisu/wikicore/internal/event"
	"github.com/conneroisu/wikicore/internal/model"
	"github.com/conneroisu/wikicore/internal/observation"
	"github.com/conneroisu/wikicore/internal/syntax"
)

var watchCmd = &cobra.Command{
	Use:     "watch <dir>",
	Aliases: []string{"w"},
	Short:   "Re-render documents when they change",
	Long: `Watch a directory of wiki documents and re-render each document that is
created or modified. Every change fires a document event that invalidates
the cached trees of the document and of the renderings including it.

Files map to documents by path: Space/Sub/Page.xwiki is xwiki:Space.Sub.Page.
Recognised extensions: .xwiki, .md, .html, .txt and .xml (xwikidoc export).

Examples:
  wikicore watch ./pages
  wikicore watch -t plain/1.0 ./pages`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchTo string

func init() {
	rootCmd.AddCommand(watchCmd)

	addSyntaxFlags(watchCmd, nil, &watchTo)
}

// watchListenerName names the listener printing re-rendered documents.
const watchListenerName = "cli/watch"

func runWatch(cmd *cobra.Command, args []string) error {
	c, err := newContainer(cmd, map[string]interface{}{
		"documents.root":  args[0],
		"documents.watch": true,
	})
	if err != nil {
		return err
	}
	if c.Documents == nil {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid, "not a directory: "+args[0])
	}
	to, err := outputSyntax(watchTo, c.Config.Renderer.DefaultSyntax)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	c.Observation.AddListener(rerenderListener(cmd, c, to))

	w, err := c.Watch(ctx)
	if err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintln(cmd.ErrOrStderr(), headerStyle.Render("watching "+c.Documents.Root()), dimStyle.Render("(Ctrl+C to stop)"))
	<-ctx.Done()
	return nil
}

// rerenderListener prints each created or updated document rendered in to.
// It is added after the cache listeners, so it sees invalidated caches.
func rerenderListener(cmd *cobra.Command, c *di.Container, to syntax.Syntax) observation.EventListener {
	var mu sync.Mutex
	return observation.ListenerFunc(watchListenerName, func(ctx context.Context, e event.Event, _, data interface{}) {
		de, ok := e.(event.DocumentEvent)
		if !ok {
			return
		}
		ref, _ := data.(*model.EntityReference)

		mu.Lock()
		defer mu.Unlock()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("== %s %s ==", de.Action, de.Reference)))
		if de.Action == event.DocumentDeleted || ref == nil {
			return
		}

		diagnostics := errors.NewCollector()
		rendered, err := c.RenderDocument(ctx, ref, to, diagnostics)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(err.Error()))
			return
		}
		printDiagnostics(cmd.ErrOrStderr(), diagnostics)
		fmt.Fprint(out, terminate(rendered))
	},
		event.DocumentCreatedEvent(""),
		event.DocumentUpdatedEvent(""),
		event.DocumentDeletedEvent(""),
	)
}
