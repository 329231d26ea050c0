package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mosaic"
	"github.com/aretw0/mosaic/pkg/domain"
)

func runScript(t *testing.T, script string) (*mosaic.Canvas, string) {
	t.Helper()
	c, err := mosaic.Open(context.Background(), "repl")
	require.NoError(t, err)

	var out bytes.Buffer
	repl := NewREPL(c, strings.NewReader(script), &out)
	require.NoError(t, repl.Run(context.Background()))
	return c, out.String()
}

func TestREPL_ConnectionFlow(t *testing.T) {
	c, out := runScript(t, strings.Join([]string{
		"connect 1 2",
		"confirm",
		"blend the castle with the characters",
		"edges",
		"quit",
		"nodes",
	}, "\n"))

	assert.Contains(t, out, "Connect 1 → 2?")
	assert.Contains(t, out, "Added generated-")
	assert.Contains(t, out, "1 → 2")
	assert.NotContains(t, out, "Minecraft Castle", "commands after quit must not run")

	snap := c.Snapshot()
	assert.Equal(t, domain.PhaseIdle, snap.Phase)
	assert.Len(t, snap.Nodes, 5)
	require.Len(t, snap.Edges, 1)
	assert.False(t, snap.Edges[0].Pending())
}

func TestREPL_Errors(t *testing.T) {
	c, out := runScript(t, strings.Join([]string{
		"connect 1 1",
		"confirm",
		"bogus",
		"connect 1 2",
		"connect 3 4",
		"cancel",
		"move 1 x y",
	}, "\n"))

	assert.Contains(t, out, "error: "+domain.ErrSelfLoop.Error())
	assert.Contains(t, out, "error: "+domain.ErrNoConnection.Error())
	assert.Contains(t, out, `unknown command "bogus"`)
	assert.Contains(t, out, "error: "+domain.ErrConnectionInProgress.Error())
	assert.Contains(t, out, "coordinates must be numbers")
	assert.Equal(t, domain.PhaseIdle, c.Phase())
	assert.Empty(t, c.Snapshot().Edges)
}

func TestREPL_NodeCommands(t *testing.T) {
	c, out := runScript(t, strings.Join([]string{
		"add https://img.test/a.png My Upload",
		"move 4 10 20",
		"rm 3",
		"show 1",
		"suggest",
		"generate a lighthouse",
		"graph",
	}, "\n"))

	assert.Contains(t, out, "# Minecraft Castle")
	assert.Contains(t, out, "1. "+domain.Suggestions[0])
	assert.Contains(t, out, "graph LR")

	_, ok := c.Node("3")
	assert.False(t, ok)
	moved, _ := c.Node("4")
	assert.Equal(t, domain.Position{X: 10, Y: 20}, moved.Position)

	var titles []string
	for _, n := range c.Snapshot().Nodes {
		titles = append(titles, n.Data.Title)
	}
	assert.Contains(t, titles, "My Upload")
	assert.Len(t, titles, 5)
}

func TestREPL_SuggestSubmits(t *testing.T) {
	c, out := runScript(t, "connect 2 4\ny\nsuggest 9\nsuggest 2\n")

	assert.Contains(t, out, "suggestion must be between 1 and 4")
	require.Len(t, c.Snapshot().Nodes, 5)
	for _, n := range c.Snapshot().Nodes {
		if n.Data.Template == domain.TemplateGenerated {
			assert.Equal(t, domain.Suggestions[1], n.Data.Prompt)
		}
	}
}

func TestREPL_StopsOnCancel(t *testing.T) {
	c, err := mosaic.Open(context.Background(), "repl")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blocking := strings.NewReader("")
	repl := NewREPL(c, blocking, &bytes.Buffer{})
	err = repl.Run(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
