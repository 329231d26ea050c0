package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/mosaic"
	"github.com/aretw0/mosaic/internal/presentation/graph"
	"github.com/aretw0/mosaic/internal/presentation/tui"
	"github.com/aretw0/mosaic/pkg/domain"
)

const replHelp = `Commands:
  nodes | ls                 list nodes
  edges                      list edges
  show <id>                  node details
  connect <source> <target>  open a pending connection
  confirm | y                confirm the pending connection
  cancel | n                 discard the open connection
  submit <instructions>      generate from the confirmed connection
  suggest [n]                list presets, or submit preset n
  generate <instructions>    generate an unconnected image
  add <image-url> [title]    place an image
  move <id> <x> <y>          move a node
  rm <id>                    remove a node and its edges
  graph                      mermaid flowchart
  status                     connection phase
  help | ?                   this help
  quit | exit | q            leave

While a connection is confirmed, any other line is sent as instructions.
`

// REPL drives a canvas from line-based input.
type REPL struct {
	canvas      *mosaic.Canvas
	in          io.Reader
	out         io.Writer
	render      func(string) (string, error)
	interactive bool
}

// REPLOption configures the REPL.
type REPLOption func(*REPL)

// WithRenderer sets the markdown renderer used by "show".
func WithRenderer(render func(string) (string, error)) REPLOption {
	return func(r *REPL) {
		r.render = render
	}
}

// WithInteractive enables prompts and colors.
func WithInteractive(interactive bool) REPLOption {
	return func(r *REPL) {
		r.interactive = interactive
	}
}

// NewREPL creates a REPL reading commands from in and writing to out.
func NewREPL(canvas *mosaic.Canvas, in io.Reader, out io.Writer, opts ...REPLOption) *REPL {
	r := &REPL{
		canvas: canvas,
		in:     in,
		out:    out,
		render: func(md string) (string, error) { return md, nil },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// errQuit ends the loop without error.
var errQuit = errors.New("quit")

// Run processes lines until EOF, a quit command or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	if r.interactive {
		printSystemMessage(r.out, "Canvas '%s' ready. Type 'help' for commands.", r.canvas.ID())
	}

	for {
		r.prompt()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			if err := r.Exec(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				fmt.Fprintf(r.out, "error: %v\n", err)
			}
		}
	}
}

func (r *REPL) prompt() {
	if !r.interactive {
		return
	}
	fmt.Fprintf(r.out, "[%s]> ", tui.Phase(r.canvas.Phase()))
}

// Exec runs a single command line.
func (r *REPL) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch strings.ToLower(cmd) {
	case "help", "?":
		fmt.Fprint(r.out, replHelp)
	case "quit", "exit", "q":
		return errQuit
	case "nodes", "ls":
		r.printNodes()
	case "edges":
		r.printEdges()
	case "status":
		r.printStatus()
	case "show":
		if len(args) != 1 {
			return errors.New("usage: show <id>")
		}
		return r.show(args[0])
	case "connect":
		if len(args) != 2 {
			return errors.New("usage: connect <source> <target>")
		}
		if err := r.canvas.Connect(ctx, args[0], args[1]); err != nil {
			return err
		}
		printSystemMessage(r.out, "Connect %s → %s? (confirm/cancel)", args[0], args[1])
	case "confirm", "y":
		if err := r.canvas.Confirm(ctx); err != nil {
			return err
		}
		printSystemMessage(r.out, "Describe what to generate (or 'suggest').")
	case "cancel", "n":
		if err := r.canvas.Cancel(ctx); err != nil {
			return err
		}
		printSystemMessage(r.out, "Connection cancelled.")
	case "submit":
		return r.submit(ctx, rest)
	case "suggest":
		return r.suggest(ctx, args)
	case "generate":
		node, err := r.canvas.Generate(ctx, rest)
		if err != nil {
			return err
		}
		printSystemMessage(r.out, "Added %s (%s).", node.ID, node.Data.Title)
	case "add":
		return r.add(ctx, args)
	case "move":
		return r.move(ctx, args)
	case "rm":
		if len(args) != 1 {
			return errors.New("usage: rm <id>")
		}
		if err := r.canvas.RemoveNode(ctx, args[0]); err != nil {
			return err
		}
		printSystemMessage(r.out, "Removed %s.", args[0])
	case "graph":
		fmt.Fprint(r.out, graph.GenerateMermaid(r.canvas.Snapshot()))
	default:
		if r.canvas.Phase() == domain.PhaseConfirming {
			return r.submit(ctx, line)
		}
		return fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
	return nil
}

func (r *REPL) submit(ctx context.Context, instructions string) error {
	if r.interactive {
		printSystemMessage(r.out, "Generating...")
	}
	node, err := r.canvas.Submit(ctx, instructions)
	if err != nil {
		return err
	}
	printSystemMessage(r.out, "Added %s (%s).", node.ID, node.Data.Title)
	return nil
}

func (r *REPL) suggest(ctx context.Context, args []string) error {
	suggestions := r.canvas.Suggestions()
	if len(args) == 0 {
		for i, s := range suggestions {
			fmt.Fprintf(r.out, "  %d. %s\n", i+1, s)
		}
		return nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(suggestions) {
		return fmt.Errorf("suggestion must be between 1 and %d", len(suggestions))
	}
	return r.submit(ctx, suggestions[n-1])
}

func (r *REPL) add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: add <image-url> [title]")
	}
	title := "Uploaded Image"
	if len(args) > 1 {
		title = strings.Join(args[1:], " ")
	}
	node, err := r.canvas.AddNode(ctx, domain.Node{
		Position: mosaic.DirectPosition,
		Data: domain.NodeData{
			Title:    title,
			ImageURL: args[0],
			Template: domain.TemplateCustom,
			Width:    300,
			Height:   300,
		},
	})
	if err != nil {
		return err
	}
	printSystemMessage(r.out, "Added %s.", node.ID)
	return nil
}

func (r *REPL) move(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: move <id> <x> <y>")
	}
	x, errX := strconv.ParseFloat(args[1], 64)
	y, errY := strconv.ParseFloat(args[2], 64)
	if errX != nil || errY != nil {
		return errors.New("coordinates must be numbers")
	}
	return r.canvas.MoveNode(ctx, args[0], domain.Position{X: x, Y: y})
}

func (r *REPL) show(id string) error {
	node, ok := r.canvas.Node(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	out, err := r.render(tui.NodeMarkdown(node))
	if err != nil {
		return err
	}
	fmt.Fprint(r.out, out)
	return nil
}

func (r *REPL) printNodes() {
	nodes := r.canvas.Snapshot().Nodes
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	for _, n := range nodes {
		badge := n.Data.Template.Decoration().Glyph
		if r.interactive {
			badge = tui.Badge(n.Data.Template)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t(%.0f, %.0f)\n", n.ID, badge, n.Data.Title, n.Position.X, n.Position.Y)
	}
	tw.Flush()
}

func (r *REPL) printEdges() {
	edges := r.canvas.Snapshot().Edges
	if len(edges) == 0 {
		fmt.Fprintln(r.out, "no edges")
		return
	}
	for _, e := range edges {
		fmt.Fprintln(r.out, tui.EdgeLine(e))
	}
}

func (r *REPL) printStatus() {
	snap := r.canvas.Snapshot()
	fmt.Fprintf(r.out, "phase: %s\n", snap.Phase)
	if snap.Connection != nil {
		fmt.Fprintf(r.out, "connection: %s → %s\n", snap.Connection.Source, snap.Connection.Target)
	}
	for _, g := range snap.Generating {
		fmt.Fprintf(r.out, "generating: %s → %s\n", g.Source, g.Target)
	}
}
