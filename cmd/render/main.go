package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/OFFIS-RIT/kiwi/explorer/internal/timing"
	"github.com/OFFIS-RIT/kiwi/explorer/internal/util"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/graph"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/loader"
	fsloader "github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/io"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/source"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger/console"

	"github.com/spf13/cobra"
)

var errUsage = errors.New("either --doc or both --nodes and --edges are required")

type options struct {
	doc       string
	nodes     string
	edges     string
	metadata  string
	mode      string
	types     string
	labels    string
	relations string
	distance  int
	direction int
	state     bool
}

func newRenderCmd(stdout, stderr io.Writer) *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:           "render",
		Short:         "Print the visible graph of a document under a filter state",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.doc == "" && (o.nodes == "" || o.edges == "") {
				return errUsage
			}
			return render(cmd.Context(), o, cmd.OutOrStdout())
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&o.doc, "doc", "", "graph document as JSON")
	f.StringVar(&o.nodes, "nodes", "", "nodes table (id,label,type)")
	f.StringVar(&o.edges, "edges", "", "edges table (source,target,label)")
	f.StringVar(&o.metadata, "metadata", "", "optional source document list as JSON")
	f.StringVar(&o.mode, "mode", "edges", "routes, explore or edges")
	f.StringVar(&o.types, "types", "", "comma separated categories, empty selects all")
	f.StringVar(&o.labels, "select", "", "comma separated entity labels")
	f.StringVar(&o.relations, "edges-select", "", "comma separated relationships, empty selects all")
	f.IntVar(&o.distance, "distance", 1, "explore distance threshold")
	f.IntVar(&o.direction, "direction", int(graph.DirectionBoth), "1 out, 2 in, 3 both")
	f.BoolVar(&o.state, "state", false, "print the filter state instead of the visible graph")
	return cmd
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func documentLoader(o options) loader.DocumentLoader {
	files := fsloader.NewIOGraphFileLoader("")
	if o.doc != "" {
		l, _ := source.New(source.Params{Key: o.doc, Format: string(loader.GraphFileTypeJSON), Files: files})
		return l
	}
	return source.CSVFiles(source.CSVFilesParams{
		ID:       o.nodes,
		Nodes:    o.nodes,
		Edges:    o.edges,
		Metadata: o.metadata,
		Files:    files,
	})
}

// apply configures the engine in cascade order: mode, categories, entities,
// relationships, then the explore settings.
func apply(e *graph.Engine, o options) error {
	mode, err := graph.ParseMode(o.mode)
	if err != nil {
		return err
	}
	if err := e.SetMode(mode); err != nil {
		return err
	}

	if types := splitList(o.types); len(types) == 0 {
		e.SelectAllNodeTypes(true)
	} else {
		for _, t := range types {
			if err := e.ToggleNodeType(t); err != nil {
				return err
			}
		}
	}
	for _, label := range splitList(o.labels) {
		if err := e.ToggleNodeLabel(label); err != nil {
			return err
		}
	}
	if relations := splitList(o.relations); len(relations) == 0 {
		e.SelectAllEdgeLabels(true)
	} else {
		for _, r := range relations {
			if err := e.ToggleEdgeLabel(r); err != nil {
				return err
			}
		}
	}

	if err := e.SetDirection(graph.Direction(o.direction)); err != nil {
		return err
	}
	return e.SetDistanceThreshold(o.distance)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := newRenderCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func render(ctx context.Context, o options, stdout io.Writer) error {
	done := timing.Track("load document", "doc", o.doc, "nodes", o.nodes)
	doc, err := documentLoader(o).LoadDocument(ctx)
	done()
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	engine := graph.NewEngine(graph.NewEngineParams{MaxEdges: util.GetEnvInt("MAX_EDGES", 0)})
	if err := engine.LoadGraphData(doc); err != nil {
		return err
	}
	if err := apply(engine, o); err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if o.state {
		return enc.Encode(engine.Snapshot())
	}
	view := engine.GetVisibleGraph()
	logger.Info("Rendered graph", "mode", o.mode, "nodes", len(view.VisibleNodes), "edges", len(view.MergedEdges), "message", view.Message)
	return enc.Encode(view)
}

func main() {
	util.LoadEnv()

	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		Writer: os.Stderr,
		Prefix: "render",
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		logger.Fatal("Render failed", "err", err)
	}
}
