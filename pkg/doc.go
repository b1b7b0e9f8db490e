// Package pkg provides the core libraries for goalnet goal network layout.
//
// # Overview
//
// goalnet computes stable 2D positions for goal networks: directed graphs of
// goals linked by child and queue relationships. Positions are persisted so
// a network keeps its shape between sessions. The pkg directory is organized
// into three areas:
//
//  1. Domain: [network] (graph model and wire format) and [layout] (placement)
//  2. Output: [render] (DOT and SVG) and [pipeline] (load → layout → save → render)
//  3. Infrastructure: [store], [cache], [errors], [observability], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	Store (file, SQLite, Redis, MongoDB) or network JSON file
//	         ↓
//	    [network] package (graph, validation, task filtering)
//	         ↓
//	    [layout] package (pinned nodes kept, others placed by centrality)
//	         ↓
//	    [store] package (new positions saved back, failures reported)
//	         ↓
//	    [render] package (JSON, DOT, SVG)
//
// # Quick Start
//
//	g, _ := network.ReadGraphFile("goals.json")
//	res, _ := layout.New(nil, nil).Layout(ctx, g, layout.Options{SkipSave: true})
//	dot := render.ToDOT(res, render.Options{})
//	svg, _ := render.RenderSVG(ctx, dot)
//
// With persistence and caching, go through the pipeline runner:
//
//	st, _ := store.Open(ctx, store.Config{Backend: store.BackendSQLite, Path: "goals.db"})
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, st, logger)
//	result, _ := runner.Execute(ctx, userID, pipeline.Options{Formats: []string{"svg"}})
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [network]: https://pkg.go.dev/github.com/matzehuels/goalnet/pkg/network
// [layout]: https://pkg.go.dev/github.com/matzehuels/goalnet/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/goalnet/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/goalnet/pkg/pipeline
// [store]: https://pkg.go.dev/github.com/matzehuels/goalnet/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/goalnet/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/goalnet/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/goalnet/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/goalnet/pkg/buildinfo
package pkg
