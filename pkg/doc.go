// Package pkg provides the libraries behind organigram.
//
// # Overview
//
// Organigram turns a flat table of organizational units, each pointing at its
// parent, into a left-to-right organization chart. The packages split along
// the stages of a run:
//
//	source (SQL, MongoDB, file) -> records
//	       ↓
//	[hierarchy] Index: one rooted tree, children in input order
//	       ↓
//	[geometry] Plan: canvas and node sizes from max level and unit count
//	       ↓
//	[layout] Build: column per level, siblings centred on their parent
//	       ↓
//	[render/sink] SVG (plus JSON, PNG, PDF), [render/nodelink], [render/text]
//	       ↓
//	[io] WriteFileAtomic
//
// [pipeline] runs these stages; the CLI and [server] both go through it.
//
// # Quick Start
//
//	records := []hierarchy.Record{
//	    {ID: 1, Name: "HQ", Type: "Command", Depth: 1},
//	    {ID: 2, Name: "North", Type: "Region", Depth: 2, ParentID: hierarchy.ParentRef(1)},
//	}
//	tree, err := hierarchy.Index(records)
//	if err != nil {
//	    return err
//	}
//	cfg := geometry.Plan(tree.MaxDepth(), tree.Len())
//	l, err := layout.Build(tree, cfg)
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(l, cfg, sink.WithTitle("Organization"))
//	_, err = io.WriteFileAtomic("organigram.svg", svg)
//
// # Supporting Packages
//
//   - [source]: source URLs, record caching and connection retry
//   - [cache]: file, Redis and null caches for fetched records
//   - [config]: the optional TOML configuration file
//   - [observability]: hooks around fetch, layout, render, cache and HTTP
//   - [errors]: structured error codes, including the data-integrity codes
//
// [hierarchy]: https://pkg.go.dev/github.com/matzehuels/organigram/pkg/hierarchy
// [geometry]: https://pkg.go.dev/github.com/matzehuels/organigram/pkg/geometry
// [layout]: https://pkg.go.dev/github.com/matzehuels/organigram/pkg/layout
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/organigram/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/organigram/pkg/render/nodelink
// [render/text]: https://pkg.go.dev/github.com/matzehuels/organigram/pkg/render/text
// [io]: https://pkg.go.dev/github.com/matzehuels/organigram/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/organigram/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/organigram/pkg/server
// [source]: https://pkg.go.dev/github.com/matzehuels/organigram/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/organigram/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/organigram/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/organigram/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/organigram/pkg/errors
package pkg
