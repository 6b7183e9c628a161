package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/organigram/pkg/geometry"
	"github.com/matzehuels/organigram/pkg/hierarchy"
	"github.com/matzehuels/organigram/pkg/layout"
	"github.com/matzehuels/organigram/pkg/render/nodelink"
	"github.com/matzehuels/organigram/pkg/render/sink"
	"github.com/matzehuels/organigram/pkg/render/text"
)

// Render generates output artifacts in the requested formats. Options must
// have been validated.
func Render(ctx context.Context, t *hierarchy.Tree, l layout.Layout, cfg geometry.Config, opts Options) (map[string][]byte, error) {
	svgOpts := SVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	dotSource := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(t, nodelink.Options{Title: opts.Title, MaxLabel: opts.MaxLabel})
		}
		return dot
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, cfg, svgOpts...)
		case FormatJSON:
			jsonOpts := []sink.JSONOption{}
			if opts.Title != "" {
				jsonOpts = append(jsonOpts, sink.WithJSONTitle(opts.Title))
			}
			data, err = sink.RenderJSON(l, cfg, jsonOpts...)
		case FormatDOT:
			data = []byte(dotSource())
		case FormatNodelink:
			data, err = nodelink.RenderSVG(ctx, dotSource())
		case FormatPNG:
			data, err = sink.RenderPNG(l, cfg, sink.WithScale(opts.PNGScale), sink.WithPNGSVGOptions(svgOpts...))
		case FormatPDF:
			data, err = sink.RenderPDF(l, cfg, sink.WithPDFSVGOptions(svgOpts...))
		case FormatText:
			data, err = text.Render(t, text.Options{MaxLabel: opts.MaxLabel})
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// SVGOptions translates pipeline options into SVG renderer options.
func SVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	if opts.MaxLabel > 0 {
		svgOpts = append(svgOpts, sink.WithMaxLabel(opts.MaxLabel))
	}
	if opts.LevelLabel != "" {
		svgOpts = append(svgOpts, sink.WithLevelLabel(opts.LevelLabel))
	}
	return svgOpts
}
