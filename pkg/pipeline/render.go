package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/goalnet/pkg/layout"
	"github.com/matzehuels/goalnet/pkg/observability"
	"github.com/matzehuels/goalnet/pkg/render"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, res *layout.Result, formats []string, detailed bool) (artifacts map[string][]byte, err error) {
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, formats)
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, formats, time.Since(start), err)
	}()

	artifacts = make(map[string][]byte, len(formats))
	var dot string
	for _, format := range formats {
		var data []byte

		switch format {
		case FormatJSON:
			data, err = layout.MarshalResult(res)
		case FormatDOT:
			if dot == "" {
				dot = render.ToDOT(res, render.Options{Detailed: detailed})
			}
			data = []byte(dot)
		case FormatSVG:
			if dot == "" {
				dot = render.ToDOT(res, render.Options{Detailed: detailed})
			}
			data, err = render.RenderSVG(ctx, dot)
		default:
			err = fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
