package cmdutil

import (
	"errors"
	"fmt"

	"github.com/opmodel/refgraph/internal/build"
	"github.com/opmodel/refgraph/internal/config"
	"github.com/opmodel/refgraph/internal/core"
	oerrors "github.com/opmodel/refgraph/internal/errors"
	"github.com/opmodel/refgraph/internal/output"
)

// PrintBuildError prints a build failure in a user-friendly format.
// Entry failures are logged against their route; unsupported export patterns
// name the offending module.
func PrintBuildError(msg string, err error) {
	var entryErr *build.EntryError
	var starErr *core.UnsupportedExportPatternError
	var detailErr *oerrors.DetailError

	switch {
	case errors.As(err, &starErr):
		logger := output.Logger()
		if errors.As(err, &entryErr) {
			logger = output.RouteLogger(entryErr.Entry)
		}
		logger.Error(core.StarExportMessage, "module", starErr.Ident.Path)
	case errors.As(err, &detailErr):
		output.Error(msg)
		output.Details(detailErr.Error())
	case errors.As(err, &entryErr):
		output.RouteLogger(entryErr.Entry).Error(msg, "context", entryErr.Context, "error", entryErr.Err)
	default:
		output.Error(msg, "error", err)
	}
}

// PrintValidationErrors prints config validation failures, one per field.
func PrintValidationErrors(path string, errs config.ValidationErrors) {
	output.Error("config validation failed", "file", path)
	for _, e := range errs {
		output.Error(fmt.Sprintf("  %s: %s", e.Field, e.Message))
	}
}

// WriteRouteSummary logs one line per built route. With verbose set, the full
// route table is printed as well.
func WriteRouteSummary(result *build.Result, verbose bool) {
	for _, r := range result.Routes {
		output.Info(output.FormatRouteLine(r.Name, r.ClientChunks))
	}

	if !verbose || len(result.Routes) == 0 {
		return
	}

	rows := make([]output.RouteSummary, 0, len(result.Routes))
	for _, r := range result.Routes {
		rows = append(rows, output.RouteSummary{
			Route:     r.Name,
			Kind:      r.Kind,
			Chunks:    r.ClientChunks,
			CSSFiles:  r.CSSFiles,
			ServerOut: r.ServerChunk,
		})
	}
	output.Details(output.RenderRouteTable(rows))
}
