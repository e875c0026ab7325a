package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/devilmatch/internal/adapters/http/charts"
	service "github.com/okian/devilmatch/internal/app"
	"github.com/okian/devilmatch/internal/domain/filter"
	"github.com/okian/devilmatch/pkg/logger"
)

// Chart query parameters.
const (
	paramTheme  = "theme"
	paramWidth  = "w"
	paramHeight = "h"
	maxChartDim = 2000
)

// HandleChart handles GET /charts/{name}.svg for the selected view. Charts
// without data are served as a placeholder, never as an error.
func (s *Server) HandleChart(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".svg")
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind("chart", ErrNotFound, "%q", r.PathValue("file")))
		return
	}

	opts := chartOptions(r)
	scope := filter.ParseQuery(r.URL.Query()).Scope
	series, err := s.deps.Series(r.Context(), scope, service.Series(name))
	if err != nil {
		s.logger.Error(r.Context(), "compute chart series", logger.String("chart", name), logger.Error(err))
		series = &service.ChartSeries{}
	}

	var buf bytes.Buffer
	placeholder, err := charts.RenderOrPlaceholder(&buf, name, chartData(series), opts)
	if errors.Is(err, charts.ErrUnknownChart) {
		writeError(w, http.StatusNotFound, "not_found", WrapKind("chart", ErrNotFound, err))
		return
	}
	if placeholder {
		s.logger.Debug(r.Context(), "chart placeholder", logger.String("chart", name))
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func chartData(cs *service.ChartSeries) charts.Data {
	return charts.Data{
		Hourly:     cs.Trends.Hourly,
		Daily:      cs.Trends.Daily,
		Cumulative: cs.Trends.Cumulative,
		Ranks:      cs.Players.Ranks,
		Newcomers:  cs.Players.Newcomers,
		Durations:  cs.Matches.Durations,
		PowerDiff:  cs.Matches.PowerDiff,
	}
}

func chartOptions(r *http.Request) charts.Options {
	q := r.URL.Query()
	return charts.Options{
		Width:  dimension(q.Get(paramWidth)),
		Height: dimension(q.Get(paramHeight)),
		Theme:  charts.ParseTheme(q.Get(paramTheme)),
	}
}

// dimension reads a chart size; zero keeps the default.
func dimension(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 100 || n > maxChartDim {
		return 0
	}
	return n
}
