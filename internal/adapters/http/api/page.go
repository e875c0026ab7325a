package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/devilmatch/internal/adapters/http/charts"
	service "github.com/okian/devilmatch/internal/app"
	"github.com/okian/devilmatch/internal/domain/aggregate"
	"github.com/okian/devilmatch/internal/domain/filter"
	"github.com/okian/devilmatch/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"pct":        func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
	"num":        func(f float64) string { return fmt.Sprintf("%.2f", f) },
	"secs":       func(f float64) string { return fmt.Sprintf("%.0f 秒", f) },
	"signed":     func(f float64) string { return fmt.Sprintf("%+.0f 秒", f) },
	"opt":        optional,
	"datetime":   datetime,
	"binLabel":   func(b aggregate.Bin) string { return fmt.Sprintf("%.1f~%.1f", b.Lower, b.Upper) },
	"heatStyle":  heatStyle,
	"selected":   contains,
	"chartTitle": charts.Title,
	"add":        func(a, b int) int { return a + b },
}).ParseFS(templateFS, "templates/page.html"))

type flashMessage struct {
	Level   string
	Message string
}

type pageData struct {
	VM     *service.ViewModel
	Flash  *flashMessage
	Query  template.URL
	Theme  string
	Charts struct{ Trends, Players, Matches []string }
}

// ChartURL is the image source of a chart for the current selection.
func (p pageData) ChartURL(name string) string {
	return "/charts/" + name + ".svg?" + string(p.Query)
}

// selection is the page state a link or redirect carries: the parsed query
// plus the theme when it is not the default.
func selection(params url.Values) url.Values {
	v := filter.ParseQuery(params).Values()
	if charts.ParseTheme(params.Get(paramTheme)) == charts.ThemeDark {
		v.Set(paramTheme, string(charts.ThemeDark))
	}
	return v
}

// HandlePage handles GET / with the dashboard page.
func (s *Server) HandlePage(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	vm, err := s.deps.Render(r.Context(), service.Request{Query: filter.ParseQuery(params)})
	if err != nil {
		s.logger.Error(r.Context(), "render page", logger.Error(err))
		http.Error(w, "页面渲染失败", http.StatusInternalServerError)
		return
	}

	data := pageData{
		VM:    vm,
		Flash: flashFrom(params.Get(paramFlash), params.Get(paramReason)),
		Query: template.URL(selection(params).Encode()), //nolint:gosec // encoded by url.Values
		Theme: string(charts.ParseTheme(params.Get(paramTheme))),
	}
	data.Charts.Trends = []string{charts.Hourly, charts.Cumulative, charts.Daily}
	if vm.Schema.HasRank {
		data.Charts.Players = append(data.Charts.Players, charts.Ranks)
	}
	if vm.Schema.HasNewcomerTier {
		data.Charts.Players = append(data.Charts.Players, charts.Newcomers)
	}
	data.Charts.Matches = []string{charts.Durations}
	if vm.Schema.HasPowerDiff {
		data.Charts.Matches = append(data.Charts.Matches, charts.PowerDiff)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error(r.Context(), "execute page template", logger.Error(err))
		http.Error(w, "页面渲染失败", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func flashFrom(code, reason string) *flashMessage {
	switch code {
	case flashUploaded:
		return &flashMessage{Level: service.NoticeInfo, Message: "文件上传成功，数据已更新"}
	case flashRefreshed:
		return &flashMessage{Level: service.NoticeInfo, Message: "数据已刷新"}
	case flashUploadFail:
		return &flashMessage{Level: service.NoticeError, Message: "上传失败: " + reason}
	}
	return nil
}

func optional(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *p)
}

func datetime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func heatStyle(count, top int) template.CSS {
	return template.CSS("background:" + charts.HeatColor(count, top) + ";color:" + charts.HeatTextColor(count, top))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
