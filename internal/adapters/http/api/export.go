package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/okian/devilmatch/internal/adapters/tabular"
	"github.com/okian/devilmatch/internal/domain/filter"
	"github.com/okian/devilmatch/pkg/logger"
)

// HandleExport handles GET /export.csv: the filtered detail rows, uncapped,
// as UTF-8 CSV with a byte order mark.
func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	ds, err := s.deps.Export(r.Context(), filter.ParseQuery(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export_failed", Wrap("export", err))
		return
	}

	name := fmt.Sprintf("%s_%s.csv", s.exportPrefix, s.now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", contentDisposition(name))
	if err := tabular.WriteCSV(w, ds, true); err != nil {
		s.logger.Error(r.Context(), "write export", logger.Error(err))
	}
}

// contentDisposition names an attachment with an ASCII fallback and the
// RFC 5987 UTF-8 form.
func contentDisposition(name string) string {
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, asciiName(name), url.PathEscape(name))
}

func asciiName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r == '"' || r == '\\':
			out = append(out, '_')
		case r < 0x20 || r > 0x7e:
			if len(out) == 0 || out[len(out)-1] != '_' {
				out = append(out, '_')
			}
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
