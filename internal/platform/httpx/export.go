package httpx

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/AlagappanMk24/Gymunity/internal/platform/export"
)

// FormatFromQuery reads the format query parameter, defaulting to csv.
func FormatFromQuery(r *http.Request) (export.Format, error) {
	return export.ParseFormat(r.URL.Query().Get("format"))
}

// WriteExport renders t as a downloadable attachment named after prefix.
// Rendering happens before any header is written so failures still produce
// a JSON error.
func WriteExport(w http.ResponseWriter, f export.Format, prefix string, t export.Table) error {
	var buf bytes.Buffer
	if err := export.Write(&buf, f, t); err != nil {
		return err
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.FileName(prefix, time.Now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}
