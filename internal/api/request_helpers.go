package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/query"
)

// getPathID extracts a non-empty id from the URL path. Format checks happen in
// the service so that every caller reports malformed ids the same way.
func getPathID(r *http.Request, paramName string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, paramName))
	if id == "" {
		return "", domain.NewBadRequest(paramName, "is required")
	}
	return id, nil
}

// listOptions parses the list query of r. A zero default limit means the
// collection is unbounded.
func listOptions(r *http.Request, defaultLimit int) (*query.Options, error) {
	if defaultLimit <= 0 {
		defaultLimit = query.NoLimit
	}
	return query.Parse(r.URL.Query(), defaultLimit)
}

// listResponseData renders a list result: the count in count mode, the
// records otherwise.
func listResponseData(count *int64, records any) any {
	if count != nil {
		return *count
	}
	return records
}
