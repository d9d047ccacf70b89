package shared

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Payload is a decoded request body: field name to raw value. JSON numbers are
// kept as json.Number; repeated form fields become []any.
type Payload map[string]any

// DecodePayload reads a JSON or form-encoded request body. An empty body yields
// an empty payload. Malformed bodies are reported as a bad request.
func DecodePayload(w http.ResponseWriter, r *http.Request) (Payload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return decodeForm(r)
	default:
		return decodeJSON(r)
	}
}

func decodeJSON(r *http.Request) (Payload, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var p Payload
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return Payload{}, nil
		}
		return nil, domain.NewBadRequest("", "request body must be a JSON object")
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

func decodeForm(r *http.Request) (Payload, error) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, domain.NewBadRequest("", "malformed form body")
	}

	p := make(Payload, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) == 1 {
			p[key] = values[0]
			continue
		}
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = v
		}
		p[key] = list
	}
	return p, nil
}
