package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/electroworld/auth-service/internal/domain"
)

const maxBodyBytes = 1 << 20

// DecodeJSON decodes a JSON request body into dst.
// It rejects oversized bodies and multiple JSON values.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		return domain.ErrInvalidJSON(err)
	}

	// Disallow trailing data: {}{}
	if err := dec.Decode(&struct{}{}); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.ErrInvalidJSON(err)
	}

	return domain.ErrInvalidJSON(errors.New("multiple JSON values"))
}
