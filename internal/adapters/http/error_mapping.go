package httpadapter

import (
	"net/http"

	"github.com/audioscribe/audioscribe/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrConfiguration):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrFileNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
