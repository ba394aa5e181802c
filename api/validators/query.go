package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/google/uuid"
)

// ParseQueryUUID reads key as a uuid. A blank value returns uuid.Nil and ok=false.
func ParseQueryUUID(r *http.Request, key string) (uuid.UUID, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return uuid.Nil, false, nil
	}
	value, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a uuid").WithDetails(map[string]any{"field": key})
	}
	return value, true, nil
}
