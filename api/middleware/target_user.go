package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// TargetUserID resolves the user a request acts on. The user_id query
// parameter defaults to the caller and only admins may name another user.
func TargetUserID(r *http.Request) (int64, error) {
	caller := UserIDFromContext(r.Context())
	if caller == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}

	raw := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if raw == "" {
		return caller, nil
	}
	target, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || target <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user_id must be a positive integer").WithDetails(map[string]any{"field": "user_id"})
	}
	if target != caller && RoleFromContext(r.Context()) != string(enums.RoleAdmin) {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "cannot act on another user")
	}
	return target, nil
}
