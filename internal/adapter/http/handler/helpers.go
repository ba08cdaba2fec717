package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/iho/gobank/internal/adapter/http/dto"
	"github.com/iho/gobank/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// writeDomainError writes err with the status of its kind. Errors that are
// not categorized are reported without detail.
func writeDomainError(w http.ResponseWriter, err error) {
	writeJSON(w, mapDomainError(err), errorBody(err))
}

// writeTransactionError is writeDomainError for operations that may fail
// after the transaction was recorded; the record is returned with the error.
func writeTransactionError(w http.ResponseWriter, err error, txn *domain.Transaction) {
	body := errorBody(err)
	if txn != nil {
		resp := dto.TransactionFromDomain(txn)
		body.Transaction = &resp
	}
	writeJSON(w, mapDomainError(err), body)
}

func errorBody(err error) dto.ErrorResponse {
	de, ok := domain.AsError(err)
	if !ok || de.Kind == domain.KindInternal {
		return dto.ErrorResponse{Error: "INTERNAL", Message: "internal error"}
	}
	return dto.ErrorResponse{Error: de.Code, Message: err.Error()}
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	if errors.Is(err, domain.ErrCollaboratorTimeout) {
		return http.StatusGatewayTimeout
	}

	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	case domain.KindStateConflict:
		return http.StatusConflict
	case domain.KindCollaboratorUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.Wrapf(domain.ErrInvalidRequest, "%v", err)
	}
	return nil
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// pagination returns limit and offset clamped to sane bounds.
func pagination(r *http.Request) (int, int) {
	limit := parseIntQuery(r, "limit", defaultPageSize)
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := parseIntQuery(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// originIP returns the client address, honoring proxy headers.
func originIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, _ := strings.Cut(fwd, ","); strings.TrimSpace(first) != "" {
			return strings.TrimSpace(first)
		}
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// canView reports whether the caller may read account. Without an
// authenticated caller every account is visible.
func canView(r *http.Request, account *domain.Account) bool {
	p, ok := domain.PrincipalFrom(r.Context())
	if !ok || p.Role == domain.RoleAdmin || p.Role == domain.RoleViewer {
		return true
	}
	return p.UserID == account.OwnerID
}

// canOperate reports whether the caller may move money out of account.
func canOperate(r *http.Request, account *domain.Account) bool {
	p, ok := domain.PrincipalFrom(r.Context())
	if !ok || p.Role == domain.RoleAdmin {
		return true
	}
	return p.Role.CanMoveMoney() && p.UserID == account.OwnerID
}

func writeForbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "FORBIDDEN", domain.ErrInsufficientRole.Error())
}
