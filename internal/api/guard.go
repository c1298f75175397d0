package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/chronocare/chronocare-api/internal/identity"
)

// roleGuard resolves the calling account through the Identity Directory and
// enforces per-route role requirements. Token verification is upstream; the
// guard only answers "who is this and what are they".
type roleGuard struct {
	directory *identity.Directory
}

func newRoleGuard(directory *identity.Directory) *roleGuard {
	return &roleGuard{directory: directory}
}

// requireCaller extracts the caller account id, or writes a 401.
func (g *roleGuard) requireCaller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	callerID, ok := CallerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_caller", "X-Account-ID header is required")
		return uuid.Nil, false
	}
	return callerID, true
}

// resolveCaller extracts and resolves the caller, or writes 401/404.
func (g *roleGuard) resolveCaller(w http.ResponseWriter, r *http.Request) (*identity.Account, bool) {
	callerID, ok := g.requireCaller(w, r)
	if !ok {
		return nil, false
	}

	acct, err := g.directory.Resolve(r.Context(), callerID)
	if err != nil {
		writeError(w, http.StatusNotFound, "account_not_found", "caller account not found")
		return nil, false
	}
	return acct, true
}

// requireProvider ensures the caller is health personnel and returns their
// account id.
func (g *roleGuard) requireProvider(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	acct, ok := g.resolveCaller(w, r)
	if !ok {
		return uuid.Nil, false
	}
	if acct.Role != identity.RoleHealthPersonnel {
		writeError(w, http.StatusForbidden, "forbidden", "this operation is restricted to health personnel")
		return uuid.Nil, false
	}
	return acct.ID, true
}
