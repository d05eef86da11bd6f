package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/audit"
	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/httputil"
)

type userKey struct{}

func withUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func userFrom(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey{}).(domain.User)
	return u, ok
}

// authenticate resolves the bearer token of r.
func (s *Server) authenticate(r *http.Request) (domain.User, error) {
	token := httputil.BearerToken(r)
	if token == "" {
		return domain.User{}, &apperr.UnauthorizedError{Message: "missing bearer token"}
	}
	return s.deps.Auth.Verify(token)
}

// requireWrite rejects requests without a valid token, and tokens whose role
// may not modify records.
func (s *Server) requireWrite(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.authenticate(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !u.CanWrite() {
			s.writeError(w, r, &apperr.ForbiddenError{Message: fmt.Sprintf("role %q cannot modify records", u.Role)})
			return
		}
		next(w, r.WithContext(withUser(r.Context(), u)))
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := s.decodeBody(w, r, "login", &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.deps.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.recordSignInFailure(r, req.Username, err)
		s.writeError(w, r, err)
		return
	}
	s.record(r, audit.Entry{Event: audit.EventSignIn, Actor: resp.User.Username, Role: resp.User.Role, Action: "password"})
	s.log.Info("user logged in", "username", resp.User.Username)
	httputil.WriteData(w, http.StatusOK, resp)
}

// handleLogout always succeeds. Tokens are stateless and simply expire.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if u, err := s.authenticate(r); err == nil {
		s.record(r, audit.Entry{Event: audit.EventSignOut, Actor: u.Username, Role: u.Role})
		s.log.Info("user logged out", "username", u.Username)
	}
	httputil.WriteMessage(w, http.StatusOK, "logged out")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.authenticate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, u)
}

func (s *Server) handleWalletNonce(w http.ResponseWriter, r *http.Request) {
	var req domain.NonceRequest
	if err := s.decodeBody(w, r, "wallet_nonce", &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.deps.Auth.WalletNonce(r.Context(), req.Address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, resp)
}

func (s *Server) handleWalletLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.WalletLoginRequest
	if err := s.decodeBody(w, r, "wallet_login", &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.deps.Auth.WalletLogin(r.Context(), req)
	if err != nil {
		s.recordSignInFailure(r, req.Address, err)
		s.writeError(w, r, err)
		return
	}
	s.record(r, audit.Entry{Event: audit.EventSignIn, Actor: resp.User.Username, Role: resp.User.Role, Action: "wallet", Detail: resp.User.WalletAddress})
	s.log.Info("wallet login", "address", resp.User.WalletAddress, "username", resp.User.Username)
	httputil.WriteData(w, http.StatusOK, resp)
}

// recordSignInFailure audits rejected credentials. Malformed requests are
// not sign-in attempts and are skipped.
func (s *Server) recordSignInFailure(r *http.Request, actor string, err error) {
	if !apperr.IsUnauthorized(err) {
		return
	}
	s.record(r, audit.Entry{Event: audit.EventSignInFailed, Actor: actor, Detail: err.Error()})
}
