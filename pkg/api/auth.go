package api

import (
	"context"
	"net/http"

	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/session"
)

// Auth is the authentication module.
type Auth struct {
	c *Client
}

// Login signs in with a username and password and stores the session.
func (a *Auth) Login(ctx context.Context, username, password string) (domain.LoginResponse, error) {
	data, err := a.c.call(ctx, http.MethodPost, PathLogin, nil, domain.LoginRequest{Username: username, Password: password})
	if err != nil {
		return domain.LoginResponse{}, err
	}
	resp, err := decodeOne[domain.LoginResponse](data)
	if err != nil {
		return resp, err
	}
	return resp, session.SaveLogin(a.c.session, resp)
}

// Logout tells the backend the session ended and clears the local session.
// The local cleanup runs even when the backend cannot be reached; a remote
// failure is only logged.
func (a *Auth) Logout(ctx context.Context) error {
	if session.LoggedIn(a.c.session) {
		if _, err := a.c.call(ctx, http.MethodPost, PathLogout, nil, nil); err != nil {
			a.c.log.Warn("logout request failed", "error", err)
		}
	}
	return session.Clear(a.c.session)
}

// Me returns the signed-in user.
func (a *Auth) Me(ctx context.Context) (domain.User, error) {
	data, err := a.c.call(ctx, http.MethodGet, PathMe, nil, nil)
	if err != nil {
		return domain.User{}, err
	}
	return decodeOne[domain.User](data)
}

// WalletNonce asks the backend for a challenge for address.
func (a *Auth) WalletNonce(ctx context.Context, address string) (domain.NonceResponse, error) {
	data, err := a.c.call(ctx, http.MethodPost, PathWalletNonce, nil, domain.NonceRequest{Address: address})
	if err != nil {
		return domain.NonceResponse{}, err
	}
	return decodeOne[domain.NonceResponse](data)
}

// WalletLogin exchanges a signed challenge for a session and stores it.
func (a *Auth) WalletLogin(ctx context.Context, req domain.WalletLoginRequest) (domain.LoginResponse, error) {
	data, err := a.c.call(ctx, http.MethodPost, PathWalletLogin, nil, req)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	resp, err := decodeOne[domain.LoginResponse](data)
	if err != nil {
		return resp, err
	}
	return resp, session.SaveLogin(a.c.session, resp)
}
