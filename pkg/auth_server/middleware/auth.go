// Package middleware adapts the certificate authenticator and the token
// authorizer to net/http. Rejections are opaque to the caller; the detailed
// reason goes to the log only.
package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tenantguard/tenantguard/pkg/auth_server/cert_auth"
	"github.com/tenantguard/tenantguard/pkg/auth_server/identity"
	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	"github.com/tenantguard/tenantguard/pkg/auth_server/token_auth"
)

// TenantSwitchHeader selects the tenant a request acts within.
const TenantSwitchHeader = "X-Tenant-Id"

type CertAuth struct {
	auth     cert_auth.Authenticator
	throttle *FailureThrottle
}

func NewCertAuth(auth cert_auth.Authenticator, throttle *FailureThrottle) *CertAuth {
	return &CertAuth{
		auth:     auth,
		throttle: throttle,
	}
}

func (a *CertAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := remoteHost(r.RemoteAddr)
		if a.throttle != nil && a.throttle.Blocked(addr) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("too many failed attempts"))
			return
		}

		ctx, id := identity.NewContext(r.Context())
		ts := time.Now().Unix()
		req := cert_auth.AuthenticateRequest{
			AuthorizationHeader: r.Header.Get("Authorization"),
			TenantSwitchHeader:  r.Header.Get(TenantSwitchHeader),
		}
		if err := a.auth.Authenticate(ctx, ts, req, id); err != nil {
			rejectOpaque(w, "CertAuth", addr, a.throttle, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type TokenAuth struct {
	auth     token_auth.Authorizer
	throttle *FailureThrottle
}

func NewTokenAuth(auth token_auth.Authorizer, throttle *FailureThrottle) *TokenAuth {
	return &TokenAuth{
		auth:     auth,
		throttle: throttle,
	}
}

// Authorize returns a middleware enforcing the given policy. Each protected
// route declares its own policy, so one TokenAuth serves routes with
// different tenant and role requirements.
func (a *TokenAuth) Authorize(opts token_auth.AuthorizeOption) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := remoteHost(r.RemoteAddr)
			if a.throttle != nil && a.throttle.Blocked(addr) {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte("too many failed attempts"))
				return
			}

			ctx, id := identity.NewContext(r.Context())
			ts := time.Now().Unix()
			req := token_auth.AuthorizeRequest{
				AuthorizationHeader: r.Header.Get("Authorization"),
				TenantSwitchHeader:  r.Header.Get(TenantSwitchHeader),
			}
			if err := a.auth.Authorize(ctx, ts, req, opts, id); err != nil {
				rejectOpaque(w, "TokenAuth", addr, a.throttle, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejectOpaque answers every authentication or authorization failure with the
// same body so probing callers cannot learn which check rejected them. The
// reason is kept server-side in the log.
func rejectOpaque(w http.ResponseWriter, component, addr string, throttle *FailureThrottle, err error) {
	if errors.Is(err, model.ErrAuthError) {
		logrus.Infof("%s: rejected request from %s: %v", component, addr, err)
		if throttle != nil {
			throttle.RecordFailure(addr)
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("unauthorized"))
		return
	}

	logrus.Errorf("%s: internal error handling request from %s: %v", component, addr, err)
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte("internal server error"))
}
