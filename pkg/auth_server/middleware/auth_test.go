package middleware_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/tenantguard/tenantguard/pkg/auth_server/cert_auth"
	"github.com/tenantguard/tenantguard/pkg/auth_server/identity"
	"github.com/tenantguard/tenantguard/pkg/auth_server/middleware"
	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	"github.com/tenantguard/tenantguard/pkg/auth_server/token_auth"
	mock_cert_auth "github.com/tenantguard/tenantguard/test/mock/auth_server/cert_auth"
	mock_token_auth "github.com/tenantguard/tenantguard/test/mock/auth_server/token_auth"
)

type MiddlewareTestSuite struct {
	suite.Suite

	ctrl      *gomock.Controller
	certAuth  *mock_cert_auth.MockAuthenticator
	tokenAuth *mock_token_auth.MockAuthorizer
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}

func (s *MiddlewareTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.certAuth = mock_cert_auth.NewMockAuthenticator(s.ctrl)
	s.tokenAuth = mock_token_auth.NewMockAuthorizer(s.ctrl)
}

func (s *MiddlewareTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *MiddlewareTestSuite) TestCertAuthPopulatesIdentity() {
	var seen *identity.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = identity.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	s.certAuth.EXPECT().Authenticate(gomock.Any(), gomock.Any(), cert_auth.AuthenticateRequest{
		AuthorizationHeader: "Bearer abc",
		TenantSwitchHeader:  "acme",
	}, gomock.Any()).DoAndReturn(
		func(ctx context.Context, ts int64, req cert_auth.AuthenticateRequest, id *identity.Identity) error {
			id.UserID = "agent-1"
			id.TenantID = "acme"
			id.CallerType = identity.CallerTypeAgent
			return nil
		},
	)

	handler := middleware.NewCertAuth(s.certAuth, nil).Authenticate(next)
	r := httptest.NewRequest(http.MethodGet, "/identity", nil)
	r.Header.Set("Authorization", "Bearer abc")
	r.Header.Set(middleware.TenantSwitchHeader, "acme")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NotNil(seen)
	s.Assert().Equal("agent-1", seen.UserID)
	s.Assert().Equal("acme", seen.TenantID)
}

func (s *MiddlewareTestSuite) TestCertAuthOpaqueRejection() {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.FailNow("next handler must not run")
	})

	// Different failure kinds produce an identical response.
	failures := []error{
		fmt.Errorf("revoked%w", model.ErrCredentialRevoked),
		fmt.Errorf("unknown user%w", model.ErrIdentityUnknown),
		fmt.Errorf("bad tenant%w", model.ErrTenantUnauthorized),
	}
	for _, failure := range failures {
		s.certAuth.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(failure)

		handler := middleware.NewCertAuth(s.certAuth, nil).Authenticate(next)
		r := httptest.NewRequest(http.MethodGet, "/identity", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		s.Assert().Equal(http.StatusUnauthorized, w.Code)
		s.Assert().Equal("unauthorized", w.Body.String())
	}
}

func (s *MiddlewareTestSuite) TestCertAuthInternalError() {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.FailNow("next handler must not run")
	})

	s.certAuth.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("storage down"))

	handler := middleware.NewCertAuth(s.certAuth, nil).Authenticate(next)
	r := httptest.NewRequest(http.MethodGet, "/identity", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	s.Assert().Equal(http.StatusInternalServerError, w.Code)
}

func (s *MiddlewareTestSuite) TestTokenAuthPassesPolicy() {
	opts := token_auth.AuthorizeOption{RequireTenant: true, RequiredRoles: []string{"system_admin"}}

	var seen *identity.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = identity.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	s.tokenAuth.EXPECT().Authorize(gomock.Any(), gomock.Any(), token_auth.AuthorizeRequest{
		AuthorizationHeader: "Bearer token-1",
		TenantSwitchHeader:  "acme",
	}, opts, gomock.Any()).DoAndReturn(
		func(ctx context.Context, ts int64, req token_auth.AuthorizeRequest, o token_auth.AuthorizeOption, id *identity.Identity) error {
			id.UserID = "alice"
			id.TenantID = "acme"
			return nil
		},
	)

	handler := middleware.NewTokenAuth(s.tokenAuth, nil).Authorize(opts)(next)
	r := httptest.NewRequest(http.MethodGet, "/tenant", nil)
	r.Header.Set("Authorization", "Bearer token-1")
	r.Header.Set(middleware.TenantSwitchHeader, "acme")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NotNil(seen)
	s.Assert().Equal("alice", seen.UserID)
}

func (s *MiddlewareTestSuite) TestTokenAuthOpaqueRejection() {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.FailNow("next handler must not run")
	})

	s.tokenAuth.EXPECT().Authorize(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(
		fmt.Errorf("missing token%w", model.ErrCredentialMissing),
	)

	handler := middleware.NewTokenAuth(s.tokenAuth, nil).Authorize(token_auth.AuthorizeOption{})(next)
	r := httptest.NewRequest(http.MethodGet, "/tenant", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	s.Assert().Equal(http.StatusUnauthorized, w.Code)
	s.Assert().Equal("unauthorized", w.Body.String())
}

func (s *MiddlewareTestSuite) TestThrottleBlocksAfterRepeatedFailures() {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.FailNow("next handler must not run")
	})

	// Budget of two failures, refilled so slowly the test never sees it.
	throttle := middleware.NewFailureThrottle(0.001, 2)
	handler := middleware.NewTokenAuth(s.tokenAuth, throttle).Authorize(token_auth.AuthorizeOption{})(next)

	s.tokenAuth.EXPECT().Authorize(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(
		fmt.Errorf("bad token%w", model.ErrCredentialInvalid),
	).Times(2)

	for i := 0; i < 2; i++ {
		r := httptest.NewRequest(http.MethodGet, "/tenant", nil)
		r.RemoteAddr = "203.0.113.7:4444"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		s.Require().Equal(http.StatusUnauthorized, w.Code)
	}

	// Budget exhausted: the request is cut off before the authorizer runs.
	r := httptest.NewRequest(http.MethodGet, "/tenant", nil)
	r.RemoteAddr = "203.0.113.7:5555"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	s.Assert().Equal(http.StatusTooManyRequests, w.Code)

	// Another address is unaffected.
	s.tokenAuth.EXPECT().Authorize(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, ts int64, req token_auth.AuthorizeRequest, o token_auth.AuthorizeOption, id *identity.Identity) error {
			return nil
		},
	)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler = middleware.NewTokenAuth(s.tokenAuth, throttle).Authorize(token_auth.AuthorizeOption{})(ok)
	r = httptest.NewRequest(http.MethodGet, "/tenant", nil)
	r.RemoteAddr = "198.51.100.9:4444"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	s.Assert().Equal(http.StatusOK, w.Code)
}

func TestFailureThrottle(t *testing.T) {
	throttle := middleware.NewFailureThrottle(0.001, 3)

	if throttle.Blocked("10.0.0.1") {
		t.Fatal("fresh address must not be blocked")
	}

	// Successful requests never consume budget; only recorded failures do.
	throttle.RecordFailure("10.0.0.1")
	throttle.RecordFailure("10.0.0.1")
	if throttle.Blocked("10.0.0.1") {
		t.Fatal("address with remaining budget must not be blocked")
	}

	throttle.RecordFailure("10.0.0.1")
	if !throttle.Blocked("10.0.0.1") {
		t.Fatal("address with exhausted budget must be blocked")
	}

	if throttle.Blocked("10.0.0.2") {
		t.Fatal("budget is tracked per address")
	}
}
