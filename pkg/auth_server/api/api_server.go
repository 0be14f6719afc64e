package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/tenantguard/tenantguard/pkg/auth_server/audit"
	"github.com/tenantguard/tenantguard/pkg/auth_server/cache"
	"github.com/tenantguard/tenantguard/pkg/auth_server/cert_auth"
	"github.com/tenantguard/tenantguard/pkg/auth_server/cert_authority"
	"github.com/tenantguard/tenantguard/pkg/auth_server/identity"
	"github.com/tenantguard/tenantguard/pkg/auth_server/identity_provider"
	"github.com/tenantguard/tenantguard/pkg/auth_server/middleware"
	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	"github.com/tenantguard/tenantguard/pkg/auth_server/registry"
	"github.com/tenantguard/tenantguard/pkg/auth_server/storage"
	"github.com/tenantguard/tenantguard/pkg/auth_server/storage/postgres"
	"github.com/tenantguard/tenantguard/pkg/auth_server/token_auth"
	"github.com/tenantguard/tenantguard/pkg/util"
)

type APIConfig struct {
	Database         util.PostgresDatabaseConfig       `yaml:"database"`
	LocalAddress     string                            `yaml:"local_address"`
	RootKeyContainer cert_authority.RootMaterialConfig `yaml:"root_key_container"`
	IdentityProvider identity_provider.Config          `yaml:"identity_provider"`

	// RedisCache selects the shared validation-cache backend. With an empty
	// address every replica keeps its own in-memory cache.
	RedisCache cache.RedisCacheConfig `yaml:"redis_cache"`

	// Failed-probe throttling per remote address. Zero values disable it.
	FailureRatePerSecond float64 `yaml:"failure_rate_per_second"`
	FailureBurst         int     `yaml:"failure_burst"`
}

type API struct {
	ca       cert_authority.CertAuthority
	certAuth cert_auth.Authenticator
	registry registry.Registry
	sink     *audit.BackgroundSink

	httpServer *http.Server
}

func NewAPIWithConfig(cfg APIConfig) (*API, error) {
	authStorage, err := postgres.NewStorageWithConfig(cfg.Database)
	if err != nil {
		logrus.Errorf("failed to create storage: %v", err)
		return nil, err
	}

	var validationCache cache.ValidationCache
	if cfg.RedisCache.Address != "" {
		validationCache, err = cache.NewRedisCache(cfg.RedisCache)
		if err != nil {
			logrus.Errorf("failed to connect validation cache: %v", err)
			return nil, err
		}
	} else {
		validationCache = cache.NewMemoryCache()
	}

	provider, err := identity_provider.NewProvider(cfg.IdentityProvider)
	if err != nil {
		logrus.Errorf("failed to create identity provider: %v", err)
		return nil, err
	}

	sink := audit.NewBackgroundSink(1, 1024)
	rootProvider := cert_authority.NewRootProvider(cfg.RootKeyContainer)
	ca := cert_authority.NewCertAuthority(authStorage, authStorage, rootProvider, sink)
	certAuth := cert_auth.NewAuthenticator(authStorage, rootProvider, validationCache, sink)
	authorizer := token_auth.NewAuthorizer(provider, authStorage, validationCache, sink)
	reg := registry.NewRegistry(authStorage)

	var throttle *middleware.FailureThrottle
	if cfg.FailureRatePerSecond > 0 && cfg.FailureBurst > 0 {
		throttle = middleware.NewFailureThrottle(cfg.FailureRatePerSecond, cfg.FailureBurst)
	}
	tokenAuth := middleware.NewTokenAuth(authorizer, throttle)

	api, err := NewAPIWithController(ca, certAuth, tokenAuth, reg, throttle, cfg.LocalAddress)
	if err != nil {
		return nil, err
	}
	api.sink = sink
	return api, nil
}

func NewAPIWithController(
	ca cert_authority.CertAuthority,
	certAuth cert_auth.Authenticator,
	tokenAuth *middleware.TokenAuth,
	reg registry.Registry,
	throttle *middleware.FailureThrottle,
	localAddress string,
) (*API, error) {
	apiServer := &API{
		ca:       ca,
		certAuth: certAuth,
		registry: reg,
	}

	adminPolicy := token_auth.AuthorizeOption{RequiredRoles: []string{model.SystemAdminRole}}

	r := mux.NewRouter()
	r.HandleFunc("/root_cert", apiServer.getRootCert).Methods(http.MethodGet)

	adminRouter := r.NewRoute().Subrouter()
	adminRouter.Use(tokenAuth.Authorize(adminPolicy))
	adminRouter.HandleFunc("/cert", apiServer.issueCert).Methods(http.MethodPost)
	adminRouter.HandleFunc("/cert", apiServer.listCerts).Methods(http.MethodGet)
	adminRouter.HandleFunc("/cert/{thumbprint}", apiServer.getCert).Methods(http.MethodGet)
	adminRouter.HandleFunc("/cert/{thumbprint}", apiServer.revokeCert).Methods(http.MethodDelete)
	adminRouter.HandleFunc("/tenant", apiServer.createTenant).Methods(http.MethodPost)
	adminRouter.HandleFunc("/tenant", apiServer.listTenants).Methods(http.MethodGet)
	adminRouter.HandleFunc("/tenant/{id}", apiServer.getTenant).Methods(http.MethodGet)
	adminRouter.HandleFunc("/tenant/{id}", apiServer.updateTenant).Methods(http.MethodPost)
	adminRouter.HandleFunc("/tenant/{id}/status", apiServer.setTenantStatus).Methods(http.MethodPost)
	adminRouter.HandleFunc("/user", apiServer.createUser).Methods(http.MethodPost)
	adminRouter.HandleFunc("/user", apiServer.listUsers).Methods(http.MethodGet)
	adminRouter.HandleFunc("/user/{id}", apiServer.getUser).Methods(http.MethodGet)
	adminRouter.HandleFunc("/user/{id}", apiServer.updateUser).Methods(http.MethodPost)
	adminRouter.HandleFunc("/user/{id}/status", apiServer.setUserStatus).Methods(http.MethodPost)

	agentRouter := r.NewRoute().Subrouter()
	agentRouter.Use(middleware.NewCertAuth(certAuth, throttle).Authenticate)
	agentRouter.HandleFunc("/identity", apiServer.getIdentity).Methods(http.MethodGet)

	apiServer.httpServer = &http.Server{
		Addr:    localAddress,
		Handler: r,
	}
	return apiServer, nil
}

func (a *API) Run() error {
	err := a.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *API) Close(ctx context.Context) error {
	a.httpServer.SetKeepAlivesEnabled(false)
	err := a.httpServer.Shutdown(ctx)
	if a.sink != nil {
		a.sink.Close()
	}
	return err
}

func (a *API) getRootCert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rootCert, err := a.ca.GetRootCertificate(ctx)
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := map[string]string{
		"subject":    rootCert.Subject.String(),
		"not_before": rootCert.NotBefore.Format(time.RFC3339),
		"not_after":  rootCert.NotAfter.Format(time.RFC3339),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logrus.Warnf("getRootCert failed to encode/write response: %v", err)
	}
}

func (a *API) issueCert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req cert_authority.IssueClientCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Requester = requester(ctx)

	result, err := a.ca.IssueClientCertificate(ctx, time.Now().Unix(), req)
	if errors.Is(err, model.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, model.ErrTenantNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logrus.Warnf("issueCert failed to encode/write response: %v", err)
	}
}

func (a *API) listCerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := storage.ListCertsRequest{Limit: 20}
	if !parsePagination(w, r, &req.Offset, &req.Limit) {
		return
	}
	if tenantID := r.URL.Query().Get("tenant_id"); tenantID != "" {
		req.TenantID = tenantID
	}
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		req.UserID = userID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Statuses = []model.CertStatus{model.CertStatus(status)}
	}

	result, err := a.ca.ListCertificates(ctx, req)
	if errors.Is(err, model.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logrus.Warnf("listCerts failed to encode/write response: %v", err)
	}
}

func (a *API) getCert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	thumbprint := mux.Vars(r)["thumbprint"]

	result, err := a.ca.ListCertificates(ctx, storage.ListCertsRequest{
		Limit:       1,
		Thumbprints: []string{thumbprint},
	})
	if errors.Is(err, model.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}
	if len(result.Certs) == 0 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result.Certs[0]); err != nil {
		logrus.Warnf("getCert failed to encode/write response: %v", err)
	}
}

func (a *API) revokeCert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := cert_auth.RevokeCertificateRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Requester = requester(ctx)
	req.Thumbprint = mux.Vars(r)["thumbprint"]

	revoked, err := a.certAuth.Revoke(ctx, time.Now().Unix(), req)
	if errors.Is(err, model.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]bool{"revoked": revoked}); err != nil {
		logrus.Warnf("revokeCert failed to encode/write response: %v", err)
	}
}

func (a *API) createTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registry.CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Requester = requester(ctx)

	result, err := a.registry.CreateTenant(ctx, time.Now().Unix(), req)
	if errors.Is(err, model.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, model.ErrTenantAlreadyExists) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logrus.Warnf("createTenant failed to encode/write response: %v", err)
	}
}

func (a *API) listTenants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := storage.ListTenantsRequest{Limit: 20}
	if !parsePagination(w, r, &req.Offset, &req.Limit) {
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Statuses = []model.TenantStatus{model.TenantStatus(status)}
	}

	result, err := a.registry.ListTenants(ctx, req)
	if errors.Is(err, model.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logrus.Warnf("listTenants failed to encode/write response: %v", err)
	}
}

func (a *API) getTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := mux.Vars(r)["id"]

	result, err := a.registry.ListTenants(ctx, storage.ListTenantsRequest{
		Limit: 1,
		IDs:   []string{tenantID},
	})
	if errors.Is(err, model.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}
	if len(result.Tenants) == 0 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result.Tenants[0]); err != nil {
		logrus.Warnf("getTenant failed to encode/write response: %v", err)
	}
}

func (a *API) updateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := registry.UpdateTenantRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Requester = requester(ctx)
	req.TenantID = mux.Vars(r)["id"]

	result, err := a.registry.UpdateTenant(ctx, time.Now().Unix(), req)
	if errors.Is(err, model.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, model.ErrTenantNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logrus.Warnf("updateTenant failed to encode/write response: %v", err)
	}
}

func (a *API) setTenantStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := registry.SetTenantStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Requester = requester(ctx)
	req.TenantID = mux.Vars(r)["id"]

	result, err := a.registry.SetTenantStatus(ctx, time.Now().Unix(), req)
	if errors.Is(err, model.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, model.ErrTenantNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logrus.Warnf("setTenantStatus failed to encode/write response: %v", err)
	}
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registry.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Requester = requester(ctx)

	result, err := a.registry.CreateUser(ctx, time.Now().Unix(), req)
	if errors.Is(err, model.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, model.ErrUserAlreadyExists) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logrus.Warnf("createUser failed to encode/write response: %v", err)
	}
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := storage.ListUsersRequest{Limit: 20}
	if !parsePagination(w, r, &req.Offset, &req.Limit) {
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Statuses = []model.UserStatus{model.UserStatus(status)}
	}

	result, err := a.registry.ListUsers(ctx, req)
	if errors.Is(err, model.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logrus.Warnf("listUsers failed to encode/write response: %v", err)
	}
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mux.Vars(r)["id"]

	result, err := a.registry.ListUsers(ctx, storage.ListUsersRequest{
		Limit: 1,
		IDs:   []string{userID},
	})
	if errors.Is(err, model.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}
	if len(result.Users) == 0 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result.Users[0]); err != nil {
		logrus.Warnf("getUser failed to encode/write response: %v", err)
	}
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := registry.UpdateUserRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Requester = requester(ctx)
	req.UserID = mux.Vars(r)["id"]

	result, err := a.registry.UpdateUser(ctx, time.Now().Unix(), req)
	if errors.Is(err, model.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, model.ErrUserNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logrus.Warnf("updateUser failed to encode/write response: %v", err)
	}
}

func (a *API) setUserStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := registry.SetUserStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Requester = requester(ctx)
	req.UserID = mux.Vars(r)["id"]

	result, err := a.registry.SetUserStatus(ctx, time.Now().Unix(), req)
	if errors.Is(err, model.ErrInvalidParameter) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, model.ErrUserNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %s", err.Error()), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logrus.Warnf("setUserStatus failed to encode/write response: %v", err)
	}
}

// getIdentity echoes the identity resolved from the client certificate so an
// agent can verify its credential end to end.
func (a *API) getIdentity(w http.ResponseWriter, r *http.Request) {
	id := identity.FromContext(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(id); err != nil {
		logrus.Warnf("getIdentity failed to encode/write response: %v", err)
	}
}

func requester(ctx context.Context) string {
	if id := identity.FromContext(ctx); id != nil {
		return id.UserID
	}
	return ""
}

func parsePagination(w http.ResponseWriter, r *http.Request, offset, limit *int) bool {
	offsetStr := r.URL.Query().Get("offset")
	limitStr := r.URL.Query().Get("limit")
	if offsetStr != "" {
		value, err := strconv.ParseInt(offsetStr, 10, 32)
		if err != nil || value < 0 {
			http.Error(w, "offset is invalid", http.StatusBadRequest)
			return false
		}
		*offset = int(value)
	}
	if limitStr != "" {
		value, err := strconv.ParseInt(limitStr, 10, 32)
		if err != nil || value < 1 {
			http.Error(w, "limit is invalid", http.StatusBadRequest)
			return false
		}
		*limit = int(value)
	}
	return true
}
