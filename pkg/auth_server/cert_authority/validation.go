package cert_authority

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
	"github.com/tenantguard/tenantguard/pkg/auth_server/storage"
)

func ValidateIssueClientCertificateRequest(req IssueClientCertificateRequest) error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Requester, validation.Required),
		validation.Field(&req.TenantID, validation.Required, validation.Length(1, 128), validation.Match(model.IdentifierPattern)),
		validation.Field(&req.UserID, validation.Required, validation.Length(1, 128), validation.Match(model.IdentifierPattern)),
		validation.Field(&req.Lifetime, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}

func ValidateListCertsRequest(req storage.ListCertsRequest) error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Limit, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}
