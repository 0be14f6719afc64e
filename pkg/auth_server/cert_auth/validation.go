package cert_auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tenantguard/tenantguard/pkg/auth_server/model"
)

func ValidateRevokeCertificateRequest(req RevokeCertificateRequest) error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Requester, validation.Required),
		validation.Field(&req.Thumbprint, validation.Required),
		validation.Field(&req.Reason, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}
