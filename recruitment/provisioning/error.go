package provisioning

import (
	"net/http"

	"github.com/upticktalent/uptick-talent-lms-koala-sub002/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("PROVISIONING")

// Error codes
var (
	CodeAlreadyProvisioned = ErrRegistry.Register("ALREADY_PROVISIONED", errx.TypeConflict, http.StatusConflict, "An account was already provisioned for this application")
	CodeProvisioningFailed = ErrRegistry.Register("FAILED", errx.TypeInternal, http.StatusInternalServerError, "Account provisioning failed")
)

// Helper functions
func ErrAlreadyProvisioned() *errx.Error {
	return ErrRegistry.New(CodeAlreadyProvisioned)
}

func ErrProvisioningFailed() *errx.Error {
	return ErrRegistry.New(CodeProvisioningFailed)
}
