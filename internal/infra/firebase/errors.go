package firebase

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/errors"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// gatewayError wraps a backend failure so delivery reports it as a gateway error.
func gatewayError(err error, op string) error {
	if err == nil {
		return nil
	}

	return errors.WithStack(domainerrors.NewGatewayError(err, op))
}
