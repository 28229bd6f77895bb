package services

import (
	"errors"

	"github.com/vincentino1/account-service/internal/common"
)

// storageErr passes taxonomy errors through and hides anything else behind
// common.ErrStorageUnavailable.
func storageErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrorAlreadyExists),
		errors.Is(err, common.ErrorInternal),
		errors.Is(err, common.ErrStorageUnavailable):
		return err
	default:
		return common.StorageError(op, err)
	}
}
