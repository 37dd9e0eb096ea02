package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "openmart/internal/errors"
	"openmart/internal/model"
)

// translate maps a missing row to notFound and wraps anything else with op.
func translate(err error, notFound error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireStaff(actor *model.User) error {
	if !actor.CanModerate() {
		return apperrors.ErrStaffOnly
	}
	return nil
}
