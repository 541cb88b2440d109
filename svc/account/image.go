package account

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/shubhamtiwari158/securify/pkg/logger"
)

// RenderEnrollmentImage encodes a provisioning URI as a PNG QR code. On
// ErrEncodingFailure callers can fall back to showing the URI as text.
func (e *Enrollment) RenderEnrollmentImage(otpauthURL string) ([]byte, error) {
	png, err := e.renderer.Render(otpauthURL)
	if err != nil {
		return nil, errors.Join(ErrEncodingFailure, err)
	}
	return png, nil
}

// RenderEnrollmentDataURL is RenderEnrollmentImage as a data:image/png URI.
func (e *Enrollment) RenderEnrollmentDataURL(otpauthURL string) (string, error) {
	uri, err := e.renderer.RenderDataURL(otpauthURL)
	if err != nil {
		return "", errors.Join(ErrEncodingFailure, err)
	}
	return uri, nil
}

// EnrollmentImage renders the QR code for the account's current secret.
func (e *Enrollment) EnrollmentImage(ctx context.Context, id uuid.UUID) ([]byte, error) {
	acc, err := e.store.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc.TwoFactorState() == StateNotEnrolled {
		return nil, ErrNotEnrolled
	}

	png, err := e.RenderEnrollmentImage(acc.TOTPSecret.OTPAuthURL)
	if err != nil {
		e.logger.WarnContext(ctx, "enrollment image rendering failed",
			logger.Component("enrollment"),
			logger.AccountID(id),
			logger.Error(err),
		)
		return nil, err
	}
	return png, nil
}
