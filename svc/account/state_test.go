package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shubhamtiwari158/securify/svc/account"
)

func TestState_Next(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from    account.State
		event   account.Event
		want    account.State
		wantErr error
	}{
		{account.StateNotEnrolled, account.EventBegin, account.StatePendingVerification, nil},
		{account.StatePendingVerification, account.EventBegin, account.StatePendingVerification, nil},
		{account.StateEnabled, account.EventBegin, account.StatePendingVerification, nil},
		{account.StateDisabled, account.EventBegin, account.StatePendingVerification, nil},

		{account.StateNotEnrolled, account.EventConfirm, account.StateNotEnrolled, account.ErrNotEnrolled},
		{account.StatePendingVerification, account.EventConfirm, account.StateEnabled, nil},
		{account.StateEnabled, account.EventConfirm, account.StateEnabled, nil},
		{account.StateDisabled, account.EventConfirm, account.StateEnabled, nil},

		{account.StateNotEnrolled, account.EventValidate, account.StateNotEnrolled, account.ErrTwoFactorNotEnabled},
		{account.StatePendingVerification, account.EventValidate, account.StatePendingVerification, account.ErrTwoFactorNotEnabled},
		{account.StateEnabled, account.EventValidate, account.StateEnabled, nil},
		{account.StateDisabled, account.EventValidate, account.StateDisabled, account.ErrTwoFactorNotEnabled},

		{account.StateNotEnrolled, account.EventDisable, account.StateNotEnrolled, account.ErrTwoFactorNotEnabled},
		{account.StatePendingVerification, account.EventDisable, account.StatePendingVerification, account.ErrTwoFactorNotEnabled},
		{account.StateEnabled, account.EventDisable, account.StateDisabled, nil},
		{account.StateDisabled, account.EventDisable, account.StateDisabled, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.event), func(t *testing.T) {
			t.Parallel()

			got, err := tt.from.Next(tt.event)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, tt.from.Can(tt.event))
			} else {
				assert.NoError(t, err)
				assert.True(t, tt.from.Can(tt.event))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestState_UnknownEvent(t *testing.T) {
	t.Parallel()

	got, err := account.StateEnabled.Next(account.Event("reset"))
	assert.ErrorIs(t, err, account.ErrTwoFactorNotEnabled)
	assert.Equal(t, account.StateEnabled, got)
}
