// Package account authenticates users with a password and an optional TOTP
// second factor, and manages the two-factor enrollment lifecycle.
//
// Two services share a Store:
//
//   - Authenticator registers accounts and checks email/password pairs. It
//     returns an AuthResult whose Decision is either DecisionAuthenticated or
//     DecisionChallengeRequired; it never creates sessions.
//   - Enrollment drives the per-account two-factor state machine:
//
//	NotEnrolled --Begin--> PendingVerification --Confirm--> Enabled --Disable--> Disabled
//
// BeginEnrollment is accepted from every state and always mints a new secret,
// so re-enrolling an Enabled account turns enforcement off until the new
// secret is confirmed. ConfirmEnrollment uses a wider drift window than
// ValidateLogin (ConfirmWindow and LoginWindow in Config).
//
// State is not stored directly. It is derived from the account fields, see
// Account.TwoFactorState. Writes that change two-factor fields are
// compare-and-swap on Account.Version, so concurrent enrollment calls for
// the same account cannot interleave.
//
// Every store call is bounded by Config.StoreTimeout; timeouts and driver
// failures surface as ErrStoreUnavailable.
//
// With WithPendingStore, Authenticate also issues a short-lived challenge
// token for accounts that need a second factor, and
// Enrollment.CompleteChallenge redeems it with a TOTP code. Backends live in
// the memstore, mongostore, pgstore and redispending subpackages.
//
// # Usage
//
//	store := memstore.New()
//	auth := account.NewAuthenticator(store, account.WithLogger(log))
//	enroll := account.NewEnrollment(store, account.WithLogger(log))
//
//	res, err := auth.Authenticate(ctx, email, password)
//	switch {
//	case errors.Is(err, account.ErrInvalidCredentials):
//		// generic "invalid email or password"
//	case err != nil:
//		// ErrStoreUnavailable, ErrCryptoFailure
//	case res.Decision == account.DecisionChallengeRequired:
//		ok, err := enroll.ValidateLogin(ctx, res.Account.ID, code)
//	}
package account
