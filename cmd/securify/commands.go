package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/shubhamtiwari158/securify/pkg/totp"
	"github.com/shubhamtiwari158/securify/svc/account"
)

type command struct {
	args     int
	optional int
	run      func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"migrate":     {0, 0, cmdMigrate},
	"healthcheck": {0, 0, cmdHealthcheck},
	"register":    {3, 0, cmdRegister},
	"login":       {2, 0, cmdLogin},
	"status":      {1, 0, cmdStatus},
	"enroll":      {1, 1, cmdEnroll},
	"confirm":     {2, 0, cmdConfirm},
	"verify":      {2, 0, cmdVerify},
	"challenge":   {2, 0, cmdChallenge},
	"disable":     {1, 0, cmdDisable},
}

// exec runs one command.
func (a *app) exec(ctx context.Context, args []string) error {
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	rest := args[1:]
	if len(rest) < cmd.args || len(rest) > cmd.args+cmd.optional {
		return fmt.Errorf("%w: %s takes %d arguments", errUsage, args[0], cmd.args)
	}
	return cmd.run(ctx, a, rest)
}

func keygen(w io.Writer) error {
	key, err := totp.GenerateEncodedKey()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, key)
	return err
}

func cmdMigrate(ctx context.Context, a *app, _ []string) error {
	if err := a.migrate(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.out, "%s store is up to date\n", a.cfg.StoreBackend)
	return err
}

func cmdHealthcheck(ctx context.Context, a *app, _ []string) error {
	names := make([]string, 0, len(a.checks))
	for name := range a.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := a.checks[name](ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Fprintf(a.out, "%s: ok\n", name)
	}
	return nil
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	acc, err := a.auth.Register(ctx, account.RegisterInput{
		Username: args[0],
		Email:    args[1],
		Password: args[2],
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "id: %s\nstate: %s\n", acc.ID, acc.TwoFactorState())
	if acc.TOTPSecret != nil {
		fmt.Fprintf(a.out, "otpauth: %s\n", acc.TOTPSecret.OTPAuthURL)
	}
	return nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	res, err := a.auth.Authenticate(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "id: %s\ndecision: %s\n", res.Account.ID, res.Decision)
	if res.ChallengeToken != "" {
		fmt.Fprintf(a.out, "challenge: %s\nexpires: %s\n", res.ChallengeToken, res.ChallengeExpiresAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	return nil
}

func cmdStatus(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	st, err := a.enroll.Status(ctx, id)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "state: %s\n", st)
	return err
}

func cmdEnroll(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	secret, err := a.enroll.BeginEnrollment(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "secret: %s\notpauth: %s\n", secret.Base32, secret.OTPAuthURL)

	if len(args) < 2 {
		return nil
	}
	png, err := a.enroll.RenderEnrollmentImage(secret.OTPAuthURL)
	if err != nil {
		// The URI above is still usable for manual entry.
		return err
	}
	if err := os.WriteFile(args[1], png, 0o600); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "qr: %s\n", args[1])
	return err
}

func cmdConfirm(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ok, err := a.enroll.ConfirmEnrollment(ctx, id, args[1])
	if err != nil {
		return err
	}
	return printCheck(a.out, ok)
}

func cmdVerify(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ok, err := a.enroll.ValidateLogin(ctx, id, args[1])
	if err != nil {
		return err
	}
	return printCheck(a.out, ok)
}

func cmdChallenge(ctx context.Context, a *app, args []string) error {
	acc, err := a.enroll.CompleteChallenge(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "id: %s\ndecision: %s\n", acc.ID, account.DecisionAuthenticated)
	return err
}

func cmdDisable(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := a.enroll.Disable(ctx, id); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "state: %s\n", account.StateDisabled)
	return err
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid account id %q", errUsage, s)
	}
	return id, nil
}

func printCheck(w io.Writer, ok bool) error {
	result := "rejected"
	if ok {
		result = "accepted"
	}
	_, err := fmt.Fprintf(w, "code: %s\n", result)
	return err
}
