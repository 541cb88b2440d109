// Command securify is an operator tool for the account service: it manages
// accounts and two-factor enrollment against the configured store and
// prints encryption keys and migrations for deployment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shubhamtiwari158/securify/pkg/logger"
)

const usage = `usage: securify [flags] <command> [args]

commands:
  keygen                               print a TOTP_ENCRYPTION_KEY value
  migrate                              create indexes or apply SQL migrations
  healthcheck                          ping the configured backends
  register <username> <email> <pass>   create an account
  login <email> <password>             check a password
  status <account-id>                  print the two-factor state
  enroll <account-id> [qr.png]         mint a new TOTP secret
  confirm <account-id> <code>          confirm enrollment
  verify <account-id> <code>           check a login code
  challenge <token> <code>             complete a login challenge
  disable <account-id>                 turn two-factor off

environment:
  ACCOUNT_STORE   postgres (default) or mongo
  PENDING_STORE   memory (default) or redis, redis is needed for challenge

flags:
`

func main() {
	fs := flag.NewFlagSet("securify", flag.ExitOnError)
	envFile := fs.String("env-file", ".env", "dotenv file, skipped when missing")
	yamlFile := fs.String("config", "", "flat YAML file with default values")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, fs.Args(), *envFile, *yamlFile); err != nil {
		fmt.Fprintln(os.Stderr, "securify:", err)
		if errors.Is(err, errUsage) {
			fs.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, envFile, yamlFile string) error {
	if args[0] == "keygen" {
		return keygen(os.Stdout)
	}

	a, err := newApp(ctx, os.Stdout, sources(envFile, yamlFile)...)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))
	logger.SetAsDefault(a.log)

	if err := a.cfg.requirePersistent(args[0]); err != nil {
		return err
	}
	return a.exec(ctx, args)
}
