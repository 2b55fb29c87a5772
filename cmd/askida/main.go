package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"askida/internal/apiclient"
	"askida/internal/infra"
)

const usage = `usage: askida [-json] <command> [flags]

commands:
  register   create an account and sign in
  login      sign in with email and password
  logout     sign out and clear the stored session
  me         show the signed-in user
  list       list nearby donations (-filter all|temiz|atik|reserved, -refresh)
  show       show one donation (-id)
  reserve    reserve a donation (-id)
  cancel     cancel a reservation (-id)
  delete     delete your donation (-id, -yes)
  edit       edit your donation (-id, -title, -description, -category, -quantity)
  post       post a donation (-title, -description, -category, -quantity, -expires, -lat, -lng)
  watch      print location updates until interrupted
`

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		exitWithError(errors.New(apiclient.UserMessage(err)))
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

var errUsage = errors.New("usage")

// run executes one command. It is separated from main so tests can drive the CLI end to end.
func run(ctx context.Context, cfg *infra.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	asJSON := false
	for len(args) > 0 && (args[0] == "-json" || args[0] == "--json") {
		asJSON = true
		args = args[1:]
	}
	if len(args) == 0 {
		return errUsage
	}
	name, rest := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		return errUsage
	}

	app, err := newCLI(ctx, cfg, stdin, stdout, stderr, asJSON)
	if err != nil {
		return err
	}
	defer app.close()

	if cmd.needsSession {
		if err := app.restore(ctx); err != nil {
			return err
		}
	}
	return cmd.run(ctx, app, rest)
}
