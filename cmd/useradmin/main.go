// Useradmin manages portal accounts from the operator's shell. The portal
// exposes no admin HTTP surface, so account creation and enable/disable run
// against MongoDB directly.
//
// Usage:
//
//	useradmin create --username dr.menon --role doctor --full-name "Asha Menon"
//	useradmin activate <username>
//	useradmin deactivate <username>
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/oculab/microbio-portal/internal/core/domain"
	"github.com/oculab/microbio-portal/internal/core/ports"
	"github.com/oculab/microbio-portal/internal/core/service"
	"github.com/oculab/microbio-portal/internal/infrastructure/config"
	mongodb "github.com/oculab/microbio-portal/internal/infrastructure/db/mongo"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return errors.New("missing command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "create":
		return runCreate(ctx, os.Args[2:])
	case "activate":
		return runSetActive(ctx, os.Args[2:], true)
	case "deactivate":
		return runSetActive(ctx, os.Args[2:], false)
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", os.Args[1])
	}
}

func runCreate(ctx context.Context, args []string) error {
	var (
		username string
		password string
		role     string
		fullName string
		centre   string
	)

	flagSet := pflag.NewFlagSet("useradmin create", pflag.ContinueOnError)
	flagSet.StringVar(&username, "username", "", "login name (required)")
	flagSet.StringVar(&password, "password", "", "password; prompted when omitted")
	flagSet.StringVar(&role, "role", "", "account role: doctor or lab (required)")
	flagSet.StringVar(&fullName, "full-name", "", "display name (required)")
	flagSet.StringVar(&centre, "centre", "", "reading centre code")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if username == "" || fullName == "" {
		return errors.New("create: --username and --full-name are required")
	}
	if !domain.Role(role).Valid() {
		return fmt.Errorf("create: --role must be %q or %q", domain.RoleDoctor, domain.RoleLabTech)
	}
	if password == "" {
		var err error
		if password, err = promptPassword(); err != nil {
			return err
		}
	}
	if len(password) < 8 {
		return errors.New("create: password must be at least 8 characters")
	}

	users, cleanup, err := connectUsers(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	// Register is the only operation used here, so the token dependencies
	// stay zero-valued.
	auth := service.NewAuthService(users, nil, "", 0, zerolog.Nop())
	user, err := auth.Register(ctx, ports.RegisterInput{
		Username:          username,
		Password:          password,
		Role:              role,
		FullName:          fullName,
		ReadingCentreCode: centre,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Printf("created %s (%s) id=%s\n", user.Username, user.Role, user.ID)
	return nil
}

func runSetActive(ctx context.Context, args []string, active bool) error {
	if len(args) != 1 || strings.HasPrefix(args[0], "-") {
		return errors.New("usage: useradmin activate|deactivate <username>")
	}
	username := args[0]

	users, cleanup, err := connectUsers(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := users.SetActive(ctx, username, active); err != nil {
		return err
	}

	state := "activated"
	if !active {
		state = "deactivated"
	}
	fmt.Printf("%s %s\n", state, username)
	return nil
}

// connectUsers opens the configured MongoDB database and returns the user
// repository plus a disconnect func.
func connectUsers(ctx context.Context) (*mongodb.UserRepository, func(), error) {
	cfg := config.Load()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}
	return mongodb.NewUserRepository(db), cleanup, nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no password entered")
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `useradmin manages microbiology portal accounts.

Commands:
  create      create an account (--username, --password, --role, --full-name, --centre)
  activate    re-enable a disabled account
  deactivate  disable an account without deleting it`)
}
