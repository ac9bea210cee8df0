package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/target/mmk-ui-client/config"
	"github.com/target/mmk-ui-client/internal/bootstrap"
	"github.com/target/mmk-ui-client/internal/output"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type commandFn func(cc *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx     context.Context
	Logger  *slog.Logger
	Config  config.AppConfig
	Clients *bootstrap.Clients
	Out     *output.Printer
	Stdin   io.Reader
}

// streams are the process standard streams, swapped out in tests.
type streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	stop()
	os.Exit(code) //nolint:forbidigo // CLI must propagate command outcome to the shell
}

func run(ctx context.Context, args []string, std streams) int {
	global := flag.NewFlagSet("mmkctl", flag.ContinueOnError)
	global.SetOutput(std.Err)
	query := global.String("query", "", "JMESPath expression applied to the JSON output")
	global.Usage = func() { _ = printUsage(std.Err) }
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if global.NArg() == 0 {
		_ = printUsage(std.Err)
		return exitUsage
	}

	cmdName := global.Arg(0)
	cmd, ok := commands()[cmdName]
	if !ok {
		_ = writef(std.Err, "unknown command %q\n\n", cmdName)
		_ = printUsage(std.Err)
		return exitUsage
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		_ = writef(std.Err, "load config: %v\n", err)
		return exitFailure
	}
	logger := bootstrap.InitLogger(cfg.Log)

	printer, err := output.NewPrinter(std.Out, *query)
	if err != nil {
		logger.ErrorContext(ctx, "invalid -query", "error", err)
		return exitUsage
	}

	clients, err := bootstrap.NewClients(ctx, bootstrap.ClientsOptions{Config: cfg, Logger: logger})
	if err != nil {
		logger.ErrorContext(ctx, "initialize clients", "error", err)
		return exitFailure
	}
	defer func() {
		if closeErr := clients.Close(); closeErr != nil {
			logger.WarnContext(ctx, "close storage", "error", closeErr)
		}
	}()

	cc := &commandContext{
		Ctx:     ctx,
		Logger:  logger,
		Config:  cfg,
		Clients: clients,
		Out:     printer,
		Stdin:   std.In,
	}
	if runErr := cmd.run(cc, global.Args()[1:]); runErr != nil {
		logger.ErrorContext(ctx, "command failed", "command", cmdName, "error", runErr)
		return exitFailure
	}
	return exitOK
}

func commands() map[string]command {
	list := []command{
		{name: "login", description: "Authenticate and persist the session", run: runLogin},
		{name: "register", description: "Create an account and persist the session", run: runRegister},
		{name: "logout", description: "Clear the persisted session", run: runLogout},
		{name: "whoami", description: "Show the locally held session", run: runWhoAmI},
		{name: "profile", description: "Fetch the current user profile", run: runProfile},
		{name: "refresh", description: "Exchange the current or given token for a new one", run: runRefresh},

		{name: "users", description: "List users (admin)", run: runUsers},
		{name: "user", description: "Show one user (admin)", run: runUser},
		{name: "user-update", description: "Update a user's profile fields (admin)", run: runUserUpdate},
		{name: "user-activate", description: "Activate a user (admin)", run: runUserActivate},
		{name: "user-deactivate", description: "Deactivate a user (admin)", run: runUserDeactivate},
		{name: "user-delete", description: "Delete a user (admin)", run: runUserDelete},
		{name: "user-roles", description: "List a user's roles (admin)", run: runUserRoles},
		{name: "role-assign", description: "Assign a role to a user (admin)", run: runRoleAssign},
		{name: "role-remove", description: "Remove a role from a user (admin)", run: runRoleRemove},
		{name: "force-logout", description: "Terminate a user's sessions (admin)", run: runForceLogout},
		{name: "password-reset", description: "Trigger a password reset for a user (admin)", run: runPasswordReset},
		{name: "password-change", description: "Set a new password for a user (admin)", run: runPasswordChange},
		{name: "posts", description: "List posts (admin)", run: runPosts},
		{name: "stats", description: "Show system statistics (admin)", run: runStats},
		{name: "overview", description: "Fetch stats, users and roles together (admin)", run: runOverview},

		{name: "roles", description: "List roles", run: runRoles},
		{name: "role-create", description: "Create a role", run: runRoleCreate},
		{name: "role-update", description: "Update a role", run: runRoleUpdate},
		{name: "role-delete", description: "Delete a role", run: runRoleDelete},
		{name: "permissions", description: "List permissions", run: runPermissions},

		{name: "categories", description: "List categories", run: runCategories},
		{name: "category", description: "Show one category", run: runCategory},
		{name: "category-create", description: "Create a category", run: runCategoryCreate},
		{name: "category-update", description: "Update a category", run: runCategoryUpdate},
		{name: "category-delete", description: "Delete a category", run: runCategoryDelete},
		{name: "category-toggle", description: "Toggle a category's active flag", run: runCategoryToggle},

		{name: "directory", description: "List the users directory with filters, sorting and paging", run: runDirectory},
		{name: "directory-add", description: "Add a directory user from a JSON object", run: runDirectoryAdd},
		{name: "directory-update", description: "Update a directory user from a JSON object", run: runDirectoryUpdate},
		{name: "directory-remove", description: "Remove a directory user by id", run: runDirectoryRemove},
	}

	m := make(map[string]command, len(list))
	for _, c := range list {
		m[c.name] = c
	}
	return m
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: mmkctl [-query <jmespath>] <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-18s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

// result is any client response; Err reports its failure, if any.
type result interface {
	Err() error
}

// emit prints the response and turns an unsuccessful envelope into a command error.
func (cc *commandContext) emit(r result) error {
	if err := cc.Out.Print(r); err != nil {
		return err
	}
	return r.Err()
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
