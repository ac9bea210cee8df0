package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
)

type loginOptions struct {
	Email         string
	Password      string
	PasswordStdin bool
}

type registerOptions struct {
	loginOptions
	FirstName string
	LastName  string
}

type refreshOptions struct {
	Token      string
	IfExpiring time.Duration
}

// sessionView is what whoami prints.
type sessionView struct {
	State     domainauth.State  `json:"state"`
	User      domainauth.Record `json:"user"`
	ExpiresAt *time.Time        `json:"expiresAt,omitempty"`
}

func runLogin(cc *commandContext, args []string) error {
	opts, err := parseLoginFlags(args)
	if err != nil {
		return err
	}
	password, err := resolvePassword(opts, cc.Stdin)
	if err != nil {
		return err
	}

	resp := cc.Clients.Auth.Login(cc.Ctx, domainauth.Credentials{Email: opts.Email, Password: password})
	return cc.emit(resp)
}

func runRegister(cc *commandContext, args []string) error {
	opts, err := parseRegisterFlags(args)
	if err != nil {
		return err
	}
	password, err := resolvePassword(opts.loginOptions, cc.Stdin)
	if err != nil {
		return err
	}

	resp := cc.Clients.Auth.Register(cc.Ctx, domainauth.RegisterData{
		Email:     opts.Email,
		Password:  password,
		FirstName: opts.FirstName,
		LastName:  opts.LastName,
	})
	return cc.emit(resp)
}

func runLogout(cc *commandContext, _ []string) error {
	cc.Clients.Auth.Logout(cc.Ctx)
	return cc.Out.Print(map[string]any{"success": true, "message": "Logged out"})
}

func runWhoAmI(cc *commandContext, _ []string) error {
	view := sessionView{
		State: cc.Clients.Session.State(),
		User:  cc.Clients.Session.CurrentUser(),
	}
	if exp, ok := cc.Clients.Session.ExpiresAt(); ok {
		view.ExpiresAt = &exp
	}
	return cc.Out.Print(view)
}

func runProfile(cc *commandContext, _ []string) error {
	return cc.emit(cc.Clients.Auth.GetProfile(cc.Ctx))
}

func runRefresh(cc *commandContext, args []string) error {
	opts, err := parseRefreshFlags(args)
	if err != nil {
		return err
	}

	if opts.IfExpiring > 0 {
		resp, attempted := cc.Clients.Auth.RefreshIfExpiring(cc.Ctx, opts.IfExpiring)
		if !attempted {
			return cc.Out.Print(map[string]any{"success": true, "message": "Token not due for refresh"})
		}
		return cc.emit(resp)
	}
	return cc.emit(cc.Clients.Auth.RefreshToken(cc.Ctx, opts.Token))
}

func parseLoginFlags(args []string) (loginOptions, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	var opts loginOptions
	bindLoginFlags(fs, &opts)
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseRegisterFlags(args []string) (registerOptions, error) {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var opts registerOptions
	bindLoginFlags(fs, &opts.loginOptions)
	fs.StringVar(&opts.FirstName, "first-name", "", "First name")
	fs.StringVar(&opts.LastName, "last-name", "", "Last name")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func bindLoginFlags(fs *flag.FlagSet, opts *loginOptions) {
	fs.StringVar(&opts.Email, "email", "", "Account email")
	fs.StringVar(&opts.Password, "password", "", "Account password (prefer -password-stdin)")
	fs.BoolVar(&opts.PasswordStdin, "password-stdin", false, "Read the password from the first line of stdin")
}

func parseRefreshFlags(args []string) (refreshOptions, error) {
	fs := flag.NewFlagSet("refresh", flag.ContinueOnError)
	var opts refreshOptions
	fs.StringVar(&opts.Token, "token", "", "Refresh credential; defaults to the current token")
	fs.DurationVar(&opts.IfExpiring, "if-expiring", 0, "Only refresh when the token expires within this window")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.IfExpiring < 0 {
		return opts, errors.New("-if-expiring must be positive")
	}
	if opts.IfExpiring > 0 && opts.Token != "" {
		return opts, errors.New("-token and -if-expiring are mutually exclusive")
	}
	return opts, nil
}

func resolvePassword(opts loginOptions, stdin io.Reader) (string, error) {
	if !opts.PasswordStdin {
		return opts.Password, nil
	}
	if opts.Password != "" {
		return "", errors.New("-password and -password-stdin are mutually exclusive")
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
