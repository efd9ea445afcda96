package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertwitch/gshell/internal/session"
)

const anonymousUser = "anonymous"

// username returns the username given as argument, or asks for it.
func (sh *Shell) username(ctx context.Context, inv Invocation) (string, error) {
	if len(inv.Args) > 0 {
		return inv.Args[0], nil
	}

	name, err := sh.prompter.ReadLine(ctx, "Username: ")
	if err != nil {
		return "", &inputError{cause: err}
	}

	return strings.TrimSpace(name), nil
}

func (sh *Shell) secret(ctx context.Context, prompt string) (string, error) {
	value, err := sh.prompter.ReadSecret(ctx, prompt)
	if err != nil {
		return "", &inputError{cause: err}
	}

	return value, nil
}

func signupCommand(ctx context.Context, sh *Shell, inv Invocation) error {
	if err := sh.auth.RequireAnonymous(sh.Session); err != nil {
		return err
	}

	username, err := sh.username(ctx, inv)
	if err != nil {
		return err
	}

	if err := sh.auth.CheckSignup(sh.Session, username); err != nil {
		return err
	}

	password, err := sh.secret(ctx, "Password: ")
	if err != nil {
		return err
	}

	confirm, err := sh.secret(ctx, "Retype password: ")
	if err != nil {
		return err
	}

	creds := session.Credentials{
		Username: username,
		Password: password,
		Confirm:  confirm,
	}

	if err := sh.auth.Signup(sh.Session, creds); err != nil {
		return err
	}

	sh.out.PrintSuccess(fmt.Sprintf("<> '%s' has been created successfully.", username))

	return nil
}

func loginCommand(ctx context.Context, sh *Shell, inv Invocation) error {
	if err := sh.auth.RequireAnonymous(sh.Session); err != nil {
		return err
	}

	username, err := sh.username(ctx, inv)
	if err != nil {
		return err
	}

	password, err := sh.secret(ctx, "Password: ")
	if err != nil {
		return err
	}

	creds := session.Credentials{
		Username: username,
		Password: password,
	}

	if err := sh.auth.Login(sh.Session, creds); err != nil {
		return err
	}

	sh.out.PrintSuccess("<> Logged in successfully!")

	return nil
}

func logoutCommand(_ context.Context, sh *Shell, _ Invocation) error {
	if err := sh.auth.Logout(sh.Session); err != nil {
		return err
	}

	sh.out.PrintSuccess("<> Logged out.")

	return nil
}

func whoamiCommand(_ context.Context, sh *Shell, _ Invocation) error {
	user, ok := sh.Session.User()
	if !ok {
		user = anonymousUser
	}

	sh.out.PrintLine(user)

	return nil
}
