package cli

//
// user.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/kmwlk/libsync/internal/aerr"
	"github.com/kmwlk/libsync/internal/model"
	"github.com/kmwlk/libsync/internal/service"
)

//---------------------------------------------------------------------

func newAddUserCmd() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "add new user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true, Aliases: []string{"u"}},
			&cli.StringFlag{Name: "password", Usage: "password; asked interactively when empty", Aliases: []string{"p"}},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}},
			&cli.BoolFlag{Name: "admin", Usage: "grant the admin role"},
		},
		Action: wrap(addUserCmd),
	}
}

//nolint:forbidigo
func addUserCmd(ctx context.Context, clicmd *cli.Command, injector do.Injector) error {
	username := clicmd.String("username")

	password := clicmd.String("password")
	if password == "" {
		var err error
		if password, err = readPassword("Password: "); err != nil {
			return err
		}
	}

	role := model.RoleUser
	if clicmd.Bool("admin") {
		role = model.RoleAdmin
	}

	usersrv := do.MustInvoke[*service.UsersSrv](injector)
	user := model.User{
		UserName: username,
		Email:    clicmd.String("email"),
		Name:     clicmd.String("name"),
		Role:     role,
	}

	uid, err := usersrv.AddUser(ctx, &user, password)
	if err != nil {
		return fmt.Errorf("add user error: %w", err)
	}

	fmt.Printf("User %q created; id: %d\n", username, uid)

	return nil
}

// ---------------------------------------------------------------------

func newListUsersCmd() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "list user accounts",
		Action: wrap(listUsersCmd),
	}
}

//nolint:forbidigo
func listUsersCmd(ctx context.Context, _ *cli.Command, injector do.Injector) error {
	usersrv := do.MustInvoke[*service.UsersSrv](injector)

	users, err := usersrv.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("get users error: %w", err)
	}

	fmt.Printf("%-30s | %-30s | %-30s | %s \n", "User name", "Name", "Email", "Role")
	fmt.Println(
		"---------------------------------------------------------------------------------------------------------",
	)

	for _, u := range users {
		fmt.Printf("%-30s | %-30s | %-30s | %s \n", u.UserName, u.Name, u.Email, u.Role)
	}

	return nil
}

// ---------------------------------------------------------------------

//nolint:forbidigo
func readPassword(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", aerr.New("password not given and stdin is not a terminal").
			WithTag(aerr.ValidationError)
	}

	fmt.Print(prompt)

	pass, err := term.ReadPassword(int(os.Stdin.Fd()))

	fmt.Println()

	if err != nil {
		return "", fmt.Errorf("read password error: %w", err)
	}

	return string(pass), nil
}
