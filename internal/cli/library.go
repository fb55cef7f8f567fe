package cli

//
// library.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/kmwlk/libsync/internal/model"
	"github.com/kmwlk/libsync/internal/service"
)

//---------------------------------------------------------------------

func newAddLibraryCmd() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "add new external library",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true, Aliases: []string{"n"}},
			&cli.StringFlag{Name: "url", Required: true, Usage: "base url of the remote service"},
			&cli.StringFlag{Name: "opds-path", Value: "/opds", Usage: "path of the catalog root"},
			&cli.StringFlag{Name: "login", Usage: "remote service login"},
			&cli.StringFlag{Name: "password", Usage: "remote service password"},
			&cli.StringFlag{Name: "proxy", Usage: "proxy url (socks5:// or http://)"},
		},
		Action: wrap(addLibraryCmd),
	}
}

//nolint:forbidigo
func addLibraryCmd(ctx context.Context, clicmd *cli.Command, injector do.Injector) error {
	extlibssrv := do.MustInvoke[*service.ExtLibsSrv](injector)

	lib := model.Library{
		Name:     clicmd.String("name"),
		URL:      clicmd.String("url"),
		OpdsPath: clicmd.String("opds-path"),
		Login:    clicmd.String("login"),
		Password: clicmd.String("password"),
		Proxy:    clicmd.String("proxy"),
	}

	id, err := extlibssrv.AddLibrary(ctx, &lib)
	if err != nil {
		return fmt.Errorf("add library error: %w", err)
	}

	fmt.Printf("Library %q created; id: %d\n", lib.Name, id)

	return nil
}

// ---------------------------------------------------------------------

func newListLibrariesCmd() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "list external libraries",
		Action: wrap(listLibrariesCmd),
	}
}

//nolint:forbidigo
func listLibrariesCmd(ctx context.Context, _ *cli.Command, injector do.Injector) error {
	extlibssrv := do.MustInvoke[*service.ExtLibsSrv](injector)

	libraries, err := extlibssrv.ListLibraries(ctx)
	if err != nil {
		return fmt.Errorf("get libraries error: %w", err)
	}

	fmt.Printf("%-5s | %-30s | %-40s | %s \n", "ID", "Name", "URL", "OPDS path")
	fmt.Println(
		"---------------------------------------------------------------------------------------------------------",
	)

	for _, l := range libraries {
		fmt.Printf("%-5d | %-30s | %-40s | %s \n", l.ID, l.Name, l.URL, l.OpdsPath)
	}

	return nil
}

// ---------------------------------------------------------------------

func newDeleteLibraryCmd() *cli.Command {
	return &cli.Command{
		Name:  "delete",
		Usage: "delete external library with its subscriptions and download history",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "id", Required: true},
		},
		Action: wrap(deleteLibraryCmd),
	}
}

func deleteLibraryCmd(ctx context.Context, clicmd *cli.Command, injector do.Injector) error {
	extlibssrv := do.MustInvoke[*service.ExtLibsSrv](injector)

	id := int64(clicmd.Int("id"))
	if err := extlibssrv.DeleteLibrary(ctx, id); err != nil {
		return fmt.Errorf("delete library error: %w", err)
	}

	//nolint:forbidigo
	fmt.Printf("Library %d deleted\n", id)

	return nil
}

// ---------------------------------------------------------------------

func newListSubscriptionsCmd() *cli.Command {
	return &cli.Command{
		Name:  "subscriptions",
		Usage: "list subscriptions of one library",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "id", Required: true},
		},
		Action: wrap(listSubscriptionsCmd),
	}
}

//nolint:forbidigo
func listSubscriptionsCmd(ctx context.Context, clicmd *cli.Command, injector do.Injector) error {
	extlibssrv := do.MustInvoke[*service.ExtLibsSrv](injector)

	subs, err := extlibssrv.ListSubscriptions(ctx, int64(clicmd.Int("id")))
	if err != nil {
		return fmt.Errorf("get subscriptions error: %w", err)
	}

	fmt.Printf("%-5s | %-8s | %s \n", "ID", "User", "Link")
	fmt.Println("--------------------------------------------------------------------------------------------")

	for _, s := range subs {
		fmt.Printf("%-5d | %-8d | %s \n", s.ID, s.UserID, s.Link)
	}

	return nil
}

// ---------------------------------------------------------------------

func newCheckSubscriptionsCmd() *cli.Command {
	return &cli.Command{
		Name:   "check-subscriptions",
		Usage:  "poll all subscriptions once and download new entries",
		Action: wrap(checkSubscriptionsCmd),
	}
}

func checkSubscriptionsCmd(ctx context.Context, _ *cli.Command, injector do.Injector) error {
	extlibssrv := do.MustInvoke[*service.ExtLibsSrv](injector)

	if err := extlibssrv.CheckAllSubscriptions(ctx); err != nil {
		return fmt.Errorf("check subscriptions error: %w", err)
	}

	return nil
}
