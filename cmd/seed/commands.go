package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/models"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/users"
	"github.com/spf13/cobra"
)

type serviceOpener func(ctx context.Context) (*users.Service, func(), error)

func newRootCmd(open serviceOpener) *cobra.Command {
	root := &cobra.Command{
		Use:          "seed",
		Short:        "Seed or purge the users collection",
		SilenceUsage: true,
	}
	root.AddCommand(newUsersCmd(open), newPurgeCmd(open))
	return root
}

func newUsersCmd(open serviceOpener) *cobra.Command {
	var purgeFirst bool
	cmd := &cobra.Command{
		Use:   "users <file.json>",
		Short: "Insert users from a JSON array file; passwords are hashed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			list, err := readUsers(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			ctx := cmd.Context()
			svc, closer, err := open(ctx)
			if err != nil {
				return err
			}
			defer closer()

			if purgeFirst {
				if _, err := svc.DeleteMany(ctx, nil); err != nil {
					return err
				}
			}
			created, err := svc.CreateMany(ctx, list)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users\n", len(created))
			return nil
		},
	}
	cmd.Flags().BoolVar(&purgeFirst, "purge", false, "delete all users before seeding")
	return cmd
}

func newPurgeCmd(open serviceOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, closer, err := open(ctx)
			if err != nil {
				return err
			}
			defer closer()

			res, err := svc.DeleteMany(ctx, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d users\n", res.DeletedCount)
			return nil
		},
	}
}

// readUsers decodes a JSON array of user documents.
func readUsers(r io.Reader) ([]*models.User, error) {
	var list []*models.User
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	for i, u := range list {
		if u == nil || u.Username == "" || u.Email == "" {
			return nil, fmt.Errorf("user %d: username and email are required", i)
		}
	}
	return list, nil
}
