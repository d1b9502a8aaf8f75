package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/opensos/packages/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect saved sessions",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [owner]",
	Short: "Show the saved session of an owner",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessionStore(func(ctx context.Context, rt *runtime, store *session.SQLiteStore) error {
			owner := ownerArg(args)
			s, err := store.Load(ctx, owner)
			if err != nil && !errors.Is(err, session.ErrNotFound) {
				return withExitCode(ExitSessionError, err)
			}

			formatter, ferr := rt.formatter(cmd.OutOrStdout(), false)
			if ferr != nil {
				return ferr
			}
			formatter.FormatSession(owner, s, time.Now())
			return nil
		})
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List owners with a saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessionStore(func(ctx context.Context, rt *runtime, store *session.SQLiteStore) error {
			owners, err := store.Owners(ctx)
			if err != nil {
				return withExitCode(ExitSessionError, err)
			}
			for _, owner := range owners {
				fmt.Fprintln(cmd.OutOrStdout(), owner)
			}
			return nil
		})
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear [owner]",
	Short: "Delete the saved session of an owner",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessionStore(func(ctx context.Context, rt *runtime, store *session.SQLiteStore) error {
			owner := ownerArg(args)
			if err := store.Delete(ctx, owner); err != nil {
				return withExitCode(ExitSessionError, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared session for %s\n", owner)
			return nil
		})
	},
}

func init() {
	sessionCmd.PersistentFlags().StringVar(&ownerFlag, "owner", getEnvString("OPENSOS_OWNER", "default"), "Session owner (env: OPENSOS_OWNER)")
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}

func ownerArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ownerFlag
}

func withSessionStore(fn func(ctx context.Context, rt *runtime, store *session.SQLiteStore) error) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	store, err := rt.sessionStore()
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(context.Background(), rt, store)
}
