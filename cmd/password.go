package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kgronlund/parallax/internal/vault"
)

// NewPasswordCommand builds "parallax password", managing per-host
// passwords in the system keyring for use with --askpass.
func NewPasswordCommand() *cobra.Command {
	passwordCmd := &cobra.Command{
		Use:     "password",
		Aliases: []string{"passwd", "pass"},
		Short:   "Manage stored passwords for SSH hosts",
		Long:    `Store, delete and check passwords used by --askpass. Passwords are kept in the system keyring.`,
	}

	setCmd := &cobra.Command{
		Use:   "set <alias>",
		Short: "Store a password for a host alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := args[0]
			password, err := vault.PromptAndConfirmPassword(alias)
			if err != nil {
				return err
			}
			if err := vault.Set(alias, password); err != nil {
				return err
			}
			slog.Info(fmt.Sprintf("password stored for %q", alias))
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:     "delete <alias>",
		Aliases: []string{"del", "remove", "rm"},
		Short:   "Delete the stored password for a host alias",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := vault.Delete(args[0]); err != nil {
				return err
			}
			slog.Info(fmt.Sprintf("password deleted for %q", args[0]))
			return nil
		},
	}

	hasCmd := &cobra.Command{
		Use:   "has <alias>",
		Short: "Check whether a password is stored for a host alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if vault.Has(args[0]) {
				fmt.Printf("%s: stored\n", args[0])
			} else {
				fmt.Printf("%s: not stored\n", args[0])
			}
			return nil
		},
	}

	passwordCmd.AddCommand(setCmd, deleteCmd, hasCmd)
	return passwordCmd
}
