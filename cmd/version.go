package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kgronlund/parallax/internal/core"
)

// NewVersionCommand builds "parallax version".
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the client version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(core.FormatVersion(core.Version))
		},
	}
}
