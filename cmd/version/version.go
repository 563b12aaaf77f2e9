// Package versioncmder
package versioncmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/praxisvoice/pkg/utils"
)

type VersionCommander struct{}

func NewVersionCmd() *cobra.Command {
	cmder := &VersionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version of this CLI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	return cmd
}

func (c *VersionCommander) run(w io.Writer) error {
	fmt.Fprintf(w, "Version: %s\nSha: %s\nBuilt at: %s\n", utils.Version, utils.Sha, utils.Buildtime)
	return nil
}
