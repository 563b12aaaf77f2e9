// Package kbcmder provides the kb command rendering the active knowledge base.
package kbcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/praxisvoice/pkg/cliui"
	"github.com/papercomputeco/praxisvoice/pkg/config"
	"github.com/papercomputeco/praxisvoice/pkg/knowledge"
)

type kbCommander struct {
	knowledgePath string
	raw           bool
}

const kbLongDesc string = `Show the active knowledge base.

Prints the intents, FAQ answers, yes/no vocabulary and the greeting the
phone line works with. Without --knowledge or knowledge.path the built-in
knowledge base is shown.

Examples:
  praxisvoice kb
  praxisvoice kb --knowledge ./praxis.toml
  praxisvoice kb --raw > wissen.md`

const kbShortDesc string = "Show the active knowledge base"

func NewKBCmd() *cobra.Command {
	cmder := &kbCommander{}

	cmd := &cobra.Command{
		Use:   "kb",
		Short: kbShortDesc,
		Long:  kbLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Resolve(cmd, config.Flags, []string{config.FlagKnowledge})
			if err != nil {
				return err
			}
			return cmder.run(cmd.OutOrStdout(), cfg.Knowledge.Path)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagKnowledge, &cmder.knowledgePath)
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print markdown without terminal rendering")

	return cmd
}

func (c *kbCommander) run(w io.Writer, path string) error {
	kb, err := knowledge.Load(path)
	if err != nil {
		return fmt.Errorf("loading knowledge base: %w", err)
	}

	content := kb.Markdown()
	if c.raw {
		_, err := io.WriteString(w, content)
		return err
	}

	rendered, err := cliui.RenderMarkdown(content)
	if err != nil {
		// Fall back to plain markdown.
		rendered = content
	}

	_, err = io.WriteString(w, rendered)
	return err
}
