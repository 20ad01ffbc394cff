package cli

import (
	"github.com/spf13/cobra"

	"section-cms/pkg/models"
	"section-cms/pkg/services"
)

type sectionFlags struct {
	section     string
	variant     string
	contentFile string
}

func (f *sectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.section, "section", "", "section family name or component")
	cmd.Flags().StringVar(&f.variant, "type", "", "variant key; unknown keys use the first variant")
	cmd.Flags().StringVar(&f.contentFile, "content", "", "per-variant content file (yaml, toml or json; - for stdin)")
	_ = cmd.MarkFlagRequired("section")
}

func (f *sectionFlags) load(cmd *cobra.Command) (models.Section, error) {
	content, err := readContent(f.contentFile, cmd.InOrStdin())
	if err != nil {
		return models.Section{}, err
	}
	return models.Section{Component: f.section, Type: f.variant, Content: content}, nil
}

func newResolveCommand() *cobra.Command {
	var flags sectionFlags
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the resolved configuration of a section variant",
		Example: `  section-cms resolve --section categories --type category3
  section-cms resolve --section hero --type hero2 --content hero.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			section, err := flags.load(cmd)
			if err != nil {
				return err
			}
			res, err := services.ResolveSection(section)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	flags.register(cmd)
	return cmd
}
