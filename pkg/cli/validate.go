package cli

import (
	"github.com/spf13/cobra"

	"section-cms/pkg/services"
)

type validationReport struct {
	Valid  bool     `json:"valid"`
	Type   string   `json:"type"`
	Errors []string `json:"errors"`
}

func newValidateCommand() *cobra.Command {
	var flags sectionFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check section content against the form rules of its variant",
		Long: `validate runs the same checks the editor applies before saving and
exits non-zero when the content is rejected.`,
		Example: `  section-cms validate --section our-values --type values2 --content values.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			section, err := flags.load(cmd)
			if err != nil {
				return err
			}
			cat, err := services.GetCatalog()
			if err != nil {
				return err
			}
			family, err := cat.Family(section.Component)
			if err != nil {
				return err
			}

			editor := services.NewSectionEditor(family, section)
			report := validationReport{Type: editor.Type(), Errors: editor.Validate()}
			if report.Errors == nil {
				report.Errors = []string{}
			}
			report.Valid = len(report.Errors) == 0
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Valid {
				return errInvalidContent
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
