package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/lexicon/internal/grid"
)

type fieldInfo struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Scope    string   `json:"scope"`
	Control  string   `json:"control"`
	Wire     string   `json:"wire"`
	Sortable bool     `json:"sortable"`
	Choices  []string `json:"choices,omitempty"`
}

// NewFieldsCommand prints the column table: which fields are editable, which
// record each one is saved to and under what name.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "Show grid columns and where edits are saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := describeFields()
			out := output{format: rootOpts.Format, w: cmd.OutOrStdout()}
			if done, err := out.data(infos); done {
				return err
			}
			rows := make([][]string, 0, len(infos))
			for _, f := range infos {
				sortable := ""
				if f.Sortable {
					sortable = "yes"
				}
				rows = append(rows, []string{f.Name, f.Label, f.Control, f.Scope, f.Wire, sortable, strings.Join(f.Choices, " ")})
			}
			out.table([]string{"Field", "Label", "Control", "Saved to", "As", "Sort", "Choices"}, rows)
			return nil
		},
	}
}

func describeFields() []fieldInfo {
	cols := grid.Columns()
	infos := make([]fieldInfo, 0, len(cols))
	for _, col := range cols {
		info := fieldInfo{
			Name:     col.Name,
			Label:    col.Label,
			Control:  col.Control.String(),
			Sortable: col.Sortable,
		}
		if col.Editable() {
			info.Scope = col.Scope.String()
			info.Wire = col.Wire
		}
		for _, c := range col.Choices() {
			info.Choices = append(info.Choices, c.Value)
		}
		infos = append(infos, info)
	}
	return infos
}
