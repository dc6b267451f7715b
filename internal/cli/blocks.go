package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cellforge/cellforge/pkg/layout"
	"github.com/cellforge/cellforge/pkg/project"
	"github.com/cellforge/cellforge/pkg/schematic"
	"github.com/cellforge/cellforge/pkg/stdcell"
)

// blocksCommand creates the blocks command.
func (c *CLI) blocksCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "List the block library",
		Long: `Blocks lists every block registered in the standard cell library along
with the views it can generate, the schemas it supports, and its default
parameters.

With --interactive an arrow-key picker opens instead; selecting a block
prints a manifest snippet for it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := libraryInfo()
			if err != nil {
				return err
			}
			if interactive {
				return c.pickBlock(infos)
			}

			printInfo("%d blocks registered", len(infos))
			printNewline()
			for _, info := range infos {
				fmt.Println("  " + StyleHighlight.Render(info.Name))
				printDetail("views:   %s", strings.Join(info.Views, ", "))
				printDetail("schemas: %s", strings.Join(info.Schemas, ", "))
				printDetail("params:  %s", info.Params)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick a block interactively")

	return cmd
}

// libraryInfo introspects every registered block with default parameters.
func libraryInfo() ([]BlockInfo, error) {
	names := stdcell.Names()
	infos := make([]BlockInfo, 0, len(names))
	for _, name := range names {
		blk, err := stdcell.Build(name, nil)
		if err != nil {
			return nil, err
		}

		var views []string
		if _, ok := blk.(schematic.Source); ok {
			views = append(views, project.ViewSchematic)
		}
		if _, ok := blk.(layout.Source); ok {
			views = append(views, project.ViewLayout)
		}

		schemas := make([]string, 0, len(blk.Schemas()))
		for _, s := range blk.Schemas() {
			schemas = append(schemas, string(s))
		}

		params, err := json.Marshal(blk.Params())
		if err != nil {
			return nil, fmt.Errorf("encode params of %q: %w", name, err)
		}

		infos = append(infos, BlockInfo{
			Name:    name,
			Views:   views,
			Schemas: schemas,
			Params:  string(params),
		})
	}
	return infos, nil
}

// pickBlock runs the interactive picker and prints a manifest snippet for
// the selection.
func (c *CLI) pickBlock(infos []BlockInfo) error {
	model, err := tea.NewProgram(NewBlockListModel(infos)).Run()
	if err != nil {
		return fmt.Errorf("run picker: %w", err)
	}

	final, ok := model.(BlockListModel)
	if !ok || final.Selected == nil {
		printInfo("No block selected")
		return nil
	}

	sel := final.Selected
	printSuccess("%s", sel.Name)
	printKeyValue("views", strings.Join(sel.Views, ", "))
	printKeyValue("schemas", strings.Join(sel.Schemas, ", "))
	printKeyValue("defaults", sel.Params)
	printNewline()
	printNextStep("Add to your manifest", fmt.Sprintf("[[targets]]\n  name = %q\n  block = %q", sel.Name+"_1", sel.Name))
	return nil
}
