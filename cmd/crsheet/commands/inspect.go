package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/crsheet"
	"github.com/tsawler/crsheet/cmd/crsheet/ui"
	"github.com/tsawler/crsheet/fields"
	"github.com/tsawler/crsheet/reflow"
	"github.com/tsawler/crsheet/scan"
)

// inspection is what inspect prints.
type inspection struct {
	File     string              `json:"file" yaml:"file"`
	Pages    int                 `json:"pages" yaml:"pages"`
	Fields   fields.HeaderFields `json:"fields" yaml:"fields"`
	Comments []scan.Comment      `json:"comments" yaml:"comments"`
	Warnings []string            `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func newInspectCommand(a *app) *cobra.Command {
	var (
		outFormat string
		pages     []int
	)

	cmd := &cobra.Command{
		Use:   "inspect <pdf>",
		Short: "Show a PDF's header fields and FreeText comments without writing a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch outFormat {
			case "table", "json", "yaml":
			default:
				return fmt.Errorf("invalid format %q (want table, json or yaml)", outFormat)
			}

			res, err := a.inspect(args[0], pages)
			if err != nil {
				return err
			}

			switch outFormat {
			case "json":
				enc := json.NewEncoder(ui.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			case "yaml":
				enc := yaml.NewEncoder(ui.Out)
				enc.SetIndent(2)
				if err := enc.Encode(res); err != nil {
					return err
				}
				return enc.Close()
			}
			printInspection(res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFormat, "format", "f", "table", "output format: table, json or yaml")
	cmd.Flags().IntSliceVarP(&pages, "pages", "p", nil, "pages to read (1-based, comma separated)")
	return cmd
}

func (a *app) inspect(path string, pages []int) (*inspection, error) {
	doc := crsheet.Open(path).WithLogger(a.log).Pages(pages...)

	count, err := doc.PageCount()
	if err != nil {
		return nil, err
	}
	hf, warnings, err := doc.Fields()
	if err != nil {
		return nil, err
	}
	comments, _, err := doc.Comments()
	if err != nil {
		return nil, err
	}

	res := &inspection{File: path, Pages: count, Fields: hf, Comments: comments}
	if res.Comments == nil {
		res.Comments = []scan.Comment{}
	}
	for _, w := range warnings {
		res.Warnings = append(res.Warnings, w.String())
	}
	return res, nil
}

func printInspection(res *inspection) {
	ui.Section(res.File)
	ui.Table([]string{"FIELD", "VALUE"}, [][]string{
		{fields.ClientName, res.Fields.ClientName},
		{fields.ProjectDescription, res.Fields.ProjectDescription},
		{fields.ProjectNumber, res.Fields.ProjectNumber},
		{fields.PurchaseOrderReference, res.Fields.PurchaseOrderReference},
	})
	fmt.Fprintln(ui.Out)

	if len(res.Comments) == 0 {
		ui.Warning("No FreeText comments in %d pages", res.Pages)
	} else {
		rows := make([][]string, len(res.Comments))
		for i, c := range res.Comments {
			rows[i] = []string{strconv.Itoa(c.Page), reflow.Reflow(c.Text)}
		}
		ui.Table([]string{"PAGE", "COMMENT"}, rows)
	}
	for _, w := range res.Warnings {
		ui.Warning("%s", w)
	}
}
