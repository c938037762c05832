package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tablegen/pkg/dataset"
	"github.com/goliatone/go-tablegen/pkg/model"
	"github.com/goliatone/go-tablegen/pkg/orchestrator"
	"github.com/goliatone/go-tablegen/pkg/renderers/html"
	jsonrenderer "github.com/goliatone/go-tablegen/pkg/renderers/json"
	"github.com/goliatone/go-tablegen/pkg/renderers/text"
)

type renderFlags struct {
	tableType       string
	tableConfig     string
	data            string
	format          string
	section         string
	output          string
	tableID         string
	theme           string
	variant         string
	interactive     bool
	standalone      bool
	fallbackOnError bool
	showMeta        bool
	indent          bool
}

func newRenderCmd(env *Env) *cobra.Command {
	flags := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a dataset as a table",
		Example: `  tablegen render --type facility_basic --data facilities.yaml
  tablegen render --data rows.json --table-config columns.yaml --format text
  cat rows.json | tablegen render --data - --format json --indent`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.runRender(cmd, flags)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.tableType, "type", "t", "", "table type preset")
	f.StringVarP(&flags.tableConfig, "table-config", "c", "", "YAML or JSON table configuration overrides")
	f.StringVarP(&flags.data, "data", "d", "", "YAML or JSON data file, - for stdin")
	f.StringVarP(&flags.format, "format", "f", "", "output format (html, text, json)")
	f.StringVar(&flags.section, "section", "", "render only columns of this section")
	f.StringVarP(&flags.output, "output", "o", "", "output file (stdout if empty)")
	f.StringVar(&flags.tableID, "table-id", "", "root element id")
	f.StringVar(&flags.theme, "theme", "", "theme name")
	f.StringVar(&flags.variant, "variant", "", "theme variant")
	f.BoolVarP(&flags.interactive, "interactive", "i", false, "pick the table type and format interactively")
	f.BoolVar(&flags.standalone, "standalone", false, "wrap HTML output in a complete document")
	f.BoolVar(&flags.fallbackOnError, "fallback-on-error", false, "show an error panel and the fallback table for invalid configuration")
	f.BoolVar(&flags.showMeta, "show-meta", false, "print grid metadata in text output")
	f.BoolVar(&flags.indent, "indent", false, "indent JSON output")
	return cmd
}

func (env *Env) runRender(cmd *cobra.Command, flags *renderFlags) error {
	ctx := cmd.Context()
	a, err := env.App()
	if err != nil {
		return err
	}

	if flags.interactive {
		if err := env.promptRender(cmd, flags); err != nil {
			return err
		}
	}

	rows, err := env.readData(flags.data)
	if err != nil {
		return err
	}
	tableConfig, err := readTableConfig(flags.tableConfig)
	if err != nil {
		return err
	}

	options := a.RenderOptions()
	options.Standalone = flags.standalone
	options.ShowMeta = flags.showMeta
	options.Indent = flags.indent

	result, err := a.Orchestrator.Generate(ctx, orchestrator.Request{
		TableType:       flags.tableType,
		Config:          tableConfig,
		Data:            rows,
		Section:         flags.section,
		TableID:         flags.tableID,
		Renderer:        flags.format,
		ThemeName:       flags.theme,
		ThemeVariant:    flags.variant,
		FallbackOnError: flags.fallbackOnError || a.Config.Render.FallbackOnError,
		RenderOptions:   options,
	})
	if err != nil {
		return err
	}
	if result.ErrorPayload != nil {
		a.Logger.Warn("table configuration is invalid", "error_id", result.ErrorPayload.ErrorID)
	}

	if flags.output == "" {
		_, err = cmd.OutOrStdout().Write(result.Output)
		return err
	}
	if err := os.WriteFile(flags.output, result.Output, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "table written to %s (%s, %d rows)\n", flags.output, result.Strategy, len(rows))
	return nil
}

func (env *Env) promptRender(cmd *cobra.Command, flags *renderFlags) error {
	if env.Prompter == nil {
		return fmt.Errorf("interactive mode needs a terminal prompter")
	}
	ctx := cmd.Context()
	a, err := env.App()
	if err != nil {
		return err
	}

	if flags.tableType == "" {
		ids := a.Store.IDs()
		descriptions := make([]string, len(ids))
		for i, id := range ids {
			tt, _ := a.Store.Lookup(id)
			descriptions[i] = tt.Description
		}
		index, err := env.Prompter.Select(ctx, "Table type", ids, descriptions)
		if err != nil {
			return err
		}
		flags.tableType = ids[index]
	}
	if flags.format == "" {
		formats := []string{html.Name, text.Name, jsonrenderer.Name}
		index, err := env.Prompter.Select(ctx, "Output format", formats, nil)
		if err != nil {
			return err
		}
		flags.format = formats[index]
	}
	return nil
}

func (env *Env) readData(path string) ([]model.Record, error) {
	switch path {
	case "":
		return []model.Record{}, nil
	case "-":
		return dataset.Read(env.Stdin, dataset.FormatYAML)
	default:
		return dataset.Load(path)
	}
}

// readTableConfig decodes a YAML or JSON table configuration file.
func readTableConfig(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table config: %w", err)
	}
	var cfg map[string]any
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse table config %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

