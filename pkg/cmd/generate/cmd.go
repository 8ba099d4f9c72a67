// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package generate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cmdcore "github.com/deckfill/deckfill/pkg/cmd/core"
	"github.com/deckfill/deckfill/pkg/dataval"
	"github.com/deckfill/deckfill/pkg/deck"
	"github.com/deckfill/deckfill/pkg/engine"
	"github.com/deckfill/deckfill/pkg/files"
)

type GenerateOptions struct {
	Debug    bool
	PlanOnly bool
	Output   string

	TemplateFile   string
	DataValuesFile string
}

type GenerateInput struct {
	Template *files.File
	Data     *files.File
}

type GenerateOutput struct {
	Deck   *deck.MemoryDeck
	Result *engine.GenerateResult
	Err    error
}

func NewOptions() *GenerateOptions {
	return &GenerateOptions{Output: "yaml"}
}

func NewCmd(o *GenerateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"g", "gen"},
		Short:   "Generate output slides from a template deck and data values",
		RunE:    func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().StringVarP(&o.TemplateFile, "file", "f", "", "Template deck (JSON document model; ie local path, -)")
	cmd.Flags().StringVar(&o.DataValuesFile, "data-values-file", "", "Data values file (YAML, JSON or TOML)")
	cmd.Flags().StringVarP(&o.Output, "output", "o", "yaml", "Output format (yaml or json)")
	cmd.Flags().BoolVar(&o.PlanOnly, "plan", false, "Print the slide plan instead of generating output")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	return cmd
}

func (o *GenerateOptions) Run() error {
	ui := cmdcore.NewPlainUI(o.Debug)
	t1 := time.Now()

	defer func() {
		ui.Debugf("total: %s\n", time.Now().Sub(t1))
	}()

	if len(o.TemplateFile) == 0 {
		return fmt.Errorf("Expected template deck file to be specified (via --file)")
	}

	in := GenerateInput{}

	templateFiles, err := files.NewFiles([]string{o.TemplateFile}, false)
	if err != nil {
		return err
	}
	in.Template = templateFiles[0]

	if len(o.DataValuesFile) > 0 {
		dataFiles, err := files.NewFiles([]string{o.DataValuesFile}, false)
		if err != nil {
			return err
		}
		in.Data = dataFiles[0]
	}

	out := o.RunWithFiles(in, ui)
	if out.Err != nil {
		return out.Err
	}

	if o.PlanOnly {
		ui.Printf("%s", out.Result.Plan.DebugString())
		return nil
	}

	return o.printDeck(out.Deck, ui)
}

// RunWithFiles runs the pipeline against in-memory inputs. Tests and other
// facades call this directly.
func (o *GenerateOptions) RunWithFiles(in GenerateInput, ui files.UI) GenerateOutput {
	templateBs, err := in.Template.Bytes()
	if err != nil {
		return GenerateOutput{Err: err}
	}

	memDeck, err := deck.NewMemoryDeckFromJSON(templateBs)
	if err != nil {
		return GenerateOutput{Err: fmt.Errorf("Loading template deck %s: %s", in.Template.Description(), err)}
	}

	root := dataval.NewValue(map[string]interface{}{})
	if in.Data != nil {
		root, err = loadDataValues(in.Data)
		if err != nil {
			return GenerateOutput{Err: err}
		}
	}

	result, err := engine.Generate(memDeck, root, ui)
	if err != nil {
		return GenerateOutput{Err: err}
	}

	for _, diag := range result.Diagnostics {
		ui.Debugf("%s\n", diag)
	}

	if !o.PlanOnly {
		err = engine.Apply(memDeck, result)
		if err != nil {
			return GenerateOutput{Err: err}
		}
	}

	return GenerateOutput{Deck: memDeck, Result: result}
}

func (o *GenerateOptions) printDeck(memDeck *deck.MemoryDeck, ui files.UI) error {
	doc := memDeck.AsDocument()

	switch o.Output {
	case "yaml":
		bs, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("Marshaling output: %s", err)
		}
		ui.Printf("%s", bs)

	case "json":
		bs, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("Marshaling output: %s", err)
		}
		ui.Printf("%s\n", bs)

	default:
		return fmt.Errorf("Expected output format to be 'yaml' or 'json', got '%s'", o.Output)
	}

	return nil
}
