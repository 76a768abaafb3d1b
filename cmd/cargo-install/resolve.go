package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spachava753/cargo-install/internal/config"
	"github.com/spachava753/cargo-install/internal/executor"
	"github.com/spachava753/cargo-install/internal/models"
)

var outputFormats = []string{"table", "json", "yaml"}

// resolution is the rendered form of a resolved crate.
type resolution struct {
	Crate    string          `json:"crate" yaml:"crate"`
	Source   string          `json:"source" yaml:"source"`
	Version  string          `json:"version" yaml:"version"`
	CacheKey string          `json:"cache_key" yaml:"cache_key"`
	Path     string          `json:"path" yaml:"path"`
	Command  string          `json:"command" yaml:"command"`
	Notices  []models.Notice `json:"notices,omitempty" yaml:"notices,omitempty"`
}

func newResolveCmd(a *app) *cobra.Command {
	var planPath, output string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the resolved version and cache key without installing",
		Long: `Resolves the crate given by the input flags, or every crate of a plan file,
and prints the version, cache key and cargo command that an install would use.

A plan file lists several crates in YAML:

  crates:
    - crate: ripgrep
      version: ^14
    - crate: typos-cli
      git: https://github.com/crate-ci/typos
      tag: v1.23.0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(outputFormats, output) {
				return models.NewError(models.KindInvalidInput, "output", "invalid output format: %s", output)
			}

			ctx := cmd.Context()

			resolver, platformNotices, err := a.newResolver(ctx)
			if err != nil {
				return err
			}

			var entries []executor.PlanEntry
			if planPath != "" {
				plan, err := config.LoadPlan(planPath)
				if err != nil {
					return err
				}
				orchestrator := executor.NewPlanOrchestrator(resolver, a.settings.Install.Concurrency)
				entries, err = orchestrator.Resolve(ctx, plan)
				if err != nil {
					return err
				}
			} else {
				in, notices, err := a.readInput()
				if err != nil {
					return err
				}
				resolved, err := resolver.Resolve(ctx, in)
				if err != nil {
					return err
				}
				entries = []executor.PlanEntry{{
					Spec:     models.CrateSpec{Crate: in.Crate},
					Resolved: resolved,
					Notices:  append(notices, resolved.Notices...),
				}}
			}

			results := make([]resolution, 0, len(entries))
			for _, e := range entries {
				r := toResolution(e)
				r.Notices = append(r.Notices, platformNotices...)
				results = append(results, r)
			}
			return render(cmd.OutOrStdout(), output, results)
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "plan file listing the crates to resolve")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json, yaml)")

	return cmd
}

func toResolution(e executor.PlanEntry) resolution {
	r := resolution{
		Crate:    e.Resolved.Input.Crate,
		Version:  e.Resolved.Version.Output(),
		CacheKey: e.Resolved.Settings.CacheKey,
		Path:     e.Resolved.Settings.Path,
		Command:  "cargo " + strings.Join(e.Resolved.Settings.Args, " "),
		Notices:  e.Notices,
	}
	switch v := e.Resolved.Version.(type) {
	case models.GitCommit:
		r.Source = v.Repository
	default:
		r.Source = "registry"
	}
	return r
}

func render(w io.Writer, format string, results []resolution) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(results)
	case "table":
		renderTable(w, results)
		return nil
	default:
		return models.NewError(models.KindInvalidInput, "output", "invalid output format: %s", format)
	}
}

func renderTable(w io.Writer, results []resolution) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Crate", "Source", "Version", "Cache Key"})
	var notices []string
	for _, r := range results {
		version := r.Version
		if r.Source != "registry" {
			version = models.ShortCommit(r.Version)
		}
		t.AppendRow(table.Row{r.Crate, r.Source, version, r.CacheKey})
		for _, n := range r.Notices {
			notices = append(notices, fmt.Sprintf("%s: %s", r.Crate, n.Message))
		}
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()

	for _, n := range notices {
		fmt.Fprintf(w, "warning: %s\n", n)
	}
}
