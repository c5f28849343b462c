package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rule-elements/internal/dice"
	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/predicate"
	"github.com/KirkDiggler/rule-elements/internal/prompt"
	"github.com/KirkDiggler/rule-elements/internal/services/preparation"
	"github.com/KirkDiggler/rule-elements/internal/synthetics"
)

type prepareOptions struct {
	selections  map[string]string
	rollOptions []string
	create      bool
	firstChoice bool
	roll        bool
}

func newPrepareCmd(a *app) *cobra.Command {
	opts := &prepareOptions{}
	cmd := &cobra.Command{
		Use:   "prepare <actor-file>",
		Short: "Run a preparation pass and print what the rule elements produced",
		Long: `Prepare loads an actor fixture, runs every rule element through the
preparation phases and prints roll options, toggles, IWR, modifier totals for
every selector and any warnings.

With --create the fixture's items are added as new items first, so choice
sets prompt and grants pull from the compendium. Answers come from --select
flag=value pairs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPrepare(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringToStringVar(&opts.selections, "select", nil, "choice set answers as flag=value")
	cmd.Flags().StringSliceVar(&opts.rollOptions, "roll-options", nil, "extra roll options for modifier totals")
	cmd.Flags().BoolVar(&opts.create, "create", false, "add the fixture's items as new items")
	cmd.Flags().BoolVar(&opts.firstChoice, "first", false, "pick the first choice for unanswered choice sets")
	cmd.Flags().BoolVar(&opts.roll, "roll", false, "roll a d20 check for every modifier selector")
	return cmd
}

func (a *app) runPrepare(cmd *cobra.Command, path string, opts *prepareOptions) error {
	ctx := cmd.Context()

	src, err := readActorFile(path)
	if err != nil {
		return err
	}

	chooser := prompt.NewScripted(opts.selections)
	if opts.firstChoice {
		chooser.Fallback = prompt.First{}
	}
	svc, err := a.newService(chooser)
	if err != nil {
		return fmt.Errorf("failed to build preparation service: %w", err)
	}

	items := src.Items
	if opts.create {
		src.Items = nil
	}
	if err := a.actors.Put(ctx, src); err != nil {
		return fmt.Errorf("failed to store actor: %w", err)
	}
	if opts.create && len(items) > 0 {
		result, err := svc.CreateItems(ctx, src.ID, items)
		if err != nil {
			return fmt.Errorf("failed to create items: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %d items\n", len(result.Created))
	}

	pass, err := svc.PrepareByID(ctx, src.ID)
	if err != nil {
		return fmt.Errorf("failed to prepare actor: %w", err)
	}
	var roller dice.Roller
	if opts.roll {
		roller = a.roller
	}
	return writeReport(cmd.OutOrStdout(), pass, predicate.NewOptions(opts.rollOptions...), roller)
}

// writeReport prints the pass. A non-nil roller also rolls a check per selector.
func writeReport(w io.Writer, pass *preparation.Pass, extra predicate.Options, roller dice.Roller) error {
	a := pass.Actor
	fmt.Fprintf(w, "%s (%s) level %d\n", a.Name(), a.ID(), a.Level())

	fmt.Fprintln(w, "\nRoll options:")
	for _, opt := range a.GetRollOptions().Slice() {
		fmt.Fprintf(w, "  %s\n", opt)
	}

	if toggles := a.Synthetics.Toggles.List(); len(toggles) > 0 {
		fmt.Fprintln(w, "\nToggles:")
		for _, t := range toggles {
			mark := " "
			if t.Checked {
				mark = "x"
			}
			line := fmt.Sprintf("  [%s] %s:%s %s", mark, t.Domain, t.Option, t.Label)
			if sub, ok := t.SelectedSuboption(); ok {
				line += " (" + sub + ")"
			}
			fmt.Fprintln(w, line)
		}
	}

	writeIWR(w, "Immunities", a.Attributes.Immunities)
	writeIWR(w, "Weaknesses", a.Attributes.Weaknesses)
	writeIWR(w, "Resistances", a.Attributes.Resistances)

	selectors := a.Synthetics.Modifiers.Selectors()
	sort.Strings(selectors)
	if len(selectors) > 0 {
		fmt.Fprintln(w, "\nModifiers:")
	}
	for _, selector := range selectors {
		domains := []string{selector}
		options := pass.BeforeRoll(domains, extra)
		mods := synthetics.ExtractModifiers(a.Synthetics, domains, synthetics.RollContext{Domains: domains, Options: options})
		stat := synthetics.NewStatisticModifier(selector, mods, options)
		fmt.Fprintf(w, "  %s %+d\n", selector, stat.TotalModifier)
		for _, m := range stat.Modifiers {
			state := ""
			if !m.Enabled {
				state = " (disabled)"
			}
			fmt.Fprintf(w, "    %s %s%s\n", m, m.Label, state)
		}

		if roller == nil {
			continue
		}
		keep := dice.Keep(synthetics.ExtractRollTwice(a.Synthetics, domains, synthetics.RollContext{Domains: domains, Options: options}))
		result, err := dice.RollCheck(roller, stat.TotalModifier, keep)
		if err != nil {
			return fmt.Errorf("failed to roll %s: %w", selector, err)
		}
		line := fmt.Sprintf("    roll %d %v", result.Total, result.Rolls)
		if keep != "" {
			line += " keep " + string(keep)
		}
		fmt.Fprintln(w, line)
	}

	if warnings := pass.Warnings(); len(warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, msg := range warnings {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
	return nil
}

func writeIWR(w io.Writer, title string, list []*actor.IWR) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, entry := range list {
		line := "  " + entry.Type
		if entry.Value != nil {
			line += fmt.Sprintf(" %g", *entry.Value)
		}
		if len(entry.Exceptions) > 0 {
			line += " except " + strings.Join(entry.Exceptions, ", ")
		}
		fmt.Fprintln(w, line)
	}
}
