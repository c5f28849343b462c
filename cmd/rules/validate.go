package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	"github.com/KirkDiggler/rule-elements/internal/prompt"
	"github.com/KirkDiggler/rule-elements/internal/rules"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <actor-file>",
		Short: "Check that every rule element of an actor builds and validates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readActorFile(args[0])
			if err != nil {
				return err
			}
			rc, err := a.buildContext(prompt.Decline{})
			if err != nil {
				return err
			}
			failed, err := validateActor(cmd.OutOrStdout(), rc, src)
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d rule elements failed to validate", failed)
			}
			return nil
		},
	}
}

// validateActor prints one line per authored rule and returns how many were
// skipped or invalid
func validateActor(w io.Writer, rc *rules.Context, src *document.ActorSource) (int, error) {
	a, err := actor.New(src)
	if err != nil {
		return 0, err
	}

	// Build without suppression so every failure is reported
	opts := rules.BuildOptions{}
	failed := 0
	for _, item := range a.Items {
		built := make(map[int]rules.Element)
		for _, el := range rc.Catalog.FromOwnedItem(rc, item, opts) {
			built[el.Rule().Index()] = el
		}

		fmt.Fprintf(w, "%s (%s)\n", item.Name(), item.ID())
		for i, raw := range item.Rules() {
			key := "?"
			if parsed, err := rules.ParseSource(raw); err == nil {
				key = parsed.Key
			}

			el, ok := built[i]
			switch {
			case !ok:
				failed++
				fmt.Fprintf(w, "  [%d] %s skipped\n", i, key)
			case el.Rule().IsInvalid():
				failed++
				fmt.Fprintf(w, "  [%d] %s invalid\n", i, key)
			case el.Rule().IsIgnored():
				fmt.Fprintf(w, "  [%d] %s ignored\n", i, key)
			default:
				fmt.Fprintf(w, "  [%d] %s ok\n", i, key)
			}
		}
	}

	for _, msg := range a.Synthetics.Warnings.List() {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
	return failed, nil
}
