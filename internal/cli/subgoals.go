package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/roboplan/internal/engine"
	"github.com/danieljhkim/roboplan/internal/planner"
)

var subgoalsCmd = &cobra.Command{
	Use:   "subgoals <scene-file> [instruction]",
	Short: "Show the subgoals, conflicts and resolved order for an instruction",
	Long: `Decompose an instruction against a scene file and show the intermediate
subgoals, any resource conflicts in the template order, and the order the
conflict resolver settles on. Nothing is recorded in history.

Instructions are parsed with the built-in rules; use --intent and friends for
exact input.

Examples:
  roboplan subgoals kitchen.scene.yaml "put the cup in the cabinet"
  roboplan subgoals kitchen.scene.yaml --intent rotate --target cup --angle 45`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &engine.SubGoalsRequest{Image: args[0]}
		if len(args) == 2 {
			req.Text = args[1]
		}
		if planIntent != "" {
			in, err := instructionFromFlags()
			if err != nil {
				return err
			}
			req.Instruction = &in
		}

		ctx := context.Background()
		eng, err := newEngine(ctx, engineOptions{sceneFile: args[0], offline: true})
		if err != nil {
			return err
		}

		result, err := eng.SubGoals(ctx, req)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputSubGoalsJSON(result)
		}

		PrintSection("Subgoals")
		PrintLabelValue("Instruction", result.Instruction.String())
		fmt.Fprintln(stdout)
		rows := make([][]string, 0, len(result.SubGoals))
		for _, sg := range result.SubGoals {
			rows = append(rows, []string{sg.ID, strings.Join(sg.Requires, ", "), claimList(sg.Claims)})
		}
		PrintTable([]string{"ID", "Requires", "Claims"}, rows)

		fmt.Fprintln(stdout)
		PrintSubsection("Conflicts")
		if len(result.Conflicts) == 0 {
			PrintEmptyState("none")
		}
		for _, c := range result.Conflicts {
			PrintList([]string{fmt.Sprintf("%s: %s", c.SubGoal, c.Reason)}, 1)
		}

		fmt.Fprintln(stdout)
		PrintSubsection("Resolved order")
		if result.ResolveError != nil {
			PrintError(result.ResolveError.Error())
			return reported(result.ResolveError)
		}
		ordered := make([]string, len(result.Ordered))
		for i, sg := range result.Ordered {
			ordered[i] = sg.ID
		}
		PrintNumberedList(ordered, 1)
		return nil
	},
}

func init() {
	subgoalsCmd.Flags().StringVar(&planIntent, "intent", "", "Instruction intent ("+intentList()+")")
	subgoalsCmd.Flags().StringVar(&planTarget, "target", "", "Instruction target (with --intent)")
	subgoalsCmd.Flags().StringVar(&planDestination, "destination", "", "Instruction destination (with --intent)")
	subgoalsCmd.Flags().Float64Var(&planAngle, "angle", 0, "Rotation angle in degrees (with --intent rotate)")
}

func claimList(claims []planner.Claim) string {
	parts := make([]string, len(claims))
	for i, c := range claims {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// outputSubGoalsJSON outputs the decomposition in JSON format.
func outputSubGoalsJSON(result *engine.SubGoalsResult) error {
	output := map[string]any{
		"success":     result.ResolveError == nil,
		"instruction": result.Instruction,
		"subgoals":    result.SubGoals,
		"conflicts":   result.Conflicts,
	}
	if result.ResolveError != nil {
		output["error"] = result.ResolveError.Error()
		output["errorKind"] = planner.ErrorKind(result.ResolveError)
	} else {
		ordered := make([]string, len(result.Ordered))
		for i, sg := range result.Ordered {
			ordered[i] = sg.ID
		}
		output["ordered"] = ordered
	}

	if err := outputJSON(output); err != nil {
		return err
	}
	return reported(result.ResolveError)
}
