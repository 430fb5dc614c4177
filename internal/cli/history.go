package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/roboplan/internal/history"
)

var historyLsFailed bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded planning cycles",
	Long: `Every planning cycle, successful or not, is recorded in ~/.roboplan/plans
with its scene, parsed instruction and plan or failure. IDs may be abbreviated
to any unique prefix.`,
}

var historyLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recorded plans, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		eng, err := newEngine(ctx, engineOptions{offline: true})
		if err != nil {
			return err
		}

		records, err := eng.ListPlans(ctx, historyLsFailed)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(records)
		}

		if len(records) == 0 {
			PrintSection("Plans")
			PrintEmptyState("No plans recorded")
			return nil
		}

		PrintSection("Recorded Plans")
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{
				shortID(r.ID),
				r.CreatedAt.Local().Format(time.DateTime),
				r.Status(),
				summarize(r),
			})
		}
		PrintTable([]string{"ID", "Created", "Status", "Instruction"}, rows)
		fmt.Fprintln(stdout)
		PrintInfo("Use 'roboplan history show <id>' for details; any unique ID prefix works.")
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recorded plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		eng, err := newEngine(ctx, engineOptions{offline: true})
		if err != nil {
			return err
		}

		rec, err := eng.GetPlan(ctx, args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(rec)
		}

		PrintSection(fmt.Sprintf("Plan %s", rec.ID))
		PrintLabelValue("Created", rec.CreatedAt.Local().Format(time.RFC3339))
		if rec.Succeeded() {
			PrintLabelValueWithColor("Status", rec.Status(), successColor)
		} else {
			PrintLabelValueWithColor("Status", rec.Status(), errorColor)
		}
		if rec.Image != "" {
			PrintLabelValue("Image", rec.Image)
		}
		if rec.Perception != "" {
			PrintLabelValue("Perception", rec.Perception)
		}
		PrintLabelValue("Text", rec.Text)
		if rec.Instruction != nil {
			PrintLabelValue("Parsed", rec.Instruction.String())
		}

		if rec.Scene != nil {
			fmt.Fprintln(stdout)
			PrintSubsection(fmt.Sprintf("Scene (%s, %s)",
				PrintCount(len(rec.Scene.Objects), "object", "objects"),
				PrintCount(len(rec.Scene.Locations), "location", "locations")))
			PrintList(rec.Scene.Names(), 1)
		}

		fmt.Fprintln(stdout)
		if !rec.Succeeded() {
			PrintError(rec.Error)
			return nil
		}
		PrintSubsection("Actions")
		PrintNumberedList(actionLines(rec.Plan), 1)
		return nil
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a recorded plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		eng, err := newEngine(ctx, engineOptions{offline: true})
		if err != nil {
			return err
		}

		id, err := eng.DeletePlan(ctx, args[0])
		if jsonOutput {
			output := map[string]any{"success": err == nil}
			if id != "" {
				output["id"] = id
			}
			if err != nil {
				output["error"] = err.Error()
			}
			if encErr := outputJSON(output); encErr != nil {
				return encErr
			}
			return reported(err)
		}
		if err != nil {
			return err
		}

		PrintSuccess(fmt.Sprintf("Deleted plan: %s", id))
		return nil
	},
}

func init() {
	historyLsCmd.Flags().BoolVar(&historyLsFailed, "failed", false, "Only list failed cycles")

	historyCmd.AddCommand(historyLsCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRmCmd)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// summarize prefers the parsed instruction over the raw text.
func summarize(r *history.Record) string {
	if r.Instruction != nil {
		return r.Instruction.String()
	}
	return r.Text
}
