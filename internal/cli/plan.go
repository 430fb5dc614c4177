package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/roboplan/internal/engine"
	"github.com/danieljhkim/roboplan/internal/planner"
)

var (
	planSceneFile   string
	planIntent      string
	planTarget      string
	planDestination string
	planAngle       float64
	planOffline     bool
	planNoSave      bool
)

var planCmd = &cobra.Command{
	Use:   "plan <image> [instruction...]",
	Short: "Turn an image and an instruction into robot actions",
	Long: `Perceive the scene in an image, parse the instruction and print the ordered
action plan. Every cycle is recorded in plan history unless --no-save is given.

Several instructions may follow the image; each is planned separately against
the same scene, which is perceived once.

The scene can be supplied as a file instead of being perceived:
  --scene FILE, or a sidecar next to the image (kitchen.jpg -> kitchen.scene.yaml)
  when running offline.

The instruction can be supplied as fields instead of text:
  roboplan plan kitchen.jpg --intent place --target cup --destination cabinet

Examples:
  roboplan plan kitchen.jpg "put the cup in the cabinet"
  roboplan plan kitchen.jpg "把杯子放进厨房的柜子里" --json
  roboplan plan kitchen.jpg "pick up the vase" "rotate the cup by 45 degrees" --offline`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, texts := args[0], args[1:]

		var given *planner.Instruction
		if planIntent != "" {
			in, err := instructionFromFlags()
			if err != nil {
				return err
			}
			given = &in
			texts = []string{in.String()}
		}
		if len(texts) == 0 {
			return fmt.Errorf("an instruction is required (text argument or --intent)")
		}

		ctx := context.Background()
		eng, err := newEngine(ctx, engineOptions{sceneFile: planSceneFile, offline: planOffline})
		if err != nil {
			return err
		}

		var results []planOutput
		var firstErr error
		for _, text := range texts {
			req := &engine.PlanRequest{Image: image, Text: text, Instruction: given, NoSave: planNoSave}
			res, err := eng.Plan(ctx, req)
			results = append(results, newPlanOutput(text, res, err))
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}

		if jsonOutput {
			var v any = results
			if len(results) == 1 {
				v = results[0]
			}
			if err := outputJSON(v); err != nil {
				return err
			}
			return reported(firstErr)
		}

		for i, out := range results {
			if i > 0 {
				PrintSeparator()
			}
			printPlanOutput(out)
		}
		return reported(firstErr)
	},
}

func init() {
	planCmd.Flags().StringVar(&planSceneFile, "scene", "", "Read the scene from a YAML/JSON file instead of the image")
	planCmd.Flags().StringVar(&planIntent, "intent", "", "Instruction intent ("+intentList()+")")
	planCmd.Flags().StringVar(&planTarget, "target", "", "Instruction target (with --intent)")
	planCmd.Flags().StringVar(&planDestination, "destination", "", "Instruction destination (with --intent)")
	planCmd.Flags().Float64Var(&planAngle, "angle", 0, "Rotation angle in degrees (with --intent rotate)")
	planCmd.Flags().BoolVar(&planOffline, "offline", false, "Use rule-based parsing instead of the vision model")
	planCmd.Flags().BoolVar(&planNoSave, "no-save", false, "Do not record the cycle in plan history")
}

func intentList() string {
	names := make([]string, 0, len(planner.Intents()))
	for _, i := range planner.Intents() {
		names = append(names, string(i))
	}
	return strings.Join(names, ", ")
}

// instructionFromFlags builds an instruction from --intent and friends. The
// intent is not validated here so the planner reports unsupported intents
// the same way for every input path.
func instructionFromFlags() (planner.Instruction, error) {
	if planTarget == "" {
		return planner.Instruction{}, fmt.Errorf("--target is required with --intent")
	}
	return planner.Instruction{
		Intent:      planner.Intent(strings.ToLower(strings.TrimSpace(planIntent))),
		Target:      planTarget,
		Destination: planDestination,
		Angle:       planAngle,
	}, nil
}

// planOutput is the JSON shape of one planning cycle.
type planOutput struct {
	Success      bool                 `json:"success"`
	ID           string               `json:"id,omitempty"`
	Text         string               `json:"text"`
	Instruction  *planner.Instruction `json:"instruction,omitempty"`
	Plan         planner.Plan         `json:"plan,omitempty"`
	AlreadyThere bool                 `json:"alreadyThere,omitempty"`
	Error        string               `json:"error,omitempty"`
	ErrorKind    string               `json:"errorKind,omitempty"`
}

func newPlanOutput(text string, res *engine.PlanResult, err error) planOutput {
	out := planOutput{Success: err == nil, Text: text}
	if res != nil {
		out.ID = res.ID
		out.Plan = res.Plan
		out.AlreadyThere = res.AlreadyThere
		if res.Instruction.Intent != "" {
			in := res.Instruction
			out.Instruction = &in
		}
	}
	if err != nil {
		out.Error = err.Error()
		out.ErrorKind = planner.ErrorKind(err)
	}
	return out
}

func printPlanOutput(out planOutput) {
	PrintSection("Plan")
	PrintLabelValue("Instruction", out.Text)
	if out.Instruction != nil {
		PrintLabelValue("Parsed", out.Instruction.String())
	}

	if !out.Success {
		if out.ErrorKind != "" {
			PrintLabelValueWithColor("Failure", out.ErrorKind, errorColor)
		}
		PrintError(out.Error)
	} else {
		fmt.Fprintln(stdout)
		PrintNumberedList(actionLines(out.Plan), 1)
		fmt.Fprintln(stdout)
		if out.AlreadyThere {
			PrintWarning(fmt.Sprintf("%s is already at %s", out.Instruction.Target, out.Instruction.Destination))
		}
		PrintSuccess(PrintCount(len(out.Plan), "action", "actions"))
	}

	if out.ID != "" {
		PrintLabelValue("Recorded", out.ID)
	}
}

func actionLines(plan planner.Plan) []string {
	lines := make([]string, len(plan))
	for i, a := range plan {
		lines[i] = a.String()
	}
	return lines
}
