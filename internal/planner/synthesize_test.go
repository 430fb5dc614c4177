package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/roboplan/internal/scene"
)

func TestSynthesize_WorkedExample(t *testing.T) {
	sc := &scene.Scene{
		Objects:   []scene.Object{{Name: "cup", Location: "table"}},
		Locations: []scene.Location{{Name: "kitchen"}, {Name: "cabinet", Parent: "kitchen"}},
	}

	plan, err := Synthesize(Instruction{Intent: IntentPlace, Target: "cup", Destination: "cabinet"}, sc)
	require.NoError(t, err)

	want := Plan{
		Navigate{Target: "cup", Purpose: PurposeReachObject},
		Grasp{Target: "cup"},
		Navigate{Target: "cabinet", Purpose: PurposeReachDestination},
		Place{Target: "cup", Destination: "cabinet"},
	}
	assert.Equal(t, want, plan)

	data, err := json.Marshal(plan)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type": "navigate", "target": "cup", "purpose": "reach_object"},
		{"type": "grasp", "target": "cup"},
		{"type": "navigate", "target": "cabinet", "purpose": "reach_destination"},
		{"type": "place", "target": "cup", "destination": "cabinet"}
	]`, string(data))
}

func TestSynthesizeSubGoals(t *testing.T) {
	sc := kitchenScene()

	plan, subgoals, err := SynthesizeSubGoals(Instruction{Intent: IntentMove, Target: "CUP", Destination: "Cabinet"}, sc)
	require.NoError(t, err)
	require.Len(t, subgoals, len(plan))
	assert.Equal(t, []string{"reach(cup)", "grasp(cup)", "reach(cabinet)", "move(cup,cabinet)"}, ids(subgoals))
	assert.Equal(t, "cup", subgoals[3].Target)
	assert.Equal(t, "cabinet", subgoals[3].Destination)

	_, subgoals, err = SynthesizeSubGoals(Instruction{Intent: "teleport", Target: "cup"}, sc)
	assert.ErrorIs(t, err, ErrUnsupportedIntent)
	assert.Nil(t, subgoals)
}

func TestSynthesize_Idempotent(t *testing.T) {
	sc := kitchenScene()
	for _, in := range []Instruction{
		{Intent: IntentPlace, Target: "vase", Destination: "side table"},
		{Intent: IntentRotate, Target: "cup", Angle: -30},
		{Intent: IntentNavigate, Target: "kitchen"},
	} {
		first, err := Synthesize(in, sc)
		require.NoError(t, err)
		second, err := Synthesize(in, sc)
		require.NoError(t, err)
		assert.Equal(t, first, second, "%s", in)
	}
}

func TestSynthesize_EveryIntentReferencesSceneOnly(t *testing.T) {
	sc := kitchenScene()
	targets := []string{"cup", "vase", "bookshelf", "Kettle"}
	dests := []string{"cabinet", "side table", "kitchen", "bookshelf"}

	for _, intent := range Intents() {
		for _, target := range targets {
			for _, dest := range dests {
				if target == dest {
					continue
				}
				in := Instruction{Intent: intent, Target: target, Destination: dest}
				t.Run(fmt.Sprintf("%s/%s/%s", intent, target, dest), func(t *testing.T) {
					plan, err := Synthesize(in, sc)
					require.NoError(t, err)
					require.NotEmpty(t, plan)
					for _, a := range plan {
						for _, ref := range a.Refs() {
							assert.True(t, sc.Has(ref), "%s references %q", a, ref)
						}
					}
					assert.Empty(t, DetectConflicts(mustDecompose(t, in, sc)))
				})
			}
		}
	}
}

func mustDecompose(t *testing.T, in Instruction, sc *scene.Scene) []SubGoal {
	t.Helper()
	subgoals, err := Decompose(in, sc)
	require.NoError(t, err)
	return subgoals
}

func TestSynthesize_Parameters(t *testing.T) {
	sc := kitchenScene()

	t.Run("fragile object is grasped gently", func(t *testing.T) {
		plan, err := Synthesize(Instruction{Intent: IntentGrasp, Target: "vase"}, sc)
		require.NoError(t, err)
		assert.Equal(t, Grasp{Target: "vase", Force: ForceGentle}, plan[1])
	})

	t.Run("place height from destination", func(t *testing.T) {
		plan, err := Synthesize(Instruction{Intent: IntentPlace, Target: "cup", Destination: "bookshelf"}, sc)
		require.NoError(t, err)
		assert.Equal(t, Place{Target: "cup", Destination: "bookshelf", Height: HeightShelf}, plan[3])

		plan, err = Synthesize(Instruction{Intent: IntentPlace, Target: "cup", Destination: "side table"}, sc)
		require.NoError(t, err)
		assert.Equal(t, HeightTable, plan[3].(Place).Height)
	})

	t.Run("rotate direction follows sign", func(t *testing.T) {
		plan, err := Synthesize(Instruction{Intent: IntentRotate, Target: "cup"}, sc)
		require.NoError(t, err)
		assert.Equal(t, Rotate{Target: "cup", Angle: 90, Direction: DirectionClockwise}, plan[1])

		plan, err = Synthesize(Instruction{Intent: IntentRotate, Target: "cup", Angle: -90}, sc)
		require.NoError(t, err)
		assert.Equal(t, DirectionCounterclockwise, plan[1].(Rotate).Direction)
	})

	t.Run("move", func(t *testing.T) {
		plan, err := Synthesize(Instruction{Intent: IntentMove, Target: "cup", Destination: "cabinet"}, sc)
		require.NoError(t, err)
		assert.Equal(t, Move{Target: "cup", Destination: "cabinet"}, plan[3])
	})
}

func TestSynthesize_Failures(t *testing.T) {
	sc := kitchenScene()

	tests := []struct {
		name     string
		in       Instruction
		wantErr  error
		wantKind string
	}{
		{
			name:     "unknown verb",
			in:       Instruction{Intent: "teleport", Target: "cup", Destination: "cabinet"},
			wantErr:  ErrUnsupportedIntent,
			wantKind: "unsupported_intent",
		},
		{
			name:     "missing entity",
			in:       Instruction{Intent: IntentPlace, Target: "teapot", Destination: "cabinet"},
			wantErr:  ErrUnresolvedReference,
			wantKind: "unresolved_reference",
		},
		{
			name:     "missing destination",
			in:       Instruction{Intent: IntentMove, Target: "cup"},
			wantErr:  ErrInvalidInstruction,
			wantKind: "invalid_instruction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Synthesize(tt.in, sc)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, plan, "no action may be produced")
			assert.Equal(t, tt.wantKind, ErrorKind(err))
		})
	}
}

func TestVerify(t *testing.T) {
	sc := kitchenScene()

	require.NoError(t, Verify(Plan{Navigate{Target: "cup"}, Place{Target: "cup", Destination: "cabinet"}}, sc))

	err := Verify(Plan{Navigate{Target: "cup"}, Place{Target: "cup", Destination: "fridge"}}, sc)
	assert.ErrorIs(t, err, ErrUnresolvedReference)
	assert.Contains(t, err.Error(), "action 2")
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "", ErrorKind(errors.New("boom")))
	assert.Equal(t, "conflict_unresolvable", ErrorKind(fmt.Errorf("cycle: %w", ErrConflictUnresolvable)))
}

func TestPlan_JSON(t *testing.T) {
	plan := Plan{
		Navigate{Target: "vase", Purpose: PurposeReachObject},
		Grasp{Target: "vase", Force: ForceGentle},
		Rotate{Target: "vase", Angle: 0, Direction: DirectionCounterclockwise},
		Move{Target: "vase", Destination: "bookshelf"},
		Place{Target: "vase", Destination: "bookshelf", Height: HeightShelf},
	}

	data, err := json.Marshal(plan)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"parameters":{"force":"gentle"}`)
	assert.Contains(t, string(data), `"angle":0`)

	var decoded Plan
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, plan, decoded)
}

func TestFromRecord_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{name: "no target", record: Record{Type: ActionGrasp}},
		{name: "place without destination", record: Record{Type: ActionPlace, Target: "cup"}},
		{name: "move without destination", record: Record{Type: ActionMove, Target: "cup"}},
		{name: "rotate without angle", record: Record{Type: ActionRotate, Target: "cup"}},
		{name: "unknown type", record: Record{Type: "teleport", Target: "cup"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRecord(tt.record)
			assert.Error(t, err)
		})
	}
}
