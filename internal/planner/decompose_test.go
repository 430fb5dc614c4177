package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/roboplan/internal/scene"
)

// kitchenScene is the worked example: a cup on a table, and a cabinet in
// the kitchen.
func kitchenScene() *scene.Scene {
	return &scene.Scene{
		Objects: []scene.Object{
			{Name: "cup", Location: "table", Relation: scene.RelationOn},
			{Name: "vase", Location: "bookshelf", Attributes: map[string]string{"fragile": "true"}},
			{Name: "bookshelf", Location: "kitchen"},
			{Name: "Kettle", Location: "cabinet", Relation: scene.RelationInside},
		},
		Locations: []scene.Location{
			{Name: "kitchen"},
			{Name: "cabinet", Parent: "kitchen"},
			{Name: "side table", Parent: "kitchen"},
		},
	}
}

func ids(subgoals []SubGoal) []string {
	out := make([]string, len(subgoals))
	for i, sg := range subgoals {
		out[i] = sg.ID
	}
	return out
}

func TestDecompose_Place(t *testing.T) {
	got, err := Decompose(Instruction{Intent: IntentPlace, Target: "cup", Destination: "cabinet"}, kitchenScene())
	require.NoError(t, err)

	want := []SubGoal{
		{ID: "reach(cup)", Kind: KindReach, Target: "cup", Purpose: PurposeReachObject},
		{
			ID: "grasp(cup)", Kind: KindGrasp, Target: "cup",
			Requires: []string{"reach(cup)"},
			Claims:   []Claim{{Resource: ResourceGripper, Holder: "cup", Op: ClaimAcquire}},
		},
		{
			ID: "reach(cabinet)", Kind: KindReach, Target: "cabinet", Purpose: PurposeReachDestination,
			Requires: []string{"grasp(cup)"},
		},
		{
			ID: "place(cup,cabinet)", Kind: KindPlace, Target: "cup", Destination: "cabinet",
			Requires: []string{"reach(cabinet)"},
			Claims:   []Claim{{Resource: ResourceGripper, Holder: "cup", Op: ClaimRelease}},
		},
	}
	assert.Equal(t, want, got)
}

func TestDecompose_Templates(t *testing.T) {
	tests := []struct {
		name    string
		in      Instruction
		wantIDs []string
	}{
		{
			name:    "move",
			in:      Instruction{Intent: IntentMove, Target: "cup", Destination: "side table"},
			wantIDs: []string{"reach(cup)", "grasp(cup)", "reach(side table)", "move(cup,side table)"},
		},
		{
			name:    "grasp",
			in:      Instruction{Intent: IntentGrasp, Target: "vase"},
			wantIDs: []string{"reach(vase)", "grasp(vase)"},
		},
		{
			name:    "rotate",
			in:      Instruction{Intent: IntentRotate, Target: "cup", Angle: -45},
			wantIDs: []string{"reach(cup)", "rotate(cup)"},
		},
		{
			name:    "navigate to object",
			in:      Instruction{Intent: IntentNavigate, Target: "bookshelf"},
			wantIDs: []string{"reach(bookshelf)"},
		},
		{
			name:    "navigate to location",
			in:      Instruction{Intent: IntentNavigate, Target: "kitchen"},
			wantIDs: []string{"reach(kitchen)"},
		},
		{
			name:    "place onto an object",
			in:      Instruction{Intent: IntentPlace, Target: "cup", Destination: "bookshelf"},
			wantIDs: []string{"reach(cup)", "grasp(cup)", "reach(bookshelf)", "place(cup,bookshelf)"},
		},
		{
			name:    "names are canonicalized",
			in:      Instruction{Intent: IntentGrasp, Target: "kettle"},
			wantIDs: []string{"reach(Kettle)", "grasp(Kettle)"},
		},
		{
			name:    "grasp ignores a destination",
			in:      Instruction{Intent: IntentGrasp, Target: "cup", Destination: "cabinet"},
			wantIDs: []string{"reach(cup)", "grasp(cup)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decompose(tt.in, kitchenScene())
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(got))

			// every step requires exactly the previous one
			for i, sg := range got {
				if i == 0 {
					assert.Empty(t, sg.Requires)
					continue
				}
				assert.Equal(t, []string{got[i-1].ID}, sg.Requires)
			}
		})
	}
}

func TestDecompose_RotateAngle(t *testing.T) {
	got, err := Decompose(Instruction{Intent: IntentRotate, Target: "cup"}, kitchenScene())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, DefaultRotateAngle, got[1].Angle)
	assert.Equal(t, []Claim{{Resource: ResourceGripper, Holder: "cup", Op: ClaimUse}}, got[1].Claims)

	got, err = Decompose(Instruction{Intent: IntentRotate, Target: "cup", Angle: 180}, kitchenScene())
	require.NoError(t, err)
	assert.Equal(t, 180.0, got[1].Angle)
}

func TestDecompose_AlreadyAtDestination(t *testing.T) {
	// the kettle is inside the cabinet already; the full sequence is still emitted
	got, err := Decompose(Instruction{Intent: IntentPlace, Target: "Kettle", Destination: "cabinet"}, kitchenScene())
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestDecompose_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      Instruction
		wantErr error
	}{
		{
			name:    "unknown verb",
			in:      Instruction{Intent: "teleport", Target: "cup", Destination: "cabinet"},
			wantErr: ErrUnsupportedIntent,
		},
		{
			name:    "unknown verb with missing target",
			in:      Instruction{Intent: "teleport"},
			wantErr: ErrUnsupportedIntent,
		},
		{
			name:    "empty target",
			in:      Instruction{Intent: IntentGrasp, Target: "  "},
			wantErr: ErrInvalidInstruction,
		},
		{
			name:    "place without destination",
			in:      Instruction{Intent: IntentPlace, Target: "cup"},
			wantErr: ErrInvalidInstruction,
		},
		{
			name:    "move without destination",
			in:      Instruction{Intent: IntentMove, Target: "cup"},
			wantErr: ErrInvalidInstruction,
		},
		{
			name:    "object is its own destination",
			in:      Instruction{Intent: IntentPlace, Target: "cup", Destination: "CUP"},
			wantErr: ErrInvalidInstruction,
		},
		{
			name:    "target missing from scene",
			in:      Instruction{Intent: IntentPlace, Target: "teapot", Destination: "cabinet"},
			wantErr: ErrUnresolvedReference,
		},
		{
			name:    "destination missing from scene",
			in:      Instruction{Intent: IntentPlace, Target: "cup", Destination: "fridge"},
			wantErr: ErrUnresolvedReference,
		},
		{
			name:    "target is an unenumerated region",
			in:      Instruction{Intent: IntentNavigate, Target: "table"},
			wantErr: ErrUnresolvedReference,
		},
		{
			name:    "grasp a location",
			in:      Instruction{Intent: IntentGrasp, Target: "kitchen"},
			wantErr: ErrUnresolvedReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decompose(tt.in, kitchenScene())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)
		})
	}
}

func TestDecompose_AmbiguousReference(t *testing.T) {
	sc := &scene.Scene{
		Objects:   []scene.Object{{Name: "Cup"}, {Name: "cup"}},
		Locations: []scene.Location{{Name: "cabinet"}},
	}
	_, err := Decompose(Instruction{Intent: IntentPlace, Target: "CUP", Destination: "cabinet"}, sc)
	assert.ErrorIs(t, err, ErrUnresolvedReference)
}

func TestDecompose_IsPure(t *testing.T) {
	sc := kitchenScene()
	in := Instruction{Intent: IntentPlace, Target: "cup", Destination: "cabinet"}

	first, err := Decompose(in, sc)
	require.NoError(t, err)
	first[0].Requires = append(first[0].Requires, "mutated")

	second, err := Decompose(in, sc)
	require.NoError(t, err)
	assert.Empty(t, second[0].Requires)
	assert.Equal(t, kitchenScene(), sc)
}

func TestParseIntent(t *testing.T) {
	in, err := ParseIntent(" Place ")
	require.NoError(t, err)
	assert.Equal(t, IntentPlace, in)

	for _, i := range Intents() {
		assert.True(t, i.Valid(), "%s should be valid", i)
	}

	_, err = ParseIntent("teleport")
	assert.ErrorIs(t, err, ErrUnsupportedIntent)
}
