// Package planner turns one Instruction and one Scene into an ordered,
// validated sequence of atomic robot Actions.
//
// A planning cycle has three stages:
//   - Decompose maps the instruction's intent to a fixed template of SubGoals
//   - Resolve orders SubGoals by their requirements and exclusive resource
//     claims (the gripper can hold one object at a time)
//   - Synthesize runs both and maps each SubGoal to exactly one Action,
//     then checks every referenced entity exists in the scene
//
// All three are pure functions of their inputs. A failed cycle returns no
// partial plan; the error wraps one of the sentinels in errors.go.
package planner
