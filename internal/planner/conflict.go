package planner

import (
	"fmt"
	"sort"
	"strings"
)

// Conflict is a problem found in a SubGoal sequence taken in its given order.
type Conflict struct {
	// SubGoal is the ID of the SubGoal where the conflict was detected
	SubGoal string `json:"subgoal"`

	// Resource is the contended resource, empty for ordering conflicts
	Resource string `json:"resource,omitempty"`

	// Reason is a human-readable explanation of the conflict
	Reason string `json:"reason"`

	// Existing describes the current holder or the misplaced requirement
	Existing string `json:"existing,omitempty"`

	// Incoming describes what the SubGoal wants
	Incoming string `json:"incoming,omitempty"`
}

// holders maps a resource to the holder that currently has it.
type holders map[string]string

// check returns a reason the claim cannot be honored, or "".
func (h holders) check(c Claim) string {
	cur, held := h[c.Resource]
	switch c.Op {
	case ClaimAcquire, ClaimUse:
		if held && cur != c.Holder {
			return fmt.Sprintf("%s is holding %s", c.Resource, cur)
		}
	case ClaimRelease:
		if !held {
			return fmt.Sprintf("%s is not holding %s", c.Resource, c.Holder)
		}
		if cur != c.Holder {
			return fmt.Sprintf("%s is holding %s, not %s", c.Resource, cur, c.Holder)
		}
	default:
		return fmt.Sprintf("unknown claim op %q", c.Op)
	}
	return ""
}

func (h holders) apply(c Claim) {
	switch c.Op {
	case ClaimAcquire:
		h[c.Resource] = c.Holder
	case ClaimRelease:
		delete(h, c.Resource)
	}
}

// after returns the holders once every claim of sg is honored in sequence,
// or the reason one cannot be. h is not modified.
func (h holders) after(sg SubGoal) (holders, string) {
	trial := make(holders, len(h))
	for k, v := range h {
		trial[k] = v
	}
	for _, c := range sg.Claims {
		if reason := trial.check(c); reason != "" {
			return nil, reason
		}
		trial.apply(c)
	}
	return trial, ""
}

// DetectConflicts reports resource and ordering conflicts in subgoals as
// given, without reordering. An empty result means the sequence can be
// executed as is.
func DetectConflicts(subgoals []SubGoal) []Conflict {
	conflicts := []Conflict{}
	position := make(map[string]int, len(subgoals))
	for i, sg := range subgoals {
		if _, dup := position[sg.ID]; dup {
			conflicts = append(conflicts, Conflict{SubGoal: sg.ID, Reason: "duplicate subgoal ID"})
			continue
		}
		position[sg.ID] = i
	}

	h := holders{}
	for i, sg := range subgoals {
		for _, req := range sg.Requires {
			j, ok := position[req]
			switch {
			case !ok:
				conflicts = append(conflicts, Conflict{
					SubGoal:  sg.ID,
					Reason:   "requires unknown subgoal",
					Existing: req,
				})
			case j >= i:
				conflicts = append(conflicts, Conflict{
					SubGoal:  sg.ID,
					Reason:   "requires a subgoal that comes later",
					Existing: req,
				})
			}
		}

		for _, c := range sg.Claims {
			if reason := h.check(c); reason != "" {
				conflicts = append(conflicts, Conflict{
					SubGoal:  sg.ID,
					Resource: c.Resource,
					Reason:   reason,
					Existing: h[c.Resource],
					Incoming: c.String(),
				})
				// Continue as if the claim went through so later
				// conflicts are reported against the intended state.
				if c.Op == ClaimAcquire {
					h[c.Resource] = c.Holder
				}
				continue
			}
			h.apply(c)
		}
	}
	return conflicts
}

// Resolve orders subgoals so every SubGoal comes after the ones it requires
// and no two holders have the same resource at once.
//
// The ordering is a depth-first search over topological orders of the
// requirement graph, trying ready SubGoals in input order, so a conflict-free
// input comes back unchanged. When the earliest ready SubGoal cannot take a
// resource, the next ready one that can (typically the one releasing it) goes
// first; a choice that later blocks every ready SubGoal is undone and the next
// candidate tried. Unknown or duplicate IDs, requirement cycles and resource
// deadlocks on every branch fail with ErrConflictUnresolvable and no ordering.
func Resolve(subgoals []SubGoal) ([]SubGoal, error) {
	n := len(subgoals)
	index := make(map[string]int, n)
	for i, sg := range subgoals {
		if sg.ID == "" {
			return nil, fmt.Errorf("%w: subgoal %d has no ID", ErrConflictUnresolvable, i+1)
		}
		if _, dup := index[sg.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate subgoal ID %q", ErrConflictUnresolvable, sg.ID)
		}
		index[sg.ID] = i
	}

	indeg := make([]int, n)
	outgoing := make([][]int, n)
	for i, sg := range subgoals {
		seen := map[int]bool{}
		for _, req := range sg.Requires {
			j, ok := index[req]
			if !ok {
				return nil, fmt.Errorf("%w: %s requires unknown subgoal %q", ErrConflictUnresolvable, sg.ID, req)
			}
			if seen[j] {
				continue
			}
			seen[j] = true
			outgoing[j] = append(outgoing[j], i)
			indeg[i]++
		}
	}

	if done, ok := acyclic(indeg, outgoing); !ok {
		cycle := findCycle(subgoals, outgoing, done)
		return nil, fmt.Errorf("%w: requirement cycle %s", ErrConflictUnresolvable, strings.Join(cycle, " -> "))
	}

	s := &orderSearch{
		subgoals: subgoals,
		outgoing: outgoing,
		indeg:    indeg,
		done:     make([]bool, n),
		order:    make([]int, 0, n),
		dead:     map[string]bool{},
	}
	if !s.search(holders{}) {
		return nil, fmt.Errorf("%w: resource deadlock: %s", ErrConflictUnresolvable, strings.Join(s.blocked, "; "))
	}

	out := make([]SubGoal, n)
	for k, i := range s.order {
		out[k] = subgoals[i]
	}
	return out, nil
}

// acyclic runs Kahn's algorithm on the requirement graph alone and reports
// which nodes it could emit.
func acyclic(indeg []int, outgoing [][]int) ([]bool, bool) {
	remaining := append([]int(nil), indeg...)
	done := make([]bool, len(indeg))
	queue := []int{}
	for i, d := range remaining {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	emitted := 0
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		done[u] = true
		emitted++
		for _, v := range outgoing[u] {
			remaining[v]--
			if remaining[v] == 0 {
				queue = append(queue, v)
			}
		}
	}
	return done, emitted == len(indeg)
}

// orderSearch backtracks over ready SubGoals. States already shown to dead
// end are memoised by emitted set and resource holders.
type orderSearch struct {
	subgoals []SubGoal
	outgoing [][]int
	indeg    []int
	done     []bool
	order    []int
	dead     map[string]bool

	// blocked describes the first state where no ready SubGoal could run
	blocked []string
}

func (s *orderSearch) search(h holders) bool {
	if len(s.order) == len(s.subgoals) {
		return true
	}
	key := s.key(h)
	if s.dead[key] {
		return false
	}

	var blocked []string
	tried := false
	for i := range s.subgoals {
		if s.done[i] || s.indeg[i] > 0 {
			continue
		}
		next, reason := h.after(s.subgoals[i])
		if reason != "" {
			blocked = append(blocked, fmt.Sprintf("%s (%s)", s.subgoals[i].ID, reason))
			continue
		}

		tried = true
		s.take(i, 1)
		if s.search(next) {
			return true
		}
		s.take(i, -1)
	}

	if !tried && s.blocked == nil {
		s.blocked = blocked
	}
	s.dead[key] = true
	return false
}

// take emits i (dir 1) or undoes its emission (dir -1).
func (s *orderSearch) take(i, dir int) {
	s.done[i] = dir > 0
	if dir > 0 {
		s.order = append(s.order, i)
	} else {
		s.order = s.order[:len(s.order)-1]
	}
	for _, m := range s.outgoing[i] {
		s.indeg[m] -= dir
	}
}

func (s *orderSearch) key(h holders) string {
	var b strings.Builder
	for _, d := range s.done {
		if d {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	resources := make([]string, 0, len(h))
	for r := range h {
		resources = append(resources, r)
	}
	sort.Strings(resources)
	for _, r := range resources {
		fmt.Fprintf(&b, "|%s=%s", r, h[r])
	}
	return b.String()
}

// findCycle returns one requirement cycle among the nodes not yet emitted,
// as IDs in requirement order with the first ID repeated at the end.
func findCycle(subgoals []SubGoal, outgoing [][]int, done []bool) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(subgoals))
	parent := make([]int, len(subgoals))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range outgoing[u] {
			if done[v] {
				continue
			}
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// back edge u -> v closes v ... u -> v
				cycle = append(cycle, v)
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range subgoals {
		if done[i] || color[i] != white {
			continue
		}
		if dfs(i) {
			break
		}
	}

	out := make([]string, 0, len(cycle))
	for k := len(cycle) - 1; k >= 0; k-- {
		out = append(out, subgoals[cycle[k]].ID)
	}
	return out
}
