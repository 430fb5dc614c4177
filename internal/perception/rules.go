package perception

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/danieljhkim/roboplan/internal/planner"
	"github.com/danieljhkim/roboplan/internal/scene"
)

// RuleParser parses a fixed set of English and Chinese command forms with
// regular expressions. It needs no model and is deterministic.
type RuleParser struct{}

// NewRuleParser creates a RuleParser.
func NewRuleParser() *RuleParser {
	return &RuleParser{}
}

type rule struct {
	intent planner.Intent
	re     *regexp.Regexp
	// build maps submatches to target, destination and angle text
	build func(m []string) (target, dest, angle string)
}

func targetDest(m []string) (string, string, string) { return m[1], m[2], "" }
func targetOnly(m []string) (string, string, string) { return m[1], "", "" }

const article = `(?:the\s+|a\s+|an\s+|my\s+)?`

// Order matters: "move to the kitchen" is navigation, "take the cup to the
// cabinet" is a move, "take the cup" is a grasp.
var rules = []rule{
	{
		intent: planner.IntentPlace,
		re:     regexp.MustCompile(`^把(.+?)(?:放进|放到|放入|放在)(.+)$`),
		build:  targetDest,
	},
	{
		intent: planner.IntentMove,
		re:     regexp.MustCompile(`^把(.+?)(?:移到|移动到|搬到|拿到)(.+)$`),
		build:  targetDest,
	},
	{
		intent: planner.IntentGrasp,
		re:     regexp.MustCompile(`^(?:拿起|抓起|抓取|拿)(.+)$`),
		build:  targetOnly,
	},
	{
		intent: planner.IntentRotate,
		re:     regexp.MustCompile(`^(?:旋转|转动)(.+?)(?:(-?\d+(?:\.\d+)?)度)?$`),
		build:  func(m []string) (string, string, string) { return m[1], "", m[2] },
	},
	{
		intent: planner.IntentNavigate,
		re:     regexp.MustCompile(`^(?:去|走到|导航到|前往)(.+)$`),
		build:  targetOnly,
	},
	{
		intent: planner.IntentNavigate,
		re:     regexp.MustCompile(`(?i)^(?:go|navigate|drive|move|head)\s+(?:over\s+)?to\s+` + article + `(.+)$`),
		build:  targetOnly,
	},
	{
		intent: planner.IntentPlace,
		re:     regexp.MustCompile(`(?i)^(?:put|place|store|set)\s+` + article + `(.+?)\s+(?:in|into|on|onto|inside|to)\s+` + article + `(.+)$`),
		build:  targetDest,
	},
	{
		intent: planner.IntentMove,
		re:     regexp.MustCompile(`(?i)^(?:move|carry|bring|take)\s+` + article + `(.+?)\s+(?:to|into|onto)\s+` + article + `(.+)$`),
		build:  targetDest,
	},
	{
		intent: planner.IntentGrasp,
		re:     regexp.MustCompile(`(?i)^(?:pick\s+up|grab|grasp|take|hold)\s+` + article + `(.+?)(?:\s+up)?$`),
		build:  targetOnly,
	},
	{
		intent: planner.IntentRotate,
		re:     regexp.MustCompile(`(?i)^(?:rotate|turn)\s+` + article + `(.+?)(?:\s+by\s+(-?\d+(?:\.\d+)?)\s*(?:degrees?|°)?)?(?:\s+(counterclockwise|anticlockwise|clockwise))?$`),
		build: func(m []string) (string, string, string) {
			angle := m[2]
			if angle != "" && m[3] != "" && m[3] != "clockwise" && !strings.HasPrefix(angle, "-") {
				angle = "-" + angle
			}
			return m[1], "", angle
		},
	},
}

// genericForm catches "<verb> the X [to the Y]" for verbs with no rule so
// the planner can report the intent as unsupported.
var genericForm = regexp.MustCompile(`(?i)^([a-z]+)\s+` + article + `(.+?)(?:\s+(?:to|into|in|on|onto)\s+` + article + `(.+))?$`)

var leadingPolite = regexp.MustCompile(`(?i)^(?:please|kindly|robot,?|请|帮我)\s*`)

// ParseInstruction implements InstructionParser.
func (p *RuleParser) ParseInstruction(_ context.Context, text string, sc *scene.Scene) (planner.Instruction, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimRight(cleaned, ".!?。！？ ")
	for {
		next := leadingPolite.ReplaceAllString(cleaned, "")
		if next == cleaned {
			break
		}
		cleaned = strings.TrimSpace(next)
	}
	if cleaned == "" {
		return planner.Instruction{}, fmt.Errorf("%w: empty instruction", ErrNotUnderstood)
	}

	for _, r := range rules {
		m := r.re.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}
		target, dest, angle := r.build(m)
		in := planner.Instruction{
			Intent:      r.intent,
			Target:      Ground(target, sc),
			Destination: Ground(dest, sc),
		}
		if angle != "" {
			a, err := strconv.ParseFloat(angle, 64)
			if err != nil {
				return planner.Instruction{}, fmt.Errorf("%w: bad angle %q", ErrNotUnderstood, angle)
			}
			in.Angle = a
		}
		return in, nil
	}

	if m := genericForm.FindStringSubmatch(cleaned); m != nil {
		return planner.Instruction{
			Intent:      planner.Intent(strings.ToLower(m[1])),
			Target:      Ground(m[2], sc),
			Destination: Ground(m[3], sc),
		}, nil
	}
	return planner.Instruction{}, fmt.Errorf("%w: %q", ErrNotUnderstood, text)
}

// chinesePlaceSuffix strips positional suffixes: 柜子里 -> 柜子.
var chinesePlaceSuffix = regexp.MustCompile(`(?:里面|里边|上面|里|上|中|内)$`)

// Ground maps a phrase from an instruction onto a scene name.
//
// It tries, in order: a unique scene lookup of the phrase; the same for the
// head noun ("kitchen cabinet" -> "cabinet", "厨房的柜子" -> "柜子"); a unique
// entity whose name contains, or is contained in, the phrase; a unique object
// whose Type equals the phrase. Anything else returns the cleaned phrase so
// the planner reports it as unresolved.
func Ground(phrase string, sc *scene.Scene) string {
	p := strings.TrimSpace(phrase)
	if p == "" {
		return ""
	}
	p = chinesePlaceSuffix.ReplaceAllString(p, "")
	if sc == nil {
		return p
	}

	candidates := []string{p}
	if i := strings.LastIndex(p, "的"); i >= 0 && i+len("的") < len(p) {
		candidates = append(candidates, p[i+len("的"):])
	}
	if fields := strings.Fields(p); len(fields) > 1 {
		candidates = append(candidates, fields[len(fields)-1])
	}
	for _, c := range candidates {
		if e, err := sc.Lookup(c); err == nil {
			return e.Name
		}
	}

	lower := strings.ToLower(p)
	var contained []string
	for _, name := range sc.Names() {
		n := strings.ToLower(name)
		if strings.Contains(lower, n) || strings.Contains(n, lower) {
			contained = append(contained, name)
		}
	}
	if len(contained) == 1 {
		return contained[0]
	}

	var typed []string
	for _, o := range sc.Objects {
		if o.Type != "" && strings.EqualFold(o.Type, p) {
			typed = append(typed, o.Name)
		}
	}
	if len(typed) == 1 {
		return typed[0]
	}
	return p
}
