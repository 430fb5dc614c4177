package perception

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"github.com/danieljhkim/roboplan/internal/planner"
	"github.com/danieljhkim/roboplan/internal/scene"
)

// generator is the single model call Gemini needs. Tests substitute it.
type generator interface {
	generate(ctx context.Context, parts []*genai.Part) (string, error)
}

type genaiGenerator struct {
	cli   *genai.Client
	model string
}

func (g *genaiGenerator) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: parts}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty candidate list", ErrBadResponse)
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// Gemini parses scenes and instructions with a Gemini multimodal model.
type Gemini struct {
	gen      generator
	model    string
	timeout  time.Duration
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
	readFile func(string) ([]byte, error)
}

// NewGemini creates a Gemini parser. An empty apiKey lets the genai client
// fall back to GOOGLE_API_KEY / GEMINI_API_KEY.
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration, logger *slog.Logger) (*Gemini, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGemini(&genaiGenerator{cli: cli, model: model}, model, timeout, logger), nil
}

func newGemini(gen generator, model string, timeout time.Duration, logger *slog.Logger) *Gemini {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{
		gen:      gen,
		model:    model,
		timeout:  timeout,
		attempts: 3,
		backoff:  300 * time.Millisecond,
		logger:   logger,
		readFile: os.ReadFile,
	}
}

// Name identifies the model in logs and history records.
func (g *Gemini) Name() string { return "gemini:" + g.model }

const scenePrompt = `You are the perception module of a household robot.
List every object and location visible in the image as JSON with this shape:
{"objects":[{"name":"cup","type":"cup","location":"table","relation":"on","attributes":{"fragile":"true"}}],
 "locations":[{"name":"kitchen"},{"name":"cabinet","parent":"kitchen"}]}
Rules: names are short, lowercase and unique across objects and locations.
relation is "on", "inside" or empty. Use only attribute values that are strings.
Respond with the JSON object only.`

const instructionPrompt = `You translate a command for a household robot into JSON:
{"intent":"<one of: %s>","target":"<scene name>","destination":"<scene name or empty>","angle":<degrees, only for rotate>}
Use names exactly as they appear in the scene below. If the command asks for
something none of the intents cover, put the command's verb in "intent".
Scene names: %s
Command: %s
Respond with the JSON object only.`

// ParseScene implements SceneParser.
func (g *Gemini) ParseScene(ctx context.Context, imagePath string) (*scene.Scene, error) {
	data, err := g.readFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	parts := []*genai.Part{
		{Text: scenePrompt},
		{InlineData: &genai.Blob{MIMEType: http.DetectContentType(data), Data: data}},
	}

	raw, err := g.call(ctx, "scene", parts)
	if err != nil {
		return nil, err
	}
	var sc scene.Scene
	if err := json.Unmarshal([]byte(stripFences(raw)), &sc); err != nil {
		return nil, fmt.Errorf("%w: scene: %v", ErrBadResponse, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return &sc, nil
}

// ParseInstruction implements InstructionParser.
func (g *Gemini) ParseInstruction(ctx context.Context, text string, sc *scene.Scene) (planner.Instruction, error) {
	intents := make([]string, 0, len(planner.Intents()))
	for _, i := range planner.Intents() {
		intents = append(intents, string(i))
	}
	prompt := fmt.Sprintf(instructionPrompt, strings.Join(intents, ", "), strings.Join(sc.Names(), ", "), text)

	raw, err := g.call(ctx, "instruction", []*genai.Part{{Text: prompt}})
	if err != nil {
		return planner.Instruction{}, err
	}
	var in planner.Instruction
	if err := json.Unmarshal([]byte(stripFences(raw)), &in); err != nil {
		return planner.Instruction{}, fmt.Errorf("%w: instruction: %v", ErrBadResponse, err)
	}
	in.Intent = planner.Intent(strings.ToLower(strings.TrimSpace(string(in.Intent))))
	in.Target = Ground(in.Target, sc)
	in.Destination = Ground(in.Destination, sc)
	return in, nil
}

// call retries transient failures with exponential backoff.
func (g *Gemini) call(ctx context.Context, phase string, parts []*genai.Part) (string, error) {
	var lastErr error
	for attempt := 0; attempt < g.attempts; attempt++ {
		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if g.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		}
		start := time.Now()
		txt, err := g.gen.generate(callCtx, parts)
		cancel()
		if err == nil {
			g.logger.Debug("model call", "phase", phase, "model", g.model,
				"attempt", attempt+1, "duration", time.Since(start), "bytes", len(txt))
			return txt, nil
		}
		lastErr = err
		g.logger.Warn("model call failed", "phase", phase, "model", g.model,
			"attempt", attempt+1, "error", err)

		if attempt == g.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.backoff * time.Duration(1<<attempt)):
		}
	}
	return "", fmt.Errorf("%s: %w", phase, lastErr)
}

// stripFences removes a ```json ... ``` wrapper some models add despite the
// JSON response type.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
