package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/architect/pkg/domain"
	"github.com/felixgeelhaar/architect/pkg/domain/ai"
)

// TranslatorService turns a natural-language request into a validated action
// proposal. It never executes anything; the execution engine is the only
// component that talks to the remote service about mutations.
type TranslatorService struct {
	provider ai.Provider
	audit    domain.AuditLogger
	usage    *UsageService
}

const systemPrompt = `You are Architect, an advanced productivity assistant.
Your goal is to help the user organize their tasks by analyzing their current
task list and proposing changes.

When you propose changes, you MUST output a JSON object in this specific format ONLY:

{
    "thought": "Your reasoning here...",
    "actions": [
        {"type": "create_project", "params": {"name": "New Project Name"}},
        {"type": "update_task", "id": "task_id", "params": {"content": "New Name", "priority": 4}},
        {"type": "complete_task", "id": "task_id"},
        {"type": "create_task", "params": {"content": "Task Name", "project_id": "optional_id", "due_string": "tomorrow", "labels": ["label1"]}},
        {"type": "create_label", "params": {"name": "Label Name"}},
        {"type": "add_label", "id": "task_id", "params": {"label": "Label Name"}},
        {"type": "remove_label", "id": "task_id", "params": {"label": "Label Name"}},
        {"type": "create_section", "params": {"name": "Section Name", "project_id": "project_id"}},
        {"type": "move_task", "id": "task_id", "params": {"project_id": "optional_p_id", "section_id": "optional_s_id"}},
        {"type": "add_comment", "id": "task_id", "params": {"content": "Comment content"}}
    ]
}

If you just want to talk or give advice without actions, return:
{
    "thought": "Your advice...",
    "actions": []
}`

const proposalSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["thought", "actions"],
  "properties": {
    "thought": { "type": "string" },
    "actions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type"],
        "properties": {
          "type": { "type": "string" },
          "id": { "type": "string" }
        }
      }
    }
  }
}`

var proposalSchemaLoader = gojsonschema.NewStringLoader(proposalSchemaJSON)

// RejectedAction pairs a dropped action with the reason it was dropped.
type RejectedAction struct {
	Action domain.Action `json:"action"`
	Reason string        `json:"reason"`
}

// Analysis is the translator's output: the model's reasoning, the actions
// that survived validation, and the ones that did not.
type Analysis struct {
	Thought  string           `json:"thought"`
	Actions  []domain.Action  `json:"actions"`
	Rejected []RejectedAction `json:"rejected,omitempty"`
}

func NewTranslatorService(provider ai.Provider, audit domain.AuditLogger, usage *UsageService) *TranslatorService {
	return &TranslatorService{provider: provider, audit: audit, usage: usage}
}

// Translate sends the request plus the rendered world context to the model
// and validates whatever comes back. A malformed response gets exactly one
// retry with a stern reminder before the whole call fails.
func (s *TranslatorService) Translate(ctx context.Context, world *domain.WorldState, request string) (*Analysis, error) {
	prompt := fmt.Sprintf("Here is the current state:\n%s\n\nUser request: %s", world.RenderedContext, request)

	resp, err := s.complete(ctx, prompt, 1)
	if err != nil {
		return nil, err
	}

	proposal, parseErr := parseProposal(resp.Text)
	if parseErr != nil {
		_ = s.audit.Log(domain.AuditTranslateRetry, domain.ActorAI, map[string]interface{}{
			"reason": parseErr.Error(),
		})
		retryPrompt := prompt + "\n\nIMPORTANT: Your previous response violated the JSON schema. Respond ONLY with a valid JSON object containing \"thought\" and \"actions\"."
		respRetry, retryErr := s.complete(ctx, retryPrompt, 2)
		if retryErr != nil {
			return nil, retryErr
		}
		proposal, parseErr = parseProposal(respRetry.Text)
		if parseErr != nil {
			return nil, &domain.ProposalError{
				Reason: parseErr.Error(),
				Raw:    respRetry.Text,
			}
		}
	}

	analysis := &Analysis{Thought: proposal.Thought}
	for _, a := range proposal.Actions {
		if reason := validateAgainstWorld(a, world); reason != "" {
			analysis.Rejected = append(analysis.Rejected, RejectedAction{Action: a, Reason: reason})
			continue
		}
		analysis.Actions = append(analysis.Actions, a)
	}

	_ = s.audit.Log(domain.AuditTranslate, domain.ActorAI, map[string]interface{}{
		"actions":  len(analysis.Actions),
		"rejected": len(analysis.Rejected),
	})

	return analysis, nil
}

func (s *TranslatorService) complete(ctx context.Context, prompt string, attempt int) (*ai.CompletionResponse, error) {
	resp, err := s.provider.Complete(ctx, ai.CompletionRequest{
		Prompt:      prompt,
		System:      systemPrompt,
		Temperature: 0.2,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	if err := s.audit.Log(domain.AuditCompletion, domain.ActorAI, map[string]interface{}{
		"model":         resp.Model,
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
		"attempt":       attempt,
	}); err != nil {
		return nil, fmt.Errorf("write audit log: %w", err)
	}
	if s.usage != nil {
		_ = s.usage.RecordTokenUsage(resp.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}

	return resp, nil
}

// rawProposal mirrors the JSON contract the system prompt demands.
type rawProposal struct {
	Thought string          `json:"thought"`
	Actions []domain.Action `json:"actions"`
}

func parseProposal(text string) (*rawProposal, error) {
	clean := extractJSONPayload(text)
	if clean == "" {
		return nil, fmt.Errorf("response contains no JSON object")
	}

	documentLoader := gojsonschema.NewStringLoader(clean)
	result, err := gojsonschema.Validate(proposalSchemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if !result.Valid() {
		reasons := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return nil, fmt.Errorf("response violates proposal schema: %s", strings.Join(reasons, "; "))
	}

	var proposal rawProposal
	if err := json.Unmarshal([]byte(clean), &proposal); err != nil {
		return nil, fmt.Errorf("decode proposal: %w", err)
	}
	return &proposal, nil
}

// validateAgainstWorld runs structural validation plus id-existence checks
// against the snapshot. An empty return means the action may proceed.
func validateAgainstWorld(a domain.Action, world *domain.WorldState) string {
	if err := a.Validate(); err != nil {
		return err.Error()
	}

	if a.TargetsTask() {
		if _, ok := world.FindTask(a.TargetID); !ok {
			return fmt.Sprintf("task %s does not exist in the current snapshot", a.TargetID)
		}
	}
	if a.Params.ProjectID != "" && !world.HasProject(a.Params.ProjectID) {
		return fmt.Sprintf("project %s does not exist in the current snapshot", a.Params.ProjectID)
	}
	if a.Params.SectionID != "" && !world.HasSection(a.Params.SectionID) {
		return fmt.Sprintf("section %s does not exist in the current snapshot", a.Params.SectionID)
	}
	return ""
}

// extractJSONPayload strips markdown fences and surrounding prose, returning
// the first JSON object or array in the text.
func extractJSONPayload(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if clean == "" {
		return clean
	}

	start := strings.IndexAny(clean, "{[")
	if start == -1 {
		return ""
	}

	end := strings.LastIndexAny(clean, "}]")
	if end == -1 || end <= start {
		return ""
	}

	return strings.TrimSpace(clean[start : end+1])
}
