package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	ActionClick      = "click"
	ActionType       = "type"
	ActionSelect     = "select"
	ActionScrollDown = "scroll_down"
	ActionScrollUp   = "scroll_up"
	ActionWait       = "wait"
	ActionDone       = "done"
	ActionError      = "error"
)

// Action is the single structured decision the model returns per step.
type Action struct {
	Thought            string `json:"thought"`
	Action             string `json:"action"`
	X                  *int   `json:"x,omitempty"`
	Y                  *int   `json:"y,omitempty"`
	Text               string `json:"text,omitempty"`
	ConfirmationNumber string `json:"confirmation_number,omitempty"`
	ErrorMessage       string `json:"error_message,omitempty"`
}

const actionSchemaJSON = `{
  "type": "object",
  "properties": {
    "thought": {"type": "string"},
    "action": {
      "type": "string",
      "enum": ["click", "type", "select", "scroll_down", "scroll_up", "wait", "done", "error"]
    },
    "x": {"type": "integer"},
    "y": {"type": "integer"},
    "text": {"type": "string"},
    "confirmation_number": {"type": "string"},
    "error_message": {"type": "string"}
  },
  "required": ["action"]
}`

var actionSchema = jsonschema.MustCompileString("action.json", actionSchemaJSON)

// ParseAction turns one raw model reply into a validated Action. Markdown code
// fences are tolerated; anything else out of shape is ErrMalformedAction.
func ParseAction(raw string) (Action, error) {
	cleaned := stripCodeFences(raw)

	var untyped any
	if err := json.Unmarshal([]byte(cleaned), &untyped); err != nil {
		return Action{}, fmt.Errorf("%w: not valid JSON: %v", ErrMalformedAction, err)
	}
	if err := actionSchema.Validate(untyped); err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}

	var a Action
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}

	switch a.Action {
	case ActionClick, ActionSelect:
		if a.X == nil || a.Y == nil {
			return Action{}, fmt.Errorf("%w: %s requires x and y", ErrMalformedAction, a.Action)
		}
	case ActionType:
		if a.Text == "" {
			return Action{}, fmt.Errorf("%w: type requires text", ErrMalformedAction)
		}
	case ActionScrollDown, ActionScrollUp, ActionWait, ActionDone, ActionError:
	default:
		return Action{}, fmt.Errorf("%w: unknown action %q", ErrMalformedAction, a.Action)
	}

	return a, nil
}

func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
