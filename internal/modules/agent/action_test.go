package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAction_Click(t *testing.T) {
	act, err := ParseAction(`{"thought": "search button visible", "action": "click", "x": 640, "y": 420}`)

	assert.NoError(t, err)
	assert.Equal(t, ActionClick, act.Action)
	assert.Equal(t, 640, *act.X)
	assert.Equal(t, 420, *act.Y)
}

func TestParseAction_StripsCodeFences(t *testing.T) {
	raw := "```json\n{\"action\": \"done\", \"confirmation_number\": \"ABC123\"}\n```"

	act, err := ParseAction(raw)

	assert.NoError(t, err)
	assert.Equal(t, ActionDone, act.Action)
	assert.Equal(t, "ABC123", act.ConfirmationNumber)
}

func TestParseAction_ClickWithoutCoordinates(t *testing.T) {
	_, err := ParseAction(`{"action": "click"}`)

	assert.ErrorIs(t, err, ErrMalformedAction)
}

func TestParseAction_TypeWithoutText(t *testing.T) {
	_, err := ParseAction(`{"action": "type", "x": 10, "y": 10}`)

	assert.ErrorIs(t, err, ErrMalformedAction)
}

func TestParseAction_UnknownAction(t *testing.T) {
	_, err := ParseAction(`{"action": "teleport"}`)

	assert.ErrorIs(t, err, ErrMalformedAction)
}

func TestParseAction_NotJSON(t *testing.T) {
	_, err := ParseAction("I think we should click the blue button")

	assert.ErrorIs(t, err, ErrMalformedAction)
}

func TestParseAction_MissingAction(t *testing.T) {
	_, err := ParseAction(`{"thought": "hmm"}`)

	assert.ErrorIs(t, err, ErrMalformedAction)
}
