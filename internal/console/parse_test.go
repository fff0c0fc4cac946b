package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backdoor-game/client/internal/protocol"
)

func TestParseInput_Look(t *testing.T) {
	cmd, payload, err := parseInput("look door")
	require.NoError(t, err)
	assert.Equal(t, protocol.CmdLook, cmd)
	assert.Equal(t, protocol.LookPayload{Target: "door"}, payload)
}

func TestParseInput_LookNoTarget(t *testing.T) {
	cmd, payload, err := parseInput("look")
	require.NoError(t, err)
	assert.Equal(t, protocol.CmdLook, cmd)
	assert.Equal(t, protocol.LookPayload{}, payload)
}

func TestParseInput_LookMultiWordTarget(t *testing.T) {
	_, payload, err := parseInput("look hackathon trophy")
	require.NoError(t, err)
	assert.Equal(t, protocol.LookPayload{Target: "hackathon_trophy"}, payload)
}

func TestParseInput_Use(t *testing.T) {
	cmd, payload, err := parseInput("use old laptop")
	require.NoError(t, err)
	assert.Equal(t, protocol.CmdUseItem, cmd)
	assert.Equal(t, protocol.UseItemPayload{Item: "old_laptop"}, payload)
}

func TestParseInput_UseOnTarget(t *testing.T) {
	_, payload, err := parseInput("use key on door")
	require.NoError(t, err)
	assert.Equal(t, protocol.UseItemPayload{Item: "key", Target: "door"}, payload)
}

func TestParseInput_UseWithoutItem(t *testing.T) {
	_, _, err := parseInput("use")
	assert.Error(t, err)

	_, _, err = parseInput("use on door")
	assert.Error(t, err)
}

func TestParseInput_TalkTo(t *testing.T) {
	cmd, payload, err := parseInput("talk to greg")
	require.NoError(t, err)
	assert.Equal(t, protocol.CmdTalkTo, cmd)
	assert.Equal(t, protocol.TalkToPayload{NPCID: "greg"}, payload)
}

func TestParseInput_TalkWithoutTo(t *testing.T) {
	_, payload, err := parseInput("talk greg")
	require.NoError(t, err)
	assert.Equal(t, protocol.TalkToPayload{NPCID: "greg"}, payload)
}

func TestParseInput_TalkWithoutName(t *testing.T) {
	_, _, err := parseInput("talk to")
	assert.Error(t, err)
}

func TestParseInput_Aliases(t *testing.T) {
	cmd, _, err := parseInput("l door")
	require.NoError(t, err)
	assert.Equal(t, protocol.CmdLook, cmd)

	cmd, _, err = parseInput("t greg")
	require.NoError(t, err)
	assert.Equal(t, protocol.CmdTalkTo, cmd)
}

func TestParseInput_CaseInsensitiveVerb(t *testing.T) {
	cmd, _, err := parseInput("LOOK door")
	require.NoError(t, err)
	assert.Equal(t, protocol.CmdLook, cmd)
}

func TestParseInput_UnknownVerb(t *testing.T) {
	_, _, err := parseInput("dance")
	assert.Error(t, err)
}

func TestParseInput_Empty(t *testing.T) {
	_, _, err := parseInput("   ")
	assert.ErrorIs(t, err, errEmptyInput)
}
