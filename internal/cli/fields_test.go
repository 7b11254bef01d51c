package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/launchdeck/internal/mission"
)

func TestFieldsText(t *testing.T) {
	out, _, err := execute(t, &RootOptions{Format: "text"}, NewFieldsCommand)
	require.NoError(t, err)

	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "agency, organization, org")
	assert.Contains(t, out, "(derived)")
	assert.Contains(t, out, "MissionStatus")
}

func TestFieldsJSON(t *testing.T) {
	opts := &RootOptions{Format: "json", RunIDs: fixedRunIDs()}
	out, _, err := execute(t, opts, NewFieldsCommand)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, testRunID, resp.TraceID)

	infos, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, infos, len(mission.Fields()))

	first := infos[0].(map[string]any)
	assert.Equal(t, "company", first["name"])
	assert.Equal(t, "string", first["kind"])
	assert.Equal(t, "Company", first["column"])
	assert.Equal(t, true, first["required"])
}

func TestFieldsRejectsArgs(t *testing.T) {
	_, _, err := execute(t, &RootOptions{Format: "text"}, NewFieldsCommand, "extra")
	require.Error(t, err)
}
