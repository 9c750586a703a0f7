package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/bookclub/internal/etl"
)

var clubsStage = etl.Stage{Name: etl.StageClubs, Optional: true}

func TestPromptConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{" YES \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var out bytes.Buffer
			ok, err := NewPrompt(strings.NewReader(tt.in), &out).Confirm(confirmClubs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, confirmClubs, out.String())
		})
	}
}

func TestPromptInt(t *testing.T) {
	n, err := NewPrompt(strings.NewReader("15\n"), &bytes.Buffer{}).Int(askClubCount)
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	_, err = NewPrompt(strings.NewReader("lots\n"), &bytes.Buffer{}).Int(askClubCount)
	assert.ErrorContains(t, err, `invalid number "lots"`)
}

func TestClubGateInteractive(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	gate, count := clubGate(ClubChoice{}, NewPrompt(strings.NewReader("y\n12\n"), &out))

	ok, err := gate(ctx, clubsStage)
	require.NoError(t, err)
	assert.True(t, ok)
	n, err := count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, "Generate sample book clubs? (y/n): How many clubs? (10-20 recommended): ", out.String())
}

func TestClubGateDeclined(t *testing.T) {
	var out bytes.Buffer
	gate, _ := clubGate(ClubChoice{}, NewPrompt(strings.NewReader("n\n"), &out))

	ok, err := gate(context.Background(), clubsStage)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Skipping sample club generation.")
}

func TestClubGateFlags(t *testing.T) {
	ctx := context.Background()

	gate, count := clubGate(ClubChoice{Count: 4, CountSet: true}, nil)
	ok, err := gate(ctx, clubsStage)
	require.NoError(t, err)
	assert.True(t, ok)
	n, err := count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	gate, _ = clubGate(ClubChoice{Count: 0, CountSet: true}, nil)
	ok, err = gate(ctx, clubsStage)
	require.NoError(t, err)
	assert.False(t, ok)

	gate, count = clubGate(ClubChoice{Yes: true}, nil)
	ok, err = gate(ctx, clubsStage)
	require.NoError(t, err)
	assert.True(t, ok)
	n, err = count(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultClubCount, n)
}

func TestRootCommandWiresSubcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"load", "schema", "clubs", "search", "runs"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	load, _, err := root.Find([]string{"load"})
	require.NoError(t, err)
	for _, flag := range []string{"only", "clubs", "yes", "seed", "create-schema"} {
		assert.NotNil(t, load.Flags().Lookup(flag), flag)
	}
}
