package replay

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
	"github.com/ch1nq/arcadio-go/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeEvent(t *testing.T, event messages.ServerEvent) []byte {
	t.Helper()
	b, err := messages.EncodeServerEvent(event)
	require.NoError(t, err)
	return b
}

func TestRecorderReader_RoundTrip(t *testing.T) {
	records := [][]byte{
		encodeEvent(t, messages.AssignPlayerID{PlayerID: 7}),
		encodeEvent(t, messages.UpdateState{Diff: &gametypes.GameStateDiff{Timestep: 1}}),
		encodeEvent(t, messages.GameOver{}),
	}

	buf := &bytes.Buffer{}
	recorder, err := NewRecorder(buf)
	require.NoError(t, err)
	for _, record := range records {
		require.NoError(t, recorder.RecordMessage(record))
	}
	require.NoError(t, recorder.Close())

	reader, err := NewReader(buf)
	require.NoError(t, err)
	defer reader.Close()

	for _, want := range records {
		got, err := reader.Next()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestNewFileRecorder(t *testing.T) {
	dir := t.TempDir()
	recorder, err := NewFileRecorder(dir, "3a1f")
	require.NoError(t, err)

	record := encodeEvent(t, messages.AssignPlayerID{PlayerID: 1})
	require.NoError(t, recorder.RecordMessage(record))
	require.NoError(t, recorder.Close())

	f, err := os.Open(filepath.Join(dir, "3a1f.jsonl.zst"))
	require.NoError(t, err)
	defer f.Close()

	reader, err := NewReader(f)
	require.NoError(t, err)
	defer reader.Close()

	got, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestRebuild(t *testing.T) {
	winner := gametypes.PlayerID(1)
	events := []messages.ServerEvent{
		messages.AssignPlayerID{PlayerID: 1},
		messages.InitialState{State: &gametypes.GameState{
			Timestep: 0,
			Players: map[gametypes.PlayerID]*gametypes.Player{
				1: {
					IsAlive: true,
					Body: []gametypes.Blob{
						{ID: 0, Size: 3, Position: gametypes.Position{X: 0, Y: 0}},
					},
				},
			},
		}},
		messages.UpdateState{Diff: &gametypes.GameStateDiff{
			Timestep: 1,
			Players: map[gametypes.PlayerID]*gametypes.PlayerDiff{
				1: {Body: []gametypes.Blob{
					{ID: 1, Size: 3, Position: gametypes.Position{X: 2, Y: 0}},
				}},
			},
		}},
		messages.UpdateState{Diff: &gametypes.GameStateDiff{
			Timestep: 2,
			Players: map[gametypes.PlayerID]*gametypes.PlayerDiff{
				1: {Body: []gametypes.Blob{
					{ID: 2, Size: 3, Position: gametypes.Position{X: 4, Y: 0}},
				}},
			},
		}},
		messages.GameOver{Winner: &winner},
	}

	buf := &bytes.Buffer{}
	recorder, err := NewRecorder(buf)
	require.NoError(t, err)
	for _, event := range events {
		require.NoError(t, recorder.RecordMessage(encodeEvent(t, event)))
	}
	require.NoError(t, recorder.Close())

	state, err := Rebuild(buf)
	require.NoError(t, err)
	assert.Equal(t, int64(2), state.Timestep)
	require.Contains(t, state.Players, gametypes.PlayerID(1))
	assert.Len(t, state.Players[1].Body, 3)
	assert.Equal(t, gametypes.Position{X: 4, Y: 0}, state.Players[1].Body[2].Position)
}

func TestRebuild_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		events  []messages.ServerEvent
		wantErr string
	}{
		{
			name: "update before initial state",
			events: []messages.ServerEvent{
				messages.UpdateState{Diff: &gametypes.GameStateDiff{Timestep: 1}},
			},
			wantErr: "journal has an update before the initial state",
		},
		{
			name:    "empty journal",
			events:  nil,
			wantErr: "journal has no initial state",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			recorder, err := NewRecorder(buf)
			require.NoError(t, err)
			for _, event := range tc.events {
				require.NoError(t, recorder.RecordMessage(encodeEvent(t, event)))
			}
			require.NoError(t, recorder.Close())

			_, err = Rebuild(buf)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
