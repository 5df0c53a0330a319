package relay

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRoomIDGenerator_UUID(t *testing.T) {
	id, err := NewRoomIDGenerator(RoomIDUUID, nil).New(context.Background())
	require.NoError(t, err)

	_, err = uuid.Parse(string(id))
	require.NoError(t, err)
}

func TestRoomIDGenerator_Words(t *testing.T) {
	gen := NewRoomIDGenerator(RoomIDWords, nil)

	for range 50 {
		id, err := gen.New(context.Background())
		require.NoError(t, err)

		parts := strings.Split(string(id), "-")
		require.Len(t, parts, 4)
		for _, p := range parts {
			require.NotEmpty(t, p)
		}
	}
}

func TestRoomIDGenerator_SkipsOccupiedRooms(t *testing.T) {
	calls := 0
	occupied := func(ctx context.Context, room RoomID) (bool, error) {
		calls++
		return calls < 3, nil
	}

	_, err := NewRoomIDGenerator(RoomIDUUID, occupied).New(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRoomIDGenerator_GivesUp(t *testing.T) {
	always := func(ctx context.Context, room RoomID) (bool, error) { return true, nil }
	_, err := NewRoomIDGenerator(RoomIDWords, always).New(context.Background())
	require.Error(t, err)

	boom := errors.New("boom")
	failing := func(ctx context.Context, room RoomID) (bool, error) { return false, boom }
	_, err = NewRoomIDGenerator(RoomIDUUID, failing).New(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestRoomIDGenerator_UnknownStyle(t *testing.T) {
	_, err := NewRoomIDGenerator("emoji", nil).New(context.Background())
	require.Error(t, err)
}
