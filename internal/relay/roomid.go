package relay

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// RoomIDStyle selects how new room ids look.
type RoomIDStyle string

const (
	// RoomIDUUID produces random v4 UUIDs.
	RoomIDUUID RoomIDStyle = "uuid"
	// RoomIDWords produces ids like "kitten-waffle-lantern-happy".
	RoomIDWords RoomIDStyle = "words"
)

// maxRoomIDAttempts bounds the collision retry loop.
const maxRoomIDAttempts = 16

// OccupiedFunc reports whether a room currently has members.
type OccupiedFunc func(ctx context.Context, room RoomID) (bool, error)

// RoomIDGenerator creates fresh room ids for clients that did not bring one.
type RoomIDGenerator struct {
	style    RoomIDStyle
	occupied OccupiedFunc
}

// NewRoomIDGenerator creates a generator. occupied may be nil, in which case
// ids are not checked against live rooms.
func NewRoomIDGenerator(style RoomIDStyle, occupied OccupiedFunc) *RoomIDGenerator {
	return &RoomIDGenerator{style: style, occupied: occupied}
}

// New returns a room id that is not currently occupied.
func (g *RoomIDGenerator) New(ctx context.Context) (RoomID, error) {
	for range maxRoomIDAttempts {
		id, err := g.candidate()
		if err != nil {
			return "", err
		}
		if g.occupied == nil {
			return id, nil
		}

		busy, err := g.occupied(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check room %s: %w", id, err)
		}
		if !busy {
			return id, nil
		}
	}
	return "", fmt.Errorf("no free room id after %d attempts", maxRoomIDAttempts)
}

func (g *RoomIDGenerator) candidate() (RoomID, error) {
	switch g.style {
	case RoomIDWords:
		return wordsRoomID()
	case RoomIDUUID, "":
		return RoomID(uuid.NewString()), nil
	default:
		return "", fmt.Errorf("unknown room id style %q", g.style)
	}
}

// wordsRoomID picks four distinct word pools and one word from each.
func wordsRoomID() (RoomID, error) {
	pools := make([]int, len(roomWords))
	for i := range pools {
		pools[i] = i
	}

	// Partial Fisher-Yates: the first four entries become the chosen pools.
	words := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		j, err := randomIndex(len(pools) - i)
		if err != nil {
			return "", err
		}
		pools[i], pools[i+j] = pools[i+j], pools[i]

		pool := roomWords[pools[i]]
		k, err := randomIndex(len(pool))
		if err != nil {
			return "", err
		}
		words = append(words, pool[k])
	}

	return RoomID(strings.Join(words, "-")), nil
}

// randomIndex returns a cryptographically secure random index below max.
func randomIndex(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("generate random index: %w", err)
	}
	return int(n.Int64()), nil
}
