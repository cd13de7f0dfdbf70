package server

import (
	"testing"
	"time"

	"github.com/cricklet/negachess/internal/config"
	. "github.com/cricklet/negachess/internal/game"
	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/cricklet/negachess/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Search.Depth = 1
	cfg.Game.White = "human"
	cfg.Game.Black = "negamax"
	return cfg
}

func handle(s *Session, message string) []UpdateToWeb {
	updates := []UpdateToWeb{}
	s.HandleMessage([]byte(message), func(u UpdateToWeb) {
		updates = append(updates, u)
	})
	return updates
}

func TestSessionWaitsForReady(t *testing.T) {
	s := NewSession(testConfig(), SilentLogger)
	defer s.Close()

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "human", s.Update().WhitePlayer)
	assert.Equal(t, "negamax", s.Update().BlackPlayer)

	updates := handle(s, `{"move": "e2e4"}`)
	require.Len(t, updates, 1)
	assert.Equal(t, "e2e4", updates[0].LastMove)
	assert.Equal(t, "black", updates[0].Player)
	assert.Empty(t, updates[0].Error)

	updates = handle(s, `{"ready": true}`)
	require.Len(t, updates, 2)
	assert.Equal(t, "white", updates[1].Player)
	assert.Len(t, s.runner.MoveHistory(), 2)
	assert.Equal(t, [][2]string{{"e4", updates[1].History[0][1]}}, updates[1].History)
}

func TestSessionRejectsIllegalMove(t *testing.T) {
	s := NewSession(testConfig(), SilentLogger)
	defer s.Close()

	updates := handle(s, `{"move": "e2e5"}`)
	require.Len(t, updates, 1)
	assert.NotEmpty(t, updates[0].Error)
	assert.Equal(t, StartFen, updates[0].FenString)

	updates = handle(s, `{not json`)
	require.Len(t, updates, 1)
	assert.Contains(t, updates[0].Error, "bad message")
}

func TestSessionSelectionAndRewind(t *testing.T) {
	s := NewSession(testConfig(), SilentLogger)
	defer s.Close()

	updates := handle(s, `{"selection": "b1"}`)
	require.Len(t, updates, 1)
	assert.Equal(t, "b1", updates[0].Selection)
	assert.ElementsMatch(t, []string{"b1a3", "b1c3"}, updates[0].PossibleMoves)

	handle(s, `{"move": "d2d4"}`)
	updates = handle(s, `{"rewind": 1}`)
	require.Len(t, updates, 1)
	assert.Equal(t, StartFen, updates[0].FenString)

	handle(s, `{"move": "d2d4"}`)
	updates = handle(s, `{"reset": true}`)
	assert.Equal(t, StartFen, updates[0].FenString)
	assert.Empty(t, updates[0].History)
}

func TestSessionEnginesPlayEachOther(t *testing.T) {
	cfg := testConfig()
	cfg.Game.White = "negamax"
	cfg.Game.MaxPlies = 6

	s := NewSession(cfg, SilentLogger)
	defer s.Close()

	updates := handle(s, `{"ready": true}`)
	assert.Len(t, updates, 7)
	assert.Len(t, s.runner.MoveHistory(), 6)
}

func TestSessionFinishesMate(t *testing.T) {
	s := NewSession(testConfig(), SilentLogger)
	defer s.Close()

	handle(s, `{"whitePlayer": "negamax"}`)
	handle(s, `{"blackPlayer": "human"}`)
	handle(s, `{"newFen": "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"}`)

	updates := handle(s, `{"ready": true}`)
	require.Len(t, updates, 2)
	assert.Equal(t, "a1a8", updates[1].LastMove)
	assert.Equal(t, "Checkmate", updates[1].Status)
	assert.Equal(t, "1-0", updates[1].Result)

	pgn, err := s.Pgn(runner.PgnHeaders{Event: "test"})
	require.True(t, IsNil(err), err)
	assert.Contains(t, pgn, `[White "negamax"]`)
	assert.Contains(t, pgn, "Ra8#")
}

func TestSessionEngineFailureReported(t *testing.T) {
	cfg := testConfig()
	cfg.Stockfish.Path = "negachess-no-such-stockfish"

	s := NewSession(cfg, SilentLogger)
	defer s.Close()

	handle(s, `{"whitePlayer": "stockfish"}`)
	updates := handle(s, `{"ready": true}`)
	require.Len(t, updates, 2)
	assert.NotEmpty(t, updates[1].Error)
	assert.Equal(t, StartFen, updates[1].FenString)
}

func TestSessionAcceptsSan(t *testing.T) {
	s := NewSession(testConfig(), SilentLogger)
	defer s.Close()

	updates := handle(s, `{"move": "Nf3"}`)
	require.Len(t, updates, 1)
	assert.Empty(t, updates[0].Error)
	assert.Equal(t, "g1f3", updates[0].LastMove)

	updates = handle(s, `{"move": "Qh5"}`)
	require.Len(t, updates, 1)
	assert.NotEmpty(t, updates[0].Error)
}

// blockingSource plays e7e5 once released.
type blockingSource struct {
	thinking chan struct{}
	release  chan struct{}
}

func (b *blockingSource) SelectMove(g *GameState) (Optional[Move], Error) {
	b.thinking <- struct{}{}
	<-b.release
	move, err := g.MoveFromString("e7e5")
	return Some(move), err
}

func (b *blockingSource) Close() {}

func TestSessionReadableWhileEngineThinks(t *testing.T) {
	s := NewSession(testConfig(), SilentLogger)
	defer s.Close()

	handle(s, `{"move": "e4"}`)

	source := &blockingSource{thinking: make(chan struct{}), release: make(chan struct{})}
	s.sources[Black].Close()
	s.sources[Black] = source

	done := make(chan []UpdateToWeb)
	go func() {
		done <- handle(s, `{"ready": true}`)
	}()

	select {
	case <-source.thinking:
	case <-time.After(5 * time.Second):
		t.Fatal("engine never asked for a move")
	}

	snapshot := make(chan UpdateToWeb)
	go func() {
		snapshot <- s.Update()
	}()
	select {
	case update := <-snapshot:
		assert.Equal(t, "black", update.Player)
		assert.Equal(t, "e2e4", update.LastMove)
	case <-time.After(5 * time.Second):
		t.Fatal("session locked while the engine searched")
	}

	close(source.release)
	updates := <-done
	require.Len(t, updates, 2)
	assert.Equal(t, "e7e5", updates[1].LastMove)
	assert.Equal(t, "white", updates[1].Player)
}
