package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readUpdate skips log messages until the next game update.
func readUpdate(t *testing.T, c *websocket.Conn) UpdateToWeb {
	for {
		require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, data, err := c.ReadMessage()
		require.NoError(t, err)

		if strings.Contains(string(data), `"fenString"`) {
			update := UpdateToWeb{}
			require.NoError(t, json.Unmarshal(data, &update))
			return update
		}
	}
}

func get(t *testing.T, url string) (int, string) {
	response, err := http.Get(url)
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response.StatusCode, string(body)
}

func TestWebsocketGame(t *testing.T) {
	s := NewServer(testConfig(), SilentLogger)
	httpServer := httptest.NewServer(s.Router())
	defer httpServer.Close()

	wsUrl := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(wsUrl, nil)
	require.NoError(t, err)
	defer c.Close()

	initial := readUpdate(t, c)
	assert.NotEmpty(t, initial.GameID)
	assert.Equal(t, "In progress", initial.Status)

	require.NoError(t, c.WriteJSON(map[string]any{"ready": true}))
	readUpdate(t, c)

	require.NoError(t, c.WriteJSON(map[string]any{"move": "e2e4"}))
	afterHuman := readUpdate(t, c)
	assert.Equal(t, "e2e4", afterHuman.LastMove)
	afterEngine := readUpdate(t, c)
	assert.Equal(t, "white", afterEngine.Player)

	status, body := get(t, httpServer.URL+"/games")
	assert.Equal(t, http.StatusOK, status)
	ids := []string{}
	require.NoError(t, json.Unmarshal([]byte(body), &ids))
	assert.Equal(t, []string{initial.GameID}, ids)

	status, body = get(t, httpServer.URL+"/games/"+initial.GameID)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, afterEngine.FenString)

	status, body = get(t, httpServer.URL+"/games/"+initial.GameID+"/pgn")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "1. e4")
	assert.Contains(t, body, `[Black "negamax"]`)

	status, _ = get(t, httpServer.URL+"/games/missing")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSessionRemovedOnClose(t *testing.T) {
	s := NewServer(testConfig(), SilentLogger)
	httpServer := httptest.NewServer(s.Router())
	defer httpServer.Close()

	wsUrl := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(wsUrl, nil)
	require.NoError(t, err)
	readUpdate(t, c)
	require.NoError(t, c.Close())

	assert.Eventually(t, func() bool {
		response, err := http.Get(httpServer.URL + "/games")
		if err != nil {
			return false
		}
		defer response.Body.Close()
		body, err := io.ReadAll(response.Body)
		return err == nil && strings.TrimSpace(string(body)) == "[]"
	}, 2*time.Second, 20*time.Millisecond)
}
