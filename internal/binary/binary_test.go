package binary

import (
	"fmt"
	"testing"
	"time"

	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTee(t *testing.T) {
	runner, err := SetupBinaryRunner("tee", "tee", []string{}, WithLogger(SilentLogger))
	require.True(t, IsNil(err), err)
	defer runner.Close()

	for i := 0; i < 10; i++ {
		v := fmt.Sprintf("hello world %d", i)
		err = runner.RunSync(v, func(line string) (LoopResult, Error) {
			assert.Equal(t, v, line)
			return LoopBreak, NilError
		}, Some(time.Second))

		assert.True(t, IsNil(err), err)
	}

	err = runner.RunSync("hello world", func(line string) (LoopResult, Error) {
		assert.Equal(t, "hello world", line)
		return LoopBreak, NilError
	}, Empty[time.Duration]())
	assert.True(t, IsNil(err), err)
}

func TestRunWaitsForLine(t *testing.T) {
	runner, err := SetupBinaryRunner("tee", "tee", []string{}, WithLogger(SilentLogger))
	require.True(t, IsNil(err), err)
	defer runner.Close()

	assert.True(t, IsNil(runner.RunAsync("first")))
	assert.True(t, IsNil(runner.RunAsync("second")))

	output, err := runner.Run("readyok", "readyok", time.Second)
	assert.True(t, IsNil(err), err)
	assert.Equal(t, []string{"first", "second", "readyok"}, output)
}

func TestTimeout(t *testing.T) {
	runner, err := SetupBinaryRunner("cat", "cat", []string{}, WithLogger(SilentLogger))
	require.True(t, IsNil(err), err)
	defer runner.Close()

	lines := []string{}
	err = runner.RunSync("never matches", func(line string) (LoopResult, Error) {
		lines = append(lines, line)
		return LoopContinue, NilError
	}, Some(100*time.Millisecond))

	assert.False(t, IsNil(err))
	assert.True(t, err.Contains("timeout"), err)
	assert.Equal(t, []string{"never matches"}, lines)
	assert.True(t, runner.IsRunning())
}

func TestCallbackError(t *testing.T) {
	runner, err := SetupBinaryRunner("cat", "cat", []string{}, WithLogger(SilentLogger))
	require.True(t, IsNil(err), err)
	defer runner.Close()

	err = runner.RunSync("bad line", func(line string) (LoopResult, Error) {
		return LoopContinue, Errorf("rejected %v", line)
	}, Some(time.Second))
	assert.True(t, err.Contains("rejected bad line"), err)
}

func TestExitedProcess(t *testing.T) {
	runner, err := SetupBinaryRunner("head", "head", []string{"-n", "1"}, WithLogger(SilentLogger))
	require.True(t, IsNil(err), err)
	defer runner.Close()

	lines := []string{}
	err = runner.RunSync("only line", func(line string) (LoopResult, Error) {
		lines = append(lines, line)
		return LoopContinue, NilError
	}, Some(2*time.Second))

	assert.True(t, err.Contains("exited"), err)
	assert.Equal(t, []string{"only line"}, lines)
	assert.False(t, runner.IsRunning())

	err = runner.RunAsync("too late")
	assert.False(t, IsNil(err))
}

func TestMissingBinary(t *testing.T) {
	_, err := SetupBinaryRunner("negachess-no-such-binary", "missing", []string{}, WithLogger(SilentLogger))
	assert.False(t, IsNil(err))
}

func TestDiscard(t *testing.T) {
	runner, err := SetupBinaryRunner("tee", "tee", []string{}, WithLogger(SilentLogger))
	require.True(t, IsNil(err), err)
	defer runner.Close()

	_, err = runner.Run("x", "x", time.Second)
	require.True(t, IsNil(err), err)

	assert.True(t, IsNil(runner.RunAsync("stale")))
	assert.Eventually(t, func() bool { return runner.stdout.Unread() == 1 }, time.Second, 10*time.Millisecond)
	runner.Discard()
	assert.Equal(t, 0, runner.stdout.Unread())

	output, err := runner.Run("fresh", "fresh", time.Second)
	assert.True(t, IsNil(err), err)
	assert.Equal(t, []string{"fresh"}, output)
}

func TestStdOutBufferFlush(t *testing.T) {
	b := NewStdOutBuffer()
	b.Update("one")
	b.Update("two")
	b.Update("three")

	seen := []string{}
	result, err := b.Flush(func(line string) (LoopResult, Error) {
		seen = append(seen, line)
		if line == "two" {
			return LoopBreak, NilError
		}
		return LoopContinue, NilError
	})
	assert.True(t, IsNil(err))
	assert.Equal(t, LoopBreak, result)
	assert.Equal(t, []string{"one", "two"}, seen)
	assert.Equal(t, 1, b.Unread())

	result, _ = b.Flush(func(line string) (LoopResult, Error) {
		seen = append(seen, line)
		return LoopContinue, NilError
	})
	assert.Equal(t, LoopContinue, result)
	assert.Equal(t, []string{"one", "two", "three"}, seen)
}
