package binary

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	. "github.com/cricklet/negachess/internal/helpers"
)

const _recordSize = 64

// DefaultWaitTimeout bounds Run when the caller waits for a handshake line.
const DefaultWaitTimeout = 2 * time.Second

type BinaryRunner struct {
	cmdPath string
	cmdName string
	cmd     *exec.Cmd

	stdin  io.WriteCloser
	stdout *StdOutBuffer
	exited chan struct{}

	recordLock sync.Mutex
	record     []string

	Logger Logger
}

type BinaryRunnerOption func(*BinaryRunner)

func WithLogger(logger Logger) BinaryRunnerOption {
	return func(u *BinaryRunner) {
		u.Logger = logger
	}
}

func (u *BinaryRunner) CmdPath() string {
	return u.cmdPath
}

func (u *BinaryRunner) CmdName() string {
	return u.cmdName
}

func (u *BinaryRunner) appendRecord(line string) {
	u.recordLock.Lock()
	defer u.recordLock.Unlock()

	u.record = append(u.record, line)
	if len(u.record) > _recordSize {
		u.record = u.record[len(u.record)-_recordSize:]
	}
}

func (u *BinaryRunner) flush(indent string) string {
	u.recordLock.Lock()
	defer u.recordLock.Unlock()
	return Indent(strings.Join(u.record, "\n"), indent)
}

// Flush returns the most recent stdin/stdout/stderr traffic.
func (u *BinaryRunner) Flush() string {
	return "> " + u.flush("> ")
}

func wrapError(u *BinaryRunner, err error) Error {
	if !IsNil(err) {
		return Wrap(fmt.Errorf("%v: %w\n.  %v", u.cmdName, err, u.flush(".  ")))
	}
	return NilError
}

func avoidSpam(line string) bool {
	if strings.Contains(line, "multipv") && !strings.Contains(line, "multipv 1 ") {
		return true
	}
	return strings.Contains(line, "currmove")
}

func SetupBinaryRunner(cmdPath string, cmdName string, args []string, options ...BinaryRunnerOption) (*BinaryRunner, Error) {
	u := &BinaryRunner{
		cmdPath: cmdPath,
		cmdName: cmdName,
		stdout:  NewStdOutBuffer(),
		exited:  make(chan struct{}),
	}

	for _, option := range options {
		option(u)
	}

	if u.Logger == nil {
		u.Logger = DefaultLogger
	}

	u.Logger.Println(cmdPath, args)
	u.cmd = exec.Command(cmdPath, args...)

	var err error
	u.stdin, err = u.cmd.StdinPipe()
	if err != nil {
		return nil, wrapError(u, err)
	}

	stdout, err := u.cmd.StdoutPipe()
	if err != nil {
		return nil, wrapError(u, err)
	}
	stderr, err := u.cmd.StderrPipe()
	if err != nil {
		return nil, wrapError(u, err)
	}

	err = u.cmd.Start()
	if err != nil {
		return nil, wrapError(u, err)
	}

	go func() {
		defer close(u.exited)

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := scanner.Text()
			if !avoidSpam(line) {
				u.Logger.Println("stdout: ", Ellipses(line, 140))
			}
			u.appendRecord("out: " + line)
			u.stdout.Update(line)
		}
	}()

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			u.appendRecord("err: " + scanner.Text())
		}
	}()

	return u, NilError
}

func (u *BinaryRunner) IsRunning() bool {
	if u.cmd == nil {
		return false
	}
	select {
	case <-u.exited:
		return false
	default:
		return true
	}
}

func (u *BinaryRunner) RunAsync(input string) Error {
	if u.cmd == nil {
		return wrapError(u, fmt.Errorf("cmd not setup: %v", u.cmdPath))
	}
	if !u.IsRunning() {
		return wrapError(u, fmt.Errorf("cmd exited: %v", u.cmdPath))
	}

	u.Logger.Println("stdin: ", input)
	u.appendRecord("in:  " + strings.TrimSpace(input))

	_, err := u.stdin.Write([]byte(input + "\n"))
	if err != nil {
		return wrapError(u, err)
	}

	return NilError
}

// RunSync writes the input and feeds every stdout line to the callback until
// it breaks. Without a timeout it waits until the process exits.
func (u *BinaryRunner) RunSync(input string, callback func(string) (LoopResult, Error), timeout Optional[time.Duration]) Error {
	err := u.RunAsync(input)
	if !IsNil(err) {
		return err
	}

	return u.Await(callback, timeout)
}

// Await is RunSync without writing anything first.
func (u *BinaryRunner) Await(callback func(string) (LoopResult, Error), timeout Optional[time.Duration]) Error {
	var timeoutChan <-chan time.Time
	if timeout.HasValue() {
		timer := time.NewTimer(timeout.Value())
		defer timer.Stop()
		timeoutChan = timer.C
	}

	for {
		result, err := u.stdout.Flush(callback)
		if !IsNil(err) {
			return err
		}
		if result == LoopBreak {
			return NilError
		}

		select {
		case <-timeoutChan:
			result, err = u.stdout.Flush(callback)
			if !IsNil(err) {
				return err
			}
			if result == LoopBreak {
				return NilError
			}
			u.Logger.Println("timeout")
			return wrapError(u, fmt.Errorf("timeout after %v", timeout.Value()))
		case <-u.exited:
			result, err = u.stdout.Flush(callback)
			if !IsNil(err) {
				return err
			}
			if result == LoopBreak {
				return NilError
			}
			return wrapError(u, fmt.Errorf("cmd exited: %v", u.cmdPath))
		case <-u.stdout.Wait():
		}
	}
}

// Run collects output lines until one contains waitFor.
func (u *BinaryRunner) Run(input string, waitFor string, timeout time.Duration) ([]string, Error) {
	result := []string{}

	err := u.RunSync(input, func(line string) (LoopResult, Error) {
		result = append(result, line)
		if strings.Contains(line, waitFor) {
			return LoopBreak, NilError
		}
		return LoopContinue, NilError
	}, Some(timeout))

	if !IsNil(err) {
		return result, Join(err, Errorf("waiting for %v", waitFor))
	}

	return result, NilError
}

// Discard drops output nobody waited for, e.g. a late reply after a timeout.
func (u *BinaryRunner) Discard() {
	dropped := u.stdout.Discard()
	if dropped > 0 {
		u.Logger.Println("discarded", dropped, "lines")
	}
}

func (u *BinaryRunner) Close() {
	if u.cmd == nil {
		return
	}

	_ = u.stdin.Close()
	if u.cmd.Process != nil {
		_ = u.cmd.Process.Kill()
	}

	select {
	case <-u.exited:
	case <-time.After(time.Second):
	}
	_ = u.cmd.Wait()

	u.cmd = nil
}
