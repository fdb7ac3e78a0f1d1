//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package spawn

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/josephlewis42/cronsh/core/buffer"
	"golang.org/x/sys/unix"
)

// pipe returns a close-on-exec pipe as raw descriptors. The fork lock keeps
// a concurrent fork from inheriting the pair before the flag is set.
func pipe() (r, w int, err error) {
	var p [2]int

	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()

	if err := unix.Pipe(p[:]); err != nil {
		return -1, -1, err
	}
	unix.CloseOnExec(p[0])
	unix.CloseOnExec(p[1])
	return p[0], p[1], nil
}

func closeFds(fds ...int) {
	for _, fd := range fds {
		if fd >= 0 {
			unix.Close(fd)
		}
	}
}

// isExecError reports whether a StartProcess failure happened while replacing
// the child's image rather than while forking.
func isExecError(err error) bool {
	return !errors.Is(err, syscall.EAGAIN) && !errors.Is(err, syscall.ENOMEM)
}

// Run executes argv with stdin fed from the given buffer (nil for none) and
// waits for it to finish. Failures are logged and folded into the result.
func (s *Spawner) Run(argv []string, stdin *buffer.Buffer) Result {
	res := newResult()
	if len(argv) == 0 {
		s.Logger.Criticalf("no command given")
		return res
	}

	path, err := LookPath(s.fs(), envPath(s.Env), argv[0])
	if err != nil {
		s.execFailed(&res, argv[0], err)
		return res
	}

	stdinR, stdinW, err := pipe()
	if err != nil {
		s.Logger.Criticalf("failed creating stdin pipe: %v", err)
		return res
	}
	stdoutR, stdoutW, err := pipe()
	if err != nil {
		closeFds(stdinR, stdinW)
		s.Logger.Criticalf("failed creating stdout pipe: %v", err)
		return res
	}
	stderrR, stderrW, err := pipe()
	if err != nil {
		closeFds(stdinR, stdinW, stdoutR, stdoutW)
		s.Logger.Criticalf("failed creating stderr pipe: %v", err)
		return res
	}

	childFiles := []*os.File{
		os.NewFile(uintptr(stdinR), "stdin"),
		os.NewFile(uintptr(stdoutW), "stdout"),
		os.NewFile(uintptr(stderrW), "stderr"),
	}
	proc, err := os.StartProcess(path, argv, &os.ProcAttr{
		Env:   s.Env,
		Files: childFiles,
	})

	// The child holds its own copies now.
	for _, f := range childFiles {
		f.Close()
	}

	if err != nil {
		closeFds(stdinW, stdoutR, stderrR)
		if isExecError(err) {
			s.execFailed(&res, argv[0], err)
		} else {
			s.Logger.Criticalf("failed spawning child: %v", err)
		}
		return res
	}

	res.PID = proc.Pid
	s.Logger.Debugf("spawned child (%d)", proc.Pid)

	s.multiplex(&res, stdinW, stdoutR, stderrR, stdin)

	s.Logger.Debugf("waitpid(%d)", proc.Pid)
	s.reap(&res, proc)

	return res
}

func (s *Spawner) execFailed(res *Result, name string, err error) {
	msg := fmt.Sprintf("failed to execute '%s': %v", name, err)
	s.Logger.Noticef("%s", msg)

	res.Status = StatusExecFailed
	res.Stderr.Appendf("%s\n", msg)
}

type stream struct {
	name string
	fd   int
	buf  *buffer.Buffer
}

// multiplex shuttles bytes between the parent and the child until both of
// the child's output streams reach end of file. It owns and closes every
// descriptor it is given.
func (s *Spawner) multiplex(res *Result, stdinW, stdoutR, stderrR int, stdin *buffer.Buffer) {
	var pending []byte
	if stdin != nil {
		pending = stdin.Bytes()
	}

	if len(pending) == 0 {
		// EOF right away so the child never waits for input.
		closeFds(stdinW)
		stdinW = -1
	} else if err := unix.SetNonblock(stdinW, true); err != nil {
		s.Logger.Noticef("stdin pipe stays blocking: %v", err)
	}

	streams := []*stream{
		{name: "stdout", fd: stdoutR, buf: res.Stdout},
		{name: "stderr", fd: stderrR, buf: res.Stderr},
	}
	for _, st := range streams {
		if err := unix.SetNonblock(st.fd, true); err != nil {
			s.Logger.Noticef("%s pipe stays blocking: %v", st.name, err)
		}
	}

	chunk := make([]byte, s.chunkSize())
	timeout := int(s.pollTimeout() / time.Millisecond)
	fds := make([]unix.PollFd, 0, 3)

	open := func() bool {
		for _, st := range streams {
			if st.fd >= 0 {
				return true
			}
		}
		return false
	}

	for open() {
		fds = fds[:0]
		for _, st := range streams {
			if st.fd >= 0 {
				fds = append(fds, unix.PollFd{Fd: int32(st.fd), Events: unix.POLLIN})
			}
		}
		if stdinW >= 0 {
			fds = append(fds, unix.PollFd{Fd: int32(stdinW), Events: unix.POLLOUT})
		}

		n, err := unix.Poll(fds, timeout)
		switch {
		case errors.Is(err, unix.EINTR), errors.Is(err, unix.EAGAIN):
			continue
		case err != nil:
			s.Logger.Criticalf("poll failed: %v", err)
			closeFds(stdinW)
			for _, st := range streams {
				closeFds(st.fd)
				st.fd = -1
			}
			return
		case n == 0:
			continue
		}

		for _, pfd := range fds {
			if pfd.Revents == 0 {
				continue
			}

			if int(pfd.Fd) == stdinW {
				pending = s.feed(stdinW, pending)
				if len(pending) == 0 {
					closeFds(stdinW)
					stdinW = -1
				}
				continue
			}

			for _, st := range streams {
				if st.fd >= 0 && int(pfd.Fd) == st.fd {
					s.drain(st, chunk)
				}
			}
		}
	}

	// The child closed its output but may still be reading.
	closeFds(stdinW)
	if len(pending) > 0 {
		s.Logger.Noticef("child closed its output with %d stdin bytes unread", len(pending))
	}
}

// feed writes as much of pending as the pipe accepts and returns the rest.
func (s *Spawner) feed(fd int, pending []byte) []byte {
	n, err := unix.Write(fd, pending)
	if n > 0 {
		pending = pending[n:]
	}

	switch {
	case err == nil,
		errors.Is(err, unix.EAGAIN),
		errors.Is(err, unix.EINTR):
		return pending
	default:
		s.Logger.Noticef("writing to child stdin: %v (%d bytes not written)", err, len(pending))
		return nil
	}
}

// drain reads once from a ready stream. End of file closes it.
func (s *Spawner) drain(st *stream, chunk []byte) {
	n, err := unix.Read(st.fd, chunk)
	switch {
	case n > 0:
		if err := st.buf.Append(chunk[:n]); err != nil {
			s.Logger.Criticalf("capturing %s: %v", st.name, err)
		}
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
	case err != nil:
		s.Logger.Noticef("reading child %s: %v", st.name, err)
		closeFds(st.fd)
		st.fd = -1
	default:
		closeFds(st.fd)
		st.fd = -1
	}
}

func (s *Spawner) reap(res *Result, proc *os.Process) {
	state, err := proc.Wait()
	if err != nil {
		s.Logger.Criticalf("waiting for child (%d): %v", proc.Pid, err)
		return
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok {
		switch {
		case ws.Exited():
			res.Status = ws.ExitStatus()
		case ws.Signaled():
			res.Status = StatusFailed
			res.Signal = int(ws.Signal())
		}
	}

	if ru, ok := state.SysUsage().(*syscall.Rusage); ok && ru != nil {
		res.Usage = Usage{
			UserTime:   time.Duration(ru.Utime.Nano()),
			SystemTime: time.Duration(ru.Stime.Nano()),
			MaxRSS:     int64(ru.Maxrss),
			MinFlt:     int64(ru.Minflt),
			MajFlt:     int64(ru.Majflt),
			InBlock:    int64(ru.Inblock),
			OutBlock:   int64(ru.Oublock),
			NVCSw:      int64(ru.Nvcsw),
			NIVCSw:     int64(ru.Nivcsw),
		}
	}
}
