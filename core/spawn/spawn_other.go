//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package spawn

import (
	"runtime"

	"github.com/josephlewis42/cronsh/core/buffer"
)

// Run always fails, cron shells only make sense where fork exists.
func (s *Spawner) Run(argv []string, stdin *buffer.Buffer) Result {
	res := newResult()
	s.Logger.Criticalf("running commands is not supported on %s", runtime.GOOS)
	return res
}
