package keyboard

import (
	"fmt"
	"os/exec"

	"go.uber.org/atomic"
)

// ExecSpawner starts programs detached; a waiter goroutine records the exit
// so reaping never blocks.
type ExecSpawner struct{}

type childProcess struct {
	cmd    *exec.Cmd
	exited atomic.Bool
}

func (ExecSpawner) Spawn(program string, args []string) (Process, error) {
	cmd := exec.Command(program, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", program, err)
	}

	p := &childProcess{cmd: cmd}
	go func() {
		_ = cmd.Wait()
		p.exited.Store(true)
	}()

	return p, nil
}

func (p *childProcess) Exited() bool {
	return p.exited.Load()
}
