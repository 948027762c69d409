package feedback

import (
	"os/exec"

	"go.uber.org/zap"
)

// Player plays short samples through paplay without waiting for them.
type Player struct {
	command string
	samples map[string]string
	log     *zap.SugaredLogger

	start func(cmd *exec.Cmd) error
}

// NewPlayer maps sample names to sound files.
func NewPlayer(samples map[string]string, log *zap.SugaredLogger) *Player {
	return &Player{
		command: "paplay",
		samples: samples,
		log:     log,
		start:   startAndReap,
	}
}

func (p *Player) Play(sample string) {
	path, ok := p.samples[sample]
	if !ok || path == "" {
		return
	}

	if err := p.start(exec.Command(p.command, path)); err != nil {
		p.log.Debugw("play sample", "sample", sample, "error", err)
	}
}

func startAndReap(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

type Nop struct{}

func (Nop) Play(string) {}
