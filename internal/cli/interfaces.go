package cli

import (
	"context"
	"io"
	"os"

	"github.com/Backland-Labs/dailyagi/internal/chat"
	"github.com/Backland-Labs/dailyagi/internal/config"
	"github.com/Backland-Labs/dailyagi/internal/output"
	"github.com/Backland-Labs/dailyagi/internal/tui"
)

// ConfigLoader interface for dependency injection in tests
type ConfigLoader interface {
	Load() (*config.Config, error)
}

// ChatRunner runs the interactive chat screen
type ChatRunner interface {
	Run(ctx context.Context, conv *chat.Conversation, address string) error
}

// FileOpener opens files selected on the command line
type FileOpener interface {
	Open(name string) (io.ReadCloser, error)
}

// Real implementations for production use

// RealConfigLoader implements ConfigLoader using the real config package
type RealConfigLoader struct{}

func (r *RealConfigLoader) Load() (*config.Config, error) {
	return config.New()
}

// RealChatRunner implements ChatRunner with the Bubble Tea chat screen
type RealChatRunner struct{}

func (r *RealChatRunner) Run(ctx context.Context, conv *chat.Conversation, address string) error {
	return tui.Run(ctx, conv, address)
}

// RealFileOpener implements FileOpener using the os package
type RealFileOpener struct{}

func (r *RealFileOpener) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// NewRealDependencies creates production dependencies
func NewRealDependencies() *Dependencies {
	return &Dependencies{
		ConfigLoader: &RealConfigLoader{},
		ChatRunner:   &RealChatRunner{},
		FileOpener:   &RealFileOpener{},
		Color:        output.IsTerminal(),
	}
}

// Dependencies holds everything a command needs from the outside world
type Dependencies struct {
	ConfigLoader ConfigLoader
	ChatRunner   ChatRunner
	FileOpener   FileOpener

	// Color enables styled terminal output
	Color bool
}
