package drive

import (
	"os/exec"
)

// osExplorer shells out to the platform file browser.
type osExplorer struct{}

func NewExplorer() Explorer {
	return osExplorer{}
}

func (osExplorer) Open(path string) error {
	return exec.Command(explorerCommand(), path).Start()
}
