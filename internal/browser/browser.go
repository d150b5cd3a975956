// Package browser launches the system web browser for the OAuth consent page.
package browser

import (
	"fmt"
	"log"
	"os/exec"
)

// Open starts the platform's URL handler without waiting for it to exit.
func Open(url string) error {
	name, args := command(url)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("browser: %s exited: %v", name, err)
		}
	}()
	return nil
}
