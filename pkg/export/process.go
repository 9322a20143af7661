package export

import "os/exec"

func startProcess(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child once it exits.
	go cmd.Wait()
	return nil
}
