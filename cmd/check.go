package cmd

import (
	"fmt"
	"os"

	"grimm.is/nfcond/internal/config"
)

// RunCheck validates a configuration file without starting anything.
func RunCheck(configFile string) error {
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return fmt.Errorf("config file %s does not exist", configFile)
	}
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return err
	}
	fmt.Printf("%s: OK (%d namespace(s), listen %s)\n", configFile, len(cfg.Namespaces), cfg.Listen)
	return nil
}
