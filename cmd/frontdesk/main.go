// Command frontdesk drives the call controller from a terminal.
package main

import "frontdesk/internal/logging"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger := logging.New(logging.Config{})
		logger.Fatal().Err(err).Msg("frontdesk failed")
	}
}
