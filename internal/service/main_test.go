package service

import (
	"os"
	"testing"

	"sgo-sapem/pkg/log"
)

// The services log through the package-level logger, which must be
// initialized before any of them run.
func TestMain(m *testing.M) {
	log.Init("error", "json", "")
	os.Exit(m.Run())
}
