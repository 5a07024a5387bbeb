package testutil

import (
	"log"
	"os"
	"testing"
)

// Logger returns a logger for tests, prefixed with the test name so
// interleaved output stays attributable.
func Logger(t *testing.T) *log.Logger {
	return log.New(os.Stderr, "["+t.Name()+"] ", log.LstdFlags)
}
