package telemetry

import "os"

// stdout resolves os.Stdout on every write so redirected output is honoured.
type stdout struct{}

func (stdout) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
