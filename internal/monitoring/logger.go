// Package monitoring provides the process-wide logging hook. Analysis stages
// report progress and recoverable anomalies through Logf so embedding
// applications can redirect them.
package monitoring

import "log"

// Logf is the logging function used across the analysis stages. It defaults
// to the standard logger and may be replaced before any pipeline runs.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the logging function. Passing nil silences all stage
// logging.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	Logf = f
}
