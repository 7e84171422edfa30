// Package cli constructs the git-statuses command-line interface. The root
// command is the status report itself; this package adds configuration
// loading, logger construction, and version reporting around it.
package cli
