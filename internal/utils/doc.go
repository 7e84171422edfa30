// Package utils holds the ambient plumbing shared by the CLI: Viper-backed
// configuration loading, zap logger construction, git process execution,
// and a writer that flushes after every write.
package utils
