package cmd

// Exit codes for opensos CLI
const (
	// ExitSuccess indicates the call completed with a 2xx or 3xx status
	ExitSuccess = 0

	// ExitRequestFailure indicates the server answered with 4xx or 5xx
	ExitRequestFailure = 1

	// ExitSessionError indicates a session could not be stored or restored
	ExitSessionError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
