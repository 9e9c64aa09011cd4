package constants

// Message format constants used by the command-line tools
const (
	// Error messages
	ErrMsgFailedToWriteFile = "failed to write file: %v\n"

	// Success messages
	MsgCreatedFile = "Created: %s\n"
)
