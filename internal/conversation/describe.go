package conversation

import "errors"

const genericFailure = "Sorry, there was an error connecting to Claude."

// UserFacing is implemented by errors that carry their own actionable text
// for the person chatting, such as a missing credential.
type UserFacing interface {
	error
	UserMessage() string
}

// Describe turns an exchange failure into the text shown in the transcript.
func Describe(err error) string {
	if err == nil {
		return genericFailure
	}

	var uf UserFacing
	if errors.As(err, &uf) {
		return uf.UserMessage()
	}

	return "Sorry, there was an error: " + err.Error()
}
