package models

// ChatAnswer is the tutor's reply for one question, with the number of
// retrieved context chunks the backend grounded it on.
type ChatAnswer struct {
	Answer          string
	CourseID        int
	RetrievedChunks int
}

// ChatMessage is a client-local chat bubble; the backend does not
// persist conversation history.
type ChatMessage struct {
	ID              string
	Text            string
	FromUser        bool
	TimestampMillis int64
	Pending         bool
}
