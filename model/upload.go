package model

// UploadedFile is an exported chat log held for the duration of one analysis session.
// It is replaced wholesale on every new upload and never modified in place.
type UploadedFile struct {
	Name        string
	Size        int64
	ContentType string
	Content     []byte
}
