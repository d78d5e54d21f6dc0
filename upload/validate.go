// Package upload checks chat exports before anything is sent to the backend.
package upload

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"chat-analyzer/model"

	"github.com/h2non/filetype"
)

const (
	DefaultExtension = ".txt"

	// MsgWrongFormat is shown for every rejected file.
	MsgWrongFormat = "Please upload a .txt file exported from WhatsApp"
)

var (
	ErrLocalFormat = errors.New("unsupported chat export format")
	ErrEmptyFile   = errors.New("file is empty")
	ErrTooLarge    = errors.New("file exceeds the upload limit")
)

// LocalFormatError rejects a file on the client side, before any network call.
type LocalFormatError struct {
	FileName string
	Reason   error
	Message  string
}

func (e *LocalFormatError) Error() string {
	return fmt.Sprintf("%s: %v", e.FileName, e.Reason)
}

func (e *LocalFormatError) Unwrap() error {
	return e.Reason
}

func (e *LocalFormatError) Is(target error) bool {
	return target == ErrLocalFormat
}

// Rules configure Validate.
type Rules struct {
	Extension string // expected suffix, ".txt" when empty
	MaxBytes  int64  // 0 disables the size check
}

// Validate accepts a file whose name ends in the expected extension (case
// insensitive) or whose declared content type is text/plain, as long as its
// bytes are not a recognisable binary format.
func Validate(file model.UploadedFile, rules Rules) error {
	ext := rules.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	if !hasExtension(file.Name, ext) && !isPlainText(file.ContentType) {
		return &LocalFormatError{FileName: file.Name, Reason: ErrLocalFormat, Message: formatMessage(ext)}
	}

	if len(file.Content) == 0 {
		return &LocalFormatError{FileName: file.Name, Reason: ErrEmptyFile, Message: "The selected file is empty"}
	}

	if rules.MaxBytes > 0 && int64(len(file.Content)) > rules.MaxBytes {
		return &LocalFormatError{
			FileName: file.Name,
			Reason:   ErrTooLarge,
			Message:  fmt.Sprintf("The file is larger than the %d MB limit", rules.MaxBytes>>20),
		}
	}

	// A renamed zip or image still fails here
	if kind, err := filetype.Match(file.Content); err == nil && kind != filetype.Unknown {
		return &LocalFormatError{
			FileName: file.Name,
			Reason:   fmt.Errorf("%w: detected %s", ErrLocalFormat, kind.MIME.Value),
			Message:  formatMessage(ext),
		}
	}

	return nil
}

func formatMessage(ext string) string {
	if strings.EqualFold(ext, DefaultExtension) {
		return MsgWrongFormat
	}
	return fmt.Sprintf("Please upload a %s file exported from WhatsApp", ext)
}

func hasExtension(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}

func isPlainText(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/plain"
}
