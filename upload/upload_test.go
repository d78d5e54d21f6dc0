package upload

import (
	"errors"
	"testing"

	"chat-analyzer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chatLine = []byte("12/01/2023, 10:15 - Alice: hello there\n")

// PNG signature
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 0x49, 0x48, 0x44, 0x52}

func file(name, contentType string, content []byte) model.UploadedFile {
	return model.UploadedFile{Name: name, ContentType: contentType, Size: int64(len(content)), Content: content}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		file    model.UploadedFile
		rules   Rules
		wantErr error
	}{
		{"txt accepted", file("chat.txt", "", chatLine), Rules{}, nil},
		{"upper case extension", file("WhatsApp Chat.TXT", "", chatLine), Rules{}, nil},
		{"text/plain without extension", file("export", "text/plain; charset=utf-8", chatLine), Rules{}, nil},
		{"csv rejected", file("chat.csv", "text/csv", chatLine), Rules{}, ErrLocalFormat},
		{"double extension rejected", file("chat.txt.zip", "application/zip", chatLine), Rules{}, ErrLocalFormat},
		{"renamed png rejected", file("chat.txt", "text/plain", pngBytes), Rules{}, ErrLocalFormat},
		{"empty rejected", file("chat.txt", "", nil), Rules{}, ErrEmptyFile},
		{"too large", file("chat.txt", "", chatLine), Rules{MaxBytes: 10}, ErrTooLarge},
		{"custom extension", file("chat.log", "", chatLine), Rules{Extension: ".log"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.file, tt.rules)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrLocalFormat, "every rejection is a local format error")

			var lfe *LocalFormatError
			require.True(t, errors.As(err, &lfe))
			assert.Equal(t, tt.file.Name, lfe.FileName)
			assert.NotEmpty(t, lfe.Message)
		})
	}
}

func TestValidate_CSVMessage(t *testing.T) {
	err := Validate(file("chat.csv", "text/csv", chatLine), Rules{})

	var lfe *LocalFormatError
	require.True(t, errors.As(err, &lfe))
	assert.Equal(t, "Please upload a .txt file exported from WhatsApp", lfe.Message)
}

func TestDropzone_Transitions(t *testing.T) {
	d := NewDropzone(Rules{})
	assert.Equal(t, Idle, d.State())

	d.DragEnter()
	assert.Equal(t, Dragging, d.State())

	d.DragLeave()
	assert.Equal(t, Idle, d.State())

	d.DragEnter()
	require.NoError(t, d.Drop(file("chat.txt", "", chatLine)))
	assert.Equal(t, FileSelected, d.State())
	assert.Empty(t, d.ErrorMessage())

	f, err := d.Submit()
	require.NoError(t, err)
	assert.Equal(t, "chat.txt", f.Name)

	d.Remove()
	assert.Equal(t, Idle, d.State())
	_, err = d.Submit()
	assert.ErrorIs(t, err, ErrNoFileSelected)
}

func TestDropzone_RejectedDrop(t *testing.T) {
	d := NewDropzone(Rules{})

	d.DragEnter()
	err := d.Drop(file("chat.csv", "text/csv", chatLine))
	assert.ErrorIs(t, err, ErrLocalFormat)
	assert.Equal(t, Idle, d.State())
	assert.Equal(t, MsgWrongFormat, d.ErrorMessage())

	_, err = d.Submit()
	assert.ErrorIs(t, err, ErrNoFileSelected)
}

func TestDropzone_RejectedDropKeepsSelection(t *testing.T) {
	d := NewDropzone(Rules{})
	require.NoError(t, d.Drop(file("chat.txt", "", chatLine)))

	assert.Error(t, d.Drop(file("photo.png", "image/png", pngBytes)))
	assert.Equal(t, FileSelected, d.State())

	f, err := d.Submit()
	require.NoError(t, err)
	assert.Equal(t, "chat.txt", f.Name)
}
