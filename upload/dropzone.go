package upload

import (
	"errors"

	"chat-analyzer/model"
)

// DropState is the uploader's local UI state.
type DropState int

const (
	Idle DropState = iota
	Dragging
	FileSelected
)

func (s DropState) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case FileSelected:
		return "file_selected"
	default:
		return "idle"
	}
}

var ErrNoFileSelected = errors.New("no file selected")

// Dropzone models the file picker: Idle -> Dragging -> (FileSelected | Idle).
// A rejected drop leaves the zone Idle with a local error and never reaches
// the backend.
type Dropzone struct {
	rules    Rules
	state    DropState
	selected *model.UploadedFile
	err      error
}

func NewDropzone(rules Rules) *Dropzone {
	return &Dropzone{rules: rules}
}

// DragEnter highlights the zone while a file hovers over it.
func (d *Dropzone) DragEnter() {
	if d.state == Idle {
		d.state = Dragging
	}
}

// DragLeave returns to Idle when the pointer leaves without dropping.
func (d *Dropzone) DragLeave() {
	if d.state == Dragging {
		d.state = Idle
	}
}

// Drop validates file and selects it. The previous selection is kept only
// when nothing new is accepted.
func (d *Dropzone) Drop(file model.UploadedFile) error {
	d.err = nil
	if err := Validate(file, d.rules); err != nil {
		d.err = err
		if d.selected == nil {
			d.state = Idle
		} else {
			d.state = FileSelected
		}
		return err
	}
	d.selected = &file
	d.state = FileSelected
	return nil
}

// Remove discards the selected file.
func (d *Dropzone) Remove() {
	d.selected = nil
	d.err = nil
	d.state = Idle
}

// Submit hands the selected file to the caller.
func (d *Dropzone) Submit() (model.UploadedFile, error) {
	if d.state != FileSelected || d.selected == nil {
		return model.UploadedFile{}, ErrNoFileSelected
	}
	return *d.selected, nil
}

func (d *Dropzone) State() DropState {
	return d.state
}

// Err is the last local validation error, if any.
func (d *Dropzone) Err() error {
	return d.err
}

// ErrorMessage is the user-facing text for Err.
func (d *Dropzone) ErrorMessage() string {
	var lfe *LocalFormatError
	if errors.As(d.err, &lfe) {
		return lfe.Message
	}
	if d.err != nil {
		return MsgWrongFormat
	}
	return ""
}
