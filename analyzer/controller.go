// Package analyzer owns the per-session analysis workspace: the uploaded
// chat, the selected user filter and the latest results from the backend.
package analyzer

import (
	"context"
	"fmt"
	"sync"

	"chat-analyzer/apiclient"
	"chat-analyzer/model"

	"github.com/rs/zerolog/log"
)

// Analyzer is the part of the backend client the controller drives.
type Analyzer interface {
	Analyze(ctx context.Context, file model.UploadedFile, selectedUser string) (*model.AnalysisResults, error)
}

// State is the coarse view state derived from the controller fields.
type State int

const (
	NoResults State = iota
	Loading
	Results
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Results:
		return "results"
	default:
		return "no_results"
	}
}

// MarshalText lets State appear by name in JSON snapshots.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "loading":
		*s = Loading
	case "results":
		*s = Results
	case "no_results":
		*s = NoResults
	default:
		return fmt.Errorf("unknown analysis state %q", text)
	}
	return nil
}

// Controller coordinates uploads and user filter changes for one session.
// Each request gets a sequence number; a response that is older than the
// latest issued request is dropped, so slow replies never overwrite newer ones.
type Controller struct {
	client Analyzer

	mu           sync.Mutex
	results      *model.AnalysisResults
	file         *model.UploadedFile
	selectedUser string
	users        []string
	errMsg       string
	notice       string
	loading      bool
	seq          uint64
}

func NewController(client Analyzer) *Controller {
	return &Controller{
		client:       client,
		selectedUser: model.OverallUser,
	}
}

// Analyze uploads a new chat and fetches the Overall view. On failure the
// error message is recorded and the workspace returns to NoResults.
func (c *Controller) Analyze(ctx context.Context, file model.UploadedFile) error {
	c.mu.Lock()
	c.errMsg = ""
	c.notice = ""
	c.loading = true
	c.file = &file
	seq := c.next()
	c.mu.Unlock()

	results, err := c.client.Analyze(ctx, file, model.OverallUser)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		log.Debug().Uint64("seq", seq).Uint64("latest", c.seq).Msg("Discarding stale analysis response")
		return err
	}
	c.loading = false

	if err != nil {
		c.results = nil
		c.users = nil
		c.errMsg = apiclient.UserMessage(err, apiclient.MsgAnalysisFailed)
		log.Error().Err(err).Str("file", file.Name).Msg("Chat analysis failed")
		return fmt.Errorf("analyze %s: %w", file.Name, err)
	}

	c.results = results
	c.users = append([]string{model.OverallUser}, withoutOverall(results.UserNames())...)
	c.selectedUser = model.OverallUser
	return nil
}

// ChangeUser selects user immediately and, when a chat is loaded, refetches
// results for it. A failed refetch keeps the previous results and only sets
// a notice.
func (c *Controller) ChangeUser(ctx context.Context, user string) error {
	c.mu.Lock()
	c.selectedUser = user
	if c.file == nil {
		c.mu.Unlock()
		return nil
	}
	file := *c.file
	c.notice = ""
	c.loading = true
	seq := c.next()
	c.mu.Unlock()

	results, err := c.client.Analyze(ctx, file, user)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		log.Debug().Uint64("seq", seq).Uint64("latest", c.seq).Str("user", user).Msg("Discarding stale filter response")
		return nil
	}
	c.loading = false

	if err != nil {
		log.Warn().Err(err).Str("user", user).Str("file", file.Name).Msg("Refetch for selected user failed, keeping previous results")
		c.notice = fmt.Sprintf("Could not refresh results for %s. Showing the previous results.", user)
		return fmt.Errorf("change user %s: %w", user, err)
	}

	c.results = results
	return nil
}

// Reset clears the workspace so a different chat can be uploaded.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next() // any reply still in flight is now stale
	c.results = nil
	c.file = nil
	c.users = nil
	c.errMsg = ""
	c.notice = ""
	c.loading = false
	c.selectedUser = model.OverallUser
}

// SetError records a local error, such as an upload rejected before any
// backend call, without touching the current results.
func (c *Controller) SetError(msg string) {
	c.mu.Lock()
	c.errMsg = msg
	c.mu.Unlock()
}

// Snapshot is a consistent copy of the controller state. Results is shared
// but never mutated after a fetch.
type Snapshot struct {
	State        State                  `json:"state"`
	Results      *model.AnalysisResults `json:"results,omitempty"`
	FileName     string                 `json:"file_name,omitempty"`
	FileSize     int64                  `json:"file_size,omitempty"`
	SelectedUser string                 `json:"selected_user"`
	Users        []string               `json:"users"`
	Error        string                 `json:"error,omitempty"`
	Notice       string                 `json:"notice,omitempty"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:        NoResults,
		Results:      c.results,
		SelectedUser: c.selectedUser,
		Users:        append([]string(nil), c.users...),
		Error:        c.errMsg,
		Notice:       c.notice,
	}
	switch {
	case c.loading:
		s.State = Loading
	case c.results != nil:
		s.State = Results
	}
	if c.file != nil {
		s.FileName = c.file.Name
		s.FileSize = c.file.Size
	}
	return s
}

// next issues a new request sequence number. Callers hold c.mu.
func (c *Controller) next() uint64 {
	c.seq++
	return c.seq
}

// withoutOverall drops a participant literally named "Overall" so the
// sentinel appears exactly once in the users list.
func withoutOverall(names []string) []string {
	out := names[:0:0]
	for _, n := range names {
		if n != model.OverallUser {
			out = append(out, n)
		}
	}
	return out
}

// Footprint approximates the memory held by the workspace, used as cache cost.
func (c *Controller) Footprint() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	cost := int64(1024)
	if c.file != nil {
		cost += int64(len(c.file.Content))
	}
	if c.results != nil {
		cost += int64(len(c.results.WordCloud))
	}
	return cost
}
