package chat

import (
	"context"
	"log/slog"

	"github.com/speakmcp/speakmcp-cli/pkg/agent"
	"github.com/speakmcp/speakmcp-cli/pkg/dotdir"
	"github.com/speakmcp/speakmcp-cli/pkg/journal"
	"github.com/speakmcp/speakmcp-cli/pkg/logger"
)

// Recorder persists completed turns: the turn itself in the journal, and
// its conversation id as the one "send --continue" resumes. Failures are
// logged, never returned, so bookkeeping cannot fail a turn that succeeded.
type Recorder struct {
	journal   *journal.Journal
	ddm       *dotdir.Manager
	configDir string
	server    string
	logger    *slog.Logger
}

// NewRecorder returns a Recorder. j may be nil to skip the journal.
func NewRecorder(j *journal.Journal, configDir, server string, l *slog.Logger) *Recorder {
	if l == nil {
		l = logger.Nop()
	}
	return &Recorder{
		journal:   j,
		ddm:       dotdir.NewManager(),
		configDir: configDir,
		server:    server,
		logger:    l,
	}
}

// Record stores a completed turn.
func (r *Recorder) Record(ctx context.Context, prompt string, res *agent.FinalResult) {
	if r.journal != nil {
		_, err := r.journal.Record(ctx, journal.Turn{
			ConversationID: res.ConversationID,
			Prompt:         prompt,
			Content:        res.Content,
			Model:          res.Model,
		})
		if err != nil {
			r.logger.Warn("could not record turn in journal", "error", err)
		}
	}

	if res.ConversationID == "" {
		return
	}

	err := r.ddm.SaveLastConversation(&dotdir.LastConversation{
		ID:     res.ConversationID,
		Server: r.server,
	}, r.configDir)
	if err != nil {
		r.logger.Warn("could not save last conversation", "error", err)
	}
}
