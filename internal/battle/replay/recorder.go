package replay

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/magefree/battle-sim-go/internal/battle/events"
)

var (
	// ErrUnsupportedVersion is returned when loading a journal written by
	// an incompatible version.
	ErrUnsupportedVersion = errors.New("unsupported replay version")
	// ErrDivergence is returned by Verify when a re-run emission does not
	// reproduce the recorded output.
	ErrDivergence = errors.New("replay diverged from journal")
)

// Emitter is the part of the bus the recorder drives.
type Emitter interface {
	Emit(kind events.Kind, ctx *events.Context, payload events.Payload) (events.Payload, error)
}

// Recorder wraps an Emitter and journals every emission made through it
// while recording is on. Handlers that emit should go through the
// recorder too, so nested emissions are journaled with their depth.
type Recorder struct {
	emitter Emitter
	journal *Journal
	logger  *zap.Logger

	mu      sync.RWMutex
	enabled bool
	depth   int
}

// NewRecorder creates a recorder writing to journal. Recording starts on.
func NewRecorder(logger *zap.Logger, emitter Emitter, journal *Journal) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		emitter: emitter,
		journal: journal,
		logger:  logger,
		enabled: true,
	}
}

// Journal returns the journal being written.
func (r *Recorder) Journal() *Journal {
	return r.journal
}

// StartRecording resumes journaling.
func (r *Recorder) StartRecording() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.enabled = true
	r.logger.Info("started replay recording", zap.String("battle_id", r.journal.BattleID))
}

// StopRecording pauses journaling; emissions still pass through.
func (r *Recorder) StopRecording() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.enabled = false
	r.logger.Info("stopped replay recording", zap.String("battle_id", r.journal.BattleID))
}

// IsRecording reports whether emissions are being journaled.
func (r *Recorder) IsRecording() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.enabled
}

// Emit forwards to the wrapped emitter and journals the emission. The
// entry is appended before dispatch, so nested emissions follow their
// parent in the journal.
func (r *Recorder) Emit(kind events.Kind, ctx *events.Context, payload events.Payload) (events.Payload, error) {
	if !r.IsRecording() {
		return r.emitter.Emit(kind, ctx, payload)
	}

	entry := &Entry{Kind: kind, Input: payload.Clone()}
	if ctx != nil && ctx.RNG != nil {
		state, err := ctx.RNG.State()
		if err != nil {
			return nil, fmt.Errorf("failed to capture rng state: %w", err)
		}
		entry.RNGState = state
	}

	r.mu.Lock()
	entry.Depth = r.depth
	r.depth++
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.depth--
		r.mu.Unlock()
	}()

	r.journal.Record(entry)

	out, err := r.emitter.Emit(kind, ctx, payload)
	if err != nil {
		entry.Err = err.Error()
		return nil, err
	}
	entry.Output = out.Clone()

	r.logger.Debug("recorded emission",
		zap.String("battle_id", r.journal.BattleID),
		zap.Int("seq", entry.Seq),
		zap.String("kind", kind.String()))

	return out, nil
}

// Verify re-runs every top-level entry of journal against emitter. Before
// each emission the random source is restored to the recorded state, so
// the handlers see the same rolls. The emitter must be set up the way the
// recorded battle was. Verify stops at the first divergence.
func Verify(journal *Journal, emitter Emitter, random events.Random) error {
	journal.mu.RLock()
	entries := make([]*Entry, len(journal.Entries))
	copy(entries, journal.Entries)
	journal.mu.RUnlock()

	for _, entry := range entries {
		if entry.Depth > 0 {
			continue
		}

		ctx := &events.Context{}
		if entry.RNGState != nil && random != nil {
			if err := random.Restore(entry.RNGState); err != nil {
				return fmt.Errorf("failed to restore rng for entry %d: %w", entry.Seq, err)
			}
			ctx.RNG = random
		}

		out, err := emitter.Emit(entry.Kind, ctx, entry.Input)
		switch {
		case err != nil && entry.Err == "":
			return fmt.Errorf("%w: entry %d (%s) failed: %v", ErrDivergence, entry.Seq, entry.Kind, err)
		case err == nil && entry.Err != "":
			return fmt.Errorf("%w: entry %d (%s) expected error %q", ErrDivergence, entry.Seq, entry.Kind, entry.Err)
		case err != nil:
			continue
		}

		if canonicalPayload(out) != canonicalPayload(entry.Output) {
			return fmt.Errorf("%w: entry %d (%s) output %s, recorded %s",
				ErrDivergence, entry.Seq, entry.Kind, canonicalPayload(out), canonicalPayload(entry.Output))
		}
	}
	return nil
}
