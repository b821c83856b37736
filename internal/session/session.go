// Package session runs one acquisition session: frames read from the gauge
// port are parsed, classified, and appended to the session log until the
// session is stopped or the stream ends. The session exclusively owns its
// transport handle and its log file and releases them together on every
// exit path.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/banshee-data/lsm6200/internal/classify"
	"github.com/banshee-data/lsm6200/internal/fixedpoint"
	"github.com/banshee-data/lsm6200/internal/monitoring"
	"github.com/banshee-data/lsm6200/internal/protocol"
	"github.com/banshee-data/lsm6200/internal/readlog"
	"github.com/banshee-data/lsm6200/internal/serialmux"
)

// Mode selects the session's classification path and with it the log
// schema: band mode writes categorized rows, every other mode writes
// verdict rows.
type Mode string

const (
	// ModeBand runs readings through the fixed-decimal pipeline and the
	// six-band sort relative to the standard value.
	ModeBand Mode = "band"
	// ModeThreshold judges readings against the configured rule.
	ModeThreshold Mode = "threshold"
	// ModeNone logs readings without judging them.
	ModeNone Mode = "none"
)

// Options configures a session.
type Options struct {
	// Port is the open transport handle. The session takes ownership and
	// closes it when the session ends, even when setup fails part-way.
	Port serialmux.Porter
	// Terminator is the frame terminator; empty selects CR+LF.
	Terminator string
	// Parser extracts measurements from frames.
	Parser *protocol.Parser
	// Mode selects the classification path.
	Mode Mode
	// Rule is the threshold rule, used by every non-band mode.
	Rule classify.Rule
	// Standard is the nominal dimension for band classification.
	Standard decimal.Decimal
	// Log configures the session log file. The schema is chosen by the
	// session from Mode and need not be set.
	Log readlog.Options
}

// Session is one open-to-close acquisition run.
type Session struct {
	// ID tags the session's diagnostic output.
	ID uuid.UUID

	mux      *serialmux.LineMux
	logger   *readlog.SessionLogger
	parser   *protocol.Parser
	mode     Mode
	rule     classify.Rule
	standard decimal.Decimal
	log      zerolog.Logger

	closeOnce sync.Once
	closeErr  error
}

// New opens the session log and wires the transport. On failure the port is
// closed before returning; an acquired handle never outlives a failed
// setup.
func New(opts Options) (*Session, error) {
	logOpts := opts.Log
	if opts.Mode == ModeBand {
		logOpts.Schema = readlog.SchemaCategorized
	} else {
		logOpts.Schema = readlog.SchemaVerdict
	}

	logger, err := readlog.Open(logOpts)
	if err != nil {
		opts.Port.Close()
		return nil, err
	}

	id := uuid.New()
	return &Session{
		ID:       id,
		mux:      serialmux.NewLineMux(opts.Port, opts.Terminator),
		logger:   logger,
		parser:   opts.Parser,
		mode:     opts.Mode,
		rule:     opts.Rule,
		standard: opts.Standard,
		log:      monitoring.Log.With().Str("session", id.String()).Logger(),
	}, nil
}

// Mux exposes the session's line mux so additional observers (a console
// tail, for instance) can subscribe to the same frame stream.
func (s *Session) Mux() *serialmux.LineMux {
	return s.mux
}

// Run executes the read, parse, classify, log sequence until the context is
// cancelled, the stream ends, or an I/O error occurs. The transport and the
// log file are released before Run returns, whatever the exit path. A log
// write failure is terminal: a silently broken log would defeat the
// session's purpose.
func (s *Session) Run(ctx context.Context) error {
	defer s.Close()

	subID, frames := s.mux.Subscribe()
	defer s.mux.Unsubscribe(subID)

	monErr := make(chan error, 1)
	go func() { monErr <- s.mux.Monitor(ctx) }()

	s.log.Info().Str("mode", string(s.mode)).Msg("session started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("session stopped")
			return ctx.Err()

		case err := <-monErr:
			// the monitor has stopped sending; flush frames it delivered
			// before it returned
			if herr := s.drain(frames); herr != nil {
				s.log.Error().Err(herr).Msg("logging failed")
				return herr
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				s.log.Error().Err(err).Msg("transport failed")
				return err
			}
			s.log.Info().Msg("stream ended")
			return err

		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if err := s.handleFrame(frame); err != nil {
				s.log.Error().Err(err).Msg("logging failed")
				return err
			}
		}
	}
}

func (s *Session) drain(frames chan string) error {
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if err := s.handleFrame(frame); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (s *Session) handleFrame(frame string) error {
	m := s.parser.ParseText(frame)
	if m == nil {
		return nil
	}

	if s.mode == ModeBand {
		return s.handleBand(m)
	}
	return s.handleVerdict(m)
}

// handleBand runs the direct-reading path: fixed-decimal processing, then
// the six-band sort. The band classifier is total over numeric values but
// is never handed a frame without one; such frames are skipped.
func (s *Session) handleBand(m *protocol.Measurement) error {
	if m.Value == nil {
		s.log.Warn().Str("raw", m.Raw).Msg("frame without numeric value skipped")
		return nil
	}

	pv := fixedpoint.Process(*m.Value)
	res := classify.ClassifyBands(pv.Rounded3, s.standard)

	s.log.Info().
		Str("value", pv.Rounded3.StringFixed(3)).
		Int("category", res.Category.Code).
		Str("reason", res.Reason).
		Msg("reading")

	return s.logger.LogCategorized(&pv.Rounded3, res.Category.Code, m.Unit, res.Reason, m.Raw)
}

func (s *Session) handleVerdict(m *protocol.Measurement) error {
	res := classify.Evaluate(m.Value, s.rule)

	ev := s.log.Info()
	if m.Value != nil {
		ev = ev.Str("value", m.Value.String())
	}
	ev.Str("verdict", string(res.Verdict)).Str("reason", res.Reason).Msg("reading")

	return s.logger.LogVerdict(m.Value, res.Verdict, m.Unit, res.Reason, m.Raw)
}

// Close releases the transport and the log file together. Safe to call more
// than once; later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		muxErr := s.mux.Close()
		logErr := s.logger.Close()
		s.closeErr = errors.Join(muxErr, logErr)
	})
	return s.closeErr
}
