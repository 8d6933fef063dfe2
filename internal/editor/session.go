package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultDebounce    = 3 * time.Second
	DefaultSaveTimeout = 30 * time.Second
)

// State reports what the save slot is doing.
type State int

const (
	Idle State = iota
	Saving
	// SavingWithPendingEdit means a debounce elapsed while a save was in
	// flight; one more save runs when it completes.
	SavingWithPendingEdit
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Saving:
		return "saving"
	case SavingWithPendingEdit:
		return "saving_with_pending_edit"
	default:
		return "unknown"
	}
}

// Option configures a Session.
type Option func(*Session)

func WithClock(c Clock) Option { return func(s *Session) { s.clock = c } }

func WithDebounce(d time.Duration) Option { return func(s *Session) { s.debounce = d } }

func WithSaveTimeout(d time.Duration) Option { return func(s *Session) { s.saveTimeout = d } }

// WithFlushOnClose controls whether Close sends edits still waiting on the
// debounce. Defaults to true.
func WithFlushOnClose(v bool) Option { return func(s *Session) { s.flushOnClose = v } }

func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.log = l } }

// OnIdentity is called once, when the server first assigns an id.
func OnIdentity(f func(id string)) Option { return func(s *Session) { s.onIdentity = f } }

// OnSaved is called after every successful save.
func OnSaved(f func(SaveResult)) Option { return func(s *Session) { s.onSaved = f } }

// OnError is called after every failed save. Failures are not fatal.
func OnError(f func(error)) Option { return func(s *Session) { s.onError = f } }

// Session is the autosave state machine for one résumé being edited.
// At most one save is in flight; a debounce that elapses meanwhile is
// queued in a single slot and snapshots the document when it is sent.
type Session struct {
	saver        Saver
	clock        Clock
	debounce     time.Duration
	saveTimeout  time.Duration
	flushOnClose bool
	log          *zap.Logger

	onIdentity func(string)
	onSaved    func(SaveResult)
	onError    func(error)

	mu      sync.Mutex
	doc     Document
	knownID string
	state   State
	dirty   bool
	gen     uint64
	timer   Timer
	idle    chan struct{}
	lastErr error
	deleted bool
	closed  bool
}

// NewSession opens a session on doc. doc.ID may be empty for a new résumé.
func NewSession(doc Document, saver Saver, opts ...Option) *Session {
	s := &Session{
		saver:        saver,
		clock:        RealClock(),
		debounce:     DefaultDebounce,
		saveTimeout:  DefaultSaveTimeout,
		flushOnClose: true,
		log:          zap.NewNop(),
		doc:          doc.clone(),
		knownID:      doc.ID,
		idle:         make(chan struct{}),
	}
	close(s.idle)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Edit applies fn to the document and restarts the debounce. It never
// sends by itself.
func (s *Session) Edit(fn func(doc *Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	owner := s.doc.OwnerID
	fn(&s.doc)
	s.doc.OwnerID = owner
	if s.deleted {
		return ErrResumeDeleted
	}
	s.dirty = true
	s.armLocked()
	return nil
}

// Document returns a copy of the current document.
func (s *Session) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.doc.clone()
	if doc.ID == "" {
		doc.ID = s.knownID
	}
	return doc
}

// KnownID is the server-assigned id, or empty before the first save.
func (s *Session) KnownID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knownID
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dirty reports whether there are edits no save has picked up yet.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Flush sends pending edits now and waits for the slot to drain. It
// returns the error of the last save, if any.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.deleted {
		s.mu.Unlock()
		return ErrResumeDeleted
	}
	s.disarmLocked()
	if s.dirty {
		s.requestSaveLocked()
	}
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Close ends the session. With flush-on-close pending edits are sent
// first; otherwise edits still inside the debounce window are dropped.
// An in-flight save is always awaited.
func (s *Session) Close(ctx context.Context) error {
	var flushErr error
	if s.flushOnClose {
		flushErr = s.Flush(ctx)
		if errors.Is(flushErr, ErrResumeDeleted) {
			flushErr = nil
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.disarmLocked()
	if s.dirty && !s.flushOnClose {
		s.log.Info("editor.close.discarded_edits", zap.String("resume_id", s.knownID))
	}
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
	case <-ctx.Done():
		return ctx.Err()
	}
	return flushErr
}

func (s *Session) armLocked() {
	s.disarmLocked()
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.debounce, func() { s.debounceElapsed(gen) })
}

func (s *Session) disarmLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) debounceElapsed(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A stopped timer may still fire; only the latest arm counts.
	if gen != s.gen || s.closed || s.deleted {
		return
	}
	s.timer = nil
	s.requestSaveLocked()
}

func (s *Session) requestSaveLocked() {
	switch s.state {
	case Idle:
		s.startSaveLocked()
	case Saving:
		s.state = SavingWithPendingEdit
	}
}

func (s *Session) startSaveLocked() {
	snapshot := s.doc.clone()
	// The identity is read here, at send time, so a queued save sees the
	// result of the save that ran before it.
	if snapshot.ID == "" {
		snapshot.ID = s.knownID
	}
	s.dirty = false
	s.lastErr = nil
	if s.state == Idle {
		s.idle = make(chan struct{})
	}
	s.state = Saving

	req := SaveRequest{
		UserID:   snapshot.OwnerID,
		ResumeID: snapshot.ID,
		Title:    snapshot.Title,
		Data:     snapshot.Content,
	}
	go s.send(req)
}

func (s *Session) send(req SaveRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	res, err := s.saver.SaveResume(ctx, req)
	cancel()
	s.complete(req, res, err)
}

func (s *Session) complete(req SaveRequest, res SaveResult, err error) {
	var notify []func()

	s.mu.Lock()
	if err != nil {
		s.lastErr = err
		if errors.Is(err, ErrResumeDeleted) {
			s.deleted = true
			s.disarmLocked()
		}
		s.log.Warn("editor.save.failed", zap.String("resume_id", req.ResumeID), zap.Error(err))
		if s.onError != nil {
			cb := s.onError
			notify = append(notify, func() { cb(err) })
		}
	} else {
		if res.ID != "" && res.ID != s.knownID {
			first := s.knownID == ""
			s.knownID = res.ID
			if s.doc.ID == "" {
				s.doc.ID = res.ID
			}
			if first && s.onIdentity != nil {
				cb, id := s.onIdentity, res.ID
				notify = append(notify, func() { cb(id) })
			}
		}
		s.log.Debug("editor.save.ok", zap.String("resume_id", s.knownID))
		if s.onSaved != nil {
			cb := s.onSaved
			notify = append(notify, func() { cb(res) })
		}
	}

	var drained chan struct{}
	if s.state == SavingWithPendingEdit && !s.deleted && (!s.closed || s.flushOnClose) {
		s.startSaveLocked()
	} else {
		s.state = Idle
		drained = s.idle
	}
	s.mu.Unlock()

	for _, f := range notify {
		f()
	}
	if drained != nil {
		close(drained)
	}
}
