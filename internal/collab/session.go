package collab

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/operation"
	"github.com/dshills/inkwell/internal/event"
	"github.com/dshills/inkwell/internal/event/events"
)

// DefaultSendBuffer is the default number of local operations queued for
// sending.
const DefaultSendBuffer = 256

// Errors returned by sessions.
var (
	ErrSendBufferFull = errors.New("send buffer full")
	ErrSessionClosed  = errors.New("session closed")
	ErrSessionRunning = errors.New("session already running")
)

// Transport carries encoded updates between peers. Receive blocks until an
// update arrives, ctx is done, or the transport is closed.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClientID sets the identifier stamped on outgoing updates.
func WithClientID(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.clientID = id
		}
	}
}

// WithTranslator replaces the JSON translator.
func WithTranslator(t Translator) SessionOption {
	return func(s *Session) {
		if t != nil {
			s.translator = t
		}
	}
}

// WithSendBuffer sets the capacity of the outgoing queue.
func WithSendBuffer(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.sendBuffer = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session keeps one engine in step with its peers over a Transport.
type Session struct {
	engine     *engine.Engine
	transport  Transport
	translator Translator
	clientID   string
	sendBuffer int
	logger     *zap.Logger

	outbox  chan *operation.Operation
	sub     *event.Subscription
	seq     atomic.Uint64
	running atomic.Bool

	closeOnce sync.Once
	closed    chan struct{}

	sent     atomic.Uint64
	received atomic.Uint64
	rejected atomic.Uint64
}

// NewSession subscribes to e's local operations. Call Run to start
// exchanging updates.
func NewSession(e *engine.Engine, t Transport, opts ...SessionOption) (*Session, error) {
	s := &Session{
		engine:     e,
		transport:  t,
		translator: JSONTranslator{},
		clientID:   uuid.NewString(),
		sendBuffer: DefaultSendBuffer,
		logger:     e.Logger(),
		closed:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("component", "collab"), zap.String("client", s.clientID))
	s.outbox = make(chan *operation.Operation, s.sendBuffer)

	sub, err := e.Bus().SubscribeFunc(events.TopicOperation, s.onOperation, event.WithFilter(isLocal))
	if err != nil {
		return nil, err
	}
	s.sub = sub
	return s, nil
}

// ClientID returns the identifier stamped on outgoing updates.
func (s *Session) ClientID() string { return s.clientID }

func isLocal(ev any) bool {
	p, ok := event.PayloadOf[events.OperationApplied](ev)
	return ok && p.Origin != events.OriginRemote
}

func (s *Session) onOperation(_ context.Context, ev any) error {
	p, ok := event.PayloadOf[events.OperationApplied](ev)
	if !ok {
		return nil
	}
	select {
	case <-s.closed:
		return ErrSessionClosed
	default:
	}
	select {
	case s.outbox <- p.Operation:
		return nil
	default:
		s.logger.Warn("dropping local operation", zap.String("path", p.Operation.Path.String()))
		return ErrSendBufferFull
	}
}

// Run exchanges updates until ctx is done or the transport fails. The
// transport is closed when Run returns.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrSessionRunning
	}
	defer s.running.Store(false)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.sendLoop(ctx) })
	g.Go(func() error { return s.receiveLoop(ctx) })
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-s.closed:
		}
		return s.transport.Close()
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrSessionClosed) {
		return nil
	}
	return err
}

// Close stops listening for local operations and ends Run.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.sub.Cancel()
		close(s.closed)
	})
}

func (s *Session) sendLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.closed:
			return ErrSessionClosed
		case op := <-s.outbox:
			batch := s.drain([]*operation.Operation{op})
			if err := s.send(ctx, batch); err != nil {
				return err
			}
		}
	}
}

// drain appends every operation already queued so one update carries
// them together.
func (s *Session) drain(batch []*operation.Operation) []*operation.Operation {
	for {
		select {
		case op := <-s.outbox:
			batch = append(batch, op)
		default:
			return batch
		}
	}
}

func (s *Session) send(ctx context.Context, ops []*operation.Operation) error {
	data, err := s.translator.Encode(Update{
		ClientID:   s.clientID,
		Seq:        s.seq.Add(1),
		Operations: ops,
	})
	if err != nil {
		return err
	}
	if err := s.transport.Send(ctx, data); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	s.sent.Add(1)
	return nil
}

func (s *Session) receiveLoop(ctx context.Context) error {
	for {
		data, err := s.transport.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			select {
			case <-s.closed:
				return ErrSessionClosed
			default:
			}
			return err
		}
		s.apply(ctx, data)
	}
}

func (s *Session) apply(ctx context.Context, data []byte) {
	u, err := s.translator.Decode(data)
	if err != nil {
		s.rejected.Add(1)
		s.logger.Warn("discarding update", zap.Error(err))
		return
	}
	if u.ClientID == s.clientID {
		return
	}
	if err := s.engine.ApplyRemote(u.Operations); err != nil {
		s.rejected.Add(1)
		s.logger.Error("remote update rejected",
			zap.String("from", u.ClientID),
			zap.Uint64("seq", u.Seq),
			zap.Error(err))
		return
	}
	s.received.Add(1)

	ev := event.NewEvent(events.TopicRemoteApplied, events.RemoteApplied{
		ClientID:   u.ClientID,
		Sequence:   u.Seq,
		Operations: len(u.Operations),
	}, "collab")
	if err := s.engine.Bus().Publish(ctx, ev); err != nil {
		s.logger.Warn("publish failed", zap.Error(err))
	}
}

// Stats holds session counters.
type Stats struct {
	Sent     uint64
	Received uint64
	Rejected uint64
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	return Stats{
		Sent:     s.sent.Load(),
		Received: s.received.Load(),
		Rejected: s.rejected.Load(),
	}
}
