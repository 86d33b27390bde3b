package server

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"time"

	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/host"
	"github.com/entrhq/vanish/pkg/scene"
	"github.com/entrhq/vanish/pkg/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// connection is one socket and the commands queued for it. Only the
// connection's own goroutine touches it.
type connection struct {
	ws           *websocket.Conn
	writeTimeout time.Duration
	queue        []*types.Command
}

func (c *connection) enqueue(cmd *types.Command) {
	c.queue = append(c.queue, cmd)
}

// flush writes the queued commands in order.
func (c *connection) flush() error {
	for len(c.queue) > 0 {
		cmd := c.queue[0]
		c.queue = c.queue[1:]
		if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
		if err := c.ws.WriteJSON(cmd); err != nil {
			return err
		}
	}
	return nil
}

// handleSession upgrades the request and runs one experiment session until the
// client disconnects. The variant is chosen with ?variant=, falling back to
// the configured default.
func (s *Server) handleSession(c *gin.Context) {
	name := c.DefaultQuery("variant", s.cfg.DefaultVariant)
	v, err := s.registry.Get(name)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Errorf("failed to upgrade the websocket: %v", err)
		return
	}
	defer ws.Close()
	ws.SetReadLimit(s.cfg.ReadLimit)

	conn := &connection{ws: ws, writeTimeout: s.cfg.WriteTimeout}
	opts := []host.Option{host.WithLogger(s.logger.With("session"))}
	if s.cfg.Seed != 0 {
		seed := uint64(s.cfg.Seed)
		opts = append(opts, host.WithSessionOptions(experiment.WithRand(rand.New(rand.NewPCG(seed, seed)))))
	}

	if s.cfg.Pick {
		opts = append(opts, host.WithPicker(scene.New()))
	}

	d, err := host.NewDispatcher(v, conn.enqueue, opts...)
	if err != nil {
		s.logger.Errorf("failed to create session: %v", err)
		_ = ws.WriteJSON(types.NewErrorStatusCommand("could not start session"))
		return
	}
	d.Start()
	defer d.Close()
	if err := conn.flush(); err != nil {
		return
	}

	s.serve(c.Request.Context(), conn, d)
}

func (s *Server) serve(ctx context.Context, conn *connection, d *host.Dispatcher) {
	sessionID := d.Session().ID()
	for {
		msgType, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warnf("session %s: connection dropped: %v", sessionID, err)
			} else {
				s.logger.Infof("session %s: client disconnected", sessionID)
			}
			return
		}
		if msgType != websocket.TextMessage {
			conn.enqueue(types.NewErrorStatusCommand("expected a text message"))
		} else {
			s.handleInput(ctx, conn, d, data)
		}
		if err := conn.flush(); err != nil {
			s.logger.Warnf("session %s: write failed: %v", sessionID, err)
			return
		}
	}
}

func (s *Server) handleInput(ctx context.Context, conn *connection, d *host.Dispatcher, data []byte) {
	session := d.Session()
	ctx, span := tracer.Start(ctx, "session.input",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("session.id", session.ID()),
			attribute.String("session.variant", session.Variant().Name),
		),
	)
	defer span.End()

	var in types.Input
	if err := json.Unmarshal(data, &in); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed input")
		conn.enqueue(types.NewErrorStatusCommand("malformed input: " + err.Error()))
		return
	}
	span.SetAttributes(attribute.String("input.type", string(in.Type)))

	if err := d.Handle(ctx, &in); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		conn.enqueue(types.NewErrorStatusCommand(err.Error()))
		return
	}
	span.SetAttributes(
		attribute.String("session.phase", session.Phase().String()),
		attribute.Int("session.stage", session.Stage()),
	)
}
