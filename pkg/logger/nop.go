package logger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Nop discards everything it is given. Meant for tests and tooling that
// needs a Logger but no output.
type Nop struct{}

func NewNop() *Nop { return &Nop{} }

func (n *Nop) Debug(msg string, args ...any) {}
func (n *Nop) Info(msg string, args ...any)  {}
func (n *Nop) Warn(msg string, args ...any)  {}
func (n *Nop) Error(msg string, args ...any) {}

func (n *Nop) Debugw(msg string, keysAndValues ...any) {}
func (n *Nop) Infow(msg string, keysAndValues ...any)  {}
func (n *Nop) Warnw(msg string, keysAndValues ...any)  {}
func (n *Nop) Errorw(msg string, keysAndValues ...any) {}

func (n *Nop) Ctx(ctx context.Context) Logger { return n }
func (n *Nop) With(args ...any) Logger        { return n }
func (n *Nop) WithGroup(name string) Logger   { return n }

func (n *Nop) WithRequestID(ctx context.Context, requestID string) context.Context {
	return ctx
}

func (n *Nop) GenerateRequestID() string { return uuid.New().String() }

func (n *Nop) GetRequestID(ctx context.Context) string { return "" }

func (n *Nop) LogRequest(
	ctx context.Context,
	method, path string,
	status int,
	duration time.Duration,
) {
}

func (n *Nop) Log(level Level, msg string, attrs ...Attr) {}

func (n *Nop) LogAttrs(ctx context.Context, level Level, msg string, attrs ...Attr) {}
