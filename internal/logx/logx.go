package logx

import (
	"context"

	"pkt.systems/pslog"
	"pkt.systems/repline/schema"
)

type contextKey int

const (
	targetKey contextKey = iota
	sendKey
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithTarget annotates the logger with the session target if present.
func WithTarget(ctx context.Context, target schema.TargetID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if target != "" {
		if current, ok := ctx.Value(targetKey).(schema.TargetID); ok && current == target {
			return log
		}
		log = log.With("target", target)
	}
	return log
}

// WithTargetSend annotates the logger with target and send identifiers.
func WithTargetSend(ctx context.Context, target schema.TargetID, sendID schema.SendID) pslog.Logger {
	log := WithTarget(ctx, target)
	if sendID != "" {
		if current, ok := ctx.Value(sendKey).(schema.SendID); ok && current == sendID {
			return log
		}
		log = log.With("send", sendID)
	}
	return log
}

// WithSource annotates the logger with a source path when available.
func WithSource(log pslog.Logger, sourcePath string) pslog.Logger {
	if sourcePath != "" {
		log = log.With("source", sourcePath)
	}
	return log
}

// ContextWithTarget stores the target marker on the context for log de-duplication.
func ContextWithTarget(ctx context.Context, target schema.TargetID) context.Context {
	if ctx == nil || target == "" {
		return ctx
	}
	return context.WithValue(ctx, targetKey, target)
}

// ContextWithSend stores the send marker on the context for log de-duplication.
func ContextWithSend(ctx context.Context, sendID schema.SendID) context.Context {
	if ctx == nil || sendID == "" {
		return ctx
	}
	return context.WithValue(ctx, sendKey, sendID)
}

// ContextWithTargetLogger attaches the logger and target marker to the context.
func ContextWithTargetLogger(ctx context.Context, log pslog.Logger, target schema.TargetID) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithTarget(ctx, target)
}

// CopyContextFields copies target/send markers from src to dst.
func CopyContextFields(dst context.Context, src context.Context) context.Context {
	if src == nil {
		return dst
	}
	if target, ok := src.Value(targetKey).(schema.TargetID); ok && target != "" {
		dst = ContextWithTarget(dst, target)
	}
	if send, ok := src.Value(sendKey).(schema.SendID); ok && send != "" {
		dst = ContextWithSend(dst, send)
	}
	return dst
}
