package globals

import (
	"context"
	"log/slog"
	"time"

	"smsc-client/internal/components/telemetry"
	"smsc-client/lib/smartschool"
	"smsc-client/lib/smartschool/mydoc"
)

type key struct{}

// Value holds what the commands share, it is filled in by the root command
// before a subcommand runs.
type Value struct {
	Session   *smartschool.Session
	Mydoc     mydoc.Client
	Telemetry telemetry.Telemetry
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}

// Close logs out and flushes telemetry.
func (v *Value) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if v.Session != nil {
		err := v.Session.Logout(ctx)
		if err != nil {
			slog.Warn("failed to log out", "err", err)
		}
	}
	err := v.Telemetry.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
}
