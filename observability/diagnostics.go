// Package observability carries client-side self diagnostics. The chat
// client is long-lived; a slow leak or a spinning reconnect loop shows up
// here before the user notices.
package observability

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"chat-client/contract"
	"chat-client/session"
)

var _ contract.Worker = (*DiagnosticsWorker)(nil)

// DiagnosticsWorker periodically logs process stats (CPU, RSS, status)
// together with the chat session's state and log size.
type DiagnosticsWorker struct {
	log      *slog.Logger
	session  *session.Session
	interval time.Duration
}

func NewDiagnosticsWorker(log *slog.Logger, s *session.Session, interval time.Duration) *DiagnosticsWorker {
	return &DiagnosticsWorker{log: log, session: s, interval: interval}
}

func (w *DiagnosticsWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.log.Debug("Client diagnostics",
				"state", w.session.State().String(),
				"messages", len(w.session.Snapshot()),
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"pid_status", status,
			)
		}
	}
}

// selfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
