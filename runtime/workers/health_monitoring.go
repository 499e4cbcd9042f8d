package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"chat-core/domain"
	"chat-core/observability"
)

// ActivityFeed is the read side of the timeline projection, sampled by the
// health report.
type ActivityFeed interface {
	Messages() []domain.Message
}

// HealthMonitoring periodically samples the process itself (RSS, CPU, OS
// status) and logs it next to the core's activity counters and the size of
// the timeline feed. Useful when the core runs embedded in a long-lived
// host process.
type HealthMonitoring struct {
	log      *slog.Logger
	monitor  *observability.Monitor
	feed     ActivityFeed
	interval time.Duration
}

func NewHealthMonitoring(log *slog.Logger, monitor *observability.Monitor,
	feed ActivityFeed, interval time.Duration) *HealthMonitoring {
	return &HealthMonitoring{log: log, monitor: monitor, feed: feed, interval: interval}
}

func (w *HealthMonitoring) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

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
			stats := w.monitor.Stats()
			w.log.Info("Health",
				"pid", os.Getpid(),
				"status", status,
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"messages", stats.MessagesPosted,
				"sink_errors", stats.SinkErrors,
				"feed_size", len(w.feed.Messages()),
			)
		}
	}
}

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
