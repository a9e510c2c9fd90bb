package main

import (
	"log/slog"
	"time"
)

func main() {
	slog.Info("Starting comment cleanup job")
	start := time.Now()

	cutoff := time.Now().Add(-commentRetention)
	removed, err := projectDBService.DeleteCommentsOlderThan(cutoff)
	if err != nil {
		slog.Error("Failed to delete old preview comments", slog.String("error", err.Error()))
		return
	}

	slog.Info("Comment cleanup job completed",
		slog.Int64("removed", removed),
		slog.String("cutoff", cutoff.Format(time.RFC3339)),
		slog.String("duration", time.Since(start).String()),
	)
}
