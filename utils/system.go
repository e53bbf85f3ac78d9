package utils

import (
	"log/slog"
	"runtime"
)

// MemUsage reports heap statistics in MiB for debug logging.
func MemUsage() slog.Attr {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}
	return slog.Group("mem",
		"alloc_mib", bToMb(m.Alloc),
		"total_alloc_mib", bToMb(m.TotalAlloc),
		"sys_mib", bToMb(m.Sys),
		"num_gc", m.NumGC)
}
