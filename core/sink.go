package core

import (
	"fmt"

	"diamond-node/consensus"
	"diamond-node/logger"
)

// LogSink forwards retarget events to the process logger. Logging is
// observational only; the retarget result never depends on the sink.
type LogSink struct{}

func (LogSink) RetargetComputed(ev consensus.RetargetEvent) {
	logger.WithFields(map[string]interface{}{
		"height":         ev.Height,
		"oldBits":        fmt.Sprintf("%08x", ev.OldBits),
		"newBits":        fmt.Sprintf("%08x", ev.NewBits),
		"targetTimespan": ev.TargetTimespan,
		"actualTimespan": ev.ActualTimespan,
		"realTimespan":   ev.RealTimespan,
	}).Info("difficulty retarget")
}
