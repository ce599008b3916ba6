package history

import (
	"testing"

	"github.com/voicekit/voicegate/internal/latency"
)

func TestNilRecorderIsNoOp(t *testing.T) {
	var r *Recorder
	r.Record(latency.NewMetrics("s"))
	r.Close()
}
