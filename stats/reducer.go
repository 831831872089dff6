package stats

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"

	"github.com/airtimelab/wifair/wifi"
)

// StationInput carries the per-station facts the reducer needs beyond the
// counter table.
type StationInput struct {
	Class   wifi.StationClass
	Rate    float64
	RxBytes uint64
}

// A StationReport is one station's normalized result record.
type StationReport struct {
	Station int
	Class   wifi.StationClass
	Rate    float64

	ThroughputMbps float64
	AvgQueueBytes  float64

	AccessFailures uint64
	FinalFailures  uint64
	PhyDrops       uint64

	ScheduledFrames  uint64
	ScheduledBytes   uint64
	SingleUserFrames uint64
	SingleUserBytes  uint64
}

// Reduce converts the raw counters and received byte totals into one report
// record per station. intervalSec is the measured interval the throughput is
// normalized over. Reduce is pure and runs once, after the run completes.
func Reduce(
	table *CounterTable,
	stations []StationInput,
	intervalSec float64,
) []StationReport {
	reports := make([]StationReport, len(stations))

	for i, st := range stations {
		c := table.Station(i)

		var avgQueue float64
		if c.QueueSamples > 0 {
			avgQueue = float64(c.QueueByteSum) / float64(c.QueueSamples)
		}

		reports[i] = StationReport{
			Station: i,
			Class:   st.Class,
			Rate:    st.Rate,

			ThroughputMbps: float64(st.RxBytes) * 8 / (intervalSec * 1e6),
			AvgQueueBytes:  avgQueue,

			AccessFailures: c.AccessFailures,
			FinalFailures:  c.FinalFailures,
			PhyDrops:       c.PhyDrops,

			ScheduledFrames:  c.ScheduledFrames,
			ScheduledBytes:   c.ScheduledBytes,
			SingleUserFrames: c.SingleUserFrames,
			SingleUserBytes:  c.SingleUserBytes,
		}
	}

	return reports
}

// FairnessIndex computes Jain's fairness index over the per-station
// throughputs: (sum x)^2 / (n * sum x^2). It is 1.0 when all stations get
// equal throughput and approaches 1/n under maximal unfairness.
func FairnessIndex(reports []StationReport) float64 {
	if len(reports) == 0 {
		return 0
	}

	x := make([]float64, len(reports))
	for i, r := range reports {
		x[i] = r.ThroughputMbps
	}

	sum := floats.Sum(x)
	sumSq := floats.Dot(x, x)
	if sumSq == 0 {
		return 0
	}

	return sum * sum / (float64(len(x)) * sumSq)
}

// RenderReport writes the plain text per-station report, one line per
// station, followed by the fairness summary.
func RenderReport(w io.Writer, reports []StationReport) {
	for _, r := range reports {
		fmt.Fprintf(w,
			"STA[%d] %s lambda=%g pkt/s throughput=%.3f Mbps"+
				" avgQueue=%.1f B accessFail=%d finalFail=%d phyDrop=%d"+
				" schedFrames=%d schedBytes=%d suFrames=%d suBytes=%d\n",
			r.Station, r.Class, r.Rate,
			r.ThroughputMbps,
			r.AvgQueueBytes,
			r.AccessFailures, r.FinalFailures, r.PhyDrops,
			r.ScheduledFrames, r.ScheduledBytes,
			r.SingleUserFrames, r.SingleUserBytes,
		)
	}

	fmt.Fprintf(w, "fairness=%.4f\n", FairnessIndex(reports))
}
