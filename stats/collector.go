package stats

import (
	"github.com/airtimelab/wifair/sim"
	"github.com/airtimelab/wifair/wifi"
)

// A Collector is a hook registered on one station's device. It carries the
// station index as bound context and reduces the device's notifications into
// the shared counter table.
type Collector struct {
	station int
	table   *CounterTable

	// frame classification is only wired for scheduled-class stations
	classify bool
}

// NewCollector creates a collector for the given station.
func NewCollector(station int, table *CounterTable, classify bool) *Collector {
	c := new(Collector)
	c.station = station
	c.table = table
	c.classify = classify
	return c
}

// Func dispatches a fired notification into the counter table.
func (c *Collector) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case wifi.HookPosAccessFailure:
		c.table.OnAccessFailure(c.station)
	case wifi.HookPosFinalAccessFailure:
		c.table.OnFinalAccessFailure(c.station)
	case wifi.HookPosPhyDrop:
		c.table.OnPhysicalDrop(c.station)
	case wifi.HookPosFrameTransmitted:
		if !c.classify {
			return
		}
		f := ctx.Item.(*wifi.Frame)
		c.table.OnFrameTransmitted(c.station, f.Bytes, f.Mode)
	}
}
