package experiment

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rs/xid"

	"github.com/airtimelab/wifair/sim"
	"github.com/airtimelab/wifair/stats"
	"github.com/airtimelab/wifair/traffic"
	"github.com/airtimelab/wifair/wifi"
)

// traffic sources start one virtual second into the run, and the engine
// runs a short tail past their stop so in-flight frames can land
const (
	appStartTime = 1.0
	runTailTime  = 0.2
)

// A Runner assembles one measurement run: the engine, the medium, one
// device, source, probe, and collector per station, and the post-run
// reduction pass.
type Runner struct {
	cfg Config
	out io.Writer

	runID string

	engine  *sim.SerialEngine
	ap      *wifi.AccessPoint
	channel *wifi.Channel
	devices []*wifi.Device
	sources []*traffic.PoissonSource
	probes  []*stats.QueueProbe
	table   *stats.CounterTable
	rates   []float64
}

// NewRunner builds a run from the given configuration. The report is
// written to out when the run finishes.
func NewRunner(cfg Config, out io.Writer) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rates, err := traffic.AssignRates(
		cfg.NLegacy, cfg.NScheduled,
		cfg.LambdaList,
		cfg.LambdaLegacy, cfg.LambdaScheduled,
	)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:   cfg,
		out:   out,
		runID: xid.New().String(),
		rates: rates,
	}

	r.engine = sim.NewSerialEngine()
	if cfg.LogEvents {
		r.engine.AcceptHook(sim.NewEventLogger(log.New(os.Stderr, "", 0)))
	}

	total := cfg.NLegacy + cfg.NScheduled
	r.ap = wifi.NewAccessPoint("AP", total, cfg.APCwMin, cfg.APCwMax)
	r.channel = wifi.MakeChannelBuilder().
		WithEngine(r.engine).
		WithAccessPoint(r.ap).
		WithSeed(cfg.Seed + 1).
		Build("Channel")

	r.table = stats.NewCounterTable(total)

	var scheduled []*wifi.Device
	for i := 0; i < total; i++ {
		class := wifi.ClassLegacy
		if i >= cfg.NLegacy {
			class = wifi.ClassScheduled
		}

		dev := wifi.NewDevice(
			fmt.Sprintf("STA%d", i), i, class,
			r.channel, wifi.DefaultQueueCapacityBytes,
		)
		dev.AcceptHook(stats.NewCollector(i, r.table, class == wifi.ClassScheduled))
		r.devices = append(r.devices, dev)

		if class == wifi.ClassScheduled {
			scheduled = append(scheduled, dev)
		}

		src := traffic.MakePoissonSourceBuilder().
			WithEngine(r.engine).
			WithEndpoint(dev).
			WithPayloadSize(cfg.PayloadSize).
			WithRate(rates[i]).
			WithSeed(cfg.Seed + 100 + uint64(i)).
			Build(fmt.Sprintf("src%d", i))
		r.sources = append(r.sources, src)

		r.probes = append(r.probes, stats.NewQueueProbe(
			r.engine, i, dev, r.table, stats.DefaultProbePeriod,
		))
	}

	if cfg.EnableMuAccess && len(scheduled) > 0 {
		wifi.NewMuScheduler(
			"MuSched", r.engine, r.channel, scheduled,
			sim.VTimeInSec(cfg.MuAccessInterval),
			cfg.Seed+2,
		)
	}

	return r, nil
}

// Run executes the simulation and writes the report. A run interrupted by a
// handler error still reports whatever was counted.
func (r *Runner) Run() error {
	stop := appStartTime + r.cfg.SimTime

	ph := &phaseHandler{r: r}
	r.engine.Schedule(&phaseEvent{
		EventBase: sim.MakeEventBase(appStartTime, ph),
		phase:     phaseStartSources,
	})
	r.engine.Schedule(&phaseEvent{
		EventBase: sim.MakeEventBase(sim.VTimeInSec(stop), ph),
		phase:     phaseStopSources,
	})

	for _, p := range r.probes {
		p.Start()
	}

	r.engine.RegisterSimulationEndHandler(&reportPass{r: r})

	err := r.engine.RunUntil(sim.VTimeInSec(stop + runTailTime))
	r.engine.Finished()

	return err
}

// Engine exposes the engine, mainly for tests.
func (r *Runner) Engine() *sim.SerialEngine {
	return r.engine
}

// AccessPoint exposes the access point, mainly for tests.
func (r *Runner) AccessPoint() *wifi.AccessPoint {
	return r.ap
}

// Sources exposes the traffic sources, mainly for tests.
func (r *Runner) Sources() []*traffic.PoissonSource {
	return r.sources
}

// Table exposes the counter table, mainly for tests.
func (r *Runner) Table() *stats.CounterTable {
	return r.table
}

// Reports runs the reduction pass and returns the per-station records.
func (r *Runner) Reports() []stats.StationReport {
	inputs := make([]stats.StationInput, len(r.devices))
	for i, d := range r.devices {
		inputs[i] = stats.StationInput{
			Class:   d.Class(),
			Rate:    r.rates[i],
			RxBytes: r.ap.TotalRx(i),
		}
	}

	return stats.Reduce(r.table, inputs, r.cfg.SimTime)
}

func (r *Runner) report() {
	fmt.Fprintf(r.out, "=== wifair run %s ===\n", r.runID)
	fmt.Fprintf(r.out,
		"nLegacy=%d nScheduled=%d simTime=%gs payload=%dB"+
			" apCwMin=%d apCwMax=%d muAccess=%v\n",
		r.cfg.NLegacy, r.cfg.NScheduled, r.cfg.SimTime, r.cfg.PayloadSize,
		r.cfg.APCwMin, r.cfg.APCwMax, r.cfg.EnableMuAccess,
	)

	stats.RenderReport(r.out, r.Reports())
}

type runPhase int

const (
	phaseStartSources runPhase = iota
	phaseStopSources
)

type phaseEvent struct {
	sim.EventBase
	phase runPhase
}

// phaseHandler starts and stops the traffic sources at their scheduled
// virtual times.
type phaseHandler struct {
	r *Runner
}

func (h *phaseHandler) Handle(e sim.Event) error {
	evt := e.(*phaseEvent)

	switch evt.phase {
	case phaseStartSources:
		for _, s := range h.r.sources {
			s.Start()
		}
	case phaseStopSources:
		for _, s := range h.r.sources {
			s.Stop()
		}
	}

	return nil
}

// reportPass renders the report when the engine finishes.
type reportPass struct {
	r *Runner
}

func (p *reportPass) Handle(now sim.VTimeInSec) {
	p.r.report()
}
