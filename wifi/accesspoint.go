package wifi

// An AccessPoint terminates the uplink. It keeps one received byte and frame
// total per station, the equivalent of one sink per station.
type AccessPoint struct {
	name string

	cwMin int
	cwMax int

	rxBytes  []uint64
	rxFrames []uint64
}

// NewAccessPoint creates an access point serving nStations stations. cwMin
// and cwMax bound the backoff the AP performs before opening a multi user
// round.
func NewAccessPoint(name string, nStations, cwMin, cwMax int) *AccessPoint {
	ap := new(AccessPoint)
	ap.name = name
	ap.cwMin = cwMin
	ap.cwMax = cwMax
	ap.rxBytes = make([]uint64, nStations)
	ap.rxFrames = make([]uint64, nStations)

	return ap
}

// Name returns the name of the access point.
func (ap *AccessPoint) Name() string {
	return ap.name
}

// CwMin returns the AP side contention window lower bound.
func (ap *AccessPoint) CwMin() int {
	return ap.cwMin
}

// CwMax returns the AP side contention window upper bound.
func (ap *AccessPoint) CwMax() int {
	return ap.cwMax
}

func (ap *AccessPoint) receive(f *Frame) {
	ap.rxBytes[f.Station] += uint64(f.Payload)
	ap.rxFrames[f.Station]++
}

// TotalRx returns the payload bytes received from the given station.
func (ap *AccessPoint) TotalRx(station int) uint64 {
	return ap.rxBytes[station]
}

// TotalRxFrames returns the number of frames received from the given
// station.
func (ap *AccessPoint) TotalRxFrames(station int) uint64 {
	return ap.rxFrames[station]
}
