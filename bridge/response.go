package bridge

import "github.com/sarchlab/bridgesim/bus"

// RouteResponse delivers a completed target response to the served
// master. Every other master receives the zero response for the cycle.
// served must be a valid master index; the response is never handed to
// a master other than the one the transaction was latched for.
func RouteResponse(resp bus.Response, served, masterCount int) []bus.Response {
	out := make([]bus.Response, masterCount)
	out[served] = resp
	return out
}
