// Package breathing implements the breathing exercise of the home page.
//
// A Controller flips between inhale and exhale every TickInterval while it is
// active. The view animates each flip over TransitionDuration, twice the tick,
// so the circle is always mid-transition and the rhythm reads as a continuous
// expand and contract.
//
// Each active Controller owns exactly one ticker and one goroutine. Stop and
// Close cancel them synchronously: once either returns, the phase never
// changes again until the next Start.
//
// A Registry holds one Controller per mounted page and unmounts pages whose
// client has gone quiet.
package breathing
