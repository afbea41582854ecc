// Package event routes asynchronous MT frames to handlers and lets callers
// wait for traffic.
//
// A Router maps each indication kind to at most one handler; kinds without a
// handler go to the fallback, which does nothing unless set. A Pump drains a
// link's event channel on its own goroutine, dispatches each frame and only
// then signals that traffic was observed, so a waiter woken by WaitAsync
// always sees the effects of the frame that woke it.
package event
