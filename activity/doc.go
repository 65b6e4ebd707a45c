// Package activity provides default persistence for the go-avatars
// ActivitySink. The Repository implements both the sink (writes) and the
// ActivityRepository read-side contract so transports can log avatar events
// and later query them for dashboards. Host applications can swap the
// repository if they prefer a different storage engine.
package activity
