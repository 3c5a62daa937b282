//go:build !linux && !darwin

package notify

// NewPlatformNotifier returns a no-op sink on platforms without a
// supported desktop notification command.
func NewPlatformNotifier(bool) Sink {
	return SinkFunc(func(Notification) {})
}
