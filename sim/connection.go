package sim

// SendError marks a failed send or receive.
type SendError struct{}

// NewSendError creates a SendError.
func NewSendError() *SendError {
	return &SendError{}
}

// A Connection is responsible for delivering messages to their destinations.
type Connection interface {
	Named
	Hookable

	// PlugIn connects a port to the connection. The sourceSideBufSize decides
	// how many in-flight messages the connection can hold for the port.
	PlugIn(port Port)

	// Unplug detaches a port from the connection.
	Unplug(port Port)

	// NotifyAvailable is called by a port to notify the connection that the
	// port can receive messages again.
	NotifyAvailable(port Port)

	// NotifySend is called by a port to notify the connection that there are
	// messages waiting in the port's outgoing buffer.
	NotifySend()
}
