package cover

// Service is the actuation call a cover without position support
// understands.
type Service string

const (
	ServiceOpen  Service = "open_cover"
	ServiceClose Service = "close_cover"
	ServiceNone  Service = ""
)

// Command is the device-facing form of a calculated position. Value is
// the percentage to send to position-capable devices; Service is the
// open/close decision for devices without position support.
type Command struct {
	Value   float64
	Service Service
}

// MakeCommand maps a calculated position onto the device's capabilities.
//
// When inverse is set the value is flipped (100 - value) before anything
// else. For open/close-only devices the threshold comparison runs on the
// already-inverted value; swapping that order would flip the decision
// for inverted devices, so it must not change.
func MakeCommand(value float64, inverse, positionCapable bool, threshold float64) Command {
	sent := value
	if inverse {
		sent = 100 - value
	}

	if positionCapable {
		return Command{Value: sent, Service: ServiceNone}
	}

	if sent >= threshold {
		return Command{Value: sent, Service: ServiceOpen}
	}
	return Command{Value: sent, Service: ServiceClose}
}
