package meta

var (
	Name               = "greeter"
	Version            = "development"
	TelemetryNamespace = Name
	EnvironPrefix      = "GREETER"
)
