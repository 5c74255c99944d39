package config

import "time"

type HTTP struct {
	ListenAddress       string        `env:"HTTP_LISTEN_ADDRESS" envDefault:":8080"`
	ProbeListenAddress  string        `env:"PROBE_LISTEN_ADDRESS" envDefault:":8091"`
	MetricListenAddress string        `env:"METRIC_LISTEN_ADDRESS" envDefault:":8092"`
	ShutdownTimeout     time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ReadHeaderTimeout   time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`

	// LogBodies enables full request/response dumping, debug only.
	LogBodies      bool `env:"HTTP_LOG_BODIES" envDefault:"false"`
	LogFieldMaxLen int  `env:"HTTP_LOG_FIELD_MAX_LEN" envDefault:"2048"`
}
