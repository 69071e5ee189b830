package errors

import "sort"

// Template defines a registered error code.
type Template struct {
	Category   Category
	Message    string
	Suggestion string
}

var registry = map[string]Template{
	// Configuration (E1xx)
	"E101": {
		Category:   CategoryConfig,
		Message:    "Invalid listen address",
		Suggestion: `Use host:port, for example "127.0.0.1:8080" or ":8080".`,
	},
	"E102": {
		Category:   CategoryConfig,
		Message:    "Invalid mount point",
		Suggestion: `The mount ID must be a non-empty element id without spaces or "#", such as "login".`,
	},
	"E103": {
		Category:   CategoryConfig,
		Message:    "Unknown session store",
		Suggestion: `Set session.store to "memory", "redis" or "s3".`,
	},
	"E104": {
		Category:   CategoryConfig,
		Message:    "Missing backend setting",
		Suggestion: "Each enabled backend needs its connection settings (redis.addr, s3.bucket, rabbitmq.url, database.dsn).",
	},
	"E105": {
		Category:   CategoryConfig,
		Message:    "Invalid limit or duration",
		Suggestion: "Timeouts, intervals and limits must be positive.",
	},
	"E106": {
		Category:   CategoryConfig,
		Message:    "Cannot read config file",
		Suggestion: "Check the --config path and the YAML/JSON syntax.",
	},
	"E107": {
		Category:   CategoryConfig,
		Message:    "Invalid log setting",
		Suggestion: `log.level is one of debug, info, warn, error; log.format is "text" or "json".`,
	},
	"E108": {
		Category:   CategoryConfig,
		Message:    "Unknown like recorder",
		Suggestion: `likes.recorders may list "redis", "amqp" and "mysql".`,
	},

	// Mounting and rendering (E2xx)
	"E201": {
		Category:   CategoryMount,
		Message:    "Mount point not found",
		Suggestion: "The page must contain an element whose id matches the configured mount point.",
	},
	"E202": {
		Category: CategoryMount,
		Message:  "Page render failed",
	},

	// Protocol (E3xx)
	"E301": {
		Category:   CategoryProtocol,
		Message:    "Protocol version mismatch",
		Suggestion: "Reload the page to fetch a client that matches the server.",
	},
	"E302": {
		Category: CategoryProtocol,
		Message:  "Malformed handshake",
	},

	// CLI and backends (E4xx)
	"E401": {
		Category: CategoryCLI,
		Message:  "Server failed",
	},
	"E402": {
		Category:   CategoryBackend,
		Message:    "Backend connection failed",
		Suggestion: "Make sure the service is reachable from this host and the credentials are correct.",
	},
	"E403": {
		Category:   CategoryCLI,
		Message:    "Invalid command usage",
		Suggestion: "Run the command with --help to see its flags and arguments.",
	},
}

// GetTemplate returns the template registered for code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered codes in order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
