package errors

// ErrorCode is the stable, machine-readable code carried by AppError
type ErrorCode int

const (
	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001

	// Webhook intake
	ErrorCode_INVALID_PAYLOAD           ErrorCode = 2000
	ErrorCode_WEBHOOK_INVALID_SIGNATURE ErrorCode = 2001
	ErrorCode_CONFIG_MISSING_SECRET     ErrorCode = 2002
	ErrorCode_MISSING_RECORDING_URL     ErrorCode = 2003
	ErrorCode_QUEUE_FULL                ErrorCode = 2004
	ErrorCode_PROCESSING_FAILED         ErrorCode = 2005

	// Integrations
	ErrorCode_INTEGRATION_CACHE_FAILED ErrorCode = 6001
)

var codeNames = map[ErrorCode]string{
	ErrorCode_INTERNAL:                  "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:          "INVALID_ARGUMENT",
	ErrorCode_INVALID_PAYLOAD:           "INVALID_PAYLOAD",
	ErrorCode_WEBHOOK_INVALID_SIGNATURE: "WEBHOOK_INVALID_SIGNATURE",
	ErrorCode_CONFIG_MISSING_SECRET:     "CONFIG_MISSING_SECRET",
	ErrorCode_MISSING_RECORDING_URL:     "MISSING_RECORDING_URL",
	ErrorCode_QUEUE_FULL:                "QUEUE_FULL",
	ErrorCode_PROCESSING_FAILED:         "PROCESSING_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:  "INTEGRATION_CACHE_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
