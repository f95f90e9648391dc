package errors

// Error codes for the fan-out contracts. Keep stable; used across adapters and the core.
const (
	ErrCodeInvalidBinding      = "productevents.invalid_binding"
	ErrCodeInvalidEnvelope     = "productevents.invalid_envelope"
	ErrCodeMalformedAggregate  = "productevents.malformed_aggregate"
	ErrCodeSerializationFailed = "productevents.serialization_failed"
	ErrCodePublishFailed       = "productevents.publish_failed"
	ErrCodeDeliveryFailed      = "productevents.delivery_failed"
	ErrCodePublisherClosed     = "productevents.publisher_closed"
)

// Code returns an error value that carries only a code string.
// It implements error by returning the code string in Error().
func Code(code string) error { return codedError(code) }

type codedError string

func (e codedError) Error() string { return string(e) }

var (
	ErrInvalidBinding      = Code(ErrCodeInvalidBinding)
	ErrInvalidEnvelope     = Code(ErrCodeInvalidEnvelope)
	ErrMalformedAggregate  = Code(ErrCodeMalformedAggregate)
	ErrSerializationFailed = Code(ErrCodeSerializationFailed)
	ErrPublishFailed       = Code(ErrCodePublishFailed)
	ErrDeliveryFailed      = Code(ErrCodeDeliveryFailed)
	ErrPublisherClosed     = Code(ErrCodePublisherClosed)
)
