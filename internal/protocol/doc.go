// Package protocol owns the injection wire contract and parsing primitives.
//
// Ownership boundary:
// - length-prefixed framing (frame)
// - InjectionMessage schema and its protobuf body encoding
// - byte packing for int64 vector payloads (pack)
// - value-type dispatch onto the payload fields (value)
// - per-kind field conventions (schema)
package protocol
