// Package telemetry defines the normalized telemetry sample and the
// normalizer that produces it from raw inbound datagrams.
//
// The inbound format is a flat JSON object with optional numeric fields
// (altitude, airspeed, battery_voltage). The normalizer tolerates missing
// fields and numeric strings but rejects everything else as malformed.
// Malformed input is reported, never fatal: the caller drops the message
// and keeps processing.
package telemetry
