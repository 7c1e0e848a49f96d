package obd

import (
	"github.com/pkg/errors"
)

// Mode-01 PIDs sampled by this project, plus the vendor PID the wideband
// controller answers on.
const (
	PIDEngineLoad      byte = 0x04
	PIDCoolantTemp     byte = 0x05
	PIDShortFuelTrim   byte = 0x06
	PIDLongFuelTrim    byte = 0x07
	PIDRPM             byte = 0x0C
	PIDVehicleSpeed    byte = 0x0D
	PIDIntakeTemp      byte = 0x0F
	PIDThrottlePos     byte = 0x11
	PIDAFR             byte = 0x34
	PIDWidebandVoltage byte = 0xA4
)

var ErrUnsupportedPID = errors.New("unsupported PID")

type decodeFn func(a, b byte) float64

// decoders is indexed directly by PID; the channel set is small and fixed
// so the whole table lives in one array. a and b are bytes 3 and 4 of the
// response frame.
var decoders [256]decodeFn

func init() {
	decoders[PIDRPM] = func(a, b byte) float64 { return (float64(a)*256 + float64(b)) / 4 }
	decoders[PIDVehicleSpeed] = func(a, _ byte) float64 { return float64(a) }
	decoders[PIDEngineLoad] = percent
	decoders[PIDThrottlePos] = percent
	decoders[PIDCoolantTemp] = temperature
	decoders[PIDIntakeTemp] = temperature
	decoders[PIDShortFuelTrim] = fuelTrim
	decoders[PIDLongFuelTrim] = fuelTrim
	decoders[PIDAFR] = func(a, b byte) float64 { return (float64(a)*256 + float64(b)) / 32768 * 14.7 }
	decoders[PIDWidebandVoltage] = func(a, b byte) float64 { return (float64(a)*256 + float64(b)) / 20000 }
}

func percent(a, _ byte) float64 {
	return float64(a) / 2.55
}

func temperature(a, _ byte) float64 {
	return float64(a) - 40
}

func fuelTrim(a, _ byte) float64 {
	return (float64(a) - 128) * 100 / 128
}

// Supported reports whether pid has a decode formula.
func Supported(pid byte) bool {
	return decoders[pid] != nil
}

// Decode converts the payload of a positive mode-01 response frame
// [len, 0x41, pid, A, B, ...] for pid into its physical value.
func Decode(pid byte, data [8]byte) (float64, error) {
	fn := decoders[pid]
	if fn == nil {
		return 0, errors.Wrapf(ErrUnsupportedPID, "pid 0x%02X", pid)
	}
	return fn(data[3], data[4]), nil
}
