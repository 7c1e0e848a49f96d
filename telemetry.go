package gaugelink

import (
	"github.com/calebmah/gaugelink/obd"
)

// Channel slots in a telemetry packet. The slot order is the wire order:
// transmitter and receiver must be built from the same schema.
const (
	ChanRPM = iota
	ChanVehicleSpeed
	ChanEngineLoad
	ChanThrottlePos
	ChanCoolantTemp
	ChanIntakeTemp
	ChanShortFuelTrim
	ChanLongFuelTrim
	ChanAFR
	ChanWidebandVoltage

	ChannelCount
)

var channelNames = [ChannelCount]string{
	ChanRPM:             "rpm",
	ChanVehicleSpeed:    "vehicleSpeed",
	ChanEngineLoad:      "engineLoad",
	ChanThrottlePos:     "throttlePos",
	ChanCoolantTemp:     "coolantTemp",
	ChanIntakeTemp:      "intakeTemp",
	ChanShortFuelTrim:   "shortFuelTrim",
	ChanLongFuelTrim:    "longFuelTrim",
	ChanAFR:             "afr",
	ChanWidebandVoltage: "widebandVoltage",
}

// ChannelPIDs binds each slot to the PID queried for it.
var ChannelPIDs = [ChannelCount]byte{
	ChanRPM:             obd.PIDRPM,
	ChanVehicleSpeed:    obd.PIDVehicleSpeed,
	ChanEngineLoad:      obd.PIDEngineLoad,
	ChanThrottlePos:     obd.PIDThrottlePos,
	ChanCoolantTemp:     obd.PIDCoolantTemp,
	ChanIntakeTemp:      obd.PIDIntakeTemp,
	ChanShortFuelTrim:   obd.PIDShortFuelTrim,
	ChanLongFuelTrim:    obd.PIDLongFuelTrim,
	ChanAFR:             obd.PIDAFR,
	ChanWidebandVoltage: obd.PIDWidebandVoltage,
}

func ChannelName(slot int) string {
	if slot < 0 || slot >= ChannelCount {
		return "unknown"
	}
	return channelNames[slot]
}

// Packet is one snapshot of all channel values. Timestamp is milliseconds
// since the transmitter started; Sequence starts at 1 and increments once
// per packet. Field order and widths are the wire layout, which must match
// exactly on both ends.
type Packet struct {
	Values    [ChannelCount]float32
	Timestamp uint32
	Sequence  uint32
}
