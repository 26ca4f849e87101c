// internal/table/modulens.go
package table

import "github.com/tamzrod/isystem-bridge/internal/codec"

// ModelModulensO is the De Dietrich Modulens-O controller.
const ModelModulensO = "modulens-o"

// ForModel builds the address table of a supported boiler model.
func ForModel(model string) (*Table, error) {
	switch model {
	case ModelModulensO:
		return New(modulensReads(), modulensWrites(), modulensRanges())
	default:
		return nil, ErrUnknownModel
	}
}

func modulensRanges() []Range {
	return []Range{
		{Address: 231, Count: 3},
		{Address: 507, Count: 4},
		{Address: 600, Count: 21},
		{Address: 637, Count: 24},
		{Address: 721, Count: 4},
	}
}

func zoneMode(zone string, addr uint16) ReadTag {
	return MultiTag(addr,
		Topic(zone+"/mode", codec.DerogBit),
		Topic(zone+"/mode-raw", codec.Unit),
		Topic(zone+"/mode-simple", codec.DerogBitSimple),
	)
}

func modulensReads() []ReadTag {
	tenth, unit := codec.Tenth, codec.Unit

	return []ReadTag{
		Tag(7, "outside/temperature", tenth),
		Tag(8, "boiler/summer-setpoint", tenth),
		Tag(9, "outside/antifreeze", tenth),
		Tag(11, "boiler/pump-postrun", unit),

		Tag(14, "zone-a/day-target-temperature", tenth),
		Tag(15, "zone-a/night-target-temperature", tenth),
		Tag(16, "zone-a/antifreeze-target-temperature", tenth),
		zoneMode("zone-a", 17),
		Tag(18, "zone-a/temperature", tenth),
		Tag(19, "zone-a/sensor-influence", unit),
		Tag(20, "zone-a/curve", tenth),
		Tag(21, "zone-a/calculated-temperature", tenth),

		Tag(23, "zone-b/day-target-temperature", tenth),
		Tag(24, "zone-b/night-target-temperature", tenth),
		Tag(25, "zone-b/antifreeze-target-temperature", tenth),
		zoneMode("zone-b", 26),
		Tag(27, "zone-b/temperature", tenth),
		Tag(28, "zone-b/sensor-influence", unit),
		Tag(29, "zone-b/curve", tenth),
		Tag(31, "zone-b/water-max-temperatur", tenth),
		Tag(32, "zone-b/calculated-temperature", tenth),
		Tag(33, "zone-b/water-temperature", tenth),

		Tag(35, "zone-c/day-target-temperature", tenth),
		Tag(36, "zone-c/night-target-temperature", tenth),
		Tag(37, "zone-c/antifreeze-target-temperature", tenth),
		zoneMode("zone-c", 38),
		Tag(39, "zone-c/temperature", tenth),
		Tag(40, "zone-c/sensor-influence", unit),
		Tag(41, "zone-c/curve", tenth),
		Tag(43, "zone-c/water-max-temperatur", tenth),
		Tag(44, "zone-c/calculated-temperature", tenth),
		Tag(45, "zone-c/water-temperature", tenth),

		Tag(59, "dhw/target-temperature", tenth),
		Tag(61, "dhw/pump-postrun", unit),
		Tag(62, "dhw/temperature", tenth),

		Tag(74, "boiler/calculated-temperature", tenth),
		Tag(75, "boiler/temperature", tenth),
		Tag(102, "outside/mean-temperature", tenth),
		Tag(117, "boiler/temperature", tenth),

		WideTag(126, "zone-a/schedule", codec.WeekSchedule, codec.ScheduleWidth),
		WideTag(147, "zone-b/schedule", codec.WeekSchedule, codec.ScheduleWidth),
		WideTag(168, "zone-c/schedule", codec.WeekSchedule, codec.ScheduleWidth),
		WideTag(189, "dhw/schedule", codec.WeekSchedule, codec.ScheduleWidth),

		Tag(231, "zone-a/program", unit),
		Tag(232, "zone-b/program", unit),
		Tag(233, "zone-c/program", unit),

		WideTag(507, "boiler/start-count", codec.UnitAndTen, 2),
		WideTag(509, "boiler/hours-count", codec.UnitAndTen, 2),

		Tag(601, "outside/temperature", tenth),
		Tag(602, "boiler/temperature", tenth),
		Tag(607, "boiler/return-temperature", tenth),
		Tag(610, "boiler/pressure", tenth),
		Tag(614, "zone-a/temperature", tenth),
		Tag(615, "zone-a/calculated-temperature", tenth),
		Tag(620, "boiler/calculated-temperature", tenth),

		Tag(637, "zone-a/active-mode", codec.ActiveMode),
		Tag(638, "zone-b/active-mode", codec.ActiveMode),
		Tag(644, "boiler/active-mode", codec.BoilerMode),
		Tag(650, "zone-a/day-target-temperature", tenth),
		Tag(651, "zone-a/night-target-temperature", tenth),
		Tag(652, "zone-a/antifreeze-target-temperature", tenth),
		zoneMode("zone-a", 653),
		Tag(654, "zone-a/sensor-influence", unit),
		Tag(655, "zone-a/curve", tenth),
		Tag(656, "zone-b/day-target-temperature", tenth),
		Tag(657, "zone-b/night-target-temperature", tenth),
		Tag(658, "zone-b/antifreeze-target-temperature", tenth),
		zoneMode("zone-b", 659),

		Tag(721, "zone-a/antifreeze-duration", unit),
		Tag(724, "zone-b/antifreeze-duration", unit),
	}
}

// Writing 721 (zone-a antifreeze duration) is ignored by the boiler;
// zone-a uses register 13 instead.
func modulensWrites() []WriteTag {
	return []WriteTag{
		Write("zone-a/antifreeze-duration/SET", 13, codec.WriteUnit),
		Write("zone-a/program/SET", 231, codec.WriteUnit),
		Write("zone-a/mode-simple/SET", 653, codec.WriteDerogBitSimple),
		Write("zone-a/mode-raw/SET", 653, codec.WriteUnit),
		Write("zone-a/day-target-temperature/SET", 650, codec.WriteTenth),
		Write("zone-a/night-target-temperature/SET", 651, codec.WriteTenth),

		Write("zone-b/program/SET", 232, codec.WriteUnit),
		Write("zone-b/mode-simple/SET", 659, codec.WriteDerogBitSimple),
		Write("zone-b/mode-raw/SET", 659, codec.WriteUnit),
		Write("zone-b/antifreeze-duration/SET", 724, codec.WriteUnit),
		Write("zone-b/day-target-temperature/SET", 656, codec.WriteTenth),
		Write("zone-b/night-target-temperature/SET", 657, codec.WriteTenth),
	}
}
