package matchlog

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers, kept in sync with matchlog.proto.
const (
	fieldMatchSource = protowire.Number(1)
	fieldMatchRounds = protowire.Number(2)

	fieldSourceVideoFile = protowire.Number(1)

	fieldVideoFilePath  = protowire.Number(1)
	fieldVideoFileStart = protowire.Number(2)

	fieldRoundIndex  = protowire.Number(1)
	fieldRoundFrames = protowire.Number(2)

	fieldFrameNumber    = protowire.Number(1)
	fieldFrameTimestamp = protowire.Number(2)
	fieldFramePlayer1   = protowire.Number(3)
	fieldFramePlayer2   = protowire.Number(4)

	fieldPlayerHealth  = protowire.Number(1)
	fieldPlayerSA      = protowire.Number(2)
	fieldPlayerOD      = protowire.Number(3)
	fieldPlayerBurnout = protowire.Number(4)
)

// Marshal encodes the match in protobuf wire form. Fields are emitted in
// ascending field number order and empty submessages are omitted, so equal
// matches produce identical bytes.
func (m *Match) Marshal() []byte {
	var b []byte
	if src := appendVideoFile(nil, &m.Source); len(src) > 0 {
		b = appendBytesField(b, fieldMatchSource, appendBytesField(nil, fieldSourceVideoFile, src))
	}
	for i := range m.Rounds {
		b = appendBytesField(b, fieldMatchRounds, appendRound(nil, &m.Rounds[i]))
	}
	return b
}

func appendVideoFile(b []byte, v *VideoFile) []byte {
	if v.FilePath != "" {
		b = protowire.AppendTag(b, fieldVideoFilePath, protowire.BytesType)
		b = protowire.AppendString(b, v.FilePath)
	}
	if v.StartSeconds != 0 {
		b = appendDoubleField(b, fieldVideoFileStart, v.StartSeconds)
	}
	return b
}

func appendRound(b []byte, r *Round) []byte {
	if r.RoundIndex > 0 {
		b = protowire.AppendTag(b, fieldRoundIndex, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.RoundIndex))
	}
	for i := range r.Frames {
		b = appendBytesField(b, fieldRoundFrames, appendFrame(nil, &r.Frames[i]))
	}
	return b
}

func appendFrame(b []byte, f *FrameData) []byte {
	if f.FrameNumber != 0 {
		b = protowire.AppendTag(b, fieldFrameNumber, protowire.VarintType)
		b = protowire.AppendVarint(b, f.FrameNumber)
	}
	if f.TimestampSeconds != 0 {
		b = appendDoubleField(b, fieldFrameTimestamp, f.TimestampSeconds)
	}
	if p1 := appendPlayerState(nil, &f.Player1); len(p1) > 0 {
		b = appendBytesField(b, fieldFramePlayer1, p1)
	}
	if p2 := appendPlayerState(nil, &f.Player2); len(p2) > 0 {
		b = appendBytesField(b, fieldFramePlayer2, p2)
	}
	return b
}

func appendPlayerState(b []byte, p *PlayerState) []byte {
	if p.HealthRatio != 0 {
		b = appendDoubleField(b, fieldPlayerHealth, p.HealthRatio)
	}
	// The optional gauges carry explicit presence: a held pointer is encoded
	// even when the value is zero.
	if p.SAGauge != nil {
		b = appendDoubleField(b, fieldPlayerSA, *p.SAGauge)
	}
	if p.ODGauge != nil {
		b = appendDoubleField(b, fieldPlayerOD, *p.ODGauge)
	}
	if p.BurnoutGauge != nil {
		b = appendDoubleField(b, fieldPlayerBurnout, *p.BurnoutGauge)
	}
	return b
}

func appendBytesField(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendDoubleField(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

// UnmarshalMatch decodes protobuf bytes produced by Marshal. Unknown fields
// are skipped so logs from newer writers still load.
func UnmarshalMatch(data []byte) (*Match, error) {
	m := &Match{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == fieldMatchSource && typ == protowire.BytesType:
			msg, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			if err := unmarshalSource(msg, &m.Source); err != nil {
				return nil, err
			}
			data = data[n:]
		case num == fieldMatchRounds && typ == protowire.BytesType:
			msg, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			var r Round
			if err := unmarshalRound(msg, &r); err != nil {
				return nil, err
			}
			m.Rounds = append(m.Rounds, r)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return m, nil
}

func unmarshalSource(data []byte, v *VideoFile) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == fieldSourceVideoFile && typ == protowire.BytesType:
			msg, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := unmarshalVideoFile(msg, v); err != nil {
				return err
			}
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func unmarshalVideoFile(data []byte, v *VideoFile) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == fieldVideoFilePath && typ == protowire.BytesType:
			s, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.FilePath = string(s)
			data = data[n:]
		case num == fieldVideoFileStart && typ == protowire.Fixed64Type:
			u, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v.StartSeconds = math.Float64frombits(u)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func unmarshalRound(data []byte, r *Round) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == fieldRoundIndex && typ == protowire.VarintType:
			u, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			r.RoundIndex = int(u)
			data = data[n:]
		case num == fieldRoundFrames && typ == protowire.BytesType:
			msg, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			var f FrameData
			if err := unmarshalFrame(msg, &f); err != nil {
				return err
			}
			r.Frames = append(r.Frames, f)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func unmarshalFrame(data []byte, f *FrameData) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == fieldFrameNumber && typ == protowire.VarintType:
			u, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.FrameNumber = u
			data = data[n:]
		case num == fieldFrameTimestamp && typ == protowire.Fixed64Type:
			u, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.TimestampSeconds = math.Float64frombits(u)
			data = data[n:]
		case num == fieldFramePlayer1 && typ == protowire.BytesType:
			msg, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := unmarshalPlayerState(msg, &f.Player1); err != nil {
				return err
			}
			data = data[n:]
		case num == fieldFramePlayer2 && typ == protowire.BytesType:
			msg, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := unmarshalPlayerState(msg, &f.Player2); err != nil {
				return err
			}
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func unmarshalPlayerState(data []byte, p *PlayerState) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		if typ != protowire.Fixed64Type {
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
			continue
		}

		u, n := protowire.ConsumeFixed64(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		v := math.Float64frombits(u)
		data = data[n:]

		switch num {
		case fieldPlayerHealth:
			p.HealthRatio = v
		case fieldPlayerSA:
			p.SAGauge = &v
		case fieldPlayerOD:
			p.ODGauge = &v
		case fieldPlayerBurnout:
			p.BurnoutGauge = &v
		}
	}
	return nil
}
