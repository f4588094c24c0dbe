package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

var bufferPool = buffer.NewPool()

// Everforest Dark palette
var palette = struct {
	fg       string
	green    string
	greenMid string
	aqua     string
	orange   string
	yellow   string
	red      string
	redBg    string
	yellowBg string
}{
	fg:       "\x1b[38;5;223m", // Soft beige (#d3c6aa)
	green:    "\x1b[38;5;108m", // Bright green (#a7c080)
	greenMid: "\x1b[38;5;107m", // Mid green (#83c092)
	aqua:     "\x1b[38;5;109m", // Blue-green (#7fbbb3)
	orange:   "\x1b[38;5;208m", // Warm orange (#e69875)
	yellow:   "\x1b[38;5;179m", // Soft yellow (#dbbc7f)
	red:      "\x1b[38;5;167m", // Warm red (#e67e80)
	redBg:    "\x1b[48;5;52m",
	yellowBg: "\x1b[48;5;58m",
}

// minimalEncoder implements a calm, compact console encoder.
// Format: "13:04:35  sync  Domain uploaded  account en,ko (42 rows)"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for field serialization
	color           bool

	// context fields added through Logger.With
	context []zapcore.Field
}

func newMinimalEncoder(color bool) *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		color:   color,
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		color:   enc.color,
		context: append([]zapcore.Field(nil), enc.context...),
	}
}

// The Add* overrides capture the scalar field types With produces, so
// EncodeEntry can render them alongside the per-entry fields.

func (enc *minimalEncoder) AddString(key, value string) {
	enc.context = append(enc.context, zap.String(key, value))
}

func (enc *minimalEncoder) AddInt64(key string, value int64) {
	enc.context = append(enc.context, zap.Int64(key, value))
}

func (enc *minimalEncoder) AddBool(key string, value bool) {
	enc.context = append(enc.context, zap.Bool(key, value))
}

func (enc *minimalEncoder) AddReflected(key string, value interface{}) error {
	enc.context = append(enc.context, zap.Any(key, value))
	return nil
}

// paint wraps s in color when colors are enabled
func (enc *minimalEncoder) paint(color, s string) string {
	if !enc.color || s == "" {
		return s
	}
	return color + s + colorReset
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := bufferPool.Get()

	final.AppendString(enc.paint(palette.greenMid, ent.Time.Format("15:04:05")))

	// Level: only show for non-info levels
	if lvl := enc.levelString(ent.Level); lvl != "" {
		final.AppendString("  ")
		final.AppendString(lvl)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(enc.paint(palette.orange, ent.LoggerName))
	}

	final.AppendString("  ")
	final.AppendString(enc.paint(palette.fg, ent.Message))

	if len(enc.context) > 0 {
		fields = append(append([]zapcore.Field(nil), enc.context...), fields...)
	}
	if len(fields) > 0 {
		if values := enc.extractFieldValues(fields); values != "" {
			final.AppendString("  ")
			final.AppendString(values)
		}
	}

	final.AppendString("\n")
	return final, nil
}

func (enc *minimalEncoder) levelString(level zapcore.Level) string {
	switch level {
	case zapcore.InfoLevel:
		return ""
	case zapcore.DebugLevel:
		return enc.paint(palette.aqua, "DEBUG")
	case zapcore.WarnLevel:
		if !enc.color {
			return "WARN"
		}
		return colorBold + palette.yellowBg + palette.yellow + "WARN" + colorReset
	default:
		if !enc.color {
			return level.CapitalString()
		}
		return colorBold + palette.redBg + palette.red + level.CapitalString() + colorReset
	}
}

// getFieldValue extracts the value from a zap field, handling different field types
func getFieldValue(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.BoolType:
		if field.Integer == 1 {
			return "true"
		}
		return "false"
	}

	if field.Interface != nil {
		if err, ok := field.Interface.(error); ok {
			return err.Error()
		}
		return fmt.Sprintf("%v", field.Interface)
	}

	return ""
}

// extractFieldValues renders the known fields compactly and the rest as key=value.
// Input:  domain=account locale=en rows=42 duration_ms=120
// Output: "account en (42 rows) 120ms"
func (enc *minimalEncoder) extractFieldValues(fields []zapcore.Field) string {
	var values []string
	var counts []string

	for _, field := range fields {
		val := getFieldValue(field)
		if val == "" {
			continue
		}
		switch field.Key {
		case FieldDomain, FieldLocale, FieldPath, FieldSpreadsheet:
			values = append(values, enc.paint(palette.aqua, val))
		case FieldRows, FieldFiles, FieldCount:
			counts = append(counts, enc.paint(palette.green, val)+" "+field.Key)
		case FieldDurationMS:
			values = append(values, enc.paint(palette.green, val)+"ms")
		case FieldError:
			values = append(values, enc.paint(palette.red, val))
		default:
			values = append(values, field.Key+"="+val)
		}
	}

	if len(counts) > 0 {
		values = append(values, "("+strings.Join(counts, ", ")+")")
	}

	return strings.Join(values, " ")
}
