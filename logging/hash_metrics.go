package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// HashMetrics describes one hash operation for structured logs.
type HashMetrics struct {
	Operation   string        `json:"operation"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	PixelFormat string        `json:"pixel_format"`
	Duration    time.Duration `json:"duration"`
	BorderFound bool          `json:"border_found"`
	HashLen     int           `json:"hash_len"`
}

// MarshalLogObject encodes the metrics with the duration in milliseconds.
func (m HashMetrics) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("operation", m.Operation)
	enc.AddInt("width", m.Width)
	enc.AddInt("height", m.Height)
	enc.AddString("pixel_format", m.PixelFormat)
	enc.AddInt64("duration_ms", m.Duration.Milliseconds())
	enc.AddBool("border_found", m.BorderFound)
	enc.AddInt("hash_len", m.HashLen)
	return nil
}

// HashFields returns m as a nested "hash_op" object.
func HashFields(m HashMetrics) zap.Field {
	return zap.Object("hash_op", m)
}

// DimensionFields returns width, height and pixel_format fields.
func DimensionFields(width, height int, pixelFormat string) []zap.Field {
	return []zap.Field{
		zap.Int("width", width),
		zap.Int("height", height),
		zap.String("pixel_format", pixelFormat),
	}
}

// TimingFields returns start, end and duration fields plus a throughput in images per second.
func TimingFields(start, end time.Time, images int) []zap.Field {
	d := end.Sub(start)
	var rate float64
	if d > 0 {
		rate = float64(images) / d.Seconds()
	}
	return []zap.Field{
		zap.Time("start_time", start),
		zap.Time("end_time", end),
		zap.Duration("duration", d),
		zap.Float64("images_per_second", rate),
	}
}
