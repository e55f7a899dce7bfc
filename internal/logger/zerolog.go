package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// componentField is the key every record carries so a mixed stream from the
// manager, the scheduler, and the file store stays attributable.
const componentField = "component"

// ZerologAdapter implements Logger on top of zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerolog builds an adapter emitting timestamped JSON records to writer.
func NewZerolog(writer io.Writer, level zerolog.Level) *ZerologAdapter {
	l := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &ZerologAdapter{logger: l}
}

// NewConsoleLogger emits human-readable records to stderr, keeping stdout
// free for the hosting desktop process.
func NewConsoleLogger(level zerolog.Level) *ZerologAdapter {
	return NewZerolog(zerolog.ConsoleWriter{Out: os.Stderr}, level)
}

// Nop returns a logger that discards everything, for tests and optional wiring.
func Nop() *ZerologAdapter {
	return &ZerologAdapter{logger: zerolog.Nop()}
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	z.emit(z.logger.Info(), component, message, fields)
}

func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	z.emit(z.logger.Error().Err(err), component, "operation failed", fields)
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	z.emit(z.logger.Warn(), component, message, fields)
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	z.emit(z.logger.Debug(), component, message, fields)
}

func (z *ZerologAdapter) emit(event *zerolog.Event, component, message string, fields map[string]interface{}) {
	event = event.Str(componentField, component)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}
