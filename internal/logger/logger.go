// Package logger is the structured logging layer of the memo core. All
// packages log through the Logger interface; the zerolog adapter behind it is
// chosen once in the binary.
package logger

// Logger provides structured logging with a component tag.
type Logger interface {
	Info(component string, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
	Warning(component string, message string, fields map[string]interface{})
	Debug(component string, message string, fields map[string]interface{})
}
