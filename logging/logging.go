// Package logging wraps the standard log package with leveled helpers,
// following the teacher's direct-wrapper shape rather than adopting a
// third-party structured logger.
package logging

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

func Debugf(format string, v ...interface{}) {
	log.Printf("DEBUG: "+format, v...)
}

func Infof(format string, v ...interface{}) {
	log.Printf("INFO: "+format, v...)
}

func Warnf(format string, v ...interface{}) {
	log.Printf("WARN: "+format, v...)
}

func Errorf(format string, v ...interface{}) {
	log.Printf("ERROR: "+format, v...)
}

// Fields is an ordered bag of key/value context attached to a single log
// line, used by the TGS pipeline to report which principal and error
// code a stage failed on without hand-building format strings at every
// call site.
type Fields map[string]interface{}

func (f Fields) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, f[k]))
	}
	return strings.Join(parts, " ")
}

// Warn logs msg followed by fields rendered as key=value pairs.
func Warn(msg string, fields Fields) {
	Warnf("%s %s", msg, fields)
}

// Error logs msg followed by fields rendered as key=value pairs.
func Error(msg string, fields Fields) {
	Errorf("%s %s", msg, fields)
}
