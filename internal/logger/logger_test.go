package logger

import (
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]logging.Level{
		"debug":   logging.DEBUG,
		" INFO ":  logging.INFO,
		"warning": logging.WARNING,
		"error":   logging.ERROR,
		"":        logging.INFO,
		"loud":    logging.INFO,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}
