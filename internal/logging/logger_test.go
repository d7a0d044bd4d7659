package logging

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		driver  string
		want    Logger
		wantErr bool
	}{
		{Noop, &noopLogger{}, false},
		{Stdout, &stdoutLogger{}, false},
		{"syslog", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			logger, err := New(tt.driver, InfluxDBOptions{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, logger)
		})
	}
}

func TestStdoutLogger_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})

	l := NewStdoutLoggerWith(base)
	l.LogProgress(3, 2*time.Second, 1500, time.Millisecond, 2*time.Millisecond, 5*time.Millisecond)
	l.LogSummary("overall", 2000, time.Millisecond, 5*time.Millisecond, 9*time.Millisecond, 12*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, `"msg":"progress"`)
	assert.Contains(t, out, `"worker":3`)
	assert.Contains(t, out, `"recorded":1500`)
	assert.Contains(t, out, `"msg":"summary"`)
	assert.Contains(t, out, `"prefix":"overall"`)
}
