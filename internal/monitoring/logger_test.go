package monitoring

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetOutputAndMute(t *testing.T) {
	defer Mute()

	var buf bytes.Buffer
	SetOutput(&buf)
	Log.Info().Msg("redirected")
	if !strings.Contains(buf.String(), "redirected") {
		t.Errorf("log output = %q, want the message present", buf.String())
	}

	Mute()
	buf.Reset()
	Log.Info().Msg("silenced")
	if buf.Len() != 0 {
		t.Errorf("muted logger wrote %q", buf.String())
	}
}
