package logfields

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHelpersUseCanonicalKeys(t *testing.T) {
	cases := []struct {
		attr slog.Attr
		key  string
	}{
		{Src("content/a.md"), KeySrc},
		{Dst("_site/a"), KeyDst},
		{Frame("content/_frame.html"), KeyFrame},
		{Role("page_markdown"), KeyRole},
		{Path("content"), KeyPath},
		{Op("CREATE"), KeyOp},
		{Runner("pcss"), KeyRunner},
		{BuildID("abc"), KeyBuildID},
		{Duration(time.Second), KeyDurationMS},
		{Error(errors.New("x")), KeyError},
	}
	for _, c := range cases {
		assert.Equal(t, c.key, c.attr.Key)
	}
}

func TestDurationInMilliseconds(t *testing.T) {
	assert.InDelta(t, 1500.0, Duration(1500*time.Millisecond).Value.Float64(), 0.001)
}

func TestErrorNil(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
}

func TestAttrsRenderInTextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("Processed file", Src("content/a.md"), Dst("_site/a"))
	assert.Contains(t, buf.String(), "src=content/a.md dst=_site/a")
}
