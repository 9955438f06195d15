package handler

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadilmartias/jobmarket/internal/model"
)

func TestSeqWindowAdmitsLowerSeqCommittedLater(t *testing.T) {
	w := newSeqWindow(5, 8)

	assert.True(t, w.admit(11))
	assert.True(t, w.admit(10), "lower seq published after a higher one")
	assert.False(t, w.admit(11), "duplicate")
	assert.False(t, w.admit(10), "duplicate")
	assert.False(t, w.admit(5), "at cursor")
	assert.False(t, w.admit(3), "below cursor")
	assert.True(t, w.admit(12))
}

func TestSeqWindowStaysBounded(t *testing.T) {
	w := newSeqWindow(0, 4)
	for seq := uint64(1); seq <= 20; seq++ {
		require.True(t, w.admit(seq))
	}
	assert.Len(t, w.seen, 4)
	assert.Len(t, w.order, 4)
	assert.False(t, w.admit(20))
}

func TestWriteEventFraming(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, writeEvent(w, model.SessionEvent{Seq: 42, Kind: model.EventSessionClaimed}))

	out := buf.String()
	assert.Contains(t, out, "id: 42\nevent: SessionClaimed\ndata: {")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n\n")))
}
