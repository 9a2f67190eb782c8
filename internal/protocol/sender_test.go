package protocol

import (
	"context"
	"errors"
	"testing"

	"panel-link/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSender_Send(t *testing.T) {
	conf := &recordingConfigurator{}
	tr := &fakeTransport{}
	s := NewSender(conf, dialerFor(map[string]*fakeTransport{"/dev/ttyACM0": tr}), 115200, nil)

	cmd, err := model.VideoSelect("20", 2)
	require.NoError(t, err)
	require.NoError(t, s.Send(context.Background(), "/dev/ttyACM0", cmd))

	require.Len(t, tr.writes, 1)
	assert.Equal(t, `{"id":"20","cmd":"VIDEO_SELECT","args":{"ch":2}}`+"\n", string(tr.writes[0]))
	assert.Equal(t, []string{"/dev/ttyACM0"}, conf.paths)
	assert.True(t, tr.closed)
}

func TestSender_SendRaw(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSender(&recordingConfigurator{}, dialerFor(map[string]*fakeTransport{"/dev/ttyACM0": tr}), 115200, nil)

	require.NoError(t, s.SendRaw(context.Background(), "/dev/ttyACM0", `{"id":"1","cmd":"TEST_BEEP","args":{}}`))
	require.NoError(t, s.SendRaw(context.Background(), "/dev/ttyACM0", "{\"id\":\"2\",\"cmd\":\"TEST_BEEP\",\"args\":{}}\n"))

	require.Len(t, tr.writes, 2)
	assert.Equal(t, "{\"id\":\"1\",\"cmd\":\"TEST_BEEP\",\"args\":{}}\n", string(tr.writes[0]))
	assert.Equal(t, "{\"id\":\"2\",\"cmd\":\"TEST_BEEP\",\"args\":{}}\n", string(tr.writes[1]))
}

func TestSender_Errors(t *testing.T) {
	cmd := model.TestBeep("1")

	s := NewSender(&recordingConfigurator{err: errors.New("not a tty")}, dialerFor(nil), 115200, nil)
	assert.ErrorContains(t, s.Send(context.Background(), "/dev/ttyACM0", cmd), "configure line")

	broken := &fakeTransport{writeErr: errors.New("write failed")}
	s = NewSender(&recordingConfigurator{}, dialerFor(map[string]*fakeTransport{"/dev/ttyACM0": broken}), 115200, nil)
	assert.ErrorContains(t, s.Send(context.Background(), "/dev/ttyACM0", cmd), "write failed")
	assert.True(t, broken.closed)

	bad := model.CommandEnvelope{ID: "1", Cmd: "X", Args: map[string]interface{}{"ch": make(chan int)}}
	assert.Error(t, s.Send(context.Background(), "/dev/ttyACM0", bad))
}
