package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSender struct {
	calls int
	err   error
}

func (f *fakeSender) SendPushNotification(userID, title, body string, data map[string]string) error {
	f.calls++
	return f.err
}

func TestMultiSender_AllAttempted(t *testing.T) {
	a := &fakeSender{}
	b := &fakeSender{}
	m := NewMultiSender(a, b)

	err := m.SendPushNotification("u1", "title", "body", nil)

	assert.NoError(t, err)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestMultiSender_FailureDoesNotShadowOthers(t *testing.T) {
	boom := errors.New("transport down")
	a := &fakeSender{err: boom}
	b := &fakeSender{}
	m := NewMultiSender(a, b)

	err := m.SendPushNotification("u1", "title", "body", nil)

	assert.ErrorIs(t, err, boom, "first error is reported")
	assert.Equal(t, 1, b.calls, "second transport still attempted")
}

func TestMultiSender_Empty(t *testing.T) {
	m := NewMultiSender()
	assert.NoError(t, m.SendPushNotification("u1", "t", "b", nil))
}
