package satellite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika/satellite/internal/protocol"
)

type fakeAnnouncer struct {
	played     [][2]string
	completion func()
	stops      int
}

func (f *fakeAnnouncer) PlayAnnouncement(preannounce, media string, onCompletion func()) {
	f.played = append(f.played, [2]string{preannounce, media})
	f.completion = onCompletion
}

func (f *fakeAnnouncer) StopTTS() { f.stops++ }

func newTestAnnouncement(t *testing.T, player *fakeAnnouncer) (*Announcement, *[]protocol.Message, *[]bool) {
	var sent []protocol.Message
	var ended []bool
	a := newAnnouncement(player, announcementHooks{
		send:    func(msg protocol.Message) { sent = append(sent, msg) },
		post:    func(fn func()) { fn() },
		changed: func() {},
		ended:   func(start bool) { ended = append(ended, start) },
	}, zaptest.NewLogger(t))
	return a, &sent, &ended
}

func TestAnnouncementCompletes(t *testing.T) {
	player := &fakeAnnouncer{}
	a, sent, ended := newTestAnnouncement(t, player)

	a.Announce("http://hub/media.mp3", "http://hub/chime.mp3", true)
	assert.True(t, a.Responding())
	assert.Equal(t, [][2]string{{"http://hub/chime.mp3", "http://hub/media.mp3"}}, player.played)

	player.completion()

	assert.False(t, a.Responding())
	assert.Equal(t, []protocol.Message{protocol.VoiceAssistantAnnounceFinished{}}, *sent)
	assert.Equal(t, []bool{true}, *ended)

	player.completion()
	assert.Len(t, *sent, 1)
}

func TestAnnouncementStop(t *testing.T) {
	player := &fakeAnnouncer{}
	a, sent, ended := newTestAnnouncement(t, player)

	a.Stop()
	assert.Empty(t, *sent, "nothing to stop")
	assert.Zero(t, player.stops)

	a.Announce("http://hub/media.mp3", "", false)
	first := player.completion
	a.Stop()
	a.Stop()
	first()

	assert.Equal(t, []protocol.Message{protocol.VoiceAssistantAnnounceFinished{}}, *sent)
	assert.Equal(t, 1, player.stops)
	assert.Empty(t, *ended)
}

func TestAnnouncementAbort(t *testing.T) {
	player := &fakeAnnouncer{}
	a, sent, _ := newTestAnnouncement(t, player)

	a.Announce("http://hub/media.mp3", "", false)
	a.Abort()

	assert.False(t, a.Responding())
	assert.Empty(t, *sent)
	assert.Equal(t, 1, player.stops)
}
