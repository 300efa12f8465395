package satellite

import (
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/satellite/internal/protocol"
)

type announcementPlayer interface {
	PlayAnnouncement(preannounce, media string, onCompletion func())
	StopTTS()
}

type announcementHooks struct {
	send    func(protocol.Message)
	post    func(fn func())
	changed func()
	ended   func(startConversation bool)
}

// Announcement plays media pushed by the hub and acknowledges it when done.
// Like Pipeline it only runs on the event loop.
type Announcement struct {
	player announcementPlayer
	hooks  announcementHooks
	logger *zap.Logger

	responding bool
	playback   int
}

func newAnnouncement(player announcementPlayer, hooks announcementHooks, logger *zap.Logger) *Announcement {
	return &Announcement{
		player: player,
		hooks:  hooks,
		logger: logger.With(zap.String("component", "announcement")),
	}
}

func (a *Announcement) Responding() bool {
	return a.responding
}

// Announce plays preannounce (if any) then media. Once played the
// announcement stops itself and reports startConversation.
func (a *Announcement) Announce(media, preannounce string, startConversation bool) {
	a.logger.Info("Announcing",
		zap.String("media", media),
		zap.String("preannounce", preannounce),
		zap.Bool("start_conversation", startConversation))

	a.responding = true
	a.playback++
	gen := a.playback
	a.hooks.changed()

	a.player.PlayAnnouncement(preannounce, media, func() {
		a.hooks.post(func() {
			if gen != a.playback || !a.responding {
				return
			}
			a.Stop()
			a.hooks.ended(startConversation)
		})
	})
}

// Stop interrupts playback and acknowledges the announcement. It does
// nothing unless an announcement is playing. The owner publishes the
// resulting state.
func (a *Announcement) Stop() {
	a.stop(true)
}

// Abort is Stop without the acknowledgement.
func (a *Announcement) Abort() {
	a.stop(false)
}

func (a *Announcement) stop(notify bool) {
	if !a.responding {
		return
	}
	a.player.StopTTS()
	a.responding = false
	a.playback++
	if notify {
		a.hooks.send(protocol.VoiceAssistantAnnounceFinished{})
	}
}
