package satellite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriahrh/arunika/satellite/domain/entities"
	"github.com/satriahrh/arunika/satellite/internal/protocol"
)

func TestSatelliteFollowsConnection(t *testing.T) {
	h := newHarness(t, testSettings())
	assert.Equal(t, entities.StateConnected, h.state())

	h.setConnected(false)
	assert.Equal(t, entities.StateDisconnected, h.state())
}

func TestSatelliteClose(t *testing.T) {
	h := newHarness(t, testSettings())
	h.wake("Okay Nabu")

	h.sat.Close()

	assert.Equal(t, entities.StateStopped, h.state())
	assert.False(t, h.input.isStreaming())
	assert.False(t, h.sat.player.Ducked())
}

func TestWakeWordInterceptedDuringSetup(t *testing.T) {
	h := newHarness(t, testSettings())

	h.wake("Okay Nabu")

	assert.Equal(t, entities.StateListening, h.state())
	assert.True(t, h.input.isStreaming())
	sent := h.transport.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Okay Nabu", requireRequest(t, sent[0], true).WakeWordPhrase)

	h.event(protocol.EventRunEnd)

	assert.Equal(t, entities.StateConnected, h.state())
	assert.False(t, h.input.isStreaming())
	assert.Len(t, h.transport.messages(), 1)
}

func TestWakeWordRestartsProcessingPipeline(t *testing.T) {
	h := newHarness(t, testSettings())
	h.wake("Okay Nabu")
	h.event(protocol.EventRunStart)
	h.event(protocol.EventSTTEnd)
	require.Equal(t, entities.StateProcessing, h.state())
	require.False(t, h.input.isStreaming())
	h.transport.clear()

	h.wake("Okay Nabu")

	assert.Equal(t, 1, h.tts.stopCount())
	sent := h.transport.messages()
	require.Len(t, sent, 2)
	requireRequest(t, sent[0], false)
	requireRequest(t, sent[1], true)

	// end of the old run arrives before the new one starts
	h.event(protocol.EventRunEnd)
	h.event(protocol.EventRunStart)

	assert.Equal(t, entities.StateListening, h.state())
	assert.True(t, h.input.isStreaming())
}

func TestDuplicateWakeWhileListeningIsIgnored(t *testing.T) {
	h := newHarness(t, testSettings())
	h.wake("Okay Nabu")
	h.event(protocol.EventRunStart)

	h.wake("Okay Nabu")

	assert.Len(t, h.transport.messages(), 1)
	assert.Equal(t, entities.StateListening, h.state())
}

func TestWakeWordWhileRespondingRestarts(t *testing.T) {
	h := newHarness(t, testSettings())
	h.wake("Okay Nabu")
	h.event(protocol.EventRunStart)
	h.event(protocol.EventTTSStart)
	require.Equal(t, entities.StateResponding, h.state())
	h.transport.clear()

	h.wake("Okay Nabu")

	sent := h.transport.messages()
	require.Len(t, sent, 2)
	assert.IsType(t, protocol.VoiceAssistantAnnounceFinished{}, sent[0])
	requireRequest(t, sent[1], true)
	assert.Equal(t, entities.StateListening, h.state())
}

func TestWakeSoundPlaysBeforePipeline(t *testing.T) {
	settings := testSettings()
	settings.WakeSound = "wake.flac"
	h := newHarness(t, settings)

	h.wake("Okay Nabu")

	assert.Equal(t, [][]string{{"wake.flac"}}, h.tts.playedURLs())
	assert.Empty(t, h.transport.messages())
	assert.True(t, h.sat.player.Ducked())

	h.completeTTS()

	require.Len(t, h.transport.messages(), 1)
	assert.Equal(t, entities.StateListening, h.state())
	assert.True(t, h.sat.player.Ducked(), "media stays ducked into the pipeline")
}

func TestWakeStopsAnnouncementThenStartsPipeline(t *testing.T) {
	settings := testSettings()
	settings.WakeSound = "wake"
	h := newHarness(t, settings)

	h.receive(protocol.VoiceAssistantAnnounceRequest{PreannounceMediaID: "preannounce", MediaID: "media"})

	assert.Equal(t, entities.StateResponding, h.state())
	assert.False(t, h.input.isStreaming())
	assert.Equal(t, [][]string{{"preannounce", "media"}}, h.tts.playedURLs())

	h.wake("Okay Nabu")

	assert.Equal(t, 1, h.tts.stopCount())
	sent := h.transport.messages()
	require.Len(t, sent, 1)
	assert.IsType(t, protocol.VoiceAssistantAnnounceFinished{}, sent[0])
	assert.Equal(t, []string{"wake"}, h.tts.playedURLs()[1])

	h.completeTTS()

	sent = h.transport.messages()
	require.Len(t, sent, 2)
	requireRequest(t, sent[1], true)
	assert.Equal(t, entities.StateListening, h.state())
	assert.True(t, h.input.isStreaming())
}

func TestNewAnnouncementReplacesPrevious(t *testing.T) {
	h := newHarness(t, testSettings())
	h.receive(protocol.VoiceAssistantAnnounceRequest{PreannounceMediaID: "preannounce", MediaID: "media"})

	h.receive(protocol.VoiceAssistantAnnounceRequest{PreannounceMediaID: "preannounce2", MediaID: "media2"})

	assert.Equal(t, 1, h.tts.stopCount())
	sent := h.transport.messages()
	require.Len(t, sent, 1)
	assert.IsType(t, protocol.VoiceAssistantAnnounceFinished{}, sent[0])
	assert.Equal(t, []string{"preannounce2", "media2"}, h.tts.playedURLs()[1])
	assert.Equal(t, entities.StateResponding, h.state())
	assert.False(t, h.input.isStreaming())

	h.completeTTS()

	sent = h.transport.messages()
	require.Len(t, sent, 2)
	assert.IsType(t, protocol.VoiceAssistantAnnounceFinished{}, sent[1])
	assert.Equal(t, entities.StateConnected, h.state())
	assert.False(t, h.sat.player.Ducked())
}

func TestAnnouncementStartsConversation(t *testing.T) {
	h := newHarness(t, testSettings())
	h.receive(protocol.VoiceAssistantAnnounceRequest{MediaID: "question", StartConversation: true})

	h.completeTTS()

	sent := h.transport.messages()
	require.Len(t, sent, 2)
	assert.IsType(t, protocol.VoiceAssistantAnnounceFinished{}, sent[0])
	assert.Empty(t, requireRequest(t, sent[1], true).WakeWordPhrase)
	assert.Equal(t, entities.StateListening, h.state())
	assert.True(t, h.input.isStreaming())
}

func TestStopWordStopsProcessingPipeline(t *testing.T) {
	h := newHarness(t, testSettings())
	h.wake("Okay Nabu")
	h.event(protocol.EventRunStart)
	h.event(protocol.EventSTTEnd)
	h.transport.clear()

	h.stopWord()

	assert.Equal(t, 1, h.tts.stopCount())
	sent := h.transport.messages()
	require.Len(t, sent, 1)
	requireRequest(t, sent[0], false)
	assert.Equal(t, entities.StateConnected, h.state())
	assert.False(t, h.input.isStreaming())
	assert.False(t, h.sat.player.Ducked())
}

func TestStopWordStopsSpeech(t *testing.T) {
	settings := testSettings()
	settings.WakeSound = "wake"
	h := newHarness(t, settings)
	h.wake("Okay Nabu")
	h.completeTTS()

	h.event(protocol.EventRunStart)
	h.event(protocol.EventTTSStart)
	h.event(protocol.EventTTSEnd, data(protocol.DataURL, "tts"))
	assert.Equal(t, []string{"tts"}, h.tts.playedURLs()[1])
	assert.Equal(t, entities.StateResponding, h.state())
	h.transport.clear()

	h.stopWord()

	assert.Equal(t, 1, h.tts.stopCount())
	sent := h.transport.messages()
	require.Len(t, sent, 1)
	assert.IsType(t, protocol.VoiceAssistantAnnounceFinished{}, sent[0])
	assert.Equal(t, entities.StateConnected, h.state())
}

func TestStopWordStopsAnnouncement(t *testing.T) {
	h := newHarness(t, testSettings())
	h.receive(protocol.VoiceAssistantAnnounceRequest{PreannounceMediaID: "preannounce", MediaID: "media"})

	h.stopWord()

	assert.Equal(t, 1, h.tts.stopCount())
	sent := h.transport.messages()
	require.Len(t, sent, 1)
	assert.IsType(t, protocol.VoiceAssistantAnnounceFinished{}, sent[0])
	assert.Equal(t, entities.StateConnected, h.state())
}

func TestStopWordWhileIdleDoesNothing(t *testing.T) {
	h := newHarness(t, testSettings())

	h.stopWord()

	assert.Empty(t, h.transport.messages())
	assert.Zero(t, h.tts.stopCount())
}

func TestPipelineEndToEnd(t *testing.T) {
	h := newHarness(t, testSettings())
	h.wake("Okay Nabu")

	var states []entities.SatelliteState
	step := func(eventType protocol.VoiceAssistantEvent, d ...protocol.VoiceAssistantEventData) {
		h.event(eventType, d...)
		if len(states) == 0 || states[len(states)-1] != h.state() {
			states = append(states, h.state())
		}
	}

	step(protocol.EventRunStart)
	h.mic("frame")
	step(protocol.EventSTTEnd)
	step(protocol.EventTTSStart)
	step(protocol.EventTTSEnd, data(protocol.DataURL, "http://hub/tts.mp3"))
	step(protocol.EventRunEnd)
	assert.Equal(t, entities.StateResponding, h.state(), "run waits for speech to finish")

	h.completeTTS()
	states = append(states, h.state())

	assert.Equal(t, []entities.SatelliteState{
		entities.StateListening,
		entities.StateProcessing,
		entities.StateResponding,
		entities.StateConnected,
	}, states)
	assert.Equal(t, [][]string{{"http://hub/tts.mp3"}}, h.tts.playedURLs())
	assert.Equal(t, 1, h.tts.inits)

	sent := h.transport.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, protocol.VoiceAssistantAudio{Data: []byte("frame")}, sent[1])
}

func TestContinueConversationStartsNewRun(t *testing.T) {
	h := newHarness(t, testSettings())
	h.wake("Okay Nabu")
	h.event(protocol.EventRunStart)
	h.event(protocol.EventIntentEnd, data(protocol.DataContinueConversation, "1"))
	h.event(protocol.EventTTSStart)
	h.event(protocol.EventTTSEnd, data(protocol.DataURL, "tts"))
	h.event(protocol.EventRunEnd)
	h.transport.clear()

	h.completeTTS()

	sent := h.transport.messages()
	require.Len(t, sent, 1)
	assert.Empty(t, requireRequest(t, sent[0], true).WakeWordPhrase)
	assert.Equal(t, entities.StateListening, h.state())
	assert.True(t, h.input.isStreaming())
}

func TestServerErrorState(t *testing.T) {
	h := newHarness(t, testSettings())
	h.wake("Okay Nabu")
	h.event(protocol.EventRunStart)

	h.event(protocol.EventError, data(protocol.DataCode, "stt-no-text-recognized"), data(protocol.DataMessage, "No text recognized"))
	assert.Equal(t, entities.StateServerError, h.state())

	h.event(protocol.EventRunEnd)
	assert.Equal(t, entities.StateConnected, h.state())
}

func TestHubStartedRun(t *testing.T) {
	h := newHarness(t, testSettings())

	h.event(protocol.EventRunStart)
	h.mic("frame")

	assert.Equal(t, entities.StateListening, h.state())
	assert.Equal(t, []protocol.Message{protocol.VoiceAssistantAudio{Data: []byte("frame")}}, h.transport.messages())
}

func TestStrayPipelineEventIsIgnored(t *testing.T) {
	h := newHarness(t, testSettings())

	h.event(protocol.EventSTTEnd)
	h.event(protocol.EventRunEnd)

	assert.Equal(t, entities.StateConnected, h.state())
	assert.Empty(t, h.transport.messages())
}

func TestDisconnectResetsSession(t *testing.T) {
	h := newHarness(t, testSettings())
	h.receive(protocol.VoiceAssistantTimerEventResponse{
		EventType: protocol.TimerStarted, TimerID: "t1", TotalSeconds: 60, SecondsLeft: 60, IsActive: true,
	})
	h.wake("Okay Nabu")
	h.event(protocol.EventRunStart)
	h.transport.clear()

	h.setConnected(false)

	assert.Equal(t, entities.StateDisconnected, h.state())
	assert.False(t, h.input.isStreaming())
	assert.Empty(t, h.sat.TimersSnapshot())
	assert.Empty(t, h.transport.messages(), "nothing is sent to a lost session")
	assert.False(t, h.sat.player.Ducked())

	h.wake("Okay Nabu")
	assert.Equal(t, entities.StateDisconnected, h.state())

	h.setConnected(true)
	assert.Equal(t, entities.StateConnected, h.state())
}

func TestStatesSubscription(t *testing.T) {
	h := newHarness(t, testSettings())
	states, cancel := h.sat.States()
	defer cancel()
	assert.Equal(t, entities.StateConnected, <-states)

	h.wake("Okay Nabu")

	assert.Equal(t, entities.StateListening, <-states)
}

func TestSettingsChangesReachInput(t *testing.T) {
	h := newHarness(t, testSettings())

	require.NoError(t, h.settings.Update(context.Background(), func(s *entities.Settings) {
		s.Muted = true
		s.WakeWords = []string{"hey_jarvis"}
	}))

	assert.Eventually(t, func() bool {
		h.input.mu.Lock()
		defer h.input.mu.Unlock()
		return h.input.muted && len(h.input.wake) == 1 && h.input.wake[0] == "hey_jarvis"
	}, time.Second, time.Millisecond)
}
