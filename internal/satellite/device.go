package satellite

import (
	"slices"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/satellite/domain/entities"
	"github.com/satriahrh/arunika/satellite/internal/protocol"
)

const (
	apiVersionMajor = 1
	apiVersionMinor = 10

	// MaxActiveWakeWords is how many wake words the hub may activate at once.
	MaxActiveWakeWords = 2
)

// FeatureFlags are the voice assistant capabilities of the satellite.
const FeatureFlags = protocol.FeatureVoiceAssistant |
	protocol.FeatureSpeaker |
	protocol.FeatureAPIAudio |
	protocol.FeatureTimers |
	protocol.FeatureAnnounce |
	protocol.FeatureStartConversation

// DeviceInfo is the static part of the device description. Name and MAC
// address come from the settings.
type DeviceInfo struct {
	Model          string
	Manufacturer   string
	ProjectName    string
	ProjectVersion string
	ESPHomeVersion string
	ServerInfo     string
}

// DefaultDeviceInfo describes this program.
func DefaultDeviceInfo(version string) DeviceInfo {
	return DeviceInfo{
		Model:          "Arunika Satellite",
		Manufacturer:   "Arunika",
		ProjectName:    "arunika.satellite",
		ProjectVersion: version,
		ESPHomeVersion: "2025.9.0",
		ServerInfo:     "arunika-satellite " + version,
	}
}

func (s *Satellite) handleMessage(msg protocol.Message) {
	switch msg := msg.(type) {
	case protocol.HelloRequest:
		s.logger.Info("Hub says hello",
			zap.String("client", msg.ClientInfo),
			zap.Uint32("api_major", msg.APIVersionMajor),
			zap.Uint32("api_minor", msg.APIVersionMinor))
		s.send(protocol.HelloResponse{
			APIVersionMajor: apiVersionMajor,
			APIVersionMinor: apiVersionMinor,
			ServerInfo:      s.info.ServerInfo,
			Name:            s.current.Name,
		})

	case protocol.ConnectRequest:
		s.send(protocol.ConnectResponse{})
		s.logger.Info("Hub authenticated")

	case protocol.DisconnectRequest:
		s.send(protocol.DisconnectResponse{})
		s.transport.Disconnect()

	case protocol.PingRequest:
		s.send(protocol.PingResponse{})

	case protocol.DeviceInfoRequest:
		s.send(s.deviceInfo())

	case protocol.ListEntitiesRequest:
		for _, resp := range s.entities.List() {
			s.send(resp)
		}
		s.send(protocol.ListEntitiesDoneResponse{})

	case protocol.SubscribeStatesRequest, protocol.SubscribeHomeAssistantStatesRequest:
		s.subscribed = true
		s.forwardToEntities(msg)

	case protocol.MediaPlayerCommandRequest:
		s.forwardToEntities(msg)

	case protocol.SubscribeVoiceAssistantRequest:
		s.logger.Info("Voice assistant subscription", zap.Bool("subscribe", msg.Subscribe))

	case protocol.VoiceAssistantConfigurationRequest:
		s.send(s.configuration())

	case protocol.VoiceAssistantSetConfiguration:
		s.setConfiguration(msg.ActiveWakeWords)

	case protocol.VoiceAssistantEventResponse:
		s.handlePipelineEvent(msg)

	case protocol.VoiceAssistantAnnounceRequest:
		s.announce(msg)

	case protocol.VoiceAssistantTimerEventResponse:
		s.handleTimerEvent(msg)

	default:
		s.logger.Debug("Ignoring message", zap.Stringer("type", msg.Type()))
	}
}

func (s *Satellite) forwardToEntities(msg protocol.Message) {
	for _, resp := range s.entities.Handle(msg) {
		s.send(resp)
	}
}

func (s *Satellite) handlePipelineEvent(ev protocol.VoiceAssistantEventResponse) {
	if s.pipeline == nil {
		if ev.EventType != protocol.EventRunStart {
			s.logger.Debug("Ignoring pipeline event without a run", zap.Stringer("event", ev.EventType))
			return
		}
		// run started by the hub itself
		s.stopActive(true)
		s.newPipeline("hub")
		s.refresh()
	}
	s.pipeline.HandleEvent(ev)
}

func (s *Satellite) deviceInfo() protocol.DeviceInfoResponse {
	return protocol.DeviceInfoResponse{
		Name:                       s.current.Name,
		FriendlyName:               s.current.Name,
		MACAddress:                 s.current.MACAddress,
		ESPHomeVersion:             s.info.ESPHomeVersion,
		Model:                      s.info.Model,
		Manufacturer:               s.info.Manufacturer,
		ProjectName:                s.info.ProjectName,
		ProjectVersion:             s.info.ProjectVersion,
		VoiceAssistantFeatureFlags: FeatureFlags,
	}
}

func (s *Satellite) configuration() protocol.VoiceAssistantConfigurationResponse {
	resp := protocol.VoiceAssistantConfigurationResponse{
		ActiveWakeWords:    slices.Clone(s.current.WakeWords),
		MaxActiveWakeWords: MaxActiveWakeWords,
	}
	for _, ww := range s.availableWakeWords() {
		resp.AvailableWakeWords = append(resp.AvailableWakeWords, protocol.VoiceAssistantWakeWord{
			ID:               ww.ID,
			WakeWord:         ww.WakeWord,
			TrainedLanguages: ww.TrainedLanguages,
		})
	}
	return resp
}

func (s *Satellite) availableWakeWords() []entities.WakeWord {
	if s.wakeWords == nil {
		return nil
	}
	return s.wakeWords.WakeWords()
}

// setConfiguration activates the known ids among ids and persists the
// selection.
func (s *Satellite) setConfiguration(ids []string) {
	known := make(map[string]bool)
	for _, ww := range s.availableWakeWords() {
		known[ww.ID] = true
	}

	var active []string
	for _, id := range ids {
		if !known[id] {
			s.logger.Warn("Hub selected an unknown wake word", zap.String("wake_word", id))
			continue
		}
		if len(active) == MaxActiveWakeWords {
			break
		}
		active = append(active, id)
	}

	s.logger.Info("Active wake words changed", zap.Strings("wake_words", active))
	s.current.WakeWords = active
	s.input.SetActiveWakeWords(active)

	err := s.settings.Update(s.ctx, func(settings *entities.Settings) {
		settings.WakeWords = slices.Clone(active)
	})
	if err != nil {
		s.logger.Warn("Failed to save wake words", zap.Error(err))
	}
}
