package protocol

import "strconv"

// MessageType is the numeric message id carried in every frame.
type MessageType uint32

const (
	TypeHelloRequest                        MessageType = 1
	TypeHelloResponse                       MessageType = 2
	TypeConnectRequest                      MessageType = 3
	TypeConnectResponse                     MessageType = 4
	TypeDisconnectRequest                   MessageType = 5
	TypeDisconnectResponse                  MessageType = 6
	TypePingRequest                         MessageType = 7
	TypePingResponse                        MessageType = 8
	TypeDeviceInfoRequest                   MessageType = 9
	TypeDeviceInfoResponse                  MessageType = 10
	TypeListEntitiesRequest                 MessageType = 11
	TypeListEntitiesDoneResponse            MessageType = 19
	TypeSubscribeStatesRequest              MessageType = 20
	TypeSubscribeLogsRequest                MessageType = 28
	TypeSubscribeHomeassistantServices      MessageType = 34
	TypeGetTimeRequest                      MessageType = 36
	TypeGetTimeResponse                     MessageType = 37
	TypeSubscribeHomeAssistantStatesRequest MessageType = 38
	TypeHomeAssistantStateResponse          MessageType = 40
	TypeListEntitiesMediaPlayerResponse     MessageType = 63
	TypeMediaPlayerStateResponse            MessageType = 64
	TypeMediaPlayerCommandRequest           MessageType = 65
	TypeSubscribeBluetoothAdvertisements    MessageType = 66
	TypeSubscribeBluetoothConnectionsFree   MessageType = 80
	TypeUnsubscribeBluetoothAdvertisements  MessageType = 87
	TypeSubscribeVoiceAssistantRequest      MessageType = 89
	TypeVoiceAssistantRequest               MessageType = 90
	TypeVoiceAssistantResponse              MessageType = 91
	TypeVoiceAssistantEventResponse         MessageType = 92
	TypeVoiceAssistantAudio                 MessageType = 106
	TypeVoiceAssistantTimerEventResponse    MessageType = 115
	TypeVoiceAssistantAnnounceRequest       MessageType = 119
	TypeVoiceAssistantAnnounceFinished      MessageType = 120
	TypeVoiceAssistantConfigurationRequest  MessageType = 121
	TypeVoiceAssistantConfigurationResponse MessageType = 122
	TypeVoiceAssistantSetConfiguration      MessageType = 123
)

var messageTypeNames = map[MessageType]string{
	TypeHelloRequest:                        "HelloRequest",
	TypeHelloResponse:                       "HelloResponse",
	TypeConnectRequest:                      "ConnectRequest",
	TypeConnectResponse:                     "ConnectResponse",
	TypeDisconnectRequest:                   "DisconnectRequest",
	TypeDisconnectResponse:                  "DisconnectResponse",
	TypePingRequest:                         "PingRequest",
	TypePingResponse:                        "PingResponse",
	TypeDeviceInfoRequest:                   "DeviceInfoRequest",
	TypeDeviceInfoResponse:                  "DeviceInfoResponse",
	TypeListEntitiesRequest:                 "ListEntitiesRequest",
	TypeListEntitiesDoneResponse:            "ListEntitiesDoneResponse",
	TypeSubscribeStatesRequest:              "SubscribeStatesRequest",
	TypeSubscribeLogsRequest:                "SubscribeLogsRequest",
	TypeSubscribeHomeassistantServices:      "SubscribeHomeassistantServicesRequest",
	TypeGetTimeRequest:                      "GetTimeRequest",
	TypeGetTimeResponse:                     "GetTimeResponse",
	TypeSubscribeHomeAssistantStatesRequest: "SubscribeHomeAssistantStatesRequest",
	TypeHomeAssistantStateResponse:          "HomeAssistantStateResponse",
	TypeListEntitiesMediaPlayerResponse:     "ListEntitiesMediaPlayerResponse",
	TypeMediaPlayerStateResponse:            "MediaPlayerStateResponse",
	TypeMediaPlayerCommandRequest:           "MediaPlayerCommandRequest",
	TypeSubscribeBluetoothAdvertisements:    "SubscribeBluetoothLEAdvertisementsRequest",
	TypeSubscribeBluetoothConnectionsFree:   "SubscribeBluetoothConnectionsFreeRequest",
	TypeUnsubscribeBluetoothAdvertisements:  "UnsubscribeBluetoothLEAdvertisementsRequest",
	TypeSubscribeVoiceAssistantRequest:      "SubscribeVoiceAssistantRequest",
	TypeVoiceAssistantRequest:               "VoiceAssistantRequest",
	TypeVoiceAssistantResponse:              "VoiceAssistantResponse",
	TypeVoiceAssistantEventResponse:         "VoiceAssistantEventResponse",
	TypeVoiceAssistantAudio:                 "VoiceAssistantAudio",
	TypeVoiceAssistantTimerEventResponse:    "VoiceAssistantTimerEventResponse",
	TypeVoiceAssistantAnnounceRequest:       "VoiceAssistantAnnounceRequest",
	TypeVoiceAssistantAnnounceFinished:      "VoiceAssistantAnnounceFinished",
	TypeVoiceAssistantConfigurationRequest:  "VoiceAssistantConfigurationRequest",
	TypeVoiceAssistantConfigurationResponse: "VoiceAssistantConfigurationResponse",
	TypeVoiceAssistantSetConfiguration:      "VoiceAssistantSetConfiguration",
}

func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return "MessageType(" + strconv.FormatUint(uint64(t), 10) + ")"
}

// VoiceAssistantEvent identifies a stage of a pipeline run on the hub.
type VoiceAssistantEvent uint32

const (
	EventError          VoiceAssistantEvent = 0
	EventRunStart       VoiceAssistantEvent = 1
	EventRunEnd         VoiceAssistantEvent = 2
	EventSTTStart       VoiceAssistantEvent = 3
	EventSTTEnd         VoiceAssistantEvent = 4
	EventIntentStart    VoiceAssistantEvent = 5
	EventIntentEnd      VoiceAssistantEvent = 6
	EventTTSStart       VoiceAssistantEvent = 7
	EventTTSEnd         VoiceAssistantEvent = 8
	EventWakeWordStart  VoiceAssistantEvent = 9
	EventWakeWordEnd    VoiceAssistantEvent = 10
	EventSTTVADStart    VoiceAssistantEvent = 11
	EventSTTVADEnd      VoiceAssistantEvent = 12
	EventTTSStreamStart VoiceAssistantEvent = 98
	EventTTSStreamEnd   VoiceAssistantEvent = 99
	EventIntentProgress VoiceAssistantEvent = 100
)

var eventNames = map[VoiceAssistantEvent]string{
	EventError:          "ERROR",
	EventRunStart:       "RUN_START",
	EventRunEnd:         "RUN_END",
	EventSTTStart:       "STT_START",
	EventSTTEnd:         "STT_END",
	EventIntentStart:    "INTENT_START",
	EventIntentEnd:      "INTENT_END",
	EventTTSStart:       "TTS_START",
	EventTTSEnd:         "TTS_END",
	EventWakeWordStart:  "WAKE_WORD_START",
	EventWakeWordEnd:    "WAKE_WORD_END",
	EventSTTVADStart:    "STT_VAD_START",
	EventSTTVADEnd:      "STT_VAD_END",
	EventTTSStreamStart: "TTS_STREAM_START",
	EventTTSStreamEnd:   "TTS_STREAM_END",
	EventIntentProgress: "INTENT_PROGRESS",
}

func (e VoiceAssistantEvent) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return "EVENT(" + strconv.FormatUint(uint64(e), 10) + ")"
}

// TimerEvent is the kind of a VoiceAssistantTimerEventResponse.
type TimerEvent uint32

const (
	TimerStarted   TimerEvent = 0
	TimerUpdated   TimerEvent = 1
	TimerCancelled TimerEvent = 2
	TimerFinished  TimerEvent = 3
)

func (e TimerEvent) String() string {
	switch e {
	case TimerStarted:
		return "STARTED"
	case TimerUpdated:
		return "UPDATED"
	case TimerCancelled:
		return "CANCELLED"
	case TimerFinished:
		return "FINISHED"
	}
	return "TIMER_EVENT(" + strconv.FormatUint(uint64(e), 10) + ")"
}

// MediaPlayerState is the state reported for a media player entity.
type MediaPlayerState uint32

const (
	MediaPlayerStateNone    MediaPlayerState = 0
	MediaPlayerStateIdle    MediaPlayerState = 1
	MediaPlayerStatePlaying MediaPlayerState = 2
	MediaPlayerStatePaused  MediaPlayerState = 3
)

func (s MediaPlayerState) String() string {
	switch s {
	case MediaPlayerStateIdle:
		return "idle"
	case MediaPlayerStatePlaying:
		return "playing"
	case MediaPlayerStatePaused:
		return "paused"
	}
	return "none"
}

// MediaPlayerCommand is a command sent to a media player entity.
type MediaPlayerCommand uint32

const (
	MediaPlayerCommandPlay   MediaPlayerCommand = 0
	MediaPlayerCommandPause  MediaPlayerCommand = 1
	MediaPlayerCommandStop   MediaPlayerCommand = 2
	MediaPlayerCommandMute   MediaPlayerCommand = 3
	MediaPlayerCommandUnmute MediaPlayerCommand = 4
)

// Voice assistant capabilities advertised in DeviceInfoResponse.
const (
	FeatureVoiceAssistant    uint32 = 1 << 0
	FeatureSpeaker           uint32 = 1 << 1
	FeatureAPIAudio          uint32 = 1 << 2
	FeatureTimers            uint32 = 1 << 3
	FeatureAnnounce          uint32 = 1 << 4
	FeatureStartConversation uint32 = 1 << 5
)

// Event data keys understood by the pipeline.
const (
	DataURL                  = "url"
	DataTTSStartStreaming    = "tts_start_streaming"
	DataContinueConversation = "continue_conversation"
	DataCode                 = "code"
	DataMessage              = "message"
)
