package protocol

// Message is one ESPHome native API message.
type Message interface {
	Type() MessageType
	appendTo(b []byte) []byte
}

// HelloRequest opens the handshake.
type HelloRequest struct {
	ClientInfo      string
	APIVersionMajor uint32
	APIVersionMinor uint32
}

func (HelloRequest) Type() MessageType { return TypeHelloRequest }

func (m HelloRequest) appendTo(b []byte) []byte {
	b = appendString(b, 1, m.ClientInfo)
	b = appendUint32(b, 2, m.APIVersionMajor)
	return appendUint32(b, 3, m.APIVersionMinor)
}

func decodeHelloRequest(p []byte) (Message, error) {
	var m HelloRequest
	err := walkFields(p, func(f field) error {
		switch f.num {
		case 1:
			m.ClientInfo = f.asString()
		case 2:
			m.APIVersionMajor = f.asUint32()
		case 3:
			m.APIVersionMinor = f.asUint32()
		}
		return nil
	})
	return m, err
}

type HelloResponse struct {
	APIVersionMajor uint32
	APIVersionMinor uint32
	ServerInfo      string
	Name            string
}

func (HelloResponse) Type() MessageType { return TypeHelloResponse }

func (m HelloResponse) appendTo(b []byte) []byte {
	b = appendUint32(b, 1, m.APIVersionMajor)
	b = appendUint32(b, 2, m.APIVersionMinor)
	b = appendString(b, 3, m.ServerInfo)
	return appendString(b, 4, m.Name)
}

func decodeHelloResponse(p []byte) (Message, error) {
	var m HelloResponse
	err := walkFields(p, func(f field) error {
		switch f.num {
		case 1:
			m.APIVersionMajor = f.asUint32()
		case 2:
			m.APIVersionMinor = f.asUint32()
		case 3:
			m.ServerInfo = f.asString()
		case 4:
			m.Name = f.asString()
		}
		return nil
	})
	return m, err
}

type ConnectRequest struct {
	Password string
}

func (ConnectRequest) Type() MessageType { return TypeConnectRequest }

func (m ConnectRequest) appendTo(b []byte) []byte {
	return appendString(b, 1, m.Password)
}

func decodeConnectRequest(p []byte) (Message, error) {
	var m ConnectRequest
	err := walkFields(p, func(f field) error {
		if f.num == 1 {
			m.Password = f.asString()
		}
		return nil
	})
	return m, err
}

type ConnectResponse struct {
	InvalidPassword bool
}

func (ConnectResponse) Type() MessageType { return TypeConnectResponse }

func (m ConnectResponse) appendTo(b []byte) []byte {
	return appendBool(b, 1, m.InvalidPassword)
}

func decodeConnectResponse(p []byte) (Message, error) {
	var m ConnectResponse
	err := walkFields(p, func(f field) error {
		if f.num == 1 {
			m.InvalidPassword = f.asBool()
		}
		return nil
	})
	return m, err
}

// Messages without fields.
type (
	DisconnectRequest                   struct{}
	DisconnectResponse                  struct{}
	PingRequest                         struct{}
	PingResponse                        struct{}
	DeviceInfoRequest                   struct{}
	ListEntitiesRequest                 struct{}
	ListEntitiesDoneResponse            struct{}
	SubscribeStatesRequest              struct{}
	SubscribeHomeAssistantStatesRequest struct{}
	VoiceAssistantConfigurationRequest  struct{}
)

func (DisconnectRequest) Type() MessageType                   { return TypeDisconnectRequest }
func (DisconnectResponse) Type() MessageType                  { return TypeDisconnectResponse }
func (PingRequest) Type() MessageType                         { return TypePingRequest }
func (PingResponse) Type() MessageType                        { return TypePingResponse }
func (DeviceInfoRequest) Type() MessageType                   { return TypeDeviceInfoRequest }
func (ListEntitiesRequest) Type() MessageType                 { return TypeListEntitiesRequest }
func (ListEntitiesDoneResponse) Type() MessageType            { return TypeListEntitiesDoneResponse }
func (SubscribeStatesRequest) Type() MessageType              { return TypeSubscribeStatesRequest }
func (SubscribeHomeAssistantStatesRequest) Type() MessageType { return TypeSubscribeHomeAssistantStatesRequest }
func (VoiceAssistantConfigurationRequest) Type() MessageType  { return TypeVoiceAssistantConfigurationRequest }

func (DisconnectRequest) appendTo(b []byte) []byte                   { return b }
func (DisconnectResponse) appendTo(b []byte) []byte                  { return b }
func (PingRequest) appendTo(b []byte) []byte                         { return b }
func (PingResponse) appendTo(b []byte) []byte                        { return b }
func (DeviceInfoRequest) appendTo(b []byte) []byte                   { return b }
func (ListEntitiesRequest) appendTo(b []byte) []byte                 { return b }
func (ListEntitiesDoneResponse) appendTo(b []byte) []byte            { return b }
func (SubscribeStatesRequest) appendTo(b []byte) []byte              { return b }
func (SubscribeHomeAssistantStatesRequest) appendTo(b []byte) []byte { return b }
func (VoiceAssistantConfigurationRequest) appendTo(b []byte) []byte  { return b }

func decodeEmpty(m Message) func([]byte) (Message, error) {
	return func(p []byte) (Message, error) {
		return m, walkFields(p, skipAll)
	}
}

type DeviceInfoResponse struct {
	UsesPassword               bool
	Name                       string
	MACAddress                 string
	ESPHomeVersion             string
	CompilationTime            string
	Model                      string
	ProjectName                string
	ProjectVersion             string
	Manufacturer               string
	FriendlyName               string
	VoiceAssistantFeatureFlags uint32
}

func (DeviceInfoResponse) Type() MessageType { return TypeDeviceInfoResponse }

func (m DeviceInfoResponse) appendTo(b []byte) []byte {
	b = appendBool(b, 1, m.UsesPassword)
	b = appendString(b, 2, m.Name)
	b = appendString(b, 3, m.MACAddress)
	b = appendString(b, 4, m.ESPHomeVersion)
	b = appendString(b, 5, m.CompilationTime)
	b = appendString(b, 6, m.Model)
	b = appendString(b, 8, m.ProjectName)
	b = appendString(b, 9, m.ProjectVersion)
	b = appendString(b, 12, m.Manufacturer)
	b = appendString(b, 13, m.FriendlyName)
	return appendUint32(b, 17, m.VoiceAssistantFeatureFlags)
}

func decodeDeviceInfoResponse(p []byte) (Message, error) {
	var m DeviceInfoResponse
	err := walkFields(p, func(f field) error {
		switch f.num {
		case 1:
			m.UsesPassword = f.asBool()
		case 2:
			m.Name = f.asString()
		case 3:
			m.MACAddress = f.asString()
		case 4:
			m.ESPHomeVersion = f.asString()
		case 5:
			m.CompilationTime = f.asString()
		case 6:
			m.Model = f.asString()
		case 8:
			m.ProjectName = f.asString()
		case 9:
			m.ProjectVersion = f.asString()
		case 12:
			m.Manufacturer = f.asString()
		case 13:
			m.FriendlyName = f.asString()
		case 17:
			m.VoiceAssistantFeatureFlags = f.asUint32()
		}
		return nil
	})
	return m, err
}

type ListEntitiesMediaPlayerResponse struct {
	ObjectID      string
	Key           uint32
	Name          string
	UniqueID      string
	Icon          string
	SupportsPause bool
}

func (ListEntitiesMediaPlayerResponse) Type() MessageType { return TypeListEntitiesMediaPlayerResponse }

func (m ListEntitiesMediaPlayerResponse) appendTo(b []byte) []byte {
	b = appendString(b, 1, m.ObjectID)
	b = appendFixed32(b, 2, m.Key)
	b = appendString(b, 3, m.Name)
	b = appendString(b, 4, m.UniqueID)
	b = appendString(b, 5, m.Icon)
	return appendBool(b, 8, m.SupportsPause)
}

func decodeListEntitiesMediaPlayerResponse(p []byte) (Message, error) {
	var m ListEntitiesMediaPlayerResponse
	err := walkFields(p, func(f field) error {
		switch f.num {
		case 1:
			m.ObjectID = f.asString()
		case 2:
			m.Key = f.fixed32
		case 3:
			m.Name = f.asString()
		case 4:
			m.UniqueID = f.asString()
		case 5:
			m.Icon = f.asString()
		case 8:
			m.SupportsPause = f.asBool()
		}
		return nil
	})
	return m, err
}

type MediaPlayerStateResponse struct {
	Key    uint32
	State  MediaPlayerState
	Volume float32
	Muted  bool
}

func (MediaPlayerStateResponse) Type() MessageType { return TypeMediaPlayerStateResponse }

func (m MediaPlayerStateResponse) appendTo(b []byte) []byte {
	b = appendFixed32(b, 1, m.Key)
	b = appendUint32(b, 2, uint32(m.State))
	b = appendFloat(b, 3, m.Volume)
	return appendBool(b, 4, m.Muted)
}

func decodeMediaPlayerStateResponse(p []byte) (Message, error) {
	var m MediaPlayerStateResponse
	err := walkFields(p, func(f field) error {
		switch f.num {
		case 1:
			m.Key = f.fixed32
		case 2:
			m.State = MediaPlayerState(f.asUint32())
		case 3:
			m.Volume = f.asFloat32()
		case 4:
			m.Muted = f.asBool()
		}
		return nil
	})
	return m, err
}

type MediaPlayerCommandRequest struct {
	Key             uint32
	HasCommand      bool
	Command         MediaPlayerCommand
	HasVolume       bool
	Volume          float32
	HasMediaURL     bool
	MediaURL        string
	HasAnnouncement bool
	Announcement    bool
}

func (MediaPlayerCommandRequest) Type() MessageType { return TypeMediaPlayerCommandRequest }

func (m MediaPlayerCommandRequest) appendTo(b []byte) []byte {
	b = appendFixed32(b, 1, m.Key)
	b = appendBool(b, 2, m.HasCommand)
	b = appendUint32(b, 3, uint32(m.Command))
	b = appendBool(b, 4, m.HasVolume)
	b = appendFloat(b, 5, m.Volume)
	b = appendBool(b, 6, m.HasMediaURL)
	b = appendString(b, 7, m.MediaURL)
	b = appendBool(b, 8, m.HasAnnouncement)
	return appendBool(b, 9, m.Announcement)
}

func decodeMediaPlayerCommandRequest(p []byte) (Message, error) {
	var m MediaPlayerCommandRequest
	err := walkFields(p, func(f field) error {
		switch f.num {
		case 1:
			m.Key = f.fixed32
		case 2:
			m.HasCommand = f.asBool()
		case 3:
			m.Command = MediaPlayerCommand(f.asUint32())
		case 4:
			m.HasVolume = f.asBool()
		case 5:
			m.Volume = f.asFloat32()
		case 6:
			m.HasMediaURL = f.asBool()
		case 7:
			m.MediaURL = f.asString()
		case 8:
			m.HasAnnouncement = f.asBool()
		case 9:
			m.Announcement = f.asBool()
		}
		return nil
	})
	return m, err
}

type SubscribeVoiceAssistantRequest struct {
	Subscribe bool
	Flags     uint32
}

func (SubscribeVoiceAssistantRequest) Type() MessageType { return TypeSubscribeVoiceAssistantRequest }

func (m SubscribeVoiceAssistantRequest) appendTo(b []byte) []byte {
	b = appendBool(b, 1, m.Subscribe)
	return appendUint32(b, 2, m.Flags)
}

func decodeSubscribeVoiceAssistantRequest(p []byte) (Message, error) {
	var m SubscribeVoiceAssistantRequest
	err := walkFields(p, func(f field) error {
		switch f.num {
		case 1:
			m.Subscribe = f.asBool()
		case 2:
			m.Flags = f.asUint32()
		}
		return nil
	})
	return m, err
}

// VoiceAssistantRequest asks the hub to start (or stop) a pipeline run.
type VoiceAssistantRequest struct {
	Start          bool
	ConversationID string
	Flags          uint32
	WakeWordPhrase string
}

func (VoiceAssistantRequest) Type() MessageType { return TypeVoiceAssistantRequest }

func (m VoiceAssistantRequest) appendTo(b []byte) []byte {
	b = appendBool(b, 1, m.Start)
	b = appendString(b, 2, m.ConversationID)
	b = appendUint32(b, 3, m.Flags)
	return appendString(b, 5, m.WakeWordPhrase)
}

func decodeVoiceAssistantRequest(p []byte) (Message, error) {
	var m VoiceAssistantRequest
	err := walkFields(p, func(f field) error {
		switch f.num {
		case 1:
			m.Start = f.asBool()
		case 2:
			m.ConversationID = f.asString()
		case 3:
			m.Flags = f.asUint32()
		case 5:
			m.WakeWordPhrase = f.asString()
		}
		return nil
	})
	return m, err
}

type VoiceAssistantResponse struct {
	Port  uint32
	Error bool
}

func (VoiceAssistantResponse) Type() MessageType { return TypeVoiceAssistantResponse }

func (m VoiceAssistantResponse) appendTo(b []byte) []byte {
	b = appendUint32(b, 1, m.Port)
	return appendBool(b, 2, m.Error)
}

func decodeVoiceAssistantResponse(p []byte) (Message, error) {
	var m VoiceAssistantResponse
	err := walkFields(p, func(f field) error {
		switch f.num {
		case 1:
			m.Port = f.asUint32()
		case 2:
			m.Error = f.asBool()
		}
		return nil
	})
	return m, err
}

type VoiceAssistantEventData struct {
	Name  string
	Value string
}

// VoiceAssistantEventResponse reports the progress of a pipeline run.
type VoiceAssistantEventResponse struct {
	EventType VoiceAssistantEvent
	Data      []VoiceAssistantEventData
}

func (VoiceAssistantEventResponse) Type() MessageType { return TypeVoiceAssistantEventResponse }

// Value returns the first data value named name.
func (m VoiceAssistantEventResponse) Value(name string) (string, bool) {
	for _, d := range m.Data {
		if d.Name == name {
			return d.Value, true
		}
	}
	return "", false
}

func (m VoiceAssistantEventResponse) appendTo(b []byte) []byte {
	b = appendUint32(b, 1, uint32(m.EventType))
	for _, d := range m.Data {
		var inner []byte
		inner = appendString(inner, 1, d.Name)
		inner = appendString(inner, 2, d.Value)
		b = appendMessage(b, 2, inner)
	}
	return b
}

func decodeVoiceAssistantEventResponse(p []byte) (Message, error) {
	var m VoiceAssistantEventResponse
	err := walkFields(p, func(f field) error {
		switch f.num {
		case 1:
			m.EventType = VoiceAssistantEvent(f.asUint32())
		case 2:
			var d VoiceAssistantEventData
			err := walkFields(f.bytes, func(inner field) error {
				switch inner.num {
				case 1:
					d.Name = inner.asString()
				case 2:
					d.Value = inner.asString()
				}
				return nil
			})
			if err != nil {
				return err
			}
			m.Data = append(m.Data, d)
		}
		return nil
	})
	return m, err
}

// VoiceAssistantAudio carries one chunk of microphone audio.
type VoiceAssistantAudio struct {
	Data []byte
	End  bool
}

func (VoiceAssistantAudio) Type() MessageType { return TypeVoiceAssistantAudio }

func (m VoiceAssistantAudio) appendTo(b []byte) []byte {
	b = appendBytes(b, 1, m.Data)
	return appendBool(b, 2, m.End)
}

func decodeVoiceAssistantAudio(p []byte) (Message, error) {
	var m VoiceAssistantAudio
	err := walkFields(p, func(f field) error {
		switch f.num {
		case 1:
			m.Data = f.bytes
		case 2:
			m.End = f.asBool()
		}
		return nil
	})
	return m, err
}

type VoiceAssistantTimerEventResponse struct {
	EventType    TimerEvent
	TimerID      string
	Name         string
	TotalSeconds uint32
	SecondsLeft  uint32
	IsActive     bool
}

func (VoiceAssistantTimerEventResponse) Type() MessageType {
	return TypeVoiceAssistantTimerEventResponse
}

func (m VoiceAssistantTimerEventResponse) appendTo(b []byte) []byte {
	b = appendUint32(b, 1, uint32(m.EventType))
	b = appendString(b, 2, m.TimerID)
	b = appendString(b, 3, m.Name)
	b = appendUint32(b, 4, m.TotalSeconds)
	b = appendUint32(b, 5, m.SecondsLeft)
	return appendBool(b, 6, m.IsActive)
}

func decodeVoiceAssistantTimerEventResponse(p []byte) (Message, error) {
	var m VoiceAssistantTimerEventResponse
	err := walkFields(p, func(f field) error {
		switch f.num {
		case 1:
			m.EventType = TimerEvent(f.asUint32())
		case 2:
			m.TimerID = f.asString()
		case 3:
			m.Name = f.asString()
		case 4:
			m.TotalSeconds = f.asUint32()
		case 5:
			m.SecondsLeft = f.asUint32()
		case 6:
			m.IsActive = f.asBool()
		}
		return nil
	})
	return m, err
}

type VoiceAssistantAnnounceRequest struct {
	MediaID            string
	Text               string
	PreannounceMediaID string
	StartConversation  bool
}

func (VoiceAssistantAnnounceRequest) Type() MessageType { return TypeVoiceAssistantAnnounceRequest }

func (m VoiceAssistantAnnounceRequest) appendTo(b []byte) []byte {
	b = appendString(b, 1, m.MediaID)
	b = appendString(b, 2, m.Text)
	b = appendString(b, 3, m.PreannounceMediaID)
	return appendBool(b, 4, m.StartConversation)
}

func decodeVoiceAssistantAnnounceRequest(p []byte) (Message, error) {
	var m VoiceAssistantAnnounceRequest
	err := walkFields(p, func(f field) error {
		switch f.num {
		case 1:
			m.MediaID = f.asString()
		case 2:
			m.Text = f.asString()
		case 3:
			m.PreannounceMediaID = f.asString()
		case 4:
			m.StartConversation = f.asBool()
		}
		return nil
	})
	return m, err
}

type VoiceAssistantAnnounceFinished struct {
	Success bool
}

func (VoiceAssistantAnnounceFinished) Type() MessageType { return TypeVoiceAssistantAnnounceFinished }

func (m VoiceAssistantAnnounceFinished) appendTo(b []byte) []byte {
	return appendBool(b, 1, m.Success)
}

func decodeVoiceAssistantAnnounceFinished(p []byte) (Message, error) {
	var m VoiceAssistantAnnounceFinished
	err := walkFields(p, func(f field) error {
		if f.num == 1 {
			m.Success = f.asBool()
		}
		return nil
	})
	return m, err
}

type VoiceAssistantWakeWord struct {
	ID               string
	WakeWord         string
	TrainedLanguages []string
}

func (w VoiceAssistantWakeWord) appendTo(b []byte) []byte {
	b = appendString(b, 1, w.ID)
	b = appendString(b, 2, w.WakeWord)
	return appendRepeatedString(b, 3, w.TrainedLanguages)
}

type VoiceAssistantConfigurationResponse struct {
	AvailableWakeWords []VoiceAssistantWakeWord
	ActiveWakeWords    []string
	MaxActiveWakeWords uint32
}

func (VoiceAssistantConfigurationResponse) Type() MessageType {
	return TypeVoiceAssistantConfigurationResponse
}

func (m VoiceAssistantConfigurationResponse) appendTo(b []byte) []byte {
	for _, w := range m.AvailableWakeWords {
		b = appendMessage(b, 1, w.appendTo(nil))
	}
	b = appendRepeatedString(b, 2, m.ActiveWakeWords)
	return appendUint32(b, 3, m.MaxActiveWakeWords)
}

func decodeVoiceAssistantConfigurationResponse(p []byte) (Message, error) {
	var m VoiceAssistantConfigurationResponse
	err := walkFields(p, func(f field) error {
		switch f.num {
		case 1:
			var w VoiceAssistantWakeWord
			err := walkFields(f.bytes, func(inner field) error {
				switch inner.num {
				case 1:
					w.ID = inner.asString()
				case 2:
					w.WakeWord = inner.asString()
				case 3:
					w.TrainedLanguages = append(w.TrainedLanguages, inner.asString())
				}
				return nil
			})
			if err != nil {
				return err
			}
			m.AvailableWakeWords = append(m.AvailableWakeWords, w)
		case 2:
			m.ActiveWakeWords = append(m.ActiveWakeWords, f.asString())
		case 3:
			m.MaxActiveWakeWords = f.asUint32()
		}
		return nil
	})
	return m, err
}

type VoiceAssistantSetConfiguration struct {
	ActiveWakeWords []string
}

func (VoiceAssistantSetConfiguration) Type() MessageType { return TypeVoiceAssistantSetConfiguration }

func (m VoiceAssistantSetConfiguration) appendTo(b []byte) []byte {
	return appendRepeatedString(b, 1, m.ActiveWakeWords)
}

func decodeVoiceAssistantSetConfiguration(p []byte) (Message, error) {
	var m VoiceAssistantSetConfiguration
	err := walkFields(p, func(f field) error {
		if f.num == 1 {
			m.ActiveWakeWords = append(m.ActiveWakeWords, f.asString())
		}
		return nil
	})
	return m, err
}

// Unhandled is a well-formed message of a known type the satellite has no
// use for, such as log or bluetooth subscriptions.
type Unhandled struct {
	MessageType MessageType
	Payload     []byte
}

func (m Unhandled) Type() MessageType { return m.MessageType }

func (m Unhandled) appendTo(b []byte) []byte { return append(b, m.Payload...) }

func decodeUnhandled(t MessageType) func([]byte) (Message, error) {
	return func(p []byte) (Message, error) {
		return Unhandled{MessageType: t, Payload: p}, walkFields(p, skipAll)
	}
}

var decoders = map[MessageType]func([]byte) (Message, error){
	TypeHelloRequest:                        decodeHelloRequest,
	TypeHelloResponse:                       decodeHelloResponse,
	TypeConnectRequest:                      decodeConnectRequest,
	TypeConnectResponse:                     decodeConnectResponse,
	TypeDisconnectRequest:                   decodeEmpty(DisconnectRequest{}),
	TypeDisconnectResponse:                  decodeEmpty(DisconnectResponse{}),
	TypePingRequest:                         decodeEmpty(PingRequest{}),
	TypePingResponse:                        decodeEmpty(PingResponse{}),
	TypeDeviceInfoRequest:                   decodeEmpty(DeviceInfoRequest{}),
	TypeDeviceInfoResponse:                  decodeDeviceInfoResponse,
	TypeListEntitiesRequest:                 decodeEmpty(ListEntitiesRequest{}),
	TypeListEntitiesDoneResponse:            decodeEmpty(ListEntitiesDoneResponse{}),
	TypeSubscribeStatesRequest:              decodeEmpty(SubscribeStatesRequest{}),
	TypeSubscribeLogsRequest:                decodeUnhandled(TypeSubscribeLogsRequest),
	TypeSubscribeHomeassistantServices:      decodeUnhandled(TypeSubscribeHomeassistantServices),
	TypeGetTimeRequest:                      decodeUnhandled(TypeGetTimeRequest),
	TypeGetTimeResponse:                     decodeUnhandled(TypeGetTimeResponse),
	TypeSubscribeHomeAssistantStatesRequest: decodeEmpty(SubscribeHomeAssistantStatesRequest{}),
	TypeHomeAssistantStateResponse:          decodeUnhandled(TypeHomeAssistantStateResponse),
	TypeListEntitiesMediaPlayerResponse:     decodeListEntitiesMediaPlayerResponse,
	TypeMediaPlayerStateResponse:            decodeMediaPlayerStateResponse,
	TypeMediaPlayerCommandRequest:           decodeMediaPlayerCommandRequest,
	TypeSubscribeBluetoothAdvertisements:    decodeUnhandled(TypeSubscribeBluetoothAdvertisements),
	TypeSubscribeBluetoothConnectionsFree:   decodeUnhandled(TypeSubscribeBluetoothConnectionsFree),
	TypeUnsubscribeBluetoothAdvertisements:  decodeUnhandled(TypeUnsubscribeBluetoothAdvertisements),
	TypeSubscribeVoiceAssistantRequest:      decodeSubscribeVoiceAssistantRequest,
	TypeVoiceAssistantRequest:               decodeVoiceAssistantRequest,
	TypeVoiceAssistantResponse:              decodeVoiceAssistantResponse,
	TypeVoiceAssistantEventResponse:         decodeVoiceAssistantEventResponse,
	TypeVoiceAssistantAudio:                 decodeVoiceAssistantAudio,
	TypeVoiceAssistantTimerEventResponse:    decodeVoiceAssistantTimerEventResponse,
	TypeVoiceAssistantAnnounceRequest:       decodeVoiceAssistantAnnounceRequest,
	TypeVoiceAssistantAnnounceFinished:      decodeVoiceAssistantAnnounceFinished,
	TypeVoiceAssistantConfigurationRequest:  decodeEmpty(VoiceAssistantConfigurationRequest{}),
	TypeVoiceAssistantConfigurationResponse: decodeVoiceAssistantConfigurationResponse,
	TypeVoiceAssistantSetConfiguration:      decodeVoiceAssistantSetConfiguration,
}
