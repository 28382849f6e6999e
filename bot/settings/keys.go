package settings

// Kind is the value shape of a setting.
type Kind int

const (
	// KindFlag is a boolean.
	KindFlag Kind = iota + 1
	// KindText is an optional string.
	KindText
	// KindList is an ordered, duplicate-free list of ids.
	KindList
	// KindInt is an optional 64-bit integer.
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindFlag:
		return "flag"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindInt:
		return "int"
	}
	return "unknown"
}

// Name identifies a setting.
type Name string

// Known settings.
const (
	GenerateStatus         Name = "generate_status"
	ProtectContent         Name = "protect_content"
	StartText              Name = "start_text"
	ForceText              Name = "force_text"
	StartPhotoURL          Name = "start_photo_url"
	ForcePhotoURL          Name = "force_photo_url"
	Admins                 Name = "admins"
	FsubChats              Name = "fsub_chats"
	SponsorEnabled         Name = "sponsor_enabled"
	SponsorText            Name = "sponsor_text"
	SponsorPhotoURL        Name = "sponsor_photo_url"
	CustomCaptionEnabled   Name = "custom_caption_enabled"
	CustomCaptionTemplate  Name = "custom_caption_template"
	DatabaseChatIDOverride Name = "database_chat_id_override"
)

// Definition declares a setting's kind and the encoded value read before the first write.
type Definition struct {
	Kind    Kind
	Default string
}

// Definitions returns the catalogue of settings. Start and force texts default
// to the configured copy.
func Definitions(startText, forceText string) map[Name]Definition {
	return map[Name]Definition{
		GenerateStatus:         {Kind: KindFlag, Default: "true"},
		ProtectContent:         {Kind: KindFlag, Default: "false"},
		StartText:              {Kind: KindText, Default: startText},
		ForceText:              {Kind: KindText, Default: forceText},
		StartPhotoURL:          {Kind: KindText},
		ForcePhotoURL:          {Kind: KindText},
		Admins:                 {Kind: KindList},
		FsubChats:              {Kind: KindList},
		SponsorEnabled:         {Kind: KindFlag, Default: "false"},
		SponsorText:            {Kind: KindText},
		SponsorPhotoURL:        {Kind: KindText},
		CustomCaptionEnabled:   {Kind: KindFlag, Default: "false"},
		CustomCaptionTemplate:  {Kind: KindText},
		DatabaseChatIDOverride: {Kind: KindInt},
	}
}
