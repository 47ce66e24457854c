// Package bot holds assistant profiles: identity, model parameters, and
// the capability switches that gate what the studio lets each profile do.
package bot

import (
	"time"

	"github.com/google/uuid"
)

// Status values for a profile's lifecycle.
const (
	StatusActive   = "active"
	StatusDraft    = "draft"
	StatusArchived = "archived"
)

// Capability names one optional feature a profile may enable.
type Capability string

const (
	CapPreviewCode     Capability = "preview_code"
	CapImageGen        Capability = "image_gen"
	CapAudioGen        Capability = "audio_gen"
	CapVideoGen        Capability = "video_gen"
	CapSearchGrounding Capability = "search_grounding"
	CapLiveVoice       Capability = "live_voice"
)

// KnowledgeEntry is one snippet of reference material attached to a
// profile, injected into the system prompt at chat time.
type KnowledgeEntry struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// Bot is one assistant profile. JSON field names match the project
// export format consumed by the web client.
type Bot struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	Avatar            string           `json:"avatar"`
	Status            string           `json:"status"`
	SystemInstruction string           `json:"systemInstruction"`
	KnowledgeBase     []KnowledgeEntry `json:"knowledgeBase"`
	UsageCount        int              `json:"usageCount"`
	LastActive        string           `json:"lastActive"`

	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"topP"`
	TopK        float32 `json:"topK"`

	CanPreviewCode     bool `json:"canPreviewCode"`
	HasImageGen        bool `json:"hasImageGen"`
	HasAudioGen        bool `json:"hasAudioGen"`
	HasVideoGen        bool `json:"hasVideoGen"`
	HasSearchGrounding bool `json:"hasSearchGrounding"`
	HasLiveVoice       bool `json:"hasLiveVoice"`

	ContactEmail string `json:"contactEmail,omitempty"`
	Website      string `json:"website,omitempty"`
	OtherInfo    string `json:"otherInfo,omitempty"`
}

// Has reports whether the named capability is enabled on this profile.
func (b Bot) Has(c Capability) bool {
	switch c {
	case CapPreviewCode:
		return b.CanPreviewCode
	case CapImageGen:
		return b.HasImageGen
	case CapAudioGen:
		return b.HasAudioGen
	case CapVideoGen:
		return b.HasVideoGen
	case CapSearchGrounding:
		return b.HasSearchGrounding
	case CapLiveVoice:
		return b.HasLiveVoice
	}
	return false
}

// Seed returns the profile a fresh installation starts with.
func Seed() Bot {
	return Bot{
		ID:                "default-bot",
		Name:              "Gemini Technical Studio",
		Description:       "Elite architecture and engineering intelligence assistant.",
		Avatar:            "https://api.dicebear.com/7.x/bottts/svg?seed=studio&backgroundColor=f4f4f5",
		Status:            StatusActive,
		SystemInstruction: "You are a senior principal engineer. Focus on clean code and system design.",
		KnowledgeBase:     []KnowledgeEntry{},
		UsageCount:        0,
		LastActive:        time.Now().UTC().Format(time.RFC3339),
		Temperature:       0.7,
		TopP:              0.95,
		TopK:              40,

		CanPreviewCode:     true,
		HasImageGen:        true,
		HasAudioGen:        false,
		HasVideoGen:        true,
		HasSearchGrounding: true,
		HasLiveVoice:       true,
	}
}

// NewID mints an identifier for a freshly created profile.
func NewID() string {
	return uuid.NewString()
}
