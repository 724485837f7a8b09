package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
)

func TestContainsLink(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "http url", text: "check http://example.com/page", want: true},
		{name: "https url", text: "https://example.com", want: true},
		{name: "www url", text: "visit www.example.com now", want: true},
		{name: "group invite", text: "join chat.whatsapp.com/AbCdEf123", want: true},
		{name: "wa.me link", text: "wa.me/1234567890", want: true},
		{name: "telegram link", text: "t.me/somechannel", want: true},
		{name: "shortener", text: "bit.ly/3xYzAbC", want: true},
		{name: "bare domain", text: "my site is cool-stuff.com", want: true},
		{name: "bare domain with path", text: "see promo.xyz/deal", want: true},
		{name: "uppercase", text: "HTTPS://EXAMPLE.COM", want: true},
		{name: "plain text", text: "hello everyone, how are you", want: false},
		{name: "dot without tld", text: "see you at 10.30 tomorrow", want: false},
		{name: "empty", text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsLink(tt.text))
		})
	}
}

func TestIsSalesContent(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		media entities.MediaKind
		want  bool
	}{
		{name: "keyword with image", text: "for sale, best price", media: entities.MediaImage, want: true},
		{name: "keyword with video", text: "dm for price, limited stock", media: entities.MediaVideo, want: true},
		{name: "keyword without media", text: "for sale, best price", media: entities.MediaNone, want: false},
		{name: "media without keyword", text: "look at my cat", media: entities.MediaImage, want: false},
		{name: "case insensitive", text: "FOR SALE right now", media: entities.MediaImage, want: true},
		{name: "empty text with media", text: "", media: entities.MediaImage, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSalesContent(tt.text, tt.media))
		})
	}
}
