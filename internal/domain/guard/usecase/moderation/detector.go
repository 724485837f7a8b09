package moderation

import (
	"regexp"
	"strings"

	"github.com/groupwarden/groupwarden/internal/domain/guard/entities"
)

// Warning reason buckets. Each bucket has its own count and threshold.
const (
	ReasonLinks   = "links"
	ReasonSales   = "sales"
	ReasonDefault = "default"
)

// linkPattern matches URLs, invite links and bare domains with common TLDs
var linkPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|wa\.me/\S+|chat\.whatsapp\.com/\S+|t\.me/\S+|bit\.ly/\S+|[\w-]+\.(com|net|org|info|biz|xyz|live|tv|me|link)(/\S*)?)`)

// salesKeywords mark messages that advertise buying or selling. A match only
// counts as a violation when the message also carries image or video media.
var salesKeywords = []string{
	"sell", "sale", "selling", "buy", "buying", "trade", "trading", "swap",
	"swapping", "exchange", "price", "available for sale", "dm for price",
	"account for sale", "selling my account", "who wants to buy", "how much?",
	"$", "₦", "paypal", "btc",
}

// ContainsLink reports whether text matches the link detector
func ContainsLink(text string) bool {
	return linkPattern.MatchString(text)
}

// IsSalesContent reports whether a message trips the sales detector:
// a sales keyword co-occurring with an image or video attachment
func IsSalesContent(text string, media entities.MediaKind) bool {
	if media != entities.MediaImage && media != entities.MediaVideo {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range salesKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
