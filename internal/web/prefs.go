package web

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/securecookie"
)

const (
	prefsCookie = "weather-rider"
	prefsMaxAge = 86400 * 365
)

// Prefs keeps the last searched city in a signed cookie.
type Prefs struct {
	codec *securecookie.SecureCookie
}

// NewPrefs signs cookies with key. An empty key gets a random one, which
// means cookies do not survive a restart.
func NewPrefs(key string) *Prefs {
	hashKey := []byte(key)
	if key == "" {
		log.Printf("INFO: SESSION_KEY not set, using a random key")
		hashKey = securecookie.GenerateRandomKey(32)
	}
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(prefsMaxAge)
	return &Prefs{codec: codec}
}

// LastCity returns the remembered city, or "" when there is none or the
// cookie does not verify.
func (p *Prefs) LastCity(c *fiber.Ctx) string {
	raw := c.Cookies(prefsCookie)
	if raw == "" {
		return ""
	}
	var city string
	if err := p.codec.Decode(prefsCookie, raw, &city); err != nil {
		log.Printf("DEBUG: ignoring prefs cookie: %v", err)
		return ""
	}
	return city
}

// SetLastCity remembers city for the next visit.
func (p *Prefs) SetLastCity(c *fiber.Ctx, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil
	}
	encoded, err := p.codec.Encode(prefsCookie, city)
	if err != nil {
		return fmt.Errorf("encode prefs cookie: %w", err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     prefsCookie,
		Value:    encoded,
		Path:     "/",
		MaxAge:   prefsMaxAge,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}
