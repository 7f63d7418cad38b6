package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ellavondegurechaff/gohye-trades/backend/models"
)

const (
	SessionCookieName   = "gohye_session"
	SessionHeaderScheme = "Session"

	signatureSize = sha256.Size
)

var (
	ErrNoSession      = errors.New("no session provided")
	ErrSessionExpired = errors.New("session expired")
)

// SessionService verifies the signed session tokens issued by the auth
// service. Tokens are base64url(json || hmac-sha256(json)).
type SessionService struct {
	key []byte
	now func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(sessionKey string) *SessionService {
	return &SessionService{
		key: []byte(sessionKey),
		now: time.Now,
	}
}

// GetSession retrieves and validates the user session from the request. The
// cookie wins over the Authorization header when both are present.
func (s *SessionService) GetSession(c *fiber.Ctx) (*models.UserSession, error) {
	token := c.Cookies(SessionCookieName)
	if token == "" {
		token = bearerToken(c.Get(fiber.HeaderAuthorization))
	}
	if token == "" {
		return nil, ErrNoSession
	}
	return s.Decode(token)
}

// Decode verifies token and returns the session it carries
func (s *SessionService) Decode(token string) (*models.UserSession, error) {
	sessionData, err := s.verifyAndDecodeData(token)
	if err != nil {
		return nil, fmt.Errorf("invalid session signature: %w", err)
	}

	var userSession models.UserSession
	if err := json.Unmarshal(sessionData, &userSession); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if userSession.DiscordID == "" {
		return nil, fmt.Errorf("session has no user id")
	}
	if s.now().After(userSession.ExpiresAt) {
		return nil, ErrSessionExpired
	}

	return &userSession, nil
}

// Encode signs userSession. The web tier never issues sessions itself; this
// is the inverse of Decode for tooling and tests.
func (s *SessionService) Encode(userSession *models.UserSession) (string, error) {
	sessionData, err := json.Marshal(userSession)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.signData(sessionData)
}

// signData signs data using HMAC-SHA256
func (s *SessionService) signData(data []byte) (string, error) {
	if len(s.key) == 0 {
		return "", fmt.Errorf("session key not configured")
	}

	h := hmac.New(sha256.New, s.key)
	h.Write(data)
	signature := h.Sum(nil)

	combined := make([]byte, 0, len(data)+len(signature))
	combined = append(combined, data...)
	combined = append(combined, signature...)

	return base64.URLEncoding.EncodeToString(combined), nil
}

// verifyAndDecodeData verifies the signature and returns the original data
func (s *SessionService) verifyAndDecodeData(encodedData string) ([]byte, error) {
	if len(s.key) == 0 {
		return nil, fmt.Errorf("session key not configured")
	}

	combined, err := base64.URLEncoding.DecodeString(encodedData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}

	// signature is the last 32 bytes
	if len(combined) <= signatureSize {
		return nil, fmt.Errorf("invalid data length")
	}

	data := combined[:len(combined)-signatureSize]
	receivedSignature := combined[len(combined)-signatureSize:]

	h := hmac.New(sha256.New, s.key)
	h.Write(data)
	expectedSignature := h.Sum(nil)

	if !hmac.Equal(receivedSignature, expectedSignature) {
		return nil, fmt.Errorf("signature verification failed")
	}

	return data, nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, SessionHeaderScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}
