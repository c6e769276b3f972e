// Package aierr turns raw provider failures into stable categories with
// user-facing messages. The UI strings are Vietnamese, carried over from the
// product's original interface.
package aierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Category is the normalized failure class.
type Category string

const (
	CategoryNetwork       Category = "network"
	CategoryMalformedKey  Category = "malformed-key"
	CategoryInvalidKey    Category = "invalid-key"
	CategoryQuota         Category = "quota"
	CategoryBlocked       Category = "content-blocked"
	CategoryProviderError Category = "provider-error"
	CategoryUnknown       Category = "unknown"
)

// Sentinels raised below the normalizer. They live here so that the provider
// gateway and this package agree without an import cycle.
var (
	// ErrMalformedKey marks a credential that cannot be placed in an HTTP
	// header (control or non-ASCII bytes), detected before any request.
	ErrMalformedKey = errors.New("api key contains invalid characters")
	// ErrNoKey marks a call attempted with no stored key for the provider.
	ErrNoKey = errors.New("no api key configured")
)

// MalformedKey reports whether a credential contains bytes that cannot
// appear in an HTTP header value. Callers reject such keys before building
// a request so the failure is attributable to the key, not the network.
func MalformedKey(key string) bool {
	for i := 0; i < len(key); i++ {
		if key[i] < 0x21 || key[i] > 0x7e {
			return true
		}
	}
	return false
}

// AIError is a classified failure. Message is ready for direct display;
// the original cause stays reachable through Unwrap.
type AIError struct {
	Category Category
	Message  string
	Action   string
	Err      error
}

func (e *AIError) Error() string { return e.Message }

func (e *AIError) Unwrap() error { return e.Err }

// apiErrorBody matches both the Gemini and the OpenAI error envelope.
type apiErrorBody struct {
	Error *apiErrorDetail `json:"error"`
}

type apiErrorDetail struct {
	Code    flexCode `json:"code"`
	Status  string   `json:"status"`
	Message string   `json:"message"`
}

// flexCode absorbs both shapes of the "code" field: Gemini sends an integer
// (429), OpenAI a string ("invalid_api_key").
type flexCode string

func (c *flexCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = flexCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*c = flexCode(n.String())
		return nil
	}
	*c = ""
	return nil
}

func (c flexCode) String() string { return string(c) }

// Normalize classifies err for the user. action is the operation being
// attempted, in Vietnamese infinitive form ("tạo kịch bản"), and is woven
// into the fallback message. Classification runs in a fixed order; every
// stage that involves parsing tolerates failure and falls through.
func Normalize(err error, action string) *AIError {
	if err == nil {
		return nil
	}
	if ai := (*AIError)(nil); errors.As(err, &ai) {
		return ai
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	// Transport failures first: they say nothing about the key or quota.
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) || strings.Contains(lower, "failed to fetch") {
		return &AIError{
			Category: CategoryNetwork,
			Message:  "Lỗi mạng. Vui lòng kiểm tra kết nối internet của bạn và thử lại.",
			Action:   action,
			Err:      err,
		}
	}

	if errors.Is(err, ErrMalformedKey) {
		return &AIError{
			Category: CategoryMalformedKey,
			Message:  "Lỗi yêu cầu mạng: API key có thể chứa ký tự không hợp lệ. Vui lòng đảm bảo API key của bạn không chứa ký tự đặc biệt hoặc khoảng trắng bị sao chép nhầm.",
			Action:   action,
			Err:      err,
		}
	}

	// Gemini embeds its error JSON somewhere inside the message text.
	if start := strings.Index(msg, "{"); start > -1 {
		var body apiErrorBody
		if json.Unmarshal([]byte(msg[start:]), &body) == nil && body.Error != nil {
			detail := body.Error
			if detail.Code.String() == "429" || detail.Status == "RESOURCE_EXHAUSTED" {
				return &AIError{
					Category: CategoryQuota,
					Message:  "Bạn đã vượt quá giới hạn yêu cầu (Quota) của Gemini. Vui lòng đợi và thử lại, hoặc kiểm tra gói cước của bạn.",
					Action:   action,
					Err:      err,
				}
			}
			if (detail.Status == "INVALID_ARGUMENT" && strings.Contains(strings.ToLower(detail.Message), "api key not valid")) ||
				strings.Contains(lower, "api_key_invalid") {
				return &AIError{
					Category: CategoryInvalidKey,
					Message:  "API Key Gemini không hợp lệ hoặc đã bị thu hồi. Vui lòng kiểm tra lại.",
					Action:   action,
					Err:      err,
				}
			}
			// The OpenAI envelope also lands here when the whole message is
			// JSON, so route string codes before labelling it a Gemini error.
			switch detail.Code.String() {
			case "invalid_api_key":
				return &AIError{
					Category: CategoryInvalidKey,
					Message:  "API Key OpenAI không hợp lệ hoặc đã bị thu hồi. Vui lòng kiểm tra lại.",
					Action:   action,
					Err:      err,
				}
			case "insufficient_quota":
				return &AIError{
					Category: CategoryQuota,
					Message:  "Tài khoản OpenAI của bạn đã hết tín dụng. Vui lòng kiểm tra thanh toán của bạn.",
					Action:   action,
					Err:      err,
				}
			}
			providerMsg := detail.Message
			if providerMsg == "" {
				raw, _ := json.Marshal(detail)
				providerMsg = string(raw)
			}
			label := "Gemini"
			if strings.HasPrefix(strings.TrimSpace(msg), "{") || strings.Contains(lower, "openai") {
				label = "OpenAI"
			}
			return &AIError{
				Category: CategoryProviderError,
				Message:  fmt.Sprintf("Lỗi từ %s: %s", label, providerMsg),
				Action:   action,
				Err:      err,
			}
		}
	}

	if strings.Contains(lower, "api key not valid") {
		return &AIError{
			Category: CategoryInvalidKey,
			Message:  "API Key không hợp lệ hoặc đã bị thu hồi. Vui lòng kiểm tra lại.",
			Action:   action,
			Err:      err,
		}
	}
	if strings.Contains(lower, "safety") {
		return &AIError{
			Category: CategoryBlocked,
			Message:  "Yêu cầu của bạn đã bị chặn vì lý do an toàn. Vui lòng điều chỉnh chủ đề hoặc từ khóa.",
			Action:   action,
			Err:      err,
		}
	}

	return &AIError{
		Category: CategoryUnknown,
		Message:  fmt.Sprintf("Không thể %s. Chi tiết: %s", action, msg),
		Action:   action,
		Err:      err,
	}
}

// IsQuota reports whether err normalizes to the quota category. The key
// validator treats quota failures as proof the key authenticated.
func IsQuota(err error) bool {
	if err == nil {
		return false
	}
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "resource_exhausted") || strings.Contains(lower, "429") {
		return true
	}
	return Normalize(err, "").Category == CategoryQuota
}
