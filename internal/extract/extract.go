// Package extract wraps the LLM calls the conversation engine depends on:
// structured identity extraction from free-form user text, and single
// round-trip interpretation prompts.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhsu-tw/tianji/internal/dates"
	"github.com/jhsu-tw/tianji/internal/providers"
)

// ErrUnavailable indicates a transport, timeout, or parse failure at the LLM
// boundary. Callers keep session state unchanged so the same call can be
// retried.
var ErrUnavailable = errors.New("llm unavailable")

// ErrMissingFields indicates the user's text did not contain all required
// identity fields. Unwrapped from *MissingFieldsError.
var ErrMissingFields = errors.New("missing identity fields")

// MissingFieldsError lists the identity fields absent from the input,
// using the display names shown back to the user.
type MissingFieldsError struct {
	Missing []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("缺少%s資訊", strings.Join(e.Missing, "、"))
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }

// Identity holds the extracted and normalized user identity.
type Identity struct {
	Name        string `json:"name"`
	Gender      string `json:"gender"` // "male" or "female"
	Birthdate   string `json:"birthdate"`
	EnglishName string `json:"english_name,omitempty"`
}

const (
	fieldName        = "姓名"
	fieldGender      = "性別"
	fieldBirthdate   = "生日"
	fieldEnglishName = "護照英文名字"
)

const extractTimeout = 30 * time.Second

// identitySchema constrains the extraction response. All value fields are
// nullable so the model can report partial information.
var identitySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"has_birthdate": {"type": "boolean"},
		"name": {"type": ["string", "null"]},
		"gender": {"type": ["string", "null"]},
		"birthdate": {"type": ["string", "null"]},
		"english_name": {"type": ["string", "null"]},
		"error_message": {"type": ["string", "null"]}
	},
	"required": ["has_birthdate", "name", "gender", "birthdate"],
	"additionalProperties": false
}`)

type identityPayload struct {
	HasBirthdate bool    `json:"has_birthdate"`
	Name         *string `json:"name"`
	Gender       *string `json:"gender"`
	Birthdate    *string `json:"birthdate"`
	EnglishName  *string `json:"english_name"`
	ErrorMessage *string `json:"error_message"`
}

const identitySystemPrompt = `你是一位專業的資訊擷取助理。請從使用者輸入中提取姓名、性別與生日資訊。

生日格式不限，可能的格式包括但不限於：
- 1990年7月12日
- 1990/07/12
- 1990-07-12
- 1990.07.12
- 民國79年7月12日
- 1990 年 7 月 12 日

性別可能以以下方式表達，請統一轉換為標準格式：
- 男、男性、先生、M、male → 轉換為 "male"
- 女、女性、小姐、F、female → 轉換為 "female"

請以 JSON 格式回應，包含：
{
    "has_birthdate": true/false,
    "name": "姓名或null",
    "gender": "male/female/null",
    "birthdate": "YYYY/MM/DD格式的生日或null",
    "english_name": "護照英文名字（統一轉為全大寫格式）或null",
    "error_message": "如果資訊不完整，說明缺少什麼"
}

注意事項：
1. 如果輸入中沒有明確的年月日資訊，has_birthdate 應為 false
2. 生日必須轉換為 YYYY/MM/DD 格式
3. 民國年份需要轉換為西元年份（民國年+1911）
4. 護照英文名字由英文字母組成，統一轉換為全大寫；如果輸入中沒有則填 null
5. 如果只有部分資訊（如只有姓名沒有生日），也要在對應欄位填入已知資訊`

// Options adjusts extraction requirements per module and tier.
type Options struct {
	// RequireEnglishName adds the passport english name to the required
	// field set. Used by the paid life-number flow for letter-based numbers.
	RequireEnglishName bool
}

// ExtractIdentity pulls name, gender, and birthdate out of free-form user
// text with one structured LLM call. On success the birthdate is normalized
// to YYYY/MM/DD. Absent fields produce a *MissingFieldsError; transport or
// parse failures wrap ErrUnavailable.
func ExtractIdentity(ctx context.Context, llm providers.LLMClient, text string, opts Options) (Identity, error) {
	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: identitySystemPrompt},
			{Role: "user", Content: "請從以下輸入中提取姓名、性別與生日資訊：\n" + text},
		},
		Temperature: 0.3,
		MaxTokens:   600,
		Timeout:     extractTimeout,
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			Name:       "identity_extraction",
			JSONSchema: identitySchema,
		},
	}

	result, err := llm.Chat(ctx, req)
	if err != nil {
		return Identity{}, fmt.Errorf("identity extraction: %v: %w", err, ErrUnavailable)
	}

	raw := result.ParsedJSON
	if len(raw) == 0 {
		raw = json.RawMessage(result.Content)
	}

	if err := validateIdentityJSON(raw); err != nil {
		return Identity{}, fmt.Errorf("identity extraction: %v: %w", err, ErrUnavailable)
	}

	var payload identityPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Identity{}, fmt.Errorf("identity extraction: decoding response: %v: %w", err, ErrUnavailable)
	}

	id := Identity{
		Name:        deref(payload.Name),
		Gender:      normalizeGender(deref(payload.Gender)),
		EnglishName: strings.ToUpper(strings.TrimSpace(deref(payload.EnglishName))),
	}

	var missing []string
	if id.Name == "" {
		missing = append(missing, fieldName)
	}
	if id.Gender == "" {
		missing = append(missing, fieldGender)
	}

	birthRaw := deref(payload.Birthdate)
	if !payload.HasBirthdate || birthRaw == "" {
		missing = append(missing, fieldBirthdate)
	} else {
		normalized, err := dates.Normalize(birthRaw)
		if err != nil {
			missing = append(missing, fieldBirthdate)
		} else {
			id.Birthdate = normalized
		}
	}

	if opts.RequireEnglishName && id.EnglishName == "" {
		missing = append(missing, fieldEnglishName)
	}

	if len(missing) > 0 {
		return id, &MissingFieldsError{Missing: missing}
	}
	return id, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// normalizeGender maps free-form gender expressions onto male/female.
// Unrecognized values come back empty so they count as missing.
func normalizeGender(g string) string {
	switch strings.ToLower(g) {
	case "male", "m", "男", "男性", "先生":
		return "male"
	case "female", "f", "女", "女性", "小姐":
		return "female"
	}
	return ""
}
