package extract

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jhsu-tw/tianji/internal/providers"
)

func identityJSON(t *testing.T, payload map[string]any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return b
}

func TestExtractIdentity(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = identityJSON(t, map[string]any{
		"has_birthdate": true,
		"name":          "王小明",
		"gender":        "male",
		"birthdate":     "1990年7月12日",
		"english_name":  nil,
	})

	id, err := ExtractIdentity(context.Background(), mock, "王小明 男 1990年7月12日", Options{})
	if err != nil {
		t.Fatalf("ExtractIdentity() error = %v", err)
	}
	if id.Name != "王小明" || id.Gender != "male" {
		t.Errorf("identity = %+v", id)
	}
	if id.Birthdate != "1990/07/12" {
		t.Errorf("Birthdate = %q, want 1990/07/12", id.Birthdate)
	}

	req := mock.LastRequest()
	if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
		t.Errorf("request did not carry a json_schema response format: %+v", req.ResponseFormat)
	}
}

func TestExtractIdentityGenderNormalization(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"male", "male"},
		{"男", "male"},
		{"先生", "male"},
		{"M", "male"},
		{"female", "female"},
		{"女性", "female"},
		{"小姐", "female"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			mock := providers.NewMockClient()
			mock.ResponseJSON = identityJSON(t, map[string]any{
				"has_birthdate": true,
				"name":          "李小華",
				"gender":        tt.raw,
				"birthdate":     "1985/03/25",
			})
			id, err := ExtractIdentity(context.Background(), mock, "input", Options{})
			if err != nil {
				t.Fatalf("ExtractIdentity() error = %v", err)
			}
			if id.Gender != tt.want {
				t.Errorf("Gender = %q, want %q", id.Gender, tt.want)
			}
		})
	}
}

func TestExtractIdentityMissingFields(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = identityJSON(t, map[string]any{
		"has_birthdate": false,
		"name":          "王小明",
		"gender":        nil,
		"birthdate":     nil,
		"error_message": "缺少性別與生日",
	})

	_, err := ExtractIdentity(context.Background(), mock, "我叫王小明", Options{})
	var mfe *MissingFieldsError
	if !errors.As(err, &mfe) {
		t.Fatalf("error = %v, want *MissingFieldsError", err)
	}
	if !errors.Is(err, ErrMissingFields) {
		t.Error("error does not unwrap to ErrMissingFields")
	}
	want := []string{"性別", "生日"}
	if len(mfe.Missing) != len(want) {
		t.Fatalf("Missing = %v, want %v", mfe.Missing, want)
	}
	for i, f := range want {
		if mfe.Missing[i] != f {
			t.Errorf("Missing[%d] = %q, want %q", i, mfe.Missing[i], f)
		}
	}
	if !strings.Contains(mfe.Error(), "缺少") {
		t.Errorf("Error() = %q", mfe.Error())
	}
}

func TestExtractIdentityRequireEnglishName(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = identityJSON(t, map[string]any{
		"has_birthdate": true,
		"name":          "賴冠儒",
		"gender":        "female",
		"birthdate":     "1992/01/08",
		"english_name":  nil,
	})

	_, err := ExtractIdentity(context.Background(), mock, "input", Options{RequireEnglishName: true})
	var mfe *MissingFieldsError
	if !errors.As(err, &mfe) {
		t.Fatalf("error = %v, want *MissingFieldsError", err)
	}
	if len(mfe.Missing) != 1 || mfe.Missing[0] != "護照英文名字" {
		t.Errorf("Missing = %v", mfe.Missing)
	}

	mock = providers.NewMockClient()
	mock.ResponseJSON = identityJSON(t, map[string]any{
		"has_birthdate": true,
		"name":          "賴冠儒",
		"gender":        "female",
		"birthdate":     "1992/01/08",
		"english_name":  "lai guan ru",
	})
	id, err := ExtractIdentity(context.Background(), mock, "input", Options{RequireEnglishName: true})
	if err != nil {
		t.Fatalf("ExtractIdentity() error = %v", err)
	}
	if id.EnglishName != "LAI GUAN RU" {
		t.Errorf("EnglishName = %q, want LAI GUAN RU", id.EnglishName)
	}
}

func TestExtractIdentityUnavailable(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true

	_, err := ExtractIdentity(context.Background(), mock, "input", Options{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestExtractIdentityMalformedResponse(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "not json at all"

	_, err := ExtractIdentity(context.Background(), mock, "input", Options{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestExtractIdentitySchemaViolation(t *testing.T) {
	mock := providers.NewMockClient()
	// has_birthdate as a string violates the schema.
	mock.ResponseJSON = json.RawMessage(`{"has_birthdate":"yes","name":"王小明","gender":"male","birthdate":"1990/07/12"}`)

	_, err := ExtractIdentity(context.Background(), mock, "input", Options{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestInterpret(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "## 標題\n**重點**內容__強調__"

	text, err := Interpret(context.Background(), mock, InterpretRequest{
		System: "system prompt",
		User:   "user prompt",
	})
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if strings.Contains(text, "**") || strings.Contains(text, "##") || strings.Contains(text, "__") {
		t.Errorf("markdown markers not stripped: %q", text)
	}
	if !strings.Contains(text, "重點") {
		t.Errorf("content lost: %q", text)
	}
}

func TestInterpretUnavailable(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true

	_, err := Interpret(context.Background(), mock, InterpretRequest{System: "s", User: "u"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestInterpretEmptyResponse(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "   "

	_, err := Interpret(context.Background(), mock, InterpretRequest{System: "s", User: "u"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}
