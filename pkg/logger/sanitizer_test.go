package logger

import (
	"testing"
)

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"空字符串", "", ""},
		{"短token", "abc", "***"},
		{"7字符", "1234567", "***"},
		{"正好8字符", "12345678", "12345678"},
		{"OpenAI key", "sk-proj1234567890", "sk-p*********7890"},
		{"Telegram bot token", "123456:ABC-DEF1234ghIkl", "1234***************hIkl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskToken(tt.input); got != tt.want {
				t.Errorf("MaskToken(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeArgs(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want []any
	}{
		{
			name: "空参数",
			args: []any{},
			want: []any{},
		},
		{
			name: "无敏感信息",
			args: []any{"path", "/photos/IMG_001.jpg", "stage", "cheap"},
			want: []any{"path", "/photos/IMG_001.jpg", "stage", "cheap"},
		},
		{
			name: "api_key和bot_token脱敏",
			args: []any{"provider", "openai", "api_key", "sk-abc123def456", "bot_token", "1234567890abcdef"},
			want: []any{"provider", "openai", "api_key", "sk-a*******f456", "bot_token", "1234********cdef"},
		},
		{
			name: "计数字段保持原值",
			args: []any{"tokens_used", 120, "prompt_tokens", 80},
			want: []any{"tokens_used", 120, "prompt_tokens", 80},
		},
		{
			name: "非字符串敏感值",
			args: []any{"authorization", 42},
			want: []any{"authorization", "***MASKED***"},
		},
		{
			name: "奇数参数",
			args: []any{"model", "gpt-4o", "token"},
			want: []any{"model", "gpt-4o", "token"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeArgs(tt.args...)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SanitizeArgs()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"api_key", true},
		{"apiKey", true},
		{"bot_token", true},
		{"Authorization", true},
		{"secret", true},
		{"path", false},
		{"model", false},
		{"tokens", false},
		{"tokens_used", false},
		{"token_estimate", false},
		{"total_tokens", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsSensitiveKey(tt.key); got != tt.want {
				t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"空字符串", "", ""},
		{"无敏感信息", "rate limited on gpt-4o-mini", "rate limited on gpt-4o-mini"},
		{"Bearer头", "request failed: Bearer abcdef123456", "request failed: Bearer ***TOKEN***"},
		{"错误正文里的key", `{"error":"Incorrect API key provided: sk-abcdefgh12345678"}`, `{"error":"Incorrect API key provided: sk-***"}`},
		{"api_key键值", "api_key=abc123 model=gpt-4o", "api_key=*** model=gpt-4o"},
		{"password键值", "password=hunter22 user=bob", "password=*** user=bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeString(tt.input); got != tt.want {
				t.Errorf("SanitizeString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func BenchmarkSanitizeArgs(b *testing.B) {
	args := []any{
		"path", "/photos/IMG_001.jpg",
		"api_key", "sk-1234567890",
		"tokens_used", 120,
	}
	for i := 0; i < b.N; i++ {
		SanitizeArgs(args...)
	}
}
