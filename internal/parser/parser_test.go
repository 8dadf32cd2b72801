package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

func TestExtractObject_FencedBlock(t *testing.T) {
	t.Parallel()
	text := "Here is my answer:\n```json\n{\"score\": 7.5}\n```\nHope it helps."
	raw, err := ExtractObject(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 7.5}`, string(raw))
}

func TestExtractObject_FencedWinsOverLaterObject(t *testing.T) {
	t.Parallel()
	// The fenced block must win even when another object appears earlier in
	// the prose.
	text := "draft: {\"score\": 1}\n```json\n{\"score\": 9}\n```"
	raw, err := ExtractObject(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 9}`, string(raw))
}

func TestExtractObject_DirectObject(t *testing.T) {
	t.Parallel()
	raw, err := ExtractObject(`  {"relevant": true, "reason": "匹配"}  `)
	require.NoError(t, err)
	assert.JSONEq(t, `{"relevant": true, "reason": "匹配"}`, string(raw))
}

func TestExtractObject_BuriedInProse(t *testing.T) {
	t.Parallel()
	text := `经过分析，结论如下 {"relevant": false, "reason": "属于排除类型"} 以上。`
	raw, err := ExtractObject(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"relevant": false, "reason": "属于排除类型"}`, string(raw))
}

func TestExtractObject_NestedWithBracesInStrings(t *testing.T) {
	t.Parallel()
	text := `result: {"reason": "uses {braces} inside", "detail": {"score": 8}, "relevant": true}`
	raw, err := ExtractObject(text)
	require.NoError(t, err)
	var obj map[string]any
	require.NoError(t, json.Unmarshal(raw, &obj))
	assert.Equal(t, true, obj["relevant"])
}

func TestExtractObject_CommentsAndTrailingCommas(t *testing.T) {
	t.Parallel()
	text := `{
		"score": 6, // overall
		"recommendation": "推荐",
	}`
	raw, err := ExtractObject(text)
	require.NoError(t, err)
	var obj map[string]any
	require.NoError(t, json.Unmarshal(raw, &obj))
	assert.Equal(t, 6.0, obj["score"])
}

func TestExtractObject_NoObject(t *testing.T) {
	t.Parallel()
	_, err := ExtractObject("这个岗位看起来不错，但我无法给出结构化结论。")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestParse_RequiredFields(t *testing.T) {
	t.Parallel()
	_, err := Parse(`{"reason": "ok"}`, SchemaScreening)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)

	obj, err := Parse(`{"relevant": true}`, SchemaScreening)
	require.NoError(t, err)
	assert.Equal(t, true, obj["relevant"])
}

func TestBalancedObject_Truncated(t *testing.T) {
	t.Parallel()
	// An unterminated object yields nothing rather than a bogus slice.
	assert.Empty(t, balancedObject(`{"score": 5, "reason": "cut off`))
}
