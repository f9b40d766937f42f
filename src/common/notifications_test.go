package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderNotice(t *testing.T) {
	cases := []struct {
		key      string
		args     []any
		contains []string
	}{
		{
			key:      "agreement-expired",
			args:     []any{"Baker Street Flat", "2026-08-31"},
			contains: []string{"Baker Street Flat", "2026-08-31"},
		},
		{
			key:      "booking-accepted",
			args:     []any{"Baker Street Flat"},
			contains: []string{"Baker Street Flat"},
		},
		{
			key:      "payment-completed",
			args:     []any{1250.0, "USD"},
			contains: []string{"1250.00 USD"},
		},
	}
	for _, c := range cases {
		t.Run(c.key, func(t *testing.T) {
			notice, err := RenderNotice(c.key, c.args...)
			assert.NoError(t, err)
			assert.Equal(t, noticeTemplates[c.key].Title, notice.Title)
			for _, fragment := range c.contains {
				assert.Contains(t, notice.Body, fragment)
			}
		})
	}
}

func TestRenderNoticeUnknownKey(t *testing.T) {
	notice, err := RenderNotice("does-not-exist")

	assert.Error(t, err)
	assert.Nil(t, notice)
}

func TestRenderNoticeLeavesTemplatesUntouched(t *testing.T) {
	_, err := RenderNotice("agreement-expired", "Baker Street Flat", "2026-08-31")
	assert.NoError(t, err)

	tpl := noticeTemplates["agreement-expired"]
	assert.True(t, strings.Contains(tpl.Body, "%s"))
	assert.NotContains(t, tpl.Body, "Baker Street Flat")
}
