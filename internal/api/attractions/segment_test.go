package attractions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSections(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "numbered list",
			text: "1. 故宫博物院\n2. 天坛\n3. 颐和园",
			want: []string{"1. 故宫博物院", "天坛", "颐和园"},
		},
		{
			name: "numbered list with blank lines and indentation",
			text: "推荐如下：\n\n  1. 故宫博物院\n  2. 天坛公园",
			want: []string{"推荐如下：", "故宫博物院", "天坛公园"},
		},
		{
			name: "single numbered item falls back to paragraphs",
			text: "介绍\n1. 故宫博物院",
			want: []string{"介绍\n1. 故宫博物院"},
		},
		{
			name: "paragraphs",
			text: "故宫博物院\n地址：北京\n\n\n天坛公园",
			want: []string{"故宫博物院\n地址：北京", "天坛公园"},
		},
		{
			name: "windows line endings",
			text: "故宫博物院\r\n\r\n天坛公园",
			want: []string{"故宫博物院", "天坛公园"},
		},
		{
			name: "short fragments dropped",
			text: "颐和园\n\n1\n\nab\n\n天坛",
			want: []string{"颐和园", "天坛"},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSections(tt.text))
		})
	}
}
