package attractions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPlaceKeyword_EveryEntry(t *testing.T) {
	for _, kw := range placeKeywords {
		assert.True(t, HasPlaceKeyword(kw), "keyword %q not recognised", kw)
		assert.True(t, HasPlaceKeyword("著名"+kw+"附近"), "embedded keyword %q not recognised", kw)
	}
}

func TestHasPlaceKeyword_Negative(t *testing.T) {
	for _, text := range []string{"", "值得一去", "你好", "hello world"} {
		assert.False(t, HasPlaceKeyword(text), text)
	}
}

func TestNonPlaceCategoryOf(t *testing.T) {
	tests := []struct {
		text     string
		category string
	}{
		{"推荐行程", "itinerary"},
		{"旅游攻略", "itinerary"},
		{"小贴士", "itinerary"},
		{"第3天", "time"},
		{"第二天", "time"},
		{"下午茶", "time"},
		{"交通方式", "transport"},
		{"地铁出行", "transport"},
		{"门票信息", "cost"},
		{"预算参考", "cost"},
		{"景区概述", "meta"},
		{"亮点", "meta"},
		{"如何前往", "question"},
		{"当地美食", "question"},
		{"希望您旅途愉快", "greeting"},
		{"感谢使用", "greeting"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := nonPlaceCategoryOf(tt.text)
			assert.True(t, ok)
			assert.Equal(t, tt.category, got)
			assert.True(t, IsNonPlace(tt.text))
		})
	}
}

func TestIsNonPlace_AnchoredCategories(t *testing.T) {
	// question and greeting words only count at the start of the text
	assert.False(t, IsNonPlace("前往当地"))
	assert.False(t, IsNonPlace("我希望"))
	assert.False(t, IsNonPlace("故宫博物院"))
	assert.False(t, IsNonPlace("八达岭长城"))
}
