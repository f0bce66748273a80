package attractions

import (
	"regexp"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// nonPlaceCategory is a family of phrases that frame an itinerary rather than
// name a place. A first line matching any category never becomes a name.
type nonPlaceCategory struct {
	name    string
	pattern *regexp.Regexp
}

var nonPlaceCategories = []nonPlaceCategory{
	{name: "itinerary", pattern: regexp.MustCompile(`行程|规划|总结|建议|推荐|注意|提醒|小贴士|攻略`)},
	{name: "time", pattern: regexp.MustCompile(`第[0-9一二三四五六七八九十]+天|上午|下午|晚上|早上|中午|时间|安排`)},
	{name: "transport", pattern: regexp.MustCompile(`交通|路线|导航|距离|车程|步行|地铁|公交`)},
	{name: "cost", pattern: regexp.MustCompile(`费用|价格|门票|花费|预算|成本`)},
	{name: "meta", pattern: regexp.MustCompile(`总体|整体|概述|介绍|说明|详情|特色|亮点`)},
	{name: "question", pattern: regexp.MustCompile(`^(?:如何|怎么|为什么|什么|哪里|当地)`)},
	{name: "greeting", pattern: regexp.MustCompile(`^(?:希望|祝您|欢迎|感谢|如果|需要)`)},
}

// placeKeywords are the place-type nouns, suffixes and landmark names that a
// first line must contain to be taken as an attraction name.
var placeKeywords = []string{
	// scenic areas and parks
	"景区", "景点", "公园", "广场",
	// religious and cultural sites
	"寺庙", "教堂", "博物馆", "纪念馆",
	// historic and shopping streets
	"古城", "古镇", "老街", "步行街", "商业街", "购物中心",
	// natural features
	"山", "湖", "河", "海", "岛", "峡", "谷", "洞", "泉",
	// well-known landmarks
	"长城", "故宫", "天安门", "颐和园", "天坛", "圆明园",
	// buildings and structures
	"大厦", "中心", "塔", "桥", "门", "城", "府", "院",
	// administrative units and streets
	"村", "镇", "县", "区", "路", "街", "巷",
}

// vocabulary answers "does the text contain any of these words" with a single
// automaton pass.
type vocabulary struct {
	words   []string
	matcher ahocorasick.AhoCorasick
}

func newVocabulary(words []string) vocabulary {
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		MatchKind: ahocorasick.LeftMostFirstMatch,
		DFA:       true,
	})
	return vocabulary{words: words, matcher: builder.Build(words)}
}

func (v vocabulary) containsAny(text string) bool {
	if text == "" || len(v.words) == 0 {
		return false
	}
	return len(v.matcher.FindAll(text)) > 0
}

var placeVocabulary = newVocabulary(placeKeywords)

// IsNonPlace reports whether text falls into one of the itinerary, time,
// transport, cost, meta, question or greeting categories.
func IsNonPlace(text string) bool {
	_, ok := nonPlaceCategoryOf(text)
	return ok
}

func nonPlaceCategoryOf(text string) (string, bool) {
	for _, c := range nonPlaceCategories {
		if c.pattern.MatchString(text) {
			return c.name, true
		}
	}
	return "", false
}

// HasPlaceKeyword reports whether text contains a place-type marker.
func HasPlaceKeyword(text string) bool {
	return placeVocabulary.containsAny(text)
}
