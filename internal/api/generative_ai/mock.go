package generativeAI

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

var _ Assistant = (*MockAssistant)(nil)

type mockTopic struct {
	keywords []string
	replies  []string
}

// mockTopics are checked in order; the first topic with a keyword in the
// message wins. The last entry has no keywords and is the generic answer.
var mockTopics = []mockTopic{
	{
		keywords: []string{"旅游", "旅行", "景点", "游玩", "出行"},
		replies: []string{
			"我是您的AI旅行助手！🎯 虽然暂时无法访问在线服务，但我可以为您提供一些通用的旅行建议：\n\n• 提前规划行程，预订酒店和交通\n• 查看目的地天气，准备合适衣物\n• 了解当地文化和习俗\n• 准备必要的证件和物品\n• 购买旅行保险确保安全\n\n如果您有具体的目的地，我很乐意为您推荐热门景点！",
			"作为您的旅行助手，我建议您：\n\n🗺️ **行程规划**\n• 确定旅行日期和预算\n• 选择交通方式和住宿\n• 列出必去景点清单\n\n📱 **实用工具**\n• 下载地图和翻译App\n• 备份重要证件照片\n• 准备当地货币\n\n✨ 请告诉我您想去哪里，我会提供更具体的建议！",
		},
	},
	{
		keywords: []string{"北京", "故宫", "天安门", "长城"},
		replies: []string{
			"北京是一座充满历史韵味的城市！🏛️ 推荐您游览：\n\n1. 故宫博物院\n地址：北京市东城区景山前街4号\n经纬度：39.916345,116.397155\n明清皇宫，世界文化遗产。\n\n2. 天安门广场\n地址：北京市东城区东长安街\n经纬度：39.903179,116.397755\n世界最大城市中心广场。\n\n3. 八达岭长城\n地址：北京市延庆区G6京藏高速58号出口\n经纬度：40.3587,116.0154\n万里长城精华段。\n\n4. 颐和园\n地址：北京市海淀区新建宫门路19号\n中国古典园林典范。\n\n需要具体的交通和住宿建议吗？",
		},
	},
	{
		keywords: []string{"上海", "外滩", "东方明珠"},
		replies: []string{
			"上海是国际化大都市！🌃 为您推荐：\n\n1. 东方明珠塔\n地址：上海市浦东新区世纪大道1号\n经纬度：31.239703,121.499755\n上海地标建筑。\n\n2. 人民广场\n地址：上海市黄浦区人民大道\n城市中心的文化地标。\n\n3. 城隍庙\n位于上海市黄浦区方浜中路249号，江南古典园林。\n\n想了解具体的游玩路线吗？",
		},
	},
	{
		keywords: []string{"你好", "hello", "hi", "早上好", "下午好", "晚上好"},
		replies: []string{
			"您好！我是您的AI旅行助手 🤖✨\n\n虽然目前无法连接到在线AI服务，但我依然可以帮助您：\n\n📍 **行程规划**\n• 个性化旅行建议\n• 景点推荐和路线规划\n\n🗺️ **导航服务**\n• 多平台地图导航\n• 精确位置定位\n\n请告诉我您想去哪里，我会为您提供帮助！",
			"欢迎使用AI旅行助手！👋\n\n我是您专属的旅行顾问，可以为您提供：\n• 🎯 智能行程规划\n• 📍 景点信息解析\n• 🗺️ 导航路线指引\n• 💡 当地特色推荐\n\n告诉我您想去的目的地吧！",
		},
	},
	{
		replies: []string{
			"作为您的AI旅行助手，我注意到您的询问。虽然目前无法连接到完整的AI服务，但我会尽力帮助您！\n\n如果您需要：\n• 🗺️ 旅行规划建议\n• 📍 景点信息查询\n• 🚗 交通导航指引\n• 🏨 住宿餐饮推荐\n\n请提供更具体的信息，比如您想去的城市，我会为您提供详细的帮助！",
			"感谢您的咨询！🤔 虽然暂时无法访问完整的AI服务，但我依然想帮助您。\n\n请尝试：\n• 告诉我具体的旅行目的地\n• 描述您的旅行需求和偏好\n\n这样我就能为您提供更准确的建议和信息了！",
		},
	},
}

// MockAssistant answers from canned replies without any network access.
type MockAssistant struct {
	matcher ahocorasick.AhoCorasick
	// topicOf maps a keyword to its topic index.
	topicOf map[string]int
	pick    func(n int) int
	now     func() time.Time
}

func NewMockAssistant() *MockAssistant {
	var patterns []string
	topicOf := make(map[string]int)
	for i, t := range mockTopics {
		for _, kw := range t.keywords {
			patterns = append(patterns, kw)
			topicOf[kw] = i
		}
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		MatchKind: ahocorasick.LeftMostFirstMatch,
		DFA:       true,
	})
	return &MockAssistant{
		matcher: builder.Build(patterns),
		topicOf: topicOf,
		pick:    rand.IntN,
		now:     time.Now,
	}
}

// topic returns the index of the highest-priority topic mentioned in message.
func (m *MockAssistant) topic(message string) int {
	best := len(mockTopics) - 1
	haystack := strings.ToLower(message)
	for _, match := range m.matcher.FindAll(haystack) {
		if t, ok := m.topicOf[haystack[match.Start():match.End()]]; ok && t < best {
			best = t
		}
	}
	return best
}

func (m *MockAssistant) Ask(_ context.Context, req AskRequest) (*AskResponse, error) {
	replies := mockTopics[m.topic(req.Message)].replies

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	return &AskResponse{
		Answer:         replies[m.pick(len(replies))],
		ConversationID: conversationID,
		MessageID:      uuid.NewString(),
		CreatedAt:      m.now(),
	}, nil
}
