package attractions

import (
	"strings"
	"testing"
)

const benchReply = `根据您的需求，为您推荐以下景点：

1. **故宫博物院**
地址：北京市东城区景山前街4号
坐标：39.9163, 116.3972
明清两代的皇家宫殿，建议预留半天时间。

2. 天坛公园
位于北京市东城区天坛东里甲1号，是明清皇帝祭天的场所。

3. 颐和园
地址：北京市海淀区新建宫门路19号
纬度：39.9999 经度：116.2755

4. 八达岭长城
坐标：(40.3587, 116.0154)

5. 南锣鼓巷
适合傍晚散步，品尝北京小吃。

6. 798艺术区
地址：北京市朝阳区酒仙桥路4号`

func BenchmarkExtract(b *testing.B) {
	e := newTestExtractor(DefaultMaxAttractions)
	b.ReportAllocs()
	for b.Loop() {
		_ = e.Extract(benchReply)
	}
}

func BenchmarkExtract_LongReply(b *testing.B) {
	e := newTestExtractor(DefaultMaxAttractions)
	long := strings.Repeat("这里是一段没有景点信息的普通文字，用于测试长回复。\n", 200) + benchReply
	b.ReportAllocs()
	for b.Loop() {
		_ = e.Extract(long)
	}
}

func BenchmarkSplitSections(b *testing.B) {
	for b.Loop() {
		_ = SplitSections(benchReply)
	}
}
