package main

import (
	"encoding/json"
	"flag"
	"os"
)

var outputFileName = flag.String("out", "./records.jsonl", "where to write the sample record file")

// sample is the built-in corpus: a small slice of an interview-prep
// knowledge base with answered questions, notes, unanswered questions and
// past practice queries, mixing Chinese and English the way real prep
// material does.
var sample = []map[string]any{
	{"key": 1, "kind": "qa", "prompt": "讲讲 Go 的 GMP 调度模型", "answer": "G 是 goroutine，M 是内核线程，P 是逻辑处理器。P 持有本地运行队列，M 绑定 P 后执行 G，窃取调度平衡负载。", "domain": "golang", "keywords": "GMP,调度,goroutine"},
	{"key": 2, "kind": "qa", "prompt": "什么是乐观锁和悲观锁", "answer": "悲观锁假设冲突频繁，先加锁再操作；乐观锁假设冲突少见，用版本号或 CAS 在提交时校验。", "domain": "数据库", "keywords": "锁,并发,CAS"},
	{"key": 3, "kind": "qa", "prompt": "HTTP2 相比 HTTP1.1 有哪些改进", "answer": "二进制分帧、多路复用、头部压缩 HPACK、服务端推送。多路复用消除了队头阻塞的连接级影响。", "domain": "网络", "keywords": "HTTP2,多路复用"},
	{"key": 4, "kind": "qa", "prompt": "什么是 reward shaping", "answer": "在强化学习中通过附加奖励信号引导策略学习，常用 potential-based shaping 保证最优策略不变。", "domain": "机器学习", "keywords": "强化学习,reward shaping"},
	{"key": 5, "kind": "qa", "prompt": "说说 MySQL 的 MVCC"}, // unanswered, skipped at rebuild
	{"key": 1, "kind": "note", "title": "三色标记法", "note_type": "概念", "note": "Go GC 用三色标记清除：白色未访问，灰色待扫描，黑色已扫描。写屏障保证并发标记的正确性。", "tags": "go,gc"},
	{"key": 2, "kind": "note", "title": "二分查找边界", "note_type": "易错点", "note": "循环条件 left <= right 与 left < right 对应不同的区间不变式，出错多在更新 mid 两侧边界时。", "tags": "算法,二分"},
	{"key": 1, "kind": "query", "prompt": "goroutine 泄漏怎么排查"},
	{"key": 2, "kind": "query", "prompt": "how does tcp congestion control work"},
	{"key": 3, "kind": "query", "prompt": "强化学习里 reward 设计的常见坑"},
}

func main() {
	flag.Parse()

	f, err := os.Create(*outputFileName)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, record := range sample {
		if err := enc.Encode(record); err != nil {
			panic(err)
		}
	}
}
