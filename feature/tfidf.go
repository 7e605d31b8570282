package feature

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern 匹配至少两个字符的词元，单字符（如编号 "1"）直接丢弃。
var tokenPattern = regexp.MustCompile(`\w\w+`)

// TFIDFVectorizer 把文本文档集合向量化为 TF-IDF 特征。
//
// 处理流程（与原服务的向量化参数一一对应）：
//  1. 小写化 + 分词（≥2 字符的词元）
//  2. 剔除英文停用词
//  3. 组合 unigram + bigram
//  4. 词表按全语料词频截断到 MaxFeatures
//  5. tf = 词频，idf = ln((1+n)/(1+df)) + 1（平滑），行向量做 L2 归一化
//
// 词表与结果矩阵都只对一次语料有效：影片集合变化时必须整体重建。
type TFIDFVectorizer struct {
	// MaxFeatures 词表上限；<= 0 表示不截断
	MaxFeatures int
}

// FitTransform 对文档集做拟合并返回各文档的 L2 归一化 TF-IDF 向量。
// docs 为空时返回 nil。
func (v *TFIDFVectorizer) FitTransform(docs []string) [][]float64 {
	if len(docs) == 0 {
		return nil
	}

	// 逐文档统计词频
	docTerms := make([]map[string]float64, len(docs))
	corpusCount := make(map[string]float64) // 全语料词频，用于词表截断
	docFreq := make(map[string]float64)     // 文档频率，用于 idf
	for i, doc := range docs {
		counts := make(map[string]float64)
		for _, term := range extractTerms(doc) {
			counts[term]++
		}
		docTerms[i] = counts
		for term, c := range counts {
			corpusCount[term] += c
			docFreq[term]++
		}
	}

	// 词表截断：按全语料词频降序，同频按字典序，保证确定性
	terms := make([]string, 0, len(corpusCount))
	for term := range corpusCount {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if corpusCount[terms[i]] != corpusCount[terms[j]] {
			return corpusCount[terms[i]] > corpusCount[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	for idx, term := range terms {
		vocab[term] = idx
	}

	// idf（平滑）：ln((1+n)/(1+df)) + 1
	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for term, idx := range vocab {
		idf[idx] = math.Log((1+n)/(1+docFreq[term])) + 1
	}

	// tf-idf + L2 归一化
	out := make([][]float64, len(docs))
	for i, counts := range docTerms {
		vec := make([]float64, len(terms))
		var norm float64
		for term, tf := range counts {
			idx, ok := vocab[term]
			if !ok {
				continue
			}
			w := tf * idf[idx]
			vec[idx] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for idx := range vec {
				vec[idx] /= norm
			}
		}
		out[i] = vec
	}
	return out
}

// extractTerms 分词、去停用词并组合 unigram + bigram。
// bigram 在去停用词之后的相邻词元上构造。
func extractTerms(doc string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, stop := englishStopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}

	terms := make([]string, 0, len(tokens)*2)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
