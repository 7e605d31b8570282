package core

// Rating 是一条用户对影片的评分，Score 取值范围 [1,5]。
// 同一 (user, movie) 至多一条评分由上游保证，本层不做去重。
type Rating struct {
	UserID  string  `json:"userId"`
	MovieID string  `json:"movieId"`
	Score   float64 `json:"score"`
}

// Movie 是影片元数据。Title/Description/Category 三个文本字段
// 拼接后作为内容特征的输入；Category 必须是已归一化的普通字符串
// （上游嵌套结构由 loader 解析，核心层不感知）。
type Movie struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ReleaseDate string `json:"releaseDate"`
}
